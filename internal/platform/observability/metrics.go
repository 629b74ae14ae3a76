package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommentsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidsent_comments_fetched_total",
		Help: "The total number of comments fetched from the provider",
	}, []string{"kind"})

	CommentItemsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidsent_comment_items_skipped_total",
		Help: "Provider items skipped for failing structural validation",
	})

	ReplyFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidsent_reply_fetch_failures_total",
		Help: "Reply fetches that failed and were absorbed as partial failures",
	})

	FetchTruncations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidsent_fetch_truncations_total",
		Help: "Fetches cut short by the page or item ceiling",
	})

	CommentsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidsent_comments_classified_total",
		Help: "The total number of comments classified, by canonical sentiment",
	}, []string{"sentiment"})

	ClassificationDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidsent_classification_drops_total",
		Help: "Comments dropped because their classification failed",
	})

	ClassifierRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidsent_classifier_request_duration_seconds",
		Help:    "Duration of classifier batch requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	AnalysesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidsent_analyses_total",
		Help: "The total number of ingestion runs, by final status",
	}, []string{"status"})

	PipelineStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidsent_pipeline_stage_duration_seconds",
		Help:    "Duration of each ingestion pipeline stage",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	CommentsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidsent_comments_persisted_total",
		Help: "Comment rows actually inserted (conflicts excluded)",
	})
)
