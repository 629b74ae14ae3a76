// Package analysis orchestrates one ingestion run: resolve the video,
// fetch its comment tree, classify sentiment, and persist the results
// with a transactional aggregate.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidsent/vidsent/internal/core/domain"
	coreerrors "github.com/vidsent/vidsent/internal/core/errors"
	"github.com/vidsent/vidsent/internal/ingest/youtube"
	"github.com/vidsent/vidsent/internal/platform/observability"
	"github.com/vidsent/vidsent/internal/process/normalize"
	"github.com/vidsent/vidsent/internal/process/sentiment"
	db "github.com/vidsent/vidsent/internal/storage"
)

// Repository is the persistence surface one run needs.
type Repository interface {
	GetVideoByExternalID(ctx context.Context, youtubeID string) (*db.Video, error)
	CreateVideo(ctx context.Context, video *db.Video) error
	UpdateVideoMetadata(ctx context.Context, videoID string, meta domain.VideoMetadata) error
	UpdateVideoCommentCount(ctx context.Context, videoID string, count int64) error
	CreateAnalysis(ctx context.Context, analysis *db.Analysis) error
	UpdateAnalysisCounts(ctx context.Context, analysisID string, total, positive, negative, neutral int) error
	BulkInsertComments(ctx context.Context, comments []db.Comment) (int, error)
}

// Compile-time assertion that *db.DB implements Repository.
var _ Repository = (*db.DB)(nil)

// MetadataFetcher looks up video metadata by external ID.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoID string) (domain.VideoMetadata, error)
}

// CommentSource fetches the full comment tree of one video.
type CommentSource interface {
	FetchAll(ctx context.Context, videoID string) ([]domain.RawComment, youtube.FetchStats, error)
}

// Classifier assigns a sentiment to each input text, order-preserving.
type Classifier interface {
	AnalyzeBatch(ctx context.Context, texts []string) ([]sentiment.Result, error)
}

const (
	stageResolve  = "resolve_video"
	stageFetch    = "fetch_comments"
	stageClassify = "classify"
	stagePersist  = "persist"

	statusCompleted = "completed"
	statusFailed    = "failed"
)

type Pipeline struct {
	database   Repository
	metadata   MetadataFetcher
	source     CommentSource
	classifier Classifier
	normalizer *normalize.Normalizer
	logger     *zerolog.Logger
}

func New(database Repository, metadata MetadataFetcher, source CommentSource, classifier Classifier, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		database:   database,
		metadata:   metadata,
		source:     source,
		classifier: classifier,
		normalizer: normalize.New(),
		logger:     logger,
	}
}

// Run executes one full ingestion for the video behind rawURL. requestedBy
// may be empty for anonymous runs. The analysis row is created before
// fetching starts, so a failed run still leaves a traceable record with
// null counts.
func (p *Pipeline) Run(ctx context.Context, rawURL, requestedBy string) (*domain.Summary, error) {
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		observability.AnalysesCompleted.WithLabelValues(statusFailed).Inc()
		return nil, err
	}

	logger := p.logger.With().Str("video_id", videoID).Logger()

	video, err := p.resolveVideo(ctx, videoID, &logger)
	if err != nil {
		observability.AnalysesCompleted.WithLabelValues(statusFailed).Inc()
		return nil, err
	}

	analysis := &db.Analysis{VideoID: video.ID, RequestedBy: requestedBy}
	if err = p.database.CreateAnalysis(ctx, analysis); err != nil {
		observability.AnalysesCompleted.WithLabelValues(statusFailed).Inc()
		return nil, err
	}

	logger = logger.With().Str("analysis_id", analysis.ID).Logger()

	summary, err := p.run(ctx, video, analysis, &logger)
	if err != nil {
		observability.AnalysesCompleted.WithLabelValues(statusFailed).Inc()
		logger.Error().Err(err).Msg("ingestion run failed")

		return nil, err
	}

	observability.AnalysesCompleted.WithLabelValues(statusCompleted).Inc()

	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, video *db.Video, analysis *db.Analysis, logger *zerolog.Logger) (*domain.Summary, error) {
	fetchStart := time.Now()

	raw, stats, err := p.source.FetchAll(ctx, video.YouTubeID)

	observability.PipelineStageDuration.WithLabelValues(stageFetch).Observe(time.Since(fetchStart).Seconds())

	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("top_level", stats.TopLevel).
		Int("replies", stats.Replies).
		Int("skipped", stats.Skipped).
		Bool("truncated", stats.Truncated).
		Msg("comments fetched")

	classifyStart := time.Now()

	comments, dist, err := p.classify(ctx, raw, video.ID, analysis.ID, logger)

	observability.PipelineStageDuration.WithLabelValues(stageClassify).Observe(time.Since(classifyStart).Seconds())

	if err != nil {
		return nil, err
	}

	persistStart := time.Now()

	inserted, err := p.database.BulkInsertComments(ctx, comments)
	if err != nil {
		return nil, err
	}

	observability.CommentsPersisted.Add(float64(inserted))

	if err = p.database.UpdateAnalysisCounts(ctx, analysis.ID, dist.Total(), dist.Positive, dist.Negative, dist.Neutral); err != nil {
		return nil, err
	}

	observability.PipelineStageDuration.WithLabelValues(stagePersist).Observe(time.Since(persistStart).Seconds())

	// An untruncated fetch saw the whole tree, so its count is fresher than
	// the metadata statistics. Failure here does not fail the run.
	if !stats.Truncated {
		fetched := int64(stats.TopLevel + stats.Replies)
		if countErr := p.database.UpdateVideoCommentCount(ctx, video.ID, fetched); countErr != nil {
			logger.Warn().Err(countErr).Msg("video comment count update failed")
		}
	}

	logger.Info().
		Int("classified", dist.Total()).
		Int("inserted", inserted).
		Msg("ingestion run completed")

	return &domain.Summary{
		Video:         videoSummary(video),
		AnalysisID:    analysis.ID,
		TotalComments: dist.Total(),
		Distribution:  dist,
	}, nil
}

func videoSummary(video *db.Video) domain.VideoSummary {
	return domain.VideoSummary{
		ID:           video.ID,
		Title:        video.Title,
		Channel:      video.ChannelName,
		ThumbnailURL: video.ThumbnailURL,
		LikeCount:    video.LikeCount,
		CommentCount: video.CommentCount,
	}
}

// resolveVideo returns the stored video for an external ID, creating it on
// first sight. For a known video the metadata refresh is best effort: a
// provider outage must not block re-analysis of a video we already have.
func (p *Pipeline) resolveVideo(ctx context.Context, videoID string, logger *zerolog.Logger) (*db.Video, error) {
	resolveStart := time.Now()
	defer func() {
		observability.PipelineStageDuration.WithLabelValues(stageResolve).Observe(time.Since(resolveStart).Seconds())
	}()

	video, err := p.database.GetVideoByExternalID(ctx, videoID)

	switch {
	case err == nil:
		meta, metaErr := p.metadata.FetchMetadata(ctx, videoID)
		if metaErr != nil {
			logger.Warn().Err(metaErr).Msg("metadata refresh failed, keeping stored metadata")
			return video, nil
		}

		if updateErr := p.database.UpdateVideoMetadata(ctx, video.ID, meta); updateErr != nil {
			logger.Warn().Err(updateErr).Msg("metadata update failed")
			return video, nil
		}

		applyMetadata(video, meta)

		return video, nil

	case errors.Is(err, coreerrors.ErrNotFound):
		meta, metaErr := p.metadata.FetchMetadata(ctx, videoID)
		if metaErr != nil {
			return nil, metaErr
		}

		video = &db.Video{YouTubeID: videoID}
		applyMetadata(video, meta)

		if createErr := p.database.CreateVideo(ctx, video); createErr != nil {
			return nil, createErr
		}

		return video, nil

	default:
		return nil, fmt.Errorf("resolve video: %w", err)
	}
}

func applyMetadata(video *db.Video, meta domain.VideoMetadata) {
	video.Title = meta.Title
	video.ChannelName = meta.ChannelName
	video.ThumbnailURL = meta.ThumbnailURL
	video.ViewCount = meta.ViewCount
	video.LikeCount = meta.LikeCount
	video.CommentCount = meta.CommentCount
	video.PublishedAt = meta.PublishedAt
}

// classify normalizes each raw comment and classifies the batch. Comments
// whose label cannot be reconciled to a canonical sentiment are dropped
// individually; a backend-wide failure aborts the run.
func (p *Pipeline) classify(ctx context.Context, raw []domain.RawComment, videoID, analysisID string, logger *zerolog.Logger) ([]db.Comment, domain.Distribution, error) {
	var dist domain.Distribution

	texts := make([]string, len(raw))
	for i, rc := range raw {
		texts[i] = p.normalizer.Clean(rc.Text)
	}

	results, err := p.classifier.AnalyzeBatch(ctx, texts)
	if err != nil {
		return nil, dist, err
	}

	comments := make([]db.Comment, 0, len(raw))

	for i, rc := range raw {
		label, ok := results[i].Label.Sentiment()
		if !ok {
			observability.ClassificationDrops.Inc()
			logger.Debug().Str("comment_id", rc.CommentID).Str("label", results[i].Label.String()).Msg("dropping comment with unreconciled label")

			continue
		}

		switch label {
		case domain.SentimentPositive:
			dist.Positive++
		case domain.SentimentNegative:
			dist.Negative++
		case domain.SentimentNeutral:
			dist.Neutral++
		}

		observability.CommentsClassified.WithLabelValues(string(label)).Inc()

		comments = append(comments, db.Comment{
			ID:          rc.CommentID,
			VideoID:     videoID,
			AnalysisID:  analysisID,
			Author:      rc.Author,
			Text:        rc.Text,
			Sentiment:   label,
			ParentID:    rc.ParentID,
			IsTopLevel:  rc.IsTopLevel,
			LikeCount:   rc.LikeCount,
			PublishedAt: rc.PublishedAt,
		})
	}

	if len(raw) > 0 && len(comments) == 0 {
		return nil, domain.Distribution{}, coreerrors.ErrClassificationUnavailable
	}

	return comments, dist, nil
}
