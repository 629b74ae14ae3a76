// Package app provides the application bootstrap and runtime wiring.
//
// The App type wires together all dependencies and exposes methods to run
// the ingestion pipeline and the health/metrics server.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vidsent/vidsent/internal/config"
	"github.com/vidsent/vidsent/internal/core/domain"
	"github.com/vidsent/vidsent/internal/ingest/youtube"
	"github.com/vidsent/vidsent/internal/platform/observability"
	"github.com/vidsent/vidsent/internal/process/analysis"
	"github.com/vidsent/vidsent/internal/process/sentiment"
	db "github.com/vidsent/vidsent/internal/storage"
)

// App holds the application dependencies.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.database, a.cfg.HealthPort, a.logger).Start(ctx)
}

// Analyze runs one full ingestion for the video behind rawURL and returns
// its summary.
func (a *App) Analyze(ctx context.Context, rawURL, requestedBy string) (*domain.Summary, error) {
	client := youtube.NewClient(youtube.Config{
		APIKey:  a.cfg.YouTubeAPIKey,
		BaseURL: a.cfg.YouTubeBaseURL,
		Timeout: a.cfg.YouTubeTimeout,
		RPS:     a.cfg.YouTubeRPS,
	}, a.logger)

	source := youtube.NewSource(client, youtube.SourceConfig{
		PageSize:     a.cfg.CommentsPageSize,
		MaxPages:     a.cfg.MaxPages,
		MaxComments:  a.cfg.MaxComments,
		ReplyWorkers: a.cfg.ReplyFetchWorkers,
	}, a.logger)

	pipe := analysis.New(a.database, youtube.NewResolver(client), source, a.buildClassifier(), a.logger)

	return pipe.Run(ctx, rawURL, requestedBy)
}

// History returns the stored analysis runs for the video behind rawURL,
// newest first. When requestedBy is set, only that requester's latest run
// is returned.
func (a *App) History(ctx context.Context, rawURL, requestedBy string, limit int) (*domain.VideoHistory, error) {
	return analysis.NewHistory(a.database).ForVideo(ctx, rawURL, requestedBy, limit)
}

// CommentPage returns one page of stored comments for an analysis run,
// optionally filtered by sentiment.
func (a *App) CommentPage(ctx context.Context, analysisID string, sentiment domain.Sentiment, limit, offset int) (*domain.CommentPage, error) {
	return analysis.NewHistory(a.database).CommentPage(ctx, analysisID, sentiment, limit, offset)
}

// buildClassifier assembles the provider registry from configuration. The
// mock provider is always registered as the lowest-priority fallback so
// local runs work offline.
func (a *App) buildClassifier() *sentiment.Classifier {
	registry := sentiment.NewRegistry(a.logger)

	switch a.cfg.ClassifierProvider {
	case string(sentiment.ProviderOpenAI):
		registry.Register(sentiment.NewOpenAIProvider(sentiment.OpenAIConfig{
			APIKey: a.cfg.ClassifierAPIKey,
			Model:  a.cfg.ClassifierModel,
			RPS:    a.cfg.ClassifierRPS,
		}))
	case string(sentiment.ProviderMock):
	default:
		registry.Register(sentiment.NewInferenceProvider(sentiment.InferenceConfig{
			BaseURL: a.cfg.InferenceURL,
			Timeout: a.cfg.InferenceTimeout,
			RPS:     a.cfg.ClassifierRPS,
		}))
	}

	registry.Register(sentiment.NewMockProvider())

	reconciler := sentiment.NewReconciler(sentiment.ReconcilerConfig{
		SwapPositiveNegative: a.cfg.SentimentSwapPosNeg,
	})

	return sentiment.NewClassifier(registry, reconciler, a.cfg.ClassifierBatchSize, a.logger)
}
