package analysis

import (
	"context"

	"github.com/vidsent/vidsent/internal/core/domain"
	"github.com/vidsent/vidsent/internal/ingest/youtube"
	db "github.com/vidsent/vidsent/internal/storage"
)

const defaultHistoryLimit = 10

// HistoryRepository is the read-only persistence surface for stored runs.
type HistoryRepository interface {
	GetVideoByExternalID(ctx context.Context, youtubeID string) (*db.Video, error)
	GetLatestAnalysisForVideo(ctx context.Context, videoID, requestedBy string) (*db.Analysis, error)
	ListAnalysesForVideo(ctx context.Context, videoID string, limit int) ([]db.Analysis, error)
	ListCommentsByAnalysis(ctx context.Context, analysisID string, sentiment domain.Sentiment, limit, offset int) ([]db.Comment, error)
	CountCommentsByAnalysis(ctx context.Context, analysisID string, sentiment domain.Sentiment) (int, error)
}

// Compile-time assertion that *db.DB implements HistoryRepository.
var _ HistoryRepository = (*db.DB)(nil)

// History reads stored runs back out of the repository.
type History struct {
	database HistoryRepository
}

func NewHistory(database HistoryRepository) *History {
	return &History{database: database}
}

// ForVideo returns the stored video behind rawURL and its recent runs,
// newest first. When requestedBy is set, only that requester's most recent
// run is returned. Videos never analyzed come back as
// coreerrors.ErrNotFound.
func (h *History) ForVideo(ctx context.Context, rawURL, requestedBy string, limit int) (*domain.VideoHistory, error) {
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	video, err := h.database.GetVideoByExternalID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var analyses []db.Analysis

	if requestedBy != "" {
		latest, err := h.database.GetLatestAnalysisForVideo(ctx, video.ID, requestedBy)
		if err != nil {
			return nil, err
		}

		analyses = []db.Analysis{*latest}
	} else {
		analyses, err = h.database.ListAnalysesForVideo(ctx, video.ID, limit)
		if err != nil {
			return nil, err
		}
	}

	return &domain.VideoHistory{Video: videoSummary(video), Analyses: analyses}, nil
}

// CommentPage returns one page of a run's stored comments together with the
// total count matching the same sentiment filter. An empty sentiment returns
// all classes.
func (h *History) CommentPage(ctx context.Context, analysisID string, sentiment domain.Sentiment, limit, offset int) (*domain.CommentPage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	if offset < 0 {
		offset = 0
	}

	comments, err := h.database.ListCommentsByAnalysis(ctx, analysisID, sentiment, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := h.database.CountCommentsByAnalysis(ctx, analysisID, sentiment)
	if err != nil {
		return nil, err
	}

	return &domain.CommentPage{Comments: comments, Total: total}, nil
}
