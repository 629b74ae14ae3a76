package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidsent/vidsent/internal/core/domain"
	coreerrors "github.com/vidsent/vidsent/internal/core/errors"
	db "github.com/vidsent/vidsent/internal/storage"
)

func (r *fakeRepo) GetLatestAnalysisForVideo(_ context.Context, videoID, requestedBy string) (*db.Analysis, error) {
	for i := len(r.analyses) - 1; i >= 0; i-- {
		if r.analyses[i].VideoID == videoID && r.analyses[i].RequestedBy == requestedBy {
			a := *r.analyses[i]
			return &a, nil
		}
	}

	return nil, coreerrors.ErrNotFound
}

func (r *fakeRepo) ListAnalysesForVideo(_ context.Context, videoID string, limit int) ([]db.Analysis, error) {
	var out []db.Analysis

	for i := len(r.analyses) - 1; i >= 0 && len(out) < limit; i-- {
		if r.analyses[i].VideoID == videoID {
			out = append(out, *r.analyses[i])
		}
	}

	return out, nil
}

func (r *fakeRepo) ListCommentsByAnalysis(_ context.Context, analysisID string, sentiment domain.Sentiment, limit, offset int) ([]db.Comment, error) {
	matched := r.commentsMatching(analysisID, sentiment)

	if offset > len(matched) {
		offset = len(matched)
	}

	matched = matched[offset:]

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func (r *fakeRepo) CountCommentsByAnalysis(_ context.Context, analysisID string, sentiment domain.Sentiment) (int, error) {
	return len(r.commentsMatching(analysisID, sentiment)), nil
}

func (r *fakeRepo) commentsMatching(analysisID string, sentiment domain.Sentiment) []db.Comment {
	var matched []db.Comment

	for _, c := range r.inserted {
		if c.AnalysisID != analysisID {
			continue
		}

		if sentiment != "" && c.Sentiment != sentiment {
			continue
		}

		matched = append(matched, c)
	}

	return matched
}

func seedHistoryRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.videos[testVideoID] = &db.Video{ID: "v1", YouTubeID: testVideoID, Title: "Stored"}

	three := 3
	five := 5

	repo.analyses = []*db.Analysis{
		{ID: "a1", VideoID: "v1", RequestedBy: "u1", TotalComments: &three, CreatedAt: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "a2", VideoID: "v1", RequestedBy: "u2", TotalComments: &five, CreatedAt: time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC)},
		{ID: "other", VideoID: "v2", CreatedAt: time.Date(2025, 8, 3, 10, 0, 0, 0, time.UTC)},
	}

	return repo
}

func TestHistoryForVideoListsRuns(t *testing.T) {
	h := NewHistory(seedHistoryRepo())

	got, err := h.ForVideo(context.Background(), testURL, "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Video.Title != "Stored" {
		t.Errorf("expected stored video metadata, got %q", got.Video.Title)
	}

	if len(got.Analyses) != 2 {
		t.Fatalf("expected 2 runs for the video, got %d", len(got.Analyses))
	}

	if got.Analyses[0].ID != "a2" || got.Analyses[1].ID != "a1" {
		t.Errorf("expected newest first, got %q then %q", got.Analyses[0].ID, got.Analyses[1].ID)
	}
}

func TestHistoryForVideoHonorsLimit(t *testing.T) {
	h := NewHistory(seedHistoryRepo())

	got, err := h.ForVideo(context.Background(), testURL, "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Analyses) != 1 || got.Analyses[0].ID != "a2" {
		t.Errorf("expected only the newest run, got %+v", got.Analyses)
	}
}

func TestHistoryForVideoByRequester(t *testing.T) {
	h := NewHistory(seedHistoryRepo())

	got, err := h.ForVideo(context.Background(), testURL, "u1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Analyses) != 1 || got.Analyses[0].ID != "a1" {
		t.Errorf("expected the requester's latest run, got %+v", got.Analyses)
	}

	_, err = h.ForVideo(context.Background(), testURL, "nobody", 10)
	if !errors.Is(err, coreerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown requester, got %v", err)
	}
}

func TestHistoryForVideoUnknownVideo(t *testing.T) {
	h := NewHistory(newFakeRepo())

	_, err := h.ForVideo(context.Background(), testURL, "", 10)
	if !errors.Is(err, coreerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryForVideoInvalidURL(t *testing.T) {
	h := NewHistory(newFakeRepo())

	_, err := h.ForVideo(context.Background(), "https://vimeo.com/123", "", 10)
	if !errors.Is(err, coreerrors.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestHistoryCommentPage(t *testing.T) {
	repo := seedHistoryRepo()
	repo.inserted = []db.Comment{
		{ID: "c1", AnalysisID: "a1", Sentiment: domain.SentimentPositive},
		{ID: "c2", AnalysisID: "a1", Sentiment: domain.SentimentNegative},
		{ID: "c3", AnalysisID: "a1", Sentiment: domain.SentimentPositive},
		{ID: "c4", AnalysisID: "a2", Sentiment: domain.SentimentPositive},
	}

	h := NewHistory(repo)

	page, err := h.CommentPage(context.Background(), "a1", domain.SentimentPositive, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Total != 2 {
		t.Errorf("expected 2 matching comments, got %d", page.Total)
	}

	if len(page.Comments) != 1 || page.Comments[0].ID != "c1" {
		t.Errorf("expected first page [c1], got %+v", page.Comments)
	}

	page, err = h.CommentPage(context.Background(), "a1", domain.SentimentPositive, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Comments) != 1 || page.Comments[0].ID != "c3" {
		t.Errorf("expected second page [c3], got %+v", page.Comments)
	}

	page, err = h.CommentPage(context.Background(), "a1", "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Total != 3 || len(page.Comments) != 3 {
		t.Errorf("expected all 3 comments without a filter, got total %d page %d", page.Total, len(page.Comments))
	}
}
