package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	coreerrors "github.com/vidsent/vidsent/internal/core/errors"
)

func threadItem(id, text string, replyCount int) string {
	return fmt.Sprintf(`{
		"id": %q,
		"snippet": {
			"topLevelComment": {"snippet": {
				"authorDisplayName": "author",
				"textDisplay": %q,
				"likeCount": 1,
				"publishedAt": "2024-05-01T10:00:00Z"
			}},
			"totalReplyCount": %d
		}
	}`, id, text, replyCount)
}

func replyItem(id, text string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"snippet": {
			"authorDisplayName": "author",
			"textDisplay": %q,
			"likeCount": 0,
			"publishedAt": "2024-05-01T11:00:00Z"
		}
	}`, id, text)
}

func newTestSource(t *testing.T, handler http.Handler, cfg SourceConfig) (*Source, func()) {
	t.Helper()

	ts := httptest.NewServer(handler)
	logger := zerolog.Nop()
	source := NewSource(NewClient(Config{APIKey: "k", BaseURL: ts.URL, RPS: 10000}, &logger), cfg, &logger)

	return source, ts.Close
}

func TestSourceFetchAllThreadOrder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)

		var body string

		switch {
		case strings.Contains(r.URL.Path, "commentThreads"):
			body = `{"items": [` + threadItem("t1", "first", 2) + `,` + threadItem("t2", "second", 0) + `]}`
		case r.URL.Query().Get("parentId") == "t1":
			body = `{"items": [` + replyItem("r1", "reply one") + `,` + replyItem("r2", "reply two") + `]}`
		default:
			body = `{"items": []}`
		}

		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	source, closeServer := newTestSource(t, handler, SourceConfig{})
	defer closeServer()

	comments, stats, err := source.FetchAll(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []string{"t1", "r1", "r2", "t2"}
	if len(comments) != len(wantOrder) {
		t.Fatalf("expected %d comments, got %d", len(wantOrder), len(comments))
	}

	for i, id := range wantOrder {
		if comments[i].CommentID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, comments[i].CommentID)
		}
	}

	if !comments[0].IsTopLevel || comments[1].IsTopLevel {
		t.Error("expected t1 top-level and r1 reply")
	}

	if comments[1].ParentID != "t1" {
		t.Errorf("expected r1 parent t1, got %q", comments[1].ParentID)
	}

	if stats.TopLevel != 2 || stats.Replies != 2 || stats.Truncated {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSourceFetchAllReplyFailureIsolated(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("parentId") == "t2" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{}`))

			return
		}

		w.WriteHeader(http.StatusOK)

		var body string

		switch {
		case strings.Contains(r.URL.Path, "commentThreads"):
			items := make([]string, 0, 5)
			for i := 1; i <= 5; i++ {
				items = append(items, threadItem(fmt.Sprintf("t%d", i), fmt.Sprintf("thread %d", i), 1))
			}

			body = `{"items": [` + strings.Join(items, ",") + `]}`
		default:
			parent := r.URL.Query().Get("parentId")
			body = `{"items": [` + replyItem(parent+"-r", "a reply") + `]}`
		}

		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	source, closeServer := newTestSource(t, handler, SourceConfig{ReplyWorkers: 2})
	defer closeServer()

	comments, stats, err := source.FetchAll(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}

	if stats.TopLevel != 5 {
		t.Errorf("expected 5 top-level comments, got %d", stats.TopLevel)
	}

	if stats.Replies != 4 {
		t.Errorf("expected 4 replies, got %d", stats.Replies)
	}

	if stats.FailedReplyFetches != 1 {
		t.Errorf("expected 1 failed reply fetch, got %d", stats.FailedReplyFetches)
	}

	// The failing thread keeps its top-level comment.
	found := false

	for _, c := range comments {
		if c.CommentID == "t2" {
			found = true
		}

		if c.ParentID == "t2" {
			t.Error("replies of the failed thread must not appear")
		}
	}

	if !found {
		t.Error("top-level comment of the failed thread is missing")
	}
}

func TestSourceFetchAllPageCeiling(t *testing.T) {
	page := 0

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)

		if !strings.Contains(r.URL.Path, "commentThreads") {
			_, _ = w.Write([]byte(`{"items": []}`))
			return
		}

		page++

		// Always hands out another page token; only the ceiling stops it.
		body := fmt.Sprintf(`{"nextPageToken": "next", "items": [%s]}`, threadItem(fmt.Sprintf("t%d", page), "text", 0))

		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	source, closeServer := newTestSource(t, handler, SourceConfig{MaxPages: 3, MaxComments: 100})
	defer closeServer()

	comments, stats, err := source.FetchAll(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page != 3 {
		t.Errorf("expected exactly 3 pages fetched, got %d", page)
	}

	if len(comments) != 3 {
		t.Errorf("expected 3 comments, got %d", len(comments))
	}

	if !stats.Truncated {
		t.Error("expected the fetch to be marked truncated")
	}
}

func TestSourceFetchAllItemCeiling(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)

		if !strings.Contains(r.URL.Path, "commentThreads") {
			_, _ = w.Write([]byte(`{"items": []}`))
			return
		}

		items := make([]string, 0, 10)
		for i := 1; i <= 10; i++ {
			items = append(items, threadItem(fmt.Sprintf("t%d", i), "text", 0))
		}

		body := `{"nextPageToken": "next", "items": [` + strings.Join(items, ",") + `]}`

		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	source, closeServer := newTestSource(t, handler, SourceConfig{MaxComments: 7})
	defer closeServer()

	comments, stats, err := source.FetchAll(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(comments) != 7 {
		t.Errorf("expected 7 comments, got %d", len(comments))
	}

	if !stats.Truncated {
		t.Error("expected the fetch to be marked truncated")
	}
}

func TestSourceFetchAllRepliesShareItemBudget(t *testing.T) {
	var mu sync.Mutex

	replyRequests := 0

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)

		var body string

		switch {
		case strings.Contains(r.URL.Path, "commentThreads"):
			items := make([]string, 0, 3)
			for i := 1; i <= 3; i++ {
				items = append(items, threadItem(fmt.Sprintf("t%d", i), "text", 5))
			}

			body = `{"items": [` + strings.Join(items, ",") + `]}`
		default:
			mu.Lock()
			replyRequests++
			mu.Unlock()

			parent := r.URL.Query().Get("parentId")

			// Endless reply pages; only the shared budget stops the fetch.
			body = `{"nextPageToken": "next", "items": [` +
				replyItem(parent+"-r1", "one") + `,` + replyItem(parent+"-r2", "two") + `]}`
		}

		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	source, closeServer := newTestSource(t, handler, SourceConfig{MaxComments: 5, ReplyWorkers: 1})
	defer closeServer()

	comments, stats, err := source.FetchAll(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3 top-level comments leave room for 2 replies across all threads.
	if len(comments) != 5 {
		t.Errorf("expected 5 comments, got %d", len(comments))
	}

	if stats.Replies != 2 {
		t.Errorf("expected 2 replies total across all threads, got %d", stats.Replies)
	}

	if !stats.Truncated {
		t.Error("expected the fetch to be marked truncated")
	}

	mu.Lock()
	defer mu.Unlock()

	// One page fills the remaining budget; the other threads never call out.
	if replyRequests != 1 {
		t.Errorf("expected a single reply page request, got %d", replyRequests)
	}
}

func TestSourceFetchAllCommentsDisabled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)

		body := `{"error": {"code": 403, "message": "disabled", "errors": [{"reason": "commentsDisabled"}]}}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	source, closeServer := newTestSource(t, handler, SourceConfig{})
	defer closeServer()

	_, _, err := source.FetchAll(context.Background(), testVideoID)
	if !errors.Is(err, coreerrors.ErrCommentsDisabled) {
		t.Fatalf("expected ErrCommentsDisabled, got %v", err)
	}
}

func TestSourceFetchAllNoComments(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(`{"items": []}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	source, closeServer := newTestSource(t, handler, SourceConfig{})
	defer closeServer()

	_, _, err := source.FetchAll(context.Background(), testVideoID)
	if !errors.Is(err, coreerrors.ErrNoComments) {
		t.Fatalf("expected ErrNoComments, got %v", err)
	}
}

func TestSourceFetchAllSkipsInvalidItems(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)

		if !strings.Contains(r.URL.Path, "commentThreads") {
			_, _ = w.Write([]byte(`{"items": []}`))
			return
		}

		body := `{"items": [` +
			threadItem("", "missing id", 0) + `,` +
			threadItem("t-empty", "   ", 0) + `,` +
			threadItem("t-ok", "valid text", 0) + `]}`

		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	source, closeServer := newTestSource(t, handler, SourceConfig{})
	defer closeServer()

	comments, stats, err := source.FetchAll(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(comments) != 1 || comments[0].CommentID != "t-ok" {
		t.Fatalf("expected only the valid comment, got %+v", comments)
	}

	if stats.Skipped != 2 {
		t.Errorf("expected 2 skipped items, got %d", stats.Skipped)
	}
}
