package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/vidsent/vidsent/internal/core/domain"
	coreerrors "github.com/vidsent/vidsent/internal/core/errors"
	"github.com/vidsent/vidsent/internal/platform/observability"
	"github.com/vidsent/vidsent/internal/platform/sanitize"
)

const (
	defaultPageSize     = 100
	defaultMaxPages     = 100
	defaultMaxComments  = 10000
	defaultReplyWorkers = 4
)

// SourceConfig bounds the comment fetch.
type SourceConfig struct {
	PageSize     int
	MaxPages     int
	MaxComments  int
	ReplyWorkers int
}

// Source retrieves a video's full comment tree: top-level threads first,
// then each thread's replies. Reply fetches are mutually independent; a
// failed one drops only that thread's replies.
type Source struct {
	client *Client
	cfg    SourceConfig
	logger *zerolog.Logger
}

// FetchStats describes what one fetch actually did, so callers can tell a
// complete result from a capped or partially failed one.
type FetchStats struct {
	TopLevel           int
	Replies            int
	Skipped            int
	FailedReplyFetches int
	Truncated          bool
}

// NewSource creates a comment source with the given bounds; zero values fall
// back to the package defaults.
func NewSource(client *Client, cfg SourceConfig, logger *zerolog.Logger) *Source {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}

	if cfg.MaxComments <= 0 {
		cfg.MaxComments = defaultMaxComments
	}

	if cfg.ReplyWorkers <= 0 {
		cfg.ReplyWorkers = defaultReplyWorkers
	}

	return &Source{client: client, cfg: cfg, logger: logger}
}

type thread struct {
	top        domain.RawComment
	replyCount int
}

// FetchAll retrieves all comments for a video, top-level comments in thread
// order with each one's replies following it. A top-level fetch failure is
// fatal; a reply fetch failure keeps the thread's top-level comment and
// drops only its replies.
func (s *Source) FetchAll(ctx context.Context, videoID string) ([]domain.RawComment, FetchStats, error) {
	stats := FetchStats{}

	budget := NewBudget(s.cfg.MaxPages, s.cfg.MaxComments)

	threads, skipped, err := s.fetchTopLevel(ctx, videoID, budget)
	if err != nil {
		return nil, stats, err
	}

	stats.Skipped += skipped
	stats.TopLevel = len(threads)
	stats.Truncated = budget.Truncated()

	if len(threads) == 0 {
		return nil, stats, fmt.Errorf("%w: video %s", coreerrors.ErrNoComments, videoID)
	}

	observability.CommentsFetched.WithLabelValues("top_level").Add(float64(len(threads)))

	replies, replyStats := s.fetchAllReplies(ctx, threads)
	stats.Replies = replyStats.Replies
	stats.Skipped += replyStats.Skipped
	stats.FailedReplyFetches = replyStats.FailedReplyFetches
	stats.Truncated = stats.Truncated || replyStats.Truncated

	all := make([]domain.RawComment, 0, len(threads)+stats.Replies)
	for i, th := range threads {
		all = append(all, th.top)
		all = append(all, replies[i]...)
	}

	// Absolute ceiling across the whole tree.
	if len(all) > s.cfg.MaxComments {
		all = all[:s.cfg.MaxComments]
		stats.Truncated = true
	}

	if stats.Truncated {
		observability.FetchTruncations.Inc()
	}

	s.logger.Info().
		Str("video_id", videoID).
		Int("top_level", stats.TopLevel).
		Int("replies", stats.Replies).
		Int("skipped", stats.Skipped).
		Int("failed_reply_fetches", stats.FailedReplyFetches).
		Bool("truncated", stats.Truncated).
		Msg("fetched comment tree")

	return all, stats, nil
}

func (s *Source) fetchTopLevel(ctx context.Context, videoID string, budget *Budget) ([]thread, int, error) {
	var (
		threads   []thread
		skipped   int
		pageToken string
	)

	for budget.AllowPage() {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("videoId", videoID)
		params.Set("maxResults", strconv.Itoa(s.cfg.PageSize))
		params.Set("textFormat", "plainText")

		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp commentThreadsResponse
		if err := s.client.get(ctx, "commentThreads", params, &resp); err != nil {
			return nil, skipped, classifyCommentsError(err)
		}

		budget.CountPage()

		if len(resp.Items) == 0 {
			break
		}

		for _, item := range resp.Items {
			if !budget.AllowItem() {
				return threads, skipped, nil
			}

			raw, ok := parseComment(item.ID, item.Snippet.TopLevelComment.Snippet, "", s.logger)
			if !ok {
				skipped++
				observability.CommentItemsSkipped.Inc()

				continue
			}

			budget.CountItem()
			threads = append(threads, thread{top: raw, replyCount: item.Snippet.TotalReplyCount})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return threads, skipped, nil
}

// fetchAllReplies fetches replies for every thread concurrently. All threads
// share the item budget left over from the top-level pass, so the global
// ceiling bounds the work done, not only the rows returned. Each thread gets
// its own result slot; one failure cannot touch another's output.
func (s *Source) fetchAllReplies(ctx context.Context, threads []thread) ([][]domain.RawComment, FetchStats) {
	results := make([][]domain.RawComment, len(threads))
	stats := FetchStats{}

	remaining := s.cfg.MaxComments - len(threads)
	if remaining <= 0 {
		for _, th := range threads {
			if th.replyCount > 0 {
				stats.Truncated = true
				break
			}
		}

		return results, stats
	}

	budget := NewBudget(s.cfg.MaxPages, remaining)
	skips := make([]int, len(threads))
	fails := make([]bool, len(threads))

	sem := make(chan struct{}, s.cfg.ReplyWorkers)

	var wg sync.WaitGroup

	for i, th := range threads {
		if th.replyCount == 0 {
			continue
		}

		wg.Add(1)

		go func(i int, parentID string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			replies, skipped, err := s.fetchReplies(ctx, parentID, budget)
			if err != nil {
				s.logger.Warn().Err(err).Str("parent_id", parentID).Msg("reply fetch failed, keeping top-level comment")
				observability.ReplyFetchFailures.Inc()

				fails[i] = true

				return
			}

			results[i] = replies
			skips[i] = skipped
		}(i, th.top.CommentID)
	}

	wg.Wait()

	stats.Truncated = budget.Truncated()

	for i := range threads {
		stats.Replies += len(results[i])
		stats.Skipped += skips[i]

		if fails[i] {
			stats.FailedReplyFetches++
		}
	}

	observability.CommentsFetched.WithLabelValues("reply").Add(float64(stats.Replies))

	return results, stats
}

func (s *Source) fetchReplies(ctx context.Context, parentID string, budget *Budget) ([]domain.RawComment, int, error) {
	var (
		replies   []domain.RawComment
		skipped   int
		pageToken string
	)

	for budget.AllowPage() {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("parentId", parentID)
		params.Set("maxResults", strconv.Itoa(s.cfg.PageSize))
		params.Set("textFormat", "plainText")

		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp commentsResponse
		if err := s.client.get(ctx, "comments", params, &resp); err != nil {
			return nil, skipped, err
		}

		budget.CountPage()

		if len(resp.Items) == 0 {
			break
		}

		for _, item := range resp.Items {
			if !budget.AllowItem() {
				return replies, skipped, nil
			}

			raw, ok := parseComment(item.ID, item.Snippet, parentID, s.logger)
			if !ok {
				skipped++
				observability.CommentItemsSkipped.Inc()

				continue
			}

			budget.CountItem()
			replies = append(replies, raw)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return replies, skipped, nil
}

// parseComment validates one provider item and converts it to a RawComment.
// Items missing an ID or whose text is empty after sanitization are rejected.
func parseComment(id string, snippet commentSnippet, parentID string, logger *zerolog.Logger) (domain.RawComment, bool) {
	if id == "" {
		logger.Warn().Msg("comment item missing id, skipping")
		return domain.RawComment{}, false
	}

	text := sanitize.Comment(snippet.TextDisplay)
	if text == "" {
		logger.Warn().Str("comment_id", id).Msg("empty comment text, skipping")
		return domain.RawComment{}, false
	}

	author := snippet.AuthorDisplayName
	if author == "" {
		author = "Unknown"
	}

	return domain.RawComment{
		CommentID:   id,
		Author:      sanitize.Field(author, 200),
		Text:        text,
		ParentID:    parentID,
		IsTopLevel:  parentID == "",
		LikeCount:   snippet.LikeCount,
		PublishedAt: parseCommentTimestamp(snippet.PublishedAt, logger),
	}, true
}

// parseCommentTimestamp parses the provider's ISO-8601 publish time. Unlike
// video metadata, a comment without a parseable timestamp stays zero and is
// stored as null.
func parseCommentTimestamp(s string, logger *zerolog.Logger) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		logger.Warn().Str("published_at", s).Msg("invalid comment timestamp")
		return time.Time{}
	}

	return t.UTC()
}

func classifyCommentsError(err error) error {
	callErr, ok := err.(*apiCallError)
	if !ok {
		return err
	}

	switch {
	case callErr.Status == 403 && callErr.hasReason(reasonCommentsDisabled):
		return coreerrors.ErrCommentsDisabled
	case callErr.Status == 403 && (callErr.hasReason(reasonQuotaExceeded) || callErr.hasReason(reasonRateLimitExceeded)):
		return fmt.Errorf("%w: %v", coreerrors.ErrQuotaExceeded, callErr)
	case callErr.Status == 403:
		return fmt.Errorf("%w: %v", coreerrors.ErrAccessDenied, callErr)
	case callErr.Status == 400:
		return fmt.Errorf("%w: %v", coreerrors.ErrInvalidVideoID, callErr)
	default:
		return coreerrors.Upstream("commentThreads.list", callErr.Status)
	}
}
