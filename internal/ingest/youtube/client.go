// Package youtube fetches video metadata and comment trees from the
// YouTube Data API v3.
//
// The package contains:
//   - Client: shared keyed HTTP transport with rate limiting
//   - Resolver: URL validation and video metadata lookup
//   - Source: paginated comment-tree retrieval with a fetch budget
//
// Upstream failures are classified into the typed errors of
// internal/core/errors using the API's structured reason codes, never by
// matching on message text.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 5

	// API error reason codes used for classification.
	reasonCommentsDisabled  = "commentsDisabled"
	reasonQuotaExceeded     = "quotaExceeded"
	reasonRateLimitExceeded = "rateLimitExceeded"
	reasonVideoNotFound     = "videoNotFound"
)

// Config holds the client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

// Client is a thin keyed HTTP client for the Data API.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// NewClient creates a Data API client.
func NewClient(cfg Config, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = defaultRPS
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:      logger,
	}
}

// apiCallError is a non-2xx API response with its classification reasons.
type apiCallError struct {
	Status  int
	Reasons []string
	Message string
}

func (e *apiCallError) Error() string {
	return fmt.Sprintf("youtube api: status %d: %s", e.Status, e.Message)
}

func (e *apiCallError) hasReason(reason string) bool {
	for _, r := range e.Reasons {
		if r == reason {
			return true
		}
	}

	return false
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// get performs one API call, decoding the JSON response into out.
// Non-2xx responses come back as *apiCallError.
func (c *Client) get(ctx context.Context, resource string, params url.Values, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+resource+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", resource, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resource, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}

	return nil
}

func (c *Client) decodeError(resource string, resp *http.Response) error {
	callErr := &apiCallError{Status: resp.StatusCode}

	var body apiErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		callErr.Message = body.Error.Message
		for _, e := range body.Error.Errors {
			callErr.Reasons = append(callErr.Reasons, e.Reason)
		}
	}

	c.logger.Warn().
		Str("resource", resource).
		Int("status", resp.StatusCode).
		Strs("reasons", callErr.Reasons).
		Msg("youtube api call failed")

	return callErr
}

// Wire types shared by the resource endpoints. Statistics counters arrive as
// strings and may be absent entirely.

type thumbnail struct {
	URL string `json:"url"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string               `json:"title"`
			ChannelTitle string               `json:"channelTitle"`
			PublishedAt  string               `json:"publishedAt"`
			Thumbnails   map[string]thumbnail `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type commentSnippet struct {
	AuthorDisplayName string `json:"authorDisplayName"`
	TextDisplay       string `json:"textDisplay"`
	LikeCount         int64  `json:"likeCount"`
	PublishedAt       string `json:"publishedAt"`
}

type commentThreadsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID      string `json:"id"`
		Snippet struct {
			TopLevelComment struct {
				Snippet commentSnippet `json:"snippet"`
			} `json:"topLevelComment"`
			TotalReplyCount int `json:"totalReplyCount"`
		} `json:"snippet"`
	} `json:"items"`
}

type commentsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID      string         `json:"id"`
		Snippet commentSnippet `json:"snippet"`
	} `json:"items"`
}
