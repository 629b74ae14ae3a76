package youtube

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/vidsent/vidsent/internal/core/domain"
	coreerrors "github.com/vidsent/vidsent/internal/core/errors"
)

const maxURLLength = 2048

var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// knownHosts are the domains a video URL may come from.
var knownHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
	"www.youtu.be":    true,
}

// thumbnailPreference orders thumbnail qualities best-first.
var thumbnailPreference = []string{"maxres", "standard", "high", "medium", "default"}

// Resolver validates video URLs and fetches video metadata.
type Resolver struct {
	client *Client
}

// NewResolver creates a Resolver on top of the shared client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// ExtractVideoID derives the canonical 11-character video ID from a
// user-supplied URL. Supported forms:
//
//	https://www.youtube.com/watch?v=dQw4w9WgXcQ
//	https://youtu.be/dQw4w9WgXcQ
//	https://youtube.com/watch?v=dQw4w9WgXcQ
func ExtractVideoID(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "", fmt.Errorf("%w: scheme must be http or https", coreerrors.ErrInvalidURL)
	}

	if len(rawURL) > maxURLLength {
		return "", fmt.Errorf("%w: url exceeds %d characters", coreerrors.ErrInvalidURL, maxURLLength)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", coreerrors.ErrInvalidURL, err)
	}

	host := strings.ToLower(parsed.Hostname())
	if !knownHosts[host] {
		return "", fmt.Errorf("%w: unknown host %q", coreerrors.ErrInvalidURL, host)
	}

	var videoID string
	if host == "youtu.be" || host == "www.youtu.be" {
		videoID = strings.TrimPrefix(parsed.Path, "/")
		if idx := strings.IndexByte(videoID, '/'); idx >= 0 {
			videoID = videoID[:idx]
		}
	} else {
		videoID = parsed.Query().Get("v")
	}

	if videoID == "" {
		return "", fmt.Errorf("%w: no video id in url", coreerrors.ErrInvalidURL)
	}

	if !videoIDRegex.MatchString(videoID) {
		return "", fmt.Errorf("%w: %q", coreerrors.ErrInvalidVideoID, videoID)
	}

	return videoID, nil
}

// FetchMetadata looks up title, channel, thumbnail and counters for one
// video. Unparseable counters default to zero and a missing publish
// timestamp defaults to now; neither fails the call.
func (r *Resolver) FetchMetadata(ctx context.Context, videoID string) (domain.VideoMetadata, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", videoID)
	params.Set("maxResults", "1")

	var resp videoListResponse
	if err := r.client.get(ctx, "videos", params, &resp); err != nil {
		return domain.VideoMetadata{}, classifyMetadataError(err)
	}

	if len(resp.Items) == 0 {
		return domain.VideoMetadata{}, fmt.Errorf("%w: %s", coreerrors.ErrVideoNotFound, videoID)
	}

	item := resp.Items[0]

	return domain.VideoMetadata{
		YouTubeID:    videoID,
		Title:        item.Snippet.Title,
		ChannelName:  item.Snippet.ChannelTitle,
		ThumbnailURL: pickThumbnail(item.Snippet.Thumbnails),
		ViewCount:    parseCount(item.Statistics.ViewCount),
		LikeCount:    parseCount(item.Statistics.LikeCount),
		CommentCount: parseCount(item.Statistics.CommentCount),
		PublishedAt:  parseTimestamp(item.Snippet.PublishedAt),
	}, nil
}

func classifyMetadataError(err error) error {
	callErr, ok := err.(*apiCallError)
	if !ok {
		return err
	}

	switch {
	case callErr.Status == 403 && (callErr.hasReason(reasonQuotaExceeded) || callErr.hasReason(reasonRateLimitExceeded)):
		return fmt.Errorf("%w: %v", coreerrors.ErrQuotaExceeded, callErr)
	case callErr.Status == 404 || callErr.hasReason(reasonVideoNotFound):
		return fmt.Errorf("%w: %v", coreerrors.ErrVideoNotFound, callErr)
	default:
		return coreerrors.Upstream("videos.list", callErr.Status)
	}
}

func pickThumbnail(thumbnails map[string]thumbnail) string {
	for _, quality := range thumbnailPreference {
		if t, ok := thumbnails[quality]; ok && t.URL != "" {
			return t.URL
		}
	}

	return ""
}

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}

	return n
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Now().UTC()
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Now().UTC()
	}

	return t.UTC()
}
