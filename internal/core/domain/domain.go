package domain

import "time"

// Sentiment is the canonical three-way classification of a comment.
type Sentiment string

// Canonical sentiment values.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three canonical values.
func (s Sentiment) Valid() bool {
	return s == SentimentPositive || s == SentimentNegative || s == SentimentNeutral
}

// Video is a YouTube video as known to the store. Identity is the external
// 11-character YouTube video ID; metadata fields are refreshed on later runs
// but the identity never changes.
type Video struct {
	ID           string
	YouTubeID    string
	Title        string
	ChannelName  string
	ThumbnailURL string
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	PublishedAt  time.Time
	CreatedAt    time.Time
}

// VideoMetadata is what the metadata provider returns for one video lookup.
type VideoMetadata struct {
	YouTubeID    string
	Title        string
	ChannelName  string
	ThumbnailURL string
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	PublishedAt  time.Time
}

// Analysis is one ingestion run against one video. Counts are null until the
// run completes, then written exactly once.
type Analysis struct {
	ID            string
	VideoID       string
	RequestedBy   string
	TotalComments *int
	PositiveCount *int
	NegativeCount *int
	NeutralCount  *int
	CreatedAt     time.Time
}

// RawComment is a comment as fetched from the provider, sanitized for display
// but not yet classified.
type RawComment struct {
	CommentID   string
	Author      string
	Text        string
	ParentID    string
	IsTopLevel  bool
	LikeCount   int64
	PublishedAt time.Time
}

// Comment is a classified, persisted comment. The primary key is the external
// comment ID, so the same comment fetched by two runs is stored once.
type Comment struct {
	ID          string
	VideoID     string
	AnalysisID  string
	Author      string
	Text        string
	Sentiment   Sentiment
	ParentID    string
	IsTopLevel  bool
	LikeCount   int64
	PublishedAt time.Time
	CreatedAt   time.Time
}

// Distribution is the three-way sentiment breakdown of a completed run.
type Distribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Total returns the summed count across all classes.
func (d Distribution) Total() int {
	return d.Positive + d.Negative + d.Neutral
}

// VideoSummary is the video slice of a run summary.
type VideoSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	ThumbnailURL string `json:"thumbnail_url"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
}

// Summary is what a completed ingestion run returns to the caller.
type Summary struct {
	Video         VideoSummary `json:"video"`
	AnalysisID    string       `json:"analysis_id"`
	TotalComments int          `json:"total_comments"`
	Distribution  Distribution `json:"sentiment_distribution"`
}

// VideoHistory is the stored record view of one video: its metadata and its
// recent runs, newest first.
type VideoHistory struct {
	Video    VideoSummary `json:"video"`
	Analyses []Analysis   `json:"analyses"`
}

// CommentPage is one page of a run's stored comments plus the total count
// matching the same filter.
type CommentPage struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}
