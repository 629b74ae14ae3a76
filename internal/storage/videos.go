package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vidsent/vidsent/internal/core/domain"
	coreerrors "github.com/vidsent/vidsent/internal/core/errors"
)

// Video is an alias for the domain type.
type Video = domain.Video

// GetVideoByExternalID looks a video up by its YouTube ID. Returns
// coreerrors.ErrNotFound when no row exists.
func (db *DB) GetVideoByExternalID(ctx context.Context, youtubeID string) (*Video, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, youtube_video_id, title, channel_name, thumbnail_url,
		       view_count, like_count, comment_count, published_at, created_at
		FROM videos
		WHERE youtube_video_id = $1
	`, youtubeID)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: video %s", coreerrors.ErrNotFound, youtubeID)
		}

		return nil, fmt.Errorf("get video by external id: %w", err)
	}

	return video, nil
}

// CreateVideo inserts a new video row and fills in its generated ID.
func (db *DB) CreateVideo(ctx context.Context, video *Video) error {
	video.ID = uuid.NewString()
	video.CreatedAt = time.Now().UTC()

	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO videos (id, youtube_video_id, title, channel_name, thumbnail_url,
		                    view_count, like_count, comment_count, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		toUUID(video.ID), video.YouTubeID, toText(video.Title), toText(video.ChannelName),
		toText(video.ThumbnailURL), video.ViewCount, video.LikeCount, video.CommentCount,
		toTimestamptz(video.PublishedAt), toTimestamptz(video.CreatedAt),
	); err != nil {
		return fmt.Errorf("create video: %w", err)
	}

	return nil
}

// UpdateVideoMetadata refreshes the mutable metadata of an existing video.
// The external identity is never touched.
func (db *DB) UpdateVideoMetadata(ctx context.Context, videoID string, meta domain.VideoMetadata) error {
	if _, err := db.Pool.Exec(ctx, `
		UPDATE videos
		SET title = $2, channel_name = $3, thumbnail_url = $4,
		    view_count = $5, like_count = $6, comment_count = $7
		WHERE id = $1
	`,
		toUUID(videoID), toText(meta.Title), toText(meta.ChannelName), toText(meta.ThumbnailURL),
		meta.ViewCount, meta.LikeCount, meta.CommentCount,
	); err != nil {
		return fmt.Errorf("update video metadata: %w", err)
	}

	return nil
}

// UpdateVideoCommentCount sets the video's comment count to the number of
// comments the latest run processed.
func (db *DB) UpdateVideoCommentCount(ctx context.Context, videoID string, count int64) error {
	if _, err := db.Pool.Exec(ctx, `
		UPDATE videos SET comment_count = $2 WHERE id = $1
	`, toUUID(videoID), count); err != nil {
		return fmt.Errorf("update video comment count: %w", err)
	}

	return nil
}

func scanVideo(row pgx.Row) (*Video, error) {
	var (
		video                            Video
		id                               pgtype.UUID
		title, channelName, thumbnailURL pgtype.Text
		publishedAt, createdAt           pgtype.Timestamptz
	)

	if err := row.Scan(&id, &video.YouTubeID, &title, &channelName, &thumbnailURL,
		&video.ViewCount, &video.LikeCount, &video.CommentCount, &publishedAt, &createdAt); err != nil {
		return nil, err
	}

	video.ID = fromUUID(id)
	video.Title = title.String
	video.ChannelName = channelName.String
	video.ThumbnailURL = thumbnailURL.String
	video.PublishedAt = publishedAt.Time
	video.CreatedAt = createdAt.Time

	return &video, nil
}
