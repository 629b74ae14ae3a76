package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vidsent/vidsent/internal/core/domain"
)

// Comment is an alias for the domain type.
type Comment = domain.Comment

// BulkInsertComments persists classified comments inside one transaction.
// The primary key is the external comment ID, so rows already stored by an
// earlier run are silently skipped. Returns the number of rows actually
// inserted.
func (db *DB) BulkInsertComments(ctx context.Context, comments []Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("bulk insert comments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	batch := &pgx.Batch{}

	for _, c := range comments {
		batch.Queue(`
			INSERT INTO comments (id, video_id, analysis_id, author, text, sentiment,
			                      parent_id, is_top_level, like_count, published_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING
		`,
			c.ID, toUUID(c.VideoID), toUUID(c.AnalysisID),
			toText(c.Author), toText(c.Text), string(c.Sentiment),
			toText(c.ParentID), c.IsTopLevel, c.LikeCount,
			toTimestamptz(c.PublishedAt), toTimestamptz(now),
		)
	}

	results := tx.SendBatch(ctx, batch)

	inserted := 0

	for range comments {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("bulk insert comments: %w", err)
		}

		inserted += int(tag.RowsAffected())
	}

	if err = results.Close(); err != nil {
		return 0, fmt.Errorf("bulk insert comments: close batch: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("bulk insert comments: commit: %w", err)
	}

	return inserted, nil
}

// ListCommentsByAnalysis returns one page of comments for an analysis, newest
// first. An empty sentiment returns all classes.
func (db *DB) ListCommentsByAnalysis(ctx context.Context, analysisID string, sentiment domain.Sentiment, limit, offset int) ([]Comment, error) {
	query := `
		SELECT id, video_id, analysis_id, author, text, sentiment,
		       parent_id, is_top_level, like_count, published_at, created_at
		FROM comments
		WHERE analysis_id = $1
	`
	args := []any{toUUID(analysisID)}

	if sentiment != "" {
		query += ` AND sentiment = $2`
		args = append(args, string(sentiment))
	}

	query += fmt.Sprintf(` ORDER BY published_at DESC NULLS LAST LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment

	for rows.Next() {
		var c Comment
		var videoID, analysisUUID pgtype.UUID
		var author, text, parentID pgtype.Text
		var sentimentRaw string
		var publishedAt, createdAt pgtype.Timestamptz

		if err = rows.Scan(&c.ID, &videoID, &analysisUUID, &author, &text, &sentimentRaw,
			&parentID, &c.IsTopLevel, &c.LikeCount, &publishedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("list comments: scan: %w", err)
		}

		c.VideoID = fromUUID(videoID)
		c.AnalysisID = fromUUID(analysisUUID)
		c.Author = author.String
		c.Text = text.String
		c.Sentiment = domain.Sentiment(sentimentRaw)
		c.ParentID = parentID.String
		c.PublishedAt = publishedAt.Time
		c.CreatedAt = createdAt.Time

		comments = append(comments, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}

// CountCommentsByAnalysis returns how many comments an analysis persisted,
// optionally filtered by sentiment.
func (db *DB) CountCommentsByAnalysis(ctx context.Context, analysisID string, sentiment domain.Sentiment) (int, error) {
	query := `SELECT count(*) FROM comments WHERE analysis_id = $1`
	args := []any{toUUID(analysisID)}

	if sentiment != "" {
		query += ` AND sentiment = $2`
		args = append(args, string(sentiment))
	}

	var count int
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}

	return count, nil
}
