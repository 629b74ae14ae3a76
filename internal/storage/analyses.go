package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vidsent/vidsent/internal/core/domain"
	coreerrors "github.com/vidsent/vidsent/internal/core/errors"
)

// Analysis is an alias for the domain type.
type Analysis = domain.Analysis

// CreateAnalysis inserts a new analysis row with null counts. The row is the
// run's durable identity: it exists even when later stages fail.
func (db *DB) CreateAnalysis(ctx context.Context, analysis *Analysis) error {
	analysis.ID = uuid.NewString()
	analysis.CreatedAt = time.Now().UTC()

	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO analyses (id, video_id, requested_by, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		toUUID(analysis.ID), toUUID(analysis.VideoID), toUUID(analysis.RequestedBy),
		toTimestamptz(analysis.CreatedAt),
	); err != nil {
		return fmt.Errorf("create analysis: %w", err)
	}

	return nil
}

// UpdateAnalysisCounts writes the final aggregate onto an analysis row.
// Called exactly once per successful run.
func (db *DB) UpdateAnalysisCounts(ctx context.Context, analysisID string, total, positive, negative, neutral int) error {
	if _, err := db.Pool.Exec(ctx, `
		UPDATE analyses
		SET total_comments = $2, positive_count = $3, negative_count = $4, neutral_count = $5
		WHERE id = $1
	`, toUUID(analysisID), total, positive, negative, neutral); err != nil {
		return fmt.Errorf("update analysis counts: %w", err)
	}

	return nil
}

// GetLatestAnalysisForVideo returns the most recent analysis of one video
// for one requester. Returns coreerrors.ErrNotFound when none exists.
func (db *DB) GetLatestAnalysisForVideo(ctx context.Context, videoID, requestedBy string) (*Analysis, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, requested_by, total_comments, positive_count,
		       negative_count, neutral_count, created_at
		FROM analyses
		WHERE video_id = $1 AND requested_by = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, toUUID(videoID), toUUID(requestedBy))
	if err != nil {
		return nil, fmt.Errorf("get latest analysis: %w", err)
	}
	defer rows.Close()

	analyses, err := scanAnalyses(rows)
	if err != nil {
		return nil, fmt.Errorf("get latest analysis: %w", err)
	}

	if len(analyses) == 0 {
		return nil, coreerrors.ErrNotFound
	}

	return &analyses[0], nil
}

// ListAnalysesForVideo returns the analysis history of one video, most
// recent first.
func (db *DB) ListAnalysesForVideo(ctx context.Context, videoID string, limit int) ([]Analysis, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, requested_by, total_comments, positive_count,
		       negative_count, neutral_count, created_at
		FROM analyses
		WHERE video_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, toUUID(videoID), limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	analyses, err := scanAnalyses(rows)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	return analyses, nil
}

func scanAnalyses(rows pgx.Rows) ([]Analysis, error) {
	var analyses []Analysis

	for rows.Next() {
		var a Analysis
		var id, videoID, requestedBy pgtype.UUID
		var total, positive, negative, neutral pgtype.Int4
		var createdAt pgtype.Timestamptz

		if err := rows.Scan(&id, &videoID, &requestedBy, &total, &positive, &negative, &neutral, &createdAt); err != nil {
			return nil, err
		}

		a.ID = fromUUID(id)
		a.VideoID = fromUUID(videoID)
		a.RequestedBy = fromUUID(requestedBy)
		a.TotalComments = fromInt4Ptr(total)
		a.PositiveCount = fromInt4Ptr(positive)
		a.NegativeCount = fromInt4Ptr(negative)
		a.NeutralCount = fromInt4Ptr(neutral)
		a.CreatedAt = createdAt.Time

		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}
