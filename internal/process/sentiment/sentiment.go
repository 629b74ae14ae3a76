// Package sentiment classifies normalized comment text into positive,
// negative or neutral.
//
// A Classifier wraps a batch-capable backend (an inference server, an LLM,
// or a mock) and reconciles the backend's label scheme onto the canonical
// three-way tags. Results always correlate 1:1 and in order with the input
// texts.
package sentiment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidsent/vidsent/internal/core/domain"
	coreerrors "github.com/vidsent/vidsent/internal/core/errors"
	"github.com/vidsent/vidsent/internal/platform/observability"
)

const defaultBatchSize = 16

// Result is one classified text.
type Result struct {
	Label      Label
	Confidence float64
}

// Backend is the minimal classification surface the Classifier needs.
// *Registry satisfies it.
type Backend interface {
	ClassifyBatch(ctx context.Context, texts []string) ([]RawResult, error)
	IDToLabel(ctx context.Context) (map[int]string, error)
}

// Classifier batches texts through a backend and reconciles labels.
type Classifier struct {
	backend    Backend
	reconciler *Reconciler
	batchSize  int
	logger     *zerolog.Logger

	tableOnce sync.Once
	table     map[int]string
}

// NewClassifier creates a Classifier. batchSize <= 0 falls back to the
// default.
func NewClassifier(backend Backend, reconciler *Reconciler, batchSize int, logger *zerolog.Logger) *Classifier {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Classifier{
		backend:    backend,
		reconciler: reconciler,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Analyze classifies a single text. Blank or whitespace-only input
// short-circuits to neutral with zero confidence without touching the
// backend.
func (c *Classifier) Analyze(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{Label: Known(domain.SentimentNeutral), Confidence: 0}, nil
	}

	results, err := c.AnalyzeBatch(ctx, []string{text})
	if err != nil {
		return Result{}, err
	}

	return results[0], nil
}

// AnalyzeBatch classifies texts, returning exactly one result per input in
// input order. Empty strings are replaced with a single space before the
// backend call so the model never sees truly empty input; their results are
// ordinary classifications.
func (c *Classifier) AnalyzeBatch(ctx context.Context, texts []string) ([]Result, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	safe := make([]string, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			safe[i] = " "
		} else {
			safe[i] = t
		}
	}

	table := c.idToLabel(ctx)

	results := make([]Result, 0, len(texts))

	for start := 0; start < len(safe); start += c.batchSize {
		end := start + c.batchSize
		if end > len(safe) {
			end = len(safe)
		}

		chunk := safe[start:end]

		began := time.Now()

		raw, err := c.backend.ClassifyBatch(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("classify batch: %w", err)
		}

		observability.ClassifierRequestDuration.WithLabelValues("backend").Observe(time.Since(began).Seconds())

		if len(raw) != len(chunk) {
			return nil, fmt.Errorf("%w: sent %d, got %d", coreerrors.ErrResultCountMismatch, len(chunk), len(raw))
		}

		for _, rr := range raw {
			results = append(results, Result{
				Label:      c.reconciler.Reconcile(rr.Label, table),
				Confidence: rr.Score,
			})
		}
	}

	return results, nil
}

// idToLabel fetches the backend's label table once per Classifier lifetime.
// A missing or failing table is not an error; indexed labels then degrade
// to passthrough.
func (c *Classifier) idToLabel(ctx context.Context) map[int]string {
	c.tableOnce.Do(func() {
		table, err := c.backend.IDToLabel(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("no index-to-label table available")
			return
		}

		c.table = table
	})

	return c.table
}
