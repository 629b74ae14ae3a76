package sentiment

import "context"

// ProviderName identifies a classifier provider.
type ProviderName string

// Provider name constants.
const (
	ProviderInference ProviderName = "inference"
	ProviderOpenAI    ProviderName = "openai"
	ProviderMock      ProviderName = "mock"
)

// Priority constants for provider ordering.
const (
	PriorityPrimary  = 100
	PriorityFallback = 50
	PriorityMock     = 0
)

// RawResult is one classifier output before label reconciliation.
type RawResult struct {
	Label string
	Score float64
}

// Provider is a batch sentiment classifier backend. ClassifyBatch must
// return exactly one result per input, in input order.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// IsAvailable returns true if the provider is configured and usable.
	IsAvailable() bool

	// Priority returns the provider priority (higher = preferred).
	Priority() int

	// ClassifyBatch classifies texts in one call.
	ClassifyBatch(ctx context.Context, texts []string) ([]RawResult, error)

	// IDToLabel returns the model's index-to-label table, or nil if the
	// backend does not expose one.
	IDToLabel(ctx context.Context) (map[int]string, error)
}
