package sentiment

import (
	"context"
	"strings"
)

// mockProvider implements Provider for tests and local development without
// a model backend. Classification is keyword-based and deterministic.
type mockProvider struct{}

// NewMockProvider creates the mock classifier provider.
func NewMockProvider() Provider {
	return &mockProvider{}
}

func (p *mockProvider) Name() ProviderName {
	return ProviderMock
}

func (p *mockProvider) IsAvailable() bool {
	return true
}

func (p *mockProvider) Priority() int {
	return PriorityMock
}

func (p *mockProvider) IDToLabel(_ context.Context) (map[int]string, error) {
	return nil, nil
}

var (
	mockPositiveWords = []string{"good", "great", "love", "bagus", "mantap", "keren"}
	mockNegativeWords = []string{"bad", "hate", "awful", "jelek", "buruk"}
)

func (p *mockProvider) ClassifyBatch(_ context.Context, texts []string) ([]RawResult, error) {
	results := make([]RawResult, len(texts))

	for i, t := range texts {
		lower := strings.ToLower(t)

		results[i] = RawResult{Label: "neutral", Score: 0.5}

		for _, w := range mockPositiveWords {
			if strings.Contains(lower, w) {
				results[i] = RawResult{Label: "positive", Score: 0.9}
				break
			}
		}

		for _, w := range mockNegativeWords {
			if strings.Contains(lower, w) {
				results[i] = RawResult{Label: "negative", Score: 0.9}
				break
			}
		}
	}

	return results, nil
}
