package sentiment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	coreerrors "github.com/vidsent/vidsent/internal/core/errors"
)

// Registry manages classifier providers with priority-ordered fallback.
// Providers are registered once at startup and the registry is read-only
// afterwards, so concurrent runs may share it.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	logger    *zerolog.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a provider and re-sorts by priority (highest first).
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority() > r.providers[j].Priority()
	})

	r.logger.Info().
		Str("provider", string(p.Name())).
		Int("priority", p.Priority()).
		Bool("available", p.IsAvailable()).
		Msg("registered classifier provider")
}

// ClassifyBatch tries each available provider in priority order until one
// succeeds.
func (r *Registry) ClassifyBatch(ctx context.Context, texts []string) ([]RawResult, error) {
	providers := r.available()
	if len(providers) == 0 {
		return nil, coreerrors.ErrNoProvidersAvailable
	}

	var lastErr error

	for _, p := range providers {
		results, err := p.ClassifyBatch(ctx, texts)
		if err == nil {
			return results, nil
		}

		lastErr = err

		r.logger.Warn().Err(err).Str("provider", string(p.Name())).Msg("classifier provider failed, trying next")
	}

	return nil, fmt.Errorf("all classifier providers failed: %w", lastErr)
}

// IDToLabel returns the first available provider's index-to-label table.
func (r *Registry) IDToLabel(ctx context.Context) (map[int]string, error) {
	providers := r.available()
	if len(providers) == 0 {
		return nil, coreerrors.ErrNoProvidersAvailable
	}

	return providers[0].IDToLabel(ctx)
}

func (r *Registry) available() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.providers))

	for _, p := range r.providers {
		if p.IsAvailable() {
			out = append(out, p)
		}
	}

	return out
}
