package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	inferenceDefaultTimeout = 60 * time.Second
	inferenceDefaultRPS     = 2
	inferencePredictPath    = "/predict"
	inferenceConfigPath     = "/config"
)

var (
	errInferenceBadStatus  = errors.New("inference server bad status")
	errInferenceEmptyScore = errors.New("inference server returned no scores for input")
)

// InferenceConfig holds configuration for the inference-server provider.
type InferenceConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

// InferenceProvider talks to a text-classification inference server that
// hosts the sentiment model. The server accepts a batch of inputs and
// returns, per input, candidate labels with scores; only the top-scored
// label is used.
type InferenceProvider struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewInferenceProvider creates an inference-server provider.
func NewInferenceProvider(cfg InferenceConfig) *InferenceProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = inferenceDefaultTimeout
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = inferenceDefaultRPS
	}

	return &InferenceProvider{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Name returns the provider name.
func (p *InferenceProvider) Name() ProviderName {
	return ProviderInference
}

func (p *InferenceProvider) IsAvailable() bool {
	return p.baseURL != ""
}

func (p *InferenceProvider) Priority() int {
	return PriorityPrimary
}

type inferenceRequest struct {
	Inputs []string `json:"inputs"`
}

type inferenceScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifyBatch sends one batch to the server. The response carries one
// score list per input, in input order.
func (p *InferenceProvider) ClassifyBatch(ctx context.Context, texts []string) ([]RawResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(inferenceRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+inferencePredictPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errInferenceBadStatus, resp.StatusCode)
	}

	var scores [][]inferenceScore
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	results := make([]RawResult, len(scores))

	for i, candidates := range scores {
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: index %d", errInferenceEmptyScore, i)
		}

		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Score > best.Score {
				best = c
			}
		}

		results[i] = RawResult{Label: best.Label, Score: best.Score}
	}

	return results, nil
}

type inferenceConfigResponse struct {
	ID2Label map[string]string `json:"id2label"`
}

// IDToLabel fetches the model's id2label table from the server's config
// endpoint.
func (p *InferenceProvider) IDToLabel(ctx context.Context) (map[int]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+inferenceConfigPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build config request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("config request: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errInferenceBadStatus, resp.StatusCode)
	}

	var cfg inferenceConfigResponse
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config response: %w", err)
	}

	if len(cfg.ID2Label) == 0 {
		return nil, nil
	}

	table := make(map[int]string, len(cfg.ID2Label))

	for k, v := range cfg.ID2Label {
		idx, err := strconv.Atoi(k)
		if err != nil {
			continue
		}

		table[idx] = v
	}

	return table, nil
}
