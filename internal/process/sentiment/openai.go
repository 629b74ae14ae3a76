package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const openaiDefaultRPS = 2

var (
	errOpenAIEmptyResponse = errors.New("openai empty response")
	errOpenAIBadIndex      = errors.New("openai result index out of range")
)

// OpenAIConfig holds configuration for the OpenAI-backed provider.
type OpenAIConfig struct {
	APIKey string
	Model  string
	RPS    float64
}

// OpenAIProvider classifies text by prompting a chat model for a strict
// JSON result array. It is the fallback when no dedicated inference server
// is deployed.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	rateLimiter *rate.Limiter
	apiKey      string
}

// NewOpenAIProvider creates an OpenAI-backed classifier provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = openaiDefaultRPS
	}

	return &OpenAIProvider{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		apiKey:      cfg.APIKey,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() ProviderName {
	return ProviderOpenAI
}

func (p *OpenAIProvider) IsAvailable() bool {
	return p.apiKey != ""
}

func (p *OpenAIProvider) Priority() int {
	return PriorityFallback
}

// IDToLabel returns nil: the prompt constrains labels directly, there is no
// indexed scheme to resolve.
func (p *OpenAIProvider) IDToLabel(_ context.Context) (map[int]string, error) {
	return nil, nil
}

type openaiResultEnvelope struct {
	Results []struct {
		Index int     `json:"index"`
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// ClassifyBatch prompts the model for one labeled result per input text.
func (p *OpenAIProvider) ClassifyBatch(ctx context.Context, texts []string) ([]RawResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildClassifyPrompt(texts),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errOpenAIEmptyResponse
	}

	var envelope openaiResultEnvelope
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &envelope); err != nil {
		return nil, fmt.Errorf("parse openai response: %w", err)
	}

	results := make([]RawResult, len(texts))
	seen := make([]bool, len(texts))

	for _, r := range envelope.Results {
		if r.Index < 0 || r.Index >= len(texts) {
			return nil, fmt.Errorf("%w: %d", errOpenAIBadIndex, r.Index)
		}

		results[r.Index] = RawResult{Label: r.Label, Score: r.Score}
		seen[r.Index] = true
	}

	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("openai response missing result for index %d", i)
		}
	}

	return results, nil
}

func buildClassifyPrompt(texts []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"Classify the sentiment of these %d texts. Return a JSON object with a 'results' key "+
			"containing an array of exactly %d objects, one per text, each with:\n"+
			"- index (integer, matching the [ID] below)\n"+
			"- label (string): exactly one of \"positive\", \"negative\", \"neutral\"\n"+
			"- score (number, 0-1): your confidence\n\nTexts:\n",
		len(texts), len(texts)))

	for i, t := range texts {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i, t))
	}

	return sb.String()
}
