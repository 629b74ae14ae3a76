package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestInferenceProvider(baseURL string) *InferenceProvider {
	return NewInferenceProvider(InferenceConfig{BaseURL: baseURL, RPS: 10000})
}

func TestInferenceClassifyBatchTakesBestScore(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req inferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		if len(req.Inputs) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(req.Inputs))
		}

		w.WriteHeader(http.StatusOK)

		body := `[
			[{"label": "negative", "score": 0.2}, {"label": "positive", "score": 0.7}, {"label": "neutral", "score": 0.1}],
			[{"label": "neutral", "score": 0.8}, {"label": "positive", "score": 0.2}]
		]`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer ts.Close()

	p := newTestInferenceProvider(ts.URL)

	results, err := p.ClassifyBatch(context.Background(), []string{"great", "a video"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].Label != "positive" || results[0].Score != 0.7 {
		t.Errorf("expected top candidate positive/0.7, got %+v", results[0])
	}

	if results[1].Label != "neutral" {
		t.Errorf("expected neutral, got %+v", results[1])
	}
}

func TestInferenceClassifyBatchBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	p := newTestInferenceProvider(ts.URL)

	if _, err := p.ClassifyBatch(context.Background(), []string{"text"}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestInferenceClassifyBatchEmptyScoreList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(`[[]]`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer ts.Close()

	p := newTestInferenceProvider(ts.URL)

	if _, err := p.ClassifyBatch(context.Background(), []string{"text"}); err == nil {
		t.Fatal("expected error on empty score list")
	}
}

func TestInferenceIDToLabel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/config" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		w.WriteHeader(http.StatusOK)

		body := `{"id2label": {"0": "negative", "1": "neutral", "2": "positive"}}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer ts.Close()

	p := newTestInferenceProvider(ts.URL)

	table, err := p.IDToLabel(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table[0] != "negative" || table[1] != "neutral" || table[2] != "positive" {
		t.Errorf("unexpected table: %v", table)
	}
}

func TestInferenceIDToLabelMissingTable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(`{}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer ts.Close()

	p := newTestInferenceProvider(ts.URL)

	table, err := p.IDToLabel(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table != nil {
		t.Errorf("expected nil table, got %v", table)
	}
}

func TestInferenceIsAvailable(t *testing.T) {
	if NewInferenceProvider(InferenceConfig{}).IsAvailable() {
		t.Error("provider without a base url must not be available")
	}

	if !newTestInferenceProvider("http://localhost:1").IsAvailable() {
		t.Error("provider with a base url must be available")
	}
}
