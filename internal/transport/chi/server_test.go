package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/soff-cloud/playkb/internal/domain"
	"github.com/soff-cloud/playkb/internal/domain/answer"
	"github.com/soff-cloud/playkb/internal/domain/match"
	"github.com/soff-cloud/playkb/internal/domain/noise"
	"github.com/soff-cloud/playkb/internal/metrics"
	healthuc "github.com/soff-cloud/playkb/internal/usecase/health"
	retrievaluc "github.com/soff-cloud/playkb/internal/usecase/retrieval"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()
	m.Run()
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockIndex struct {
	candidates []match.Candidate
	err        error
}

func (m *mockIndex) Query(_ context.Context, _ []float32, _ int) ([]match.Candidate, error) {
	return m.candidates, m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestServer(t *testing.T, embed *mockEmbedder, index *mockIndex, indexPing error) http.Handler {
	t.Helper()

	filter, err := noise.New(noise.Config{Profile: noise.ProfileLoose})
	if err != nil {
		t.Fatalf("noise filter: %v", err)
	}
	retrieval := retrievaluc.New(embed, index, answer.NewAssembler(filter), retrievaluc.Config{
		TextKey:        "text",
		TopK:           12,
		MaxChars:       1800,
		MaxChunks:      6,
		FallbackAnswer: "Not found.",
	}, zap.NewNop())
	health := healthuc.New(&mockPinger{err: indexPing}, nil, nil)

	r := chi.NewRouter()
	NewServer(retrieval, health, zap.NewNop()).Register(r)
	return r
}

func askQuestion(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/question/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestAskQuestion_HappyPath(t *testing.T) {
	text := "a sufficiently long explanatory passage about the product that passes the noise filter"
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	index := &mockIndex{candidates: []match.Candidate{
		match.NewCandidate("a", 0.9, map[string]any{"text": text}),
	}}
	handler := newTestServer(t, embed, index, nil)

	rec := askQuestion(t, handler, `{"question": "kpi nima?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp QuestionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if !resp.Found {
		t.Error("expected found=true")
	}
	if resp.Answer != text {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].ID != "a" || resp.Matches[0].Score != 0.9 {
		t.Errorf("unexpected matches: %+v", resp.Matches)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %q", ct)
	}
}

func TestAskQuestion_InvalidBody(t *testing.T) {
	embed := &mockEmbedder{}
	handler := newTestServer(t, embed, &mockIndex{}, nil)

	rec := askQuestion(t, handler, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "bad_request" {
		t.Errorf("expected bad_request, got %q", resp.Code)
	}
	if embed.called {
		t.Error("embedder must not be called for an invalid body")
	}
}

func TestAskQuestion_EmptyQuestion(t *testing.T) {
	embed := &mockEmbedder{}
	handler := newTestServer(t, embed, &mockIndex{}, nil)

	rec := askQuestion(t, handler, `{"question": "   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "empty_question" {
		t.Errorf("expected empty_question, got %q", resp.Code)
	}
	if embed.called {
		t.Error("embedder must not be called for an empty question")
	}
}

func TestAskQuestion_TooLong(t *testing.T) {
	handler := newTestServer(t, &mockEmbedder{}, &mockIndex{}, nil)

	long := strings.Repeat("a", maxQuestionLength+1)
	rec := askQuestion(t, handler, `{"question": "`+long+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "question_too_long" {
		t.Errorf("expected question_too_long, got %q", resp.Code)
	}
}

func TestAskQuestion_ProviderError(t *testing.T) {
	embed := &mockEmbedder{err: domain.NewProviderStatusError(429, "rate limited")}
	handler := newTestServer(t, embed, &mockIndex{}, nil)

	rec := askQuestion(t, handler, `{"question": "kpi nima?"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != "embedding_provider_error" {
		t.Errorf("expected embedding_provider_error, got %q", resp.Code)
	}
	if resp.Message != domain.ErrEmbeddingProviderError.Error() {
		t.Errorf("provider details must not leak to the client: %q", resp.Message)
	}
}

func TestAskQuestion_IndexUnavailable(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1}}
	index := &mockIndex{err: domain.ErrIndexUnavailable}
	handler := newTestServer(t, embed, index, nil)

	rec := askQuestion(t, handler, `{"question": "kpi nima?"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "index_unavailable" {
		t.Errorf("expected index_unavailable, got %q", resp.Code)
	}
}

func TestAskQuestion_UnknownError(t *testing.T) {
	embed := &mockEmbedder{err: errors.New("disk on fire")}
	handler := newTestServer(t, embed, &mockIndex{}, nil)

	rec := askQuestion(t, handler, `{"question": "kpi nima?"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != "internal_error" || resp.Message != "internal error" {
		t.Errorf("internal details must not leak: %+v", resp)
	}
}

func TestAskQuestion_FallbackAnswer(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1}}
	handler := newTestServer(t, embed, &mockIndex{}, nil)

	rec := askQuestion(t, handler, `{"question": "kpi nima?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("a not-found outcome is still 200, got %d", rec.Code)
	}

	var resp QuestionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Found {
		t.Error("expected found=false")
	}
	if resp.Answer != "Not found." {
		t.Errorf("expected fallback answer, got %q", resp.Answer)
	}
	if len(resp.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(resp.Matches))
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		indexPing  error
		wantStatus int
		wantBody   string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"index down", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestServer(t, &mockEmbedder{}, &mockIndex{}, tt.indexPing)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("expected status %q, got %q", tt.wantBody, resp.Status)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, &mockEmbedder{}, &mockIndex{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_") {
		t.Error("expected prometheus exposition output")
	}
}
