package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coursecompass/internal/core/domain"
	"coursecompass/internal/core/ports"
)

type fakeAnswerer struct {
	answer *domain.Answer
	err    error
	calls  int
}

func (f *fakeAnswerer) Answer(_ context.Context, _ string) (*domain.Answer, error) {
	f.calls++
	return f.answer, f.err
}

type fakeRetriever struct {
	passages []domain.RetrievedPassage
	degraded bool
	err      error
	calls    int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, _ int) (domain.RetrievalResult, error) {
	f.calls++
	return domain.RetrievalResult{Passages: f.passages, Degraded: f.degraded}, f.err
}

type fakeQueue struct {
	reindexRequests int
	err             error
}

func (f *fakeQueue) PublishReindexRequested(_ context.Context) error {
	f.reindexRequests++
	return f.err
}

func (f *fakeQueue) SubscribeReindexRequested(_ context.Context, _ func(context.Context) error) error {
	return nil
}

func (f *fakeQueue) PublishIndexPublished(_ context.Context, _ int) error { return nil }

func (f *fakeQueue) SubscribeIndexPublished(_ context.Context, _ func(context.Context, int) error) error {
	return nil
}

func newTestRouter(answerer *fakeAnswerer, retriever *fakeRetriever, queue ports.MessageQueue, ready bool) http.Handler {
	rt := NewRouter(answerer, retriever, queue, func() bool { return ready }, nil, RouterConfig{})
	return rt.Handler()
}

func TestChatRejectsEmptyQueryBeforeOracles(t *testing.T) {
	answerer := &fakeAnswerer{}
	handler := newTestRouter(answerer, &fakeRetriever{}, nil, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"query": "   "}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if answerer.calls != 0 {
		t.Fatalf("answerer must not be called for empty query")
	}
}

func TestChatRejectsInvalidJSON(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, &fakeRetriever{}, nil, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{not json`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestChatReturnsAnswerWithCitations(t *testing.T) {
	answerer := &fakeAnswerer{answer: &domain.Answer{
		Text: "The rubric is in Week 2.",
		Sources: []domain.Citation{
			{Breadcrumb: "Modules > Week_02 > Policy Memo Rubric", Snippet: "policy memo rubric..."},
		},
		Confidence: 0.9,
	}}
	handler := newTestRouter(answerer, &fakeRetriever{}, nil, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"query": "Where is the rubric?"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var got struct {
		Answer     string `json:"answer"`
		Sources    []any  `json:"sources"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Answer == "" || len(got.Sources) != 1 || got.Confidence != 0.9 {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestChatIndexNotReadyMapsTo503(t *testing.T) {
	answerer := &fakeAnswerer{err: domain.WrapError(domain.ErrIndexNotReady, "retrieve", errors.New("no snapshot published"))}
	handler := newTestRouter(answerer, &fakeRetriever{}, nil, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"query": "anything"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "not indexed yet") {
		t.Fatalf("error must distinguish needs-indexing from backend-down: %s", res.Body.String())
	}
}

func TestChatBackendErrorMapsTo502(t *testing.T) {
	answerer := &fakeAnswerer{err: domain.WrapError(domain.ErrRetrievalBackend, "retrieve", errors.New("connection refused"))}
	handler := newTestRouter(answerer, &fakeRetriever{}, nil, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"query": "anything"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "backend unavailable") {
		t.Fatalf("unexpected body: %s", res.Body.String())
	}
}

func TestHealthzReflectsSnapshotReadiness(t *testing.T) {
	cold := newTestRouter(&fakeAnswerer{}, &fakeRetriever{}, nil, false)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	cold.ServeHTTP(res, req)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("cold replica expected 503, got %d", res.Code)
	}

	warm := newTestRouter(&fakeAnswerer{}, &fakeRetriever{}, nil, true)
	res2 := httptest.NewRecorder()
	warm.ServeHTTP(res2, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res2.Code != http.StatusOK {
		t.Fatalf("warm replica expected 200, got %d", res2.Code)
	}
}

func TestDebugRetrieveRequiresQuery(t *testing.T) {
	retriever := &fakeRetriever{}
	handler := newTestRouter(&fakeAnswerer{}, retriever, nil, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/debug/retrieve", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if retriever.calls != 0 {
		t.Fatalf("retriever must not be called without a query")
	}
}

func TestDebugRetrieveExposesFusedScores(t *testing.T) {
	v := 0.8
	retriever := &fakeRetriever{
		passages: []domain.RetrievedPassage{
			{
				Chunk:       domain.Chunk{ID: "c1", DocumentID: "d1", Breadcrumb: "Modules > Syllabus", Text: "grading"},
				VectorScore: &v,
				FusedScore:  0.4,
				Rank:        1,
			},
		},
		degraded: true,
	}
	handler := newTestRouter(&fakeAnswerer{}, retriever, nil, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/debug/retrieve?q=grading&n=3", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var got struct {
		Degraded bool `json:"degraded"`
		Passages []struct {
			ChunkID      string   `json:"chunk_id"`
			VectorScore  *float64 `json:"vector_score"`
			LexicalScore *float64 `json:"lexical_score"`
			FusedScore   float64  `json:"fused_score"`
		} `json:"passages"`
	}
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Passages) != 1 || got.Passages[0].ChunkID != "c1" {
		t.Fatalf("unexpected passages: %+v", got.Passages)
	}
	if got.Passages[0].VectorScore == nil || got.Passages[0].LexicalScore != nil {
		t.Fatalf("signal presence must survive serialization: %+v", got.Passages[0])
	}
	if !got.Degraded {
		t.Fatalf("degraded flag must survive serialization")
	}
}

func TestReindexPublishesRequest(t *testing.T) {
	queue := &fakeQueue{}
	handler := newTestRouter(&fakeAnswerer{}, &fakeRetriever{}, queue, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/reindex", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
	if queue.reindexRequests != 1 {
		t.Fatalf("expected one published reindex request, got %d", queue.reindexRequests)
	}
}

func TestReindexWithoutQueueIsNotImplemented(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, &fakeRetriever{}, nil, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/reindex", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", res.Code)
	}
}
