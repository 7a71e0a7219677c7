package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coursecompass/internal/core/domain"
	"coursecompass/internal/core/ports"
	"coursecompass/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	answerer  ports.QuestionAnswerer
	retriever ports.PassageRetriever
	queue     ports.MessageQueue
	ready     func() bool
	metrics   *metrics.HTTPServerMetrics

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
	collection     string
	chunkCount     func() int
}

type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int

	// Collection and ChunkCount enrich /healthz; both are optional.
	Collection string
	ChunkCount func() int
}

func NewRouter(
	answerer ports.QuestionAnswerer,
	retriever ports.PassageRetriever,
	queue ports.MessageQueue,
	ready func() bool,
	m *metrics.HTTPServerMetrics,
	cfg RouterConfig,
) *Router {
	return &Router{
		answerer:       answerer,
		retriever:      retriever,
		queue:          queue,
		ready:          ready,
		metrics:        m,
		rateLimitRPS:   cfg.RateLimitRPS,
		rateLimitBurst: cfg.RateLimitBurst,
		maxInFlight:    cfg.MaxInFlight,
		collection:     cfg.Collection,
		chunkCount:     cfg.ChunkCount,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.chat)
	mux.HandleFunc("/v1/debug/retrieve", rt.debugRetrieve)
	mux.HandleFunc("/v1/reindex", rt.reindex)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, 100*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

// healthz reports degraded (503) until a first index snapshot is published,
// so orchestrators hold traffic off a cold replica.
func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if rt.collection != "" {
		payload["collection"] = rt.collection
	}
	if rt.chunkCount != nil {
		payload["chunks"] = rt.chunkCount()
	}
	if rt.ready != nil && !rt.ready() {
		payload["status"] = "index not ready"
		writeJSON(w, http.StatusServiceUnavailable, payload)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	// Rejected here, before any oracle is touched.
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Query)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAnswer(serviceName, "/v1/chat", len(answer.Sources), answer.Confidence, time.Since(start))
	}
	writeJSON(w, http.StatusOK, answer)
}

// debugRetrieve exposes the raw fused ranking so retrieval quality can be
// inspected without the answer layer on top.
func (rt *Router) debugRetrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'q' is required"})
		return
	}
	topN := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'n' must be a positive integer"})
			return
		}
		topN = n
	}

	result, err := rt.retriever.Retrieve(r.Context(), query, topN)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	type debugPassage struct {
		ChunkID      string   `json:"chunk_id"`
		DocumentID   string   `json:"document_id"`
		Breadcrumb   string   `json:"breadcrumb"`
		VectorScore  *float64 `json:"vector_score"`
		LexicalScore *float64 `json:"lexical_score"`
		FusedScore   float64  `json:"fused_score"`
		Rank         int      `json:"rank"`
		Text         string   `json:"text"`
	}
	out := make([]debugPassage, 0, len(result.Passages))
	for _, p := range result.Passages {
		out = append(out, debugPassage{
			ChunkID:      p.Chunk.ID,
			DocumentID:   p.Chunk.DocumentID,
			Breadcrumb:   p.Chunk.Breadcrumb,
			VectorScore:  p.VectorScore,
			LexicalScore: p.LexicalScore,
			FusedScore:   p.FusedScore,
			Rank:         p.Rank,
			Text:         p.Chunk.Text,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":    query,
		"degraded": result.Degraded,
		"passages": out,
	})
}

// reindex hands the rebuild off to the worker via the queue and returns
// immediately; the new snapshot goes live when the worker announces it.
func (rt *Router) reindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.queue == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "reindex queue not configured"})
		return
	}
	if err := rt.queue.PublishReindexRequested(r.Context()); err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reindex requested"})
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	msg := publicErrorMessage(err)
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// publicErrorMessage keeps backend detail out of client responses while
// preserving the distinction callers act on.
func publicErrorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrIndexNotReady):
		return "course materials are not indexed yet"
	case domain.IsKind(err, domain.ErrRetrievalBackend):
		return "retrieval backend unavailable"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "query is required"
	default:
		return "internal error"
	}
}
