package ports

import (
	"context"

	"coursecompass/internal/core/domain"
)

// CourseIngestor scans the raw course-files tree and persists Document records.
type CourseIngestor interface {
	IngestAll(ctx context.Context) ([]domain.Document, error)
}

// IndexBuilder performs a full rebuild of the retrieval index and publishes the
// resulting snapshot atomically. Rebuild processes raw documents end to end;
// Reload reconstitutes a snapshot from already-persisted chunks.
type IndexBuilder interface {
	Rebuild(ctx context.Context) error
	Reload(ctx context.Context) error
}

// PassageRetriever is the hybrid retrieval core. The result reports whether
// the ranking was degraded to lexical-only.
type PassageRetriever interface {
	Retrieve(ctx context.Context, query string, topN int) (domain.RetrievalResult, error)
}

// QuestionAnswerer is the inbound contract for the chat endpoint.
type QuestionAnswerer interface {
	Answer(ctx context.Context, query string) (*domain.Answer, error)
}
