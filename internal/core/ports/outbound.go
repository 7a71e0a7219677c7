package ports

import (
	"context"
	"io"

	"coursecompass/internal/core/domain"
)

// CourseFileSource enumerates and opens raw course files.
type CourseFileSource interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)
}

// TextExtractor turns one raw file into one or more extracted texts. CSV and
// XLSX files yield one text per row; everything else yields a single text.
type TextExtractor interface {
	Supports(relPath string) bool
	Extract(ctx context.Context, relPath string, r io.Reader) ([]string, error)
}

// DocumentRepository persists ingestion output and the chunks of the last
// successful build, so a restart reconstitutes retrieval without reprocessing
// raw files.
type DocumentRepository interface {
	ReplaceDocuments(ctx context.Context, docs []domain.Document) error
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	ReplaceChunks(ctx context.Context, chunks []domain.Chunk) error
	ListChunks(ctx context.Context) ([]domain.Chunk, error)
}

// Chunker splits document text into overlapping windows with char offsets.
type Chunker interface {
	Split(text string) []domain.Window
}

// Embedder is the embedding oracle: fixed output dimensionality per model.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the dense-retrieval capability: upsert chunk vectors with
// metadata, query nearest neighbors by vector.
type VectorStore interface {
	Reset(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	Query(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error)
}

// LexicalIndex is the sparse-retrieval capability: TF-IDF over chunk text.
// Build fully replaces prior state; a built index never fails at query time.
type LexicalIndex interface {
	Build(chunks []domain.Chunk)
	TopK(queryTerms []string, k int) []domain.LexicalHit
	Len() int
}

// AnswerGenerator is the generative oracle. Implementations must honor the
// context deadline.
type AnswerGenerator interface {
	Generate(ctx context.Context, question, context_ string) (string, error)
}

// MessageQueue carries reindex requests from the API to the worker and
// publish notifications back.
type MessageQueue interface {
	PublishReindexRequested(ctx context.Context) error
	SubscribeReindexRequested(ctx context.Context, handler func(context.Context) error) error
	PublishIndexPublished(ctx context.Context, chunkCount int) error
	SubscribeIndexPublished(ctx context.Context, handler func(context.Context, int) error) error
}
