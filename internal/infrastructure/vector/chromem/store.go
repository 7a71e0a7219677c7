// Package chromem is the embedded vector-store adapter. It persists to local
// disk, so small deployments need no external vector database.
package chromem

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"

	"coursecompass/internal/core/domain"
)

type Store struct {
	db         *chromem.DB
	name       string
	mu         sync.Mutex
	collection *chromem.Collection
	dimension  int
}

func New(path, collection string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}

	s := &Store{db: db, name: collection}
	// Reopening an existing collection keeps its points; a later Reset drops
	// them for a fresh build.
	col, err := db.GetOrCreateCollection(collection, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}
	s.collection = col
	return s, nil
}

func (s *Store) Reset(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return domain.WrapError(domain.ErrInvalidConfig, "reset collection",
			fmt.Errorf("vector dimension must be positive, got %d", dimension))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := s.db.GetOrCreateCollection(s.name, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	s.collection = col
	s.dimension = dimension
	return nil
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		if s.dimension > 0 && len(vectors[i]) != s.dimension {
			return domain.WrapError(domain.ErrInvalidConfig, "upsert vectors",
				fmt.Errorf("vector dimension %d does not match collection dimension %d", len(vectors[i]), s.dimension))
		}
		ids[i] = chunk.ID
		metadatas[i] = map[string]string{
			"doc_id":     chunk.DocumentID,
			"breadcrumb": chunk.Breadcrumb,
		}
		contents[i] = chunk.Text
	}

	if err := s.collection.Add(ctx, ids, vectors, metadatas, contents); err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error) {
	s.mu.Lock()
	col := s.collection
	s.mu.Unlock()

	count := col.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := col.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	out := make([]domain.VectorHit, 0, len(results))
	for _, r := range results {
		out = append(out, domain.VectorHit{ChunkID: r.ID, Score: float64(r.Similarity)})
	}
	return out, nil
}
