package usecase

import (
	"context"
	"strings"
	"testing"

	"coursecompass/internal/core/domain"
	"coursecompass/internal/core/ports"
	"coursecompass/internal/infrastructure/chunking"
	"coursecompass/internal/infrastructure/lexical"
)

type stubIngestor struct {
	docs []domain.Document
}

func (s *stubIngestor) IngestAll(_ context.Context) ([]domain.Document, error) {
	return s.docs, nil
}

func newLexicalFactory() func() ports.LexicalIndex {
	return func() ports.LexicalIndex { return lexical.New() }
}

func TestRebuildPublishesSnapshotWithGlobalOrdinals(t *testing.T) {
	ingestor := &stubIngestor{docs: []domain.Document{
		{ID: "d1", Breadcrumb: "Modules > syllabus", Text: strings.Repeat("a", 150)},
		{ID: "d2", Breadcrumb: "Week_01 > overview", Text: strings.Repeat("b", 50)},
	}}
	repo := &memoryRepo{}
	vectors := &stubVectorStore{}
	chunker, err := chunking.NewSplitter(100, 20)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}
	holder := NewSnapshotHolder()
	uc := NewIndexUseCase(ingestor, repo, chunker, &stubEmbedder{}, vectors, newLexicalFactory(), holder, nil, testLogger())

	if err := uc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	snap := holder.Load()
	if snap == nil {
		t.Fatalf("rebuild must publish a snapshot")
	}
	if snap.ChunkCount() != 3 {
		t.Fatalf("expected 3 chunks (2 from d1, 1 from d2), got %d", snap.ChunkCount())
	}
	for i := 0; i < snap.ChunkCount(); i++ {
		c, ok := snap.ChunkByOrdinal(i)
		if !ok || c.Ordinal != i {
			t.Fatalf("ordinal %d not contiguous: %+v", i, c)
		}
	}
	second, _ := snap.ChunkByOrdinal(1)
	if second.DocumentID != "d1" || second.Seq != 1 {
		t.Fatalf("per-document sequence broken: %+v", second)
	}
	third, _ := snap.ChunkByOrdinal(2)
	if third.DocumentID != "d2" || third.Seq != 0 {
		t.Fatalf("sequence must restart per document: %+v", third)
	}
	if len(repo.chunks) != 3 {
		t.Fatalf("chunks not persisted")
	}
	if len(vectors.resets) != 1 || vectors.resets[0] != 3 {
		t.Fatalf("vector collection not reset with embedding dimension: %v", vectors.resets)
	}
	if vectors.upserted != 3 {
		t.Fatalf("expected 3 vectors upserted, got %d", vectors.upserted)
	}
}

func TestRebuildFailsFastOnMixedEmbeddingDimensions(t *testing.T) {
	ingestor := &stubIngestor{docs: []domain.Document{
		{ID: "d1", Text: "short one"},
		{ID: "d2", Text: "short two"},
	}}
	embedder := &stubEmbedder{batches: [][][]float32{
		{{1, 0, 0}, {1, 0}},
	}}
	chunker, err := chunking.NewSplitter(100, 20)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}
	uc := NewIndexUseCase(ingestor, &memoryRepo{}, chunker, embedder, &stubVectorStore{}, newLexicalFactory(), NewSnapshotHolder(), nil, testLogger())

	err = uc.Rebuild(context.Background())
	if !domain.IsKind(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for mixed dimensions, got %v", err)
	}
}

func TestReloadReconstitutesFromPersistedChunks(t *testing.T) {
	repo := &memoryRepo{chunks: []domain.Chunk{
		{ID: "c0", DocumentID: "d1", Ordinal: 0, Text: "policy memo rubric"},
		{ID: "c1", DocumentID: "d2", Ordinal: 1, Text: "weekly readings"},
	}}
	holder := NewSnapshotHolder()
	chunker, err := chunking.NewSplitter(100, 20)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}
	uc := NewIndexUseCase(&stubIngestor{}, repo, chunker, &stubEmbedder{}, &stubVectorStore{}, newLexicalFactory(), holder, nil, testLogger())

	if err := uc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	snap := holder.Load()
	if snap == nil || snap.ChunkCount() != 2 {
		t.Fatalf("expected reloaded snapshot with 2 chunks")
	}
	hits := snap.lexical.TopK([]string{"rubric"}, 5)
	if len(hits) != 1 || hits[0].ChunkID != "c0" {
		t.Fatalf("lexical index not rebuilt from persisted chunks: %+v", hits)
	}
}

func TestRebuildEmptyCorpusPublishesEmptySnapshot(t *testing.T) {
	holder := NewSnapshotHolder()
	vectors := &stubVectorStore{}
	chunker, err := chunking.NewSplitter(100, 20)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}
	uc := NewIndexUseCase(&stubIngestor{}, &memoryRepo{}, chunker, &stubEmbedder{}, vectors, newLexicalFactory(), holder, nil, testLogger())

	if err := uc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	snap := holder.Load()
	if snap == nil || snap.ChunkCount() != 0 {
		t.Fatalf("empty corpus must still publish a snapshot")
	}
	if len(vectors.resets) != 0 {
		t.Fatalf("no vector work expected for empty corpus")
	}
}
