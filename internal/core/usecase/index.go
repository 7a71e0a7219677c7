package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"coursecompass/internal/core/domain"
	"coursecompass/internal/core/ports"
)

const embedBatchSize = 32

// IndexUseCase owns the build-then-publish index lifecycle. Rebuild processes
// raw files end to end; Reload reconstitutes a snapshot from the chunks of
// the last successful build without touching raw files. Builds are one-shot
// batch jobs: nothing serves from a build in progress.
type IndexUseCase struct {
	ingestor   ports.CourseIngestor
	repo       ports.DocumentRepository
	chunker    ports.Chunker
	embedder   ports.Embedder
	vectors    ports.VectorStore
	newLexical func() ports.LexicalIndex
	holder     *SnapshotHolder
	queue      ports.MessageQueue
	logger     *slog.Logger
}

func NewIndexUseCase(
	ingestor ports.CourseIngestor,
	repo ports.DocumentRepository,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectors ports.VectorStore,
	newLexical func() ports.LexicalIndex,
	holder *SnapshotHolder,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *IndexUseCase {
	return &IndexUseCase{
		ingestor:   ingestor,
		repo:       repo,
		chunker:    chunker,
		embedder:   embedder,
		vectors:    vectors,
		newLexical: newLexical,
		holder:     holder,
		queue:      queue,
		logger:     logger,
	}
}

func (uc *IndexUseCase) Rebuild(ctx context.Context) error {
	docs, err := uc.ingestor.IngestAll(ctx)
	if err != nil {
		return fmt.Errorf("ingest course files: %w", err)
	}

	chunks := uc.chunkAll(docs)
	uc.logger.Info("corpus chunked", "documents", len(docs), "chunks", len(chunks))

	if len(chunks) > 0 {
		if err := uc.indexVectors(ctx, chunks); err != nil {
			return err
		}
	}

	if err := uc.repo.ReplaceChunks(ctx, chunks); err != nil {
		return fmt.Errorf("persist chunks: %w", err)
	}

	uc.publish(chunks)

	if uc.queue != nil {
		if err := uc.queue.PublishIndexPublished(ctx, len(chunks)); err != nil {
			// The local snapshot is live either way; peers catch up on restart.
			uc.logger.Warn("index published notification failed", "error", err)
		}
	}
	return nil
}

func (uc *IndexUseCase) Reload(ctx context.Context) error {
	chunks, err := uc.repo.ListChunks(ctx)
	if err != nil {
		return fmt.Errorf("load persisted chunks: %w", err)
	}
	uc.publish(chunks)
	uc.logger.Info("index snapshot reloaded", "chunks", len(chunks))
	return nil
}

func (uc *IndexUseCase) chunkAll(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	ordinal := 0
	for _, doc := range docs {
		for seq, window := range uc.chunker.Split(doc.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.NewString(),
				DocumentID: doc.ID,
				Ordinal:    ordinal,
				Seq:        seq,
				StartChar:  window.Start,
				EndChar:    window.End,
				Text:       window.Text,
				Breadcrumb: doc.Breadcrumb,
				URL:        doc.URL,
			})
			ordinal++
		}
	}
	return chunks
}

func (uc *IndexUseCase) indexVectors(ctx context.Context, chunks []domain.Chunk) error {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		batch, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunk batch at %d: %w", start, err)
		}
		if len(batch) != len(texts) {
			return fmt.Errorf("embed chunk batch at %d: got %d vectors for %d texts", start, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}

	dimension := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dimension {
			// Mixed dimensionality corrupts the index. Abort the build.
			return domain.WrapError(domain.ErrInvalidConfig, "index build",
				fmt.Errorf("embedding dimension changed from %d to %d at chunk %d", dimension, len(v), i))
		}
	}
	if dimension == 0 {
		return domain.WrapError(domain.ErrInvalidConfig, "index build",
			errors.New("embedding oracle returned zero-dimension vectors"))
	}

	if err := uc.vectors.Reset(ctx, dimension); err != nil {
		return fmt.Errorf("reset vector collection: %w", err)
	}
	if err := uc.vectors.Upsert(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("upsert chunk vectors: %w", err)
	}
	return nil
}

func (uc *IndexUseCase) publish(chunks []domain.Chunk) {
	lex := uc.newLexical()
	lex.Build(chunks)
	uc.holder.Publish(NewSnapshot(chunks, lex))
}
