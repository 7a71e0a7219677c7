package usecase

import (
	"sync/atomic"
	"time"

	"coursecompass/internal/core/domain"
	"coursecompass/internal/core/ports"
)

// Snapshot is one fully-built index version. It is immutable after
// construction and safe for unlimited concurrent readers.
type Snapshot struct {
	chunks  []domain.Chunk
	byID    map[string]domain.Chunk
	lexical ports.LexicalIndex
	builtAt time.Time
}

func NewSnapshot(chunks []domain.Chunk, lexical ports.LexicalIndex) *Snapshot {
	byID := make(map[string]domain.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}
	return &Snapshot{
		chunks:  chunks,
		byID:    byID,
		lexical: lexical,
		builtAt: time.Now().UTC(),
	}
}

func (s *Snapshot) ChunkByID(id string) (domain.Chunk, bool) {
	c, ok := s.byID[id]
	return c, ok
}

func (s *Snapshot) ChunkByOrdinal(ordinal int) (domain.Chunk, bool) {
	if ordinal < 0 || ordinal >= len(s.chunks) {
		return domain.Chunk{}, false
	}
	return s.chunks[ordinal], true
}

func (s *Snapshot) ChunkCount() int { return len(s.chunks) }

func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// SnapshotHolder publishes built snapshots atomically. Queries racing a
// rebuild see either the old snapshot or the new one, never partial state.
type SnapshotHolder struct {
	current atomic.Pointer[Snapshot]
}

func NewSnapshotHolder() *SnapshotHolder { return &SnapshotHolder{} }

// Load returns the current snapshot, or nil if none has been published yet.
func (h *SnapshotHolder) Load() *Snapshot { return h.current.Load() }

func (h *SnapshotHolder) Publish(s *Snapshot) { h.current.Store(s) }

func (h *SnapshotHolder) Ready() bool { return h.current.Load() != nil }
