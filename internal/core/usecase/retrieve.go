package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"coursecompass/internal/core/domain"
	"coursecompass/internal/core/ports"
)

// RetrieveUseCase is the hybrid retrieval core: it queries the vector store
// and the lexical index for the same question, normalizes both score sets
// onto [0,1] within the candidate set of this query, fuses them with a
// configurable weight and selects at most one passage per source document.
type RetrieveUseCase struct {
	holder         *SnapshotHolder
	embedder       ports.Embedder
	vectors        ports.VectorStore
	alpha          float64
	candidateLimit int
	defaultTopN    int
	logger         *slog.Logger
}

func NewRetrieveUseCase(
	holder *SnapshotHolder,
	embedder ports.Embedder,
	vectors ports.VectorStore,
	alpha float64,
	candidateLimit int,
	defaultTopN int,
	logger *slog.Logger,
) *RetrieveUseCase {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	if defaultTopN <= 0 {
		defaultTopN = 6
	}
	if candidateLimit < defaultTopN {
		candidateLimit = 2 * defaultTopN
	}
	return &RetrieveUseCase{
		holder:         holder,
		embedder:       embedder,
		vectors:        vectors,
		alpha:          alpha,
		candidateLimit: candidateLimit,
		defaultTopN:    defaultTopN,
		logger:         logger,
	}
}

type hybridCandidate struct {
	chunk      domain.Chunk
	vectorRaw  *float64
	lexicalRaw *float64
}

func (uc *RetrieveUseCase) Retrieve(ctx context.Context, query string, topN int) (domain.RetrievalResult, error) {
	snap := uc.holder.Load()
	if snap == nil {
		return domain.RetrievalResult{}, domain.WrapError(domain.ErrIndexNotReady, "retrieve",
			errors.New("no index snapshot published"))
	}
	if topN <= 0 {
		topN = uc.defaultTopN
	}
	if snap.ChunkCount() == 0 {
		// Empty corpus is a valid "no knowledge" state, not a failure.
		return domain.RetrievalResult{}, nil
	}

	vectorHits, vectorErr := uc.vectorCandidates(ctx, snap, query)
	lexicalHits := snap.lexical.TopK(domain.Tokenize(query), uc.candidateLimit)

	if vectorErr != nil {
		if len(lexicalHits) == 0 {
			return domain.RetrievalResult{}, domain.WrapError(domain.ErrRetrievalBackend, "retrieve", vectorErr)
		}
		uc.logger.Warn("vector retrieval unavailable, serving lexical-only results", "error", vectorErr)
	}
	degraded := vectorErr != nil

	candidates := uc.mergeCandidates(snap, vectorHits, lexicalHits)
	if len(candidates) == 0 {
		return domain.RetrievalResult{Degraded: degraded}, nil
	}
	return domain.RetrievalResult{
		Passages: uc.fuseAndSelect(candidates, topN),
		Degraded: degraded,
	}, nil
}

func (uc *RetrieveUseCase) vectorCandidates(ctx context.Context, snap *Snapshot, query string) ([]domain.VectorHit, error) {
	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return uc.vectors.Query(ctx, queryVector, uc.candidateLimit)
}

// mergeCandidates unions both hit sets keyed by chunk id. A chunk missing
// from one signal keeps a nil raw score for it and later normalizes to 0, so
// a passage can surface purely on keyword match or purely on semantic match.
func (uc *RetrieveUseCase) mergeCandidates(
	snap *Snapshot,
	vectorHits []domain.VectorHit,
	lexicalHits []domain.LexicalHit,
) map[string]*hybridCandidate {
	candidates := make(map[string]*hybridCandidate, len(vectorHits)+len(lexicalHits))

	for _, hit := range vectorHits {
		chunk, ok := snap.ChunkByID(hit.ChunkID)
		if !ok {
			// Stale vector-store entry from a previous build.
			continue
		}
		score := hit.Score
		candidates[hit.ChunkID] = &hybridCandidate{chunk: chunk, vectorRaw: &score}
	}
	for _, hit := range lexicalHits {
		score := hit.Score
		if existing, ok := candidates[hit.ChunkID]; ok {
			existing.lexicalRaw = &score
			continue
		}
		chunk, ok := snap.ChunkByOrdinal(hit.Ordinal)
		if !ok {
			continue
		}
		candidates[hit.ChunkID] = &hybridCandidate{chunk: chunk, lexicalRaw: &score}
	}
	return candidates
}

func (uc *RetrieveUseCase) fuseAndSelect(candidates map[string]*hybridCandidate, topN int) []domain.RetrievedPassage {
	normVector := normalizeSignal(candidates, func(c *hybridCandidate) *float64 { return c.vectorRaw })
	normLexical := normalizeSignal(candidates, func(c *hybridCandidate) *float64 { return c.lexicalRaw })

	fused := make([]domain.RetrievedPassage, 0, len(candidates))
	for id, c := range candidates {
		passage := domain.RetrievedPassage{
			Chunk:        c.chunk,
			VectorScore:  normVector[id],
			LexicalScore: normLexical[id],
		}
		var v, l float64
		if passage.VectorScore != nil {
			v = *passage.VectorScore
		}
		if passage.LexicalScore != nil {
			l = *passage.LexicalScore
		}
		passage.FusedScore = uc.alpha*v + (1-uc.alpha)*l
		fused = append(fused, passage)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].FusedScore != fused[j].FusedScore {
			return fused[i].FusedScore > fused[j].FusedScore
		}
		return fused[i].Chunk.Ordinal < fused[j].Chunk.Ordinal
	})

	// One passage per source document. When the same document dominates the
	// top of the list only its best window survives, which keeps citations
	// diverse even if that returns fewer than topN passages.
	selected := make([]domain.RetrievedPassage, 0, topN)
	seenDocs := make(map[string]bool, topN)
	for _, p := range fused {
		if seenDocs[p.Chunk.DocumentID] {
			continue
		}
		seenDocs[p.Chunk.DocumentID] = true
		p.Rank = len(selected) + 1
		selected = append(selected, p)
		if len(selected) == topN {
			break
		}
	}
	return selected
}

// normalizeSignal min-max scales one signal's raw scores onto [0,1] within
// this query's candidate set. When every present score is equal the signal
// carries no ordering information and each scores 0.5. Candidates the signal
// never saw stay nil.
func normalizeSignal(
	candidates map[string]*hybridCandidate,
	raw func(*hybridCandidate) *float64,
) map[string]*float64 {
	var minScore, maxScore float64
	first := true
	for _, c := range candidates {
		r := raw(c)
		if r == nil {
			continue
		}
		if first {
			minScore, maxScore = *r, *r
			first = false
			continue
		}
		if *r < minScore {
			minScore = *r
		}
		if *r > maxScore {
			maxScore = *r
		}
	}

	out := make(map[string]*float64, len(candidates))
	for id, c := range candidates {
		r := raw(c)
		if r == nil {
			out[id] = nil
			continue
		}
		var n float64
		if maxScore == minScore {
			n = 0.5
		} else {
			n = (*r - minScore) / (maxScore - minScore)
		}
		out[id] = &n
	}
	return out
}
