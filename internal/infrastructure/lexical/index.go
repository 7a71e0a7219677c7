package lexical

import (
	"math"
	"sort"

	"coursecompass/internal/core/domain"
)

type posting struct {
	ordinal int
	tf      int
}

// Index is an in-memory TF-IDF inverted index over chunk text. Build fully
// replaces prior state; a built index serves unlimited concurrent readers.
type Index struct {
	postings map[string][]posting
	chunkIDs []string
	total    int
}

func New() *Index {
	return &Index{postings: make(map[string][]posting)}
}

// Build indexes the chunks in the given order. Chunk ordinals are positions
// in this slice, which is also the tie-break order for TopK.
func (ix *Index) Build(chunks []domain.Chunk) {
	ix.postings = make(map[string][]posting, len(chunks)*8)
	ix.chunkIDs = make([]string, len(chunks))
	ix.total = len(chunks)

	for ord, chunk := range chunks {
		ix.chunkIDs[ord] = chunk.ID
		tf := make(map[string]int)
		for _, term := range domain.Tokenize(chunk.Text) {
			tf[term]++
		}
		for term, count := range tf {
			ix.postings[term] = append(ix.postings[term], posting{ordinal: ord, tf: count})
		}
	}
}

func (ix *Index) Len() int { return ix.total }

// TopK scores every chunk containing at least one query term:
// sum over matched terms of tf * ln(totalChunks/df). Terms absent from the
// corpus contribute zero. Ties break by chunk insertion order.
func (ix *Index) TopK(queryTerms []string, k int) []domain.LexicalHit {
	if ix.total == 0 || len(queryTerms) == 0 || k <= 0 {
		return nil
	}

	scores := make(map[int]float64)
	seen := make(map[string]int)
	for _, term := range queryTerms {
		seen[term]++
	}
	for term, mult := range seen {
		plist, ok := ix.postings[term]
		if !ok {
			continue
		}
		idf := math.Log(float64(ix.total) / float64(len(plist)))
		if idf <= 0 {
			continue
		}
		for _, p := range plist {
			scores[p.ordinal] += float64(mult) * float64(p.tf) * idf
		}
	}

	hits := make([]domain.LexicalHit, 0, len(scores))
	for ord, score := range scores {
		if score <= 0 {
			continue
		}
		hits = append(hits, domain.LexicalHit{
			ChunkID: ix.chunkIDs[ord],
			Ordinal: ord,
			Score:   score,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Ordinal < hits[j].Ordinal
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
