package domain

// Window is one chunker output: rune offsets into the source text plus the
// window text itself.
type Window struct {
	Start int
	End   int
	Text  string
}

// VectorHit is one nearest-neighbor result from the vector store.
type VectorHit struct {
	ChunkID string
	Score   float64
}

// LexicalHit is one TF-IDF result. Ordinal carries the chunk's insertion
// order for deterministic tie-breaking downstream.
type LexicalHit struct {
	ChunkID string
	Ordinal int
	Score   float64
}
