package domain

// RetrievedPassage is the per-query projection of a chunk after hybrid fusion.
// VectorScore/LexicalScore are nil when the corresponding sub-query did not hit
// the chunk; the fused score treats a missing signal as zero.
type RetrievedPassage struct {
	Chunk        Chunk    `json:"chunk"`
	VectorScore  *float64 `json:"vector_score,omitempty"`
	LexicalScore *float64 `json:"lexical_score,omitempty"`
	FusedScore   float64  `json:"fused_score"`
	Rank         int      `json:"rank"`
}

// HitByBoth reports whether both retrieval signals returned this passage.
func (p RetrievedPassage) HitByBoth() bool {
	return p.VectorScore != nil && p.LexicalScore != nil
}

// RetrievalResult is the full outcome of a hybrid retrieval. Degraded is set
// when the vector signal was unavailable and the ranking was served from the
// lexical index alone; downstream confidence scoring penalizes it.
type RetrievalResult struct {
	Passages []RetrievedPassage `json:"passages"`
	Degraded bool               `json:"degraded"`
}

// Citation is the user-facing projection of a retrieved passage.
type Citation struct {
	Breadcrumb string `json:"breadcrumb"`
	URL        string `json:"url,omitempty"`
	Snippet    string `json:"snippet"`
}

// Answer is the final chat response.
type Answer struct {
	Text       string     `json:"answer"`
	Sources    []Citation `json:"sources"`
	Confidence float64    `json:"confidence"`
}
