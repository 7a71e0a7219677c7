package domain

import "time"

// Document is one ingested course file (or one CSV/XLSX row group). Immutable
// once stored; re-ingestion supersedes rather than mutates.
type Document struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Breadcrumb string    `json:"breadcrumb"`
	URL        string    `json:"url,omitempty"`
	Text       string    `json:"text"`
	Format     string    `json:"format"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chunk is a contiguous text window of a Document. Ordinal is the global
// insertion order of the index build and the deterministic tie-break key for
// retrieval ordering.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Ordinal    int    `json:"ordinal"`
	Seq        int    `json:"seq"`
	StartChar  int    `json:"start_char"`
	EndChar    int    `json:"end_char"`
	Text       string `json:"text"`
	Breadcrumb string `json:"breadcrumb"`
	URL        string `json:"url,omitempty"`
}
