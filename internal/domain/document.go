package domain

import "time"

// Metadata describes where a document came from and which version of a
// policy or API it documents.
type Metadata struct {
	FileName   string    `json:"file"`
	Path       string    `json:"path"`
	Version    string    `json:"version"`
	Deprecated bool      `json:"deprecated"`
	DocType    string    `json:"doc_type"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Document is a single corpus entry. It is never mutated after ingestion.
type Document struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// SearchResult is a retrieved document with its squared Euclidean distance
// to the query vector. Smaller is closer.
type SearchResult struct {
	Distance float64  `json:"distance"`
	Document Document `json:"document"`
}
