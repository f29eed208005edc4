package domain

import "context"

// MetadataSource supplies per-document metadata for the whole corpus.
type MetadataSource interface {
	Records(ctx context.Context) ([]Metadata, error)
}

// Analyzer runs a query through retrieval and risk scoring.
type Analyzer interface {
	Analyze(ctx context.Context, query string) (Analysis, error)
}
