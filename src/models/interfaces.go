package models

import "context"

// Generator is the generation capability consumed by the orchestrator.
type Generator interface {
	// CountTokens returns the token count of text for the given model,
	// falling back to an estimate when no tokenizer is available.
	CountTokens(model, text string) int
	Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (string, Usage, error)
}

// RecordStore is the optional persistence collaborator. Insert failures
// must never surface to the caller of RouteAndRespond.
type RecordStore interface {
	Insert(ctx context.Context, rec *RequestRecord) error
}

// MemoryBrowser exposes stored exchange records for the dashboard.
type MemoryBrowser interface {
	Recent(ctx context.Context, limit int) ([]*RequestRecord, error)
	SearchSimilar(ctx context.Context, query string, threshold float64) (*MemoryMatch, error)
}
