package models

import "time"

// RequestScore is a 0-100 rating of how much reasoning depth a message
// demands, with a human-readable justification.
type RequestScore struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

// Usage holds token counts reported by (or estimated for) a single
// generation call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the combined input and output token count.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// GenerateOptions tunes a single generation call. Zero values fall back
// to the client's configured defaults.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// ContextBlock is one reusable instruction tier, prepended to every
// routed request in initialization order.
type ContextBlock struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
	Tokens   int    `json:"tokens"`
}

// UsageStats are the running totals for one orchestrator session.
type UsageStats struct {
	TotalTokens  int           `json:"total_tokens"`
	CachedTokens int           `json:"cached_tokens"`
	TierTokens   []int         `json:"tier_tokens"`
	RequestCount int           `json:"request_count"`
	AvgLatency   time.Duration `json:"avg_latency"`
	CostEstimate float64       `json:"cost_estimate"`
}

// RequestRecord is one user-message to model-response exchange. Records
// are handed to the memory store after the response has been produced.
type RequestRecord struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"session_id"`
	UserID       string        `json:"user_id,omitempty"`
	Prompt       string        `json:"prompt"`
	Response     string        `json:"response"`
	Model        string        `json:"model"`
	Score        int           `json:"score"`
	Rationale    string        `json:"rationale"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Latency      time.Duration `json:"latency"`
	Cost         float64       `json:"cost"`
	CreatedAt    time.Time     `json:"created_at"`
}

// MemoryMatch is a semantic search hit against stored records.
type MemoryMatch struct {
	Record     *RequestRecord `json:"record"`
	Similarity float64        `json:"similarity"`
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

type ScoreRequest struct {
	Message string `json:"message" binding:"required"`
}

type ContextRequest struct {
	Blocks []string `json:"blocks" binding:"required"`
}
