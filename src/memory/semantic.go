package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/aroyle/depthroute/src/models"
)

// embeddedPrompt is the indexed form of a record's prompt.
type embeddedPrompt struct {
	RecordID  string    `json:"record_id"`
	Prompt    string    `json:"prompt"`
	Embedding []float32 `json:"embedding"`
}

// OpenAIEmbedder computes prompt embeddings through the OpenAI API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(apiKey string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  openai.AdaEmbeddingV2,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding request returned no data")
	}
	return resp.Data[0].Embedding, nil
}

func (s *Store) indexEmbedding(ctx context.Context, rec *models.RequestRecord) error {
	vector, err := s.embedder.Embed(ctx, rec.Prompt)
	if err != nil {
		return err
	}

	entry := embeddedPrompt{
		RecordID:  rec.ID,
		Prompt:    rec.Prompt,
		Embedding: vector,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	return s.client.Set(ctx, embeddingKeyPrefix+rec.ID, data, s.ttl).Err()
}

// SearchSimilar embeds the query and scans the indexed prompts for the best
// cosine match at or above threshold. Returns nil when nothing qualifies or
// when no embedder is configured. A threshold of 0 uses the store default.
func (s *Store) SearchSimilar(ctx context.Context, query string, threshold float64) (*models.MemoryMatch, error) {
	if s.embedder == nil {
		return nil, nil
	}
	if threshold <= 0 {
		threshold = s.threshold
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	keys, err := s.client.Keys(ctx, embeddingKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan embeddings: %w", err)
	}

	var (
		bestID    string
		bestScore float64
	)
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read embedding: %w", err)
		}

		var entry embeddedPrompt
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			continue
		}

		similarity := cosineSimilarity(queryVector, entry.Embedding)
		if similarity >= threshold && similarity > bestScore {
			bestID = entry.RecordID
			bestScore = similarity
		}
	}

	if bestID == "" {
		return nil, nil
	}

	rec, err := s.Get(ctx, bestID)
	if err != nil || rec == nil {
		return nil, err
	}

	return &models.MemoryMatch{Record: rec, Similarity: bestScore}, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
