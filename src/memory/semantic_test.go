package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns fixed vectors so similarity is fully controlled.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func TestSearchSimilar(t *testing.T) {
	store, _ := setupTestStore(t)
	store.SetEmbedder(&stubEmbedder{vectors: map[string][]float32{
		"what is the capital of France": {1, 0, 0},
		"how do I bake bread":           {0, 1, 0},
		"France's capital city?":        {0.95, 0.05, 0},
	}})

	ctx := context.Background()
	paris := testRecord("what is the capital of France")
	require.NoError(t, store.Insert(ctx, paris))
	require.NoError(t, store.Insert(ctx, testRecord("how do I bake bread")))

	match, err := store.SearchSimilar(ctx, "France's capital city?", 0.85)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, paris.ID, match.Record.ID)
	assert.Greater(t, match.Similarity, 0.85)
}

func TestSearchSimilar_BelowThreshold(t *testing.T) {
	store, _ := setupTestStore(t)
	store.SetEmbedder(&stubEmbedder{vectors: map[string][]float32{
		"stored prompt":    {1, 0, 0},
		"unrelated prompt": {0, 1, 0},
	}})

	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, testRecord("stored prompt")))

	match, err := store.SearchSimilar(ctx, "unrelated prompt", 0.85)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestSearchSimilar_NoEmbedder(t *testing.T) {
	store, _ := setupTestStore(t)

	match, err := store.SearchSimilar(context.Background(), "anything", 0.85)
	assert.NoError(t, err)
	assert.Nil(t, match)
}

func TestSearchSimilar_EmbeddingFailureDoesNotBlockInsert(t *testing.T) {
	store, _ := setupTestStore(t)
	store.SetEmbedder(&stubEmbedder{vectors: map[string][]float32{}})

	ctx := context.Background()
	rec := testRecord("prompt without a vector")
	require.NoError(t, store.Insert(ctx, rec), "embedding failure is swallowed")

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}), "mismatched lengths")
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
