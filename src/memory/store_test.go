package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroyle/depthroute/src/config"
	"github.com/aroyle/depthroute/src/models"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := NewStore(
		&config.RedisConfig{Address: mr.Addr()},
		&config.MemoryConfig{TTL: time.Hour, RecentLimit: 5, SimilarityThreshold: 0.85},
	)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func testRecord(prompt string) *models.RequestRecord {
	return &models.RequestRecord{
		Prompt:       prompt,
		Response:     "a response",
		Model:        "model-fast",
		Score:        12,
		InputTokens:  10,
		OutputTokens: 20,
		Latency:      80 * time.Millisecond,
		Cost:         0.0000135,
		SessionID:    "sess_test",
	}
}

func TestStore_InsertAndGet(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	rec := testRecord("what is 2+2")
	require.NoError(t, store.Insert(ctx, rec))
	require.NotEmpty(t, rec.ID, "insert assigns an ID")
	require.False(t, rec.CreatedAt.IsZero())

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Prompt, got.Prompt)
	assert.Equal(t, rec.Response, got.Response)
	assert.Equal(t, rec.Model, got.Model)
}

func TestStore_GetNonExistent(t *testing.T) {
	store, _ := setupTestStore(t)

	got, err := store.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_RecentNewestFirst(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(ctx, testRecord(fmt.Sprintf("prompt %d", i))))
	}

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "prompt 2", records[0].Prompt)
	assert.Equal(t, "prompt 0", records[2].Prompt)
}

func TestStore_RecentTrimsToLimit(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	// recent_limit is 5 in the test config
	for i := 0; i < 8; i++ {
		require.NoError(t, store.Insert(ctx, testRecord(fmt.Sprintf("prompt %d", i))))
	}

	records, err := store.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.Equal(t, "prompt 7", records[0].Prompt)
}

func TestStore_Delete(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	rec := testRecord("to delete")
	require.NoError(t, store.Insert(ctx, rec))
	require.NoError(t, store.Delete(ctx, rec.ID))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, err := NewStore(
		&config.RedisConfig{Address: mr.Addr()},
		&config.MemoryConfig{TTL: time.Second, RecentLimit: 5},
	)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rec := testRecord("short lived")
	require.NoError(t, store.Insert(ctx, rec))

	mr.FastForward(2 * time.Second)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "record should be expired")

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records, "expired IDs are skipped")
}
