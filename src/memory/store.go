package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aroyle/depthroute/src/config"
	"github.com/aroyle/depthroute/src/models"
)

const (
	recordKeyPrefix    = "memory:record:"
	embeddingKeyPrefix = "memory:embedding:"
	recentKey          = "memory:recent"
)

// Store persists exchange records in Redis and serves them back for the
// dashboard's memory view. When an embedder is attached, each record's
// prompt is also indexed for similarity search.
type Store struct {
	client      *redis.Client
	embedder    Embedder
	ttl         time.Duration
	recentLimit int64
	threshold   float64
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

func NewStore(redisCfg *config.RedisConfig, memCfg *config.MemoryConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Address,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{
		client:      client,
		ttl:         memCfg.TTL,
		recentLimit: int64(memCfg.RecentLimit),
		threshold:   memCfg.SimilarityThreshold,
	}, nil
}

// SetEmbedder enables semantic indexing of inserted records.
func (s *Store) SetEmbedder(e Embedder) {
	s.embedder = e
}

// Insert stores the record and pushes its ID onto the recency index. The
// embedding write is best effort: a failure there is logged, not returned,
// so a flaky embeddings endpoint cannot fail persistence.
func (s *Store) Insert(ctx context.Context, rec *models.RequestRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, recordKeyPrefix+rec.ID, data, s.ttl)
	pipe.LPush(ctx, recentKey, rec.ID)
	pipe.LTrim(ctx, recentKey, 0, s.recentLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	if s.embedder != nil {
		if err := s.indexEmbedding(ctx, rec); err != nil {
			log.Printf("embedding index failed for record %s: %v", rec.ID, err)
		}
	}

	return nil
}

// Get returns the record with the given ID, or nil when it is absent.
func (s *Store) Get(ctx context.Context, id string) (*models.RequestRecord, error) {
	data, err := s.client.Get(ctx, recordKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	var rec models.RequestRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return &rec, nil
}

// Recent returns up to limit records, newest first. IDs whose record has
// expired are skipped.
func (s *Store) Recent(ctx context.Context, limit int) ([]*models.RequestRecord, error) {
	if limit <= 0 || int64(limit) > s.recentLimit {
		limit = int(s.recentLimit)
	}

	ids, err := s.client.LRange(ctx, recentKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]*models.RequestRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}

	return records, nil
}

// Delete removes a record and its embedding.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, recordKeyPrefix+id)
	pipe.Del(ctx, embeddingKeyPrefix+id)
	pipe.LRem(ctx, recentKey, 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client for components that share the
// connection, such as the auth stores.
func (s *Store) Client() *redis.Client {
	return s.client
}
