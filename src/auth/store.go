package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stateKeyPrefix   = "auth:state:"
	sessionKeyPrefix = "auth:session:"
	userKeyPrefix    = "auth:user:"
	emailKeyPrefix   = "auth:email:"

	stateTTL = 10 * time.Minute
)

// Store keeps OAuth state tokens, sessions, and users in Redis.
type Store struct {
	client          *redis.Client
	sessionDuration time.Duration
}

func NewStore(client *redis.Client, sessionDuration time.Duration) *Store {
	return &Store{
		client:          client,
		sessionDuration: sessionDuration,
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// NewState issues a CSRF state token valid for one login attempt.
func (s *Store) NewState(ctx context.Context) (string, error) {
	state, err := randomToken()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, stateKeyPrefix+state, "1", stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to save state: %w", err)
	}
	return state, nil
}

// ConsumeState validates and invalidates a state token in one step.
func (s *Store) ConsumeState(ctx context.Context, state string) (bool, error) {
	deleted, err := s.client.Del(ctx, stateKeyPrefix+state).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume state: %w", err)
	}
	return deleted > 0, nil
}

// CreateSession opens a session for the user.
func (s *Store) CreateSession(ctx context.Context, userID string) (*Session, error) {
	id, err := randomToken()
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.sessionDuration),
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+id, data, s.sessionDuration).Err(); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// GetSession returns the session, deleting it when expired.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		s.DeleteSession(ctx, sessionID)
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

// RefreshSession extends the session's lifetime on activity.
func (s *Store) RefreshSession(ctx context.Context, sessionID string) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	session.ExpiresAt = time.Now().Add(s.sessionDuration)
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.client.Set(ctx, sessionKeyPrefix+sessionID, data, s.sessionDuration).Err()
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// UpsertUser creates or refreshes a user from the provider's profile.
func (s *Store) UpsertUser(ctx context.Context, info *googleUserInfo) (*User, error) {
	user, err := s.GetUserByEmail(ctx, info.Email)
	if err != nil {
		user = &User{
			ID:            info.ID,
			Email:         info.Email,
			EmailVerified: info.VerifiedEmail,
			CreatedAt:     time.Now(),
		}
	}

	user.Name = info.Name
	user.Picture = info.Picture
	user.UpdatedAt = time.Now()

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKeyPrefix+user.ID, data, 0)
	pipe.Set(ctx, emailKeyPrefix+user.Email, user.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*User, error) {
	data, err := s.client.Get(ctx, userKeyPrefix+userID).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	userID, err := s.client.Get(ctx, emailKeyPrefix+email).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	return s.GetUser(ctx, userID)
}
