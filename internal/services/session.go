package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// SessionStore keeps live login sessions in Redis. A user holds at most one
// session; creating a new one revokes the previous one.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore. A non-positive ttl means SessionDuration.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Create starts a session for userID and returns its id.
// If the user already has a session it is invalidated first, so the timer
// restarts from this login.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	if err := s.InvalidateUser(ctx, userID); err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+sessionID, userID, s.ttl)
	pipe.Set(ctx, UserSessionKeyPrefix+userID, sessionID, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return sessionID, nil
}

// Validate returns the user owning sessionID. ok is false when the session
// does not exist or has expired.
func (s *SessionStore) Validate(ctx context.Context, sessionID string) (userID string, ok bool, err error) {
	if sessionID == "" {
		return "", false, nil
	}
	userID, err = s.client.Get(ctx, SessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load session: %w", err)
	}
	return userID, true, nil
}

// Invalidate removes a session.
func (s *SessionStore) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	userID, ok, err := s.Validate(ctx, sessionID)
	if err != nil {
		return err
	}
	if ok {
		s.client.Del(ctx, UserSessionKeyPrefix+userID)
	}
	return s.client.Del(ctx, SessionKeyPrefix+sessionID).Err()
}

// InvalidateUser removes whatever session userID currently holds.
func (s *SessionStore) InvalidateUser(ctx context.Context, userID string) error {
	userSessionKey := UserSessionKeyPrefix + userID

	sessionID, err := s.client.Get(ctx, userSessionKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("load user session: %w", err)
	}
	if sessionID != "" {
		s.client.Del(ctx, SessionKeyPrefix+sessionID)
	}
	return s.client.Del(ctx, userSessionKey).Err()
}
