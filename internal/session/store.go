package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"trackshare/internal/model"
)

const (
	// SessionKeyPrefix is the key prefix for individual sessions.
	SessionKeyPrefix = "session:"

	// UserSessionsPrefix indexes a user's live session tokens so that
	// password rotation and account deletion can revoke all of them.
	UserSessionsPrefix = "session:user:"
)

// Store defines the interface for session operations.
// Sessions are deliberately ephemeral: creating one is login, deleting
// it is logout, and expiry is handled by the backend's TTL. Nothing
// about session liveness is written to the users table.
type Store interface {
	// Create issues a new session for the user and returns it.
	Create(ctx context.Context, userID int64) (*model.Session, error)

	// Get resolves a token to a live session, refreshing its TTL.
	// Returns model.ErrSessionNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (*model.Session, error)

	// Delete removes a single session. Deleting an absent token is not
	// an error.
	Delete(ctx context.Context, token string) error

	// DeleteAllForUser revokes every live session belonging to a user.
	DeleteAllForUser(ctx context.Context, userID int64) error
}

// RedisStore implements Store using Redis hashes.
type RedisStore struct {
	client *redis.Client
	maxAge time.Duration
}

// NewStore creates a Store backed by Redis.
func NewStore(client *redis.Client, maxAge time.Duration) Store {
	return &RedisStore{client: client, maxAge: maxAge}
}

func sessionKey(token string) string {
	return SessionKeyPrefix + token
}

func userSessionsKey(userID int64) string {
	return fmt.Sprintf("%s%d", UserSessionsPrefix, userID)
}

// Create stores the session hash and indexes the token under the
// user's session set in one pipeline.
func (s *RedisStore) Create(ctx context.Context, userID int64) (*model.Session, error) {
	sess := &model.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	key := sessionKey(sess.Token)
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key,
		"user_id", sess.UserID,
		"created_at", sess.CreatedAt.Unix(),
	)
	pipe.Expire(ctx, key, s.maxAge)
	pipe.SAdd(ctx, userSessionsKey(userID), sess.Token)
	pipe.Expire(ctx, userSessionsKey(userID), s.maxAge)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return sess, nil
}

// Get resolves the token and slides the TTL forward so active users
// stay logged in.
func (s *RedisStore) Get(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, model.ErrSessionNotFound
	}

	values, err := s.client.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(values) == 0 {
		return nil, model.ErrSessionNotFound
	}

	userID, err := strconv.ParseInt(values["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session %q: %w", token, err)
	}

	sess := &model.Session{Token: token, UserID: userID}
	if ts, err := strconv.ParseInt(values["created_at"], 10, 64); err == nil {
		sess.CreatedAt = time.Unix(ts, 0).UTC()
	}

	// Sliding expiry. The user index slides with the session key;
	// if it expired first, a long-lived session could no longer be
	// revoked in bulk. A failure here only shortens the session, so
	// it is not surfaced to the caller.
	pipe := s.client.Pipeline()
	pipe.Expire(ctx, sessionKey(token), s.maxAge)
	pipe.Expire(ctx, userSessionsKey(userID), s.maxAge)
	_, _ = pipe.Exec(ctx)

	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	sess, err := s.Get(ctx, token)
	if err != nil {
		if err == model.ErrSessionNotFound {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionKey(token))
	pipe.SRem(ctx, userSessionsKey(sess.UserID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID int64) error {
	tokens, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	pipe := s.client.Pipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKey(token))
	}
	pipe.Del(ctx, userSessionsKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}
