package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"trackshare/internal/model"
)

// These tests exercise the real store against Redis. Set
// TEST_REDIS_URL (e.g. redis://localhost:6379/15) to run them.
func testClient(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping Redis-backed tests")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("invalid TEST_REDIS_URL: %v", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func TestRedisStore_Lifecycle(t *testing.T) {
	client := testClient(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, 42)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != 42 {
		t.Errorf("UserID = %d, want 42", got.UserID)
	}

	if err := store.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, sess.Token); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("error after delete = %v, want %v", err, model.ErrSessionNotFound)
	}
}

func TestRedisStore_GetSlidesUserIndexWithSession(t *testing.T) {
	client := testClient(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, 43)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Simulate a session nearing the end of its window: both keys are
	// about to expire.
	if err := client.Expire(ctx, sessionKey(sess.Token), 2*time.Second).Err(); err != nil {
		t.Fatalf("expire session key: %v", err)
	}
	if err := client.Expire(ctx, userSessionsKey(43), 2*time.Second).Err(); err != nil {
		t.Fatalf("expire index key: %v", err)
	}

	if _, err := store.Get(ctx, sess.Token); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Get must have pushed both TTLs back out, not just the session's.
	// Without the index sliding too, a continuously active user would
	// end up with a live session that bulk revocation can't see.
	sessTTL, err := client.TTL(ctx, sessionKey(sess.Token)).Result()
	if err != nil {
		t.Fatalf("ttl session key: %v", err)
	}
	indexTTL, err := client.TTL(ctx, userSessionsKey(43)).Result()
	if err != nil {
		t.Fatalf("ttl index key: %v", err)
	}
	if sessTTL <= 2*time.Second {
		t.Errorf("session TTL = %v, want refreshed toward 1h", sessTTL)
	}
	if indexTTL <= 2*time.Second {
		t.Errorf("user index TTL = %v, want refreshed toward 1h", indexTTL)
	}

	// And revocation still reaches the session afterwards.
	if err := store.DeleteAllForUser(ctx, 43); err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}
	if _, err := store.Get(ctx, sess.Token); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("error after revocation = %v, want %v", err, model.ErrSessionNotFound)
	}
}

func TestRedisStore_DeleteAllForUser_RevokesEverySession(t *testing.T) {
	client := testClient(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	first, err := store.Create(ctx, 44)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := store.Create(ctx, 44)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.DeleteAllForUser(ctx, 44); err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}

	for _, token := range []string{first.Token, second.Token} {
		if _, err := store.Get(ctx, token); !errors.Is(err, model.ErrSessionNotFound) {
			t.Errorf("token %q survived revocation: err = %v", token, err)
		}
	}
}
