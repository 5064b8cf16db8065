package tokenstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) *RedisStore {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisSetGetClear(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Set = %v, want ErrNotFound", err)
	}

	if err := store.Set(ctx, "user-1", "ghp_secret"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	token, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if token != "ghp_secret" {
		t.Errorf("Get = %q, want %q", token, "ghp_secret")
	}

	if err := store.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Get(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Clear = %v, want ErrNotFound", err)
	}
}

func TestRedisClearAbsentIsNoop(t *testing.T) {
	store := setupTestRedis(t)
	if err := store.Clear(context.Background(), "who"); err != nil {
		t.Errorf("Clear on absent token = %v, want nil", err)
	}
}

func TestRedisTokensAreScopedPerUser(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Set(ctx, "user-a", "token-a"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "user-b", "token-b"); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx, "user-a"); err != nil {
		t.Fatal(err)
	}
	token, err := store.Get(ctx, "user-b")
	if err != nil || token != "token-b" {
		t.Errorf("Get(user-b) = %q, %v; want token-b, nil", token, err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "u"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Set = %v, want ErrNotFound", err)
	}
	if err := store.Set(ctx, "u", "tok"); err != nil {
		t.Fatal(err)
	}
	if token, _ := store.Get(ctx, "u"); token != "tok" {
		t.Errorf("Get = %q, want tok", token)
	}
	if err := store.Clear(ctx, "u"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "u"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Clear = %v, want ErrNotFound", err)
	}
}
