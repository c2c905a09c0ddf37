package store

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, time.Minute), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	state := NewGameState()
	state.Stage = StageContact
	state.Name = "Bob"
	state.AskedQuestions = []string{"q1", "q2"}
	if err := s.Save(ctx, "abc", state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("game:state:abc") {
		t.Fatalf("expected redis key to be set")
	}

	got, err := s.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stage != StageContact || got.Name != "Bob" || len(got.AskedQuestions) != 2 {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestRedisStoreMissingKey(t *testing.T) {
	s, _ := newTestRedisStore(t)

	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	s.Save(ctx, "abc", NewGameState())
	if err := s.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("game:state:abc") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestRedisStoreTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	s.Save(ctx, "abc", NewGameState())
	mr.FastForward(2 * time.Minute)

	if _, err := s.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired key to be gone, got %v", err)
	}
}
