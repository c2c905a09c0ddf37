package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	state := NewGameState()
	state.Name = "Alice"
	state.AskedQuestions = []string{"q1"}
	if err := s.Save(ctx, "k1", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Alice" || got.Stage != StageStarted {
		t.Fatalf("unexpected state: %+v", got)
	}

	// The returned state must be a copy, not an alias into the store.
	got.AskedQuestions[0] = "mutated"
	again, _ := s.Get(ctx, "k1")
	if again.AskedQuestions[0] != "q1" {
		t.Fatalf("store state was mutated through returned copy")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	if err := s.Save(ctx, "k1", NewGameState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := s.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired state to be gone, got %v", err)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	s.Save(ctx, "old", NewGameState())
	time.Sleep(20 * time.Millisecond)
	s.Save(ctx, "fresh", NewGameState())

	if removed := s.Sweep(ctx); removed != 1 {
		t.Fatalf("expected 1 swept, got %d", removed)
	}
	if _, err := s.Get(ctx, "fresh"); err != nil {
		t.Fatalf("fresh state should survive sweep: %v", err)
	}
}

func TestGameStateTransitions(t *testing.T) {
	cases := []struct {
		from, to Stage
		ok       bool
	}{
		{StageStarted, StageContact, true},
		{StageContact, StageIndustry, true},
		{StageContact, StageSelfie, true},
		{StageContact, StageQuestion, true},
		{StageIndustry, StageSelfie, true},
		{StageSelfie, StageQuestion, true},
		{StageQuestion, StageQuestion, true},
		{StageQuestion, StageComplete, true},
		{StageStarted, StageQuestion, false},
		{StageSelfie, StageComplete, false},
		{StageComplete, StageQuestion, false},
	}
	for _, tc := range cases {
		if got := CanAdvance(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanAdvance(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}

	g := NewGameState()
	if err := g.Advance(StageComplete); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if g.Stage != StageStarted {
		t.Fatalf("failed advance must not change stage, got %s", g.Stage)
	}
}

func TestGameStateAsked(t *testing.T) {
	g := NewGameState()
	g.AskedQuestions = append(g.AskedQuestions, "abc")
	if !g.Asked("abc") {
		t.Fatalf("expected abc to be marked asked")
	}
	if g.Asked("def") {
		t.Fatalf("def was never asked")
	}
}
