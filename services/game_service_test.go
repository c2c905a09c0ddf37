package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trivia-game-system/questionbank"
	"trivia-game-system/store"

	"github.com/gofiber/fiber/v2"
)

func writeCycleBank(t *testing.T, questions int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("INDUSTRY: Technology\n")
	for i := 1; i <= questions; i++ {
		fmt.Fprintf(&b, "%d. Question %d?\nA. a\nB. b\nC. c\nD. d\nCorrect Answer: B\n", i, i)
	}
	path := filepath.Join(t.TempDir(), "questions.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write question file: %v", err)
	}
	return path
}

func TestGetQuestionNeverRepeatsUntilExhausted(t *testing.T) {
	const bankSize = 5
	states := store.NewMemoryStore(time.Hour)
	svc := NewGameService(nil, states, questionbank.NewBank(writeCycleBank(t, bankSize)))

	const key = "cycle-session"
	state := store.NewGameState()
	if err := state.Advance(store.StageContact); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := states.Save(context.Background(), key, state); err != nil {
		t.Fatalf("save state: %v", err)
	}

	app := fiber.New()
	app.Get("/get-question", func(c *fiber.Ctx) error {
		c.Locals("session_key", key)
		return svc.GetQuestion(c)
	})

	draw := func() string {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/get-question", nil))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.ID == "" {
			t.Fatalf("response carries no question id")
		}
		return body.ID
	}

	seen := make(map[string]bool, bankSize)
	for i := 0; i < bankSize; i++ {
		id := draw()
		if seen[id] {
			t.Fatalf("question %s repeated before the set was exhausted", id)
		}
		seen[id] = true
	}

	// The whole bank has been served; the next draw starts a fresh cycle.
	id := draw()
	if !seen[id] {
		t.Fatalf("reset draw returned an id outside the bank: %s", id)
	}
	after, err := states.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if len(after.AskedQuestions) != 1 {
		t.Fatalf("served list should restart with just the new draw, got %d entries", len(after.AskedQuestions))
	}
	if after.AskedQuestions[0] != id {
		t.Fatalf("served list %v does not match the reset draw %s", after.AskedQuestions, id)
	}
}
