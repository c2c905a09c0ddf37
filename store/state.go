// Package store keeps per-player game progress server-side, keyed by the
// uuid carried in the player's cookie.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no state exists for a session key.
	ErrNotFound = errors.New("game state not found")
	// ErrInvalidTransition is returned when a request arrives out of the
	// allowed game-flow order.
	ErrInvalidTransition = errors.New("invalid game stage transition")
)

// Stage is the player's position in the game flow.
type Stage string

const (
	StageStarted  Stage = "started"
	StageContact  Stage = "contact"
	StageIndustry Stage = "industry"
	StageSelfie   Stage = "selfie"
	StageQuestion Stage = "question"
	StageComplete Stage = "complete"
)

// allowedTransitions is the full flow graph. The selfie step is optional,
// and the question stage loops on itself once per served question.
var allowedTransitions = map[Stage][]Stage{
	StageStarted:  {StageContact},
	StageContact:  {StageIndustry, StageSelfie, StageQuestion},
	StageIndustry: {StageSelfie, StageQuestion},
	StageSelfie:   {StageQuestion},
	StageQuestion: {StageQuestion, StageComplete},
}

// CanAdvance reports whether moving from one stage to another is allowed.
// Staying put is always allowed.
func CanAdvance(from, to Stage) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GameState is everything the server remembers about one in-progress game.
type GameState struct {
	Stage Stage `json:"stage"`

	UserID    uint `json:"user_id"`
	JourneyID uint `json:"journey_id"`

	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`

	AskedQuestions []string `json:"asked_questions"`

	CurrentQuestionID string `json:"current_question_id"`
	CurrentCorrect    string `json:"current_correct"`

	SelectedAnswer string `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`

	SelfieFilename string    `json:"selfie_filename"`
	StartedAt      time.Time `json:"started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewGameState() *GameState {
	now := time.Now()
	return &GameState{Stage: StageStarted, StartedAt: now, UpdatedAt: now}
}

// Advance moves the game to the given stage, validating the transition
// server-side regardless of which route was hit.
func (g *GameState) Advance(to Stage) error {
	if !CanAdvance(g.Stage, to) {
		return ErrInvalidTransition
	}
	g.Stage = to
	return nil
}

// Asked reports whether a question id has already been served this game.
func (g *GameState) Asked(id string) bool {
	for _, q := range g.AskedQuestions {
		if q == id {
			return true
		}
	}
	return false
}

// Store persists game states. Implementations must treat a missing key as
// ErrNotFound and are free to expire entries after the configured TTL.
type Store interface {
	Get(ctx context.Context, key string) (*GameState, error)
	Save(ctx context.Context, key string, state *GameState) error
	Delete(ctx context.Context, key string) error
	// Sweep drops expired entries and reports how many were removed.
	Sweep(ctx context.Context) int
}
