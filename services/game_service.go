package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trivia-game-system/middleware"
	"trivia-game-system/models"
	"trivia-game-system/questionbank"
	"trivia-game-system/store"
	"trivia-game-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"gorm.io/gorm"
)

// GameService drives the player-facing flow: contact capture, question
// delivery, answer scoring, selfie upload and completion.
type GameService struct {
	DB     *gorm.DB
	States store.Store
	Bank   *questionbank.Bank
}

func NewGameService(db *gorm.DB, states store.Store, bank *questionbank.Bank) *GameService {
	return &GameService{DB: db, States: states, Bank: bank}
}

type startGameRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	JobTitle    string `json:"job_title"`
	Department  string `json:"department"`
}

// StartGame records the player's contact details and opens a journey. A body
// carrying only an industry updates the current journey instead, covering the
// industry-selection step.
func (s *GameService) StartGame(c *fiber.Ctx) error {
	var req startGameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}

	key := middleware.SessionKey(c)
	state, err := s.States.Get(c.Context(), key)

	// Industry-only update for an existing journey.
	if req.Industry != "" && req.Name == "" && req.CompanyName == "" {
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "no active game for this session",
			})
		}
		if terr := state.Advance(store.StageIndustry); terr != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false, "message": "industry cannot be changed at this point",
			})
		}
		state.Industry = req.Industry
		if state.JourneyID != 0 {
			if derr := s.DB.Model(&models.UserJourney{}).
				Where("id = ?", state.JourneyID).
				Update("industry", req.Industry).Error; derr != nil {
				log.Printf("[GAME] failed to update journey %d industry: %v", state.JourneyID, derr)
			}
		}
		if serr := s.States.Save(c.Context(), key, state); serr != nil {
			log.Printf("[GAME] failed to save state: %v", serr)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Industry updated"})
	}

	if req.Name == "" || req.CompanyName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Name and company name are required",
		})
	}

	// A finished (or absent) game starts over with a clean state.
	if err != nil || state.Stage == store.StageComplete {
		state = store.NewGameState()
	}
	if terr := state.Advance(store.StageContact); terr != nil {
		state = store.NewGameState()
		_ = state.Advance(store.StageContact)
	}
	state.Name = req.Name
	state.CompanyName = req.CompanyName
	state.Industry = req.Industry
	if req.Industry != "" {
		_ = state.Advance(store.StageIndustry)
	}

	user := models.User{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Industry:    req.Industry,
		Email:       req.Email,
		Phone:       req.Phone,
		JobTitle:    req.JobTitle,
		Department:  req.Department,
		SessionID:   uuid.NewString(),
		IPAddress:   clientIP(c),
		UserAgent:   c.Get("User-Agent"),
	}
	journey := models.UserJourney{
		JourneySessionID: uuid.NewString(),
		Name:             req.Name,
		CompanyName:      req.CompanyName,
		Industry:         req.Industry,
		Email:            req.Email,
		Phone:            req.Phone,
		JobTitle:         req.JobTitle,
		Department:       req.Department,
		JourneyStart:     time.Now(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		journey.UserID = user.ID
		return tx.Create(&journey).Error
	})
	if err != nil {
		// Degraded mode: the game continues on session state alone.
		log.Printf("[GAME] failed to persist user/journey: %v", err)
		if serr := s.States.Save(c.Context(), key, state); serr != nil {
			log.Printf("[GAME] failed to save state: %v", serr)
		}
		return c.JSON(fiber.Map{
			"success": true, "message": "Game started (profile not persisted)",
		})
	}

	state.UserID = user.ID
	state.JourneyID = journey.ID
	if serr := s.States.Save(c.Context(), key, state); serr != nil {
		log.Printf("[GAME] failed to save state: %v", serr)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user_id": user.ID,
		"message": "User information saved successfully",
	})
}

// GetQuestion serves one random question the session has not seen yet. Once
// every question has been served the list resets and the cycle replays.
func (s *GameService) GetQuestion(c *fiber.Ctx) error {
	key := middleware.SessionKey(c)
	state, err := s.States.Get(c.Context(), key)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "message": "no active game for this session",
		})
	}

	all := s.Bank.Records()
	if len(all) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "message": "No questions available",
		})
	}

	available := make([]questionbank.Record, 0, len(all))
	for _, rec := range all {
		if !state.Asked(rec.ID) {
			available = append(available, rec)
		}
	}
	if len(available) == 0 {
		state.AskedQuestions = nil
		available = all
	}

	pick := available[rand.Intn(len(available))]

	if terr := state.Advance(store.StageQuestion); terr != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false, "message": "game is not ready for questions",
		})
	}
	state.AskedQuestions = append(state.AskedQuestions, pick.ID)
	state.CurrentQuestionID = pick.ID
	state.CurrentCorrect = pick.CorrectAnswer
	state.SelectedAnswer = ""
	state.IsCorrect = false
	if serr := s.States.Save(c.Context(), key, state); serr != nil {
		log.Printf("[GAME] failed to save state: %v", serr)
	}

	c.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Set("Pragma", "no-cache")
	c.Set("Expires", "0")

	return c.JSON(fiber.Map{
		"id":             pick.ID,
		"question":       pick.Question,
		"options":        pick.Options,
		"correct_answer": questionbank.AnswerIndex(pick.CorrectAnswer),
		"category":       pick.Industry,
	})
}

type submitAnswerRequest struct {
	SelectedAnswer int    `json:"selected_answer"`
	QuestionID     string `json:"question_id"`
}

// SubmitAnswer scores the player's pick against the question currently held
// in session state and records the result. A persistence failure is logged
// and the player keeps playing.
func (s *GameService) SubmitAnswer(c *fiber.Ctx) error {
	var req submitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}

	key := middleware.SessionKey(c)
	state, err := s.States.Get(c.Context(), key)
	if err != nil || state.CurrentCorrect == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "message": "Question session expired",
		})
	}

	selected := questionbank.AnswerLetter(req.SelectedAnswer)
	correct := state.CurrentCorrect
	isCorrect := selected == correct

	questionText := "Question not found"
	if rec, ok := s.Bank.Lookup(state.CurrentQuestionID); ok {
		questionText = rec.Question
	}

	now := time.Now()
	session := models.GameSession{
		Name:           fallback(state.Name, "Anonymous"),
		CompanyName:    fallback(state.CompanyName, "Unknown"),
		Industry:       fallback(state.Industry, "Unknown"),
		QuestionRef:    state.CurrentQuestionID,
		QuestionText:   questionText,
		SelectedAnswer: selected,
		CorrectAnswer:  correct,
		IsCorrect:      isCorrect,
		SelfieFilename: state.SelfieFilename,
		SessionEnd:     &now,
	}
	if state.UserID != 0 {
		session.UserID = &state.UserID
	}
	if state.JourneyID != 0 {
		session.JourneyID = &state.JourneyID
	}
	// Join back to the database bank when the same question was imported.
	var dbQuestion models.Question
	if err := s.DB.Select("id").Where("content_hash = ?", state.CurrentQuestionID).
		First(&dbQuestion).Error; err == nil {
		session.QuestionID = &dbQuestion.ID
	}

	if err := s.DB.Create(&session).Error; err != nil {
		log.Printf("[GAME] failed to save game session: %v", err)
	}

	state.SelectedAnswer = selected
	state.IsCorrect = isCorrect
	if serr := s.States.Save(c.Context(), key, state); serr != nil {
		log.Printf("[GAME] failed to save state: %v", serr)
	}

	return c.JSON(fiber.Map{
		"correct":        isCorrect,
		"correct_answer": correct,
		"explanation":    fmt.Sprintf("The correct answer is %s", correct),
	})
}

type saveSelfieRequest struct {
	Image string `json:"image"`
}

// SaveSelfie decodes a base64 image from the JSON body and stores it under
// the uploads tree, optionally mirroring it to the object-storage archive.
func (s *GameService) SaveSelfie(c *fiber.Ctx) error {
	var req saveSelfieRequest
	if err := c.BodyParser(&req); err != nil || req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "No image data provided",
		})
	}

	key := middleware.SessionKey(c)
	state, err := s.States.Get(c.Context(), key)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "message": "no active game for this session",
		})
	}

	imageData := req.Image
	// Strip a data-URL prefix (data:image/jpeg;base64,...).
	if _, after, found := strings.Cut(imageData, ","); found {
		imageData = after
	}
	binary, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Invalid image data format",
		})
	}

	name := slug.Make(fallback(state.Name, "user"))
	filename := fmt.Sprintf("selfie_%s_%s.jpg", time.Now().Format("20060102_150405"), name)
	path := filepath.Join(utils.SelfieDir, filename)
	if err := os.MkdirAll(utils.SelfieDir, os.ModePerm); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "Failed to write image file",
		})
	}
	if err := os.WriteFile(path, binary, 0o644); err != nil {
		log.Printf("[GAME] failed to write selfie %s: %v", path, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "Failed to write image file",
		})
	}

	if utils.ArchiveEnabled() {
		if aerr := utils.ArchiveSelfie(c.Context(), filename, binary); aerr != nil {
			log.Printf("[GAME] %v", aerr)
		}
	}

	if state.JourneyID != 0 {
		if derr := s.DB.Model(&models.UserJourney{}).
			Where("id = ?", state.JourneyID).
			Update("selfie_filename", filename).Error; derr != nil {
			log.Printf("[GAME] failed to update journey %d selfie: %v", state.JourneyID, derr)
		}
	}

	state.SelfieFilename = filename
	// Selfie capture is a stage of its own before the first question, but a
	// re-take mid-game must not rewind the flow.
	if state.Stage != store.StageQuestion {
		if terr := state.Advance(store.StageSelfie); terr != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false, "message": "selfie cannot be captured at this point",
			})
		}
	}
	if serr := s.States.Save(c.Context(), key, state); serr != nil {
		log.Printf("[GAME] failed to save state: %v", serr)
	}

	return c.JSON(fiber.Map{"success": true, "filename": filename})
}

// CompleteGame marks the journey finished when the player reaches gift
// collection. Completion happens at most once; the end timestamp is set then.
func (s *GameService) CompleteGame(c *fiber.Ctx) error {
	key := middleware.SessionKey(c)
	state, err := s.States.Get(c.Context(), key)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "message": "no active game for this session",
		})
	}

	if terr := state.Advance(store.StageComplete); terr != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false, "message": "game cannot be completed yet",
		})
	}

	// A question served but never answered still gets a closing record, so
	// the export shows the abandoned attempt.
	if state.CurrentQuestionID != "" && state.SelectedAnswer == "" {
		now := time.Now()
		final := models.GameSession{
			Name:           fallback(state.Name, "Anonymous"),
			CompanyName:    fallback(state.CompanyName, "Unknown"),
			Industry:       fallback(state.Industry, "Unknown"),
			QuestionRef:    state.CurrentQuestionID,
			CorrectAnswer:  state.CurrentCorrect,
			SelfieFilename: state.SelfieFilename,
			SessionEnd:     &now,
		}
		if rec, ok := s.Bank.Lookup(state.CurrentQuestionID); ok {
			final.QuestionText = rec.Question
		}
		if state.UserID != 0 {
			final.UserID = &state.UserID
		}
		if state.JourneyID != 0 {
			final.JourneyID = &state.JourneyID
		}
		if derr := s.DB.Create(&final).Error; derr != nil {
			log.Printf("[GAME] failed to save final game session: %v", derr)
		}
	}

	if state.JourneyID != 0 {
		var journey models.UserJourney
		if derr := s.DB.First(&journey, state.JourneyID).Error; derr == nil && !journey.IsCompleted {
			now := time.Now()
			journey.IsCompleted = true
			journey.JourneyEnd = &now
			if derr := s.DB.Save(&journey).Error; derr != nil {
				log.Printf("[GAME] failed to complete journey %d: %v", journey.ID, derr)
			}
		}
	}

	if derr := s.States.Delete(c.Context(), key); derr != nil {
		log.Printf("[GAME] failed to delete state: %v", derr)
	}

	return c.JSON(fiber.Map{"success": true})
}

type checkUserRequest struct {
	Name string `json:"name"`
}

// CheckUser looks the visitor up in the pre-registered contact table so the
// contact form can be pre-filled. Matching folds accents and case.
func (s *GameService) CheckUser(c *fiber.Ctx) error {
	var req checkUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}

	name := unidecode.Unidecode(strings.TrimSpace(req.Name))
	if name == "" {
		return c.JSON(fiber.Map{"found": false})
	}

	var user models.PreRegisteredUser
	err := s.DB.Where("name ILIKE ?", "%"+name+"%").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{"found": false})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "DB error",
		})
	}

	return c.JSON(fiber.Map{
		"found":        true,
		"name":         user.Name,
		"company_name": user.CompanyName,
		"industry":     user.Industry,
	})
}

type suggestionsRequest struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

// GetSuggestions serves the contact-form typeahead from the most recent
// bulk-uploaded name/company files.
func (s *GameService) GetSuggestions(c *fiber.Ctx) error {
	var req suggestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	if len(query) < 2 {
		return c.JSON(fiber.Map{"suggestions": []string{}})
	}

	prefix := "names_"
	if req.Type == "company" {
		prefix = "companies_"
	}

	lines, err := latestBulkFile(prefix)
	if err != nil {
		log.Printf("[GAME] failed to read bulk upload files: %v", err)
		return c.JSON(fiber.Map{"suggestions": []string{}})
	}

	suggestions := make([]string, 0, 10)
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), query) {
			suggestions = append(suggestions, line)
			if len(suggestions) == 10 {
				break
			}
		}
	}

	return c.JSON(fiber.Map{"suggestions": suggestions})
}

// ListIndustries returns the industry picker content, highlighted entries
// first.
func (s *GameService) ListIndustries(c *fiber.Ctx) error {
	var highlighted, others []models.Industry
	if err := s.DB.Where("is_highlighted = ?", true).Order("name").Find(&highlighted).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to fetch industries",
		})
	}
	if err := s.DB.Where("is_highlighted = ?", false).Order("name").Find(&others).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to fetch industries",
		})
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"highlighted": highlighted,
		"others":      others,
	})
}

// latestBulkFile returns the non-empty lines of the newest bulk-upload file
// with the given prefix.
func latestBulkFile(prefix string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(utils.BulkUploadDir, prefix+"*.txt"))
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	// Timestamped names sort chronologically.
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func clientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	return c.IP()
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
