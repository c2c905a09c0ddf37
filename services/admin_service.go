package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"trivia-game-system/middleware"
	"trivia-game-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const adminTokenTTL = 24 * time.Hour

// AdminService handles administrator authentication and the dashboard
// analytics endpoints.
type AdminService struct {
	DB        *gorm.DB
	JWTSecret string
}

func NewAdminService(db *gorm.DB, jwtSecret string) *AdminService {
	return &AdminService{DB: db, JWTSecret: jwtSecret}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and sets the signed admin cookie.
func (s *AdminService) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Invalid request body",
		})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Username and password are required",
		})
	}

	var admin models.Admin
	err := s.DB.Where("username = ?", req.Username).First(&admin).Error
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password))
	}
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "message": "Invalid username or password",
		})
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": admin.ID,
		"iat":      now.Unix(),
		"exp":      now.Add(adminTokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(s.JWTSecret))
	if err != nil {
		log.Printf("[ADMIN] failed to sign token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "Login failed",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminTokenCookie,
		Value:    signed,
		Expires:  now.Add(adminTokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"token":   signed,
	})
}

// Logout expires the admin cookie.
func (s *AdminService) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminTokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true, "message": "Logged out"})
}

// defaultIndustries is the seed set; the flag marks the ones surfaced first
// on the industry picker.
var defaultIndustries = []struct {
	Name        string
	Highlighted bool
}{
	{"Technology", true}, {"Healthcare", true}, {"Finance", true},
	{"Manufacturing", true}, {"Retail", true}, {"Education", true},
	{"Government", true}, {"Energy", true}, {"Telecommunications", false},
	{"Transportation", false}, {"Real Estate", false}, {"Media", false},
	{"Hospitality", false}, {"Agriculture", false}, {"Construction", false},
	{"Automotive", false}, {"Aerospace", false}, {"Pharmaceuticals", false},
	{"Insurance", false}, {"Banking", false}, {"Consulting", false},
	{"Legal Services", false}, {"Non-Profit", false}, {"Other", false},
}

// Seed creates the default admin account, the seed industries, and a
// matching category per industry. Existing rows are left untouched.
func (s *AdminService) Seed() error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	var admin models.Admin
	err := s.DB.Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			return fmt.Errorf("hash admin password: %w", hashErr)
		}
		admin = models.Admin{Username: username, PasswordHash: string(hash)}
		if err := s.DB.Create(&admin).Error; err != nil {
			return fmt.Errorf("create default admin: %w", err)
		}
		log.Printf("[ADMIN] default admin user created: %s", username)
	} else if err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}

	// Industry names arrive from env overrides in arbitrary casing.
	title := cases.Title(language.English, cases.NoLower)
	for _, seed := range defaultIndustries {
		name := title.String(strings.TrimSpace(seed.Name))

		var industry models.Industry
		err := s.DB.Where("name = ?", name).First(&industry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			industry = models.Industry{Name: name, IsHighlighted: seed.Highlighted}
			if err := s.DB.Create(&industry).Error; err != nil {
				return fmt.Errorf("seed industry %s: %w", name, err)
			}
		} else if err != nil {
			return fmt.Errorf("seed industry %s: %w", name, err)
		}

		var category models.Category
		err = s.DB.Where("name = ?", name).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = models.Category{Name: name}
			if err := s.DB.Create(&category).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", name, err)
			}
		} else if err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	return nil
}

type categoryStat struct {
	Name          string `json:"name"`
	QuestionCount int64  `json:"question_count"`
}

type difficultQuestion struct {
	Question    string  `json:"question"`
	Category    string  `json:"category"`
	Attempts    int64   `json:"attempts"`
	SuccessRate float64 `json:"success_rate"`
}

// DashboardStats returns the aggregate counters the admin dashboard renders.
func (s *AdminService) DashboardStats(c *fiber.Ctx) error {
	var totalUsers, totalQuestions, totalGames, totalCategories int64
	s.DB.Model(&models.User{}).Count(&totalUsers)
	s.DB.Model(&models.Question{}).Count(&totalQuestions)
	s.DB.Model(&models.GameSession{}).Count(&totalGames)
	s.DB.Model(&models.Category{}).Count(&totalCategories)

	today := startOfDay(time.Now())
	var usersToday, gamesToday int64
	s.DB.Model(&models.User{}).Where("created_at >= ?", today).Count(&usersToday)
	s.DB.Model(&models.GameSession{}).Where("created_at >= ?", today).Count(&gamesToday)

	var correctAnswers int64
	s.DB.Model(&models.GameSession{}).Where("is_correct = ?", true).Count(&correctAnswers)
	avgScore := 0.0
	if totalGames > 0 {
		avgScore = roundOne(float64(correctAnswers) / float64(totalGames) * 100)
	}

	var categoryStats []categoryStat
	if err := s.DB.Model(&models.Category{}).
		Select("categories.name AS name, COUNT(questions.id) AS question_count").
		Joins("LEFT JOIN questions ON questions.category_id = categories.id").
		Group("categories.id, categories.name").
		Scan(&categoryStats).Error; err != nil {
		log.Printf("[ADMIN] category stats query failed: %v", err)
	}

	type difficultRow struct {
		Question    string
		Category    string
		Attempts    int64
		SuccessRate float64
	}
	var difficultRows []difficultRow
	if err := s.DB.Model(&models.Question{}).
		Select("questions.question_text AS question, categories.name AS category, "+
			"COUNT(game_sessions.id) AS attempts, "+
			"AVG(CASE WHEN game_sessions.is_correct THEN 1.0 ELSE 0.0 END) AS success_rate").
		Joins("JOIN categories ON categories.id = questions.category_id").
		Joins("JOIN game_sessions ON game_sessions.question_id = questions.id").
		Group("questions.id, questions.question_text, categories.name").
		Order("success_rate ASC").
		Limit(5).
		Scan(&difficultRows).Error; err != nil {
		log.Printf("[ADMIN] difficult questions query failed: %v", err)
	}
	difficult := make([]difficultQuestion, 0, len(difficultRows))
	for _, row := range difficultRows {
		difficult = append(difficult, difficultQuestion{
			Question:    truncateText(row.Question, 100),
			Category:    row.Category,
			Attempts:    row.Attempts,
			SuccessRate: roundOne(row.SuccessRate * 100),
		})
	}

	weekAgo := today.AddDate(0, 0, -7)
	var recentGames int64
	s.DB.Model(&models.GameSession{}).Where("created_at >= ?", weekAgo).Count(&recentGames)

	return c.JSON(fiber.Map{
		"success": true,
		"stats": fiber.Map{
			"total_users":         totalUsers,
			"total_questions":     totalQuestions,
			"total_games":         totalGames,
			"total_categories":    totalCategories,
			"users_today":         usersToday,
			"games_today":         gamesToday,
			"avg_score":           avgScore,
			"recent_games":        recentGames,
			"category_stats":      categoryStats,
			"difficult_questions": difficult,
		},
	})
}

// QuestionAnalytics returns per-question and per-category performance rows.
// Questions never served have zero attempts and count as Hard.
func (s *AdminService) QuestionAnalytics(c *fiber.Ctx) error {
	type questionRow struct {
		ID              uint
		Question        string
		Category        string
		TotalAttempts   int64
		CorrectAttempts int64
	}
	var questionRows []questionRow
	if err := s.DB.Model(&models.Question{}).
		Select("questions.id AS id, questions.question_text AS question, categories.name AS category, "+
			"COUNT(game_sessions.id) AS total_attempts, "+
			"SUM(CASE WHEN game_sessions.is_correct THEN 1 ELSE 0 END) AS correct_attempts").
		Joins("JOIN categories ON categories.id = questions.category_id").
		Joins("LEFT JOIN game_sessions ON game_sessions.question_id = questions.id").
		Group("questions.id, questions.question_text, categories.name").
		Scan(&questionRows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}

	questions := make([]fiber.Map, 0, len(questionRows))
	for _, row := range questionRows {
		successRate := 0.0
		if row.TotalAttempts > 0 {
			successRate = float64(row.CorrectAttempts) / float64(row.TotalAttempts) * 100
		}
		questions = append(questions, fiber.Map{
			"id":               row.ID,
			"question":         truncateText(row.Question, 100),
			"category":         row.Category,
			"total_attempts":   row.TotalAttempts,
			"correct_attempts": row.CorrectAttempts,
			"success_rate":     roundOne(successRate),
			"difficulty_level": difficultyLevel(successRate),
		})
	}

	type categoryRow struct {
		Name           string
		TotalQuestions int64
		TotalAttempts  int64
		AvgScore       float64
	}
	var categoryRows []categoryRow
	if err := s.DB.Model(&models.Category{}).
		Select("categories.name AS name, "+
			"COUNT(DISTINCT questions.id) AS total_questions, "+
			"COUNT(game_sessions.id) AS total_attempts, "+
			"COALESCE(AVG(CASE WHEN game_sessions.is_correct THEN 100.0 ELSE 0.0 END), 0) AS avg_score").
		Joins("LEFT JOIN questions ON questions.category_id = categories.id").
		Joins("LEFT JOIN game_sessions ON game_sessions.question_id = questions.id").
		Group("categories.id, categories.name").
		Scan(&categoryRows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}

	categories := make([]fiber.Map, 0, len(categoryRows))
	for _, row := range categoryRows {
		categories = append(categories, fiber.Map{
			"name":            row.Name,
			"total_questions": row.TotalQuestions,
			"total_attempts":  row.TotalAttempts,
			"avg_score":       roundOne(row.AvgScore),
		})
	}

	return c.JSON(fiber.Map{
		"success":              true,
		"question_performance": questions,
		"category_performance": categories,
	})
}

// ResetSessions clears all game sessions and journeys. Users, questions,
// categories, and industries are kept.
func (s *AdminService) ResetSessions(c *fiber.Ctx) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.GameSession{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.UserJourney{}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "All game sessions and user journeys have been reset successfully",
	})
}

// startOfDay is midnight of t's day in t's own location, so the daily
// counters roll over at local midnight.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func difficultyLevel(successRate float64) string {
	switch {
	case successRate > 70:
		return "Easy"
	case successRate > 40:
		return "Medium"
	default:
		return "Hard"
	}
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}
