package services

import (
	"errors"
	"fmt"
	"strings"

	"trivia-game-system/models"
	"trivia-game-system/questionbank"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// QuestionService is the admin CRUD surface for the database question bank,
// its categories, industries and pre-registered contacts.
type QuestionService struct {
	DB *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{DB: db}
}

type questionPayload struct {
	CategoryID    uint   `json:"category_id"`
	QuestionText  string `json:"question_text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
}

func (p *questionPayload) validate(db *gorm.DB) (models.Category, string, bool) {
	p.QuestionText = strings.TrimSpace(p.QuestionText)
	p.OptionA = strings.TrimSpace(p.OptionA)
	p.OptionB = strings.TrimSpace(p.OptionB)
	p.OptionC = strings.TrimSpace(p.OptionC)
	p.OptionD = strings.TrimSpace(p.OptionD)
	p.CorrectAnswer = strings.ToUpper(strings.TrimSpace(p.CorrectAnswer))

	if p.CategoryID == 0 || p.QuestionText == "" ||
		p.OptionA == "" || p.OptionB == "" || p.OptionC == "" || p.OptionD == "" ||
		p.CorrectAnswer == "" {
		return models.Category{}, "All question fields are required", false
	}
	if !models.ValidAnswer(p.CorrectAnswer) {
		return models.Category{}, "Correct answer must be A, B, C, or D", false
	}
	var category models.Category
	if err := db.First(&category, p.CategoryID).Error; err != nil {
		return models.Category{}, "Invalid category", false
	}
	return category, "", true
}

// ListQuestions returns a page of questions with optional text search and
// category filter.
func (s *QuestionService) ListQuestions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 10)
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	query := s.DB.Model(&models.Question{}).Preload("Category")
	if search := c.Query("search"); search != "" {
		query = query.Where("question_text ILIKE ?", "%"+search+"%")
	}
	if categoryID := c.QueryInt("category", 0); categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to count questions",
		})
	}

	var questions []models.Question
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&questions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to fetch questions",
		})
	}

	items := make([]fiber.Map, 0, len(questions))
	for _, q := range questions {
		items = append(items, questionJSON(q))
	}

	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"questions": items,
		"pagination": fiber.Map{
			"page":     page,
			"pages":    pages,
			"per_page": perPage,
			"total":    total,
		},
	})
}

func (s *QuestionService) GetQuestionByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid question id",
		})
	}

	var question models.Question
	if err := s.DB.Preload("Category").First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "question not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "DB error",
		})
	}

	return c.JSON(fiber.Map{"success": true, "question": questionJSON(question)})
}

func (s *QuestionService) CreateQuestion(c *fiber.Ctx) error {
	var payload questionPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	category, msg, ok := payload.validate(s.DB)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": msg,
		})
	}

	question := models.Question{
		CategoryID:    payload.CategoryID,
		QuestionText:  payload.QuestionText,
		OptionA:       payload.OptionA,
		OptionB:       payload.OptionB,
		OptionC:       payload.OptionC,
		OptionD:       payload.OptionD,
		CorrectAnswer: payload.CorrectAnswer,
		ContentHash:   questionbank.RecordID(category.Name, payload.QuestionText),
	}
	if err := s.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to create question",
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Question added successfully",
		"question_id": question.ID,
	})
}

func (s *QuestionService) UpdateQuestion(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid question id",
		})
	}

	var question models.Question
	if err := s.DB.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "question not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "DB error",
		})
	}

	var payload questionPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	category, msg, ok := payload.validate(s.DB)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": msg,
		})
	}

	question.CategoryID = payload.CategoryID
	question.QuestionText = payload.QuestionText
	question.OptionA = payload.OptionA
	question.OptionB = payload.OptionB
	question.OptionC = payload.OptionC
	question.OptionD = payload.OptionD
	question.CorrectAnswer = payload.CorrectAnswer
	question.ContentHash = questionbank.RecordID(category.Name, payload.QuestionText)

	if err := s.DB.Save(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to update question",
		})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Question updated successfully"})
}

// DeleteQuestion refuses to remove a question that any game session still
// references.
func (s *QuestionService) DeleteQuestion(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid question id",
		})
	}

	var question models.Question
	if err := s.DB.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "question not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "DB error",
		})
	}

	var sessions int64
	if err := s.DB.Model(&models.GameSession{}).
		Where("question_id = ?", question.ID).
		Count(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "DB error",
		})
	}
	if sessions > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Cannot delete question. It has been used in %d game sessions.", sessions),
		})
	}

	if err := s.DB.Delete(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to delete question",
		})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Question deleted successfully"})
}

// ListCategories includes per-category question counts for the admin UI.
func (s *QuestionService) ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := s.DB.Order("name").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to fetch categories",
		})
	}

	type categoryCount struct {
		CategoryID uint
		Count      int64
	}
	var counts []categoryCount
	if err := s.DB.Model(&models.Question{}).
		Select("category_id, count(*) as count").
		Group("category_id").
		Scan(&counts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to count questions",
		})
	}
	countByID := make(map[uint]int64, len(counts))
	for _, cc := range counts {
		countByID[cc.CategoryID] = cc.Count
	}

	items := make([]fiber.Map, 0, len(categories))
	for _, cat := range categories {
		items = append(items, fiber.Map{
			"id":             cat.ID,
			"name":           cat.Name,
			"created_at":     cat.CreatedAt,
			"question_count": countByID[cat.ID],
		})
	}

	return c.JSON(fiber.Map{"success": true, "categories": items})
}

type categoryPayload struct {
	Name string `json:"name"`
}

func (s *QuestionService) CreateCategory(c *fiber.Ctx) error {
	var payload categoryPayload
	if err := c.BodyParser(&payload); err != nil || strings.TrimSpace(payload.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "category name is required",
		})
	}

	category := models.Category{Name: strings.TrimSpace(payload.Name)}
	if err := s.DB.Create(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to create category",
		})
	}
	return c.JSON(fiber.Map{"success": true, "category_id": category.ID})
}

func (s *QuestionService) UpdateCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid category id",
		})
	}
	var payload categoryPayload
	if err := c.BodyParser(&payload); err != nil || strings.TrimSpace(payload.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "category name is required",
		})
	}

	var category models.Category
	if err := s.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "category not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "DB error",
		})
	}

	category.Name = strings.TrimSpace(payload.Name)
	if err := s.DB.Save(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to update category",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteCategory refuses to remove a category that still owns questions.
func (s *QuestionService) DeleteCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid category id",
		})
	}

	var category models.Category
	if err := s.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "category not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "DB error",
		})
	}

	var questions int64
	if err := s.DB.Model(&models.Question{}).
		Where("category_id = ?", category.ID).
		Count(&questions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "DB error",
		})
	}
	if questions > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Cannot delete category with existing questions",
		})
	}

	if err := s.DB.Delete(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to delete category",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

type industryPayload struct {
	Name          string `json:"name"`
	IsHighlighted bool   `json:"is_highlighted"`
}

func (s *QuestionService) CreateIndustry(c *fiber.Ctx) error {
	var payload industryPayload
	if err := c.BodyParser(&payload); err != nil || strings.TrimSpace(payload.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "industry name is required",
		})
	}

	industry := models.Industry{
		Name:          strings.TrimSpace(payload.Name),
		IsHighlighted: payload.IsHighlighted,
	}
	if err := s.DB.Create(&industry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to create industry",
		})
	}
	return c.JSON(fiber.Map{"success": true, "industry_id": industry.ID})
}

// ToggleIndustryHighlight flips whether an industry appears in the featured
// group of the selection screen.
func (s *QuestionService) ToggleIndustryHighlight(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid industry id",
		})
	}

	var industry models.Industry
	if err := s.DB.First(&industry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "industry not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "DB error",
		})
	}

	industry.IsHighlighted = !industry.IsHighlighted
	if err := s.DB.Save(&industry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to update industry",
		})
	}
	return c.JSON(fiber.Map{"success": true, "is_highlighted": industry.IsHighlighted})
}

type preRegisteredPayload struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
}

func (s *QuestionService) AddPreRegisteredUser(c *fiber.Ctx) error {
	var payload preRegisteredPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	if strings.TrimSpace(payload.Name) == "" || strings.TrimSpace(payload.CompanyName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "name and company_name are required",
		})
	}

	user := models.PreRegisteredUser{
		Name:        strings.TrimSpace(payload.Name),
		CompanyName: strings.TrimSpace(payload.CompanyName),
		Industry:    strings.TrimSpace(payload.Industry),
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to create user",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// ListUsers returns pre-registered contacts and actual players side by side,
// newest players first.
func (s *QuestionService) ListUsers(c *fiber.Ctx) error {
	var preRegistered []models.PreRegisteredUser
	if err := s.DB.Order("name").Find(&preRegistered).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to fetch users",
		})
	}
	var players []models.User
	if err := s.DB.Order("created_at DESC").Find(&players).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to fetch users",
		})
	}
	return c.JSON(fiber.Map{
		"success":              true,
		"pre_registered_users": preRegistered,
		"game_users":           players,
	})
}

func questionJSON(q models.Question) fiber.Map {
	return fiber.Map{
		"id":             q.ID,
		"category_id":    q.CategoryID,
		"category_name":  q.Category.Name,
		"question_text":  q.QuestionText,
		"option_a":       q.OptionA,
		"option_b":       q.OptionB,
		"option_c":       q.OptionC,
		"option_d":       q.OptionD,
		"correct_answer": q.CorrectAnswer,
		"created_at":     q.CreatedAt,
	}
}
