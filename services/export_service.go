package services

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"trivia-game-system/models"
	"trivia-game-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportService builds the downloadable Excel reports.
type ExportService struct {
	DB *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{DB: db}
}

var sessionHeaders = []string{
	"Session ID", "Name", "Company", "Industry", "Email", "Phone", "Job Title",
	"Department", "Question", "Selected Answer", "Correct Answer", "Is Correct",
	"Selfie Filename", "Session Date", "IP Address", "User Agent",
}

// ExportSessions streams every game session as a spreadsheet, one row per
// answered question with the player's contact details joined in.
func (s *ExportService) ExportSessions(c *fiber.Ctx) error {
	var sessions []models.GameSession
	if err := s.DB.Order("id").Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}

	// One lookup per distinct player instead of a query per row.
	users := make(map[uint]models.User)
	var allUsers []models.User
	if err := s.DB.Find(&allUsers).Error; err == nil {
		for _, u := range allUsers {
			users[u.ID] = u
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Game Sessions Data"
	f.SetSheetName(f.GetSheetName(0), sheet)

	if err := writeHeaderRow(f, sheet, sessionHeaders); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}

	for i, session := range sessions {
		var user models.User
		if session.UserID != nil {
			user = users[*session.UserID]
		}
		isCorrect := "No"
		if session.IsCorrect {
			isCorrect = "Yes"
		}
		row := []interface{}{
			session.ID, session.Name, session.CompanyName, session.Industry,
			user.Email, user.Phone, user.JobTitle, user.Department,
			session.QuestionText, session.SelectedAnswer, session.CorrectAnswer,
			isCorrect, session.SelfieFilename,
			session.CreatedAt.Format("2006-01-02 15:04:05"),
			user.IPAddress, user.UserAgent,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false, "message": err.Error(),
			})
		}
	}

	filename := fmt.Sprintf("game_sessions_%s.xlsx", time.Now().Format("20060102_150405"))
	return sendWorkbook(c, f, filename)
}

var reportHeaders = []string{
	"User Name", "Time of Playing", "Company Name", "Industry", "Email ID",
	"Phone", "Job Title", "Department", "Selfie Filename",
}

// ExportCompleteReport streams completed play-throughs, newest first. The
// selfie column carries the filename when the file is still on disk.
func (s *ExportService) ExportCompleteReport(c *fiber.Ctx) error {
	var journeys []models.UserJourney
	if err := s.DB.Where("is_completed = ?", true).
		Order("journey_start DESC").
		Find(&journeys).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Game Report"
	f.SetSheetName(f.GetSheetName(0), sheet)

	if err := writeHeaderRow(f, sheet, reportHeaders); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}

	for i, journey := range journeys {
		row := []interface{}{
			orNA(journey.Name),
			journey.JourneyStart.Format("2006-01-02 15:04:05"),
			orNA(journey.CompanyName),
			orNA(journey.Industry),
			orNA(journey.Email),
			orNA(journey.Phone),
			orNA(journey.JobTitle),
			orNA(journey.Department),
			selfieCell(journey.SelfieFilename),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false, "message": err.Error(),
			})
		}
	}

	fitColumns(f, sheet, len(reportHeaders))

	filename := fmt.Sprintf("complete-game-report-%s.xlsx", time.Now().Format("2006-01-02"))
	return sendWorkbook(c, f, filename)
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

// fitColumns sizes each column to its longest cell, capped at 50.
func fitColumns(f *excelize.File, sheet string, columns int) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return
	}
	for col := 1; col <= columns; col++ {
		maxLen := 0
		for _, row := range rows {
			if col-1 < len(row) && len(row[col-1]) > maxLen {
				maxLen = len(row[col-1])
			}
		}
		width := float64(maxLen + 2)
		if width > 50 {
			width = 50
		}
		name, _ := excelize.ColumnNumberToName(col)
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			log.Printf("[EXPORT] failed to size column %s: %v", name, err)
		}
	}
}

func sendWorkbook(c *fiber.Ctx, f *excelize.File, filename string) error {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}

func selfieCell(filename string) string {
	if filename == "" {
		return "No Selfie"
	}
	if _, err := os.Stat(filepath.Join(utils.SelfieDir, filename)); err != nil {
		return "Image File Missing"
	}
	return filename
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
