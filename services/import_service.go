package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trivia-game-system/models"
	"trivia-game-system/questionbank"
	"trivia-game-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportService ingests administrator-supplied files: tabular question and
// user imports, the industry-sectioned question text format, and the
// three-parallel-file user lists.
type ImportService struct {
	DB *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{DB: db}
}

// questionColumns maps each logical field to the accepted header spellings,
// checked in order; the first match wins.
var questionColumns = map[string][]string{
	"category":       {"category", "category_name", "Category", "Category Name"},
	"question":       {"question", "question_text", "Question", "Question Text"},
	"option_a":       {"option_a", "option a", "Option A", "A"},
	"option_b":       {"option_b", "option b", "Option B", "B"},
	"option_c":       {"option_c", "option c", "Option C", "C"},
	"option_d":       {"option_d", "option d", "Option D", "D"},
	"correct_answer": {"correct_answer", "correct", "answer", "Correct Answer", "Answer"},
}

var questionFields = []string{
	"category", "question", "option_a", "option_b", "option_c", "option_d", "correct_answer",
}

// resolveQuestionRow extracts the logical question fields from one raw row,
// validating presence and normalizing the answer letter.
func resolveQuestionRow(row map[string]string) (map[string]string, error) {
	data := make(map[string]string, len(questionFields))
	for field, aliases := range questionColumns {
		for _, alias := range aliases {
			if value, ok := row[alias]; ok && strings.TrimSpace(value) != "" {
				data[field] = strings.TrimSpace(value)
				break
			}
		}
	}
	for _, field := range questionFields {
		if data[field] == "" {
			return nil, fmt.Errorf("missing required field: %s", field)
		}
	}
	answer := strings.ToUpper(data["correct_answer"])
	if !models.ValidAnswer(answer) {
		return nil, fmt.Errorf("correct answer must be A, B, C, or D")
	}
	data["correct_answer"] = answer
	return data, nil
}

// BulkImportQuestions ingests a .csv or .xlsx question file. Each row is
// validated and persisted independently; the batch commits once at the end,
// so earlier successes survive a later bad row.
func (s *ImportService) BulkImportQuestions(c *fiber.Ctx) error {
	rows, cleanup, errResp := s.tabularUpload(c)
	if errResp != nil {
		return errResp(c)
	}
	defer cleanup()

	imported := 0
	var rowErrors []string
	categories := make(map[string]models.Category)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			rowNum := i + 2 // 1-based, after the header row
			data, err := resolveQuestionRow(row)
			if err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %v", rowNum, err))
				continue
			}

			category, ok := categories[data["category"]]
			if !ok {
				if err := tx.Where("name = ?", data["category"]).
					FirstOrCreate(&category, models.Category{Name: data["category"]}).Error; err != nil {
					rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %v", rowNum, err))
					continue
				}
				categories[data["category"]] = category
			}

			question := models.Question{
				CategoryID:    category.ID,
				QuestionText:  data["question"],
				OptionA:       data["option_a"],
				OptionB:       data["option_b"],
				OptionC:       data["option_c"],
				OptionD:       data["option_d"],
				CorrectAnswer: data["correct_answer"],
				ContentHash:   questionbank.RecordID(category.Name, data["question"]),
			}
			if err := tx.Create(&question).Error; err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %v", rowNum, err))
				continue
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": fmt.Sprintf("Import failed: %v", err),
		})
	}

	return c.JSON(importResponse(imported, "questions", rowErrors))
}

// BulkImportQuestionsText ingests the INDUSTRY-sectioned text format via the
// shared parser and surfaces its per-unit diagnostics.
func (s *ImportService) BulkImportQuestionsText(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "No file uploaded",
		})
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".txt") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Only .txt files are supported",
		})
	}

	// Question text files are retained, not transient.
	path := filepath.Join(utils.QuestionFileDir, filepath.Base(fileHeader.Filename))
	if err := utils.SaveFile(fileHeader, path); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to save uploaded file",
		})
	}

	f, err := os.Open(path)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "failed to read uploaded file",
		})
	}
	res := questionbank.Parse(f)
	f.Close()

	importErrors := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		importErrors = append(importErrors, fmt.Sprintf("Line %d (%s): %s", d.Line, d.Industry, d.Message))
	}

	imported := 0
	categories := make(map[string]models.Category)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, rec := range res.Records {
			category, ok := categories[rec.Industry]
			if !ok {
				if err := tx.Where("name = ?", rec.Industry).
					FirstOrCreate(&category, models.Category{Name: rec.Industry}).Error; err != nil {
					importErrors = append(importErrors, fmt.Sprintf("%s: %v", rec.Industry, err))
					continue
				}
				categories[rec.Industry] = category
			}

			question := models.Question{
				CategoryID:    category.ID,
				QuestionText:  rec.Question,
				OptionA:       rec.Options["A"],
				OptionB:       rec.Options["B"],
				OptionC:       rec.Options["C"],
				OptionD:       rec.Options["D"],
				CorrectAnswer: rec.CorrectAnswer,
				ContentHash:   rec.ID,
			}
			if err := tx.Create(&question).Error; err != nil {
				importErrors = append(importErrors, fmt.Sprintf("%q: %v", truncateText(rec.Question, 50), err))
				continue
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": fmt.Sprintf("Import failed: %v", err),
		})
	}

	return c.JSON(importResponse(imported, "questions from text file", importErrors))
}

var userColumns = []string{"name", "company_name", "industry"}

// BulkImportUsers ingests a .csv or .xlsx pre-registered user file.
func (s *ImportService) BulkImportUsers(c *fiber.Ctx) error {
	rows, cleanup, errResp := s.tabularUpload(c)
	if errResp != nil {
		return errResp(c)
	}
	defer cleanup()

	added := 0
	var rowErrors []string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			rowNum := i + 2
			record := make(map[string]string, len(userColumns))
			for _, col := range userColumns {
				record[col] = strings.TrimSpace(row[col])
			}
			if record["name"] == "" || record["company_name"] == "" || record["industry"] == "" {
				rowErrors = append(rowErrors,
					fmt.Sprintf("Row %d: Missing required fields (name, company_name, industry)", rowNum))
				continue
			}

			user := models.PreRegisteredUser{
				Name:        record["name"],
				CompanyName: record["company_name"],
				Industry:    record["industry"],
			}
			if err := tx.Create(&user).Error; err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %v", rowNum, err))
				continue
			}
			added++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": fmt.Sprintf("Error processing file: %v", err),
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     fmt.Sprintf("Successfully added %d users", added),
		"users_added": added,
		"errors":      rowErrors,
	})
}

// checkParallelLengths enforces the all-or-nothing precondition of the
// three-file user import: equal, non-zero line counts.
func checkParallelLengths(names, companies, industries []string) error {
	if len(names) != len(companies) || len(names) != len(industries) {
		return fmt.Errorf(
			"File length mismatch: Names(%d), Companies(%d), Industries(%d). All files must have the same number of entries.",
			len(names), len(companies), len(industries))
	}
	if len(names) == 0 {
		return fmt.Errorf("All files are empty")
	}
	return nil
}

// BulkImportUsersText ingests three parallel line-oriented files: line i of
// each composes one pre-registered user. Mismatched lengths reject the whole
// batch with nothing persisted and nothing promoted out of staging. Accepted
// batches are moved into bulk_uploads, where they feed the typeahead
// endpoint.
func (s *ImportService) BulkImportUsersText(c *fiber.Ctx) error {
	fileKeys := []string{"names_file", "companies_file", "industries_file"}
	headers := make(map[string]*multipart.FileHeader, len(fileKeys))
	for _, key := range fileKeys {
		fh, err := c.FormFile(key)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": fmt.Sprintf("Missing %s", strings.ReplaceAll(key, "_", " ")),
			})
		}
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".txt") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": fmt.Sprintf("%s must be a .txt file", strings.ReplaceAll(key, "_", " ")),
			})
		}
		headers[key] = fh
	}

	timestamp := time.Now().Format("20060102_150405")
	finalNames := map[string]string{
		"names_file":      fmt.Sprintf("names_%s.txt", timestamp),
		"companies_file":  fmt.Sprintf("companies_%s.txt", timestamp),
		"industries_file": fmt.Sprintf("industries_%s.txt", timestamp),
	}

	// Stage first. The suggestion endpoint reads the newest files under
	// bulk_uploads, so a rejected batch must never land there.
	staged := make(map[string]string, len(fileKeys))
	for key, fh := range headers {
		path := filepath.Join(utils.TempImportDir, finalNames[key])
		if err := utils.SaveFile(fh, path); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false, "message": "failed to save uploaded files",
			})
		}
		staged[key] = path
	}
	discard := func() {
		for _, path := range staged {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Printf("[IMPORT] failed to remove staged file %s: %v", path, err)
			}
		}
	}

	names, err := readLines(staged["names_file"])
	var companies, industries []string
	if err == nil {
		companies, err = readLines(staged["companies_file"])
	}
	if err == nil {
		industries, err = readLines(staged["industries_file"])
	}
	if err != nil {
		discard()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": fmt.Sprintf("Error processing files: %v", err),
		})
	}

	if err := checkParallelLengths(names, companies, industries); err != nil {
		discard()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}

	paths := make(map[string]string, len(staged))
	for key, src := range staged {
		dst := filepath.Join(utils.BulkUploadDir, finalNames[key])
		if err := os.Rename(src, dst); err != nil {
			discard()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false, "message": "failed to save uploaded files",
			})
		}
		paths[key] = dst
	}

	return s.importParallelUsers(c, names, companies, industries, paths)
}

func (s *ImportService) importParallelUsers(c *fiber.Ctx, names, companies, industries []string, paths map[string]string) error {
	added := 0
	var rowErrors []string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range names {
			name, company, industry := names[i], companies[i], industries[i]
			if name == "" || company == "" || industry == "" {
				rowErrors = append(rowErrors, fmt.Sprintf(
					"Line %d: Empty field(s) - Name: %q, Company: %q, Industry: %q",
					i+1, name, company, industry))
				continue
			}

			var existing models.PreRegisteredUser
			err := tx.Where("name = ? AND company_name = ? AND industry = ?", name, company, industry).
				First(&existing).Error
			if err == nil {
				rowErrors = append(rowErrors, fmt.Sprintf(
					"Line %d: User %q from %q in %q already exists", i+1, name, company, industry))
				continue
			}

			user := models.PreRegisteredUser{Name: name, CompanyName: company, Industry: industry}
			if err := tx.Create(&user).Error; err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("Line %d: %v", i+1, err))
				continue
			}
			added++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": fmt.Sprintf("Error processing files: %v", err),
		})
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"message":         fmt.Sprintf("Successfully added %d users", added),
		"users_added":     added,
		"total_processed": len(names),
		"errors":          rowErrors,
		"saved_files": fiber.Map{
			"names_file":      paths["names_file"],
			"companies_file":  paths["companies_file"],
			"industries_file": paths["industries_file"],
		},
	})
}

// tabularUpload validates and stages a single .csv/.xlsx/.xls upload, then
// returns its data rows as header-keyed maps. cleanup removes the staged
// file; errResp is non-nil when the request was already answered.
func (s *ImportService) tabularUpload(c *fiber.Ctx) (rows []map[string]string, cleanup func(), errResp func(*fiber.Ctx) error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "No file uploaded",
			})
		}
	}

	lower := strings.ToLower(fileHeader.Filename)
	isCSV := strings.HasSuffix(lower, ".csv")
	isExcel := strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
	if !isCSV && !isExcel {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "Invalid file format. Please upload CSV or Excel file",
			})
		}
	}

	path := filepath.Join(utils.TempImportDir,
		fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(fileHeader.Filename)))
	if err := utils.SaveFile(fileHeader, path); err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false, "message": "failed to save uploaded file",
			})
		}
	}
	cleanup = func() {
		if err := os.Remove(path); err != nil {
			log.Printf("[IMPORT] failed to remove temp file %s: %v", path, err)
		}
	}

	if isCSV {
		rows, err = readCSVRows(path)
	} else {
		rows, err = readExcelRows(path)
	}
	if err != nil {
		cleanup()
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": fmt.Sprintf("failed to parse file: %v", err),
			})
		}
	}

	return rows, cleanup, nil
}

func readCSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, zipRow(header, record))
	}
	return rows, nil
}

func readExcelRows(path string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(raw) < 1 {
		return nil, nil
	}

	header := raw[0]
	var rows []map[string]string
	for _, record := range raw[1:] {
		if emptyRow(record) {
			continue
		}
		rows = append(rows, zipRow(header, record))
	}
	return rows, nil
}

func zipRow(header, record []string) map[string]string {
	row := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(record) {
			row[col] = record[i]
		}
	}
	return row
}

func emptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
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

func importResponse(imported int, what string, errs []string) fiber.Map {
	message := fmt.Sprintf("Successfully imported %d %s", imported, what)
	resp := fiber.Map{
		"success":        true,
		"imported_count": imported,
	}
	if len(errs) > 0 {
		message += fmt.Sprintf(" with %d errors", len(errs))
		resp["errors"] = errs
	}
	resp["message"] = message
	return resp
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
