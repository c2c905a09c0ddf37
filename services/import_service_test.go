package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"trivia-game-system/utils"

	"github.com/gofiber/fiber/v2"
)

func TestResolveQuestionRowAcceptsAliasHeaders(t *testing.T) {
	row := map[string]string{
		"Category":       "Technology",
		"Question Text":  "What is X?",
		"Option A":       "Foo",
		"option_b":       "Bar",
		"C":              "Baz",
		"D":              "Qux",
		"Correct Answer": "b",
	}
	data, err := resolveQuestionRow(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if data["category"] != "Technology" || data["question"] != "What is X?" {
		t.Errorf("unexpected data: %+v", data)
	}
	if data["correct_answer"] != "B" {
		t.Errorf("answer should be uppercased, got %q", data["correct_answer"])
	}
}

func TestResolveQuestionRowMissingField(t *testing.T) {
	row := map[string]string{
		"category":       "Technology",
		"question":       "What is X?",
		"option_a":       "Foo",
		"option_b":       "Bar",
		"option_c":       "Baz",
		"correct_answer": "A",
	}
	if _, err := resolveQuestionRow(row); err == nil {
		t.Fatalf("expected error for missing option_d")
	} else if !strings.Contains(err.Error(), "option_d") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestResolveQuestionRowRejectsBadAnswer(t *testing.T) {
	row := map[string]string{
		"category":       "Technology",
		"question":       "What is X?",
		"option_a":       "Foo",
		"option_b":       "Bar",
		"option_c":       "Baz",
		"option_d":       "Qux",
		"correct_answer": "E",
	}
	if _, err := resolveQuestionRow(row); err == nil {
		t.Fatalf("expected error for answer E")
	}
}

func TestCheckParallelLengths(t *testing.T) {
	names := []string{"Alice", "Bob"}
	companies := []string{"Acme", "Globex"}
	industries := []string{"Technology", "Finance"}

	if err := checkParallelLengths(names, companies, industries); err != nil {
		t.Fatalf("matched lengths should pass: %v", err)
	}
	if err := checkParallelLengths(names, companies[:1], industries); err == nil {
		t.Fatalf("mismatched lengths must be rejected")
	}
	if err := checkParallelLengths(nil, nil, nil); err == nil {
		t.Fatalf("empty files must be rejected")
	}
}

func TestBulkImportUsersTextMismatchLeavesNoSuggestionFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	svc := NewImportService(nil)
	app := fiber.New()
	app.Post("/bulk-import-text", svc.BulkImportUsersText)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, content := range map[string]string{
		"names_file":      "Alice\nBob\nCarol\n",
		"companies_file":  "Acme\nGlobex\n",
		"industries_file": "Technology\nFinance\nRetail\n",
	} {
		fw, err := w.CreateFormFile(key, key+".txt")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	w.Close()

	req := httptest.NewRequest(fiber.MethodPost, "/bulk-import-text", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}

	// A rejected batch must not become the newest suggestion source.
	for _, prefix := range []string{"names_", "companies_", "industries_"} {
		matches, _ := filepath.Glob(filepath.Join(utils.BulkUploadDir, prefix+"*.txt"))
		if len(matches) != 0 {
			t.Fatalf("rejected batch was promoted: %v", matches)
		}
	}
	staged, _ := filepath.Glob(filepath.Join(utils.TempImportDir, "*.txt"))
	if len(staged) != 0 {
		t.Fatalf("staged files were not cleaned up: %v", staged)
	}
}

func TestZipRowShortRecord(t *testing.T) {
	header := []string{"name", "company_name", "industry"}
	row := zipRow(header, []string{"Alice", "Acme"})
	if row["name"] != "Alice" || row["company_name"] != "Acme" {
		t.Errorf("unexpected row: %+v", row)
	}
	if _, ok := row["industry"]; ok {
		t.Errorf("missing cell should stay absent, got %+v", row)
	}
}
