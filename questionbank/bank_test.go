package questionbank

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeQuestionFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write question file: %v", err)
	}
}

func TestBankMissingFileIsEmpty(t *testing.T) {
	b := NewBank(filepath.Join(t.TempDir(), "nope.txt"))
	if recs := b.Records(); len(recs) != 0 {
		t.Fatalf("missing file should serve an empty set, got %d", len(recs))
	}
	if _, ok := b.Lookup("anything"); ok {
		t.Fatalf("lookup on empty bank should miss")
	}
}

func TestBankLoadsAndLooksUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	writeQuestionFile(t, path, sampleUnit)

	b := NewBank(path)
	recs := b.Records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	rec, ok := b.Lookup(RecordID("Technology", "What is X?"))
	if !ok {
		t.Fatalf("expected lookup hit")
	}
	if rec.CorrectAnswer != "B" {
		t.Errorf("correct answer = %q", rec.CorrectAnswer)
	}
}

func TestBankReloadsOnModTimeChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	writeQuestionFile(t, path, sampleUnit)

	b := NewBank(path)
	if len(b.Records()) != 1 {
		t.Fatalf("initial load failed")
	}

	writeQuestionFile(t, path, sampleUnit+`
INDUSTRY: Healthcare
2. Which organ?
A. Heart
B. Liver
C. Lung
D. Kidney
Correct Answer: A
`)
	// Force a visible mtime change; some filesystems have coarse resolution.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if got := len(b.Records()); got != 2 {
		t.Fatalf("expected reload to pick up 2 records, got %d", got)
	}
}

func TestBankFileRemovedServesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	writeQuestionFile(t, path, sampleUnit)

	b := NewBank(path)
	if len(b.Records()) != 1 {
		t.Fatalf("initial load failed")
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := len(b.Records()); got != 0 {
		t.Fatalf("removed file should serve empty set, got %d", got)
	}
}
