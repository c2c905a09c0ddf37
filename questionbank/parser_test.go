package questionbank

import (
	"strings"
	"testing"
)

const sampleUnit = `INDUSTRY: Technology
1. What is X?
A. Foo
B. Bar
C. Baz
D. Qux
Correct Answer: B
`

func TestParseSingleUnit(t *testing.T) {
	res := Parse(strings.NewReader(sampleUnit))
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}

	rec := res.Records[0]
	if rec.Industry != "Technology" {
		t.Errorf("industry = %q", rec.Industry)
	}
	if rec.Question != "What is X?" {
		t.Errorf("question = %q", rec.Question)
	}
	if rec.CorrectAnswer != "B" {
		t.Errorf("correct answer = %q", rec.CorrectAnswer)
	}
	if rec.Options["A"] != "Foo" || rec.Options["D"] != "Qux" {
		t.Errorf("options = %+v", rec.Options)
	}
	if rec.ID != RecordID("Technology", "What is X?") {
		t.Errorf("id not derived from content: %q", rec.ID)
	}
}

func TestParseMultipleIndustries(t *testing.T) {
	input := sampleUnit + `
INDUSTRY: 17. Construction
2. Which material?
A. Steel
B. Wood
C. Glass
D. Brick
Correct Answer: a
`
	res := Parse(strings.NewReader(input))
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d (diagnostics: %+v)", len(res.Records), res.Diagnostics)
	}
	second := res.Records[1]
	if second.Industry != "Construction" {
		t.Errorf("embedded ordinal should be stripped, got %q", second.Industry)
	}
	if second.CorrectAnswer != "A" {
		t.Errorf("answer letter should be uppercased, got %q", second.CorrectAnswer)
	}
}

func TestParseRejectsIncompleteUnits(t *testing.T) {
	input := `INDUSTRY: Technology
1. Missing one option
A. Foo
B. Bar
C. Baz
Correct Answer: A
2. Missing answer
A. Foo
B. Bar
C. Baz
D. Qux
3. Bad answer letter
A. Foo
B. Bar
C. Baz
D. Qux
Correct Answer: E
4. Good one
A. Foo
B. Bar
C. Baz
D. Qux
Correct Answer: D
`
	res := Parse(strings.NewReader(input))
	if len(res.Records) != 1 {
		t.Fatalf("expected only the good unit, got %d records", len(res.Records))
	}
	if res.Records[0].Question != "Good one" {
		t.Errorf("wrong record survived: %q", res.Records[0].Question)
	}
	if len(res.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d: %+v", len(res.Diagnostics), res.Diagnostics)
	}
	for _, d := range res.Diagnostics {
		if d.Industry != "Technology" {
			t.Errorf("diagnostic lost its industry: %+v", d)
		}
		if d.Line == 0 {
			t.Errorf("diagnostic lost its line number: %+v", d)
		}
	}
}

func TestParseIgnoresQuestionsBeforeIndustry(t *testing.T) {
	input := `1. Orphan question
A. Foo
B. Bar
C. Baz
D. Qux
Correct Answer: A
`
	res := Parse(strings.NewReader(input))
	if len(res.Records) != 0 {
		t.Fatalf("question without an industry header must be skipped, got %d records", len(res.Records))
	}
}

func TestRecordIDStable(t *testing.T) {
	a := RecordID("Technology", "What is X?")
	b := RecordID("Technology", "What is X?")
	if a != b {
		t.Fatalf("same content must hash identically: %q vs %q", a, b)
	}
	if a == RecordID("Healthcare", "What is X?") {
		t.Fatalf("different industry must change the id")
	}
	if len(a) != 40 {
		t.Fatalf("expected hex sha1, got %q", a)
	}
}

func TestAnswerLetterIndexRoundTrip(t *testing.T) {
	for i := 0; i < 4; i++ {
		letter := AnswerLetter(i)
		if got := AnswerIndex(letter); got != i {
			t.Errorf("round trip %d -> %s -> %d", i, letter, got)
		}
	}
	if AnswerIndex("Z") != 0 {
		t.Errorf("unknown letter should map to 0")
	}
	if AnswerLetter(9) != "A" {
		t.Errorf("out-of-range index should map to A")
	}
}
