package questionbank

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Record is one parsed multiple-choice question, tagged with its industry.
type Record struct {
	ID            string            `json:"id"`
	Industry      string            `json:"industry"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
}

// Diagnostic describes one question unit the parser could not accept.
type Diagnostic struct {
	Industry string `json:"industry"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

// Result carries every accepted record plus a diagnostic per rejected unit.
// Callers decide whether diagnostics are surfaced or discarded.
type Result struct {
	Records     []Record
	Diagnostics []Diagnostic
}

const (
	industryMarker = "INDUSTRY:"
	answerMarker   = "Correct Answer:"
)

var optionLetters = []string{"A", "B", "C", "D"}

// RecordID derives the stable identifier for a question: the hex SHA-1 of
// the industry name and question text. Identical content hashes identically
// across parses, files and processes.
func RecordID(industry, question string) string {
	h := sha1.Sum([]byte(industry + "\n" + question))
	return hex.EncodeToString(h[:])
}

// Parse reads the industry-sectioned question grammar:
//
//	INDUSTRY: <name>
//	1. <question text>
//	A. <option>
//	B. <option>
//	C. <option>
//	D. <option>
//	Correct Answer: <letter>
//
// A unit is accepted only when the question text is non-empty, all four
// options are present and a correct answer was found; anything else yields a
// diagnostic. A single bad unit never aborts the parse.
func Parse(r io.Reader) Result {
	var res Result

	var lines []string
	var lineNos []int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		lineNos = append(lineNos, n)
	}

	industry := ""
	i := 0
	for i < len(lines) {
		line := lines[i]

		if strings.HasPrefix(line, industryMarker) {
			industry = parseIndustryName(line)
			i++
			continue
		}

		if industry != "" && isQuestionStart(line) {
			consumed := parseUnit(lines[i:], lineNos[i], industry, &res)
			i += consumed
			continue
		}

		i++
	}

	return res
}

// parseIndustryName strips the marker and any leading ordinal, so both
// "INDUSTRY: Technology" and "INDUSTRY: 17. Construction" work.
func parseIndustryName(line string) string {
	name := strings.TrimSpace(strings.TrimPrefix(line, industryMarker))
	if _, rest, found := cutOrdinal(name); found {
		name = rest
	}
	return name
}

func isQuestionStart(line string) bool {
	_, _, found := cutOrdinal(line)
	return found
}

// cutOrdinal splits "12. rest of line" into its number and remainder.
func cutOrdinal(line string) (num string, rest string, found bool) {
	before, after, ok := strings.Cut(line, ". ")
	if !ok || before == "" {
		return "", "", false
	}
	for _, r := range before {
		if r < '0' || r > '9' {
			return "", "", false
		}
	}
	return before, strings.TrimSpace(after), true
}

// parseUnit consumes one question block starting at lines[0] and reports how
// many lines it used.
func parseUnit(lines []string, startLine int, industry string, res *Result) int {
	_, questionText, _ := cutOrdinal(lines[0])

	options := make(map[string]string)
	correct := ""
	consumed := 1

	for consumed < len(lines) {
		line := lines[consumed]
		if strings.HasPrefix(line, industryMarker) || isQuestionStart(line) {
			break
		}
		if letter, text, ok := cutOption(line); ok {
			options[letter] = text
			consumed++
			continue
		}
		if strings.HasPrefix(line, answerMarker) {
			correct = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, answerMarker)))
			consumed++
			break
		}
		consumed++
	}

	switch {
	case questionText == "":
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Industry: industry, Line: startLine, Message: "empty question text",
		})
	case len(options) != 4:
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Industry: industry, Line: startLine,
			Message: fmt.Sprintf("expected 4 options, found %d for %q", len(options), truncate(questionText, 50)),
		})
	case correct == "":
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Industry: industry, Line: startLine,
			Message: fmt.Sprintf("missing correct answer for %q", truncate(questionText, 50)),
		})
	case !isAnswerLetter(correct):
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Industry: industry, Line: startLine,
			Message: fmt.Sprintf("invalid correct answer %q for %q", correct, truncate(questionText, 50)),
		})
	default:
		res.Records = append(res.Records, Record{
			ID:            RecordID(industry, questionText),
			Industry:      industry,
			Question:      questionText,
			Options:       options,
			CorrectAnswer: correct,
		})
	}

	return consumed
}

// cutOption splits "A. some text" into its letter and trimmed text.
func cutOption(line string) (letter, text string, ok bool) {
	for _, l := range optionLetters {
		if strings.HasPrefix(line, l+".") {
			return l, strings.TrimSpace(line[2:]), true
		}
	}
	return "", "", false
}

func isAnswerLetter(s string) bool {
	for _, l := range optionLetters {
		if s == l {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
