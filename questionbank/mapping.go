package questionbank

var letterToIndex = map[string]int{"A": 0, "B": 1, "C": 2, "D": 3}
var indexToLetter = [4]string{"A", "B", "C", "D"}

// AnswerIndex maps an option letter to its zero-based index. Unknown input
// maps to 0, matching how the game client treats malformed answers.
func AnswerIndex(letter string) int {
	if i, ok := letterToIndex[letter]; ok {
		return i
	}
	return 0
}

// AnswerLetter maps a zero-based index back to its option letter. Out-of-range
// input maps to "A".
func AnswerLetter(index int) string {
	if index < 0 || index >= len(indexToLetter) {
		return "A"
	}
	return indexToLetter[index]
}
