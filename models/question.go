package models

import "time"

const (
	AnswerA = "A"
	AnswerB = "B"
	AnswerC = "C"
	AnswerD = "D"
)

// ValidAnswer reports whether letter is one of the four option letters.
func ValidAnswer(letter string) bool {
	switch letter {
	case AnswerA, AnswerB, AnswerC, AnswerD:
		return true
	}
	return false
}

type Category struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time  `json:"created_at"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:CategoryID"`
}

type Question struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CategoryID   uint      `json:"category_id" gorm:"index;not null"`
	QuestionText string    `json:"question_text" gorm:"type:text;not null"`
	OptionA      string    `json:"option_a" gorm:"not null"`
	OptionB      string    `json:"option_b" gorm:"not null"`
	OptionC      string    `json:"option_c" gorm:"not null"`
	OptionD      string    `json:"option_d" gorm:"not null"`
	// One of A, B, C, D.
	CorrectAnswer string `json:"correct_answer" gorm:"size:1;not null"`
	// Stable hash of category name + question text, shared with the
	// flat-file bank so sessions played from the file can be joined back
	// to the imported row.
	ContentHash string    `json:"-" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`

	Category Category `json:"-" gorm:"foreignKey:CategoryID"`
}
