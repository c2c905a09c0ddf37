package models

import "time"

// UserJourney is one complete play-through, from contact capture to gift
// collection. Profile fields are copied in at start so reports survive later
// edits to the User row.
type UserJourney struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	UserID           uint   `json:"user_id" gorm:"index;not null"`
	JourneySessionID string `json:"journey_session_id" gorm:"uniqueIndex;not null"`

	Name        string `json:"name" gorm:"not null"`
	CompanyName string `json:"company_name" gorm:"not null"`
	Industry    string `json:"industry"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	JobTitle    string `json:"job_title"`
	Department  string `json:"department"`

	SelfieFilename string     `json:"selfie_filename"`
	JourneyStart   time.Time  `json:"journey_start"`
	JourneyEnd     *time.Time `json:"journey_end"`
	// Set exactly once, when the player reaches gift collection.
	IsCompleted bool      `json:"is_completed" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`

	User         User          `json:"-" gorm:"foreignKey:UserID"`
	GameSessions []GameSession `json:"game_sessions,omitempty" gorm:"foreignKey:JourneyID"`
}

// GameSession is one answered-question event. QuestionRef is the stable
// content hash of the bank question that was served; QuestionID is set in
// addition when the same question exists in the database bank, so admin
// analytics and the delete guard can join on it.
type GameSession struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	UserID    *uint `json:"user_id" gorm:"index"`
	JourneyID *uint `json:"journey_id" gorm:"index"`

	Name        string `json:"name" gorm:"not null"`
	CompanyName string `json:"company_name" gorm:"not null"`
	Industry    string `json:"industry"`

	QuestionID   *uint  `json:"question_id" gorm:"index"`
	QuestionRef  string `json:"question_ref" gorm:"index"`
	QuestionText string `json:"question_text" gorm:"type:text"`

	SelectedAnswer string `json:"selected_answer" gorm:"size:1;not null"`
	CorrectAnswer  string `json:"correct_answer" gorm:"size:1"`
	IsCorrect      bool   `json:"is_correct" gorm:"not null"`

	SelfieFilename string     `json:"selfie_filename"`
	SessionStart   time.Time  `json:"session_start" gorm:"autoCreateTime"`
	SessionEnd     *time.Time `json:"session_end"`
	CreatedAt      time.Time  `json:"created_at"`

	Question *Question `json:"-" gorm:"foreignKey:QuestionID"`
}
