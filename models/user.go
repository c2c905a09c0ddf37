package models

import "time"

// PreRegisteredUser is a known contact loaded ahead of an event. It is a
// lookup table only and is never linked to game sessions.
type PreRegisteredUser struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	CompanyName string    `json:"company_name" gorm:"not null"`
	Industry    string    `json:"industry"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is a player captured during a play-through, together with request
// metadata for reporting.
type User struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	CompanyName string `json:"company_name" gorm:"not null"`
	Industry    string `json:"industry"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	JobTitle    string `json:"job_title"`
	Department  string `json:"department"`

	SessionID string `json:"session_id" gorm:"uniqueIndex"`
	IPAddress string `json:"ip_address" gorm:"size:45"`
	UserAgent string `json:"user_agent" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`

	GameSessions []GameSession `json:"game_sessions,omitempty" gorm:"foreignKey:UserID"`
	UserJourneys []UserJourney `json:"user_journeys,omitempty" gorm:"foreignKey:UserID"`
}
