package models

import "time"

// Industry is a selectable vertical. Highlighted industries are shown first
// in the selection screen.
type Industry struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"uniqueIndex;not null"`
	IsHighlighted bool      `json:"is_highlighted" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
}
