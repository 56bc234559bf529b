package models

import (
	"time"
)

// ErrorLog records a failure from the session loop (capture, classifier or
// persistence) for later inspection.
type ErrorLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	SessionID string    `gorm:"index" json:"session_id,omitempty"`
	Source    string    `gorm:"not null;default:''" json:"source"`
	ErrorMsg  string    `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
