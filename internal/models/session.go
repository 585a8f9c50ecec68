package models

import "time"

// CompletedSession is one finished play-through of a stack.
type CompletedSession struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string    `json:"-" gorm:"type:varchar(36);not null;index:idx_session_user_date,priority:1"`
	StackID       string    `json:"stackId" gorm:"type:varchar(64)"`
	ItemCount     int       `json:"itemCount" gorm:"not null"`
	TotalDuration int64     `json:"totalDuration" gorm:"not null"` // seconds
	CompletedAt   time.Time `json:"date" gorm:"not null;index:idx_session_user_date,priority:2,sort:desc"`
}
