package models

import "time"

// Shortcut is a user-defined text snippet bound to a short uppercase key.
type Shortcut struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    string    `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_shortcut_user_key"`
	Key       string    `json:"key" gorm:"type:varchar(3);not null;uniqueIndex:idx_shortcut_user_key" validate:"required,min=1,max=3,alpha,uppercase"`
	Text      string    `json:"text" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	CreatedAt time.Time `json:"-"`
}
