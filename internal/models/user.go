package models

import (
	"time"

	"timely/internal/streak"
)

// DefaultAvatar is assigned at registration.
const DefaultAvatar = "avatar1"

// User is the only identity record. It is created at registration and never
// deleted by any current path.
type User struct {
	ID string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	// SecretHash is the bcrypt hash of the raw secret. Never serialized.
	SecretHash string `json:"-" gorm:"type:varchar(255);not null"`
	// SecretPrefix narrows the login lookup. Never serialized.
	SecretPrefix string `json:"-" gorm:"uniqueIndex;type:varchar(16);not null"`

	Username string `json:"username" gorm:"type:varchar(30)"`
	Avatar   string `json:"avatar" gorm:"type:varchar(16);not null;default:avatar1"`

	Streak Streak `json:"streak" gorm:"embedded;embeddedPrefix:streak_"`
	Stats  Stats  `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`

	// ActivityVersion guards streak and stats updates against lost writes.
	ActivityVersion int `json:"-" gorm:"not null;default:0"`

	Shortcuts []Shortcut `json:"shortcuts,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt" gorm:"<-:create"`
	UpdatedAt time.Time `json:"-"`
}

// Streak holds consecutive-day counters. LastActiveDate is a calendar day
// stored as midnight UTC.
type Streak struct {
	Current        int        `json:"current" gorm:"not null;default:0"`
	Longest        int        `json:"longest" gorm:"not null;default:0"`
	LastActiveDate *time.Time `json:"lastActiveDate"`
}

// Stats are aggregate counters, only ever increased by recorded sessions.
type Stats struct {
	TotalSessions int64 `json:"totalSessions" gorm:"not null;default:0"`
	TotalTime     int64 `json:"totalTime" gorm:"not null;default:0"` // seconds
	TotalItems    int64 `json:"totalItems" gorm:"not null;default:0"`
}

// HasProfile reports whether the user finished profile setup.
func (u *User) HasProfile() bool {
	return u.Username != ""
}

// StreakState converts the stored streak for the streak engine.
func (u *User) StreakState() streak.State {
	return streak.State{
		Current:    u.Streak.Current,
		Longest:    u.Streak.Longest,
		LastActive: u.Streak.LastActiveDate,
	}
}

// SetStreakState stores the result of the streak engine.
func (u *User) SetStreakState(s streak.State) {
	u.Streak.Current = s.Current
	u.Streak.Longest = s.Longest
	u.Streak.LastActiveDate = s.LastActive
}
