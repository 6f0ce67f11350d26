package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	gorm.Model
	Name      string     `json:"name" gorm:"default:''"`
	Email     string     `json:"email" gorm:"uniqueIndex;not null"`
	Role      string     `json:"role" gorm:"default:'USER'"` // USER, ADMIN
	Password  string     `json:"-" gorm:"not null"`
	LastLogin *time.Time `json:"lastLogin"`

	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LastFailedLogin     *time.Time `json:"-"`
	BlockedUntil        *time.Time `json:"-"`
}

// AuthContext is the identity resolved for the current request.
type AuthContext struct {
	UserID uint
	Role   string
}

func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}
