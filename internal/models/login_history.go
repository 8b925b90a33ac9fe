package models

import "time"

// LoginHistory: journal append-only des événements d'authentification.
// UserID est NULL quand l'email soumis ne correspond à aucun compte.
// Les lignes ne sont jamais modifiées après création.
type LoginHistory struct {
	ID        uint  `gorm:"primaryKey"`
	UserID    *uint `gorm:"index"`
	User      *User `gorm:"foreignKey:UserID"`
	LoginTime time.Time `gorm:"not null;index"`
	IPAddress string    `gorm:"size:45"` // IPv4 ou IPv6
	UserAgent string    `gorm:"size:255"`
	Success   bool      `gorm:"not null;default:true"`
	Action    string    `gorm:"size:15;not null;default:'LOGIN'"` // LOGIN, LOGOUT, FAILED_ATTEMPT
}

const (
	ActionLogin         = "LOGIN"
	ActionLogout        = "LOGOUT"
	ActionFailedAttempt = "FAILED_ATTEMPT"
)
