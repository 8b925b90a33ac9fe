package models

import "time"

// User & auth related models
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:191;unique;not null;index"`
	Password  string `gorm:"not null"` // hashé (bcrypt)
	Prenom    string `gorm:"size:100"`
	Nom       string `gorm:"size:100"`
	Telephone string `gorm:"size:20"`
	Adresse   string `gorm:"size:255"`
	Ville     string `gorm:"size:100"`
	Role      string `gorm:"size:20;not null;default:'client'"` // client, structure, admin
	Status    string `gorm:"size:20;not null;default:'active'"` // active, inactive, suspended
	Photo     string // chemin du fichier sous MEDIA_DIR (users/...)
	CreatedAt time.Time
	UpdatedAt time.Time

	Structures []Structure `gorm:"foreignKey:UserID"`
}

const (
	RoleClient    = "client"
	RoleStructure = "structure"
	RoleAdmin     = "admin"

	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// UserRoles lists the accepted values for User.Role.
func UserRoles() []string { return []string{RoleClient, RoleStructure, RoleAdmin} }

// UserStatuses lists the accepted values for User.Status.
func UserStatuses() []string { return []string{StatusActive, StatusInactive, StatusSuspended} }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// FullName renders "Prénom Nom" for greetings and review bylines.
func (u User) FullName() string {
	switch {
	case u.Prenom != "" && u.Nom != "":
		return u.Prenom + " " + u.Nom
	case u.Prenom != "":
		return u.Prenom
	case u.Nom != "":
		return u.Nom
	default:
		return u.Email
	}
}
