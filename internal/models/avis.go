package models

import "time"

// Avis: une note (1..5) et un commentaire, attachés à exactement un plat OU un menu.
type Avis struct {
	ID              uint   `gorm:"primaryKey"`
	Note            int    `gorm:"not null"` // 1..5
	Commentaire     string `gorm:"not null"`
	DatePublication time.Time `gorm:"not null"`
	AuteurID        uint      `gorm:"not null;index"`
	Auteur          User      `gorm:"foreignKey:AuteurID"`
	PlatID          *uint     `gorm:"index"`
	Plat            *Plat     `gorm:"foreignKey:PlatID"`
	MenuID          *uint     `gorm:"index"`
	Menu            *Menu     `gorm:"foreignKey:MenuID"`
}

const (
	NoteMin = 1
	NoteMax = 5
)

// GetUserID implements policy.Ownable (the author owns the review).
func (a Avis) GetUserID() uint { return a.AuteurID }
