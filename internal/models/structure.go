package models

import "time"

// Structure: un établissement (restaurant, café, bar, hôtel) tenu par un utilisateur.
type Structure struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"not null;index"` // propriétaire, immuable après création
	User           User   `gorm:"foreignKey:UserID"`
	Nom            string `gorm:"size:100;not null"`
	Telephone      string `gorm:"size:20;not null"`
	Adresse        string `gorm:"size:255;not null"`
	Ville          string `gorm:"size:100;not null;index"`
	HeureOuverture string `gorm:"size:100"` // ex: "08:00 - 22:00"
	Description    string
	Type           string `gorm:"size:20;not null;index"` // restaurant, cafe, bar, hotel, autre
	Photo          string // chemin sous MEDIA_DIR (structures/...)
	Featured       bool   `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Menus []Menu `gorm:"foreignKey:StructureID"`
}

const (
	TypeRestaurant = "restaurant"
	TypeCafe       = "cafe"
	TypeBar        = "bar"
	TypeHotel      = "hotel"
	TypeAutre      = "autre"
)

// StructureTypes lists the accepted values for Structure.Type.
func StructureTypes() []string {
	return []string{TypeRestaurant, TypeCafe, TypeBar, TypeHotel, TypeAutre}
}

// GetUserID implements policy.Ownable.
func (s Structure) GetUserID() uint { return s.UserID }
