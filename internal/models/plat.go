package models

import "time"

// Plat: un plat créé par un utilisateur, rattaché à N menus.
type Plat struct {
	ID            uint    `gorm:"primaryKey"`
	Nom           string  `gorm:"size:100;not null"`
	Description   string  `gorm:"not null"`
	Prix          float64 `gorm:"type:decimal(6,2);not null"` // >= 0, deux décimales
	Categorie     string  `gorm:"size:20;not null"`           // entree, plat, dessert, boisson
	Disponibilite bool    `gorm:"not null;default:true"`
	Photo         string  // chemin sous MEDIA_DIR (plats/...)
	CreateurID    uint    `gorm:"not null;index"`
	Createur      User    `gorm:"foreignKey:CreateurID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Menus []Menu `gorm:"many2many:menu_plats;"`
	Avis  []Avis `gorm:"foreignKey:PlatID"`
}

const (
	CategorieEntree  = "entree"
	CategoriePlat    = "plat"
	CategorieDessert = "dessert"
	CategorieBoisson = "boisson"
)

// PlatCategories lists the accepted values for Plat.Categorie.
func PlatCategories() []string {
	return []string{CategorieEntree, CategoriePlat, CategorieDessert, CategorieBoisson}
}

// GetUserID implements policy.Ownable (creator owns the dish).
func (p Plat) GetUserID() uint { return p.CreateurID }
