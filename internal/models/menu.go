package models

import "time"

// Menu: une carte nommée d'un établissement, composée de plats.
type Menu struct {
	ID          uint   `gorm:"primaryKey"`
	Nom         string `gorm:"size:100;not null"`
	Status      string `gorm:"size:20;not null;default:'brouillon'"` // actif, inactif, brouillon
	CreateurID  uint   `gorm:"not null;index"`
	Createur    User   `gorm:"foreignKey:CreateurID"`
	StructureID uint   `gorm:"not null;index"` // première structure du créateur au moment de la création
	Structure   Structure `gorm:"foreignKey:StructureID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Plats []Plat `gorm:"many2many:menu_plats;"`
	Avis  []Avis `gorm:"foreignKey:MenuID"`
}

const (
	MenuActif     = "actif"
	MenuInactif   = "inactif"
	MenuBrouillon = "brouillon"
)

// MenuStatuses lists the accepted values for Menu.Status.
func MenuStatuses() []string { return []string{MenuActif, MenuInactif, MenuBrouillon} }

// GetUserID implements policy.Ownable (creator owns the menu).
func (m Menu) GetUserID() uint { return m.CreateurID }
