package services

import (
	"gorm.io/gorm"

	"github.com/diewo77/emenu/internal/models"
)

// AccountService handles the cascading removals the schema does not enforce
// on its own (sqlite runs with foreign keys off, and the many2many join rows
// need explicit cleanup either way). All deletions run in one transaction.
type AccountService struct{ DB *gorm.DB }

func NewAccountService(db *gorm.DB) *AccountService { return &AccountService{DB: db} }

// DeleteUser removes the account and everything hanging off it:
// authored reviews, created menus and dishes, owned structures (with their
// menus and attached reviews), and the login history.
func (s *AccountService) DeleteUser(userID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var structureIDs []uint
		if err := tx.Model(&models.Structure{}).Where("user_id = ?", userID).Pluck("id", &structureIDs).Error; err != nil {
			return err
		}
		for _, sid := range structureIDs {
			if err := deleteStructureTx(tx, sid); err != nil {
				return err
			}
		}
		// Menus the user created under someone else's structure do not exist
		// (menu creation binds to an owned structure), but clean up defensively
		// created rows by creator as well.
		var menuIDs []uint
		if err := tx.Model(&models.Menu{}).Where("createur_id = ?", userID).Pluck("id", &menuIDs).Error; err != nil {
			return err
		}
		if err := deleteMenusTx(tx, menuIDs); err != nil {
			return err
		}
		var platIDs []uint
		if err := tx.Model(&models.Plat{}).Where("createur_id = ?", userID).Pluck("id", &platIDs).Error; err != nil {
			return err
		}
		if err := deletePlatsTx(tx, platIDs); err != nil {
			return err
		}
		if err := tx.Where("auteur_id = ?", userID).Delete(&models.Avis{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.LoginHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}

// DeleteStructure removes one structure and its menus (join rows and
// attached reviews included).
func (s *AccountService) DeleteStructure(structureID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return deleteStructureTx(tx, structureID)
	})
}

// DeleteMenu removes a menu, its join rows and its reviews.
func (s *AccountService) DeleteMenu(menuID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return deleteMenusTx(tx, []uint{menuID})
	})
}

// DeletePlat removes a dish, detaches it from menus, and drops its reviews.
func (s *AccountService) DeletePlat(platID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return deletePlatsTx(tx, []uint{platID})
	})
}

func deleteStructureTx(tx *gorm.DB, structureID uint) error {
	var menuIDs []uint
	if err := tx.Model(&models.Menu{}).Where("structure_id = ?", structureID).Pluck("id", &menuIDs).Error; err != nil {
		return err
	}
	if err := deleteMenusTx(tx, menuIDs); err != nil {
		return err
	}
	return tx.Delete(&models.Structure{}, structureID).Error
}

func deleteMenusTx(tx *gorm.DB, menuIDs []uint) error {
	if len(menuIDs) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM menu_plats WHERE menu_id IN ?", menuIDs).Error; err != nil {
		return err
	}
	if err := tx.Where("menu_id IN ?", menuIDs).Delete(&models.Avis{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Menu{}, menuIDs).Error
}

func deletePlatsTx(tx *gorm.DB, platIDs []uint) error {
	if len(platIDs) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM menu_plats WHERE plat_id IN ?", platIDs).Error; err != nil {
		return err
	}
	if err := tx.Where("plat_id IN ?", platIDs).Delete(&models.Avis{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Plat{}, platIDs).Error
}
