package policy

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/emenu/gate"
	"github.com/diewo77/emenu/internal/models"
)

// Resource type names registered on the gate.
const (
	ResourceStructure = "structure"
	ResourcePlat      = "plat"
	ResourceMenu      = "menu"
	ResourceAvis      = "avis"
)

// NewAppGate builds the application gate: ownership on every resource type,
// with an admin-role bypass backed by the user store.
func NewAppGate(db *gorm.DB) *gate.Gate[uint] {
	isAdmin := func(_ context.Context, userID uint) bool {
		var count int64
		db.Model(&models.User{}).
			Where("id = ? AND role = ?", userID, models.RoleAdmin).
			Limit(1).Count(&count)
		return count > 0
	}
	owned := NewAdminBypassPolicy(NewOwnershipPolicy(), isAdmin)

	g := gate.NewGate[uint]()
	for _, res := range []string{ResourceStructure, ResourcePlat, ResourceMenu, ResourceAvis} {
		g.Register(res, owned)
	}
	return g
}
