package policy

import (
	"context"

	"github.com/diewo77/emenu/gate"
)

// Ownable is implemented by models that have a single owning user
// (the structure owner, the dish/menu creator, the review author).
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows an action only when the subject owns the resource.
// List/create checks (nil resource) pass; the handlers scope those queries
// to the current user anyway.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy { return &OwnershipPolicy{} }

func (p *OwnershipPolicy) Can(_ context.Context, userID uint, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		// Deny resources without an ownership relation rather than leaking them.
		return false
	}
	return ownable.GetUserID() == userID
}

// AdminBypassPolicy wraps another policy and always allows access for admins.
type AdminBypassPolicy struct {
	inner       gate.Policy[uint]
	isAdminFunc func(ctx context.Context, userID uint) bool
}

func NewAdminBypassPolicy(inner gate.Policy[uint], isAdminFunc func(ctx context.Context, userID uint) bool) *AdminBypassPolicy {
	return &AdminBypassPolicy{inner: inner, isAdminFunc: isAdminFunc}
}

func (p *AdminBypassPolicy) Can(ctx context.Context, userID uint, action gate.Action, resource any) bool {
	if p.isAdminFunc(ctx, userID) {
		return true
	}
	return p.inner.Can(ctx, userID, action, resource)
}
