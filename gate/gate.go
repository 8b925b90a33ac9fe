// Package gate provides a small Gate/Policy authorization registry.
// The Gate maps resource type names to policies; each Policy decides what a
// subject may do with a resource of that type. The package knows nothing
// about the domain models, which keeps it reusable and keeps the policy
// rules in one place instead of scattered through handlers.
package gate

import "context"

// Gate is the central authorization checkpoint.
// U is the user/subject type (must be comparable for the zero-value check).
type Gate[U comparable] struct {
	policies map[string]Policy[U]
}

// NewGate creates an empty Gate ready to register policies.
// Example: gate.NewGate[uint]() for userID-based authorization.
func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register adds a policy for a given resource type (e.g., "structure").
// Overwrites any existing policy for that type.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize checks authorization and returns an error if denied.
// Returns ErrUnauthorized for zero-value user or denied action;
// returns ErrNoPolicyDefined if resourceType has no registered policy.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
