package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/emenu/gate"
)

// mockPolicy is a simple policy for testing with uint user type.
type mockPolicy struct {
	allowAll bool
}

func (p *mockPolicy) Can(_ context.Context, _ uint, _ gate.Action, _ any) bool {
	return p.allowAll
}

func TestGateAuthorizeNoUser(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("structure", &mockPolicy{allowAll: true})

	if err := g.Authorize(context.Background(), 0, gate.ActionView, "structure", nil); err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGateAuthorizeNoPolicy(t *testing.T) {
	g := gate.NewGate[uint]()

	if err := g.Authorize(context.Background(), 1, gate.ActionView, "unknown", nil); err != gate.ErrNoPolicyDefined {
		t.Errorf("expected ErrNoPolicyDefined, got %v", err)
	}
}

func TestGateAuthorizeAllowedAndDenied(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("structure", &mockPolicy{allowAll: true})
	g.Register("avis", &mockPolicy{allowAll: false})

	if err := g.Authorize(context.Background(), 1, gate.ActionView, "structure", nil); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := g.Authorize(context.Background(), 1, gate.ActionDelete, "avis", nil); err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGateCan(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("menu", &mockPolicy{allowAll: true})

	if !g.Can(context.Background(), 1, gate.ActionCreate, "menu", nil) {
		t.Error("expected Can to return true")
	}
	g.Register("denied", &mockPolicy{allowAll: false})
	if g.Can(context.Background(), 1, gate.ActionCreate, "denied", nil) {
		t.Error("expected Can to return false")
	}
}
