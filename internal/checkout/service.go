package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ollan-health/checkout-api/internal/pricing"
)

// RulesLoader supplies the current pricing rules. Implemented by the rules
// store; tests substitute a fixed-rules stub.
type RulesLoader interface {
	Load(ctx context.Context) (pricing.Rules, error)
}

// StaticRules adapts a fixed rule set to the RulesLoader interface.
type StaticRules struct {
	Rules pricing.Rules
}

// Load returns the wrapped rules.
func (s StaticRules) Load(context.Context) (pricing.Rules, error) {
	return s.Rules, nil
}

// Service sequences session mutations: load, apply the transition against
// the current rules, persist. The engine stays pure underneath.
type Service struct {
	Rules RulesLoader
	Store *Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create builds and persists a new session.
func (s *Service) Create(ctx context.Context, lines []pricing.Line, area string) (Session, error) {
	rules, err := s.Rules.Load(ctx)
	if err != nil {
		return Session{}, err
	}
	session, err := NewSession(uuid.NewString(), lines, area, rules, s.now())
	if err != nil {
		return Session{}, err
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Get returns the stored session.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.Store.Get(ctx, id)
}

// Mutate loads the session, applies fn, and persists the result when fn
// succeeds. fn receives the freshly loaded rules.
func (s *Service) Mutate(ctx context.Context, id string, fn func(*Session, pricing.Rules) error) (Session, error) {
	session, err := s.Store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	rules, err := s.Rules.Load(ctx)
	if err != nil {
		return Session{}, err
	}
	if err := fn(&session, rules); err != nil {
		return Session{}, err
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// SetArea changes the delivery area, resetting incompatible state.
func (s *Service) SetArea(ctx context.Context, id, area string) (Session, error) {
	return s.Mutate(ctx, id, func(session *Session, rules pricing.Rules) error {
		return session.SetArea(rules, area, s.now())
	})
}

// SetSelection switches the delivery option.
func (s *Service) SetSelection(ctx context.Context, id string, sel pricing.Selection) (Session, error) {
	return s.Mutate(ctx, id, func(session *Session, rules pricing.Rules) error {
		return session.SetSelection(rules, sel, s.now())
	})
}

// ApplyPromo attaches a promo code.
func (s *Service) ApplyPromo(ctx context.Context, id, code string) (Session, error) {
	return s.Mutate(ctx, id, func(session *Session, rules pricing.Rules) error {
		return session.ApplyPromo(rules, code, s.now())
	})
}

// RemovePromo clears the promo code.
func (s *Service) RemovePromo(ctx context.Context, id string) (Session, error) {
	return s.Mutate(ctx, id, func(session *Session, rules pricing.Rules) error {
		return session.RemovePromo(rules, s.now())
	})
}

// SetLines replaces the cart lines.
func (s *Service) SetLines(ctx context.Context, id string, lines []pricing.Line) (Session, error) {
	return s.Mutate(ctx, id, func(session *Session, rules pricing.Rules) error {
		return session.SetLines(rules, lines, s.now())
	})
}
