package checkout

import (
	"errors"
	"time"

	"github.com/ollan-health/checkout-api/internal/pricing"
)

// ErrEmptyCart is returned when a session is created or updated without lines.
var ErrEmptyCart = errors.New("checkout: cart is empty")

// ErrEmptyArea is returned when no delivery area is provided.
var ErrEmptyArea = errors.New("checkout: delivery area is required")

// Session is the mutable checkout state for one customer. Every mutation
// revalidates the delivery/promo combination against the rules and reprices;
// the pricing engine itself stays pure and the session owns all state.
type Session struct {
	ID        string            `json:"id"`
	Lines     []pricing.Line    `json:"lines"`
	Area      string            `json:"area"`
	Selection pricing.Selection `json:"selection"`
	PromoCode string            `json:"promoCode,omitempty"`
	Order     pricing.Order     `json:"order"`
	Promo     *pricing.Promo    `json:"promo,omitempty"`
	Warning   string            `json:"warning,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewSession builds a priced session with the express default selection.
func NewSession(id string, lines []pricing.Line, area string, rules pricing.Rules, now time.Time) (Session, error) {
	if len(lines) == 0 {
		return Session{}, ErrEmptyCart
	}
	if area == "" {
		return Session{}, ErrEmptyArea
	}
	s := Session{
		ID:        id,
		Lines:     lines,
		Area:      area,
		Selection: pricing.Express(),
		UpdatedAt: now,
	}
	if err := s.reprice(rules, now); err != nil {
		return Session{}, err
	}
	return s, nil
}

// SetArea changes the delivery area. Leaving the campus set resets the
// selection to express and clears any promo before repricing; silently
// keeping either would misprice the order. A pickup point that does not
// exist in the new area is likewise reset to express.
func (s *Session) SetArea(rules pricing.Rules, area string, now time.Time) error {
	if area == "" {
		return ErrEmptyArea
	}
	if _, err := rules.DeliveryFee(pricing.Subtotal(s.Lines), s.Selection, area); errors.Is(err, pricing.ErrInvalidSelection) {
		s.Selection = pricing.Express()
	}
	if !rules.IsCampus(area) && s.PromoCode != "" {
		s.PromoCode = ""
		s.Promo = nil
	}
	s.Area = area
	return s.reprice(rules, now)
}

// SetSelection switches the delivery option. An option that is not valid for
// the current area fails with ErrInvalidSelection and leaves the session
// untouched.
func (s *Session) SetSelection(rules pricing.Rules, sel pricing.Selection, now time.Time) error {
	if _, err := rules.DeliveryFee(pricing.Subtotal(s.Lines), sel, s.Area); err != nil {
		return err
	}
	previous := s.Selection
	s.Selection = sel
	if err := s.reprice(rules, now); err != nil {
		s.Selection = previous
		return err
	}
	return nil
}

// ApplyPromo validates and attaches a promo code. All five error kinds fail
// hard here; the lenient invalid-code path only applies to repricing a code
// that was accepted earlier.
func (s *Session) ApplyPromo(rules pricing.Rules, code string, now time.Time) error {
	promo, err := rules.ApplyPromo(code, s.Lines, s.Area, s.currentFee(rules))
	if err != nil {
		return err
	}
	s.PromoCode = promo.Code
	return s.reprice(rules, now)
}

// RemovePromo clears the promo code and reprices.
func (s *Session) RemovePromo(rules pricing.Rules, now time.Time) error {
	s.PromoCode = ""
	s.Promo = nil
	return s.reprice(rules, now)
}

// SetLines replaces the cart lines and reprices.
func (s *Session) SetLines(rules pricing.Rules, lines []pricing.Line, now time.Time) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	s.Lines = lines
	return s.reprice(rules, now)
}

// currentFee computes the fee for the present selection, falling back to
// zero when the selection is invalid; reprice surfaces that error.
func (s *Session) currentFee(rules pricing.Rules) pricing.Money {
	fee, err := rules.DeliveryFee(pricing.Subtotal(s.Lines), s.Selection, s.Area)
	if err != nil {
		return 0
	}
	return fee
}

// reprice recomputes the order. A previously accepted promo that stopped
// qualifying (cart shrank, fee became zero, rules changed) is dropped with a
// warning instead of wedging the session; the selection itself must always
// be valid.
func (s *Session) reprice(rules pricing.Rules, now time.Time) error {
	var warning string
	result, err := rules.Quote(s.Lines, s.Selection, s.Area, s.PromoCode)
	if err != nil && s.PromoCode != "" && isPromoError(err) {
		warning = pricing.UserMessage(err)
		s.PromoCode = ""
		result, err = rules.Quote(s.Lines, s.Selection, s.Area, "")
	}
	if err != nil {
		return err
	}
	if result.Warning != "" {
		// Quote downgraded an unrecognised stored code; forget it.
		warning = result.Warning
		s.PromoCode = ""
	}
	s.Warning = warning
	s.Order = result.Order
	s.Promo = result.Promo
	s.UpdatedAt = now
	return nil
}

func isPromoError(err error) bool {
	return errors.Is(err, pricing.ErrUnsupportedArea) ||
		errors.Is(err, pricing.ErrNoQualifyingItems) ||
		errors.Is(err, pricing.ErrAlreadyFree) ||
		errors.Is(err, pricing.ErrInvalidCode)
}
