package pricing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Money represents a monetary value in whole currency units.
type Money = int64

// Line describes a cart line item used for pricing calculation.
type Line struct {
	ProductID uuid.UUID `json:"productId"`
	UnitPrice Money     `json:"unitPrice"`
	Category  string    `json:"category,omitempty"`
	Qty       int       `json:"qty"`
}

// Order aggregates the computed pricing components for a checkout. It always
// satisfies GrandTotal == Subtotal + DeliveryFee - Discount with
// GrandTotal >= 0.
type Order struct {
	Subtotal    Money `json:"subtotal"`
	DeliveryFee Money `json:"deliveryFee"`
	Discount    Money `json:"discount"`
	GrandTotal  Money `json:"grandTotal"`
}

// QuoteResult is the full checkout quote. Promo is nil when no code was
// applied; Warning carries the customer message for a code that was not
// recognised, in which case checkout proceeds without a discount.
type QuoteResult struct {
	Order   Order  `json:"order"`
	Promo   *Promo `json:"promo,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// Subtotal sums the cart lines, skipping lines with non-positive quantity.
func Subtotal(lines []Line) Money {
	var total Money
	for _, l := range lines {
		if l.Qty <= 0 || l.UnitPrice < 0 {
			continue
		}
		total += Money(l.Qty) * l.UnitPrice
	}
	return total
}

// DeliveryFee computes the fee for the selection in the given area. Express
// carries the flat fee everywhere; timeframe and pickup are campus-only and
// fail with ErrInvalidSelection elsewhere rather than silently falling back.
func (r Rules) DeliveryFee(subtotal Money, sel Selection, area string) (Money, error) {
	switch sel.Kind {
	case KindExpress:
		return r.ExpressFee, nil
	case KindTimeframe:
		if !r.IsCampus(area) {
			return 0, fmt.Errorf("timeframe delivery to %q: %w", area, ErrInvalidSelection)
		}
		if !ValidSlot(sel.Slot) {
			return 0, fmt.Errorf("unknown slot %q: %w", sel.Slot, ErrInvalidSelection)
		}
		if subtotal >= r.TimeframeFreeThreshold {
			return 0, nil
		}
		return r.TimeframeFee, nil
	case KindPickup:
		if !r.IsCampus(area) {
			return 0, fmt.Errorf("pickup in %q: %w", area, ErrInvalidSelection)
		}
		if !r.pickupAllowed(area, sel.Location) {
			return 0, fmt.Errorf("pickup location %q not in %q: %w", sel.Location, area, ErrInvalidSelection)
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown delivery option %q: %w", sel.Kind, ErrInvalidSelection)
	}
}

// Quote orchestrates subtotal, delivery fee and promo application into a
// priced order. An unrecognised code is downgraded to a warning; every other
// promo or selection error blocks the quote.
func (r Rules) Quote(lines []Line, sel Selection, area, code string) (QuoteResult, error) {
	subtotal := Subtotal(lines)
	fee, err := r.DeliveryFee(subtotal, sel, area)
	if err != nil {
		return QuoteResult{}, err
	}

	var (
		promo    *Promo
		discount Money
		warning  string
	)
	if code != "" {
		applied, err := r.ApplyPromo(code, lines, area, fee)
		switch {
		case err == nil:
			promo = &applied
			discount = applied.Discount
		case errors.Is(err, ErrInvalidCode):
			warning = UserMessage(err)
		default:
			return QuoteResult{}, err
		}
	}

	// Rules 3 and 4 already bound the discount, but clamp so the invariant
	// holds even if a future rule change breaks that.
	if discount > subtotal+fee {
		discount = subtotal + fee
		if promo != nil {
			clamped := *promo
			clamped.Discount = discount
			promo = &clamped
		}
	}

	return QuoteResult{
		Order: Order{
			Subtotal:    subtotal,
			DeliveryFee: fee,
			Discount:    discount,
			GrandTotal:  subtotal + fee - discount,
		},
		Promo:   promo,
		Warning: warning,
	}, nil
}
