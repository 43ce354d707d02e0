package pricing

import "strings"

// PromoKind identifies which promo rule fired, for customer messaging.
type PromoKind string

const (
	PromoCategoryDiscount PromoKind = "category_discount"
	PromoFreeDelivery     PromoKind = "free_delivery"
)

// Promo is the result of applying a promo code.
type Promo struct {
	Code     string    `json:"code"`
	Kind     PromoKind `json:"kind"`
	Discount Money     `json:"discount"`
}

// ApplyPromo resolves code against the allow-lists and computes the discount
// it grants. Promo codes only take effect in campus areas; a free-delivery
// code against a zero fee and a category code against a cart with no
// supermarket lines are errors, never silent no-ops.
func (r Rules) ApplyPromo(code string, lines []Line, area string, currentFee Money) (Promo, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return Promo{}, ErrInvalidCode
	}
	if !r.IsCampus(area) {
		return Promo{}, ErrUnsupportedArea
	}
	switch {
	case containsFold(r.CategoryCodes, normalized):
		qualifying := r.qualifyingSubtotal(lines)
		if qualifying == 0 {
			return Promo{}, ErrNoQualifyingItems
		}
		discount := (qualifying * Money(r.DiscountBps)) / 10000
		return Promo{Code: normalized, Kind: PromoCategoryDiscount, Discount: discount}, nil
	case containsFold(r.FreeDeliveryCodes, normalized):
		if currentFee == 0 {
			return Promo{}, ErrAlreadyFree
		}
		return Promo{Code: normalized, Kind: PromoFreeDelivery, Discount: currentFee}, nil
	default:
		return Promo{}, ErrInvalidCode
	}
}

// qualifyingSubtotal sums the lines whose category is in the supermarket set.
func (r Rules) qualifyingSubtotal(lines []Line) Money {
	var total Money
	for _, l := range lines {
		if l.Qty <= 0 || l.UnitPrice < 0 {
			continue
		}
		if containsFold(r.SupermarketCategories, l.Category) {
			total += Money(l.Qty) * l.UnitPrice
		}
	}
	return total
}
