package pricing

import "errors"

var (
	// ErrInvalidSelection is returned when a delivery option is not available for the area.
	ErrInvalidSelection = errors.New("delivery option not available for area")
	// ErrUnsupportedArea is returned when a promo code is applied outside the campus areas.
	ErrUnsupportedArea = errors.New("promo code not supported in area")
	// ErrNoQualifyingItems indicates a category-discount code matched no cart lines.
	ErrNoQualifyingItems = errors.New("no qualifying items for promo code")
	// ErrAlreadyFree indicates a free-delivery code was applied to a zero delivery fee.
	ErrAlreadyFree = errors.New("delivery fee already zero")
	// ErrInvalidCode is returned when the code matches neither allow-list.
	ErrInvalidCode = errors.New("unknown promo code")
)

// UserMessage maps an engine error to the short customer-facing message the
// storefront displays. The wording is part of the API contract.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSelection):
		return "Selected delivery option is not available in your area"
	case errors.Is(err, ErrUnsupportedArea):
		return "Discount codes are not available in your area"
	case errors.Is(err, ErrNoQualifyingItems):
		return "Discount code only applies to supermarket items"
	case errors.Is(err, ErrAlreadyFree):
		return "Delivery is already free for this order"
	case errors.Is(err, ErrInvalidCode):
		return "Discount code not recognised"
	default:
		return "Unable to price this order"
	}
}
