package pricing

import (
	"strings"
	"time"
)

// Rules carries the tariffs and allow-lists the engine prices against. The
// zero value is unusable; build one with DefaultRules or from the rules store.
type Rules struct {
	ExpressFee             Money
	TimeframeFee           Money
	TimeframeFreeThreshold Money
	// DiscountBps is the category-discount percentage in basis points.
	DiscountBps int32
	// SlotLeadTime is the minimum notice before a timeframe slot opens.
	SlotLeadTime time.Duration

	CampusAreas           []string
	SupermarketCategories []string
	CategoryCodes         []string
	FreeDeliveryCodes     []string
	// PickupLocations maps a campus area to its fixed pickup points.
	PickupLocations map[string][]string
}

// DefaultRules returns the built-in tariff and allow-lists used when no
// remote configuration store is wired.
func DefaultRules() Rules {
	return Rules{
		ExpressFee:             1500,
		TimeframeFee:           500,
		TimeframeFreeThreshold: 5000,
		DiscountBps:            1000,
		SlotLeadTime:           30 * time.Minute,
		CampusAreas: []string{
			"University of Ibadan",
			"UCH",
		},
		SupermarketCategories: []string{
			"Baby Care",
			"Beverages",
			"Groceries",
			"Household",
			"Personal Care",
			"Snacks",
		},
		CategoryCodes:     []string{"OLLAN10"},
		FreeDeliveryCodes: []string{"DELIVERFREE", "WASIU10"},
		PickupLocations: map[string][]string{
			"University of Ibadan": {
				"Kenneth Mellanby Hall",
				"Queen Idia Hall",
				"Obafemi Awolowo Hall",
			},
			"UCH": {
				"Alexander Brown Hall",
				"UCH Main Gate",
			},
		},
	}
}

// IsCampus reports whether the area belongs to the restricted campus set
// where timeframe/pickup delivery and promo codes are permitted.
func (r Rules) IsCampus(area string) bool {
	return containsFold(r.CampusAreas, area)
}

func (r Rules) pickupAllowed(area, location string) bool {
	for key, locations := range r.PickupLocations {
		if strings.EqualFold(strings.TrimSpace(key), strings.TrimSpace(area)) {
			return containsFold(locations, location)
		}
	}
	return false
}

func (r Rules) slotLeadTime() time.Duration {
	if r.SlotLeadTime <= 0 {
		return 30 * time.Minute
	}
	return r.SlotLeadTime
}

func containsFold(values []string, candidate string) bool {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return false
	}
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), trimmed) {
			return true
		}
	}
	return false
}
