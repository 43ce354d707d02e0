package pricing

import (
	"errors"
	"testing"
	"time"
)

func sampleLines() []Line {
	return []Line{
		{Category: "Baby Care", UnitPrice: 2000, Qty: 2},
		{Category: "Pain reliever", UnitPrice: 500, Qty: 1},
	}
}

func TestExpressFeeIgnoresSubtotalAndArea(t *testing.T) {
	rules := DefaultRules()
	for _, subtotal := range []Money{0, 100, 4999, 5000, 250_000} {
		for _, area := range []string{"University of Ibadan", "UCH", "Bodija", "Lekki"} {
			fee, err := rules.DeliveryFee(subtotal, Express(), area)
			if err != nil {
				t.Fatalf("express fee for %q subtotal %d: %v", area, subtotal, err)
			}
			if fee != 1500 {
				t.Fatalf("expected express fee 1500, got %d", fee)
			}
		}
	}
}

func TestTimeframeFeeThreshold(t *testing.T) {
	rules := DefaultRules()
	cases := []struct {
		subtotal Money
		want     Money
	}{
		{0, 500},
		{4999, 500},
		{5000, 0},
		{12_000, 0},
	}
	for _, tc := range cases {
		fee, err := rules.DeliveryFee(tc.subtotal, Timeframe(Slot12PM), "University of Ibadan")
		if err != nil {
			t.Fatalf("timeframe fee for subtotal %d: %v", tc.subtotal, err)
		}
		if fee != tc.want {
			t.Fatalf("subtotal %d: expected fee %d, got %d", tc.subtotal, tc.want, fee)
		}
	}
}

func TestTimeframeRejectedOffCampus(t *testing.T) {
	rules := DefaultRules()
	_, err := rules.DeliveryFee(10_000, Timeframe(Slot12PM), "Bodija")
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestPickupAlwaysFreeOnCampus(t *testing.T) {
	rules := DefaultRules()
	for _, subtotal := range []Money{0, 500, 100_000} {
		fee, err := rules.DeliveryFee(subtotal, Pickup("Alexander Brown Hall"), "UCH")
		if err != nil {
			t.Fatalf("pickup fee for subtotal %d: %v", subtotal, err)
		}
		if fee != 0 {
			t.Fatalf("expected pickup fee 0, got %d", fee)
		}
	}
}

func TestPickupRejectedOffCampus(t *testing.T) {
	rules := DefaultRules()
	_, err := rules.DeliveryFee(2000, Pickup("Alexander Brown Hall"), "Bodija")
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestPickupLocationMustMatchArea(t *testing.T) {
	rules := DefaultRules()
	_, err := rules.DeliveryFee(2000, Pickup("Alexander Brown Hall"), "University of Ibadan")
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection for foreign pickup point, got %v", err)
	}
}

func TestCategoryDiscountScenario(t *testing.T) {
	rules := DefaultRules()
	promo, err := rules.ApplyPromo("OLLAN10", sampleLines(), "University of Ibadan", 1500)
	if err != nil {
		t.Fatalf("apply OLLAN10: %v", err)
	}
	if promo.Kind != PromoCategoryDiscount {
		t.Fatalf("expected category discount, got %s", promo.Kind)
	}
	if promo.Discount != 400 {
		t.Fatalf("expected discount 400 (10%% of 4000), got %d", promo.Discount)
	}
}

func TestCategoryDiscountCaseInsensitive(t *testing.T) {
	rules := DefaultRules()
	promo, err := rules.ApplyPromo("  ollan10 ", sampleLines(), "University of Ibadan", 1500)
	if err != nil {
		t.Fatalf("apply lowercase code: %v", err)
	}
	if promo.Discount != 400 {
		t.Fatalf("expected discount 400, got %d", promo.Discount)
	}
}

func TestCategoryDiscountNoQualifyingItems(t *testing.T) {
	rules := DefaultRules()
	lines := []Line{{Category: "Pain reliever", UnitPrice: 500, Qty: 3}}
	_, err := rules.ApplyPromo("OLLAN10", lines, "UCH", 1500)
	if !errors.Is(err, ErrNoQualifyingItems) {
		t.Fatalf("expected ErrNoQualifyingItems, got %v", err)
	}
}

func TestFreeDeliveryScenario(t *testing.T) {
	rules := DefaultRules()
	promo, err := rules.ApplyPromo("DELIVERFREE", sampleLines(), "University of Ibadan", 500)
	if err != nil {
		t.Fatalf("apply DELIVERFREE: %v", err)
	}
	if promo.Kind != PromoFreeDelivery {
		t.Fatalf("expected free delivery, got %s", promo.Kind)
	}
	if promo.Discount != 500 {
		t.Fatalf("expected discount equal to fee 500, got %d", promo.Discount)
	}
}

func TestFreeDeliveryAlreadyFree(t *testing.T) {
	rules := DefaultRules()
	_, err := rules.ApplyPromo("WASIU10", sampleLines(), "UCH", 0)
	if !errors.Is(err, ErrAlreadyFree) {
		t.Fatalf("expected ErrAlreadyFree, got %v", err)
	}
}

func TestPromoRejectedOffCampus(t *testing.T) {
	rules := DefaultRules()
	for _, code := range []string{"OLLAN10", "DELIVERFREE", "RANDOM5"} {
		_, err := rules.ApplyPromo(code, sampleLines(), "Bodija", 1500)
		if !errors.Is(err, ErrUnsupportedArea) {
			t.Fatalf("code %s: expected ErrUnsupportedArea, got %v", code, err)
		}
	}
}

func TestInvalidCode(t *testing.T) {
	rules := DefaultRules()
	_, err := rules.ApplyPromo("RANDOM5", sampleLines(), "University of Ibadan", 1500)
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}

func TestQuoteInvalidCodeIsWarningOnly(t *testing.T) {
	rules := DefaultRules()
	result, err := rules.Quote(sampleLines(), Express(), "University of Ibadan", "RANDOM5")
	if err != nil {
		t.Fatalf("quote with unknown code: %v", err)
	}
	if result.Warning == "" {
		t.Fatal("expected warning for unknown code")
	}
	if result.Promo != nil {
		t.Fatalf("expected no promo, got %+v", result.Promo)
	}
	if result.Order.Discount != 0 {
		t.Fatalf("expected zero discount, got %d", result.Order.Discount)
	}
	if result.Order.GrandTotal != 4500+1500 {
		t.Fatalf("unexpected grand total %d", result.Order.GrandTotal)
	}
}

func TestQuotePropagatesHardPromoErrors(t *testing.T) {
	rules := DefaultRules()
	_, err := rules.Quote(sampleLines(), Pickup("UCH Main Gate"), "UCH", "WASIU10")
	if !errors.Is(err, ErrAlreadyFree) {
		t.Fatalf("expected ErrAlreadyFree, got %v", err)
	}
}

func TestQuoteFreeDeliveryEndToEnd(t *testing.T) {
	rules := DefaultRules()
	result, err := rules.Quote(sampleLines(), Timeframe(Slot4PM), "University of Ibadan", "DELIVERFREE")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	// Subtotal 4500 is under the 5000 threshold so the fee is 500; the code
	// refunds exactly that.
	if result.Order.DeliveryFee != 500 {
		t.Fatalf("expected fee 500, got %d", result.Order.DeliveryFee)
	}
	if result.Order.Discount != 500 {
		t.Fatalf("expected discount 500, got %d", result.Order.Discount)
	}
	if result.Order.GrandTotal != 4500 {
		t.Fatalf("expected grand total 4500, got %d", result.Order.GrandTotal)
	}
}

func TestQuoteIdempotent(t *testing.T) {
	rules := DefaultRules()
	first, err := rules.Quote(sampleLines(), Timeframe(Slot12PM), "UCH", "OLLAN10")
	if err != nil {
		t.Fatalf("first quote: %v", err)
	}
	second, err := rules.Quote(sampleLines(), Timeframe(Slot12PM), "UCH", "OLLAN10")
	if err != nil {
		t.Fatalf("second quote: %v", err)
	}
	if first.Order != second.Order {
		t.Fatalf("quotes differ: %+v vs %+v", first.Order, second.Order)
	}
}

func TestQuoteInvariants(t *testing.T) {
	rules := DefaultRules()
	selections := []Selection{
		Express(),
		Timeframe(Slot6AM),
		Pickup("Queen Idia Hall"),
	}
	codes := []string{"", "OLLAN10", "RANDOM5"}
	for _, sel := range selections {
		for _, code := range codes {
			result, err := rules.Quote(sampleLines(), sel, "University of Ibadan", code)
			if err != nil {
				t.Fatalf("quote sel=%s code=%q: %v", sel.Kind, code, err)
			}
			o := result.Order
			if o.GrandTotal != o.Subtotal+o.DeliveryFee-o.Discount {
				t.Fatalf("grand total identity broken: %+v", o)
			}
			if o.GrandTotal < 0 {
				t.Fatalf("negative grand total: %+v", o)
			}
			if o.Discount > o.Subtotal+o.DeliveryFee {
				t.Fatalf("discount exceeds discountable amount: %+v", o)
			}
		}
	}
}

func TestQuoteClampsRunawayDiscount(t *testing.T) {
	rules := DefaultRules()
	rules.DiscountBps = 30_000 // 300%, simulating a future misconfigured rule
	result, err := rules.Quote(sampleLines(), Pickup("Queen Idia Hall"), "University of Ibadan", "OLLAN10")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if result.Order.GrandTotal != 0 {
		t.Fatalf("expected clamped grand total 0, got %d", result.Order.GrandTotal)
	}
	if result.Order.Discount != result.Order.Subtotal+result.Order.DeliveryFee {
		t.Fatalf("expected discount clamped to %d, got %d", result.Order.Subtotal+result.Order.DeliveryFee, result.Order.Discount)
	}
}

func TestSubtotalSkipsNonPositiveQty(t *testing.T) {
	lines := []Line{
		{UnitPrice: 1000, Qty: 2},
		{UnitPrice: 700, Qty: 0},
		{UnitPrice: 300, Qty: -1},
	}
	if got := Subtotal(lines); got != 2000 {
		t.Fatalf("expected subtotal 2000, got %d", got)
	}
}

func TestUserMessages(t *testing.T) {
	cases := map[error]string{
		ErrInvalidSelection:  "Selected delivery option is not available in your area",
		ErrUnsupportedArea:   "Discount codes are not available in your area",
		ErrNoQualifyingItems: "Discount code only applies to supermarket items",
		ErrAlreadyFree:       "Delivery is already free for this order",
		ErrInvalidCode:       "Discount code not recognised",
	}
	for err, want := range cases {
		if got := UserMessage(err); got != want {
			t.Fatalf("message for %v: expected %q, got %q", err, want, got)
		}
	}
	if got := UserMessage(errors.New("boom")); got != "Unable to price this order" {
		t.Fatalf("unexpected fallback message %q", got)
	}
}

func TestDeliveryFeeRejectsUnknownSlot(t *testing.T) {
	rules := DefaultRules()
	_, err := rules.DeliveryFee(1000, Timeframe(Slot("2 AM")), "UCH")
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection for bogus slot, got %v", err)
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func TestNextSlotBoundaries(t *testing.T) {
	rules := DefaultRules()
	cases := []struct {
		now  time.Time
		want Slot
	}{
		{at(5, 0), Slot6AM},
		{at(5, 30), Slot6AM},   // exactly 30 minutes out still qualifies
		{at(5, 31), Slot12PM},  // 29 minutes out misses the cutoff
		{at(11, 29), Slot12PM}, // 31 minutes out
		{at(11, 30), Slot12PM},
		{at(11, 31), Slot4PM},
		{at(15, 30), Slot4PM},
		{at(15, 31), Slot9PM},
		{at(20, 30), Slot9PM},
		{at(20, 31), Slot6AM}, // today exhausted, wrap to tomorrow's first slot
		{at(23, 59), Slot6AM},
	}
	for _, tc := range cases {
		if got := rules.NextSlot(tc.now); got != tc.want {
			t.Fatalf("next slot at %s: expected %s, got %s", tc.now.Format("15:04"), tc.want, got)
		}
	}
}
