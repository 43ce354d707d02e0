package pricing

import "time"

// SelectionKind discriminates the delivery selection variants.
type SelectionKind string

const (
	KindExpress   SelectionKind = "express"
	KindTimeframe SelectionKind = "timeframe"
	KindPickup    SelectionKind = "pickup"
)

// Selection is the customer's delivery choice. Construct values with
// Express, Timeframe, or Pickup; "no selection yet" is a nil *Selection at
// the caller boundary, never a sentinel kind.
type Selection struct {
	Kind     SelectionKind `json:"kind"`
	Slot     Slot          `json:"slot,omitempty"`
	Location string        `json:"location,omitempty"`
}

// Express builds the flat-fee selection available in every area.
func Express() Selection {
	return Selection{Kind: KindExpress}
}

// Timeframe builds a slot-based selection, available on campus only.
func Timeframe(slot Slot) Selection {
	return Selection{Kind: KindTimeframe, Slot: slot}
}

// Pickup builds a pickup selection for one of the area's fixed locations.
func Pickup(location string) Selection {
	return Selection{Kind: KindPickup, Location: location}
}

// Slot is one of the four fixed daily delivery windows, identified by its
// start-of-window label. The label carries no date; day rollover is the
// caller's concern.
type Slot string

const (
	Slot6AM  Slot = "6 AM"
	Slot12PM Slot = "12 PM"
	Slot4PM  Slot = "4 PM"
	Slot9PM  Slot = "9 PM"
)

var slotStarts = []struct {
	Slot Slot
	Hour int
}{
	{Slot6AM, 6},
	{Slot12PM, 12},
	{Slot4PM, 16},
	{Slot9PM, 21},
}

// Slots returns the fixed daily slots in chronological order.
func Slots() []Slot {
	out := make([]Slot, 0, len(slotStarts))
	for _, s := range slotStarts {
		out = append(out, s.Slot)
	}
	return out
}

// ValidSlot reports whether the label is one of the fixed daily slots.
func ValidSlot(slot Slot) bool {
	for _, s := range slotStarts {
		if s.Slot == slot {
			return true
		}
	}
	return false
}

// NextSlot resolves the earliest slot whose start is at least the configured
// lead time after now. Exactly at the cutoff still qualifies; a minute past
// it does not. When today's slots are exhausted the first slot of the next
// day is returned (label only).
func (r Rules) NextSlot(now time.Time) Slot {
	earliest := now.Add(r.slotLeadTime())
	for _, s := range slotStarts {
		start := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, 0, 0, 0, now.Location())
		if !start.Before(earliest) {
			return s.Slot
		}
	}
	return Slot6AM
}
