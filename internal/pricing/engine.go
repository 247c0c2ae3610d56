// Package pricing computes stay quotes from a villa's pricing rule.  The
// engine is a pure function of its inputs: it holds no state and never
// touches storage, so quotes can be recomputed and compared freely.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Kenneson972/allinclusive/internal/model"
)

// WeekNights is the stay length from which the week tier applies.
const WeekNights = 7

// Tier names reported in a quote breakdown.
const (
	TierBase       = "base"
	TierWeek       = "week"
	TierHighSeason = "high_season"
)

// Stay describes a requested stay.  CheckIn and CheckOut are compared as
// calendar dates; any time-of-day component is ignored.
type Stay struct {
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	IsEvent    bool
	HighSeason bool
}

// Quote is the authoritative price of a stay together with the parts it
// was built from.
type Quote struct {
	VillaID             string          `json:"villa_id"`
	Nights              int             `json:"nights"`
	Tier                string          `json:"tier"`
	TierPrice           decimal.Decimal `json:"tier_price"`
	SupplementThreshold int             `json:"supplement_threshold,omitempty"`
	Supplement          decimal.Decimal `json:"supplement"`
	Total               decimal.Decimal `json:"total_price"`
}

// Engine computes quotes.  The zero value is ready to use.
type Engine struct{}

// NewEngine returns a pricing engine.
func NewEngine() *Engine { return &Engine{} }

// Quote prices a stay at the given villa.
//
// Returns:
//   - error: pricing.ErrInvalidDateRange if the stay has no nights.
//   - error: pricing.ErrInvalidGuests if fewer than one guest is requested.
//   - error: a CapacityError (matching pricing.ErrCapacityExceeded) if the
//     villa cannot host the guests.
func (e *Engine) Quote(villa model.Villa, stay Stay) (Quote, error) {
	const op = "pricing.Engine.Quote"

	nights := Nights(stay.CheckIn, stay.CheckOut)
	if nights <= 0 {
		return Quote{}, fmt.Errorf("%s: %w", op, ErrInvalidDateRange)
	}
	if stay.Guests < 1 {
		return Quote{}, fmt.Errorf("%s: %w", op, ErrInvalidGuests)
	}
	if stay.Guests > villa.GuestCapacity {
		return Quote{}, fmt.Errorf("%s: %w", op, CapacityError{Guests: stay.Guests, Capacity: villa.GuestCapacity})
	}

	rule := villa.PricingRule
	q := Quote{
		VillaID:    villa.ID,
		Nights:     nights,
		Supplement: decimal.Zero,
	}
	q.Tier, q.TierPrice = selectTier(rule, nights, stay.HighSeason)

	if stay.IsEvent {
		if s, ok := SupplementFor(rule.PartySupplements, stay.Guests); ok {
			q.SupplementThreshold = s.GuestThreshold
			q.Supplement = s.Supplement
		}
	}
	q.Total = q.TierPrice.Add(q.Supplement)
	return q, nil
}

func selectTier(rule model.PricingRule, nights int, highSeason bool) (string, decimal.Decimal) {
	if highSeason && rule.HighSeasonPrice != nil {
		return TierHighSeason, *rule.HighSeasonPrice
	}
	if nights >= WeekNights && rule.WeekPrice != nil {
		return TierWeek, *rule.WeekPrice
	}
	return TierBase, rule.BasePrice
}

// SupplementFor returns the supplement with the largest threshold not
// exceeding guests.  supplements must be sorted by increasing threshold.
func SupplementFor(supplements []model.PartySupplement, guests int) (model.PartySupplement, bool) {
	var (
		best  model.PartySupplement
		found bool
	)
	for _, s := range supplements {
		if s.GuestThreshold > guests {
			break
		}
		best, found = s, true
	}
	return best, found
}

// Nights counts calendar days between checkin and checkout.  The result
// is negative when checkout precedes checkin.
func Nights(checkin, checkout time.Time) int {
	in := civilDate(checkin)
	out := civilDate(checkout)
	return int(out.Sub(in).Hours() / 24)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
