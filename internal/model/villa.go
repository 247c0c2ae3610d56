package model

import (
    "fmt"

    "github.com/shopspring/decimal"
)

// Category classifies a villa for catalog browsing.  Only the values
// declared below are accepted by the catalog import.
type Category string

const (
    CategorySejour  Category = "sejour"  // holiday stays
    CategoryFete    Category = "fete"    // villas that accept events and parties
    CategoryPiscine Category = "piscine" // pool-day rentals
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
    switch c {
    case CategorySejour, CategoryFete, CategoryPiscine:
        return true
    }
    return false
}

// Villa is a catalog entry.  Villas are created by the catalog import and
// are read-only for the reservation flow.  Active is the soft-delete flag:
// inactive villas are hidden from browsing and cannot be booked, but are
// never removed while reservations reference them.
//
// Fields:
//  ID            – stable opaque identifier.
//  Name          – display name, unique within the catalog.
//  Location      – commune or area shown to customers.
//  Category      – sejour, fete or piscine.
//  GuestCapacity – maximum number of guests (always > 0).
//  Amenities     – set of amenity labels, kept sorted and de-duplicated.
//  PricingRule   – the villa's own pricing rule.
//  Active        – false when the villa has been withdrawn.
type Villa struct {
    ID            string      `json:"id"`
    Name          string      `json:"name"`
    Location      string      `json:"location"`
    Category      Category    `json:"category"`
    GuestCapacity int         `json:"guest_capacity"`
    Amenities     []string    `json:"amenities"`
    PricingRule   PricingRule `json:"pricing_rule"`
    Active        bool        `json:"active"`
}

// Validate checks the catalog invariants of a villa record.
func (v Villa) Validate() error {
    if v.ID == "" {
        return fmt.Errorf("villa: missing id")
    }
    if v.Name == "" {
        return fmt.Errorf("villa %s: missing name", v.ID)
    }
    if v.GuestCapacity <= 0 {
        return fmt.Errorf("villa %s: guest_capacity must be positive, got %d", v.ID, v.GuestCapacity)
    }
    if !v.Category.Valid() {
        return fmt.Errorf("villa %s: unknown category %q", v.ID, v.Category)
    }
    if err := v.PricingRule.Validate(); err != nil {
        return fmt.Errorf("villa %s: %w", v.ID, err)
    }
    return nil
}

// PricingRule holds the rates of a single villa.  BasePrice is the
// default stay price; WeekPrice and HighSeasonPrice are optional
// overrides.  PartySupplements is sorted by strictly increasing
// GuestThreshold.
type PricingRule struct {
    BasePrice        decimal.Decimal    `json:"base_price"`
    WeekPrice        *decimal.Decimal   `json:"week_price,omitempty"`
    HighSeasonPrice  *decimal.Decimal   `json:"high_season_price,omitempty"`
    PartySupplements []PartySupplement  `json:"party_supplements"`
}

// PartySupplement is the extra charge for an event once the guest count
// reaches GuestThreshold.
type PartySupplement struct {
    GuestThreshold int             `json:"guest_threshold"`
    Supplement     decimal.Decimal `json:"supplement"`
}

// PriceDecimals is the number of decimal places a price may carry.
// Reservation totals are stored with exactly this scale.
const PriceDecimals = 2

// MaxPrice bounds every single price in a rule.  A stay total is one tier
// price plus at most one supplement, so it stays below twice MaxPrice,
// well inside the DECIMAL(12,2) total_price column.
var MaxPrice = decimal.NewFromInt(1_000_000_000)

// checkPrice rejects negative prices, prices above MaxPrice and prices
// with more than PriceDecimals decimal places.
func checkPrice(name string, d decimal.Decimal) error {
    switch {
    case d.IsNegative():
        return fmt.Errorf("pricing rule: negative %s %s", name, d)
    case d.GreaterThanOrEqual(MaxPrice):
        return fmt.Errorf("pricing rule: %s %s exceeds %s", name, d, MaxPrice)
    case !d.Equal(d.Round(PriceDecimals)):
        return fmt.Errorf("pricing rule: %s %s has more than %d decimals", name, d, PriceDecimals)
    }
    return nil
}

// Validate enforces prices in range with at most two decimals and
// strictly increasing thresholds.
func (r PricingRule) Validate() error {
    if err := checkPrice("base_price", r.BasePrice); err != nil {
        return err
    }
    if r.WeekPrice != nil {
        if err := checkPrice("week_price", *r.WeekPrice); err != nil {
            return err
        }
    }
    if r.HighSeasonPrice != nil {
        if err := checkPrice("high_season_price", *r.HighSeasonPrice); err != nil {
            return err
        }
    }
    prev := 0
    for i, s := range r.PartySupplements {
        if err := checkPrice(fmt.Sprintf("supplement at threshold %d", s.GuestThreshold), s.Supplement); err != nil {
            return err
        }
        if s.GuestThreshold <= 0 {
            return fmt.Errorf("pricing rule: threshold must be positive, got %d", s.GuestThreshold)
        }
        if i > 0 && s.GuestThreshold <= prev {
            return fmt.Errorf("pricing rule: thresholds not strictly increasing (%d after %d)", s.GuestThreshold, prev)
        }
        prev = s.GuestThreshold
    }
    return nil
}
