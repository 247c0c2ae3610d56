package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Kenneson972/allinclusive/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixtureVilla() model.Villa {
	return model.Villa{
		ID:            "1",
		Name:          "Villa F3 Petit Macabou",
		Location:      "Le Vauclin",
		Category:      model.CategorySejour,
		GuestCapacity: 100,
		Active:        true,
		PricingRule: model.PricingRule{
			BasePrice: dec("850"),
			WeekPrice: decPtr("1550"),
			PartySupplements: []model.PartySupplement{
				{GuestThreshold: 30, Supplement: dec("330")},
				{GuestThreshold: 50, Supplement: dec("550")},
				{GuestThreshold: 80, Supplement: dec("770")},
			},
		},
	}
}

func TestQuoteTierBoundary(t *testing.T) {
	e := NewEngine()
	v := fixtureVilla()

	cases := []struct {
		nights int
		tier   string
		want   string
	}{
		{2, TierBase, "850"},
		{6, TierBase, "850"},
		{7, TierWeek, "1550"},
		{14, TierWeek, "1550"},
	}
	for _, tc := range cases {
		in := date(2025, 8, 1)
		q, err := e.Quote(v, Stay{CheckIn: in, CheckOut: in.AddDate(0, 0, tc.nights), Guests: 4})
		require.NoError(t, err)
		assert.Equal(t, tc.nights, q.Nights)
		assert.Equal(t, tc.tier, q.Tier)
		assert.True(t, dec(tc.want).Equal(q.Total), "nights=%d total=%s", tc.nights, q.Total)
	}
}

func TestQuoteWeekFallsBackToBase(t *testing.T) {
	v := fixtureVilla()
	v.PricingRule.WeekPrice = nil

	q, err := NewEngine().Quote(v, Stay{CheckIn: date(2025, 8, 1), CheckOut: date(2025, 8, 8), Guests: 2})
	require.NoError(t, err)
	assert.Equal(t, TierBase, q.Tier)
	assert.True(t, dec("850").Equal(q.Total))
}

func TestQuoteHighSeasonFlag(t *testing.T) {
	v := fixtureVilla()
	v.PricingRule.HighSeasonPrice = decPtr("1900")
	stay := Stay{CheckIn: date(2025, 12, 20), CheckOut: date(2025, 12, 22), Guests: 2, HighSeason: true}

	q, err := NewEngine().Quote(v, stay)
	require.NoError(t, err)
	assert.Equal(t, TierHighSeason, q.Tier)
	assert.True(t, dec("1900").Equal(q.Total))

	// without a high-season price the flag has no effect
	v.PricingRule.HighSeasonPrice = nil
	q, err = NewEngine().Quote(v, stay)
	require.NoError(t, err)
	assert.Equal(t, TierBase, q.Tier)
}

func TestQuotePartySupplement(t *testing.T) {
	e := NewEngine()
	v := fixtureVilla()
	in, out := date(2025, 8, 15), date(2025, 8, 16)

	q, err := e.Quote(v, Stay{CheckIn: in, CheckOut: out, Guests: 45, IsEvent: true})
	require.NoError(t, err)
	assert.Equal(t, 30, q.SupplementThreshold)
	assert.True(t, dec("330").Equal(q.Supplement))
	assert.True(t, dec("1180").Equal(q.Total))

	q, err = e.Quote(v, Stay{CheckIn: in, CheckOut: out, Guests: 20, IsEvent: true})
	require.NoError(t, err)
	assert.True(t, q.Supplement.IsZero())
	assert.True(t, dec("850").Equal(q.Total))

	q, err = e.Quote(v, Stay{CheckIn: in, CheckOut: out, Guests: 80, IsEvent: true})
	require.NoError(t, err)
	assert.True(t, dec("770").Equal(q.Supplement))

	// no supplement unless the stay is an event
	q, err = e.Quote(v, Stay{CheckIn: in, CheckOut: out, Guests: 45})
	require.NoError(t, err)
	assert.True(t, q.Supplement.IsZero())
}

func TestQuoteCapacityBoundary(t *testing.T) {
	e := NewEngine()
	v := fixtureVilla()
	stay := Stay{CheckIn: date(2025, 8, 15), CheckOut: date(2025, 8, 17), Guests: v.GuestCapacity}

	_, err := e.Quote(v, stay)
	require.NoError(t, err)

	stay.Guests++
	_, err = e.Quote(v, stay)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	var ce CapacityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, v.GuestCapacity, ce.Capacity)
}

func TestQuoteInvalidInput(t *testing.T) {
	e := NewEngine()
	v := fixtureVilla()

	_, err := e.Quote(v, Stay{CheckIn: date(2025, 8, 15), CheckOut: date(2025, 8, 15), Guests: 2})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = e.Quote(v, Stay{CheckIn: date(2025, 8, 15), CheckOut: date(2025, 8, 10), Guests: 2})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = e.Quote(v, Stay{CheckIn: date(2025, 8, 15), CheckOut: date(2025, 8, 16), Guests: 0})
	assert.ErrorIs(t, err, ErrInvalidGuests)
}

func TestNightsIgnoresTimeOfDay(t *testing.T) {
	in := time.Date(2025, 8, 15, 23, 30, 0, 0, time.UTC)
	out := time.Date(2025, 8, 22, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, Nights(in, out))
}

func TestQuoteIsDeterministic(t *testing.T) {
	e := NewEngine()
	v := fixtureVilla()

	rapid.Check(t, func(t *rapid.T) {
		in := date(2025, 1, 1).AddDate(0, 0, rapid.IntRange(0, 365).Draw(t, "offset"))
		stay := Stay{
			CheckIn:    in,
			CheckOut:   in.AddDate(0, 0, rapid.IntRange(1, 30).Draw(t, "nights")),
			Guests:     rapid.IntRange(1, v.GuestCapacity).Draw(t, "guests"),
			IsEvent:    rapid.Bool().Draw(t, "event"),
			HighSeason: rapid.Bool().Draw(t, "season"),
		}
		a, errA := e.Quote(v, stay)
		b, errB := e.Quote(v, stay)
		if errA != nil || errB != nil {
			t.Fatalf("unexpected errors: %v / %v", errA, errB)
		}
		if !a.Total.Equal(b.Total) || a.Tier != b.Tier || !a.Supplement.Equal(b.Supplement) {
			t.Fatalf("quotes differ: %+v vs %+v", a, b)
		}
		if !a.Total.Equal(a.TierPrice.Add(a.Supplement)) {
			t.Fatalf("total %s != tier %s + supplement %s", a.Total, a.TierPrice, a.Supplement)
		}
	})
}

func TestSupplementForPicksLargestThresholdNotExceeding(t *testing.T) {
	sups := fixtureVilla().PricingRule.PartySupplements

	rapid.Check(t, func(t *rapid.T) {
		guests := rapid.IntRange(1, 200).Draw(t, "guests")
		s, ok := SupplementFor(sups, guests)
		if guests < 30 {
			if ok {
				t.Fatalf("guests=%d: unexpected supplement %+v", guests, s)
			}
			return
		}
		if !ok || s.GuestThreshold > guests {
			t.Fatalf("guests=%d: got %+v ok=%v", guests, s, ok)
		}
		for _, other := range sups {
			if other.GuestThreshold <= guests && other.GuestThreshold > s.GuestThreshold {
				t.Fatalf("guests=%d: threshold %d skipped", guests, other.GuestThreshold)
			}
		}
	})
}
