package repository

import (
    "context"
    "strings"
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Kenneson972/allinclusive/internal/model"
)

func villa(id, name string, cat model.Category, capacity int, active bool) model.Villa {
    return model.Villa{
        ID:            id,
        Name:          name,
        Location:      "Le Vauclin",
        Category:      cat,
        GuestCapacity: capacity,
        Amenities:     []string{"wifi", "piscine", "wifi", " "},
        PricingRule:   model.PricingRule{BasePrice: decimal.NewFromInt(500)},
        Active:        active,
    }
}

func fixture(t *testing.T) *VillaMemory {
    t.Helper()
    m, err := NewVillaMemory([]model.Villa{
        villa("10", "Villa Corail", model.CategorySejour, 6, true),
        villa("2", "Villa Fête Trinité", model.CategoryFete, 80, true),
        villa("7", "Villa Retirée", model.CategorySejour, 12, false),
        villa("3", "Piscine Robert", model.CategoryPiscine, 30, true),
    })
    require.NoError(t, err)
    return m
}

func ids(vs []model.Villa) []string {
    out := make([]string, len(vs))
    for i, v := range vs {
        out[i] = v.ID
    }
    return out
}

func TestVillaMemoryBrowse(t *testing.T) {
    m := fixture(t)
    ctx := context.Background()

    cases := []struct {
        name string
        f    VillaFilter
        want []string
    }{
        {"all active in seed order", VillaFilter{}, []string{"10", "2", "3"}},
        {"category", VillaFilter{Category: model.CategorySejour}, []string{"10"}},
        {"min guests", VillaFilter{MinGuests: 30}, []string{"2", "3"}},
        {"both", VillaFilter{Category: model.CategoryFete, MinGuests: 81}, []string{}},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got, err := ListVillas(ctx, m, tc.f)
            require.NoError(t, err)
            assert.Equal(t, tc.want, ids(got))

            n, err := CountVillas(ctx, m, tc.f)
            require.NoError(t, err)
            assert.Equal(t, len(tc.want), n)
        })
    }

    // Scans restart from the beginning on every call.
    first, _ := ListVillas(ctx, m, VillaFilter{})
    second, _ := ListVillas(ctx, m, VillaFilter{})
    assert.Equal(t, first, second)
}

func TestVillaMemoryLookup(t *testing.T) {
    m := fixture(t)
    ctx := context.Background()

    v, err := m.GetVilla(ctx, "2")
    require.NoError(t, err)
    assert.Equal(t, "Villa Fête Trinité", v.Name)
    assert.Equal(t, []string{"piscine", "wifi"}, v.Amenities)

    byName, err := m.GetVillaByName(ctx, "Piscine Robert")
    require.NoError(t, err)
    assert.Equal(t, "3", byName.ID)

    _, err = m.GetVilla(ctx, "404")
    assert.ErrorIs(t, err, ErrVillaNotFound)
    _, err = m.GetVilla(ctx, "7")
    assert.ErrorIs(t, err, ErrVillaNotFound, "withdrawn villas are not bookable")
    _, err = m.GetVillaByName(ctx, "Villa Retirée")
    assert.ErrorIs(t, err, ErrVillaNotFound)
}

func TestVillaMemoryReturnsCopies(t *testing.T) {
    m := fixture(t)
    ctx := context.Background()

    v, err := m.GetVilla(ctx, "10")
    require.NoError(t, err)
    v.Amenities[0] = "mutated"
    v.GuestCapacity = 999

    again, err := m.GetVilla(ctx, "10")
    require.NoError(t, err)
    assert.Equal(t, "piscine", again.Amenities[0])
    assert.Equal(t, 6, again.GuestCapacity)
}

func TestVillaMemoryRejectsBadCatalog(t *testing.T) {
    _, err := NewVillaMemory([]model.Villa{
        villa("1", "A", model.CategorySejour, 4, true),
        villa("1", "B", model.CategorySejour, 4, true),
    })
    assert.ErrorIs(t, err, ErrConflict)

    _, err = NewVillaMemory([]model.Villa{
        villa("1", "A", model.CategorySejour, 4, true),
        villa("2", "A", model.CategorySejour, 4, true),
    })
    assert.ErrorIs(t, err, ErrConflict)

    _, err = NewVillaMemory([]model.Villa{villa("1", "A", model.CategorySejour, 0, true)})
    assert.Error(t, err)

    // Totals are stored with two decimals in DECIMAL(12,2); prices that
    // would not survive that column never enter the catalog.
    for _, price := range []string{"850.555", "1000000000"} {
        v := villa("1", "A", model.CategorySejour, 4, true)
        v.PricingRule.BasePrice = decimal.RequireFromString(price)
        _, err = NewVillaMemory([]model.Villa{v})
        assert.Error(t, err, price)
    }
}

func TestVillaMemoryCancelledScan(t *testing.T) {
    m := fixture(t)
    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    _, err := ListVillas(ctx, m, VillaFilter{})
    assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeSeed(t *testing.T) {
    villas, err := DecodeSeed(strings.NewReader(`[{
        "id": "1", "name": "Villa F3 Petit Macabou", "location": "Le Vauclin",
        "category": "sejour", "guest_capacity": 6, "amenities": ["piscine"],
        "pricing_rule": {"base_price": "850", "week_price": "1550", "party_supplements": []},
        "active": true
    }]`))
    require.NoError(t, err)
    require.Len(t, villas, 1)
    require.NotNil(t, villas[0].PricingRule.WeekPrice)
    assert.True(t, decimal.NewFromInt(1550).Equal(*villas[0].PricingRule.WeekPrice))
    assert.Nil(t, villas[0].PricingRule.HighSeasonPrice)

    _, err = DecodeSeed(strings.NewReader(`[{"id": "1", "capacity": 6}]`))
    assert.Error(t, err, "unknown fields are rejected")
}

func TestLoadShippedCatalog(t *testing.T) {
    m, err := LoadVillaMemory("../../data/villas.json")
    require.NoError(t, err)
    n, err := CountVillas(context.Background(), m, VillaFilter{})
    require.NoError(t, err)
    assert.Positive(t, n)
}
