package model

import (
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
)

func TestPricingRuleValidate(t *testing.T) {
    ok := PricingRule{
        BasePrice: decimal.NewFromInt(850),
        PartySupplements: []PartySupplement{
            {GuestThreshold: 30, Supplement: decimal.NewFromInt(330)},
            {GuestThreshold: 50, Supplement: decimal.NewFromInt(550)},
        },
    }
    assert.NoError(t, ok.Validate())

    unsorted := ok
    unsorted.PartySupplements = []PartySupplement{
        {GuestThreshold: 50, Supplement: decimal.NewFromInt(550)},
        {GuestThreshold: 30, Supplement: decimal.NewFromInt(330)},
    }
    assert.Error(t, unsorted.Validate())

    dup := ok
    dup.PartySupplements = []PartySupplement{
        {GuestThreshold: 30, Supplement: decimal.NewFromInt(330)},
        {GuestThreshold: 30, Supplement: decimal.NewFromInt(400)},
    }
    assert.Error(t, dup.Validate())

    neg := ok
    w := decimal.NewFromInt(-1)
    neg.WeekPrice = &w
    assert.Error(t, neg.Validate())
}

func TestPricingRulePriceScale(t *testing.T) {
    cases := []struct {
        name  string
        price string
        ok    bool
    }{
        {"whole", "850", true},
        {"cents", "850.55", true},
        {"trailing zero", "850.500", true},
        {"sub-cent", "850.555", false},
        {"largest", "999999999.99", true},
        {"too large", "1000000000", false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            d := decimal.RequireFromString(tc.price)
            rules := []PricingRule{
                {BasePrice: d},
                {BasePrice: decimal.NewFromInt(1), WeekPrice: &d},
                {BasePrice: decimal.NewFromInt(1), HighSeasonPrice: &d},
                {BasePrice: decimal.NewFromInt(1), PartySupplements: []PartySupplement{{GuestThreshold: 10, Supplement: d}}},
            }
            for _, r := range rules {
                if tc.ok {
                    assert.NoError(t, r.Validate())
                } else {
                    assert.Error(t, r.Validate())
                }
            }
        })
    }
}

func TestVillaValidate(t *testing.T) {
    v := Villa{ID: "1", Name: "Villa", Category: CategoryFete, GuestCapacity: 10}
    assert.NoError(t, v.Validate())

    v.GuestCapacity = 0
    assert.Error(t, v.Validate())

    v.GuestCapacity = 10
    v.Category = "chalet"
    assert.Error(t, v.Validate())
}
