package repository

import (
    "context"
    "os"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Kenneson972/allinclusive/internal/database"
    "github.com/Kenneson972/allinclusive/internal/model"
)

func TestVillaDocumentConversion(t *testing.T) {
    week := decimal.RequireFromString("1550.00")
    v := model.Villa{
        ID:            "1",
        Name:          "Villa F3 Petit Macabou",
        Location:      "Le Vauclin",
        Category:      model.CategoryFete,
        GuestCapacity: 100,
        Amenities:     []string{"wifi", "piscine"},
        PricingRule: model.PricingRule{
            BasePrice: decimal.RequireFromString("400.5"),
            WeekPrice: &week,
            PartySupplements: []model.PartySupplement{
                {GuestThreshold: 30, Supplement: decimal.NewFromInt(330)},
                {GuestThreshold: 50, Supplement: decimal.NewFromInt(550)},
            },
        },
        Active: true,
    }
    doc, err := toVillaDocument(v, 4)
    require.NoError(t, err)
    assert.Equal(t, int64(4), doc.Seq)
    assert.Nil(t, doc.PricingRule.HighSeasonPrice)

    back, err := doc.toModel()
    require.NoError(t, err)
    assert.Equal(t, v.ID, back.ID)
    assert.Equal(t, v.Category, back.Category)
    assert.Equal(t, []string{"piscine", "wifi"}, back.Amenities)
    assert.True(t, v.PricingRule.BasePrice.Equal(back.PricingRule.BasePrice))
    require.NotNil(t, back.PricingRule.WeekPrice)
    assert.True(t, week.Equal(*back.PricingRule.WeekPrice))
    assert.Nil(t, back.PricingRule.HighSeasonPrice)
    require.Len(t, back.PricingRule.PartySupplements, 2)
    assert.True(t, decimal.NewFromInt(550).Equal(back.PricingRule.PartySupplements[1].Supplement))
}

func TestVillaDocumentRejectsInvalidPrices(t *testing.T) {
    v := villa("1", "Villa Corail", model.CategorySejour, 6, true)
    doc, err := toVillaDocument(v, 0)
    require.NoError(t, err)

    doc.PricingRule.BasePrice, err = toDecimal128(decimal.RequireFromString("850.555"))
    require.NoError(t, err)
    _, err = doc.toModel()
    assert.ErrorContains(t, err, "decimals")
}

// TestVillaRepoMongo runs against the server named by TEST_MONGO_URI in a
// throwaway database.
func TestVillaRepoMongo(t *testing.T) {
    uri := os.Getenv("TEST_MONGO_URI")
    if uri == "" {
        t.Skipf("TEST_MONGO_URI not set")
    }
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    client, err := database.OpenMongo(ctx, uri)
    require.NoError(t, err)
    db := client.Database("allinclusive_test_" + uuid.NewString()[:8])
    t.Cleanup(func() {
        _ = db.Drop(context.Background())
        _ = client.Disconnect(context.Background())
    })

    repo := NewVillaRepo(db.Collection("villas"))
    require.NoError(t, repo.EnsureIndexes(ctx))

    seed := []model.Villa{
        villa("10", "Villa Corail", model.CategorySejour, 6, true),
        villa("2", "Villa Fête Trinité", model.CategoryFete, 80, true),
        villa("7", "Villa Retirée", model.CategorySejour, 12, false),
    }
    for i, v := range seed {
        require.NoError(t, repo.Upsert(ctx, v, int64(i)))
    }
    // Re-importing the same id replaces the document.
    require.NoError(t, repo.Upsert(ctx, seed[0], 0))
    // Reusing a name under another id is a conflict.
    assert.ErrorIs(t, repo.Upsert(ctx, villa("11", "Villa Corail", model.CategorySejour, 6, true), 3), ErrConflict)

    got, err := ListVillas(ctx, repo, VillaFilter{})
    require.NoError(t, err)
    assert.Equal(t, []string{"10", "2"}, ids(got))

    got, err = ListVillas(ctx, repo, VillaFilter{MinGuests: 50})
    require.NoError(t, err)
    assert.Equal(t, []string{"2"}, ids(got))

    v, err := repo.GetVillaByName(ctx, "Villa Fête Trinité")
    require.NoError(t, err)
    assert.Equal(t, "2", v.ID)
    assert.True(t, decimal.NewFromInt(500).Equal(v.PricingRule.BasePrice))

    _, err = repo.GetVilla(ctx, "7")
    assert.ErrorIs(t, err, ErrVillaNotFound)
}
