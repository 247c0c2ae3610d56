package repository

import (
    "context"
    "errors"
    "fmt"
    "iter"

    "github.com/shopspring/decimal"
    "go.mongodb.org/mongo-driver/bson"
    "go.mongodb.org/mongo-driver/bson/primitive"
    "go.mongodb.org/mongo-driver/mongo"
    "go.mongodb.org/mongo-driver/mongo/options"

    "github.com/Kenneson972/allinclusive/internal/model"
)

// VillaRepo serves the catalog from the MongoDB "villas" collection.
// Each villa is one document with its pricing rule embedded; prices are
// stored as Decimal128 so no precision is lost.
type VillaRepo struct {
    coll *mongo.Collection
}

// NewVillaRepo binds a VillaRepo to the given collection.
func NewVillaRepo(coll *mongo.Collection) *VillaRepo { return &VillaRepo{coll: coll} }

// villaDocument mirrors the stored document.  Import order is kept in
// Seq so scans are returned in catalog-import order.
type villaDocument struct {
    ID            string              `bson:"id"`
    Seq           int64               `bson:"seq"`
    Name          string              `bson:"name"`
    Location      string              `bson:"location"`
    Category      string              `bson:"category"`
    GuestCapacity int                 `bson:"guest_capacity"`
    Amenities     []string            `bson:"amenities"`
    PricingRule   pricingRuleDocument `bson:"pricing_rule"`
    Active        bool                `bson:"active"`
}

type pricingRuleDocument struct {
    BasePrice        primitive.Decimal128   `bson:"base_price"`
    WeekPrice        *primitive.Decimal128  `bson:"week_price,omitempty"`
    HighSeasonPrice  *primitive.Decimal128  `bson:"high_season_price,omitempty"`
    PartySupplements []supplementDocument   `bson:"party_supplements"`
}

type supplementDocument struct {
    GuestThreshold int                  `bson:"guest_threshold"`
    Supplement     primitive.Decimal128 `bson:"supplement"`
}

// EnsureIndexes creates the unique indexes on id and name and the import
// order index.  It is idempotent.
func (r *VillaRepo) EnsureIndexes(ctx context.Context) error {
    _, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
        {Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
        {Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
        {Keys: bson.D{{Key: "seq", Value: 1}}},
    })
    return err
}

// Upsert writes a villa keyed by id.  seq fixes its position in the
// catalog order.  A name already used by another villa yields ErrConflict.
func (r *VillaRepo) Upsert(ctx context.Context, v model.Villa, seq int64) error {
    if err := v.Validate(); err != nil {
        return err
    }
    doc, err := toVillaDocument(v, seq)
    if err != nil {
        return err
    }
    _, err = r.coll.ReplaceOne(ctx, bson.M{"id": v.ID}, doc, options.Replace().SetUpsert(true))
    if mongo.IsDuplicateKeyError(err) {
        return fmt.Errorf("villa %s: %w", v.ID, ErrConflict)
    }
    return err
}

// GetVilla fetches an active villa by id.
func (r *VillaRepo) GetVilla(ctx context.Context, id string) (model.Villa, error) {
    return r.findOne(ctx, bson.M{"id": id, "active": true})
}

// GetVillaByName fetches an active villa by name.
func (r *VillaRepo) GetVillaByName(ctx context.Context, name string) (model.Villa, error) {
    return r.findOne(ctx, bson.M{"name": name, "active": true})
}

func (r *VillaRepo) findOne(ctx context.Context, filter bson.M) (model.Villa, error) {
    var doc villaDocument
    if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
        if errors.Is(err, mongo.ErrNoDocuments) {
            return model.Villa{}, ErrVillaNotFound
        }
        return model.Villa{}, err
    }
    return doc.toModel()
}

// Villas streams matching villas from a cursor; documents are decoded one
// at a time as the caller advances.
func (r *VillaRepo) Villas(ctx context.Context, f VillaFilter) iter.Seq2[model.Villa, error] {
    return func(yield func(model.Villa, error) bool) {
        filter := bson.M{"active": true}
        if f.Category != "" {
            filter["category"] = string(f.Category)
        }
        if f.MinGuests > 0 {
            filter["guest_capacity"] = bson.M{"$gte": f.MinGuests}
        }
        cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
        if err != nil {
            yield(model.Villa{}, err)
            return
        }
        defer cur.Close(ctx)
        for cur.Next(ctx) {
            var doc villaDocument
            if err := cur.Decode(&doc); err != nil {
                yield(model.Villa{}, err)
                return
            }
            v, err := doc.toModel()
            if !yield(v, err) || err != nil {
                return
            }
        }
        if err := cur.Err(); err != nil {
            yield(model.Villa{}, err)
        }
    }
}

func toVillaDocument(v model.Villa, seq int64) (villaDocument, error) {
    base, err := toDecimal128(v.PricingRule.BasePrice)
    if err != nil {
        return villaDocument{}, err
    }
    rule := pricingRuleDocument{BasePrice: base, PartySupplements: []supplementDocument{}}
    if rule.WeekPrice, err = toDecimal128Ptr(v.PricingRule.WeekPrice); err != nil {
        return villaDocument{}, err
    }
    if rule.HighSeasonPrice, err = toDecimal128Ptr(v.PricingRule.HighSeasonPrice); err != nil {
        return villaDocument{}, err
    }
    for _, s := range v.PricingRule.PartySupplements {
        amount, err := toDecimal128(s.Supplement)
        if err != nil {
            return villaDocument{}, err
        }
        rule.PartySupplements = append(rule.PartySupplements, supplementDocument{GuestThreshold: s.GuestThreshold, Supplement: amount})
    }
    return villaDocument{
        ID:            v.ID,
        Seq:           seq,
        Name:          v.Name,
        Location:      v.Location,
        Category:      string(v.Category),
        GuestCapacity: v.GuestCapacity,
        Amenities:     normalizeAmenities(v.Amenities),
        PricingRule:   rule,
        Active:        v.Active,
    }, nil
}

func (d villaDocument) toModel() (model.Villa, error) {
    base, err := fromDecimal128(d.PricingRule.BasePrice)
    if err != nil {
        return model.Villa{}, fmt.Errorf("villa %s base_price: %w", d.ID, err)
    }
    rule := model.PricingRule{BasePrice: base}
    if rule.WeekPrice, err = fromDecimal128Ptr(d.PricingRule.WeekPrice); err != nil {
        return model.Villa{}, fmt.Errorf("villa %s week_price: %w", d.ID, err)
    }
    if rule.HighSeasonPrice, err = fromDecimal128Ptr(d.PricingRule.HighSeasonPrice); err != nil {
        return model.Villa{}, fmt.Errorf("villa %s high_season_price: %w", d.ID, err)
    }
    for _, s := range d.PricingRule.PartySupplements {
        amount, err := fromDecimal128(s.Supplement)
        if err != nil {
            return model.Villa{}, fmt.Errorf("villa %s supplement: %w", d.ID, err)
        }
        rule.PartySupplements = append(rule.PartySupplements, model.PartySupplement{GuestThreshold: s.GuestThreshold, Supplement: amount})
    }
    amenities := d.Amenities
    if amenities == nil {
        amenities = []string{}
    }
    v := model.Villa{
        ID:            d.ID,
        Name:          d.Name,
        Location:      d.Location,
        Category:      model.Category(d.Category),
        GuestCapacity: d.GuestCapacity,
        Amenities:     amenities,
        PricingRule:   rule,
        Active:        d.Active,
    }
    // Documents edited outside catalog-import must still price correctly.
    if err := v.Validate(); err != nil {
        return model.Villa{}, err
    }
    return v, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
    return primitive.ParseDecimal128(d.String())
}

func toDecimal128Ptr(d *decimal.Decimal) (*primitive.Decimal128, error) {
    if d == nil {
        return nil, nil
    }
    v, err := toDecimal128(*d)
    if err != nil {
        return nil, err
    }
    return &v, nil
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
    return decimal.NewFromString(d.String())
}

func fromDecimal128Ptr(d *primitive.Decimal128) (*decimal.Decimal, error) {
    if d == nil {
        return nil, nil
    }
    v, err := fromDecimal128(*d)
    if err != nil {
        return nil, err
    }
    return &v, nil
}
