package repository

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "iter"
    "os"

    "github.com/Kenneson972/allinclusive/internal/model"
)

// VillaMemory is an immutable in-process catalog built from a seed file.
// It backs tests with fixture catalogs and serves the catalog when no
// MongoDB URI is configured.  Because it is never mutated after
// construction it needs no locking.
type VillaMemory struct {
    villas []model.Villa
    byID   map[string]int
    byName map[string]int
}

// NewVillaMemory validates the villas and indexes them by id and name.
// Duplicate ids or names are rejected with ErrConflict.
func NewVillaMemory(villas []model.Villa) (*VillaMemory, error) {
    m := &VillaMemory{
        villas: make([]model.Villa, 0, len(villas)),
        byID:   make(map[string]int, len(villas)),
        byName: make(map[string]int, len(villas)),
    }
    for _, v := range villas {
        if err := v.Validate(); err != nil {
            return nil, err
        }
        if _, dup := m.byID[v.ID]; dup {
            return nil, fmt.Errorf("villa id %q: %w", v.ID, ErrConflict)
        }
        if _, dup := m.byName[v.Name]; dup {
            return nil, fmt.Errorf("villa name %q: %w", v.Name, ErrConflict)
        }
        v.Amenities = normalizeAmenities(v.Amenities)
        m.byID[v.ID] = len(m.villas)
        m.byName[v.Name] = len(m.villas)
        m.villas = append(m.villas, v)
    }
    return m, nil
}

// DecodeSeed reads a catalog seed document: a JSON array of villas.
func DecodeSeed(r io.Reader) ([]model.Villa, error) {
    var villas []model.Villa
    dec := json.NewDecoder(r)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&villas); err != nil {
        return nil, fmt.Errorf("decode catalog seed: %w", err)
    }
    return villas, nil
}

// LoadVillaMemory builds a memory catalog from the seed file at path.
func LoadVillaMemory(path string) (*VillaMemory, error) {
    f, err := os.Open(path)
    if err != nil {
        return nil, err
    }
    defer f.Close()
    villas, err := DecodeSeed(f)
    if err != nil {
        return nil, err
    }
    return NewVillaMemory(villas)
}

// GetVilla returns the villa with the given id.
func (m *VillaMemory) GetVilla(_ context.Context, id string) (model.Villa, error) {
    i, ok := m.byID[id]
    if !ok || !m.villas[i].Active {
        return model.Villa{}, ErrVillaNotFound
    }
    return cloneVilla(m.villas[i]), nil
}

// GetVillaByName returns the villa with the given name.
func (m *VillaMemory) GetVillaByName(_ context.Context, name string) (model.Villa, error) {
    i, ok := m.byName[name]
    if !ok || !m.villas[i].Active {
        return model.Villa{}, ErrVillaNotFound
    }
    return cloneVilla(m.villas[i]), nil
}

// Villas yields matching villas in seed order.
func (m *VillaMemory) Villas(ctx context.Context, f VillaFilter) iter.Seq2[model.Villa, error] {
    return func(yield func(model.Villa, error) bool) {
        for _, v := range m.villas {
            if err := ctx.Err(); err != nil {
                yield(model.Villa{}, err)
                return
            }
            if !f.Match(v) {
                continue
            }
            if !yield(cloneVilla(v), nil) {
                return
            }
        }
    }
}

// cloneVilla copies the slices so callers cannot mutate the catalog.
func cloneVilla(v model.Villa) model.Villa {
    v.Amenities = append([]string(nil), v.Amenities...)
    v.PricingRule.PartySupplements = append([]model.PartySupplement(nil), v.PricingRule.PartySupplements...)
    if p := v.PricingRule.WeekPrice; p != nil {
        d := *p
        v.PricingRule.WeekPrice = &d
    }
    if p := v.PricingRule.HighSeasonPrice; p != nil {
        d := *p
        v.PricingRule.HighSeasonPrice = &d
    }
    return v
}
