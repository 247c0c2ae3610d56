package repository

import (
    "context"
    "iter"
    "sort"
    "strings"

    "github.com/Kenneson972/allinclusive/internal/model"
)

// VillaFilter narrows a catalog scan.  Zero values disable a criterion.
type VillaFilter struct {
    Category  model.Category // exact category match when non-empty
    MinGuests int            // villas able to host at least this many guests
}

// Match reports whether v passes the filter.  Withdrawn villas never match.
func (f VillaFilter) Match(v model.Villa) bool {
    if !v.Active {
        return false
    }
    if f.Category != "" && v.Category != f.Category {
        return false
    }
    if f.MinGuests > 0 && v.GuestCapacity < f.MinGuests {
        return false
    }
    return true
}

// VillaStore is the read side of the catalog shared by the pricing and
// reservation services.  Implementations must be safe for concurrent use.
type VillaStore interface {
    // GetVilla returns the active villa with the given id or ErrVillaNotFound.
    GetVilla(ctx context.Context, id string) (model.Villa, error)
    // GetVillaByName looks a villa up by its legacy natural key.
    GetVillaByName(ctx context.Context, name string) (model.Villa, error)
    // Villas yields matching villas in catalog-import order.  Each call
    // starts a fresh scan; an empty result is not an error.
    Villas(ctx context.Context, f VillaFilter) iter.Seq2[model.Villa, error]
}

// ListVillas drains a VillaStore scan into a slice.
func ListVillas(ctx context.Context, s VillaStore, f VillaFilter) ([]model.Villa, error) {
    out := []model.Villa{}
    for v, err := range s.Villas(ctx, f) {
        if err != nil {
            return nil, err
        }
        out = append(out, v)
    }
    return out, nil
}

// CountVillas counts the villas matching f.
func CountVillas(ctx context.Context, s VillaStore, f VillaFilter) (int, error) {
    n := 0
    for _, err := range s.Villas(ctx, f) {
        if err != nil {
            return 0, err
        }
        n++
    }
    return n, nil
}

// normalizeAmenities sorts and de-duplicates amenity labels so the set
// semantics survive round trips through JSON and BSON arrays.
func normalizeAmenities(in []string) []string {
    seen := make(map[string]bool, len(in))
    out := make([]string, 0, len(in))
    for _, a := range in {
        a = strings.TrimSpace(a)
        if a == "" || seen[a] {
            continue
        }
        seen[a] = true
        out = append(out, a)
    }
    sort.Strings(out)
    return out
}
