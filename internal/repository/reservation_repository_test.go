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

// openTestDB connects to the MySQL instance named by TEST_MYSQL_DSN (which
// must set parseTime=true) and empties the reservations table.  Tests are skipped when it is unset.
func openTestDB(t *testing.T) *ReservationRepo {
    t.Helper()
    dsn := os.Getenv("TEST_MYSQL_DSN")
    if dsn == "" {
        t.Skipf("TEST_MYSQL_DSN not set")
    }
    db, err := database.OpenDSN(dsn)
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })

    ctx := context.Background()
    require.NoError(t, database.Migrate(ctx, db))
    _, err = db.ExecContext(ctx, "DELETE FROM reservations")
    require.NoError(t, err)
    return NewReservationRepo(db)
}

func sampleReservation(created time.Time, status string, total string) model.Reservation {
    return model.Reservation{
        ID:            uuid.NewString(),
        VillaID:       "1",
        VillaName:     "Villa F3 Petit Macabou",
        CustomerName:  "Marie Dupont",
        CustomerEmail: "marie@example.com",
        CustomerPhone: "0696000000",
        CheckIn:       time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
        CheckOut:      time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC),
        GuestsCount:   4,
        TotalPrice:    decimal.RequireFromString(total),
        Status:        status,
        CreatedAt:     created,
    }
}

func TestReservationRepoRoundTrip(t *testing.T) {
    repo := openTestDB(t)
    ctx := context.Background()

    res := sampleReservation(time.Date(2025, 7, 1, 9, 30, 0, 123000, time.UTC), model.StatusPending, "1550")
    res.Message = "Arrivée tardive"
    require.NoError(t, repo.Create(ctx, res))

    got, err := repo.GetByID(ctx, res.ID)
    require.NoError(t, err)
    assert.Equal(t, res.ID, got.ID)
    assert.Equal(t, res.Message, got.Message)
    assert.True(t, res.CheckIn.Equal(got.CheckIn))
    assert.True(t, res.CheckOut.Equal(got.CheckOut))
    assert.True(t, res.CreatedAt.Equal(got.CreatedAt))
    assert.True(t, res.TotalPrice.Equal(got.TotalPrice))

    assert.ErrorIs(t, repo.Create(ctx, res), ErrConflict)

    _, err = repo.GetByID(ctx, "missing")
    assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestReservationRepoListAndStats(t *testing.T) {
    repo := openTestDB(t)
    ctx := context.Background()

    base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
    older := sampleReservation(base, model.StatusPending, "850")
    newer := sampleReservation(base.Add(time.Hour), model.StatusConfirmed, "730.50")
    for _, r := range []model.Reservation{older, newer} {
        require.NoError(t, repo.Create(ctx, r))
    }

    list, err := repo.List(ctx)
    require.NoError(t, err)
    require.Len(t, list, 2)
    assert.Equal(t, newer.ID, list[0].ID)
    assert.Equal(t, older.ID, list[1].ID)

    st, err := repo.Stats(ctx)
    require.NoError(t, err)
    assert.Equal(t, 2, st.TotalReservations)
    assert.Equal(t, 1, st.PendingReservations)
    assert.True(t, decimal.RequireFromString("1580.50").Equal(st.TotalRevenue), st.TotalRevenue.String())
}

func TestReservationRepoEmptyStats(t *testing.T) {
    repo := openTestDB(t)
    st, err := repo.Stats(context.Background())
    require.NoError(t, err)
    assert.Zero(t, st.TotalReservations)
    assert.True(t, st.TotalRevenue.IsZero())

    list, err := repo.List(context.Background())
    require.NoError(t, err)
    assert.Empty(t, list)
}
