package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/go-sql-driver/mysql"
    "github.com/shopspring/decimal"

    "github.com/Kenneson972/allinclusive/internal/model"
)

// ReservationRepo persists reservations in the MySQL reservations table.
// Rows are append-only from the booking flow; every insert runs in its
// own transaction so a reservation is either fully written or absent.
// All timestamps are stored in UTC and check-in/check-out are DATE
// columns.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, villa_id, villa_name, customer_name, customer_email, customer_phone,
    checkin_date, checkout_date, guests_count, is_event, high_season, message,
    total_price, status, created_at`

// Create inserts res inside a transaction.  The caller supplies the id,
// status and creation time.  A duplicate id yields ErrConflict.
func (r *ReservationRepo) Create(ctx context.Context, res model.Reservation) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer tx.Rollback()
    if err := r.CreateTx(ctx, tx, res); err != nil {
        return err
    }
    return tx.Commit()
}

// CreateTx inserts a reservation within the scope of an existing
// transaction.  The caller must commit or rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res model.Reservation) error {
    const q = `INSERT INTO reservations (` + reservationColumns + `)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    var message sql.NullString
    if res.Message != "" {
        message = sql.NullString{String: res.Message, Valid: true}
    }
    _, err := tx.ExecContext(ctx, q,
        res.ID, res.VillaID, res.VillaName, res.CustomerName, res.CustomerEmail, res.CustomerPhone,
        dateOnly(res.CheckIn), dateOnly(res.CheckOut), res.GuestsCount, res.IsEvent, res.HighSeason, message,
        res.TotalPrice.StringFixed(2), res.Status, res.CreatedAt.UTC(),
    )
    var me *mysql.MySQLError
    if errors.As(err, &me) && me.Number == 1062 {
        return ErrConflict
    }
    return err
}

// GetByID returns the reservation with the given id or
// ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? LIMIT 1`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Reservation{}, ErrReservationNotFound
    }
    return res, err
}

// List returns every reservation, most recent first.  Rows created in the
// same instant are ordered by id descending so the order is total.
func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Reservation{}
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    return out, rows.Err()
}

// Stats aggregates the whole table in a single statement, so the counts
// and the revenue come from the same snapshot.
func (r *ReservationRepo) Stats(ctx context.Context) (model.ReservationStats, error) {
    const q = `SELECT COUNT(*),
                      COALESCE(SUM(status = ?), 0),
                      COALESCE(SUM(total_price), 0)
               FROM reservations`
    var (
        st      model.ReservationStats
        revenue decimal.Decimal
    )
    if err := r.db.QueryRowContext(ctx, q, model.StatusPending).Scan(
        &st.TotalReservations, &st.PendingReservations, &revenue,
    ); err != nil {
        return model.ReservationStats{}, err
    }
    st.TotalRevenue = revenue
    return st, nil
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
    var (
        res     model.Reservation
        message sql.NullString
    )
    err := s.Scan(
        &res.ID, &res.VillaID, &res.VillaName, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone,
        &res.CheckIn, &res.CheckOut, &res.GuestsCount, &res.IsEvent, &res.HighSeason, &message,
        &res.TotalPrice, &res.Status, &res.CreatedAt,
    )
    if err != nil {
        return model.Reservation{}, err
    }
    if message.Valid {
        res.Message = message.String
    }
    res.CheckIn = res.CheckIn.UTC()
    res.CheckOut = res.CheckOut.UTC()
    res.CreatedAt = res.CreatedAt.UTC()
    return res, nil
}

// dateOnly formats t as a DATE literal in UTC.
func dateOnly(t time.Time) string {
    return t.UTC().Format(time.DateOnly)
}
