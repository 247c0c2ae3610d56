package service

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "net/mail"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"

    "github.com/Kenneson972/allinclusive/internal/model"
    "github.com/Kenneson972/allinclusive/internal/pricing"
    "github.com/Kenneson972/allinclusive/internal/queue"
    "github.com/Kenneson972/allinclusive/internal/repository"
)

// ReservationStore is the persistence the reservation service needs.
// repository.ReservationRepo satisfies it.
type ReservationStore interface {
    Create(ctx context.Context, res model.Reservation) error
    GetByID(ctx context.Context, id string) (model.Reservation, error)
    List(ctx context.Context) ([]model.Reservation, error)
    Stats(ctx context.Context) (model.ReservationStats, error)
}

// EventPublisher delivers reservation events.  Delivery is best-effort.
type EventPublisher interface {
    PublishReservationCreated(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

// ReservationRequest is a customer's booking submission.
type ReservationRequest struct {
    VillaID       string
    CustomerName  string
    CustomerEmail string
    CustomerPhone string
    CheckIn       time.Time
    CheckOut      time.Time
    GuestsCount   int
    IsEvent       bool
    HighSeason    bool
    Message       string
}

func (r ReservationRequest) stay() pricing.Stay {
    return pricing.Stay{
        CheckIn:    r.CheckIn,
        CheckOut:   r.CheckOut,
        Guests:     r.GuestsCount,
        IsEvent:    r.IsEvent,
        HighSeason: r.HighSeason,
    }
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
    TotalReservations   int             `json:"total_reservations"`
    PendingReservations int             `json:"pending_reservations"`
    TotalRevenue        decimal.Decimal `json:"total_revenue"`
    TotalVillas         int             `json:"total_villas"`
}

// ReservationService prices, validates and persists bookings and serves
// the admin read side.
type ReservationService struct {
    villas    repository.VillaStore
    store     ReservationStore
    engine    *pricing.Engine
    publisher EventPublisher
    log       *slog.Logger

    now   func() time.Time
    newID func() string
}

// NewReservationService wires the service.  publisher may be nil, in
// which case no events are emitted.
func NewReservationService(
    villas repository.VillaStore,
    store ReservationStore,
    engine *pricing.Engine,
    publisher EventPublisher,
    logger *slog.Logger,
) *ReservationService {
    if logger == nil {
        logger = slog.Default()
    }
    return &ReservationService{
        villas:    villas,
        store:     store,
        engine:    engine,
        publisher: publisher,
        log:       logger,
        now:       time.Now,
        newID:     func() string { return uuid.NewString() },
    }
}

// Villas exposes the catalog the service prices against.
func (s *ReservationService) Villas() repository.VillaStore { return s.villas }

// QuoteStay prices a stay without booking it.
func (s *ReservationService) QuoteStay(ctx context.Context, villaID string, stay pricing.Stay) (pricing.Quote, error) {
    const op = "service.ReservationService.QuoteStay"

    villa, err := s.lookupVilla(ctx, villaID)
    if err != nil {
        return pricing.Quote{}, fmt.Errorf("%s: %w", op, err)
    }
    q, err := s.engine.Quote(villa, stay)
    if err != nil {
        return pricing.Quote{}, fmt.Errorf("%s: %w", op, err)
    }
    return q, nil
}

// CreateReservation books a stay.  The stored total is the engine's quote
// at creation time.  Overlapping stays at the same villa are not
// detected.
func (s *ReservationService) CreateReservation(ctx context.Context, req ReservationRequest) (model.Reservation, error) {
    const op = "service.ReservationService.CreateReservation"

    if strings.TrimSpace(req.VillaID) == "" {
        return model.Reservation{}, fmt.Errorf("%s: %w", op, &ValidationError{Field: "villa_id", Reason: "is required"})
    }
    villa, err := s.lookupVilla(ctx, req.VillaID)
    if err != nil {
        return model.Reservation{}, fmt.Errorf("%s: %w", op, err)
    }
    quote, err := s.engine.Quote(villa, req.stay())
    if err != nil {
        return model.Reservation{}, fmt.Errorf("%s: %w", op, err)
    }
    if err := validateRequest(req); err != nil {
        return model.Reservation{}, fmt.Errorf("%s: %w", op, err)
    }

    res := model.Reservation{
        ID:            s.newID(),
        VillaID:       villa.ID,
        VillaName:     villa.Name,
        CustomerName:  strings.TrimSpace(req.CustomerName),
        CustomerEmail: strings.TrimSpace(req.CustomerEmail),
        CustomerPhone: strings.TrimSpace(req.CustomerPhone),
        CheckIn:       dateUTC(req.CheckIn),
        CheckOut:      dateUTC(req.CheckOut),
        GuestsCount:   req.GuestsCount,
        IsEvent:       req.IsEvent,
        HighSeason:    req.HighSeason,
        Message:       strings.TrimSpace(req.Message),
        TotalPrice:    quote.Total,
        Status:        model.StatusPending,
        CreatedAt:     s.now().UTC().Truncate(time.Microsecond),
    }
    if err := s.store.Create(ctx, res); err != nil {
        return model.Reservation{}, &PersistenceError{Op: op, Err: err}
    }

    s.log.Info("reservation created",
        slog.String("reservation_id", res.ID),
        slog.String("villa_id", res.VillaID),
        slog.Int("nights", quote.Nights),
        slog.String("tier", quote.Tier),
        slog.String("total_price", res.TotalPrice.StringFixed(2)),
    )
    s.publishCreated(ctx, res)
    return res, nil
}

// ListReservations returns every reservation, most recent first.
func (s *ReservationService) ListReservations(ctx context.Context) ([]model.Reservation, error) {
    const op = "service.ReservationService.ListReservations"

    list, err := s.store.List(ctx)
    if err != nil {
        return nil, &PersistenceError{Op: op, Err: err}
    }
    return list, nil
}

// GetReservation returns one reservation by id.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
    const op = "service.ReservationService.GetReservation"

    res, err := s.store.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return model.Reservation{}, fmt.Errorf("%s: %w", op, ErrReservationNotFound)
        }
        return model.Reservation{}, &PersistenceError{Op: op, Err: err}
    }
    return res, nil
}

// DashboardStats aggregates reservations and counts the bookable villas.
// The reservation figures come from a single aggregate read, so they
// agree with ListReservations whenever no write is in flight.
func (s *ReservationService) DashboardStats(ctx context.Context) (DashboardStats, error) {
    const op = "service.ReservationService.DashboardStats"

    st, err := s.store.Stats(ctx)
    if err != nil {
        return DashboardStats{}, &PersistenceError{Op: op, Err: err}
    }
    villas, err := repository.CountVillas(ctx, s.villas, repository.VillaFilter{})
    if err != nil {
        return DashboardStats{}, &PersistenceError{Op: op, Err: err}
    }
    return DashboardStats{
        TotalReservations:   st.TotalReservations,
        PendingReservations: st.PendingReservations,
        TotalRevenue:        st.TotalRevenue,
        TotalVillas:         villas,
    }, nil
}

func (s *ReservationService) lookupVilla(ctx context.Context, id string) (model.Villa, error) {
    villa, err := s.villas.GetVilla(ctx, strings.TrimSpace(id))
    if err != nil {
        if errors.Is(err, repository.ErrVillaNotFound) {
            return model.Villa{}, ErrVillaNotFound
        }
        return model.Villa{}, &PersistenceError{Op: "catalog.GetVilla", Err: err}
    }
    return villa, nil
}

// publishCreated emits the event without letting a broker failure reach
// the customer; the reservation is already committed.
func (s *ReservationService) publishCreated(ctx context.Context, res model.Reservation) {
    if s.publisher == nil {
        return
    }
    ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
    defer cancel()
    ev := queue.ReservationCreatedEvent{
        ReservationID: res.ID,
        VillaID:       res.VillaID,
        VillaName:     res.VillaName,
        CustomerName:  res.CustomerName,
        CustomerEmail: res.CustomerEmail,
        CheckIn:       res.CheckIn.Format(time.DateOnly),
        CheckOut:      res.CheckOut.Format(time.DateOnly),
        GuestsCount:   res.GuestsCount,
        IsEvent:       res.IsEvent,
        TotalPrice:    res.TotalPrice.StringFixed(2),
        Status:        res.Status,
        CreatedAt:     res.CreatedAt.Format(time.RFC3339),
    }
    if err := s.publisher.PublishReservationCreated(ctx, ev); err != nil {
        s.log.Warn("publish reservation.created failed",
            slog.String("reservation_id", res.ID),
            slog.Any("err", err),
        )
    }
}

func validateRequest(req ReservationRequest) error {
    required := []struct{ field, value string }{
        {"customer_name", req.CustomerName},
        {"customer_email", req.CustomerEmail},
        {"customer_phone", req.CustomerPhone},
    }
    for _, r := range required {
        if strings.TrimSpace(r.value) == "" {
            return &ValidationError{Field: r.field, Reason: "is required"}
        }
    }
    addr, err := mail.ParseAddress(strings.TrimSpace(req.CustomerEmail))
    if err != nil || addr.Name != "" || !strings.Contains(addr.Address, ".") {
        return &ValidationError{Field: "customer_email", Reason: "is not a valid email address"}
    }
    if !dateUTC(req.CheckIn).Before(dateUTC(req.CheckOut)) {
        return &ValidationError{Field: "checkout_date", Reason: "must be after checkin_date"}
    }
    return nil
}

// dateUTC drops the time of day, keeping the calendar date as written.
func dateUTC(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
