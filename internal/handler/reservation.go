package handler

import (
    "bytes"
    "context"
    "encoding/json"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Kenneson972/allinclusive/internal/model"
    "github.com/Kenneson972/allinclusive/internal/repository"
    "github.com/Kenneson972/allinclusive/internal/service"
)

// IdempotencyStore remembers the outcome of a create request under a
// client key.  repository.IdempotencyStore implements it on Redis.
type IdempotencyStore interface {
    GetResult(ctx context.Context, key string) (string, bool, error)
    AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
    SaveResult(ctx context.Context, key string, jsonPayload string) error
    Release(ctx context.Context, key string) error
}

// ReservationHandler serves booking submission and the admin reservation
// views.  Idem is optional; without it the Idempotency-Key header is
// ignored.
type ReservationHandler struct {
    Svc     *service.ReservationService
    Idem    IdempotencyStore
    Timeout time.Duration
}

func NewReservationHandler(svc *service.ReservationService, idem IdempotencyStore, timeout time.Duration) *ReservationHandler {
    return &ReservationHandler{Svc: svc, Idem: idem, Timeout: timeout}
}

// flexID accepts a villa id sent either as a JSON string or a number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if len(b) > 0 && b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        *f = flexID(s)
        return nil
    }
    var n json.Number
    if err := json.Unmarshal(b, &n); err != nil {
        return err
    }
    *f = flexID(n.String())
    return nil
}

// reservationReq is the booking form payload.
type reservationReq struct {
    VillaID       flexID `json:"villa_id"`
    CustomerName  string `json:"customer_name"`
    CustomerEmail string `json:"customer_email"`
    CustomerPhone string `json:"customer_phone"`
    CheckIn       string `json:"checkin_date"`
    CheckOut      string `json:"checkout_date"`
    GuestsCount   int    `json:"guests_count"`
    IsEvent       bool   `json:"is_event"`
    HighSeason    bool   `json:"high_season"`
    Message       string `json:"message"`
}

type reservationResp struct {
    ReservationID string            `json:"reservation_id"`
    Reservation   model.Reservation `json:"reservation"`
}

// CreateReservation handles POST /api/reservations.  On success it returns
// 201 with the stored record.  When an Idempotency-Key header is present
// a repeated request replays the first response instead of booking twice;
// a repeat that arrives while the first is still running gets 409.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
    var req reservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    in, out, err := parseStayDates(req.CheckIn, req.CheckOut)
    if err != nil {
        return respondErr(c, err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
    defer cancel()

    idemKey := strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))
    var idemStorageKey string
    if h.Idem != nil && idemKey != "" {
        idemStorageKey = repository.KeyIdemReservation(idemKey)

        if payload, ok, _ := h.Idem.GetResult(ctx, idemStorageKey); ok {
            return replay(c, idemKey, payload)
        }
        locked, err := h.Idem.AcquireLock(ctx, idemStorageKey, 60*time.Second)
        if err != nil {
            // Redis trouble must not block bookings; proceed without the key.
            slog.WarnContext(ctx, "idempotency lock failed", slog.Any("err", err))
            idemStorageKey = ""
        } else if !locked {
            if payload, ok, _ := h.Idem.GetResult(ctx, idemStorageKey); ok {
                return replay(c, idemKey, payload)
            }
            c.Response().Header().Set("Retry-After", "1")
            return c.JSON(http.StatusConflict, echo.Map{"error": "idempotency key in progress"})
        }
    }

    res, err := h.Svc.CreateReservation(ctx, service.ReservationRequest{
        VillaID:       string(req.VillaID),
        CustomerName:  req.CustomerName,
        CustomerEmail: req.CustomerEmail,
        CustomerPhone: req.CustomerPhone,
        CheckIn:       in,
        CheckOut:      out,
        GuestsCount:   req.GuestsCount,
        IsEvent:       req.IsEvent,
        HighSeason:    req.HighSeason,
        Message:       req.Message,
    })
    if err != nil {
        if idemStorageKey != "" {
            _ = h.Idem.Release(context.WithoutCancel(ctx), idemStorageKey)
        }
        return respondErr(c, err)
    }

    resp := reservationResp{ReservationID: res.ID, Reservation: res}
    if idemStorageKey != "" {
        b, _ := json.Marshal(resp)
        _ = h.Idem.SaveResult(context.WithoutCancel(ctx), idemStorageKey, string(b))
        c.Response().Header().Set("Idempotency-Key", idemKey)
    }
    return c.JSON(http.StatusCreated, resp)
}

func replay(c echo.Context, idemKey, payload string) error {
    c.Response().Header().Set("Idempotency-Key", idemKey)
    c.Response().Header().Set("Idempotent-Replayed", "true")
    return c.Blob(http.StatusCreated, echo.MIMEApplicationJSONCharsetUTF8, []byte(payload))
}

// ListReservations handles GET /api/admin/reservations, most recent first.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
    defer cancel()

    list, err := h.Svc.ListReservations(ctx)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}

// GetReservation handles GET /api/admin/reservations/:id.
func (h *ReservationHandler) GetReservation(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
    defer cancel()

    res, err := h.Svc.GetReservation(ctx, c.Param("id"))
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// DashboardStats handles GET /api/stats/dashboard.
func (h *ReservationHandler) DashboardStats(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
    defer cancel()

    st, err := h.Svc.DashboardStats(ctx)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

func (h *ReservationHandler) timeout() time.Duration {
    if h.Timeout <= 0 {
        return 5 * time.Second
    }
    return h.Timeout
}
