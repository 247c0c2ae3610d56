// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines the public catalog API.  These routes let unauthenticated
// visitors browse villas and preview a price without booking.  Withdrawn
// villas are never returned.

package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Kenneson972/allinclusive/internal/model"
    "github.com/Kenneson972/allinclusive/internal/pricing"
    "github.com/Kenneson972/allinclusive/internal/repository"
    "github.com/Kenneson972/allinclusive/internal/service"
)

// VillaHandler serves the catalog browse and quote endpoints.
type VillaHandler struct {
    Catalog      repository.VillaStore
    Reservations *service.ReservationService
    Timeout      time.Duration
}

func NewVillaHandler(catalog repository.VillaStore, svc *service.ReservationService, timeout time.Duration) *VillaHandler {
    return &VillaHandler{Catalog: catalog, Reservations: svc, Timeout: timeout}
}

// quoteReq is the body of POST /api/villas/:id/quote.
type quoteReq struct {
    CheckIn     string `json:"checkin_date"`
    CheckOut    string `json:"checkout_date"`
    GuestsCount int    `json:"guests_count"`
    IsEvent     bool   `json:"is_event"`
    HighSeason  bool   `json:"high_season"`
}

// ListVillas returns the villas matching the optional category and
// min_guests query parameters.  Response JSON contains an "items" array
// and its "count".
func (h *VillaHandler) ListVillas(c echo.Context) error {
    var f repository.VillaFilter
    if cat := strings.TrimSpace(c.QueryParam("category")); cat != "" {
        f.Category = model.Category(strings.ToLower(cat))
        if !f.Category.Valid() {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category", "field": "category"})
        }
    }
    if mg := strings.TrimSpace(c.QueryParam("min_guests")); mg != "" {
        n, err := strconv.Atoi(mg)
        if err != nil || n < 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_guests", "field": "min_guests"})
        }
        f.MinGuests = n
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
    defer cancel()

    villas, err := repository.ListVillas(ctx, h.Catalog, f)
    if err != nil {
        return respondErr(c, &service.PersistenceError{Op: "handler.ListVillas", Err: err})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": villas, "count": len(villas)})
}

// GetVilla returns one villa or 404.
func (h *VillaHandler) GetVilla(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
    defer cancel()

    v, err := h.Catalog.GetVilla(ctx, c.Param("id"))
    if err != nil {
        if errors.Is(err, repository.ErrVillaNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "villa not found"})
        }
        return respondErr(c, &service.PersistenceError{Op: "handler.GetVilla", Err: err})
    }
    return c.JSON(http.StatusOK, v)
}

// QuoteVilla prices a stay at a villa without creating a reservation.
func (h *VillaHandler) QuoteVilla(c echo.Context) error {
    var req quoteReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    in, out, err := parseStayDates(req.CheckIn, req.CheckOut)
    if err != nil {
        return respondErr(c, err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
    defer cancel()

    q, err := h.Reservations.QuoteStay(ctx, c.Param("id"), pricing.Stay{
        CheckIn:    in,
        CheckOut:   out,
        Guests:     req.GuestsCount,
        IsEvent:    req.IsEvent,
        HighSeason: req.HighSeason,
    })
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, q)
}

func (h *VillaHandler) timeout() time.Duration {
    if h.Timeout <= 0 {
        return 5 * time.Second
    }
    return h.Timeout
}

// parseStayDates accepts YYYY-MM-DD or RFC 3339 timestamps.
func parseStayDates(checkin, checkout string) (time.Time, time.Time, error) {
    in, err := parseDate(checkin)
    if err != nil {
        return time.Time{}, time.Time{}, &service.ValidationError{Field: "checkin_date", Reason: "must be a date (YYYY-MM-DD)"}
    }
    out, err := parseDate(checkout)
    if err != nil {
        return time.Time{}, time.Time{}, &service.ValidationError{Field: "checkout_date", Reason: "must be a date (YYYY-MM-DD)"}
    }
    return in, out, nil
}

func parseDate(s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    if t, err := time.Parse(time.DateOnly, s); err == nil {
        return t, nil
    }
    return time.Parse(time.RFC3339, s)
}
