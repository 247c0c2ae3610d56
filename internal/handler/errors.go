package handler

import (
    "errors"
    "log/slog"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/Kenneson972/allinclusive/internal/pricing"
    "github.com/Kenneson972/allinclusive/internal/service"
)

// respondErr maps service and pricing errors onto HTTP responses.  Bodies
// never carry internal details for server-side failures.
func respondErr(c echo.Context, err error) error {
    var (
        ve *service.ValidationError
        ce pricing.CapacityError
        pe *service.PersistenceError
    )
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
    case errors.Is(err, pricing.ErrInvalidGuests):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": pricing.ErrInvalidGuests.Error(), "field": "guests_count"})
    case errors.Is(err, service.ErrVillaNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "villa not found"})
    case errors.Is(err, service.ErrReservationNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
    case errors.As(err, &ce):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":    pricing.ErrCapacityExceeded.Error(),
            "guests":   ce.Guests,
            "capacity": ce.Capacity,
        })
    case errors.Is(err, pricing.ErrInvalidDateRange):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": pricing.ErrInvalidDateRange.Error()})
    case errors.As(err, &pe):
        slog.ErrorContext(c.Request().Context(), "request failed", slog.String("path", c.Path()), slog.Any("err", err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage unavailable"})
    default:
        slog.ErrorContext(c.Request().Context(), "request failed", slog.String("path", c.Path()), slog.Any("err", err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
