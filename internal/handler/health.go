package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "log/slog"
    "net/http" // net/http provides status codes and response helpers
    "time"

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Pinger is any dependency that can report its reachability.
type Pinger func(ctx context.Context) error

// Ready checks every named dependency and answers 503 when one fails.
// The body lists each dependency as "ok" or "unavailable"; the cause is
// only logged since driver errors can carry hosts and credentials.
func Ready(deps map[string]Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        status := http.StatusOK
        out := make(map[string]string, len(deps))
        for name, ping := range deps {
            if err := ping(ctx); err != nil {
                slog.WarnContext(ctx, "readiness check failed", slog.String("dependency", name), slog.Any("err", err))
                status = http.StatusServiceUnavailable
                out[name] = "unavailable"
                continue
            }
            out[name] = "ok"
        }
        return c.JSON(status, echo.Map{"status": http.StatusText(status), "checks": out})
    }
}
