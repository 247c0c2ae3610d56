package middleware

import (
    "context"
    "log/slog"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
)

// RequestID tags every request with an X-Request-ID, reusing the
// client's value when present.
func RequestID() echo.MiddlewareFunc {
    return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
        Generator: uuid.NewString,
        RequestIDHandler: func(c echo.Context, id string) {
            c.Set("request_id", id)
        },
    })
}

// RequestLogger writes one structured line per request to logger.
// Server errors are logged at error level, everything else at info.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogStatus:    true,
        LogMethod:    true,
        LogURI:       true,
        LogRemoteIP:  true,
        LogUserAgent: true,
        LogLatency:   true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            attrs := []slog.Attr{
                slog.Int("status", v.Status),
                slog.String("method", v.Method),
                slog.String("uri", v.URI),
                slog.String("ip", v.RemoteIP),
                slog.String("ua", v.UserAgent),
                slog.String("request_id", v.RequestID),
                slog.Duration("latency", v.Latency),
            }
            level := slog.LevelInfo
            if v.Error != nil {
                attrs = append(attrs, slog.Any("err", v.Error))
            }
            if v.Status >= 500 {
                level = slog.LevelError
            }
            logger.LogAttrs(context.Background(), level, "http", attrs...)
            return nil
        },
    })
}
