package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/Kenneson972/allinclusive/internal/model"
)

// TokenIdentifier resolves a bearer token to the administrator it was
// issued for.  service.AuthGate implements it.
type TokenIdentifier interface {
    Identify(raw string) (model.AdminCredential, bool)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's username and role into the request context.
// This middleware should wrap protected routes so that handlers can access
// the authenticated administrator via `c.Get("username")` and
// `c.Get("role")`.  Every failure is a 401 with the same body, whatever
// the reason the token was rejected.
func JWTAuth(gate TokenIdentifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " (scheme is case-insensitive).
            auth := c.Request().Header.Get("Authorization")
            scheme, raw, ok := strings.Cut(auth, " ")
            if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
                c.Response().Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }

            cred, ok := gate.Identify(strings.TrimSpace(raw))
            if !ok {
                c.Response().Header().Set("WWW-Authenticate", `Bearer realm="admin", error="invalid_token"`)
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            c.Set("username", cred.Username)
            c.Set("role", cred.Role)
            return next(c)
        }
    }
}
