package middleware

// identity.go defines helper functions shared across middleware files.  It
// provides the caller identity used in rate-limit keys: the administrator
// username stored by JWTAuth, or "anon" for public requests.

import "github.com/labstack/echo/v4"

// currentUser extracts the authenticated username from context.
func currentUser(c echo.Context) string {
    if s, ok := c.Get("username").(string); ok && s != "" {
        return s
    }
    return "anon"
}
