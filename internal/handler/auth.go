package handler

import (
    "log/slog"
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/Kenneson972/allinclusive/internal/model"
    "github.com/Kenneson972/allinclusive/internal/utils"
)

// TokenGate is the part of service.AuthGate the auth endpoints use.
type TokenGate interface {
    Authenticate(username, password string) (model.AdminCredential, bool)
    IssueToken(cred model.AdminCredential) (utils.AccessToken, error)
    VerifyToken(raw string) (string, bool)
}

// AuthHandler bundles dependencies for the admin auth endpoints.
type AuthHandler struct {
    Gate TokenGate
}

func NewAuthHandler(g TokenGate) *AuthHandler { return &AuthHandler{Gate: g} }

// ----- DTOs -----

type loginReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}

type loginResp struct {
    AccessToken string    `json:"access_token"`
    TokenType   string    `json:"token_type"`
    ExpiresAt   time.Time `json:"expires_at"`
}

type verifyReq struct {
    Token string `json:"token"`
}

type verifyResp struct {
    Valid    bool   `json:"valid"`
    Username string `json:"username,omitempty"`
}

// Login: verify credentials and return a bearer token.  Unknown users and
// wrong passwords get the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
    }

    cred, ok := h.Gate.Authenticate(req.Username, req.Password)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    access, err := h.Gate.IssueToken(cred)
    if err != nil {
        slog.ErrorContext(c.Request().Context(), "issue token", slog.Any("err", err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(http.StatusOK, loginResp{
        AccessToken: access.Token,
        TokenType:   "bearer",
        ExpiresAt:   access.Exp,
    })
}

// VerifyToken reports whether a token is currently valid.  An invalid
// token is an ordinary answer, not an error.
func (h *AuthHandler) VerifyToken(c echo.Context) error {
    var req verifyReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusOK, verifyResp{Valid: false})
    }
    username, ok := h.Gate.VerifyToken(strings.TrimSpace(req.Token))
    if !ok {
        return c.JSON(http.StatusOK, verifyResp{Valid: false})
    }
    return c.JSON(http.StatusOK, verifyResp{Valid: true, Username: username})
}

// Me returns the identity attached by the JWT middleware.
func (h *AuthHandler) Me(c echo.Context) error {
    username, _ := c.Get("username").(string)
    role, _ := c.Get("role").(string)
    return c.JSON(http.StatusOK, echo.Map{"username": username, "role": role})
}
