package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Kenneson972/allinclusive/internal/config"
	"github.com/Kenneson972/allinclusive/internal/handler"    // import the handlers that implement business logic
	"github.com/Kenneson972/allinclusive/internal/middleware" // JWT, role, rate limit and cache middleware
	"github.com/Kenneson972/allinclusive/internal/model"
)

// Deps carries everything the routes need.  Redis may be nil.
type Deps struct {
	Logger       *slog.Logger
	Redis        *redis.Client
	RateLimit    config.RateLimitConfig
	Cache        config.CacheConfig
	CORSOrigins  []string
	Gate         middleware.TokenIdentifier
	Auth         *handler.AuthHandler
	Villas       *handler.VillaHandler
	Reservations *handler.ReservationHandler
	Ready        map[string]handler.Pinger
}

// New builds the Echo instance with the global middleware chain and all
// routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  d.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID, "Idempotency-Key"},
		ExposeHeaders: []string{echo.HeaderXRequestID, "X-Cache", "Idempotency-Key", "Retry-After"},
		MaxAge:        12 * 3600,
	}))
	e.Use(echomw.BodyLimit("64K"))

	RegisterRoutes(e, d.Ready)
	RegisterPublic(e, d)
	RegisterAdmin(e, d)
	return e
}

// RegisterRoutes registers the health endpoints.  /healthz only reports
// that the process is up; /readyz also checks the backing stores.
func RegisterRoutes(e *echo.Echo, ready map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(ready))
}

// RegisterPublic registers unauthenticated endpoints: catalog browse,
// quote preview, booking submission and the login/verify pair.  Booking
// and login are rate limited per client.
func RegisterPublic(e *echo.Echo, d Deps) {
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger)

	api := e.Group("/api")
	api.GET("/villas", d.Villas.ListVillas, middleware.NewRedisCache(d.Cache, d.Redis))
	api.GET("/villas/:id", d.Villas.GetVilla)
	api.POST("/villas/:id/quote", d.Villas.QuoteVilla)
	api.POST("/reservations", d.Reservations.CreateReservation, limit)

	api.POST("/admin/login", d.Auth.Login, limit)
	api.POST("/admin/verify-token", d.Auth.VerifyToken)
}

// RegisterAdmin registers endpoints that require an administrator bearer
// token.
func RegisterAdmin(e *echo.Echo, d Deps) {
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(d.Gate),
		middleware.RequireRole(model.RoleAdmin),
	}

	admin := e.Group("/api/admin", auth...)
	admin.GET("/me", d.Auth.Me)
	admin.GET("/reservations", d.Reservations.ListReservations)
	admin.GET("/reservations/:id", d.Reservations.GetReservation)

	stats := e.Group("/api/stats", auth...)
	stats.GET("/dashboard", d.Reservations.DashboardStats)
}
