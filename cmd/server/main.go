package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Kenneson972/allinclusive/internal/config"
	"github.com/Kenneson972/allinclusive/internal/database"
	"github.com/Kenneson972/allinclusive/internal/handler"
	"github.com/Kenneson972/allinclusive/internal/model"
	"github.com/Kenneson972/allinclusive/internal/pricing"
	"github.com/Kenneson972/allinclusive/internal/queue"
	"github.com/Kenneson972/allinclusive/internal/repository"
	"github.com/Kenneson972/allinclusive/internal/router"
	"github.com/Kenneson972/allinclusive/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// ---- Stores ----
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	catalog, closeCatalog, pingCatalog, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		logger.Warn("redis unavailable: cache and idempotency disabled, local rate limiting")
	} else {
		defer rdb.Close()
	}

	// ---- Auth ----
	creds, err := loadAdmins(ctx, cfg, db)
	if err != nil {
		return err
	}
	gate, err := service.NewAuthGate(cfg.JWTSecret, creds)
	if err != nil {
		return err
	}

	// ---- Services ----
	qcfg := config.LoadQueueConfig()
	var publisher service.EventPublisher
	var rabbit *service.ReservationPublisher
	if qcfg.Enabled {
		rabbit = service.NewReservationPublisher(qcfg.URL, qcfg.Queue, logger)
		defer rabbit.Close()
		publisher = rabbit
	}
	reservations := service.NewReservationService(
		catalog,
		repository.NewReservationRepo(db),
		pricing.NewEngine(),
		publisher,
		logger,
	)

	// ---- HTTP ----
	var idem handler.IdempotencyStore
	ready := map[string]handler.Pinger{
		"mysql":   db.PingContext,
		"catalog": pingCatalog,
	}
	if rdb != nil {
		idem = repository.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)
		ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	e := router.New(router.Deps{
		Logger:       logger,
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        config.LoadCacheConfig(),
		CORSOrigins:  splitList(os.Getenv("CORS_ORIGINS"), "*"),
		Gate:         gate,
		Auth:         handler.NewAuthHandler(gate),
		Villas:       handler.NewVillaHandler(catalog, reservations, cfg.RequestTimeout),
		Reservations: handler.NewReservationHandler(reservations, idem, cfg.RequestTimeout),
		Ready:        ready,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", srv.Addr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	if qcfg.Enabled {
		consumer := &queue.Consumer{URL: qcfg.URL, Queue: qcfg.Queue, LogPath: qcfg.LogPath, Log: logger}
		g.Go(func() error { return consumer.Run(gCtx) })
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	return g.Wait()
}

// openCatalog selects MongoDB when MONGO_URI is set and the seed file
// otherwise.
func openCatalog(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.VillaStore, func(), handler.Pinger, error) {
	if cfg.MongoURI == "" {
		mem, err := repository.LoadVillaMemory(cfg.CatalogSeedPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load catalog seed %s: %w", cfg.CatalogSeedPath, err)
		}
		n, _ := repository.CountVillas(ctx, mem, repository.VillaFilter{})
		logger.Info("catalog loaded from seed file", slog.String("path", cfg.CatalogSeedPath), slog.Int("villas", n))
		return mem, func() {}, func(context.Context) error { return nil }, nil
	}

	client, err := database.OpenMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open mongo: %w", err)
	}
	repo := repository.NewVillaRepo(client.Database(cfg.MongoDB).Collection("villas"))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, nil, fmt.Errorf("villa indexes: %w", err)
	}
	logger.Info("catalog served from mongodb", slog.String("db", cfg.MongoDB))
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
	return repo, closeFn, ping, nil
}

// loadAdmins builds the administrator table once at startup.
func loadAdmins(ctx context.Context, cfg config.Config, db *sql.DB) ([]model.AdminCredential, error) {
	if !strings.EqualFold(cfg.AdminSource, "mysql") {
		return cfg.Admins.Credentials(cfg.BcryptCost)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	users, err := repository.NewAdminRepo(db).ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load admin_users: %w", err)
	}
	creds := make([]model.AdminCredential, 0, len(users))
	for _, u := range users {
		creds = append(creds, model.AdminCredential{Username: u.Username, PasswordHash: u.PasswordHash, Role: u.Role})
	}
	return creds, nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func splitList(s, def string) []string {
	if strings.TrimSpace(s) == "" {
		s = def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
