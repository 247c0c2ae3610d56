// Command catalog-import loads a villa seed file into the MongoDB
// catalog.  Every villa is validated first; nothing is written unless the
// whole file is valid.  Villas are upserted by id, so re-running an import
// corrects existing entries in place.
//
// Usage:
//
//	catalog-import -file data/villas.json [-mongo mongodb://...] [-db allinclusive] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Kenneson972/allinclusive/internal/database"
	"github.com/Kenneson972/allinclusive/internal/repository"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", envOr("CATALOG_SEED_PATH", "data/villas.json"), "villa seed file (JSON array)")
	uri := flag.String("mongo", os.Getenv("MONGO_URI"), "MongoDB URI")
	dbName := flag.String("db", envOr("MONGO_DB", "allinclusive"), "MongoDB database")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(*file, *uri, *dbName, *dryRun, logger); err != nil {
		logger.Error("catalog import failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(file, uri, dbName string, dryRun bool, logger *slog.Logger) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	villas, err := repository.DecodeSeed(f)
	if err != nil {
		return err
	}
	// NewVillaMemory applies the same validation and uniqueness checks the
	// server does at startup.
	if _, err := repository.NewVillaMemory(villas); err != nil {
		return fmt.Errorf("validate %s: %w", file, err)
	}
	logger.Info("seed file valid", slog.String("file", file), slog.Int("villas", len(villas)))
	if dryRun {
		return nil
	}
	if uri == "" {
		return fmt.Errorf("no MongoDB URI: set -mongo or MONGO_URI")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	client, err := database.OpenMongo(ctx, uri)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	repo := repository.NewVillaRepo(client.Database(dbName).Collection("villas"))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}
	for i, v := range villas {
		if err := repo.Upsert(ctx, v, int64(i)); err != nil {
			return fmt.Errorf("upsert villa %s: %w", v.ID, err)
		}
	}
	logger.Info("catalog imported", slog.String("db", dbName), slog.Int("villas", len(villas)))
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
