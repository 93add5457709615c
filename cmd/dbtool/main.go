package main

import (
	"context"
	"database/sql"
	"log"
	"route-optimizer/internal/adapters/cache"
	"route-optimizer/internal/config"
	"route-optimizer/internal/platform/db"
)

// dbtool creates the geocode cache schema (sqlite or postgres, per
// CACHE_BACKEND) and warms it from SEED_PATH.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var conn *sql.DB
	switch cfg.CacheBackend {
	case config.CachePostgres:
		conn, err = db.Open(cfg.DatabaseURL)
	case config.CacheSQLite:
		conn, err = db.OpenSQLite(cfg.DBPath)
	default:
		log.Fatalf("dbtool: CACHE_BACKEND must be sqlite or postgres, got %q", cfg.CacheBackend)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(context.Background(), cfg, conn); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, cfg *config.Config, conn *sql.DB) error {
	log.Println("Initializing geocode cache schema...")
	if err := cache.InitSchema(conn); err != nil {
		return err
	}
	log.Println("Schema ready.")

	var writer cache.GeocodeWriter
	if cfg.CacheBackend == config.CachePostgres {
		writer = cache.NewSQLGeocodeCache(conn)
	} else {
		writer = cache.NewSqliteGeocodeCache(conn)
	}

	log.Printf("Seeding geocode cache from %s...", cfg.SeedPath)
	n, err := cache.SeedFromJSON(ctx, writer, cfg.SeedPath)
	if err != nil {
		return err
	}
	log.Printf("Seeding complete. entries=%d", n)

	return nil
}
