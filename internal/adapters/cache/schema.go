package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"route-optimizer/internal/domain"
	"strings"
)

// Initialize the geocode cache schema. The DDL is valid for both sqlite and postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        full_address TEXT NOT NULL DEFAULT '',
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL
    );
	`

	statements := []string{
		createGeocodeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type GeocodeSeed struct {
	Query       string  `json:"query"`
	FullAddress string  `json:"full_address"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// GeocodeWriter is the write half of ports.GeocodeCache.
type GeocodeWriter interface {
	PutMany(ctx context.Context, results map[string]domain.ResolvedLocation) error
}

// Warm a geocode cache with entries from a JSON file. It returns the number of
// entries written.
func SeedFromJSON(ctx context.Context, cache GeocodeWriter, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: read %q: %w", jsonPath, err)
	}

	var data []GeocodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed geocodes: parse json: %w", err)
	}

	rows := make(map[string]domain.ResolvedLocation, len(data))
	for i, item := range data {
		query := strings.Join(strings.Fields(item.Query), " ")
		if query == "" {
			return 0, fmt.Errorf("seed geocodes: item at index %d: query cannot be empty", i+1)
		}

		coords := domain.Coordinates{Lat: item.Lat, Lon: item.Lon}
		if !coords.Valid() {
			return 0, fmt.Errorf("seed geocodes: item at index %d: coordinates out of range", i+1)
		}

		rows[query] = domain.ResolvedLocation{
			Address:     query,
			FullAddress: item.FullAddress,
			Coordinates: coords,
		}
	}

	if err := cache.PutMany(ctx, rows); err != nil {
		return 0, fmt.Errorf("seed geocodes: %w", err)
	}

	return len(rows), nil
}
