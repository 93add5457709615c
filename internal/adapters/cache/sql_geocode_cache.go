package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-optimizer/internal/domain"
	"route-optimizer/internal/platform/obs"
	"strings"
)

// SQLGeocodeCache is a postgres-backed cache mapping geocode queries to locations.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch cached locations for the given query keys.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	keys []string,
) (_ map[string]domain.ResolvedLocation, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]domain.ResolvedLocation{}, nil
	}

	q := `
	SELECT address, full_address, lat, lon
    FROM geocode_cache
    WHERE address = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanLocations(rows, len(uniq))
}

// Store query -> location mappings in the cache.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.ResolvedLocation) (err error) {
	defer obs.Time(ctx, "geocode.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (address, full_address, lat, lon)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (address) DO UPDATE
	SET full_address = EXCLUDED.full_address,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, loc := range results {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}

		if _, err := stmt.ExecContext(ctx, key, loc.FullAddress, loc.Lat, loc.Lon); err != nil {
			return fmt.Errorf("insert geocode cache address=%q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}

// uniqueKeys trims keys and drops blanks and duplicates, keeping first-seen order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}

func scanLocations(rows *sql.Rows, sizeHint int) (map[string]domain.ResolvedLocation, error) {
	out := make(map[string]domain.ResolvedLocation, sizeHint)
	for rows.Next() {
		var key, full string
		var lat, lon float64
		if err := rows.Scan(&key, &full, &lat, &lon); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[key] = domain.ResolvedLocation{
			Address:     key,
			FullAddress: full,
			Coordinates: domain.Coordinates{Lat: lat, Lon: lon},
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}
	return out, nil
}
