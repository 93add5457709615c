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

// SQLite backed cache mapping geocode queries to locations.
// Keys are expected to be consistent (e.g., normalized) by the caller.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch cached locations for the given query keys.
func (s *SqliteGeocodeCache) GetMany(
	ctx context.Context,
	keys []string,
) (_ map[string]domain.ResolvedLocation, err error) {
	defer obs.Time(ctx, "geocode.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]domain.ResolvedLocation{}, nil
	}

	ph := make([]string, 0, len(uniq))
	args := make([]any, 0, len(uniq))
	for _, k := range uniq {
		ph = append(ph, "?")
		args = append(args, k)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        address,
        full_address,
        lat,
        lon
    FROM geocode_cache
    WHERE address IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanLocations(rows, len(uniq))
}

// Store query -> location mappings in the cache.
func (s *SqliteGeocodeCache) PutMany(ctx context.Context, results map[string]domain.ResolvedLocation) (err error) {
	defer obs.Time(ctx, "geocode.sqlite.PutMany")(&err)

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
	INSERT OR REPLACE INTO geocode_cache (
        address,
        full_address,
        lat,
        lon
    )
    VALUES (?, ?, ?, ?);
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
