package cache

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"route-optimizer/internal/domain"
	"route-optimizer/internal/platform/db"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, InitSchema(conn))
	return conn
}

func yaba() domain.ResolvedLocation {
	return domain.ResolvedLocation{
		Address:     "Yaba Market, Lagos, Nigeria",
		FullAddress: "Yaba Market, Yaba, Lagos Mainland, Lagos, Nigeria",
		Coordinates: domain.Coordinates{Lat: 6.5095, Lon: 3.3711},
	}
}

func TestSqliteGeocodeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openTestDB(t))

	require.NoError(t, c.PutMany(ctx, map[string]domain.ResolvedLocation{
		"Yaba Market, Lagos, Nigeria": yaba(),
	}))

	got, err := c.GetMany(ctx, []string{"Yaba Market, Lagos, Nigeria", "Unknown, Lagos, Nigeria", " ", "Yaba Market, Lagos, Nigeria"})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, yaba(), got["Yaba Market, Lagos, Nigeria"])
}

func TestSqliteGeocodeCacheOverwrites(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openTestDB(t))

	key := "Yaba Market, Lagos, Nigeria"
	require.NoError(t, c.PutMany(ctx, map[string]domain.ResolvedLocation{key: yaba()}))

	moved := yaba()
	moved.Lat = 6.51
	require.NoError(t, c.PutMany(ctx, map[string]domain.ResolvedLocation{key: moved}))

	got, err := c.GetMany(ctx, []string{key})
	require.NoError(t, err)
	assert.Equal(t, 6.51, got[key].Lat)
}

func TestSqliteGeocodeCacheEdgeCases(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openTestDB(t))

	got, err := c.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, c.PutMany(ctx, nil))
	assert.Error(t, c.PutMany(ctx, map[string]domain.ResolvedLocation{"  ": yaba()}))

	var nilDB SqliteGeocodeCache
	_, err = nilDB.GetMany(ctx, []string{"x"})
	assert.Error(t, err)
}

func TestSeedFromJSON(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openTestDB(t))

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"query": "Yaba  Market, Lagos, Nigeria", "full_address": "Yaba", "lat": 6.5095, "lon": 3.3711},
		{"query": "Ikeja, Lagos, Nigeria", "full_address": "Ikeja", "lat": 6.6018, "lon": 3.3515}
	]`), 0o600))

	n, err := SeedFromJSON(ctx, c, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := c.GetMany(ctx, []string{"Yaba Market, Lagos, Nigeria", "Ikeja, Lagos, Nigeria"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSeedFromJSONRejectsBadEntries(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openTestDB(t))
	dir := t.TempDir()

	for name, body := range map[string]string{
		"empty.json": `[{"query": " ", "lat": 1, "lon": 1}]`,
		"range.json": `[{"query": "x", "lat": 100, "lon": 1}]`,
		"bad.json":   `{`,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		_, err := SeedFromJSON(ctx, c, path)
		assert.Error(t, err, name)
	}

	_, err := SeedFromJSON(ctx, c, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
