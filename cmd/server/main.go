package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"route-optimizer/internal/adapters/cache"
	"route-optimizer/internal/adapters/geocoding"
	"route-optimizer/internal/api"
	"route-optimizer/internal/config"
	"route-optimizer/internal/platform/db"
	"route-optimizer/internal/platform/pacing"
	"route-optimizer/internal/ports"
	"route-optimizer/internal/services"
	"time"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Nominatim, geocode cache) behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	nominatim, err := geocoding.NewNominatimGeocoder(geocoding.NominatimConfig{
		BaseURL:   cfg.NominatimURL,
		UserAgent: cfg.NominatimUserAgent,
		Region:    cfg.Region,
		Timeout:   cfg.GeocodeTimeout,
		Attempts:  cfg.GeocodeAttempts,
		Pacer:     pacing.NewInterval(cfg.GeocodeInterval),
	})
	if err != nil {
		log.Fatal(err)
	}

	geocodeCache, closeCache, err := openGeocodeCache(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	var geocoder ports.Geocoder = nominatim
	if geocodeCache != nil {
		// Cache keys are the region-qualified queries, so changing REGION_BIAS
		// never serves results resolved for another region.
		geocoder = geocoding.NewCachedGeocoder(nominatim, geocodeCache, nominatim)
	}

	estimator, err := services.NewDurationEstimator(cfg.AvgSpeedKmh, cfg.StopOverheadHours)
	if err != nil {
		log.Fatal(err)
	}

	optimizer := &services.RouteOptimizer{
		Geocoder:     geocoder,
		Solver:       services.NewNearestNeighborSolver(),
		Estimator:    estimator,
		Traffic:      services.NewTrafficModel(cfg.TrafficLocation),
		Workers:      cfg.GeocodeWorkers,
		ApplyTraffic: cfg.ApplyTraffic,
	}

	router := api.NewRouter(optimizer, cfg.RequestTimeout)

	// Write timeout leaves room for the request deadline: geocoding is paced
	// at one call per interval, so large batches take a while.
	log.Printf("Server listening addr=:%s region=%q cache=%s workers=%d", cfg.Port, cfg.Region, cfg.CacheBackend, cfg.GeocodeWorkers)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Printf("server stopped: %v", err)
	}
}

// openGeocodeCache builds the configured cache backend. It returns a nil cache
// when caching is disabled.
func openGeocodeCache(cfg *config.Config) (ports.GeocodeCache, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case config.CacheSQLite:
		conn, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, noop, err
		}
		if err := cache.InitSchema(conn); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return cache.NewSqliteGeocodeCache(conn), closer(conn), nil

	case config.CachePostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return cache.NewSQLGeocodeCache(conn), closer(conn), nil

	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("open redis cache %s: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisGeocodeCache(client, cfg.CacheTTL), func() { client.Close() }, nil

	default:
		return nil, noop, nil
	}
}

func closer(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Printf("close cache db: %v", err)
		}
	}
}
