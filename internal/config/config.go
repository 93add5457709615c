package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	CacheNone     = "none"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

type Config struct {
	Port           string
	RequestTimeout time.Duration

	Region             string
	NominatimURL       string
	NominatimUserAgent string
	GeocodeTimeout     time.Duration
	GeocodeInterval    time.Duration
	GeocodeWorkers     int
	GeocodeAttempts    int

	AvgSpeedKmh       float64
	StopOverheadHours float64
	ApplyTraffic      bool
	TrafficLocation   *time.Location

	CacheBackend  string
	DBPath        string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	SeedPath      string
}

// LoadDotEnv reads a .env file into the process environment if one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration from the environment and validates it.
// Invalid values are reported together.
func Load() (*Config, error) {
	var errs []error
	p := parser{errs: &errs}

	cfg := &Config{
		Port:           Get("PORT", "8080"),
		RequestTimeout: p.duration("REQUEST_TIMEOUT", 120*time.Second),

		Region:             Get("REGION_BIAS", "Lagos, Nigeria"),
		NominatimURL:       Get("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: Get("NOMINATIM_USER_AGENT", "route-optimizer/1.0"),
		GeocodeTimeout:     p.duration("GEOCODE_TIMEOUT", 10*time.Second),
		GeocodeInterval:    p.duration("GEOCODE_INTERVAL", time.Second),
		GeocodeWorkers:     p.integer("GEOCODE_WORKERS", 1),
		GeocodeAttempts:    p.integer("GEOCODE_ATTEMPTS", 1),

		AvgSpeedKmh:       p.float("AVG_SPEED_KMH", 25),
		StopOverheadHours: p.float("STOP_OVERHEAD_HOURS", 0.5),
		ApplyTraffic:      p.boolean("APPLY_TRAFFIC", false),

		CacheBackend:  strings.ToLower(Get("CACHE_BACKEND", CacheNone)),
		DBPath:        Get("DB_PATH", "data/geocode.db"),
		DatabaseURL:   Get("DATABASE_URL", ""),
		RedisAddr:     Get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       p.integer("REDIS_DB", 0),
		CacheTTL:      p.duration("CACHE_TTL", 720*time.Hour),
		SeedPath:      Get("SEED_PATH", "data/seeds/geocodes.json"),
	}

	tz := Get("TRAFFIC_TIMEZONE", "Africa/Lagos")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		errs = append(errs, fmt.Errorf("TRAFFIC_TIMEZONE: %w", err))
	}
	cfg.TrafficLocation = loc

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("load config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.AvgSpeedKmh <= 0 {
		errs = append(errs, fmt.Errorf("AVG_SPEED_KMH must be positive, got %v", c.AvgSpeedKmh))
	}
	if c.StopOverheadHours < 0 {
		errs = append(errs, fmt.Errorf("STOP_OVERHEAD_HOURS must not be negative, got %v", c.StopOverheadHours))
	}
	if c.GeocodeWorkers < 1 {
		errs = append(errs, fmt.Errorf("GEOCODE_WORKERS must be at least 1, got %d", c.GeocodeWorkers))
	}
	if c.GeocodeAttempts < 1 {
		errs = append(errs, fmt.Errorf("GEOCODE_ATTEMPTS must be at least 1, got %d", c.GeocodeAttempts))
	}
	if c.GeocodeTimeout <= 0 {
		errs = append(errs, errors.New("GEOCODE_TIMEOUT must be positive"))
	}
	if c.GeocodeInterval < 0 {
		errs = append(errs, errors.New("GEOCODE_INTERVAL must not be negative"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}

	switch c.CacheBackend {
	case CacheNone, CacheSQLite, CacheRedis:
	case CachePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when CACHE_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND %q is not one of none, sqlite, postgres, redis", c.CacheBackend))
	}

	return errors.Join(errs...)
}

// parser collects conversion errors so Load can report all of them at once.
type parser struct {
	errs *[]error
}

func (p parser) fail(key string, raw string, err error) {
	*p.errs = append(*p.errs, fmt.Errorf("%s=%q: %w", key, raw, err))
}

func (p parser) duration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return d
}

func (p parser) integer(key string, fallback int) int {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return n
}

func (p parser) float(key string, fallback float64) float64 {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return f
}

func (p parser) boolean(key string, fallback bool) bool {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return b
}
