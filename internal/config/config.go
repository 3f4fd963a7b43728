// Package config loads service settings from an optional YAML file, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string   `yaml:"port"`
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`

	// PlanStore is "sql" or "redis".
	PlanStore string `yaml:"plan_store"`

	Routing Routing `yaml:"routing"`
	Solver  Solver  `yaml:"solver"`
	Log     Log     `yaml:"log"`

	DepotAddress string `yaml:"depot_address"`
	SeedPath     string `yaml:"seed_path"`
}

type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Redis struct {
	URL    string        `yaml:"url"`
	TTL    time.Duration `yaml:"ttl"`
	Prefix string        `yaml:"prefix"`
}

type Routing struct {
	// MatrixProvider is "ors", "osrm" or "mock"; Geocoder is "ors",
	// "nominatim" or "mock".
	MatrixProvider string `yaml:"matrix_provider"`
	Geocoder       string `yaml:"geocoder"`

	ORSAPIKey        string  `yaml:"ors_api_key"`
	ORSBaseURL       string  `yaml:"ors_base_url"`
	OSRMBaseURL      string  `yaml:"osrm_base_url"`
	NominatimBaseURL string  `yaml:"nominatim_base_url"`
	UserAgent        string  `yaml:"user_agent"`
	RequestsPerSec   float64 `yaml:"requests_per_second"`
	RowConcurrency   int     `yaml:"row_concurrency"`
	CacheSize        int     `yaml:"cache_size"`
}

// Solver holds solve defaults; requests may override them.
type Solver struct {
	Objective      string        `yaml:"objective"`
	TimeLimit      time.Duration `yaml:"time_limit"`
	HorizonSeconds float64       `yaml:"horizon_seconds"`
	TimeDimension  bool          `yaml:"time_dimension"`
	FirstSolution  string        `yaml:"first_solution"`
	Workers        int           `yaml:"workers"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Port:      "8080",
		Database:  Database{Driver: "sqlite", DSN: "data/app.db"},
		Redis:     Redis{URL: "redis://localhost:6379/0", TTL: 7 * 24 * time.Hour, Prefix: "vrp:plan:"},
		PlanStore: "sql",
		Routing: Routing{
			MatrixProvider:   "ors",
			Geocoder:         "ors",
			ORSBaseURL:       "https://api.openrouteservice.org",
			OSRMBaseURL:      "https://router.project-osrm.org",
			NominatimBaseURL: "https://nominatim.openstreetmap.org",
			UserAgent:        "vrp-route-service/1.0",
			RequestsPerSec:   1,
			RowConcurrency:   4,
			CacheSize:        4096,
		},
		Solver: Solver{
			Objective:      "distance",
			TimeLimit:      10 * time.Second,
			HorizonSeconds: 86400,
		},
		Log:          Log{Level: "info", Format: "json"},
		DepotAddress: "1901 W Madison St, Phoenix, AZ 85009",
		SeedPath:     "data/seeds/orders.json",
	}
}

// Load reads .env (if present), then VRP_CONFIG_FILE (if set), then applies
// environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("VRP_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("load config: parse %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = Get("PORT", cfg.Port)
	cfg.Database.Driver = Get("DB_DRIVER", cfg.Database.Driver)
	// DATABASE_URL wins over DB_PATH, matching how postgres deployments are
	// configured.
	cfg.Database.DSN = Get("DB_PATH", cfg.Database.DSN)
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.DSN = url
		if os.Getenv("DB_DRIVER") == "" {
			cfg.Database.Driver = "postgres"
		}
	}

	cfg.Redis.URL = Get("REDIS_URL", cfg.Redis.URL)
	cfg.Redis.Prefix = Get("REDIS_PREFIX", cfg.Redis.Prefix)
	cfg.PlanStore = Get("PLAN_STORE", cfg.PlanStore)

	r := &cfg.Routing
	r.MatrixProvider = Get("MATRIX_PROVIDER", r.MatrixProvider)
	r.Geocoder = Get("GEOCODER", r.Geocoder)
	r.ORSAPIKey = Get("ORS_API_KEY", r.ORSAPIKey)
	r.ORSBaseURL = Get("ORS_BASE_URL", r.ORSBaseURL)
	r.OSRMBaseURL = Get("OSRM_BASE_URL", r.OSRMBaseURL)
	r.NominatimBaseURL = Get("NOMINATIM_BASE_URL", r.NominatimBaseURL)
	r.UserAgent = Get("USER_AGENT", r.UserAgent)

	s := &cfg.Solver
	s.Objective = Get("VRP_OBJECTIVE", s.Objective)
	s.FirstSolution = Get("VRP_FIRST_SOLUTION", s.FirstSolution)

	cfg.Log.Level = Get("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = Get("LOG_FORMAT", cfg.Log.Format)
	cfg.DepotAddress = Get("HUB_ADDRESS", cfg.DepotAddress)
	cfg.SeedPath = Get("SEED_PATH", cfg.SeedPath)

	var err error
	if r.RequestsPerSec, err = getEnvFloat("PROVIDER_RPS", r.RequestsPerSec); err != nil {
		return err
	}
	if r.RowConcurrency, err = getEnvInt("MATRIX_ROW_CONCURRENCY", r.RowConcurrency); err != nil {
		return err
	}
	if r.CacheSize, err = getEnvInt("CACHE_SIZE", r.CacheSize); err != nil {
		return err
	}
	if cfg.Redis.TTL, err = getEnvDuration("REDIS_TTL", cfg.Redis.TTL); err != nil {
		return err
	}
	if s.TimeLimit, err = getEnvDuration("VRP_TIME_LIMIT", s.TimeLimit); err != nil {
		return err
	}
	if s.HorizonSeconds, err = getEnvFloat("VRP_HORIZON_SECONDS", s.HorizonSeconds); err != nil {
		return err
	}
	if s.TimeDimension, err = getEnvBool("VRP_TIME_DIMENSION", s.TimeDimension); err != nil {
		return err
	}
	if s.Workers, err = getEnvInt("VRP_WORKERS", s.Workers); err != nil {
		return err
	}
	return nil
}

// Get returns the trimmed value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}
	return d, nil
}
