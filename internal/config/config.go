package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend types
const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

// Config holds the service configuration
type Config struct {
	Server struct {
		Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
		Port         int           `env:"SERVER_PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	}

	Backend struct {
		Type string `env:"BACKEND_TYPE" envDefault:"postgres"`
	}

	Database struct {
		Host     string `env:"DB_HOST" envDefault:"localhost"`
		Port     int    `env:"DB_PORT" envDefault:"5432"`
		User     string `env:"DB_USER" envDefault:"postgres"`
		Password string `env:"DB_PASSWORD"`
		DBName   string `env:"DB_NAME" envDefault:"barmaster"`
		SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
		LogLevel string `env:"DB_LOG_LEVEL" envDefault:"warn"`
		Migrate  bool   `env:"DB_MIGRATE" envDefault:"false"`
	}

	Supabase struct {
		URL        string        `env:"SUPABASE_URL"`
		AnonKey    string        `env:"SUPABASE_ANON_KEY"`
		ServiceKey string        `env:"SUPABASE_SERVICE_KEY"`
		Timeout    time.Duration `env:"SUPABASE_TIMEOUT" envDefault:"10s"`

		// Table names of the deployed schema
		ProfilesTable       string `env:"SUPABASE_PROFILES_TABLE" envDefault:"perfiles"`
		EstablishmentsTable string `env:"SUPABASE_ESTABLISHMENTS_TABLE" envDefault:"bares"`
		SectorsTable        string `env:"SUPABASE_SECTORS_TABLE" envDefault:"sectores"`
		TablesTable         string `env:"SUPABASE_TABLES_TABLE" envDefault:"mesas"`
	}

	Cache struct {
		Enabled bool   `env:"CACHE_ENABLED" envDefault:"true"`
		Type    string `env:"CACHE_TYPE" envDefault:"memory"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Session struct {
		Secret string        `env:"SESSION_SECRET"`
		TTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	}

	Admission struct {
		TimeZone       string `env:"ADMISSION_TIMEZONE" envDefault:"UTC"`
		LoginPerMinute int    `env:"LOGIN_RATE_PER_MIN" envDefault:"20"`
		LoginBurst     int    `env:"LOGIN_RATE_BURST" envDefault:"5"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
	}

	CORS struct {
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
		AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envDefault:"GET,POST,DELETE,OPTIONS"`
		AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envDefault:"Accept,Authorization,Content-Type"`
	}

	Metrics struct {
		Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	}

	Tracing struct {
		Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		Insecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	}
}

// Load reads configuration from the environment, after loading an optional .env file.
// Malformed values are reported rather than replaced by defaults.
func Load() (*Config, error) {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	} else {
		// .env is optional
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Supabase.URL = strings.TrimRight(cfg.Supabase.URL, "/")
	for _, list := range []*[]string{&cfg.CORS.AllowedOrigins, &cfg.CORS.AllowedMethods, &cfg.CORS.AllowedHeaders} {
		for i := range *list {
			(*list)[i] = strings.TrimSpace((*list)[i])
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port))
	}

	switch c.Backend.Type {
	case BackendPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for the postgres backend"))
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" || c.Supabase.ServiceKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL, SUPABASE_ANON_KEY and SUPABASE_SERVICE_KEY are required for the supabase backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported BACKEND_TYPE %q", c.Backend.Type))
	}

	if c.Cache.Enabled && c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		errs = append(errs, fmt.Errorf("unsupported CACHE_TYPE %q", c.Cache.Type))
	}

	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	if _, err := time.LoadLocation(c.Admission.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("invalid ADMISSION_TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}

// Location returns the time zone admission dates are evaluated in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Admission.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
