package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" json:"server"`
	Database    DatabaseConfig    `yaml:"database" json:"database"`
	MusicBrainz MusicBrainzConfig `yaml:"musicbrainz" json:"musicbrainz"`
	Discogs     DiscogsConfig     `yaml:"discogs" json:"discogs"`
	Scraper     ScraperConfig     `yaml:"scraper" json:"scraper"`
	Enrichment  EnrichmentConfig  `yaml:"enrichment" json:"enrichment"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host       string `yaml:"host" json:"host" env:"REPERTOIRE_HOST" default:"127.0.0.1"`
	Port       int    `yaml:"port" json:"port" env:"REPERTOIRE_PORT" default:"5173"`
	EnableCORS bool   `yaml:"enable_cors" json:"enable_cors" env:"REPERTOIRE_ENABLE_CORS" default:"true"`
}

// DatabaseConfig holds relational store configuration
type DatabaseConfig struct {
	Type         string `yaml:"type" json:"type" env:"DATABASE_TYPE" default:"sqlite"`
	Path         string `yaml:"path" json:"path" env:"REPERTOIRE_DB_PATH" default:"repertoire.db"`
	PostgresHost string `yaml:"postgres_host" json:"postgres_host" env:"POSTGRES_HOST" default:"localhost"`
	PostgresPort int    `yaml:"postgres_port" json:"postgres_port" env:"POSTGRES_PORT" default:"5432"`
	PostgresUser string `yaml:"postgres_user" json:"postgres_user" env:"POSTGRES_USER" default:"repertoire"`
	PostgresPass string `yaml:"postgres_password" json:"-" env:"POSTGRES_PASSWORD"`
	PostgresDB   string `yaml:"postgres_db" json:"postgres_db" env:"POSTGRES_DB" default:"repertoire"`
	LogQueries   bool   `yaml:"log_queries" json:"log_queries" env:"REPERTOIRE_DB_LOG_QUERIES" default:"false"`
}

// MusicBrainzConfig holds MusicBrainz lookup client configuration
type MusicBrainzConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url" env:"MUSICBRAINZ_BASE_URL" default:"https://musicbrainz.org/ws/2"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" env:"MUSICBRAINZ_USER_AGENT" default:"Repertoire/0.1.0 (classical music manager)"`
	RateLimit float64       `yaml:"rate_limit" json:"rate_limit" env:"MUSICBRAINZ_RATE_LIMIT" default:"1.0"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" env:"MUSICBRAINZ_TIMEOUT" default:"10s"`
}

// DiscogsConfig holds Discogs lookup client configuration
type DiscogsConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled" env:"DISCOGS_ENABLED" default:"false"`
	BaseURL   string        `yaml:"base_url" json:"base_url" env:"DISCOGS_BASE_URL" default:"https://api.discogs.com"`
	Token     string        `yaml:"token" json:"-" env:"DISCOGS_TOKEN"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" env:"DISCOGS_USER_AGENT" default:"Repertoire/0.1.0"`
	RateLimit float64       `yaml:"rate_limit" json:"rate_limit" env:"DISCOGS_RATE_LIMIT" default:"1.0"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" env:"DISCOGS_TIMEOUT" default:"30s"`
}

// ScraperConfig holds source-page scraper configuration
type ScraperConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url" env:"SCRAPER_BASE_URL" default:"https://www.musicalifeiten.nl"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" env:"SCRAPER_USER_AGENT" default:"Repertoire/0.1.0 (classical music manager)"`
	Throttle  time.Duration `yaml:"throttle" json:"throttle" env:"SCRAPER_THROTTLE" default:"2s"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" env:"SCRAPER_TIMEOUT" default:"10s"`
}

// EnrichmentConfig holds enrichment stage configuration
type EnrichmentConfig struct {
	Workers int `yaml:"workers" json:"workers" env:"REPERTOIRE_ENRICH_WORKERS" default:"4"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" env:"REPERTOIRE_LOG_LEVEL" default:"info"`
}

// Default returns the default application configuration
func Default() *Config {
	cfg := &Config{}
	if err := applyDefaults(reflect.ValueOf(cfg).Elem()); err != nil {
		// Defaults are compile-time constants; a failure here is a programming error.
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variable overrides, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Database.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.MusicBrainz.RateLimit <= 0 {
		return fmt.Errorf("musicbrainz rate limit must be positive, got %v", c.MusicBrainz.RateLimit)
	}
	if c.Discogs.Enabled && c.Discogs.Token == "" {
		return fmt.Errorf("discogs enabled but no token configured")
	}
	if c.Enrichment.Workers < 1 {
		return fmt.Errorf("enrichment workers must be at least 1, got %d", c.Enrichment.Workers)
	}
	return nil
}

func applyDefaults(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyDefaults(field); err != nil {
				return err
			}
			continue
		}

		defaultTag := fieldType.Tag.Get("default")
		if defaultTag == "" {
			continue
		}
		if err := setFieldValue(field, defaultTag); err != nil {
			return fmt.Errorf("field %s: %w", fieldType.Name, err)
		}
	}
	return nil
}

func loadStructFromEnv(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s: %w", fieldType.Name, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(duration))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}
