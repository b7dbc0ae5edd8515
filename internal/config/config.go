package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Duration lets TOML files spell durations as "10s" or "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ServerConfig struct {
	Port        string   `toml:"port" validate:"required,numeric"`
	MobileLinks bool     `toml:"mobile_links"`
	CacheMaxAge Duration `toml:"cache_max_age"`
	// Layout picks the node clustering used for x bands: lpa or components.
	Layout      string   `toml:"layout" validate:"oneof=lpa components"`
}

type CrawlConfig struct {
	MaxNodes        int      `toml:"max_nodes" validate:"min=1,ltefield=MaxNodesCeiling"`
	MaxNodesCeiling int      `toml:"max_nodes_ceiling" validate:"min=1,max=5000"`
	CrawlDeadline   Duration `toml:"crawl_deadline"`
}

type WikidataConfig struct {
	BaseURL        string   `toml:"base_url" validate:"required,url"`
	Language       string   `toml:"language" validate:"required"`
	UserAgent      string   `toml:"user_agent" validate:"required"`
	RequestTimeout Duration `toml:"request_timeout"`
	BatchSize      int      `toml:"batch_size" validate:"min=1,max=50"`
	Concurrency    int      `toml:"concurrency" validate:"min=1,max=64"`
	MaxRetries     int      `toml:"max_retries" validate:"min=0,max=10"`
	RateLimit      float64  `toml:"rate_limit" validate:"gte=0"`
	Burst          int      `toml:"burst" validate:"min=1"`
}

type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	Path     string   `toml:"path" validate:"required_if=Enabled true InMemory false"`
	InMemory bool     `toml:"in_memory"`
	TTL      Duration `toml:"ttl"`
}

type LogConfig struct {
	Level      string `toml:"level" validate:"oneof=debug info warn error"`
	Format     string `toml:"format" validate:"oneof=json text"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" validate:"min=0"`
	MaxBackups int    `toml:"max_backups" validate:"min=0"`
}

type TelemetryConfig struct {
	Tracing      bool   `toml:"tracing"`
	OTLPEndpoint string `toml:"otlp_endpoint" validate:"required_if=Tracing true"`
	ServiceName  string `toml:"service_name" validate:"required"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Crawl     CrawlConfig     `toml:"crawl"`
	Wikidata  WikidataConfig  `toml:"wikidata"`
	Cache     CacheConfig     `toml:"cache"`
	Log       LogConfig       `toml:"log"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			MobileLinks: true,
			CacheMaxAge: Duration{24 * time.Hour},
			Layout:      "lpa",
		},
		Crawl: CrawlConfig{
			MaxNodes:        150,
			MaxNodesCeiling: 500,
			CrawlDeadline:   Duration{60 * time.Second},
		},
		Wikidata: WikidataConfig{
			BaseURL:        "https://www.wikidata.org",
			Language:       "en",
			UserAgent:      "kinship/1.0 (https://github.com/agenthands/kinship)",
			RequestTimeout: Duration{10 * time.Second},
			BatchSize:      50,
			Concurrency:    8,
			MaxRetries:     3,
			RateLimit:      20,
			Burst:          8,
		},
		Cache: CacheConfig{
			Enabled:  false,
			InMemory: true,
			TTL:      Duration{24 * time.Hour},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "kinship",
		},
	}
}

// Load reads a TOML file on top of Default, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides file values with environment variables. Malformed
// numeric values are reported rather than ignored.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("KINSHIP_MOBILE_LINKS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("KINSHIP_MOBILE_LINKS: %w", err)
		}
		c.Server.MobileLinks = b
	}
	if v := os.Getenv("KINSHIP_MAX_NODES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KINSHIP_MAX_NODES: %w", err)
		}
		c.Crawl.MaxNodes = n
	}
	if v := os.Getenv("KINSHIP_CRAWL_DEADLINE"); v != "" {
		if err := c.Crawl.CrawlDeadline.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("KINSHIP_CRAWL_DEADLINE: %w", err)
		}
	}
	if v := os.Getenv("KINSHIP_WIKIDATA_URL"); v != "" {
		c.Wikidata.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("KINSHIP_CACHE_PATH"); v != "" {
		c.Cache.Enabled = true
		c.Cache.InMemory = false
		c.Cache.Path = v
	}
	if v := os.Getenv("KINSHIP_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("KINSHIP_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Tracing = true
		c.Telemetry.OTLPEndpoint = v
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
