package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FREECOACH_"

type Config struct {
	Server       ServerConfig       `yaml:"server" envPrefix:"SERVER_"`
	Database     DatabaseConfig     `yaml:"database" envPrefix:"DB_"`
	Auth         AuthConfig         `yaml:"auth" envPrefix:"AUTH_"`
	Tailscale    TailscaleConfig    `yaml:"tailscale" envPrefix:"TS_"`
	AI           AIConfig           `yaml:"ai" envPrefix:"AI_"`
	PlanCache    PlanCacheConfig    `yaml:"plan_cache" envPrefix:"PLAN_CACHE_"`
	Connectivity ConnectivityConfig `yaml:"connectivity" envPrefix:"CONNECTIVITY_"`
	Maintenance  MaintenanceConfig  `yaml:"maintenance" envPrefix:"MAINTENANCE_"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Name     string `yaml:"name" env:"NAME"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key" env:"API_KEY"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Hostname string `yaml:"hostname" env:"HOSTNAME"`
	StateDir string `yaml:"state_dir" env:"STATE_DIR"`
}

// AIConfig points at an OpenAI-compatible chat completions endpoint.
type AIConfig struct {
	Enabled           bool          `yaml:"enabled" env:"ENABLED"`
	BaseURL           string        `yaml:"base_url" env:"BASE_URL"`
	APIKey            string        `yaml:"api_key" env:"API_KEY"`
	Model             string        `yaml:"model" env:"MODEL"`
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
}

type PlanCacheConfig struct {
	Driver string        `yaml:"driver" env:"DRIVER"`
	Path   string        `yaml:"path" env:"PATH"`
	TTL    time.Duration `yaml:"ttl" env:"TTL"`
}

// ConnectivityConfig configures the online probe. Offline forces the
// offline path regardless of the probe.
type ConnectivityConfig struct {
	ProbeURL string        `yaml:"probe_url" env:"PROBE_URL"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Offline  bool          `yaml:"offline" env:"OFFLINE"`
}

// MaintenanceConfig holds cron specs for background sweeps. An empty spec
// disables the job.
type MaintenanceConfig struct {
	CacheSweep string `yaml:"cache_sweep" env:"CACHE_SWEEP"`
	StaleSweep string `yaml:"stale_sweep" env:"STALE_SWEEP"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

func defaults() *Config {
	return &Config{
		AI: AIConfig{
			Model:             "gpt-4o-mini",
			Timeout:           30 * time.Second,
			RequestsPerMinute: 10,
		},
		PlanCache: PlanCacheConfig{
			Driver: "sqlite",
			Path:   "data/plancache",
			TTL:    7 * 24 * time.Hour,
		},
		Connectivity: ConnectivityConfig{
			ProbeURL: "https://clients3.google.com/generate_204",
			Timeout:  3 * time.Second,
		},
		Maintenance: MaintenanceConfig{
			CacheSweep: "@every 6h",
			StaleSweep: "@every 1h",
		},
	}
}

// Load reads config from a YAML file over built-in defaults, then applies
// environment variable overrides. Env vars use the prefix FREECOACH_ and
// the section prefixes SERVER_, DB_, AUTH_, TS_, AI_, PLAN_CACHE_,
// CONNECTIVITY_ and MAINTENANCE_, for example:
//
//	FREECOACH_SERVER_PORT, FREECOACH_DB_HOST, FREECOACH_AUTH_API_KEY,
//	FREECOACH_AI_API_KEY, FREECOACH_PLAN_CACHE_DRIVER
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing env overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.AI.Enabled {
		if c.AI.BaseURL == "" {
			return fmt.Errorf("ai.base_url is required when ai is enabled")
		}
		if c.AI.Timeout <= 0 {
			return fmt.Errorf("ai.timeout must be positive")
		}
	}
	switch c.PlanCache.Driver {
	case "sqlite", "badger":
	default:
		return fmt.Errorf("plan_cache.driver must be sqlite or badger, got %q", c.PlanCache.Driver)
	}
	if c.PlanCache.TTL <= 0 {
		return fmt.Errorf("plan_cache.ttl must be positive")
	}
	return nil
}
