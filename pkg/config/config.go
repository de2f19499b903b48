package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins" default:"[\"http://localhost:5173\"]"`
		StaticDir       string        `yaml:"static_dir"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Disabled bool   `yaml:"disabled"`
		Path     string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Predictor struct {
		BaseURL string        `yaml:"base_url" default:"http://localhost:5000"`
		Path    string        `yaml:"path" default:"/predict"`
		Timeout time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"predictor"`
	Catalog struct {
		File        string `yaml:"file" default:"config/instruments.yaml"`
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"catalog"`
	Session struct {
		SuccessWindow       time.Duration `yaml:"success_window" default:"3s"`
		IdleTTL             time.Duration `yaml:"idle_ttl" default:"30m"`
		SubmitBurst         float64       `yaml:"submit_burst" default:"5"`
		SubmitPerSec        float64       `yaml:"submit_per_sec" default:"0.5"`
		SubmitLimitDisabled bool          `yaml:"submit_limit_disabled"`
	} `yaml:"session"`
	Transform struct {
		ReferenceMode string `yaml:"reference_mode" default:"synthetic"`
		Seed          uint64 `yaml:"seed"`
	} `yaml:"transform"`
	Display struct {
		Currency string `yaml:"currency" default:"₹"`
	} `yaml:"display"`
	Cache struct {
		TTL        time.Duration `yaml:"ttl"`
		MaxEntries int           `yaml:"max_entries" default:"1000"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"stockdash"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Events struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic" default:"stockdash.lifecycle"`
	} `yaml:"events"`
}

// Load reads and parses a YAML configuration file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	// defaults.Set cannot tell an explicit zero from an unset field.
	if c.Session.SubmitLimitDisabled {
		c.Session.SubmitBurst = 0
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PREDICTOR_URL"); v != "" {
		c.Predictor.BaseURL = v
	}
	if v := os.Getenv("PREDICTOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PREDICTOR_TIMEOUT: %w", err)
		}
		c.Predictor.Timeout = d
	}
	if v := os.Getenv("CATALOG_FILE"); v != "" {
		c.Catalog.File = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Predictor.BaseURL == "" {
		return fmt.Errorf("predictor.base_url is required")
	}
	if c.Predictor.Timeout <= 0 {
		return fmt.Errorf("predictor.timeout must be positive")
	}
	if c.Catalog.File == "" {
		return fmt.Errorf("catalog.file is required")
	}
	if c.Session.SuccessWindow <= 0 {
		return fmt.Errorf("session.success_window must be positive")
	}
	switch c.Transform.ReferenceMode {
	case "synthetic", "omit":
	default:
		return fmt.Errorf("transform.reference_mode must be 'synthetic' or 'omit', got '%s'", c.Transform.ReferenceMode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
