package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/huyhieublock/tradding/internal/domain"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds the whole application configuration. Sensitive values can be
// overridden through environment variables after LoadConfig.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Orderly struct {
			WSURL    string `yaml:"ws_url"`
			RestURL  string `yaml:"rest_url"`
			BrokerID string `yaml:"broker_id"`
		} `yaml:"orderly"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"api"`

	UI struct {
		DefaultSymbol     string `yaml:"default_symbol"`
		DefaultResolution string `yaml:"default_resolution"`
		DepthRows         int    `yaml:"depth_rows"`
		WindowBars        int    `yaml:"window_bars"`
	} `yaml:"ui"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.API.Orderly.WSURL == "" || (!hasPrefix(c.API.Orderly.WSURL, "ws://") && !hasPrefix(c.API.Orderly.WSURL, "wss://")) {
		return fmt.Errorf("invalid Orderly WS URL: %s", c.API.Orderly.WSURL)
	}
	if c.API.Orderly.RestURL == "" || (!hasPrefix(c.API.Orderly.RestURL, "http://") && !hasPrefix(c.API.Orderly.RestURL, "https://")) {
		return fmt.Errorf("invalid Orderly REST URL: %s", c.API.Orderly.RestURL)
	}
	if len(c.API.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}

	if c.UI.DefaultSymbol == "" {
		c.UI.DefaultSymbol = c.API.Symbols[0]
	}
	if c.UI.DefaultResolution == "" {
		c.UI.DefaultResolution = domain.Resolution15m.String()
	}
	if _, err := domain.ParseResolution(c.UI.DefaultResolution); err != nil {
		return fmt.Errorf("invalid default resolution %q: %w", c.UI.DefaultResolution, err)
	}
	if c.UI.DepthRows <= 0 {
		return fmt.Errorf("depth rows must be positive")
	}
	if c.UI.WindowBars <= 0 {
		return fmt.Errorf("window bars must be positive")
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overrides configuration values from the environment.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("TRADDING_WS_URL"); url != "" {
		cfg.API.Orderly.WSURL = url
	}
	if url := os.Getenv("TRADDING_REST_URL"); url != "" {
		cfg.API.Orderly.RestURL = url
	}
	if broker := os.Getenv("TRADDING_BROKER_ID"); broker != "" {
		cfg.API.Orderly.BrokerID = broker
	}
}
