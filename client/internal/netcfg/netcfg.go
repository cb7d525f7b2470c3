// Package netcfg holds where the client talks to and how it presents itself.
package netcfg

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultTestDeviceID = "unity-test-device-001"

type Config struct {
	APIBase        string        `env:"ABANDONED_API_BASE" envDefault:"http://localhost:8080"`       // REST
	FeedAddr       string        `env:"ABANDONED_FEED_ADDR" envDefault:"127.0.0.1:8090"`             // presentation websocket
	DeviceID       string        `env:"ABANDONED_DEVICE_ID"`
	UseTestDevice  bool          `env:"ABANDONED_USE_TEST_DEVICE" envDefault:"true"`
	TestDeviceID   string        `env:"ABANDONED_TEST_DEVICE_ID" envDefault:"unity-test-device-001"`
	RequestTimeout time.Duration `env:"ABANDONED_REQUEST_TIMEOUT" envDefault:"10s"`
	BalanceFile    string        `env:"ABANDONED_BALANCE_FILE"`
	LogLevel       string        `env:"ABANDONED_LOG_LEVEL" envDefault:"info"`
	Profile        string        `env:"ABANDONED_PROFILE"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ABANDONED_API_BASE: %q is not an absolute URL", c.APIBase)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("ABANDONED_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.UseTestDevice && c.TestDeviceID == "" {
		return fmt.Errorf("ABANDONED_TEST_DEVICE_ID is empty while the test device is enabled")
	}
	return nil
}
