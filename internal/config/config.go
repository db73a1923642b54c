// Package config loads SDK configuration from defaults, an optional config
// file and environment variables (STOREFRONT_* prefix).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppMode describes which storefront surfaces are active, derived from the
// feature flags.
type AppMode string

const (
	// ModeCatalog is a read-only product catalog.
	ModeCatalog AppMode = "catalog"
	// ModeCommerce adds authenticated shopping.
	ModeCommerce AppMode = "commerce"
	// ModeEnterprise has every feature enabled.
	ModeEnterprise AppMode = "enterprise"
)

// Features are the boolean toggles gating optional subsystems. They only gate
// which surfaces a caller exposes; the gateway and cart behave the same
// either way.
type Features struct {
	Auth    bool `mapstructure:"auth"`
	Payment bool `mapstructure:"payment"`
	Email   bool `mapstructure:"email"`
	SMS     bool `mapstructure:"sms"`
}

// Config carries everything needed to construct the SDK clients.
type Config struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	StorageDir    string        `mapstructure:"storage_dir"`
	LogLevel      string        `mapstructure:"log_level"`
	Features      Features      `mapstructure:"features"`
}

// Load reads configuration. path may name a config file or a directory
// holding config.yaml; an empty or missing path falls back to defaults plus
// environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", "http://localhost:8080/api")
	v.SetDefault("timeout", "30s")
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_delay", "1s")
	v.SetDefault("storage_dir", defaultStorageDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("features.auth", false)
	v.SetDefault("features.payment", false)
	v.SetDefault("features.email", false)
	v.SetDefault("features.sms", false)

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if fi, err := os.Stat(path); err == nil {
			if fi.IsDir() {
				v.SetConfigName("config")
				v.AddConfigPath(path)
			} else {
				v.SetConfigFile(path)
			}
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Mode derives the application mode from the enabled features.
func (c *Config) Mode() AppMode {
	switch {
	case c.Features.Payment && c.Features.Auth && c.Features.Email:
		return ModeEnterprise
	case c.Features.Auth && c.Features.Payment:
		return ModeCommerce
	default:
		return ModeCatalog
	}
}

func defaultStorageDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + string(os.PathSeparator) + "storefront"
	}
	return ".storefront"
}
