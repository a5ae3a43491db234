// Package config loads service configuration from the environment. Every
// variable carries the SEALREG_ prefix, e.g. SEALREG_DATABASE_DSN.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"sealreg/internal/domain"
)

type Config struct {
	ListenAddr  string `split_words:"true" default:":8080"`
	DatabaseDSN string `split_words:"true"`

	RedisAddr     string `split_words:"true"`
	RedisPassword string `split_words:"true"`
	RedisDB       int    `split_words:"true"`

	FeeBps             uint64 `split_words:"true" default:"250"`
	FeeBasis           string `split_words:"true" default:"tendered"`
	PlatformAdminToken string `split_words:"true"`

	PolicyBundlePath string `split_words:"true"`
	PolicyBundleID   string `split_words:"true"`

	AttesterCacheTTL time.Duration `split_words:"true" default:"5m"`

	RateLimit       int           `split_words:"true" default:"0"`
	RateLimitWindow time.Duration `split_words:"true" default:"1m"`

	LogLevel string `split_words:"true" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("sealreg", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("SEALREG_DATABASE_DSN is required")
	}
	if c.FeeBps > 10_000 {
		return fmt.Errorf("SEALREG_FEE_BPS %d exceeds 10000", c.FeeBps)
	}
	if _, err := c.ParsedFeeBasis(); err != nil {
		return err
	}
	return nil
}

func (c *Config) ParsedFeeBasis() (domain.FeeBasis, error) {
	switch c.FeeBasis {
	case "", "tendered":
		return domain.FeeBasisTendered, nil
	case "price":
		return domain.FeeBasisPrice, nil
	default:
		return "", fmt.Errorf("SEALREG_FEE_BASIS %q is not tendered or price", c.FeeBasis)
	}
}
