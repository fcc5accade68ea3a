// Package config loads server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Config holds every operator-tunable setting of the server.
type Config struct {
	Addr      string        `env:"PIGGYBANK_ADDR"       envDefault:":8080"`
	DBPath    string        `env:"PIGGYBANK_DB_PATH"    envDefault:"./data/piggybank.db"`
	JWTSecret string        `env:"PIGGYBANK_JWT_SECRET"`
	TokenTTL  time.Duration `env:"PIGGYBANK_TOKEN_TTL"  envDefault:"24h"`
	LogLevel  string        `env:"LOG_LEVEL"            envDefault:"info"`

	// ProviderSecret authenticates the payment provider's settlement callbacks.
	ProviderSecret string `env:"PIGGYBANK_PROVIDER_SECRET"`

	// InviteTTL is how long an invitation stays pending. Zero disables expiry.
	InviteTTL time.Duration `env:"PIGGYBANK_INVITE_TTL" envDefault:"168h"`

	// TerminationThreshold is the fraction of members whose agreement
	// terminates a matured group, in (0, 1].
	TerminationThreshold decimal.Decimal `env:"PIGGYBANK_TERMINATION_THRESHOLD" envDefault:"1"`

	// SweepSchedule is the cron spec for the maturity sweep. Empty disables it.
	SweepSchedule string `env:"PIGGYBANK_SWEEP_SCHEDULE" envDefault:"@every 1m"`

	// WalletSeed is the opening balance of every sandbox wallet.
	WalletSeed decimal.Decimal `env:"PIGGYBANK_WALLET_SEED" envDefault:"1000"`

	// NotifyQueue is the capacity of the asynchronous notification queue.
	NotifyQueue int `env:"PIGGYBANK_NOTIFY_QUEUE" envDefault:"256"`
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom reads configuration from the given variables instead of the process
// environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints the struct tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("PIGGYBANK_JWT_SECRET is required"))
	}
	if c.ProviderSecret == "" {
		errs = append(errs, errors.New("PIGGYBANK_PROVIDER_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("PIGGYBANK_TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.InviteTTL < 0 {
		errs = append(errs, fmt.Errorf("PIGGYBANK_INVITE_TTL must not be negative, got %s", c.InviteTTL))
	}
	if !c.TerminationThreshold.IsPositive() || c.TerminationThreshold.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("PIGGYBANK_TERMINATION_THRESHOLD must be in (0, 1], got %s", c.TerminationThreshold))
	}
	if c.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
			errs = append(errs, fmt.Errorf("PIGGYBANK_SWEEP_SCHEDULE: %w", err))
		}
	}
	if c.WalletSeed.IsNegative() {
		errs = append(errs, fmt.Errorf("PIGGYBANK_WALLET_SEED must not be negative, got %s", c.WalletSeed))
	}
	if c.NotifyQueue < 1 {
		errs = append(errs, fmt.Errorf("PIGGYBANK_NOTIFY_QUEUE must be at least 1, got %d", c.NotifyQueue))
	}
	return errors.Join(errs...)
}
