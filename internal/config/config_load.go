package config

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"

	"github.com/caravanleads/caravan/internal/domain"
)

// Default returns a Config with sensible defaults. Pricing/label tables
// are left empty — operators supply them via the config file. Build()
// copies PricingConfig as it is, so without a config file the pricing
// numbers stay zero; pricing.DefaultConfig() is not applied here.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Worker: WorkerConfig{
			Role:              string(domain.RoleAll),
			PollInterval:      "200ms",
			Concurrency:       4,
			LeaseHorizon:      "5m",
			OrphanSweepEvery:  "1m",
			MediaCleanupEvery: "1h",
		},
		Features: FeaturesConfig{
			OperatorLeadTranslationEnabled: false,
			OperatorLeadTargetLang:         domain.LangRussian,
			DispatchCrewFallbackEnabled:    true,
			EstimateDisplayEnabled:         true,
			MediaTTLDays:                   30,
			MaxInlineMediaCount:            3,
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars. A missing
// file is not an error — the defaults plus env overrides are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config. Env vars take
// precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envStr("CARAVAN_POSTGRES_DSN", &c.Database.DSN)
	envStr("CARAVAN_HOST", &c.Server.Host)

	if v := os.Getenv("CARAVAN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("CARAVAN_WORKER_ROLE"); v != "" {
		c.Worker.Role = v
	}
	if v := os.Getenv("CARAVAN_WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Worker.Concurrency = n
		}
	}
	if v := os.Getenv("CARAVAN_ESTIMATE_DISPLAY_ENABLED"); v != "" {
		c.Features.EstimateDisplayEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("CARAVAN_CREW_FALLBACK_ENABLED"); v != "" {
		c.Features.DispatchCrewFallbackEnabled = v == "true" || v == "1"
	}
}

// ApplyEnvOverrides re-applies environment variable overrides onto the
// config. Call this after a hot-reload of the file portion to restore
// runtime secrets from env.
func (c *Config) ApplyEnvOverrides() {
	c.applyEnvOverrides()
}

func hashJSON(v any) string {
	data, _ := json.Marshal(v)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:8])
}
