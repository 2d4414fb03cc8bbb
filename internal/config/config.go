// Package config is the ambient configuration surface for the lead-capture
// service: a JSON5 file overlaid by environment variables for secrets,
// plus the pricing/translation tables consumed by internal/pricing,
// internal/engine, and internal/dispatch.
package config

import (
	"sync"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/pricing"
)

// Config is the root configuration for the gateway process.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database,omitempty"`
	Worker   WorkerConfig   `json:"worker"`
	Features FeaturesConfig `json:"features"`
	Pricing  PricingConfig  `json:"pricing"`
	Labels   LabelsConfig   `json:"labels"`
	Tenants  map[string]TenantOverride `json:"tenants,omitempty"`

	mu sync.RWMutex
}

// ServerConfig configures the HTTP front-end (out of scope, but the core
// consumes these values when role=web/all).
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	EnabledBots  []string `json:"enabled_bots,omitempty"`
}

// DatabaseConfig configures Postgres. DSN is never read from the config
// file — only from env.
type DatabaseConfig struct {
	DSN         string `json:"-"`
	MaxOpenConn int    `json:"max_open_conn,omitempty"`
	MaxIdleConn int    `json:"max_idle_conn,omitempty"`
}

// WorkerConfig configures the job queue worker pool.
type WorkerConfig struct {
	Role            string `json:"role"` // core|dispatch|all, see domain.WorkerRole
	PollInterval    string `json:"poll_interval,omitempty"`    // Go duration, default "200ms"
	Concurrency     int    `json:"concurrency,omitempty"`      // goroutines per process, default 4
	LeaseHorizon    string `json:"lease_horizon,omitempty"`    // default "5m"
	OrphanSweepEvery string `json:"orphan_sweep_every,omitempty"` // default "1m"
	MediaCleanupEvery string `json:"media_cleanup_every,omitempty"` // default "1h"
}

// FeaturesConfig holds the global feature toggles, each overridable
// per tenant via TenantOverride.
type FeaturesConfig struct {
	OperatorLeadTranslationEnabled bool     `json:"operator_lead_translation_enabled"`
	OperatorLeadTargetLang         domain.Lang `json:"operator_lead_target_lang"`
	DispatchCrewFallbackEnabled    bool     `json:"dispatch_crew_fallback_enabled"`
	EstimateDisplayEnabled         bool     `json:"estimate_display_enabled"`
	MediaTTLDays                   int      `json:"media_ttl_days"`
	MaxInlineMediaCount            int      `json:"max_inline_media_count"`
}

// TenantOverride is a sparse per-tenant override of FeaturesConfig: a
// nil pointer means "inherit the global default".
type TenantOverride struct {
	DispatchCrewFallbackEnabled *bool `json:"dispatch_crew_fallback_enabled,omitempty"`
	EstimateDisplayEnabled      *bool `json:"estimate_display_enabled,omitempty"`
}

// PricingConfig is the JSON-shaped pricing table, converted to
// pricing.Config by Build() once catalogs are decoded.
type PricingConfig struct {
	VolumeBase                map[domain.VolumeCategory]int `json:"volume_base"`
	VolumeItemValueThresholds []pricing.VolumeThreshold     `json:"volume_item_value_thresholds"`
	HeavyItemOverrideCount    int                            `json:"heavy_item_override_count"`
	RoomDescriptors           []string                       `json:"room_descriptors"`
	RoomDescriptorVolume      domain.VolumeCategory          `json:"room_descriptor_volume"`
	PerFloorRate              int                            `json:"per_floor_rate"`
	RouteBandThresholds       []pricing.RouteBandThreshold   `json:"route_band_thresholds"`
	RouteFee                  map[domain.RouteBand]int       `json:"route_fee"`
	RouteMinimum              map[domain.RouteBand]int       `json:"route_minimum"`
	ExtraFee                  map[domain.Extra]int           `json:"extra_fee"`
	ComplexMultiplier         float64                        `json:"complex_multiplier"`
	RiskBuffer                float64                        `json:"risk_buffer"`
	ComplexMinFloor           int                            `json:"complex_min_floor"`
	Currency                  string                         `json:"currency"`

	// Items: catalog key -> item, keyed by price + label set.
	Items map[string]PricingItem `json:"items"`
	// Aliases: free-text alias -> catalog key.
	Aliases map[string]string `json:"aliases"`
	// Localities: free-text alias -> canonical locality name.
	LocalityAliases map[string]string `json:"locality_aliases"`
	// Distances: canonical locality -> canonical locality -> km.
	Distances map[string]map[string]float64 `json:"distances"`
}

// PricingItem is the JSON shape of one catalog entry.
type PricingItem struct {
	PriceMin int                    `json:"price_min"`
	PriceMax int                    `json:"price_max"`
	Heavy    bool                   `json:"heavy"`
	Labels   map[domain.Lang]string `json:"labels"`
}

// LabelsConfig holds the translation tables the engine and dispatch
// package need: intent phrases per language, step prompts/hints, and
// crew-view field labels. Shape is map[key]map[lang]value throughout,
// matching domain.Translations.
type LabelsConfig struct {
	Intents domain.Translations `json:"intents"`
	Prompts domain.Translations `json:"prompts"`
	Hints   domain.Translations `json:"hints"`
	Crew    domain.Translations `json:"crew"`
}

// Build converts the JSON-decoded PricingConfig into a pricing.Config,
// constructing the item/locality catalogs.
func (pc PricingConfig) Build() pricing.Config {
	items := make(map[string]pricing.CatalogItem, len(pc.Items))
	for key, it := range pc.Items {
		items[key] = pricing.CatalogItem{Key: key, PriceMin: it.PriceMin, PriceMax: it.PriceMax, Heavy: it.Heavy, Labels: it.Labels}
	}

	return pricing.Config{
		Items:                     pricing.NewItemCatalog(items, pc.Aliases),
		Localities:                &pricing.LocalityCatalog{AliasToCanonical: pc.LocalityAliases, Distances: pc.Distances},
		VolumeBase:                pc.VolumeBase,
		VolumeItemValueThresholds: pc.VolumeItemValueThresholds,
		HeavyItemOverrideCount:    pc.HeavyItemOverrideCount,
		RoomDescriptors:           pc.RoomDescriptors,
		RoomDescriptorVolume:      pc.RoomDescriptorVolume,
		PerFloorRate:              pc.PerFloorRate,
		RouteBandThresholds:       pc.RouteBandThresholds,
		RouteFee:                  pc.RouteFee,
		RouteMinimum:              pc.RouteMinimum,
		ExtraFee:                  pc.ExtraFee,
		ComplexMultiplier:         pc.ComplexMultiplier,
		RiskBuffer:                pc.RiskBuffer,
		ComplexMinFloor:           pc.ComplexMinFloor,
		Currency:                  pc.Currency,
	}
}

// ResolveFeatures returns the effective FeaturesConfig for a tenant,
// merging the global defaults with that tenant's override.
func (c *Config) ResolveFeatures(tenantID string) FeaturesConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := c.Features
	if ov, ok := c.Tenants[tenantID]; ok {
		if ov.DispatchCrewFallbackEnabled != nil {
			f.DispatchCrewFallbackEnabled = *ov.DispatchCrewFallbackEnabled
		}
		if ov.EstimateDisplayEnabled != nil {
			f.EstimateDisplayEnabled = *ov.EstimateDisplayEnabled
		}
	}
	return f
}

// Hash is used for optimistic config-reload comparisons.
func (c *Config) Hash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return hashJSON(c)
}
