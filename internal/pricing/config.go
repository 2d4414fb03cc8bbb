package pricing

import "github.com/caravanleads/caravan/internal/domain"

// Config is the pricing configuration surface: volume bases,
// per-floor rate, route-band fees and minimums, complexity multipliers,
// and the item/locality catalogs. It is loaded once at startup as part
// of internal/config.Config and passed down by value to every pure
// pricing function.
type Config struct {
	Items      *ItemCatalog
	Localities *LocalityCatalog

	// VolumeBase is the starting price contribution per volume category.
	VolumeBase map[domain.VolumeCategory]int

	// VolumeItemValueThresholds buckets the summed item price-midpoints
	// into a volume category when no explicit category was chosen.
	// Thresholds are inclusive upper bounds, checked in ascending order;
	// a sum above the last bound maps to VolumeXL.
	VolumeItemValueThresholds []VolumeThreshold

	// HeavyItemOverrideCount: this many or more heavy items forces at
	// least VolumeLarge regardless of the summed value.
	HeavyItemOverrideCount int

	// RoomDescriptors are normalized substrings ("1-комнатная",
	// "studio", ...) whose presence in cargo_raw counts as a volume
	// signal even when no catalog item matched.
	RoomDescriptors []string

	// RoomDescriptorVolume is the category assigned when only a room
	// descriptor matched (no items extracted).
	RoomDescriptorVolume domain.VolumeCategory

	PerFloorRate int

	// RouteBandThresholds buckets a computed distance (km) into a band.
	// Checked in ascending order; a distance beyond the last bound maps
	// to RouteCrossCountry.
	RouteBandThresholds []RouteBandThreshold

	RouteFee     map[domain.RouteBand]int
	RouteMinimum map[domain.RouteBand]int

	ExtraFee map[domain.Extra]int

	ComplexMultiplier float64 // default 1.18
	RiskBuffer        float64 // default 1.08
	ComplexMinFloor   int     // default 7800

	Currency string
}

// VolumeThreshold maps a summed-item-value upper bound to a category.
type VolumeThreshold struct {
	UpTo     int
	Category domain.VolumeCategory
}

// RouteBandThreshold maps a distance (km) upper bound to a route band.
type RouteBandThreshold struct {
	UpToKM float64
	Band   domain.RouteBand
}

// DefaultConfig returns a reasonable starting configuration
// (complex_multiplier 1.18, risk buffer 1.08, complex_min_floor 7800).
// Item/locality catalogs are left empty — callers load those from the
// tenant/global config surface.
func DefaultConfig() Config {
	return Config{
		Items:      NewItemCatalog(nil, nil),
		Localities: &LocalityCatalog{AliasToCanonical: map[string]string{}, Distances: map[string]map[string]float64{}},
		VolumeBase: map[domain.VolumeCategory]int{
			domain.VolumeSmall:  1200,
			domain.VolumeMedium: 2400,
			domain.VolumeLarge:  4200,
			domain.VolumeXL:     6500,
		},
		VolumeItemValueThresholds: []VolumeThreshold{
			{UpTo: 1500, Category: domain.VolumeSmall},
			{UpTo: 4000, Category: domain.VolumeMedium},
			{UpTo: 8000, Category: domain.VolumeLarge},
		},
		HeavyItemOverrideCount: 2,
		RoomDescriptors: []string{
			"studio", "студия", "однокомнатная", "1-комнатная", "1 комнатная",
			"двухкомнатная", "2-комнатная", "2 комнатная",
			"трехкомнатная", "3-комнатная", "3 комнатная",
			"דירת חדר", "דירת 2 חדרים", "דירת 3 חדרים",
		},
		RoomDescriptorVolume: domain.VolumeMedium,
		PerFloorRate:         120,
		RouteBandThresholds: []RouteBandThreshold{
			{UpToKM: 15, Band: domain.RouteSameCity},
			{UpToKM: 60, Band: domain.RouteSameMetro},
			{UpToKM: 180, Band: domain.RouteInterRegionShort},
			{UpToKM: 450, Band: domain.RouteInterRegionLong},
		},
		RouteFee: map[domain.RouteBand]int{
			domain.RouteSameCity:         0,
			domain.RouteSameMetro:        300,
			domain.RouteInterRegionShort: 900,
			domain.RouteInterRegionLong:  1800,
			domain.RouteCrossCountry:     3200,
		},
		RouteMinimum: map[domain.RouteBand]int{
			domain.RouteSameCity:         900,
			domain.RouteSameMetro:        1300,
			domain.RouteInterRegionShort: 2200,
			domain.RouteInterRegionLong:  3600,
			domain.RouteCrossCountry:     5200,
		},
		ExtraFee: map[domain.Extra]int{
			domain.ExtraMovers:   0,
			domain.ExtraAssembly: 450,
			domain.ExtraPacking:  600,
		},
		ComplexMultiplier: 1.18,
		RiskBuffer:        1.08,
		ComplexMinFloor:   7800,
		Currency:          "ILS",
	}
}
