package pricing

import "github.com/caravanleads/caravan/internal/domain"

// ComplexityTriggers enumerates the pricing-risk triggers counted by
// ComplexityScore.
type ComplexityTriggers struct {
	LargeOrXL      bool
	AssemblyExtra  bool
	MultiPickup    bool
	LongRoute      bool
	HighFloorNoLift bool
}

// ComplexityScore counts how many of the five complexity triggers are
// active for this lead.
func ComplexityScore(data domain.LeadData) (int, ComplexityTriggers) {
	t := ComplexityTriggers{
		LargeOrXL:     data.VolumeCategory == domain.VolumeLarge || data.VolumeCategory == domain.VolumeXL,
		AssemblyExtra: hasExtra(data.Extras, domain.ExtraAssembly),
		MultiPickup:   data.PickupCount >= 2,
	}
	if data.RouteClass != nil {
		switch data.RouteClass.Band {
		case domain.RouteInterRegionShort, domain.RouteInterRegionLong, domain.RouteCrossCountry:
			t.LongRoute = true
		}
	}
	for _, p := range data.Pickups {
		if p.FloorNum >= 5 && !p.HasElevator {
			t.HighFloorNoLift = true
		}
	}
	if data.Destination.FloorNum >= 5 && !data.Destination.HasElevator {
		t.HighFloorNoLift = true
	}

	score := 0
	for _, b := range []bool{t.LargeOrXL, t.AssemblyExtra, t.MultiPickup, t.LongRoute, t.HighFloorNoLift} {
		if b {
			score++
		}
	}
	return score, t
}

func hasExtra(extras []domain.Extra, target domain.Extra) bool {
	for _, e := range extras {
		if e == target {
			return true
		}
	}
	return false
}

// ComputeEstimate runs the base-estimate and complexity-guard
// pipeline. It always returns a breakdown, even when the caller will
// suppress the user-facing range — the breakdown is still persisted.
func ComputeEstimate(data domain.LeadData, cfg Config) domain.Estimate {
	var breakdown []domain.BreakdownLine

	volBase := cfg.VolumeBase[data.VolumeCategory]
	breakdown = append(breakdown, domain.BreakdownLine{Label: "volume_base:" + string(data.VolumeCategory), Amount: volBase})

	minTotal, maxTotal := volBase, volBase

	for _, it := range data.Items {
		qty := maxInt(it.Qty, 1)
		itemMin := it.PriceMin * qty
		itemMax := it.PriceMax * qty
		minTotal += itemMin
		maxTotal += itemMax
		breakdown = append(breakdown, domain.BreakdownLine{Label: "item:" + it.Key, Amount: (itemMin + itemMax) / 2})
	}

	floorSurcharge := 0
	for i, p := range data.Pickups {
		s := floorSurchargeFor(p, cfg)
		floorSurcharge += s
		if s > 0 {
			breakdown = append(breakdown, domain.BreakdownLine{Label: pickupFloorLabel(i), Amount: s})
		}
	}
	if s := floorSurchargeFor(data.Destination, cfg); s > 0 {
		floorSurcharge += s
		breakdown = append(breakdown, domain.BreakdownLine{Label: "floor_surcharge:destination", Amount: s})
	}
	minTotal += floorSurcharge
	maxTotal += floorSurcharge

	band := domain.RouteSameCity
	if data.RouteClass != nil {
		band = data.RouteClass.Band
	}
	routeFee := cfg.RouteFee[band]
	if routeFee > 0 {
		breakdown = append(breakdown, domain.BreakdownLine{Label: "route_fee:" + string(band), Amount: routeFee})
	}
	minTotal += routeFee
	maxTotal += routeFee

	for _, extra := range data.Extras {
		fee := cfg.ExtraFee[extra]
		if fee > 0 {
			breakdown = append(breakdown, domain.BreakdownLine{Label: "extra:" + string(extra), Amount: fee})
		}
		minTotal += fee
		maxTotal += fee
	}

	if min := cfg.RouteMinimum[band]; minTotal < min {
		minTotal = min
	}
	if maxTotal < minTotal {
		maxTotal = minTotal
	}

	score, triggers := ComplexityScore(data)
	if triggers.LargeOrXL && score >= 2 {
		factor := cfg.ComplexMultiplier * cfg.RiskBuffer
		minTotal = int(float64(minTotal) * factor)
		maxTotal = int(float64(maxTotal) * factor)
		breakdown = append(breakdown, domain.BreakdownLine{Label: "complexity_multiplier", Amount: int(float64(minTotal) - float64(minTotal)/factor)})
	}
	if triggers.LargeOrXL && score >= 3 && minTotal < cfg.ComplexMinFloor {
		minTotal = cfg.ComplexMinFloor
		if maxTotal < minTotal {
			maxTotal = minTotal
		}
		breakdown = append(breakdown, domain.BreakdownLine{Label: "complexity_min_floor", Amount: cfg.ComplexMinFloor})
	}

	return domain.Estimate{
		Min:       minTotal,
		Max:       maxTotal,
		Currency:  cfg.Currency,
		Breakdown: breakdown,
	}
}

func floorSurchargeFor(a domain.Address, cfg Config) int {
	if a.HasElevator || a.FloorNum <= 1 {
		return 0
	}
	return a.FloorNum * cfg.PerFloorRate
}

func pickupFloorLabel(i int) string {
	labels := []string{"floor_surcharge:pickup_1", "floor_surcharge:pickup_2", "floor_surcharge:pickup_3"}
	if i < len(labels) {
		return labels[i]
	}
	return "floor_surcharge:pickup_n"
}

// ShouldSuppress applies the suppression fallback: no items
// extracted, an unknown volume, and a cargo description long enough to
// suggest the customer tried to describe something specific.
func ShouldSuppress(cargoRaw string, items []domain.Item, volume domain.VolumeCategory) bool {
	return len(cargoRaw) > 30 && len(items) == 0 && volume == ""
}
