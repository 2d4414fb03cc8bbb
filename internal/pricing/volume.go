package pricing

import (
	"strings"

	"github.com/caravanleads/caravan/internal/domain"
)

// HasRoomDescriptor reports whether cargoRaw mentions a recognized
// apartment-size descriptor ("studio", "1-комнатная", ...).
func HasRoomDescriptor(cargoRaw string, cfg Config) bool {
	norm := normalizeKey(cargoRaw)
	for _, d := range cfg.RoomDescriptors {
		if strings.Contains(norm, normalizeKey(d)) {
			return true
		}
	}
	return false
}

// InferVolume sums item price-midpoints, compares against the
// configured thresholds, and lets a heavy-item count raise the result to
// at least VolumeLarge (it never raises it to VolumeXL). If items is empty and no room descriptor was detected, it
// returns "" (the volume step is asked explicitly).
func InferVolume(items []domain.Item, cargoRaw string, cfg Config) domain.VolumeCategory {
	if len(items) == 0 {
		if HasRoomDescriptor(cargoRaw, cfg) {
			return cfg.RoomDescriptorVolume
		}
		return ""
	}

	sum := 0
	heavyCount := 0
	for _, it := range items {
		mid := (it.PriceMin + it.PriceMax) / 2
		sum += mid * maxInt(it.Qty, 1)
		if it.Heavy {
			heavyCount += it.Qty
		}
	}

	category := categorizeBySum(sum, cfg)
	if heavyCount >= cfg.HeavyItemOverrideCount && rank(category) < rank(domain.VolumeLarge) {
		category = domain.VolumeLarge
	}
	return category
}

func categorizeBySum(sum int, cfg Config) domain.VolumeCategory {
	for _, t := range cfg.VolumeItemValueThresholds {
		if sum <= t.UpTo {
			return t.Category
		}
	}
	return domain.VolumeXL
}

func rank(c domain.VolumeCategory) int {
	switch c {
	case domain.VolumeSmall:
		return 0
	case domain.VolumeMedium:
		return 1
	case domain.VolumeLarge:
		return 2
	case domain.VolumeXL:
		return 3
	default:
		return -1
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
