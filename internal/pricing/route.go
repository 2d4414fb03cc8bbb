package pricing

import "github.com/caravanleads/caravan/internal/domain"

// ClassifyRoute resolves both localities to canonical names, looks up
// their approximate distance, and buckets it into a RouteBand via the
// configured thresholds. Unknown distances default to RouteSameMetro —
// conservative enough not to trip the cross-country complexity trigger
// on bad data, but not free like RouteSameCity either.
func ClassifyRoute(fromLocality, toLocality string, cfg Config) domain.RouteClassification {
	fromCanon := cfg.Localities.Canonicalize(fromLocality)
	toCanon := cfg.Localities.Canonicalize(toLocality)

	dist, ok := cfg.Localities.DistanceKM(fromCanon, toCanon)
	if !ok {
		if fromCanon == toCanon && fromCanon != "" {
			dist = 0
		} else {
			return domain.RouteClassification{
				Band:      domain.RouteSameMetro,
				FromNames: []string{fromCanon},
				ToNames:   []string{toCanon},
			}
		}
	}

	band := bandForDistance(dist, cfg)
	return domain.RouteClassification{
		Band:       band,
		DistanceKM: dist,
		FromNames:  []string{fromCanon},
		ToNames:    []string{toCanon},
	}
}

func bandForDistance(km float64, cfg Config) domain.RouteBand {
	for _, t := range cfg.RouteBandThresholds {
		if km <= t.UpToKM {
			return t.Band
		}
	}
	return domain.RouteCrossCountry
}
