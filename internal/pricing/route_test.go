package pricing

import (
	"testing"

	"github.com/caravanleads/caravan/internal/domain"
)

func testLocalityCfg() Config {
	cfg := DefaultConfig()
	cfg.Localities = &LocalityCatalog{
		AliasToCanonical: map[string]string{
			"tel aviv":  "Tel Aviv",
			"תל אביב":   "Tel Aviv",
			"haifa":     "Haifa",
			"eilat":     "Eilat",
		},
		Distances: map[string]map[string]float64{
			"Tel Aviv": {"Haifa": 95, "Eilat": 350},
		},
	}
	return cfg
}

func TestClassifyRoute_SameLocality(t *testing.T) {
	cfg := testLocalityCfg()
	got := ClassifyRoute("tel aviv", "tel aviv", cfg)
	if got.Band != domain.RouteSameCity || got.DistanceKM != 0 {
		t.Fatalf("want same_city at 0km, got %+v", got)
	}
}

func TestClassifyRoute_KnownDistanceBuckets(t *testing.T) {
	cfg := testLocalityCfg()
	got := ClassifyRoute("tel aviv", "haifa", cfg)
	if got.Band != domain.RouteInterRegionShort {
		t.Fatalf("95km should be inter_region_short, got %+v", got)
	}
	got2 := ClassifyRoute("tel aviv", "eilat", cfg)
	if got2.Band != domain.RouteInterRegionLong {
		t.Fatalf("350km should be inter_region_long, got %+v", got2)
	}
}

func TestClassifyRoute_UnknownDistanceDefaultsSameMetro(t *testing.T) {
	cfg := testLocalityCfg()
	got := ClassifyRoute("unknown city a", "unknown city b", cfg)
	if got.Band != domain.RouteSameMetro {
		t.Fatalf("want same_metro default for unknown distance, got %+v", got)
	}
}

func TestBandForDistance_Boundaries(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		km   float64
		want domain.RouteBand
	}{
		{15, domain.RouteSameCity},
		{15.1, domain.RouteSameMetro},
		{60, domain.RouteSameMetro},
		{180, domain.RouteInterRegionShort},
		{450, domain.RouteInterRegionLong},
		{450.1, domain.RouteCrossCountry},
	}
	for _, c := range cases {
		if got := bandForDistance(c.km, cfg); got != c.want {
			t.Errorf("bandForDistance(%v) = %v, want %v", c.km, got, c.want)
		}
	}
}
