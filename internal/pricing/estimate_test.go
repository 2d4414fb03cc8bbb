package pricing

import (
	"testing"

	"github.com/caravanleads/caravan/internal/domain"
)

func TestComplexityScore_CountsEachTrigger(t *testing.T) {
	data := domain.LeadData{
		VolumeCategory: domain.VolumeXL,
		Extras:         []domain.Extra{domain.ExtraAssembly},
		PickupCount:    2,
		RouteClass:     &domain.RouteClassification{Band: domain.RouteCrossCountry},
		Destination:    domain.Address{FloorNum: 6, HasElevator: false},
	}
	score, triggers := ComplexityScore(data)
	if score != 5 {
		t.Fatalf("want score 5, got %d (%+v)", score, triggers)
	}
}

func TestComplexityScore_ElevatorDefusesFloorTrigger(t *testing.T) {
	data := domain.LeadData{
		Destination: domain.Address{FloorNum: 8, HasElevator: true},
	}
	score, triggers := ComplexityScore(data)
	if score != 0 || triggers.HighFloorNoLift {
		t.Fatalf("elevator should suppress the floor trigger, got score %d %+v", score, triggers)
	}
}

func TestComputeEstimate_SmallVolumeNeverBoosted(t *testing.T) {
	cfg := DefaultConfig()
	data := domain.LeadData{
		VolumeCategory: domain.VolumeSmall,
		Extras:         []domain.Extra{domain.ExtraAssembly},
		PickupCount:    3,
		RouteClass:     &domain.RouteClassification{Band: domain.RouteCrossCountry},
		Destination:    domain.Address{FloorNum: 6, HasElevator: false},
	}
	score, _ := ComplexityScore(data)
	if score < 3 {
		t.Fatalf("test setup should trip a high score, got %d", score)
	}
	est := ComputeEstimate(data, cfg)
	// small volume is exempt from the multiplier and the hard floor, even
	// though score >= 3 here.
	if est.Min >= cfg.ComplexMinFloor {
		t.Fatalf("small volume must never be boosted to the complexity floor, got min=%d", est.Min)
	}
}

func TestComputeEstimate_LargeVolumeScoreTwoAppliesMultiplier(t *testing.T) {
	cfg := DefaultConfig()
	base := domain.LeadData{
		VolumeCategory: domain.VolumeLarge,
		RouteClass:     &domain.RouteClassification{Band: domain.RouteSameCity},
	}
	withoutBoost := ComputeEstimate(base, cfg)

	boosted := base
	boosted.Extras = []domain.Extra{domain.ExtraAssembly} // score: large(1) + assembly(1) = 2, multiplier only

	est := ComputeEstimate(boosted, cfg)
	if est.Min <= withoutBoost.Min {
		t.Fatalf("boosted estimate should exceed the unboosted baseline: boosted=%d baseline=%d", est.Min, withoutBoost.Min)
	}
}

func TestComputeEstimate_ScoreThreeEnforcesHardFloor(t *testing.T) {
	cfg := DefaultConfig()
	data := domain.LeadData{
		VolumeCategory: domain.VolumeXL,
		Extras:         []domain.Extra{domain.ExtraAssembly},
		PickupCount:    2,
		RouteClass:     &domain.RouteClassification{Band: domain.RouteSameCity},
	}
	est := ComputeEstimate(data, cfg)
	if est.Min < cfg.ComplexMinFloor {
		t.Fatalf("score>=3 must enforce the hard floor %d, got %d", cfg.ComplexMinFloor, est.Min)
	}
}

func TestComputeEstimate_RouteMinimumEnforced(t *testing.T) {
	cfg := DefaultConfig()
	data := domain.LeadData{
		VolumeCategory: "", // no volume base at all
		RouteClass:     &domain.RouteClassification{Band: domain.RouteCrossCountry},
	}
	est := ComputeEstimate(data, cfg)
	if est.Min < cfg.RouteMinimum[domain.RouteCrossCountry] {
		t.Fatalf("want at least the route minimum %d, got %d", cfg.RouteMinimum[domain.RouteCrossCountry], est.Min)
	}
}

func TestComputeEstimate_FloorSurchargeSkippedWithElevator(t *testing.T) {
	cfg := DefaultConfig()
	withElevator := domain.LeadData{
		VolumeCategory: domain.VolumeSmall,
		Destination:    domain.Address{FloorNum: 10, HasElevator: true},
	}
	withoutElevator := withElevator
	withoutElevator.Destination = domain.Address{FloorNum: 10, HasElevator: false}

	estWith := ComputeEstimate(withElevator, cfg)
	estWithout := ComputeEstimate(withoutElevator, cfg)
	if estWithout.Min <= estWith.Min {
		t.Fatalf("missing elevator should add a floor surcharge: with=%d without=%d", estWith.Min, estWithout.Min)
	}
}

func TestShouldSuppress(t *testing.T) {
	cases := []struct {
		name     string
		cargo    string
		items    []domain.Item
		volume   domain.VolumeCategory
		expected bool
	}{
		{"long free text, nothing extracted", "какие-то очень странные непонятные вещи для переезда", nil, "", true},
		{"short text", "шкаф", nil, "", false},
		{"items extracted", "some long cargo description over thirty chars", []domain.Item{{Key: "box"}}, "", false},
		{"volume known", "some long cargo description over thirty chars", nil, domain.VolumeMedium, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ShouldSuppress(c.cargo, c.items, c.volume); got != c.expected {
				t.Errorf("ShouldSuppress() = %v, want %v", got, c.expected)
			}
		})
	}
}
