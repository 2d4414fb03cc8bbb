package engine

import (
	"testing"
	"time"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/pricing"
)

func testEngine(now time.Time) *Engine {
	cfg := pricing.DefaultConfig()
	cfg.Items = pricing.NewItemCatalog(
		map[string]pricing.CatalogItem{
			"fridge": {Key: "fridge", PriceMin: 400, PriceMax: 900, Heavy: true},
			"sofa":   {Key: "sofa", PriceMin: 300, PriceMax: 700},
			"wardrobe": {Key: "wardrobe", PriceMin: 300, PriceMax: 600},
		},
		map[string]string{
			"холодильник": "fridge",
			"диван":       "sofa",
			"шкаф":        "wardrobe",
		},
	)
	e := New(cfg, config.LabelsConfig{})
	e.Clock = func() time.Time { return now }
	return e
}

func TestStep_NewSessionStartsAtWelcome(t *testing.T) {
	e := testEngine(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	session := domain.SessionState{TenantID: "t1", ChatID: "c1"}
	got, _, terminal, err := e.Step(session, domain.InputEvent{Text: "Здравствуйте"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if terminal {
		t.Fatalf("want non-terminal, got terminal")
	}
	if got.Step != domain.StepCargo {
		t.Fatalf("want cargo step after welcome, got %v", got.Step)
	}
	if got.Language != domain.LangRussian {
		t.Fatalf("want ru detected from Cyrillic text, got %v", got.Language)
	}
}

func TestStep_CargoWithItemsSkipsVolume(t *testing.T) {
	e := testEngine(time.Now())
	session := domain.SessionState{Step: domain.StepCargo, Language: domain.LangRussian}
	got, _, _, err := e.Step(session, domain.InputEvent{Text: "Холодильник, диван"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if got.Step != domain.StepPickupCount {
		t.Fatalf("want pickup_count (volume inferred from items), got %v", got.Step)
	}
	if len(got.Data.Items) != 2 {
		t.Fatalf("want 2 extracted items, got %+v", got.Data.Items)
	}
	if got.Data.VolumeCategory == "" {
		t.Fatalf("want inferred volume category, got empty")
	}
}

func TestStep_CargoWithoutItemsAsksVolume(t *testing.T) {
	e := testEngine(time.Now())
	session := domain.SessionState{Step: domain.StepCargo, Language: domain.LangEnglish}
	got, _, _, err := e.Step(session, domain.InputEvent{Text: "some random stuff"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if got.Step != domain.StepVolume {
		t.Fatalf("want volume step when no items/descriptor matched, got %v", got.Step)
	}
}

func TestStep_ResetPreservesLanguageAndIdentity(t *testing.T) {
	e := testEngine(time.Now())
	session := domain.SessionState{
		TenantID: "t1", ChatID: "c1", LeadID: "lead-1",
		Step: domain.StepDate, Language: domain.LangHebrew,
		Data: domain.LeadData{CargoRaw: "something"},
	}
	got, _, terminal, err := e.Step(session, domain.InputEvent{Text: "reset"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if terminal {
		t.Fatalf("reset must not be terminal")
	}
	if got.Step != domain.StepWelcome {
		t.Fatalf("want welcome after reset, got %v", got.Step)
	}
	if got.Language != domain.LangHebrew || got.TenantID != "t1" || got.ChatID != "c1" || got.LeadID != "lead-1" {
		t.Fatalf("reset must preserve tenant/chat/lead/language identity, got %+v", got)
	}
	if got.Data.CargoRaw != "" {
		t.Fatalf("reset must clear LeadData, got %+v", got.Data)
	}
}

func TestStep_DateBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	e := testEngine(now)

	cases := []struct {
		name    string
		date    string
		wantHint bool
	}{
		{"today accepted", "2026-08-01", false},
		{"yesterday rejected", "2026-07-31", true},
		{"plus180 accepted", "2027-01-28", false},
		{"plus181 rejected", "2027-01-29", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			session := domain.SessionState{Step: domain.StepDate, Language: domain.LangEnglish}
			got, _, _, err := e.Step(session, domain.InputEvent{Text: c.date})
			if err != nil {
				t.Fatalf("Step() error = %v", err)
			}
			rejected := got.Step == domain.StepDate
			if rejected != c.wantHint {
				t.Errorf("date %s: rejected=%v, want %v (got step %v)", c.date, rejected, c.wantHint, got.Step)
			}
		})
	}
}

func TestStep_AttributeSuppressedQuantity(t *testing.T) {
	e := testEngine(time.Now())
	e.Pricing.Items = pricing.NewItemCatalog(
		map[string]pricing.CatalogItem{
			"fridge":   {Key: "fridge", PriceMin: 400, PriceMax: 900, Heavy: true},
			"wardrobe": {Key: "wardrobe", PriceMin: 300, PriceMax: 600},
		},
		map[string]string{"холодильник": "fridge", "шкаф": "wardrobe"},
	)
	session := domain.SessionState{Step: domain.StepCargo, Language: domain.LangRussian}
	got, _, _, err := e.Step(session, domain.InputEvent{Text: "Холодильник 200кг, 5 дверный шкаф"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	for _, it := range got.Data.Items {
		if it.Qty != 1 {
			t.Errorf("item %s: want qty 1 (attribute-suppressed), got %d", it.Key, it.Qty)
		}
	}
}

func TestStep_EstimateEntryComputesRange(t *testing.T) {
	e := testEngine(time.Now())
	session := domain.SessionState{
		Step:     domain.StepExtras,
		Language: domain.LangEnglish,
		Data: domain.LeadData{
			VolumeCategory: domain.VolumeMedium,
			Destination:    domain.Address{FloorNum: 2, HasElevator: true},
		},
	}
	got, reply, terminal, err := e.Step(session, domain.InputEvent{Button: "done"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if terminal {
		t.Fatalf("estimate entry must not be terminal")
	}
	if got.Step != domain.StepEstimate {
		t.Fatalf("want estimate step, got %v", got.Step)
	}
	if got.Data.Estimate == nil {
		t.Fatalf("want computed estimate stored on entry")
	}
	if reply.Text == "" {
		t.Fatalf("want non-empty reply rendering the estimate")
	}
}

func TestStep_EstimateYesFinalizes(t *testing.T) {
	e := testEngine(time.Now())
	session := domain.SessionState{
		Step:     domain.StepEstimate,
		Language: domain.LangEnglish,
		Data:     domain.LeadData{VolumeCategory: domain.VolumeSmall},
	}
	got, _, terminal, err := e.Step(session, domain.InputEvent{Button: "yes"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !terminal {
		t.Fatalf("want terminal=true on estimate confirmation")
	}
	if got.Step != domain.StepDone {
		t.Fatalf("want done step, got %v", got.Step)
	}
	if got.Data.Estimate == nil {
		t.Fatalf("want final estimate computed")
	}
}

func TestStep_EstimateNoReturnsToCargo(t *testing.T) {
	e := testEngine(time.Now())
	session := domain.SessionState{Step: domain.StepEstimate, Language: domain.LangEnglish}
	got, _, terminal, err := e.Step(session, domain.InputEvent{Button: "no"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if terminal {
		t.Fatalf("want non-terminal on estimate rejection")
	}
	if got.Step != domain.StepCargo {
		t.Fatalf("want back to cargo step, got %v", got.Step)
	}
}

func TestStep_PhotoWaitDonePhotosExitsToExtras(t *testing.T) {
	e := testEngine(time.Now())
	session := domain.SessionState{Step: domain.StepPhotoWait, Language: domain.LangEnglish}
	got, _, _, err := e.Step(session, domain.InputEvent{Button: "done_photos"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if got.Step != domain.StepExtras {
		t.Fatalf("want extras step after done_photos, got %v", got.Step)
	}
}

func TestStep_LandingPrefillEntersConfirmAddresses(t *testing.T) {
	e := testEngine(time.Now())
	session := domain.SessionState{Step: domain.StepWelcome, Language: domain.LangEnglish}
	got, _, _, err := e.Step(session, domain.InputEvent{Text: "LP1:cargo=sofa;from=Haifa;to=Tel Aviv"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if got.Step != domain.StepConfirmAddresses {
		t.Fatalf("want confirm_addresses after landing prefill, got %v", got.Step)
	}
	if !got.Data.Extensions.LandingPrefilled {
		t.Fatalf("want LandingPrefilled flag set")
	}
	if got.Data.Pickups[0].AddressText != "Haifa" || got.Data.Destination.AddressText != "Tel Aviv" {
		t.Fatalf("want prefilled addresses, got %+v", got.Data)
	}
}

func TestStep_MultiPickupCountRoutesThroughAllAddrFloorSteps(t *testing.T) {
	e := testEngine(time.Now())
	session := domain.SessionState{Step: domain.StepPickupCount, Language: domain.LangEnglish}

	got, _, _, err := e.Step(session, domain.InputEvent{Button: "2"})
	if err != nil || got.Step != domain.StepAddrFrom {
		t.Fatalf("pickup_count=2: got step %v err %v", got.Step, err)
	}
	got, _, _, err = e.Step(got, domain.InputEvent{Text: "Address 1"})
	if err != nil || got.Step != domain.StepFloorFrom {
		t.Fatalf("addr_from: got step %v err %v", got.Step, err)
	}
	got, _, _, err = e.Step(got, domain.InputEvent{Text: "6 no elevator"})
	if err != nil || got.Step != domain.StepAddrFrom2 {
		t.Fatalf("floor_from: got step %v err %v", got.Step, err)
	}
	got, _, _, err = e.Step(got, domain.InputEvent{Text: "Address 2"})
	if err != nil || got.Step != domain.StepFloorFrom2 {
		t.Fatalf("addr_from_2: got step %v err %v", got.Step, err)
	}
	got, _, _, err = e.Step(got, domain.InputEvent{Text: "2 elevator"})
	if err != nil || got.Step != domain.StepAddrTo {
		t.Fatalf("floor_from_2: got step %v err %v", got.Step, err)
	}
	if got.Data.Pickups[0].FloorNum != 6 || got.Data.Pickups[0].HasElevator {
		t.Fatalf("pickup 1 floor data wrong: %+v", got.Data.Pickups[0])
	}
	if got.Data.Pickups[1].FloorNum != 2 || !got.Data.Pickups[1].HasElevator {
		t.Fatalf("pickup 2 floor data wrong: %+v", got.Data.Pickups[1])
	}
}
