package dispatch

import (
	"strings"
	"testing"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/pricing"
)

func TestRenderCrewMessage_FallsBackToKeyWhenNoLabel(t *testing.T) {
	r := NewRenderer(config.LabelsConfig{}, nil)
	view := CrewLeadView{
		LeadNumber: 3,
		Pickups:    []PickupView{{FloorNum: 2, HasElevator: true}},
		Destination: PickupView{FloorNum: 0, HasElevator: false},
		ItemKeys:    []string{"fridge"},
	}
	got := r.RenderCrewMessage(view, domain.LangEnglish)

	if !strings.Contains(got, "#3") {
		t.Fatalf("want lead number in message, got %q", got)
	}
	if !strings.Contains(got, "fridge") {
		t.Fatalf("want item key fallback in message, got %q", got)
	}
}

func TestRenderCrewMessage_UsesLabelTableAndItemCatalog(t *testing.T) {
	labels := config.LabelsConfig{
		Crew: map[string]map[domain.Lang]string{
			"crew_lead_header": {domain.LangRussian: "Заявка"},
			"crew_pickup":      {domain.LangRussian: "Загрузка"},
			"crew_delivery":    {domain.LangRussian: "Выгрузка"},
			"crew_floor":       {domain.LangRussian: "этаж"},
			"crew_elevator":    {domain.LangRussian: "лифт"},
			"crew_no_elevator": {domain.LangRussian: "без лифта"},
		},
	}
	items := pricing.NewItemCatalog(
		map[string]pricing.CatalogItem{
			"fridge": {Key: "fridge", Labels: map[domain.Lang]string{domain.LangRussian: "холодильник"}},
		},
		nil,
	)
	r := NewRenderer(labels, items)
	view := CrewLeadView{
		LeadNumber:  5,
		Pickups:     []PickupView{{FloorNum: 4, HasElevator: true}},
		Destination: PickupView{FloorNum: 1, HasElevator: false},
		ItemKeys:    []string{"fridge"},
	}
	got := r.RenderCrewMessage(view, domain.LangRussian)

	if !strings.Contains(got, "Заявка") {
		t.Fatalf("want Russian header, got %q", got)
	}
	if !strings.Contains(got, "холодильник") {
		t.Fatalf("want item label from catalog, got %q", got)
	}
	if !strings.Contains(got, "лифт") {
		t.Fatalf("want elevator label, got %q", got)
	}
	if !strings.Contains(got, "без лифта") {
		t.Fatalf("want no-elevator label for destination, got %q", got)
	}
}

func TestRenderCrewMessage_EstimateLineOnlyWhenKnown(t *testing.T) {
	r := NewRenderer(config.LabelsConfig{}, nil)
	known := CrewLeadView{EstimateKnown: true, EstimateMin: 100, EstimateMax: 200, Currency: "USD"}
	unknown := CrewLeadView{EstimateKnown: false}

	gotKnown := r.RenderCrewMessage(known, domain.LangEnglish)
	gotUnknown := r.RenderCrewMessage(unknown, domain.LangEnglish)

	if !strings.Contains(gotKnown, "100-200 USD") {
		t.Fatalf("want estimate range rendered, got %q", gotKnown)
	}
	if strings.Contains(gotUnknown, "USD") {
		t.Fatalf("want no estimate line when unknown, got %q", gotUnknown)
	}
}
