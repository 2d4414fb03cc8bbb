package notify

import (
	"strings"
	"testing"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/domain"
)

func sampleLeadForOperator() domain.Lead {
	return domain.Lead{
		LeadID: "lead-1",
		Payload: domain.LeadPayload{
			LeadNumber: 9,
			Language:   domain.LangRussian,
			Data: domain.LeadData{
				CargoRaw: "холодильник",
				Pickups: []domain.Address{
					{AddressText: "ул. Ленина, 1", FloorNum: 2, HasElevator: false},
				},
				Destination: domain.Address{AddressText: "ул. Мира, 5", FloorNum: 5, HasElevator: true},
				Date:        "2026-08-05",
				TimeWindow:  domain.TimeWindowEvening,
			},
			Estimate: domain.Estimate{Min: 200, Max: 400, Currency: "ILS"},
		},
	}
}

func TestOperatorMessage_IncludesAddressAndCargo(t *testing.T) {
	got := OperatorMessage(sampleLeadForOperator(), config.FeaturesConfig{})
	if !strings.Contains(got, "ул. Ленина, 1") {
		t.Fatalf("want pickup address in operator message, got %q", got)
	}
	if !strings.Contains(got, "холодильник") {
		t.Fatalf("want raw cargo text in operator message, got %q", got)
	}
	if !strings.Contains(got, "200-400 ILS") {
		t.Fatalf("want estimate range in operator message, got %q", got)
	}
}

func TestOperatorMessage_SuppressedEstimateShowsPlaceholder(t *testing.T) {
	lead := sampleLeadForOperator()
	lead.Payload.Estimate.Suppressed = true
	got := OperatorMessage(lead, config.FeaturesConfig{})
	if !strings.Contains(got, "to be confirmed") {
		t.Fatalf("want suppressed-estimate placeholder, got %q", got)
	}
}

func TestOperatorMessage_TranslationOverrideAppliesTargetLang(t *testing.T) {
	lead := sampleLeadForOperator()
	lead.Payload.Translations = domain.Translations{
		"cargo_raw": {domain.LangEnglish: "refrigerator"},
	}
	features := config.FeaturesConfig{OperatorLeadTranslationEnabled: true, OperatorLeadTargetLang: domain.LangEnglish}

	got := OperatorMessage(lead, features)
	if !strings.Contains(got, "refrigerator") {
		t.Fatalf("want translated cargo text, got %q", got)
	}
	if strings.Contains(got, "холодильник") {
		t.Fatalf("want original-language text replaced, got %q", got)
	}
}

func TestOperatorMessage_NoTranslationOverrideFallsBackToOriginal(t *testing.T) {
	lead := sampleLeadForOperator()
	got := OperatorMessage(lead, config.FeaturesConfig{OperatorLeadTranslationEnabled: true, OperatorLeadTargetLang: domain.LangEnglish})
	if !strings.Contains(got, "холодильник") {
		t.Fatalf("want original cargo text when no translation exists for target lang, got %q", got)
	}
}
