package notify

import (
	"strconv"
	"strings"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/domain"
)

// OperatorMessage renders the full operator-facing lead message: unlike
// dispatch.CrewLeadView, this carries every field (addresses, raw cargo
// text) since the operator channel is trusted. An optional translation
// pass retargets the rendered fields to the operator's language.
func OperatorMessage(lead domain.Lead, features config.FeaturesConfig) string {
	data := lead.Payload.Data
	lang := lead.Payload.Language
	if features.OperatorLeadTranslationEnabled && features.OperatorLeadTargetLang != "" {
		lang = features.OperatorLeadTargetLang
	}

	var b strings.Builder
	b.WriteString("Lead #")
	b.WriteString(strconv.Itoa(lead.Payload.LeadNumber))
	b.WriteString(" (")
	b.WriteString(lead.LeadID)
	b.WriteString(")\n")

	b.WriteString("Cargo: ")
	b.WriteString(translatedField(lead.Payload.Translations, "cargo_raw", lang, data.CargoRaw))
	b.WriteString("\n")

	for i, p := range data.Pickups {
		b.WriteString("Pickup ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(p.AddressText)
		b.WriteString(" floor ")
		b.WriteString(strconv.Itoa(p.FloorNum))
		b.WriteString(elevatorSuffix(p.HasElevator))
		b.WriteString("\n")
	}
	b.WriteString("Destination: ")
	b.WriteString(data.Destination.AddressText)
	b.WriteString(" floor ")
	b.WriteString(strconv.Itoa(data.Destination.FloorNum))
	b.WriteString(elevatorSuffix(data.Destination.HasElevator))
	b.WriteString("\n")

	b.WriteString("Date: ")
	b.WriteString(data.Date)
	if data.ExactTime != "" {
		b.WriteString(" ")
		b.WriteString(data.ExactTime)
	} else if data.TimeWindow != "" {
		b.WriteString(" (")
		b.WriteString(string(data.TimeWindow))
		b.WriteString(")")
	}
	b.WriteString("\n")

	if len(data.Extras) > 0 {
		extras := make([]string, len(data.Extras))
		for i, e := range data.Extras {
			extras[i] = string(e)
		}
		b.WriteString("Extras: ")
		b.WriteString(strings.Join(extras, ", "))
		b.WriteString("\n")
	}

	est := lead.Payload.Estimate
	if !est.Suppressed {
		b.WriteString("Estimate: ")
		b.WriteString(strconv.Itoa(est.Min))
		b.WriteString("-")
		b.WriteString(strconv.Itoa(est.Max))
		b.WriteString(" ")
		b.WriteString(est.Currency)
		b.WriteString("\n")
		for _, line := range est.Breakdown {
			b.WriteString("  ")
			b.WriteString(line.Label)
			b.WriteString(": ")
			b.WriteString(strconv.Itoa(line.Amount))
			b.WriteString("\n")
		}
	} else {
		b.WriteString("Estimate: to be confirmed\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func elevatorSuffix(hasElevator bool) string {
	if hasElevator {
		return " (elevator)"
	}
	return " (no elevator)"
}

// translatedField looks up a per-language override captured during the
// conversation (domain.Translations); falls back to the original value
// when no override exists for lang.
func translatedField(translations domain.Translations, field string, lang domain.Lang, original string) string {
	if byLang, ok := translations[field]; ok {
		if v, ok := byLang[lang]; ok {
			return v
		}
	}
	return original
}
