package dispatch

import (
	"strconv"
	"strings"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/pricing"
)

// Renderer builds the localized crew-facing message from a
// CrewLeadView, driven by the language-indexed label map from
// config.LabelsConfig.Crew and the pricing catalog's item labels.
type Renderer struct {
	Labels config.LabelsConfig
	Items  *pricing.ItemCatalog
}

// NewRenderer builds a Renderer over the given label table and item
// catalog.
func NewRenderer(labels config.LabelsConfig, items *pricing.ItemCatalog) *Renderer {
	return &Renderer{Labels: labels, Items: items}
}

// RenderCrewMessage renders view into the crew-group text blob, in the
// target language.
func (r *Renderer) RenderCrewMessage(view CrewLeadView, lang domain.Lang) string {
	var b strings.Builder

	b.WriteString(r.label("crew_lead_header", lang, "Lead"))
	b.WriteString(" #")
	b.WriteString(strconv.Itoa(view.LeadNumber))
	b.WriteString("\n")

	if len(view.OriginNames) > 0 {
		b.WriteString(r.label("crew_from", lang, "From"))
		b.WriteString(": ")
		b.WriteString(strings.Join(view.OriginNames, ", "))
		b.WriteString("\n")
	}
	if len(view.DestinationNames) > 0 {
		b.WriteString(r.label("crew_to", lang, "To"))
		b.WriteString(": ")
		b.WriteString(strings.Join(view.DestinationNames, ", "))
		b.WriteString("\n")
	}

	for i, p := range view.Pickups {
		b.WriteString(r.label("crew_pickup", lang, "Pickup"))
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(r.floorLine(p, lang))
		b.WriteString("\n")
	}
	b.WriteString(r.label("crew_delivery", lang, "Delivery"))
	b.WriteString(": ")
	b.WriteString(r.floorLine(view.Destination, lang))
	b.WriteString("\n")

	if view.Date != "" {
		b.WriteString(r.label("crew_date", lang, "Date"))
		b.WriteString(": ")
		b.WriteString(view.Date)
		if view.ExactTime != "" {
			b.WriteString(" ")
			b.WriteString(view.ExactTime)
		} else if view.TimeWindow != "" {
			b.WriteString(" (")
			b.WriteString(r.label("crew_window_"+string(view.TimeWindow), lang, string(view.TimeWindow)))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}

	if view.VolumeCategory != "" {
		b.WriteString(r.label("crew_volume", lang, "Volume"))
		b.WriteString(": ")
		b.WriteString(r.label("crew_volume_"+string(view.VolumeCategory), lang, string(view.VolumeCategory)))
		b.WriteString("\n")
	}

	if len(view.ItemKeys) > 0 {
		b.WriteString(r.label("crew_items", lang, "Items"))
		b.WriteString(": ")
		b.WriteString(r.itemLabels(view.ItemKeys, lang))
		b.WriteString("\n")
	}

	if len(view.Extras) > 0 {
		labels := make([]string, 0, len(view.Extras))
		for _, extra := range view.Extras {
			labels = append(labels, r.label("crew_extra_"+string(extra), lang, string(extra)))
		}
		b.WriteString(r.label("crew_extras", lang, "Extras"))
		b.WriteString(": ")
		b.WriteString(strings.Join(labels, ", "))
		b.WriteString("\n")
	}

	if view.EstimateKnown {
		b.WriteString(r.label("crew_estimate", lang, "Estimate"))
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(view.EstimateMin))
		b.WriteString("-")
		b.WriteString(strconv.Itoa(view.EstimateMax))
		b.WriteString(" ")
		b.WriteString(view.Currency)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// floorLine renders one "floor N (elevator|no elevator)" line.
func (r *Renderer) floorLine(p PickupView, lang domain.Lang) string {
	elevator := r.label("crew_no_elevator", lang, "no elevator")
	if p.HasElevator {
		elevator = r.label("crew_elevator", lang, "elevator")
	}
	return r.label("crew_floor", lang, "floor") + " " + strconv.Itoa(p.FloorNum) + " (" + elevator + ")"
}

func (r *Renderer) itemLabels(keys []string, lang domain.Lang) string {
	labels := make([]string, 0, len(keys))
	for _, key := range keys {
		labels = append(labels, r.itemLabel(key, lang))
	}
	return strings.Join(labels, ", ")
}

func (r *Renderer) itemLabel(key string, lang domain.Lang) string {
	if r.Items != nil {
		if item, ok := r.Items.Items[key]; ok {
			if v, ok := item.Labels[lang]; ok {
				return v
			}
		}
	}
	return key
}

func (r *Renderer) label(key string, lang domain.Lang, fallback string) string {
	if byLang, ok := r.Labels.Crew[key]; ok {
		if v, ok := byLang[lang]; ok {
			return v
		}
	}
	return fallback
}
