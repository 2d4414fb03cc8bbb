// Package dispatch builds the PII-free CrewLeadView projection of a
// finalized Lead and renders it into a localized text blob safe to
// forward to a crew group.
package dispatch

import "github.com/caravanleads/caravan/internal/domain"

// PickupView is one allowlisted pickup line: floor + elevator only,
// never the street address.
type PickupView struct {
	FloorNum    int
	HasElevator bool
}

// CrewLeadView is an explicit field allowlist. It never carries
// phone, street address, raw cargo text, user name, links, or media —
// only what a crew needs to plan the job.
type CrewLeadView struct {
	LeadNumber       int
	OriginNames      []string
	DestinationNames []string
	Date             string
	TimeWindow       domain.TimeWindow
	ExactTime        string
	VolumeCategory   domain.VolumeCategory
	Pickups          []PickupView
	Destination      PickupView
	Extras           []domain.Extra
	ItemKeys         []string
	EstimateMin      int
	EstimateMax      int
	Currency         string
	EstimateKnown    bool
}

// BuildCrewLeadView projects a finalized Lead into its allowlisted crew
// view. Anything not explicitly copied here — phone numbers, the raw
// cargo text, street addresses, photos — is dropped by construction.
func BuildCrewLeadView(lead domain.Lead) CrewLeadView {
	data := lead.Payload.Data

	view := CrewLeadView{
		LeadNumber:     lead.Payload.LeadNumber,
		Date:           data.Date,
		TimeWindow:     data.TimeWindow,
		ExactTime:      data.ExactTime,
		VolumeCategory: data.VolumeCategory,
		Extras:         data.Extras,
	}

	if data.RouteClass != nil {
		view.OriginNames = data.RouteClass.FromNames
		view.DestinationNames = data.RouteClass.ToNames
	}

	for _, p := range data.Pickups {
		view.Pickups = append(view.Pickups, PickupView{FloorNum: p.FloorNum, HasElevator: p.HasElevator})
	}
	view.Destination = PickupView{FloorNum: data.Destination.FloorNum, HasElevator: data.Destination.HasElevator}

	for _, it := range data.Items {
		view.ItemKeys = append(view.ItemKeys, it.Key)
	}

	est := lead.Payload.Estimate
	if !est.Suppressed && !data.Extensions.EstimateDisplayDisabled {
		view.EstimateKnown = true
		view.EstimateMin = est.Min
		view.EstimateMax = est.Max
		view.Currency = est.Currency
	}

	return view
}
