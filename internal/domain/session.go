// Package domain holds the pure data types shared by the conversation
// engine, the job queue, the pricing pipeline, and the storage layer.
// Nothing in this package performs I/O.
package domain

import "time"

// Lang is one of the three supported conversation languages.
type Lang string

const (
	LangHebrew  Lang = "he"
	LangEnglish Lang = "en"
	LangRussian Lang = "ru"
)

// Step identifies a node in the conversation state machine.
type Step string

const (
	StepWelcome          Step = "welcome"
	StepConfirmAddresses Step = "confirm_addresses"
	StepCargo            Step = "cargo"
	StepVolume           Step = "volume"
	StepPickupCount      Step = "pickup_count"
	StepAddrFrom         Step = "addr_from"
	StepFloorFrom        Step = "floor_from"
	StepAddrFrom2        Step = "addr_from_2"
	StepFloorFrom2       Step = "floor_from_2"
	StepAddrFrom3        Step = "addr_from_3"
	StepFloorFrom3       Step = "floor_from_3"
	StepAddrTo           Step = "addr_to"
	StepFloorTo          Step = "floor_to"
	StepDate             Step = "date"
	StepSpecificDate     Step = "specific_date"
	StepTimeSlot         Step = "time_slot"
	StepExactTime        Step = "exact_time"
	StepPhotoMenu        Step = "photo_menu"
	StepPhotoWait        Step = "photo_wait"
	StepExtras           Step = "extras"
	StepEstimate         Step = "estimate"
	StepDone             Step = "done"
)

// VolumeCategory buckets the rough size of the move.
type VolumeCategory string

const (
	VolumeSmall  VolumeCategory = "small"
	VolumeMedium VolumeCategory = "medium"
	VolumeLarge  VolumeCategory = "large"
	VolumeXL     VolumeCategory = "xl"
)

// TimeWindow is the delivery/pickup window the customer picked.
type TimeWindow string

const (
	TimeWindowMorning TimeWindow = "morning"
	TimeWindowDay     TimeWindow = "day"
	TimeWindowEvening TimeWindow = "evening"
	TimeWindowExact   TimeWindow = "exact"
)

// Extra is an optional add-on service.
type Extra string

const (
	ExtraMovers   Extra = "movers"
	ExtraAssembly Extra = "assembly"
	ExtraPacking  Extra = "packing"
)

// RouteBand is the categorical distance class used by pricing.
type RouteBand string

const (
	RouteSameCity          RouteBand = "same_city"
	RouteSameMetro         RouteBand = "same_metro"
	RouteInterRegionShort  RouteBand = "inter_region_short"
	RouteInterRegionLong   RouteBand = "inter_region_long"
	RouteCrossCountry      RouteBand = "cross_country"
)

// Item is one extracted cargo line.
type Item struct {
	Key      string `json:"key"`
	Qty      int    `json:"qty"`
	PriceMin int    `json:"price_min"`
	PriceMax int    `json:"price_max"`
	Heavy    bool   `json:"heavy"`
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address describes one pickup or the destination.
type Address struct {
	AddressText string    `json:"address_text"`
	FloorNum    int       `json:"floor_num"`
	HasElevator bool      `json:"has_elevator"`
	LocalityKey string    `json:"locality_key,omitempty"`
	Geo         *GeoPoint `json:"geo,omitempty"`
}

// BreakdownLine is one labeled contribution to the price estimate.
type BreakdownLine struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

// Estimate is the computed price range plus its debug breakdown.
type Estimate struct {
	Min        int             `json:"min"`
	Max        int             `json:"max"`
	Currency   string          `json:"currency"`
	Breakdown  []BreakdownLine `json:"breakdown"`
	Suppressed bool            `json:"suppressed"`
}

// RouteClassification is the computed distance/band for the move.
type RouteClassification struct {
	Band        RouteBand `json:"band"`
	DistanceKM  float64   `json:"distance_km"`
	FromNames   []string  `json:"from_names,omitempty"`
	ToNames     []string  `json:"to_names,omitempty"`
}

// Translations holds per-field, per-language overrides captured during the
// conversation (e.g. a free-text cargo description typed in Russian that
// also needs an English rendering for the operator).
type Translations map[string]map[Lang]string

// LeadData is the structured content of a conversation, independent of its
// control-flow position.
type LeadData struct {
	CargoRaw        string         `json:"cargo_raw"`
	Items           []Item         `json:"items"`
	VolumeCategory  VolumeCategory `json:"volume_category,omitempty"`
	PickupCount     int            `json:"pickup_count"`
	Pickups         []Address      `json:"pickups"`
	Destination     Address        `json:"destination"`
	Date            string         `json:"date"`
	TimeWindow      TimeWindow     `json:"time_window,omitempty"`
	ExactTime       string         `json:"exact_time,omitempty"`
	Extras          []Extra        `json:"extras,omitempty"`
	Photos          []string       `json:"photos,omitempty"`
	Estimate        *Estimate      `json:"estimate,omitempty"`
	RouteClass      *RouteClassification `json:"route_classification,omitempty"`
	Translations    Translations   `json:"translations,omitempty"`

	// Extensions holds the small set of known, typed scratch fields the
	// engine needs across steps, in place of a free-form "custom" or
	// "metadata" map — only the keys below are ever read, and the engine
	// must never probe for an unknown key.
	Extensions Extensions `json:"extensions,omitempty"`
}

// Extensions is a fixed, typed set of scratch fields in place of a
// free-form custom/metadata bag.
type Extensions struct {
	LeadNumber              int  `json:"lead_number,omitempty"`
	EstimateDisplayDisabled bool `json:"estimate_display_disabled,omitempty"`
	LandingPrefilled        bool `json:"landing_prefilled,omitempty"`
}

// SessionState is one mutable conversation, keyed by (tenant_id, chat_id).
type SessionState struct {
	TenantID  string    `json:"tenant_id"`
	ChatID    string    `json:"chat_id"`
	LeadID    string    `json:"lead_id"`
	BotType   string    `json:"bot_type"`
	Step      Step      `json:"step"`
	Language  Lang      `json:"language"`
	Data      LeadData  `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultBotType is the bot implementation this engine version represents.
const DefaultBotType = "moving_bot_v1"

// LeadStatus is the lifecycle state of a finalized Lead.
type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusInProgress LeadStatus = "in_progress"
	LeadStatusDone       LeadStatus = "done"
	LeadStatusRejected   LeadStatus = "rejected"
)

// LeadPayload is the frozen snapshot written into Lead.Payload at
// finalization time.
type LeadPayload struct {
	Data       LeadData     `json:"data"`
	Estimate   Estimate     `json:"estimate"`
	Translations Translations `json:"translations,omitempty"`
	Language   Lang         `json:"language"`
	LeadNumber int          `json:"lead_number"`
}

// Lead is the persisted, finalized intake record.
type Lead struct {
	TenantID  string      `json:"tenant_id"`
	LeadID    string      `json:"lead_id"`
	ChatID    string      `json:"chat_id"`
	LeadSeq   int64       `json:"lead_seq"`
	Status    LeadStatus  `json:"status"`
	Payload   LeadPayload `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	DeletedAt *time.Time  `json:"deleted_at,omitempty"`
}
