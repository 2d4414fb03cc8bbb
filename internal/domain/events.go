package domain

// Provider identifies an inbound/outbound channel adapter. The adapters
// themselves (webhook receivers, senders) are external collaborators —
// this package only defines the boundary types they exchange with the
// core.
type Provider string

const (
	ProviderTwilio   Provider = "twilio"
	ProviderMeta     Provider = "meta"
	ProviderTelegram Provider = "telegram"
)

// MediaInput is one inbound media item attached to a ProviderEvent.
type MediaInput struct {
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	SourceRef   string `json:"source_ref"`
}

// ProviderEvent is the provider-normalized inbound event the core consumes.
type ProviderEvent struct {
	Provider         Provider     `json:"provider"`
	ProviderAccountID string      `json:"provider_account_id"`
	ChatID           string       `json:"chat_id"`
	MessageID        string       `json:"message_id"`
	Text             string       `json:"text,omitempty"`
	ButtonPayload    string       `json:"button_payload,omitempty"`
	Location         *GeoPoint    `json:"location,omitempty"`
	Media            []MediaInput `json:"media,omitempty"`
}

// Button is one quick-reply option attached to an OutboundMessage.
type Button struct {
	Payload string `json:"payload"`
	Label   string `json:"label"`
}

// MediaRef is an outbound reference to previously stored media (e.g. a
// signed URL the external media endpoint will mint).
type MediaRef struct {
	AssetID string `json:"asset_id"`
}

// OutboundMessage is the provider-normalized reply the core emits.
type OutboundMessage struct {
	TenantID  string     `json:"tenant_id"`
	ChatID    string     `json:"chat_id"`
	Text      string     `json:"text"`
	Buttons   []Button   `json:"buttons,omitempty"`
	MediaRefs []MediaRef `json:"media_refs,omitempty"`
}

// InputEvent is the engine-facing, already-classified form of a
// ProviderEvent: exactly one of the fields below is set.
type InputEvent struct {
	Text     string
	Button   string
	Location *GeoPoint
	Media    []MediaInput
}

// Kind reports which variant of InputEvent this is.
func (e InputEvent) Kind() InputEventKind {
	switch {
	case e.Location != nil:
		return InputEventLocation
	case len(e.Media) > 0:
		return InputEventMedia
	case e.Button != "":
		return InputEventButton
	default:
		return InputEventText
	}
}

// InputEventKind discriminates InputEvent variants.
type InputEventKind int

const (
	InputEventText InputEventKind = iota
	InputEventButton
	InputEventLocation
	InputEventMedia
)

// FromProviderEvent classifies a ProviderEvent into the engine's InputEvent shape.
func FromProviderEvent(ev ProviderEvent) InputEvent {
	switch {
	case ev.Location != nil:
		return InputEvent{Location: ev.Location}
	case len(ev.Media) > 0:
		return InputEvent{Media: ev.Media}
	case ev.ButtonPayload != "":
		return InputEvent{Button: ev.ButtonPayload}
	default:
		return InputEvent{Text: ev.Text}
	}
}
