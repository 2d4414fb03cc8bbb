package engine

import (
	"errors"
	"time"

	"github.com/caravanleads/caravan/internal/apperror"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/pricing"
)

var errPickupIndexOutOfRange = errors.New("pickup index out of range for pickup_count")

// dispatchStep applies the current step's validator/committer/successor
// logic. It returns the next step on success, or a non-empty hintKey on
// validator rejection (not mutating session.Data in that case). A
// non-nil error signals an invariant violation — a bug, not a
// user-facing rejection.
func (e *Engine) dispatchStep(session *domain.SessionState, ev domain.InputEvent, now time.Time) (domain.Step, string, error) {
	data := &session.Data

	switch session.Step {
	case domain.StepWelcome:
		return e.stepWelcome(data, ev)
	case domain.StepConfirmAddresses:
		return e.stepConfirmAddresses(data, ev)
	case domain.StepCargo:
		return e.stepCargo(data, ev)
	case domain.StepVolume:
		return e.stepVolume(data, ev)
	case domain.StepPickupCount:
		return e.stepPickupCount(data, ev)
	case domain.StepAddrFrom:
		return e.stepAddr(data, ev, 0)
	case domain.StepFloorFrom:
		return e.stepFloor(data, ev, 0)
	case domain.StepAddrFrom2:
		return e.stepAddr(data, ev, 1)
	case domain.StepFloorFrom2:
		return e.stepFloor(data, ev, 1)
	case domain.StepAddrFrom3:
		return e.stepAddr(data, ev, 2)
	case domain.StepFloorFrom3:
		return e.stepFloor(data, ev, 2)
	case domain.StepAddrTo:
		return e.stepAddrTo(data, ev)
	case domain.StepFloorTo:
		return e.stepFloorTo(data, ev)
	case domain.StepDate:
		return e.stepDate(data, ev, now)
	case domain.StepSpecificDate:
		return e.stepSpecificDate(data, ev, now)
	case domain.StepTimeSlot:
		return e.stepTimeSlot(data, ev)
	case domain.StepExactTime:
		return e.stepExactTime(data, ev)
	case domain.StepPhotoMenu:
		return e.stepPhotoMenu(data, ev)
	case domain.StepPhotoWait:
		return e.stepPhotoWait(data, ev)
	case domain.StepExtras:
		return e.stepExtras(data, ev)
	case domain.StepEstimate:
		return e.stepEstimate(data, ev)
	default:
		return "", "", apperror.New(apperror.KindInvariantViolation, stepNotInVocabulary(session.Step))
	}
}

type invalidStepError struct{ step domain.Step }

func (e invalidStepError) Error() string { return "step not in vocabulary: " + string(e.step) }

func stepNotInVocabulary(step domain.Step) error { return invalidStepError{step: step} }

func (e *Engine) stepWelcome(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	if ev.Kind() == domain.InputEventText {
		if fields, ok := parsePrefill(ev.Text); ok {
			if v, ok := fields[prefillFieldCargo]; ok {
				data.CargoRaw = v
				data.Items = pricing.ExtractItems(v, e.Pricing.Items)
			}
			if v, ok := fields[prefillFieldFrom]; ok {
				data.Pickups = []domain.Address{{AddressText: v}}
				data.PickupCount = 1
			}
			if v, ok := fields[prefillFieldTo]; ok {
				data.Destination.AddressText = v
			}
			if v, ok := fields[prefillFieldDate]; ok {
				data.Date = v
			}
			data.Extensions.LandingPrefilled = true
			return domain.StepConfirmAddresses, "", nil
		}
	}
	return domain.StepCargo, "", nil
}

func (e *Engine) stepConfirmAddresses(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	token := normalizedInput(ev)
	switch token {
	case "confirm_yes", "yes":
		if len(data.Items) > 0 {
			data.VolumeCategory = pricing.InferVolume(data.Items, data.CargoRaw, e.Pricing)
		}
		if data.PickupCount > 0 {
			return domain.StepAddrTo, "", nil
		}
		return domain.StepPickupCount, "", nil
	case "confirm_no", "no":
		data.Extensions.LandingPrefilled = false
		return domain.StepCargo, "", nil
	default:
		return "", "confirm_addresses_choice_required", nil
	}
}

func (e *Engine) stepCargo(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	if ev.Kind() != domain.InputEventText || ev.Text == "" {
		return "", "cargo_required", nil
	}
	data.CargoRaw = ev.Text
	data.Items = pricing.ExtractItems(ev.Text, e.Pricing.Items)

	if len(data.Items) > 0 || pricing.HasRoomDescriptor(ev.Text, e.Pricing) {
		data.VolumeCategory = pricing.InferVolume(data.Items, ev.Text, e.Pricing)
		return domain.StepPickupCount, "", nil
	}
	return domain.StepVolume, "", nil
}

func (e *Engine) stepVolume(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	cat, ok := parseVolumeCategory(normalizedInput(ev))
	if !ok {
		return "", "volume_choice_required", nil
	}
	data.VolumeCategory = cat
	return domain.StepPickupCount, "", nil
}

func (e *Engine) stepPickupCount(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	n, ok := parsePickupCount(normalizedInput(ev))
	if !ok {
		return "", "pickup_count_choice_required", nil
	}
	data.PickupCount = n
	data.Pickups = make([]domain.Address, n)
	return domain.StepAddrFrom, "", nil
}

func (e *Engine) stepAddr(data *domain.LeadData, ev domain.InputEvent, idx int) (domain.Step, string, error) {
	if ev.Kind() != domain.InputEventText || ev.Text == "" {
		return "", "address_required", nil
	}
	if idx >= len(data.Pickups) {
		return "", "", apperror.New(apperror.KindInvariantViolation, errPickupIndexOutOfRange)
	}
	data.Pickups[idx].AddressText = ev.Text
	return floorStepAfterAddr(idx), "", nil
}

func floorStepAfterAddr(idx int) domain.Step {
	switch idx {
	case 0:
		return domain.StepFloorFrom
	case 1:
		return domain.StepFloorFrom2
	default:
		return domain.StepFloorFrom3
	}
}

func (e *Engine) stepFloor(data *domain.LeadData, ev domain.InputEvent, idx int) (domain.Step, string, error) {
	floorNum, hasElevator, ok := parseFloorInput(normalizedInput(ev))
	if !ok {
		return "", "floor_format_invalid", nil
	}
	if idx >= len(data.Pickups) {
		return "", "", apperror.New(apperror.KindInvariantViolation, errPickupIndexOutOfRange)
	}
	data.Pickups[idx].FloorNum = floorNum
	data.Pickups[idx].HasElevator = hasElevator

	nextIdx := idx + 1
	if nextIdx < data.PickupCount {
		return addrStepForIndex(nextIdx), "", nil
	}
	return domain.StepAddrTo, "", nil
}

func addrStepForIndex(idx int) domain.Step {
	switch idx {
	case 1:
		return domain.StepAddrFrom2
	default:
		return domain.StepAddrFrom3
	}
}

func (e *Engine) stepAddrTo(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	if ev.Kind() != domain.InputEventText || ev.Text == "" {
		return "", "address_required", nil
	}
	data.Destination.AddressText = ev.Text
	return domain.StepFloorTo, "", nil
}

func (e *Engine) stepFloorTo(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	floorNum, hasElevator, ok := parseFloorInput(normalizedInput(ev))
	if !ok {
		return "", "floor_format_invalid", nil
	}
	data.Destination.FloorNum = floorNum
	data.Destination.HasElevator = hasElevator

	if len(data.Pickups) > 0 {
		route := pricing.ClassifyRoute(data.Pickups[0].AddressText, data.Destination.AddressText, e.Pricing)
		data.RouteClass = &route
	}
	return domain.StepDate, "", nil
}

func (e *Engine) stepDate(data *domain.LeadData, ev domain.InputEvent, now time.Time) (domain.Step, string, error) {
	iso, specific, hintKey := parseDateToken(normalizedInput(ev), now)
	if hintKey != "" {
		return "", hintKey, nil
	}
	if specific {
		return domain.StepSpecificDate, "", nil
	}
	data.Date = iso
	return domain.StepTimeSlot, "", nil
}

func (e *Engine) stepSpecificDate(data *domain.LeadData, ev domain.InputEvent, now time.Time) (domain.Step, string, error) {
	if ev.Kind() != domain.InputEventText {
		return "", "date_unrecognized", nil
	}
	iso, _, hintKey := parseDateToken(ev.Text, now)
	if hintKey != "" {
		return "", hintKey, nil
	}
	data.Date = iso
	return domain.StepTimeSlot, "", nil
}

func (e *Engine) stepTimeSlot(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	w, ok := parseTimeWindow(normalizedInput(ev))
	if !ok {
		return "", "time_slot_choice_required", nil
	}
	data.TimeWindow = w
	if w == domain.TimeWindowExact {
		return domain.StepExactTime, "", nil
	}
	return domain.StepPhotoMenu, "", nil
}

func (e *Engine) stepExactTime(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	t, ok := parseExactTime(normalizedInput(ev))
	if !ok {
		return "", "exact_time_format_invalid", nil
	}
	data.ExactTime = t
	return domain.StepPhotoMenu, "", nil
}

func (e *Engine) stepPhotoMenu(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	switch normalizedInput(ev) {
	case "upload":
		return domain.StepPhotoWait, "", nil
	case "skip":
		return domain.StepExtras, "", nil
	default:
		return "", "photo_menu_choice_required", nil
	}
}

func (e *Engine) stepPhotoWait(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	if ev.Kind() != domain.InputEventMedia {
		return "", "photo_expected", nil
	}
	for _, m := range ev.Media {
		data.Photos = append(data.Photos, m.SourceRef)
	}
	return domain.StepPhotoWait, "", nil
}

func (e *Engine) stepExtras(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	extra, done, ok := parseExtraToggle(normalizedInput(ev))
	if !ok {
		return "", "extras_choice_required", nil
	}
	if done {
		return domain.StepEstimate, "", nil
	}
	if !hasExtraValue(data.Extras, extra) {
		data.Extras = append(data.Extras, extra)
	}
	return domain.StepExtras, "", nil
}

func hasExtraValue(extras []domain.Extra, target domain.Extra) bool {
	for _, e := range extras {
		if e == target {
			return true
		}
	}
	return false
}

func (e *Engine) stepEstimate(data *domain.LeadData, ev domain.InputEvent) (domain.Step, string, error) {
	// yes/no are handled as global intents before dispatch reaches here
	// (engine.go handleIntentAtStep); anything else re-enters the step.
	return "", "estimate_confirmation_required", nil
}
