package engine

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caravanleads/caravan/internal/domain"
)

// maxAdvanceDays is the date-window bound: dates beyond this many
// days from today are rejected as too_far.
const maxAdvanceDays = 180

// dateISORe matches an explicit ISO date (YYYY-MM-DD).
var dateISORe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// floorRe pulls a floor number out of free text in any of the three
// languages ("3", "floor 3", "этаж 3", "קומה 3").
var floorRe = regexp.MustCompile(`\d+`)

// noElevatorRe matches an explicit "no elevator" marker.
var noElevatorRe = regexp.MustCompile(`(?i)(no elevator|без лифта|ללא מעלית|no lift)`)

// yesElevatorRe matches an explicit "has elevator" marker.
var yesElevatorRe = regexp.MustCompile(`(?i)(elevator|лифт|מעלית|lift)`)

// exactTimeRe matches an HH:MM clock time.
var exactTimeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// parseDateToken resolves a date-step choice token ("tomorrow",
// "this_week") or an explicit ISO date into a concrete calendar date,
// validated against the [today, today+180d] window.
func parseDateToken(token string, now time.Time) (iso string, specific bool, hintKey string) {
	token = strings.ToLower(strings.TrimSpace(token))
	today := truncateToDate(now)

	switch token {
	case "tomorrow":
		return formatISO(today.AddDate(0, 0, 1)), false, ""
	case "this_week":
		return formatISO(today.AddDate(0, 0, 3)), false, ""
	case "specific":
		return "", true, ""
	}

	if m := dateISORe.FindStringSubmatch(token); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		candidate := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		return validateDateBounds(candidate, today)
	}

	return "", false, "date_unrecognized"
}

func validateDateBounds(candidate, today time.Time) (string, bool, string) {
	if candidate.Before(today) {
		return "", false, "too_soon"
	}
	if candidate.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return "", false, "too_far"
	}
	return formatISO(candidate), false, ""
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatISO(t time.Time) string {
	return t.Format("2006-01-02")
}

// parseFloorInput reads a floor number and elevator presence out of a
// free-text or button answer, e.g. "3 no", "этаж 3, без лифта",
// "floor 3 elevator". An elevator is present only when an elevator word
// appears without a negation such as "no elevator" or "без лифта", so
// "floor:3;elevator:no" reads as having one.
func parseFloorInput(text string) (floorNum int, hasElevator bool, ok bool) {
	m := floorRe.FindString(text)
	if m == "" {
		return 0, false, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 0 || n > 100 {
		return 0, false, false
	}
	hasElevator = yesElevatorRe.MatchString(text) && !noElevatorRe.MatchString(text)
	return n, hasElevator, true
}

// parseTimeWindow validates a time_slot button against the fixed
// vocabulary.
func parseTimeWindow(token string) (domain.TimeWindow, bool) {
	switch domain.TimeWindow(strings.ToLower(strings.TrimSpace(token))) {
	case domain.TimeWindowMorning, domain.TimeWindowDay, domain.TimeWindowEvening, domain.TimeWindowExact:
		return domain.TimeWindow(strings.ToLower(strings.TrimSpace(token))), true
	default:
		return "", false
	}
}

// parseExactTime validates an HH:MM clock time.
func parseExactTime(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if exactTimeRe.MatchString(t) {
		return t, true
	}
	return "", false
}

// parsePickupCount validates the pickup_count step's 1|2|3 answer.
func parsePickupCount(text string) (int, bool) {
	switch strings.TrimSpace(text) {
	case "1":
		return 1, true
	case "2":
		return 2, true
	case "3":
		return 3, true
	default:
		return 0, false
	}
}

// parseVolumeCategory validates the volume step's button answer.
func parseVolumeCategory(token string) (domain.VolumeCategory, bool) {
	switch domain.VolumeCategory(strings.ToLower(strings.TrimSpace(token))) {
	case domain.VolumeSmall, domain.VolumeMedium, domain.VolumeLarge, domain.VolumeXL:
		return domain.VolumeCategory(strings.ToLower(strings.TrimSpace(token))), true
	default:
		return "", false
	}
}

// parseExtraToggle validates an extras-step button answer: one of the
// three extra keys, or "done" to close the step.
func parseExtraToggle(token string) (extra domain.Extra, done bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "done":
		return "", true, true
	case string(domain.ExtraMovers):
		return domain.ExtraMovers, false, true
	case string(domain.ExtraAssembly):
		return domain.ExtraAssembly, false, true
	case string(domain.ExtraPacking):
		return domain.ExtraPacking, false, true
	default:
		return "", false, false
	}
}
