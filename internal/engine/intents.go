package engine

import (
	"strings"
	"unicode"

	"github.com/caravanleads/caravan/internal/domain"
)

// Intent is one of the cross-step control phrases recognized before
// step-specific validation.
type Intent string

const (
	IntentReset      Intent = "reset"
	IntentDonePhotos Intent = "done_photos"
	IntentYes        Intent = "yes"
	IntentNo         Intent = "no"
)

// DetectLanguage applies script-based language detection: Hebrew
// block wins, then Cyrillic, otherwise English. It
// reports ok=false for text with no detectable letters (digits,
// punctuation only), in which case the caller must keep the session's
// current language.
func DetectLanguage(text string) (domain.Lang, bool) {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hebrew, r):
			return domain.LangHebrew, true
		case unicode.Is(unicode.Cyrillic, r):
			return domain.LangRussian, true
		case unicode.IsLetter(r):
			return domain.LangEnglish, true
		}
	}
	return "", false
}

// detectIntent normalizes text against the configured per-language
// intent table. Button payloads that spell an intent name directly
// (e.g. "reset", "yes") also match, so a channel adapter can wire a
// quick-reply button straight to an intent without a translation table
// entry.
func (e *Engine) detectIntent(normalized string, lang domain.Lang) (Intent, bool) {
	if normalized == "" {
		return "", false
	}
	norm := strings.ToLower(strings.TrimSpace(normalized))

	for _, candidate := range []Intent{IntentReset, IntentDonePhotos, IntentYes, IntentNo} {
		if norm == string(candidate) {
			return candidate, true
		}
		if phrases, ok := e.Labels.Intents[string(candidate)]; ok {
			if phrase, ok := phrases[lang]; ok && phrase != "" && norm == strings.ToLower(phrase) {
				return candidate, true
			}
		}
	}
	return "", false
}

// handleIntentAtStep applies an intent (other than reset, which Step
// handles directly) in the context of the current step. Only photo_wait
// (done_photos) and estimate (yes/no) give intents special meaning;
// everywhere else an intent match falls through to ordinary step
// validation, since e.g. the word "yes" typed at the cargo step is just
// free text describing cargo.
func (e *Engine) handleIntentAtStep(session domain.SessionState, intent Intent, ev domain.InputEvent) (handled bool, next domain.Step, reply domain.OutboundMessage, terminal bool, err error) {
	switch session.Step {
	case domain.StepPhotoWait:
		if intent == IntentDonePhotos {
			return true, domain.StepExtras, e.prompt(domain.StepExtras, session.Language), false, nil
		}
	case domain.StepEstimate:
		if intent == IntentYes {
			return true, domain.StepDone, domain.OutboundMessage{}, true, nil
		}
		if intent == IntentNo {
			return true, domain.StepCargo, e.prompt(domain.StepCargo, session.Language), false, nil
		}
	}
	return false, session.Step, domain.OutboundMessage{}, false, nil
}
