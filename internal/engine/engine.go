// Package engine implements the deterministic, per-chat conversation
// state machine. Every exported function here is pure: a Step call
// takes a SessionState and an InputEvent and returns a new
// SessionState, a reply, and a terminal flag, with no I/O and no
// wall-clock reads beyond the injected Clock.
package engine

import (
	"strconv"
	"time"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/pricing"
)

// Engine drives the conversation FSM. It holds no per-session state —
// every call is handed the SessionState it operates on.
type Engine struct {
	Pricing pricing.Config
	Labels  config.LabelsConfig
	Clock   func() time.Time

	// EstimateDisplayEnabled mirrors the per-tenant
	// estimate_display_enabled toggle: when false, the breakdown is
	// still computed and persisted but the user-facing range text is
	// withheld.
	EstimateDisplayEnabled bool
}

// New builds an Engine over the given pricing config and label tables.
func New(pricingCfg pricing.Config, labels config.LabelsConfig) *Engine {
	return &Engine{Pricing: pricingCfg, Labels: labels, Clock: time.Now, EstimateDisplayEnabled: true}
}

// Step advances the conversation: given (SessionState, InputEvent),
// it produces (SessionState', reply, terminal) deterministically.
func (e *Engine) Step(session domain.SessionState, ev domain.InputEvent) (domain.SessionState, domain.OutboundMessage, bool, error) {
	now := e.Clock()
	if session.Step == "" {
		session.Step = domain.StepWelcome
		session.CreatedAt = now
		if session.BotType == "" {
			session.BotType = domain.DefaultBotType
		}
	}

	priorLanguage := session.Language
	if priorLanguage == "" {
		priorLanguage = domain.LangEnglish
	}

	normalized := normalizedInput(ev)
	if intent, ok := e.detectIntent(normalized, priorLanguage); ok && intent == IntentReset {
		reset := domain.SessionState{
			TenantID:  session.TenantID,
			ChatID:    session.ChatID,
			LeadID:    session.LeadID,
			BotType:   session.BotType,
			Step:      domain.StepWelcome,
			Language:  priorLanguage,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return reset, e.prompt(reset.Step, reset.Language), false, nil
	}

	if ev.Kind() == domain.InputEventText {
		if lang, ok := DetectLanguage(ev.Text); ok {
			session.Language = lang
		}
	}
	if session.Language == "" {
		session.Language = domain.LangEnglish
	}

	if intent, ok := e.detectIntent(normalized, session.Language); ok {

		if handled, next, reply, terminal, err := e.handleIntentAtStep(session, intent, ev); handled {
			session.Step = next
			session.UpdatedAt = now
			if err != nil {
				return session, domain.OutboundMessage{}, false, err
			}
			if terminal {
				session.Data.Extensions.EstimateDisplayDisabled = !e.EstimateDisplayEnabled
				session.Data.Estimate = finalizeEstimate(session.Data, e.Pricing)
				return session, e.prompt(domain.StepDone, session.Language), true, nil
			}
			return session, reply, terminal, nil
		}
	}

	next, hintKey, err := e.dispatchStep(&session, ev, now)
	if err != nil {
		return session, domain.OutboundMessage{}, false, err
	}
	if hintKey != "" {
		// Rejection: step is re-entered, SessionState is not mutated
		// beyond language detection.
		return session, e.hint(session.Step, session.Language, hintKey), false, nil
	}

	session.Step = next
	session.UpdatedAt = now

	if session.Step == domain.StepDone {
		session.Data.Extensions.EstimateDisplayDisabled = !e.EstimateDisplayEnabled
		session.Data.Estimate = finalizeEstimate(session.Data, e.Pricing)
		return session, e.prompt(domain.StepDone, session.Language), true, nil
	}
	if session.Step == domain.StepEstimate {
		session.Data.Extensions.EstimateDisplayDisabled = !e.EstimateDisplayEnabled
		session.Data.Estimate = finalizeEstimate(session.Data, e.Pricing)
		return session, e.renderEstimatePrompt(session), false, nil
	}

	return session, e.prompt(session.Step, session.Language), false, nil
}

// renderEstimatePrompt builds the estimate step's entry message: the
// configured prompt text followed by the price range, or a suppressed
// notice when estimate_display is disabled or the suppression
// fallback fired.
func (e *Engine) renderEstimatePrompt(session domain.SessionState) domain.OutboundMessage {
	msg := e.prompt(domain.StepEstimate, session.Language)
	est := session.Data.Estimate
	if est == nil {
		return msg
	}
	if est.Suppressed || !e.EstimateDisplayEnabled {
		msg.Text += "\n" + e.hintText("estimate_suppressed", session.Language)
		return msg
	}
	msg.Text += "\n" + formatEstimateRange(*est)
	return msg
}

func (e *Engine) hintText(hintKey string, lang domain.Lang) string {
	if byLang, ok := e.Labels.Hints[hintKey]; ok {
		if v, ok := byLang[lang]; ok {
			return v
		}
	}
	return hintKey
}

func formatEstimateRange(est domain.Estimate) string {
	return strconv.Itoa(est.Min) + "-" + strconv.Itoa(est.Max) + " " + est.Currency
}

func finalizeEstimate(data domain.LeadData, cfg pricing.Config) *domain.Estimate {
	est := pricing.ComputeEstimate(data, cfg)
	est.Suppressed = pricing.ShouldSuppress(data.CargoRaw, data.Items, data.VolumeCategory)
	return &est
}

func normalizedInput(ev domain.InputEvent) string {
	switch ev.Kind() {
	case domain.InputEventButton:
		return ev.Button
	case domain.InputEventText:
		return ev.Text
	default:
		return ""
	}
}

// prompt renders the step's entry prompt from the configured label
// table, falling back to the bare step name when no label is configured
// (keeps the engine usable before an operator has populated every
// translation).
func (e *Engine) prompt(step domain.Step, lang domain.Lang) domain.OutboundMessage {
	text := string(step)
	if byLang, ok := e.Labels.Prompts[string(step)]; ok {
		if v, ok := byLang[lang]; ok {
			text = v
		}
	}
	return domain.OutboundMessage{Text: text}
}

// hint renders a localized validation-rejection message for hintKey at
// the given step.
func (e *Engine) hint(step domain.Step, lang domain.Lang, hintKey string) domain.OutboundMessage {
	text := hintKey
	if byLang, ok := e.Labels.Hints[hintKey]; ok {
		if v, ok := byLang[lang]; ok {
			text = v
		}
	}
	return domain.OutboundMessage{Text: text}
}
