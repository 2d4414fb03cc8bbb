// Package apperror gives the core a single, small taxonomy of error
// kinds so the ingress coordinator and the job worker can decide
// retry/status behavior without string-matching error text.
//
// vanducng-goclaw gets by with ad-hoc sentinel errors per package (e.g.
// queue.ErrNoSessionsAvailable in codeready-toolchain-tarsy); this
// package generalizes that idiom into one enum because the core here
// spans three packages (engine, queue, tenant) that all need to agree
// on the same six kinds.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is one of the error categories the core distinguishes on.
type Kind string

const (
	KindInputRejection     Kind = "input_rejection"
	KindIdempotentReplay   Kind = "idempotent_replay"
	KindTransient          Kind = "transient"
	KindPermanentProvider  Kind = "permanent_provider"
	KindConfigCrypto       Kind = "config_crypto"
	KindInvariantViolation Kind = "invariant_violation"
)

// Error wraps a cause with a Kind and an optional localized hint key
// (used by KindInputRejection to drive the re-entry message).
type Error struct {
	Kind    Kind
	HintKey string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind wrapping cause.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Reject builds an input-rejection error carrying a localized hint key.
func Reject(hintKey string) *Error {
	return &Error{Kind: KindInputRejection, HintKey: hintKey, Cause: errors.New(hintKey)}
}

// KindOf extracts the Kind of err, or "" if err does not wrap an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
