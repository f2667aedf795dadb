// SPDX-License-Identifier: MIT

package transition

import "fmt"

// Kind is a compact, typed failure signal for a refused or failed transition.
// Keep these stable: metrics and client UX depend on them.
type Kind string

const (
	// KindBlocked means the guard refused the action (hold, role or state).
	// Recoverable locally: the operator adjusts role or engages override.
	KindBlocked Kind = "BLOCKED"
	// KindMissingOverrideEvidence means override mode was engaged without
	// both a reason and a note.
	KindMissingOverrideEvidence Kind = "MISSING_OVERRIDE_EVIDENCE"
	// KindMissingTransitionEvidence means a direct receive was attempted
	// without its own reason code and note.
	KindMissingTransitionEvidence Kind = "MISSING_TRANSITION_EVIDENCE"
	// KindCollaboratorFailure means the persistence call itself failed.
	// Surfaced verbatim, never retried automatically: a blind retry risks
	// duplicate audit entries.
	KindCollaboratorFailure Kind = "COLLABORATOR_FAILURE"
)

// GuardrailError is the typed error returned by the executor. Reason is a
// short, specific, operator-facing message naming what to change.
type GuardrailError struct {
	Kind   Kind
	Reason string
	cause  error
}

func (e *GuardrailError) Error() string {
	return fmt.Sprintf("transition %s: %s", e.Kind, e.Reason)
}

func (e *GuardrailError) Unwrap() error {
	return e.cause
}

func blocked(reason string) *GuardrailError {
	return &GuardrailError{Kind: KindBlocked, Reason: reason}
}

func missingOverrideEvidence() *GuardrailError {
	return &GuardrailError{
		Kind:   KindMissingOverrideEvidence,
		Reason: "override mode requires both a reason and a note",
	}
}

func missingTransitionEvidence() *GuardrailError {
	return &GuardrailError{
		Kind:   KindMissingTransitionEvidence,
		Reason: "direct receive requires a reason code and a note",
	}
}

func collaboratorFailure(err error) *GuardrailError {
	return &GuardrailError{Kind: KindCollaboratorFailure, Reason: err.Error(), cause: err}
}
