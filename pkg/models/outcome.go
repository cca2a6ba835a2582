// Package models contains domain models for libris.
package models

// OutcomeKind is the structured result taxonomy shared by search, resolution
// and the borrow/return actions. The dialogue layer turns these into
// user-facing text; the core never raises them as faults.
type OutcomeKind string

const (
	// OutcomeOK means the operation produced a definite result.
	OutcomeOK OutcomeKind = "ok"
	// OutcomeNoMatch means zero qualifying candidates were found.
	OutcomeNoMatch OutcomeKind = "no_match"
	// OutcomeAmbiguous means more than one qualifying candidate remains;
	// the conversation continues with the narrowed list.
	OutcomeAmbiguous OutcomeKind = "ambiguous"
	// OutcomeInvalidSelection means an ordinal or resolved index fell outside
	// the active candidate range; the current list is re-displayed.
	OutcomeInvalidSelection OutcomeKind = "invalid_selection"
	// OutcomeLimitExceeded means the user already holds the maximum number of
	// active loans.
	OutcomeLimitExceeded OutcomeKind = "limit_exceeded"
	// OutcomeAlreadyBorrowed means the requesting user already holds the
	// active loan on this book.
	OutcomeAlreadyBorrowed OutcomeKind = "already_borrowed"
	// OutcomeNotAvailable means another user holds the active loan.
	OutcomeNotAvailable OutcomeKind = "not_available"
	// OutcomeStorageFailure means a write failed during commit; nothing was
	// applied and the action must be restarted.
	OutcomeStorageFailure OutcomeKind = "storage_failure"
)

// Terminal reports whether the outcome ends the current action attempt
// (as opposed to continuing the disambiguation flow).
func (k OutcomeKind) Terminal() bool {
	switch k {
	case OutcomeAmbiguous, OutcomeInvalidSelection:
		return false
	}
	return true
}
