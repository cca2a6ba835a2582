// Package models contains domain models for libris.
package models

// PendingSelection marks a ResolutionState whose selection has not been made.
const PendingSelection = -1

// Slot names recorded in ResolutionState.PendingSlot. The component that
// issues a question sets the slot deliberately; nothing scans conversation
// history to recover it.
const (
	SlotSelection = "selection"
)

// ResolutionState is the per-conversation disambiguation state. Created fresh
// each time a new candidate set is produced, mutated turn by turn by the
// resolver, and discarded once a borrow/return action completes. It has no
// cross-session visibility.
type ResolutionState struct {
	// Candidates is the full candidate set the state was created with.
	Candidates []CatalogRecord `json:"candidates"`
	// Narrowed is the ambiguous subset, valid only while IsAmbiguous.
	Narrowed    []CatalogRecord `json:"narrowed_candidates,omitempty"`
	IsAmbiguous bool            `json:"is_ambiguous"`
	// SelectedIndex indexes into Active(); PendingSelection until resolved.
	SelectedIndex int `json:"selected_index"`
	// PendingSlot names the question the core last asked, empty before the
	// first resolver turn.
	PendingSlot string `json:"pending_slot,omitempty"`
}

// NewResolutionState starts a fresh state over a candidate set.
func NewResolutionState(candidates []CatalogRecord) *ResolutionState {
	return &ResolutionState{
		Candidates:    candidates,
		SelectedIndex: PendingSelection,
	}
}

// Active returns the candidate list currently under consideration: the
// narrowed subset once narrowing has happened, the original set otherwise.
// A selection index always refers to this list.
func (s *ResolutionState) Active() []CatalogRecord {
	if len(s.Narrowed) > 0 {
		return s.Narrowed
	}
	return s.Candidates
}

// Resolved reports whether a valid selection has been made.
func (s *ResolutionState) Resolved() bool {
	return s.SelectedIndex != PendingSelection
}

// Selected returns the selected record. Callers must check Resolved first.
func (s *ResolutionState) Selected() CatalogRecord {
	return s.Active()[s.SelectedIndex]
}

// SkipSentinel is the slot value the dialogue layer uses for "not provided".
const SkipSentinel = "skip"

// NormalizeSkip maps the skip sentinel to the empty string.
func NormalizeSkip(s string) string {
	if s == SkipSentinel {
		return ""
	}
	return s
}

// NormalizeSkipList drops skip sentinels and empty entries, preserving order.
func NormalizeSkipList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = NormalizeSkip(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// TurnSignal is the structured input the dialogue layer extracts from one
// utterance. Title and Authors may carry the "skip" sentinel meaning "not
// provided"; actions normalize it before searching.
type TurnSignal struct {
	Title   string       `json:"extracted_title,omitempty"`
	Authors []string     `json:"extracted_authors,omitempty"`
	Ordinal string       `json:"extracted_ordinal,omitempty"`
	RawText string       `json:"raw_utterance_text,omitempty"`
	Spans   []EntitySpan `json:"entity_spans,omitempty"`
}

// Empty reports whether the signal carries nothing usable.
func (t TurnSignal) Empty() bool {
	return t.Title == "" && len(t.Authors) == 0 && t.Ordinal == ""
}

// TurnResult is the resolver's output for one turn. Exactly one of
// {SelectedIndex set, IsAmbiguous, RepromptNeeded} holds, except on the very
// first turn where the state is still pending.
type TurnResult struct {
	SelectedIndex  *int            `json:"selected_index,omitempty"`
	IsAmbiguous    bool            `json:"is_ambiguous"`
	Narrowed       []CatalogRecord `json:"narrowed_candidates,omitempty"`
	RepromptNeeded bool            `json:"reprompt_needed"`
	Outcome        OutcomeKind     `json:"outcome"`
}
