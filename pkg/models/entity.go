// Package models contains domain models for libris.
package models

// EntityKind classifies a named-entity span extracted by the NLU layer.
type EntityKind string

const (
	EntityTitle  EntityKind = "title"
	EntityPerson EntityKind = "person"
)

// EntitySpan is one extraction over a single utterance. Start and End are
// half-open character offsets. Spans of different kinds may overlap when the
// NLU mislabels part of a title as a person name.
type EntitySpan struct {
	Kind  EntityKind `json:"kind"`
	Text  string     `json:"text"`
	Start int        `json:"start"`
	End   int        `json:"end"`
}

// Contains reports whether the span fully contains other.
func (s EntitySpan) Contains(other EntitySpan) bool {
	return s.Start <= other.Start && other.End <= s.End
}
