// Package models contains domain models for libris.
package models

// SearchMatch is one full-text hit: the caller-assigned rowid and the exact
// string that was indexed under it.
type SearchMatch struct {
	RowID int64  `json:"rowid"`
	Value string `json:"value"`
}

// SearchResult is the outcome of one spell-corrected index lookup.
// Produced per call; never persisted.
type SearchResult struct {
	Query     string        `json:"query_terms"`
	Corrected string        `json:"corrected_query"`
	Matches   []SearchMatch `json:"matches"`
}

// Values returns the matched field values in result order.
func (r *SearchResult) Values() []string {
	values := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		values[i] = m.Value
	}
	return values
}

// RowIDs returns the matched rowids in result order.
func (r *SearchResult) RowIDs() []int64 {
	ids := make([]int64, len(r.Matches))
	for i, m := range r.Matches {
		ids[i] = m.RowID
	}
	return ids
}
