// Package entity deduplicates overlapping named-entity spans.
//
// Fuzzy NER tends to relabel part of a long title as a person name; when a
// person span sits entirely inside the title span, counting it as an author
// would double-count part of the title.
package entity

import "github.com/akazawan/libris/pkg/models"

// ResolveOverlap returns the person values to drop: those whose span is
// fully contained in the title span. persons and values are parallel.
// Pure function, no state.
func ResolveOverlap(title models.EntitySpan, persons []models.EntitySpan, values []string) map[string]struct{} {
	drop := make(map[string]struct{})
	for i, p := range persons {
		if i >= len(values) {
			break
		}
		if title.Contains(p) {
			drop[values[i]] = struct{}{}
		}
	}
	return drop
}

// FilterPersons removes dropped values from a person-value list, preserving
// order.
func FilterPersons(values []string, drop map[string]struct{}) []string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := drop[v]; ok {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}
