// Package resolve narrows catalog candidate sets to a single selection.
package resolve

import (
	"strconv"
	"strings"
)

// ordinalWords maps ordinal words and abbreviations to zero-based indices.
var ordinalWords = map[string]int{
	"first": 0, "second": 1, "third": 2, "fourth": 3, "fifth": 4,
	"sixth": 5, "seventh": 6, "eighth": 7, "ninth": 8,
	"1st": 0, "2nd": 1, "3rd": 2, "4th": 3, "5th": 4,
	"6th": 5, "7th": 6, "8th": 7, "9th": 8,
}

// ParseOrdinal maps an ordinal reference to a zero-based index over an
// active set of the given size. "last" selects the final entry; known words
// and abbreviations use the fixed table; anything else is parsed as a
// number minus one. Unrecognized words report !ok. Range checking is the
// caller's job.
func ParseOrdinal(word string, activeSize int) (int, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return 0, false
	}
	if w == "last" {
		return activeSize - 1, true
	}
	if idx, ok := ordinalWords[w]; ok {
		return idx, true
	}
	n, err := strconv.Atoi(w)
	if err != nil {
		return 0, false
	}
	return n - 1, true
}
