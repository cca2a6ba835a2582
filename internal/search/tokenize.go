// Package search provides the typo-tolerant full-text index for libris.
package search

import "strings"

// A term is any maximal run of ASCII alphanumerics or runes at U+0080 and
// over, matching what the FTS tokenizer considers a word. Everything else is
// a separator, preserved verbatim so the corrected query renders with the
// original punctuation intact.

func isTermRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r >= 0x80
}

// tokenized splits a query into terms and the separators around them.
// len(seps) == len(terms)+1; render(terms) reconstructs the query.
type tokenized struct {
	terms []string
	seps  []string
}

func tokenize(query string) tokenized {
	var t tokenized
	var term, sep strings.Builder

	flushTerm := func() {
		if term.Len() > 0 {
			t.terms = append(t.terms, term.String())
			term.Reset()
		}
	}

	for _, r := range query {
		if isTermRune(r) {
			if term.Len() == 0 {
				t.seps = append(t.seps, sep.String())
				sep.Reset()
			}
			term.WriteRune(r)
		} else {
			flushTerm()
			sep.WriteRune(r)
		}
	}
	flushTerm()
	t.seps = append(t.seps, sep.String())
	return t
}

// render rebuilds the query around substituted terms. terms must have the
// same length as t.terms.
func (t tokenized) render(terms []string) string {
	var b strings.Builder
	for i, term := range terms {
		b.WriteString(t.seps[i])
		b.WriteString(term)
	}
	b.WriteString(t.seps[len(t.seps)-1])
	return b.String()
}
