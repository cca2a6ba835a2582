// Package search provides the typo-tolerant full-text index for libris.
//
// Each collection pairs an FTS5 virtual table with a shared correction
// vocabulary: every term ever indexed is remembered, queries are corrected
// term by term against that vocabulary before matching, and separators are
// preserved verbatim in the corrected query.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/akazawan/libris/internal/db/sqlite"
	"github.com/akazawan/libris/pkg/models"
)

// Collection names the two indexed field collections.
type Collection string

const (
	CollectionBook   Collection = "book"
	CollectionAuthor Collection = "author"
)

// maxCorrectionDistance bounds how far a correction may drift from the typed
// term; beyond it the lowercased original is used unchanged.
const maxCorrectionDistance = 3

// Index is a spell-corrected full-text index over one collection.
// Writes happen during a single-writer ingestion phase, never concurrently
// with search traffic.
type Index struct {
	store *sqlite.Store
	coll  Collection
}

// NewIndex creates an index over the given collection.
func NewIndex(store *sqlite.Store, coll Collection) *Index {
	return &Index{store: store, coll: coll}
}

func (ix *Index) table() string {
	if ix.coll == CollectionAuthor {
		return "fts_author"
	}
	return "fts_book"
}

func (ix *Index) column() string {
	if ix.coll == CollectionAuthor {
		return "author_name"
	}
	return "title"
}

// Add indexes text under the given rowid and grows the correction vocabulary
// with the text's terms.
func (ix *Index) Add(ctx context.Context, id int64, text string) error {
	insert := fmt.Sprintf(`INSERT INTO %s (rowid, %s) VALUES (?, ?)`, ix.table(), ix.column())
	if _, err := ix.store.ExecContext(ctx, insert, id, text); err != nil {
		return fmt.Errorf("index %s %d: %w", ix.coll, id, err)
	}

	const insertVocab = `INSERT OR IGNORE INTO search_vocab (collection, term) VALUES (?, ?)`
	for _, term := range tokenize(text).terms {
		if _, err := ix.store.ExecContext(ctx, insertVocab, string(ix.coll), strings.ToLower(term)); err != nil {
			return fmt.Errorf("vocab %s: %w", ix.coll, err)
		}
	}
	return nil
}

// Search corrects the query against the vocabulary, then runs the corrected
// terms as a prefix full-text match. An empty query matches nothing.
func (ix *Index) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	result := &models.SearchResult{Query: query, Corrected: query}

	tok := tokenize(query)
	if len(tok.terms) == 0 {
		return result, nil
	}

	corrected := make([]string, len(tok.terms))
	for i, term := range tok.terms {
		c, err := ix.correctTerm(ctx, term)
		if err != nil {
			return nil, err
		}
		corrected[i] = c
	}
	result.Corrected = tok.render(corrected)

	if result.Corrected != query {
		log.Debug().Str("collection", string(ix.coll)).
			Str("query", query).Str("corrected", result.Corrected).
			Msg("query corrected")
	}

	match := fmt.Sprintf(`SELECT rowid, %s FROM %s WHERE %s MATCH ? ORDER BY rowid`,
		ix.column(), ix.table(), ix.table())
	rows, err := ix.store.QueryContext(ctx, match, matchExpr(corrected))
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", ix.coll, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.SearchMatch
		if err := rows.Scan(&m.RowID, &m.Value); err != nil {
			return nil, err
		}
		result.Matches = append(result.Matches, m)
	}
	return result, rows.Err()
}

// SearchByRowID returns the exact indexed text for a known identifier,
// bypassing spelling correction. Returns "" when the id was never indexed.
func (ix *Index) SearchByRowID(ctx context.Context, id int64) (string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE rowid = ?`, ix.column(), ix.table())
	var text string
	err := ix.store.QueryRowContext(ctx, query, id).Scan(&text)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// correctTerm picks the term's single best correction. An exact
// (case-insensitive) vocabulary hit keeps the term verbatim; otherwise the
// nearest vocabulary word by edit distance wins, rank 1, ties broken by
// first-indexed order; with no usable vocabulary entry the lowercased
// original stands.
func (ix *Index) correctTerm(ctx context.Context, term string) (string, error) {
	lower := strings.ToLower(term)

	const exactQuery = `SELECT 1 FROM search_vocab WHERE collection = ? AND term = ?`
	var one int
	err := ix.store.QueryRowContext(ctx, exactQuery, string(ix.coll), lower).Scan(&one)
	if err == nil {
		return term, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	const vocabQuery = `SELECT term FROM search_vocab WHERE collection = ? ORDER BY id`
	rows, err := ix.store.QueryContext(ctx, vocabQuery, string(ix.coll))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	best := lower
	bestDist := maxCorrectionDistance + 1
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return "", err
		}
		if d := levenshtein(lower, word); d < bestDist {
			best = word
			bestDist = d
		}
	}
	return best, rows.Err()
}

// matchExpr builds an FTS5 match expression from corrected terms: each term
// quoted and prefix-matched, terms implicitly ANDed.
func matchExpr(terms []string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"*`
	}
	return strings.Join(parts, " ")
}
