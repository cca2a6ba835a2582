// Package action orchestrates the libris decision core: catalog search over
// the spell-corrected indices, and the borrow/return transactions.
package action

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/akazawan/libris/internal/db/sqlite"
	"github.com/akazawan/libris/internal/search"
	"github.com/akazawan/libris/pkg/models"
)

// SearchAction turns a free-form (title, authors) query into an initial
// candidate list, capped at the display limit.
type SearchAction struct {
	books        *search.Index
	authors      *search.Index
	catalog      *sqlite.CatalogStore
	displayLimit int
}

// NewSearchAction creates a catalog search action.
func NewSearchAction(books, authors *search.Index, catalog *sqlite.CatalogStore, displayLimit int) *SearchAction {
	return &SearchAction{books: books, authors: authors, catalog: catalog, displayLimit: displayLimit}
}

// SearchParams is the normalized query input. Either field may be empty or
// carry the "skip" sentinel.
type SearchParams struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
}

// SearchOutcome is the candidate list plus the derived presentation flags.
type SearchOutcome struct {
	Outcome    models.OutcomeKind     `json:"outcome"`
	Candidates []models.CatalogRecord `json:"candidates,omitempty"`
	// HasFoundBook is true when at least one candidate was found.
	HasFoundBook bool `json:"has_found_book"`
	// HasListSelection is true when the user must pick among several.
	HasListSelection bool `json:"has_list_selection"`
	// SelectedIndex is 0 when exactly one candidate was found, otherwise
	// PendingSelection.
	SelectedIndex  int    `json:"selected_index"`
	CorrectedTitle string `json:"corrected_title,omitempty"`
}

// Run executes the search. When both title and authors were given, each must
// ground in its own index: a zero-match field fails the whole query rather
// than silently searching on the other field alone.
func (a *SearchAction) Run(ctx context.Context, params SearchParams) (*SearchOutcome, error) {
	title := models.NormalizeSkip(strings.TrimSpace(params.Title))
	authorNames := models.NormalizeSkipList(params.Authors)

	noMatch := &SearchOutcome{Outcome: models.OutcomeNoMatch, SelectedIndex: models.PendingSelection}
	if title == "" && len(authorNames) == 0 {
		return noMatch, nil
	}

	var titleIDs []int64
	var correctedTitle string
	if title != "" {
		res, err := a.books.Search(ctx, title)
		if err != nil {
			return nil, err
		}
		titleIDs = res.RowIDs()
		correctedTitle = res.Corrected
		if len(titleIDs) == 0 {
			log.Debug().Str("title", title).Msg("title grounded nothing")
			return noMatch, nil
		}
	}

	var perName [][]int64
	for _, name := range authorNames {
		res, err := a.authors.Search(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(res.Matches) == 0 {
			log.Debug().Str("author", name).Msg("author grounded nothing")
			return noMatch, nil
		}
		perName = append(perName, res.RowIDs())
	}
	tuples := cartesian(perName)

	var bookIDs []int64
	if title != "" {
		bookIDs = titleIDs
	} else {
		// Authors only: every book whose author set contains a full tuple,
		// merged per distinct book id in discovery order.
		seen := make(map[int64]struct{})
		for _, tuple := range tuples {
			ids, err := a.catalog.BooksWithAuthors(ctx, tuple)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				bookIDs = append(bookIDs, id)
			}
		}
	}

	records, err := a.catalog.GetRecords(ctx, bookIDs)
	if err != nil {
		return nil, err
	}

	if title != "" && len(tuples) > 0 {
		records = filterByTuples(records, tuples)
	}

	records = dedupeRecords(records)
	if len(records) > a.displayLimit {
		records = records[:a.displayLimit]
	}

	if len(records) == 0 {
		return noMatch, nil
	}

	out := &SearchOutcome{
		Outcome:          models.OutcomeOK,
		Candidates:       records,
		HasFoundBook:     true,
		HasListSelection: len(records) > 1,
		SelectedIndex:    models.PendingSelection,
		CorrectedTitle:   correctedTitle,
	}
	if len(records) == 1 {
		out.SelectedIndex = 0
	}
	return out, nil
}

// cartesian expands per-name author matches into complete author-id tuples:
// one id per extracted name, every combination. A name matching two people
// yields two alternative tuples.
func cartesian(perName [][]int64) [][]int64 {
	if len(perName) == 0 {
		return nil
	}
	tuples := [][]int64{{}}
	for _, ids := range perName {
		next := make([][]int64, 0, len(tuples)*len(ids))
		for _, tuple := range tuples {
			for _, id := range ids {
				grown := make([]int64, len(tuple), len(tuple)+1)
				copy(grown, tuple)
				next = append(next, append(grown, id))
			}
		}
		tuples = next
	}
	return tuples
}

// filterByTuples keeps records containing at least one complete tuple.
func filterByTuples(records []models.CatalogRecord, tuples [][]int64) []models.CatalogRecord {
	kept := make([]models.CatalogRecord, 0, len(records))
	for _, rec := range records {
		for _, tuple := range tuples {
			if rec.ContainsAuthorTuple(tuple) {
				kept = append(kept, rec)
				break
			}
		}
	}
	return kept
}

// dedupeRecords folds distinct physical formats of the same logical
// title+author combination into one candidate, keeping first-found order.
func dedupeRecords(records []models.CatalogRecord) []models.CatalogRecord {
	seen := make(map[string]struct{}, len(records))
	kept := make([]models.CatalogRecord, 0, len(records))
	for _, rec := range records {
		ids := make([]int64, len(rec.AuthorIDs))
		copy(ids, rec.AuthorIDs)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		var b strings.Builder
		b.WriteString(rec.Title)
		for _, id := range ids {
			b.WriteByte('|')
			b.WriteString(strconv.FormatInt(id, 10))
		}
		key := b.String()

		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, rec)
	}
	return kept
}
