// Package resolve narrows catalog candidate sets to a single selection.
//
// The resolver is a state machine over ResolutionState, driven by each new
// utterance's extracted signals. Borrow, return and search all share it;
// the title/author/ordinal precedence rules live here and nowhere else.
package resolve

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/akazawan/libris/pkg/models"
)

// Searcher re-resolves free text against a spell-corrected index. Satisfied
// by *search.Index.
type Searcher interface {
	Search(ctx context.Context, query string) (*models.SearchResult, error)
}

// Resolver applies one turn's signals to a resolution state.
type Resolver struct {
	books   Searcher
	authors Searcher
	// titlePrecedence preserves the original behavior: a uniquely matching
	// title is accepted even when the record lacks a requested author.
	titlePrecedence bool
}

// New creates a resolver over the two collection indices.
func New(books, authors Searcher, titlePrecedence bool) *Resolver {
	return &Resolver{books: books, authors: authors, titlePrecedence: titlePrecedence}
}

// Step processes one turn. After every turn exactly one of {valid selection,
// ambiguous narrowing, invalid-reprompt} holds — except the very first turn
// for a form, which marks the selection pending without validating because
// the user has not yet answered.
func (r *Resolver) Step(ctx context.Context, st *models.ResolutionState, sig models.TurnSignal) (models.TurnResult, error) {
	active := st.Active()

	if st.PendingSlot == "" {
		st.PendingSlot = models.SlotSelection
		return models.TurnResult{Outcome: models.OutcomeOK}, nil
	}

	title := models.NormalizeSkip(sig.Title)
	authors := models.NormalizeSkipList(sig.Authors)

	// A name or title in the utterance takes precedence over any ordinal.
	switch {
	case title != "" || len(authors) > 0:
		return r.stepNames(ctx, st, active, title, authors)
	case sig.Ordinal != "":
		idx, ok := ParseOrdinal(sig.Ordinal, len(active))
		if !ok {
			log.Debug().Str("ordinal", sig.Ordinal).Msg("unrecognized ordinal")
			return reprompt(active), nil
		}
		return commit(st, active, idx), nil
	default:
		return reprompt(active), nil
	}
}

// stepNames applies the title/author matching rules against the active set.
func (r *Resolver) stepNames(ctx context.Context, st *models.ResolutionState, active []models.CatalogRecord, title string, authors []string) (models.TurnResult, error) {
	titleGiven := title != ""
	authorsGiven := len(authors) > 0

	var matchedByTitle []int
	if titleGiven {
		res, err := r.books.Search(ctx, title)
		if err != nil {
			return models.TurnResult{}, err
		}
		canon := stringSet(res.Values())
		for i, c := range active {
			if _, ok := canon[c.Title]; ok {
				matchedByTitle = append(matchedByTitle, i)
			}
		}
	}

	var matchedByAuthor []int
	if authorsGiven {
		nameMatches := make([]map[string]struct{}, len(authors))
		for i, name := range authors {
			res, err := r.authors.Search(ctx, name)
			if err != nil {
				return models.TurnResult{}, err
			}
			nameMatches[i] = stringSet(res.Values())
		}
		for i, c := range active {
			if hasAllAuthors(c, nameMatches) {
				matchedByAuthor = append(matchedByAuthor, i)
			}
		}
	}

	switch {
	case titleGiven && len(matchedByTitle) == 1:
		idx := matchedByTitle[0]
		if !r.titlePrecedence && authorsGiven && !containsIndex(matchedByAuthor, idx) {
			return reprompt(active), nil
		}
		return commit(st, active, idx), nil
	case !titleGiven && authorsGiven && len(matchedByAuthor) == 1:
		return commit(st, active, matchedByAuthor[0]), nil
	case len(matchedByTitle) > 0 && len(matchedByAuthor) > 0:
		inter := intersectIndices(matchedByTitle, matchedByAuthor)
		switch {
		case len(inter) == 1:
			return commit(st, active, inter[0]), nil
		case len(inter) > 1:
			return narrow(st, active, inter), nil
		default:
			return reprompt(active), nil
		}
	case len(matchedByTitle) > 1 && len(matchedByAuthor) == 0:
		return narrow(st, active, matchedByTitle), nil
	case len(matchedByAuthor) > 1 && len(matchedByTitle) == 0:
		return narrow(st, active, matchedByAuthor), nil
	default:
		return reprompt(active), nil
	}
}

// commit accepts a selection if it is in range, otherwise re-prompts with
// the active list unchanged.
func commit(st *models.ResolutionState, active []models.CatalogRecord, idx int) models.TurnResult {
	if idx < 0 || idx >= len(active) {
		log.Debug().Int("index", idx).Int("active", len(active)).Msg("selection out of range")
		return reprompt(active)
	}
	st.IsAmbiguous = false
	st.SelectedIndex = idx
	return models.TurnResult{
		SelectedIndex: &idx,
		Outcome:       models.OutcomeOK,
	}
}

// narrow records an ambiguous subset of the active set.
func narrow(st *models.ResolutionState, active []models.CatalogRecord, indices []int) models.TurnResult {
	subset := make([]models.CatalogRecord, len(indices))
	for i, idx := range indices {
		subset[i] = active[idx]
	}
	st.IsAmbiguous = true
	st.Narrowed = subset
	return models.TurnResult{
		IsAmbiguous: true,
		Narrowed:    subset,
		Outcome:     models.OutcomeAmbiguous,
	}
}

// reprompt re-displays the active candidate list verbatim and waits for
// another turn. State is untouched.
func reprompt(active []models.CatalogRecord) models.TurnResult {
	return models.TurnResult{
		RepromptNeeded: true,
		Narrowed:       active,
		Outcome:        models.OutcomeInvalidSelection,
	}
}

// hasAllAuthors reports whether the candidate satisfies every extracted
// author name: for each name, at least one of that name's canonical matches
// must appear in the candidate's author set.
func hasAllAuthors(c models.CatalogRecord, nameMatches []map[string]struct{}) bool {
	for _, canon := range nameMatches {
		found := false
		for name := range canon {
			if c.HasAuthorName(name) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func containsIndex(indices []int, idx int) bool {
	for _, i := range indices {
		if i == idx {
			return true
		}
	}
	return false
}

func intersectIndices(a, b []int) []int {
	inB := make(map[int]struct{}, len(b))
	for _, i := range b {
		inB[i] = struct{}{}
	}
	var out []int
	for _, i := range a {
		if _, ok := inB[i]; ok {
			out = append(out, i)
		}
	}
	return out
}
