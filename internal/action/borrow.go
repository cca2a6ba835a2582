// Package action orchestrates the libris decision core.
package action

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akazawan/libris/internal/db/sqlite"
	"github.com/akazawan/libris/internal/search"
	"github.com/akazawan/libris/pkg/models"
)

// BorrowAction wraps the loan store transactions and adds the narration
// parameters the dialogue layer needs (book title, due date).
type BorrowAction struct {
	loans *sqlite.LoanStore
	books *search.Index
}

// NewBorrowAction creates a borrow/return action.
func NewBorrowAction(loans *sqlite.LoanStore, books *search.Index) *BorrowAction {
	return &BorrowAction{loans: loans, books: books}
}

// BorrowOutcome is the structured result of a borrow attempt.
type BorrowOutcome struct {
	Outcome   models.OutcomeKind `json:"outcome"`
	BookTitle string             `json:"book_title,omitempty"`
	Due       string             `json:"return_due,omitempty"`
}

// Borrow attempts the loan. Storage errors surface as a storage_failure
// outcome; the returned error is for logging only, nothing was applied.
func (a *BorrowAction) Borrow(ctx context.Context, userID, bookID int64) (*BorrowOutcome, error) {
	title, err := a.books.SearchByRowID(ctx, bookID)
	if err != nil {
		return &BorrowOutcome{Outcome: models.OutcomeStorageFailure}, err
	}

	res, err := a.loans.Borrow(ctx, userID, bookID, time.Now())
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("book_id", bookID).
			Msg("borrow transaction failed")
		return &BorrowOutcome{Outcome: res.Outcome, BookTitle: title}, err
	}

	out := &BorrowOutcome{Outcome: res.Outcome, BookTitle: title}
	if res.Outcome == models.OutcomeOK {
		out.Due = res.Due.Format("2006-01-02")
	}
	return out, nil
}

// ReturnOutcome is the structured result of a return attempt.
type ReturnOutcome struct {
	Outcome   models.OutcomeKind `json:"outcome"`
	BookTitle string             `json:"book_title,omitempty"`
}

// Return marks the user's active loan on the book returned.
func (a *BorrowAction) Return(ctx context.Context, userID, bookID int64) (*ReturnOutcome, error) {
	title, err := a.books.SearchByRowID(ctx, bookID)
	if err != nil {
		return &ReturnOutcome{Outcome: models.OutcomeStorageFailure}, err
	}

	kind, err := a.loans.Return(ctx, userID, bookID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("book_id", bookID).
			Msg("return failed")
	}
	return &ReturnOutcome{Outcome: kind, BookTitle: title}, err
}
