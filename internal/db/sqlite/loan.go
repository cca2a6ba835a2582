// Package sqlite provides SQLite database operations for libris.
package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akazawan/libris/pkg/models"
)

const dateLayout = "2006-01-02"

// LoanStore provides loan database operations. MaxBooks and RentDays come
// from configuration at construction; nothing here reads ambient state.
type LoanStore struct {
	store    *Store
	maxBooks int
	rentDays int
}

// NewLoanStore creates a new loan store.
func NewLoanStore(store *Store, maxBooks, rentDays int) *LoanStore {
	return &LoanStore{store: store, maxBooks: maxBooks, rentDays: rentDays}
}

// BorrowResult is the structured outcome of a borrow attempt.
type BorrowResult struct {
	Outcome models.OutcomeKind
	// Due is the committed due date, set only on OutcomeOK.
	Due time.Time
}

// Borrow commits a loan after checking the user's active-loan limit and the
// book's availability. All three steps run inside one immediate transaction,
// so both checks read the snapshot the insert commits against, and two
// concurrent attempts on the same book serialize: the loser observes the
// winner's row and fails with not_available.
func (s *LoanStore) Borrow(ctx context.Context, userID, bookID int64, now time.Time) (BorrowResult, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return BorrowResult{Outcome: models.OutcomeStorageFailure}, err
	}
	defer func() { _ = tx.Rollback() }()

	const countQuery = `SELECT COUNT(*) FROM loans WHERE user_id = ? AND is_returned = 0`
	var active int
	if err := tx.QueryRowContext(ctx, countQuery, userID).Scan(&active); err != nil {
		return BorrowResult{Outcome: models.OutcomeStorageFailure}, err
	}
	if active >= s.maxBooks {
		log.Debug().Int64("user_id", userID).Int("active", active).
			Msg("borrow rejected: loan limit reached")
		return BorrowResult{Outcome: models.OutcomeLimitExceeded}, nil
	}

	const holderQuery = `SELECT user_id FROM loans WHERE book_id = ? AND is_returned = 0 LIMIT 1`
	var holder int64
	err = tx.QueryRowContext(ctx, holderQuery, bookID).Scan(&holder)
	switch {
	case err == nil:
		if holder == userID {
			return BorrowResult{Outcome: models.OutcomeAlreadyBorrowed}, nil
		}
		return BorrowResult{Outcome: models.OutcomeNotAvailable}, nil
	case err != sql.ErrNoRows:
		return BorrowResult{Outcome: models.OutcomeStorageFailure}, err
	}

	due := now.AddDate(0, 0, s.rentDays)
	const insertQuery = `
		INSERT INTO loans (user_id, book_id, borrowed_at, return_due, is_returned)
		VALUES (?, ?, ?, ?, 0)
	`
	if _, err := tx.ExecContext(ctx, insertQuery,
		userID, bookID, now.Format(time.RFC3339), due.Format(dateLayout),
	); err != nil {
		if isUniqueViolation(err) {
			// Raced against another borrow that slipped in; same answer as
			// observing the row directly.
			return BorrowResult{Outcome: models.OutcomeNotAvailable}, nil
		}
		return BorrowResult{Outcome: models.OutcomeStorageFailure}, err
	}

	if err := tx.Commit(); err != nil {
		return BorrowResult{Outcome: models.OutcomeStorageFailure}, err
	}

	log.Debug().Int64("user_id", userID).Int64("book_id", bookID).
		Str("due", due.Format(dateLayout)).Msg("loan committed")
	return BorrowResult{Outcome: models.OutcomeOK, Due: due}, nil
}

// Return marks the user's active loan on the book returned. Returns
// no_match when the user holds no active loan on it.
func (s *LoanStore) Return(ctx context.Context, userID, bookID int64) (models.OutcomeKind, error) {
	const query = `
		UPDATE loans SET is_returned = 1
		WHERE user_id = ? AND book_id = ? AND is_returned = 0
	`
	result, err := s.store.ExecContext(ctx, query, userID, bookID)
	if err != nil {
		return models.OutcomeStorageFailure, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.OutcomeStorageFailure, err
	}
	if affected == 0 {
		return models.OutcomeNoMatch, nil
	}
	return models.OutcomeOK, nil
}

// ActiveLoans returns the user's unreturned loans, oldest first.
func (s *LoanStore) ActiveLoans(ctx context.Context, userID int64) ([]models.LoanRecord, error) {
	const query = `
		SELECT id, user_id, book_id, borrowed_at, return_due, is_returned
		FROM loans
		WHERE user_id = ? AND is_returned = 0
		ORDER BY id
	`
	rows, err := s.store.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []models.LoanRecord
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// ActiveCount returns the user's active-loan count.
func (s *LoanStore) ActiveCount(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM loans WHERE user_id = ? AND is_returned = 0`
	var count int
	err := s.store.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

func scanLoan(scanner interface{ Scan(...interface{}) error }) (models.LoanRecord, error) {
	var loan models.LoanRecord
	var borrowedAt, returnDue string
	var returned int
	if err := scanner.Scan(&loan.ID, &loan.UserID, &loan.BookID,
		&borrowedAt, &returnDue, &returned); err != nil {
		return loan, err
	}
	loan.IsReturned = returned != 0

	var err error
	if loan.BorrowedAt, err = time.Parse(time.RFC3339, borrowedAt); err != nil {
		return loan, err
	}
	if loan.ReturnDue, err = time.Parse(dateLayout, returnDue); err != nil {
		return loan, err
	}
	return loan, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
