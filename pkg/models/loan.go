// Package models contains domain models for libris.
package models

import "time"

// LoanRecord tracks one borrow of one book. At most one active
// (IsReturned == false) loan exists per book at any time.
type LoanRecord struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	BookID     int64     `db:"book_id" json:"book_id"`
	BorrowedAt time.Time `db:"borrowed_at" json:"borrowed_at"`
	ReturnDue  time.Time `db:"return_due" json:"return_due"`
	IsReturned bool      `db:"is_returned" json:"is_returned"`
}
