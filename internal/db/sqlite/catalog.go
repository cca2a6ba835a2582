// Package sqlite provides SQLite database operations for libris.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akazawan/libris/pkg/models"
)

// CatalogStore provides catalog-record database operations. Records are
// written during the single-writer ingestion phase and read-only afterwards.
type CatalogStore struct {
	store *Store
}

// NewCatalogStore creates a new catalog store.
func NewCatalogStore(store *Store) *CatalogStore {
	return &CatalogStore{store: store}
}

// AddRecord inserts a record with its author rows. Authors already present
// are left untouched; seq preserves the record's author order.
func (s *CatalogStore) AddRecord(ctx context.Context, rec models.CatalogRecord) error {
	if len(rec.AuthorIDs) != len(rec.AuthorNames) {
		return fmt.Errorf("record %d: %d author ids but %d names",
			rec.RecordID, len(rec.AuthorIDs), len(rec.AuthorNames))
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const insertBook = `INSERT INTO books (book_id, title) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, insertBook, rec.RecordID, rec.Title); err != nil {
		return err
	}

	const insertAuthor = `INSERT OR IGNORE INTO authors (author_id, name) VALUES (?, ?)`
	const insertLink = `INSERT INTO book_authors (book_id, author_id, seq) VALUES (?, ?, ?)`
	for i, authorID := range rec.AuthorIDs {
		if _, err := tx.ExecContext(ctx, insertAuthor, authorID, rec.AuthorNames[i]); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertLink, rec.RecordID, authorID, i); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRecord retrieves one record with its authors in record order.
// Returns (nil, nil) when the id is unknown.
func (s *CatalogStore) GetRecord(ctx context.Context, bookID int64) (*models.CatalogRecord, error) {
	const bookQuery = `SELECT book_id, title FROM books WHERE book_id = ?`

	var rec models.CatalogRecord
	err := s.store.QueryRowContext(ctx, bookQuery, bookID).Scan(&rec.RecordID, &rec.Title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const authorQuery = `
		SELECT a.author_id, a.name
		FROM book_authors ba
		JOIN authors a ON a.author_id = ba.author_id
		WHERE ba.book_id = ?
		ORDER BY ba.seq
	`
	rows, err := s.store.QueryContext(ctx, authorQuery, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		rec.AuthorIDs = append(rec.AuthorIDs, id)
		rec.AuthorNames = append(rec.AuthorNames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecords retrieves records for the given ids, preserving the input order.
// Unknown ids are skipped.
func (s *CatalogStore) GetRecords(ctx context.Context, bookIDs []int64) ([]models.CatalogRecord, error) {
	var records []models.CatalogRecord
	for _, id := range bookIDs {
		rec, err := s.GetRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// BooksWithAuthors returns ids of books whose author set contains every id
// in the tuple, in rowid order.
func (s *CatalogStore) BooksWithAuthors(ctx context.Context, tuple []int64) ([]int64, error) {
	// The tuple may repeat an id when one extracted name matched the same
	// author twice; the count check needs distinct ids.
	seen := make(map[int64]struct{}, len(tuple))
	distinct := make([]int64, 0, len(tuple))
	for _, id := range tuple {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	if len(distinct) == 0 {
		return nil, nil
	}

	// #nosec G202 -- query uses parameterized placeholders, not user input
	query := `
		SELECT book_id FROM book_authors
		WHERE author_id IN (?` + repeatPlaceholders(len(distinct)-1) + `)
		GROUP BY book_id
		HAVING COUNT(DISTINCT author_id) = ?
		ORDER BY book_id
	`
	args := append(int64SliceToArgs(distinct), len(distinct))

	rows, err := s.store.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
