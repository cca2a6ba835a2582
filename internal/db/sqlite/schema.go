// Package sqlite provides SQLite database operations for libris.
package sqlite

// The partial unique index on active loans backstops the borrow transaction:
// even if the availability check were ever moved out of the write
// transaction, two active loans on one book cannot coexist.
const schema = `
CREATE TABLE IF NOT EXISTS books (
	book_id INTEGER NOT NULL PRIMARY KEY,
	title   TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS authors (
	author_id INTEGER NOT NULL PRIMARY KEY,
	name      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS book_authors (
	book_id   INTEGER NOT NULL,
	author_id INTEGER NOT NULL,
	seq       INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (book_id, author_id),
	FOREIGN KEY (book_id) REFERENCES books(book_id),
	FOREIGN KEY (author_id) REFERENCES authors(author_id)
);

CREATE INDEX IF NOT EXISTS idx_book_authors_author ON book_authors(author_id);

CREATE TABLE IF NOT EXISTS loans (
	id          INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	user_id     INTEGER NOT NULL,
	book_id     INTEGER NOT NULL,
	borrowed_at TEXT    NOT NULL,
	return_due  TEXT    NOT NULL,
	is_returned INTEGER NOT NULL DEFAULT 0 CHECK (is_returned IN (0, 1)),
	FOREIGN KEY (book_id) REFERENCES books(book_id)
);

CREATE INDEX IF NOT EXISTS idx_loans_user ON loans(user_id, is_returned);

CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_active_book
	ON loans(book_id) WHERE is_returned = 0;

CREATE VIRTUAL TABLE IF NOT EXISTS fts_book USING fts5(title);

CREATE VIRTUAL TABLE IF NOT EXISTS fts_author USING fts5(author_name);

CREATE TABLE IF NOT EXISTS search_vocab (
	id         INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	collection TEXT    NOT NULL,
	term       TEXT    NOT NULL,
	UNIQUE (collection, term)
);
`

func (s *Store) createSchema() error {
	_, err := s.db.Exec(schema)
	return err
}
