// Package models contains domain models for libris.
package models

// CatalogRecord is one logical catalog entry: a title plus its ordered
// author list. Records are immutable once loaded into the catalog store.
// AuthorNames is parallel to AuthorIDs.
type CatalogRecord struct {
	RecordID    int64    `db:"book_id" json:"record_id"`
	Title       string   `db:"title" json:"title"`
	AuthorIDs   []int64  `json:"author_ids"`
	AuthorNames []string `json:"author_names"`
}

// HasAuthorID reports whether the record lists the given author.
func (r CatalogRecord) HasAuthorID(id int64) bool {
	for _, a := range r.AuthorIDs {
		if a == id {
			return true
		}
	}
	return false
}

// HasAuthorName reports whether the record lists the given author name.
func (r CatalogRecord) HasAuthorName(name string) bool {
	for _, n := range r.AuthorNames {
		if n == name {
			return true
		}
	}
	return false
}

// ContainsAuthorTuple reports whether every author id in the tuple appears
// in the record's author set.
func (r CatalogRecord) ContainsAuthorTuple(tuple []int64) bool {
	for _, id := range tuple {
		if !r.HasAuthorID(id) {
			return false
		}
	}
	return true
}
