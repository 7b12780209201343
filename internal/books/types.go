// Package books looks up the catalog entry behind a conversation so the
// dialogue persona and voice selection have a title and author to work with.
package books

import "context"

// Book is one catalog entry.
type Book struct {
	ID     string
	Title  string
	Author string
}

// Catalog resolves books by id. A missing book is not an error; callers fall
// back to a generic persona.
type Catalog interface {
	BookByID(ctx context.Context, id string) (Book, bool, error)
	Close() error
}
