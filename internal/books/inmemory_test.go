package books

import (
	"context"
	"testing"
)

func TestInMemoryCatalogLookup(t *testing.T) {
	c := NewInMemoryCatalog(Book{ID: "b1", Title: "Moby-Dick", Author: "Herman Melville"})

	b, ok, err := c.BookByID(context.Background(), "b1")
	if err != nil {
		t.Fatalf("BookByID() error = %v", err)
	}
	if !ok || b.Title != "Moby-Dick" {
		t.Fatalf("BookByID() = %+v, ok = %v", b, ok)
	}

	_, ok, err = c.BookByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("BookByID(missing) error = %v", err)
	}
	if ok {
		t.Fatalf("BookByID(missing) ok = true, want false")
	}
}

func TestInMemoryCatalogAdd(t *testing.T) {
	c := NewInMemoryCatalog()
	c.Add(Book{ID: "b2", Title: "Dracula", Author: "Bram Stoker"})
	if _, ok, _ := c.BookByID(context.Background(), "b2"); !ok {
		t.Fatalf("added book not found")
	}
}
