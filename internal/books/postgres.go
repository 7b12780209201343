package books

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCatalog reads book rows from PostgreSQL. The table is owned by the
// library service; this side only ever reads it.
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

func (c *PostgresCatalog) BookByID(ctx context.Context, id string) (Book, bool, error) {
	var title string
	var author *string
	err := c.pool.QueryRow(ctx,
		`SELECT title, author FROM books WHERE id = $1 LIMIT 1`, id,
	).Scan(&title, &author)
	if errors.Is(err, pgx.ErrNoRows) {
		return Book{}, false, nil
	}
	if err != nil {
		return Book{}, false, fmt.Errorf("query book: %w", err)
	}

	b := Book{ID: id, Title: title}
	if author != nil {
		b.Author = *author
	}
	return b, true, nil
}

func (c *PostgresCatalog) Close() error { return nil }
