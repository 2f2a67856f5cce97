package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/isdelr/bookfinder-be/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const bookColumns = `id, title, author, genre, published_date, cover_image, created_at, updated_at`

// ListBooks returns the catalog ordered by title, optionally filtered.
func (s *Store) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q) + "%"
		rows, err = s.pool.Query(ctx, `
			SELECT `+bookColumns+` FROM books
			WHERE title ILIKE $1 OR author ILIKE $1 OR genre ILIKE $1
			ORDER BY title`, pattern)
	} else {
		rows, err = s.pool.Query(ctx, "SELECT "+bookColumns+" FROM books ORDER BY title")
	}
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// GetBook fetches a single book.
func (s *Store) GetBook(ctx context.Context, id string) (models.Book, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+bookColumns+" FROM books WHERE id = $1", id)
	return scanBook(row)
}

// InsertBook adds a book; a duplicate title is ErrAlreadyExists.
func (s *Store) InsertBook(ctx context.Context, book models.Book) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO books ("+bookColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		book.ID, book.Title, book.Author, book.Genre, book.PublishedDate, book.CoverImage, book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// UpdateBook replaces the mutable fields of an existing book.
func (s *Store) UpdateBook(ctx context.Context, book models.Book) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE books SET title = $1, author = $2, genre = $3, published_date = $4, cover_image = $5, updated_at = $6
		WHERE id = $7`,
		book.Title, book.Author, book.Genre, book.PublishedDate, book.CoverImage, book.UpdatedAt, book.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update book: %w", err)
	}
	return requireAffected(tag)
}

// DeleteBook removes a book from the catalog.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return requireAffected(tag)
}

func requireAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanBook(row pgx.Row) (models.Book, error) {
	var book models.Book
	if err := row.Scan(&book.ID, &book.Title, &book.Author, &book.Genre, &book.PublishedDate,
		&book.CoverImage, &book.CreatedAt, &book.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Book{}, storage.ErrNotFound
		}
		return models.Book{}, err
	}
	return book, nil
}
