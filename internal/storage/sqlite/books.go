package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/isdelr/bookfinder-be/internal/storage"
)

const bookColumns = `id, title, author, genre, published_date, cover_image, created_at, updated_at`

// ListBooks returns the catalog ordered by title. A non-empty query keeps
// books whose title, author or genre contains it, case-insensitively.
func (s *Store) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+bookColumns+` FROM books
			WHERE lower(title) LIKE ? ESCAPE '\' OR lower(author) LIKE ? ESCAPE '\' OR lower(genre) LIKE ? ESCAPE '\'
			ORDER BY title`, pattern, pattern, pattern)
	} else {
		rows, err = s.db.QueryContext(ctx, "SELECT "+bookColumns+" FROM books ORDER BY title")
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

// GetBook retrieves a single book by its ID.
func (s *Store) GetBook(ctx context.Context, id string) (models.Book, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	return scanBook(row)
}

// InsertBook adds a book; a duplicate title is ErrAlreadyExists.
func (s *Store) InsertBook(ctx context.Context, book models.Book) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO books("+bookColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		book.ID, book.Title, book.Author, book.Genre, book.PublishedDate, book.CoverImage,
		book.CreatedAt.UTC(), book.UpdatedAt.UTC(),
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
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, genre = ?, published_date = ?, cover_image = ?, updated_at = ?
		WHERE id = ?`,
		book.Title, book.Author, book.Genre, book.PublishedDate, book.CoverImage, book.UpdatedAt.UTC(), book.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update book: %w", err)
	}
	return requireAffected(res)
}

// DeleteBook removes a book from the catalog.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanBook(row scanner) (models.Book, error) {
	var book models.Book
	err := row.Scan(&book.ID, &book.Title, &book.Author, &book.Genre, &book.PublishedDate,
		&book.CoverImage, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Book{}, storage.ErrNotFound
		}
		return models.Book{}, err
	}
	return book, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
