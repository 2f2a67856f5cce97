// Package storage declares the persistence contracts used by the services.
// Every backend reports absence with ErrNotFound and uniqueness conflicts
// with ErrAlreadyExists, for every operation.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/isdelr/bookfinder-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore persists user identity records.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	// InsertUser must be atomic with respect to concurrent inserts of the
	// same email: exactly one succeeds, the rest get ErrAlreadyExists.
	InsertUser(ctx context.Context, user models.User) error
}

// BookStore is the catalog repository.
type BookStore interface {
	ListBooks(ctx context.Context, query string) ([]models.Book, error)
	GetBook(ctx context.Context, id string) (models.Book, error)
	InsertBook(ctx context.Context, book models.Book) error
	UpdateBook(ctx context.Context, book models.Book) error
	DeleteBook(ctx context.Context, id string) error
}

// EventStore persists the audit trail.
type EventStore interface {
	InsertEvent(ctx context.Context, event models.Event) error
	RecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store bundles the repositories a backend provides.
type Store interface {
	UserStore
	BookStore
	EventStore
	Close() error
}
