package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/isdelr/bookfinder-be/internal/storage"
	"github.com/isdelr/bookfinder-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// BookServiceProvider defines the interface for catalog services. Every
// operation addressing a single book returns storage.ErrNotFound when it is
// missing.
type BookServiceProvider interface {
	GetAllBooks(ctx context.Context, query string) ([]models.Book, error)
	GetBookByID(ctx context.Context, id string) (models.Book, error)
	CreateBook(ctx context.Context, actorID string, book models.Book) (models.Book, error)
	UpdateBook(ctx context.Context, actorID, id string, book models.Book) (models.Book, error)
	DeleteBook(ctx context.Context, actorID, id string) error
}

// Broadcaster fans a message out to subscribers of a topic.
type Broadcaster interface {
	BroadcastTo(topic string, message []byte)
}

// BookService provides business logic for catalog management.
type BookService struct {
	store  storage.BookStore
	events EventServiceProvider
	feed   Broadcaster
	now    func() time.Time
}

// NewBookService creates a new BookService. feed may be nil.
func NewBookService(store storage.BookStore, events EventServiceProvider, feed Broadcaster, now func() time.Time) *BookService {
	if now == nil {
		now = time.Now
	}
	return &BookService{store: store, events: events, feed: feed, now: now}
}

// GetAllBooks lists the catalog, filtered by query when it is non-empty.
func (s *BookService) GetAllBooks(ctx context.Context, query string) ([]models.Book, error) {
	return s.store.ListBooks(ctx, query)
}

// GetBookByID retrieves a single book.
func (s *BookService) GetBookByID(ctx context.Context, id string) (models.Book, error) {
	return s.store.GetBook(ctx, id)
}

// CreateBook validates and adds a book. A duplicate title is storage.ErrAlreadyExists.
func (s *BookService) CreateBook(ctx context.Context, actorID string, book models.Book) (models.Book, error) {
	book = normalizeBook(book)
	if err := validateBook(book); err != nil {
		return models.Book{}, err
	}

	now := s.now().UTC()
	book.ID = uuid.New().String()
	book.CreatedAt = now
	book.UpdatedAt = now
	if err := s.store.InsertBook(ctx, book); err != nil {
		return models.Book{}, err
	}

	s.record(ctx, "book.create", LevelInfo, fmt.Sprintf("Book '%s' added.", book.Title), actorID)
	s.notify("book_created", book)
	return book, nil
}

// UpdateBook replaces the fields of an existing book.
func (s *BookService) UpdateBook(ctx context.Context, actorID, id string, book models.Book) (models.Book, error) {
	book = normalizeBook(book)
	if err := validateBook(book); err != nil {
		return models.Book{}, err
	}

	existing, err := s.store.GetBook(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	book.ID = existing.ID
	book.CreatedAt = existing.CreatedAt
	book.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return models.Book{}, err
	}

	s.record(ctx, "book.update", LevelInfo, fmt.Sprintf("Book '%s' updated.", book.Title), actorID)
	s.notify("book_updated", book)
	return book, nil
}

// DeleteBook removes a book from the catalog.
func (s *BookService) DeleteBook(ctx context.Context, actorID, id string) error {
	existing, err := s.store.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBook(ctx, id); err != nil {
		return err
	}

	s.record(ctx, "book.delete", LevelWarn, fmt.Sprintf("Book '%s' was deleted.", existing.Title), actorID)
	s.notify("book_deleted", models.Book{ID: existing.ID, Title: existing.Title})
	return nil
}

func (s *BookService) record(ctx context.Context, eventType, level, message, actorID string) {
	if s.events == nil {
		return
	}
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	if err := s.events.CreateEvent(ctx, eventType, level, message, actor); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}

func (s *BookService) notify(action string, book models.Book) {
	if s.feed == nil {
		return
	}
	s.feed.BroadcastTo(websocket.TopicCatalog, websocket.NewMessage(action, book))
}

func normalizeBook(book models.Book) models.Book {
	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	book.Genre = strings.TrimSpace(book.Genre)
	book.PublishedDate = strings.TrimSpace(book.PublishedDate)
	book.CoverImage = strings.TrimSpace(book.CoverImage)
	return book
}

func validateBook(book models.Book) error {
	if book.Title == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if book.Author == "" {
		return &ValidationError{Field: "author", Reason: "is required"}
	}
	return validatePublishedDate(book.PublishedDate)
}
