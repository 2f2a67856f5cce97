package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/isdelr/bookfinder-be/internal/storage"
)

// Event levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, actorID *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	PruneEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// EventService provides business logic for the audit trail.
type EventService struct {
	store storage.EventStore
	now   func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(store storage.EventStore, now func() time.Time) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{store: store, now: now}
}

// CreateEvent logs a new event.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, actorID *string) error {
	return s.store.InsertEvent(ctx, models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		ActorID:   actorID,
		CreatedAt: s.now().UTC(),
	})
}

// GetRecentEvents retrieves the most recent events.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	return s.store.RecentEvents(ctx, limit)
}

// PruneEvents deletes events older than retention and reports how many went.
func (s *EventService) PruneEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteEventsBefore(ctx, s.now().Add(-retention))
}
