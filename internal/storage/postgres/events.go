package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/bookfinder-be/internal/models"
)

// InsertEvent records an audit event.
func (s *Store) InsertEvent(ctx context.Context, event models.Event) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO events (id, type, level, message, actor_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		event.ID, event.Type, event.Level, event.Message, event.ActorID, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// RecentEvents retrieves the most recent events, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, type, level, message, actor_id, created_at FROM events ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.ActorID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DeleteEventsBefore prunes events created before cutoff.
func (s *Store) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM events WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return tag.RowsAffected(), nil
}
