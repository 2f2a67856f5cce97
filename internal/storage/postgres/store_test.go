package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/isdelr/bookfinder-be/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Integration tests need a disposable database:
//
//	RUN_PG_INTEGRATION=true DATABASE_URL=postgres://... go test ./internal/storage/postgres
func openTestStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("RUN_PG_INTEGRATION") != "true" {
		t.Skip("set RUN_PG_INTEGRATION=true to run postgres integration tests")
	}
	url := os.Getenv("DATABASE_URL")
	require.NotEmpty(t, url, "DATABASE_URL must be set")

	ctx := context.Background()
	store, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = store.pool.Exec(ctx, "TRUNCATE users, books, events")
		_ = store.Close()
	})
	_, err = store.pool.Exec(ctx, "TRUNCATE users, books, events")
	require.NoError(t, err)
	return store
}

func TestPostgres_UsersConcurrentInsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var successes, conflicts atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			err := store.InsertUser(ctx, models.User{
				ID:           uuid.New().String(),
				Username:     "racer",
				Email:        "race@example.com",
				PasswordHash: []byte("digest"),
				PasswordSalt: []byte("salt"),
				MobileNumber: "5551234567",
				Role:         models.RoleReader,
				CreatedAt:    time.Now().UTC(),
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, storage.ErrAlreadyExists):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, successes.Load())
	assert.EqualValues(t, 7, conflicts.Load())

	user, err := store.FindByEmail(ctx, "race@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleReader, user.Role)
}

func TestPostgres_BooksCRUD(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	book := models.Book{
		ID: uuid.New().String(), Title: "Kindred", Author: "Octavia E. Butler",
		Genre: "Science Fiction", PublishedDate: "1979-06-01", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.InsertBook(ctx, book))
	assert.ErrorIs(t, store.InsertBook(ctx, models.Book{
		ID: uuid.New().String(), Title: "Kindred", Author: "Someone", CreatedAt: now, UpdatedAt: now,
	}), storage.ErrAlreadyExists)

	found, err := store.ListBooks(ctx, "butler")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, book.ID, found[0].ID)

	book.Genre = "Classic"
	require.NoError(t, store.UpdateBook(ctx, book))
	got, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Classic", got.Genre)

	require.NoError(t, store.DeleteBook(ctx, book.ID))
	_, err = store.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.DeleteBook(ctx, book.ID), storage.ErrNotFound)
	assert.ErrorIs(t, store.UpdateBook(ctx, book), storage.ErrNotFound)
}

func TestPostgres_EventsPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-10 * 24 * time.Hour)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.InsertEvent(ctx, models.Event{
			ID:        uuid.New().String(),
			Type:      "book.create",
			Level:     "info",
			Message:   fmt.Sprintf("event %d", i),
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}
	removed, err := store.DeleteEventsBefore(ctx, base.Add(36*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	recent, err := store.RecentEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
	assert.Equal(t, "event 3", recent[0].Message)
}
