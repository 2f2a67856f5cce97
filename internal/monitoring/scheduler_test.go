package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvents struct {
	pruned    int64
	pruneErr  error
	retention time.Duration
	calls     int
	created   []string
}

func (f *fakeEvents) CreateEvent(_ context.Context, eventType, _, _ string, _ *string) error {
	f.created = append(f.created, eventType)
	return nil
}

func (f *fakeEvents) GetRecentEvents(context.Context, int) ([]models.Event, error) {
	return nil, nil
}

func (f *fakeEvents) PruneEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.calls++
	f.retention = retention
	return f.pruned, f.pruneErr
}

func TestNewScheduler_InvalidCronExpression(t *testing.T) {
	_, err := NewScheduler(&fakeEvents{}, "not a cron", time.Hour, nil)
	assert.Error(t, err)
}

func TestCheckAndRun(t *testing.T) {
	now := time.Date(2026, 5, 1, 2, 30, 0, 0, time.UTC)
	events := &fakeEvents{pruned: 4}
	s, err := NewScheduler(events, "0 3 * * *", 30*24*time.Hour, func() time.Time { return now })
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC), s.NextRun())

	assert.False(t, s.checkAndRun(context.Background()))
	assert.Zero(t, events.calls)

	now = now.Add(30 * time.Minute)
	assert.True(t, s.checkAndRun(context.Background()))
	assert.Equal(t, 1, events.calls)
	assert.Equal(t, 30*24*time.Hour, events.retention)
	assert.Equal(t, []string{"maintenance.prune"}, events.created)
	assert.Equal(t, time.Date(2026, 5, 2, 3, 0, 0, 0, time.UTC), s.NextRun())

	assert.False(t, s.checkAndRun(context.Background()))
	assert.Equal(t, 1, events.calls)
}

func TestCheckAndRun_NothingPruned(t *testing.T) {
	now := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	events := &fakeEvents{}
	s, err := NewScheduler(events, "@hourly", time.Hour, func() time.Time { return now })
	require.NoError(t, err)

	now = s.NextRun()
	assert.True(t, s.checkAndRun(context.Background()))
	assert.Empty(t, events.created)
}

func TestCheckAndRun_PruneFailureStillAdvances(t *testing.T) {
	now := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	events := &fakeEvents{pruneErr: errors.New("db down")}
	s, err := NewScheduler(events, "*/5 * * * *", time.Hour, func() time.Time { return now })
	require.NoError(t, err)

	now = s.NextRun()
	assert.True(t, s.checkAndRun(context.Background()))
	assert.True(t, s.NextRun().After(now))
	assert.Empty(t, events.created)
}
