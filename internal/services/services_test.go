package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/isdelr/bookfinder-be/internal/storage/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeClock is a settable time source shared by services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store  *sqlite.Store
	clock  *fakeClock
	tokens *auth.TokenManager
	events *EventService
	auth   *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clock := newFakeClock()
	tokens := auth.NewTokenManager(testSecret, "bookfinder-test", time.Hour)
	events := NewEventService(store, clock.Now)
	authSvc, err := NewAuthService(store, auth.BcryptHasher{Cost: bcrypt.MinCost}, tokens, events, clock.Now)
	require.NoError(t, err)

	return &testEnv{store: store, clock: clock, tokens: tokens, events: events, auth: authSvc}
}
