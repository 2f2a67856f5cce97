package session

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func issue(t *testing.T, role models.Role, ttl time.Duration) string {
	t.Helper()
	tm := auth.NewTokenManager("0123456789abcdef0123456789abcdef", "bookfinder-test", ttl)
	token, _, err := tm.Issue(models.User{ID: "u1", Username: "alice", Role: role}, start)
	require.NoError(t, err)
	return token
}

func newSession(t *testing.T, now *time.Time) (*Session, *FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	s, err := New(store, func() time.Time { return *now })
	require.NoError(t, err)
	return s, store, dir
}

func TestSession_BeginAndCheck(t *testing.T) {
	now := start
	s, _, dir := newSession(t, &now)

	assert.Equal(t, Anonymous, s.State())
	assert.Equal(t, RedirectLogin, s.Check(models.RoleAny))

	require.NoError(t, s.Begin(issue(t, models.RoleReader, time.Hour)))
	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, "alice", s.Username())
	assert.Equal(t, models.RoleReader, s.Role())
	assert.Equal(t, start.Add(time.Hour), s.ExpiresAt().UTC())

	assert.Equal(t, Render, s.Check(models.RoleAny))
	assert.Equal(t, Render, s.Check(models.RoleReader))
	assert.Equal(t, RedirectHome, s.Check(models.RoleRecommender))

	info, err := os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSession_RestoredFromStore(t *testing.T) {
	now := start
	s, store, _ := newSession(t, &now)
	require.NoError(t, s.Begin(issue(t, models.RoleRecommender, time.Hour)))

	restored, err := New(store, func() time.Time { return now })
	require.NoError(t, err)
	assert.Equal(t, Authenticated, restored.State())
	assert.Equal(t, s.Token(), restored.Token())
	assert.Equal(t, Render, restored.Check(models.RoleRecommender))
}

func TestSession_ExpiredTokenDiscarded(t *testing.T) {
	now := start
	s, store, _ := newSession(t, &now)
	require.NoError(t, s.Begin(issue(t, models.RoleRecommender, time.Minute)))

	now = start.Add(time.Minute)
	assert.Equal(t, RedirectLogin, s.Check(models.RoleRecommender))
	assert.Equal(t, Expired, s.State())
	assert.Empty(t, s.Token())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Equal(t, RedirectLogin, s.Check(models.RoleAny))
	assert.Equal(t, Anonymous, s.State())
}

func TestSession_ExpiredThenBeginOrEnd(t *testing.T) {
	now := start
	s, _, _ := newSession(t, &now)
	require.NoError(t, s.Begin(issue(t, models.RoleReader, time.Minute)))

	now = start.Add(2 * time.Minute)
	require.Equal(t, RedirectLogin, s.Check(models.RoleAny))
	require.Equal(t, Expired, s.State())

	require.NoError(t, s.End())
	assert.Equal(t, Anonymous, s.State())

	require.NoError(t, s.Begin(issue(t, models.RoleReader, time.Hour)))
	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, Render, s.Check(models.RoleReader))
}

func TestSession_End(t *testing.T) {
	now := start
	s, store, _ := newSession(t, &now)
	require.NoError(t, s.Begin(issue(t, models.RoleReader, time.Hour)))

	require.NoError(t, s.End())
	assert.Equal(t, Anonymous, s.State())
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.End())
}

func TestSession_HandleStatus(t *testing.T) {
	now := start
	s, _, _ := newSession(t, &now)
	require.NoError(t, s.Begin(issue(t, models.RoleReader, time.Hour)))

	assert.NoError(t, s.HandleStatus(http.StatusOK))
	assert.NoError(t, s.HandleStatus(http.StatusNotFound))

	assert.ErrorIs(t, s.HandleStatus(http.StatusForbidden), ErrAccessDenied)
	assert.Equal(t, Authenticated, s.State())
	assert.NotEmpty(t, s.Token())

	assert.ErrorIs(t, s.HandleStatus(http.StatusUnauthorized), ErrSessionEnded)
	assert.Equal(t, Anonymous, s.State())
	assert.Empty(t, s.Token())
}

func TestSession_BeginRejectsGarbage(t *testing.T) {
	now := start
	s, store, _ := newSession(t, &now)

	assert.Error(t, s.Begin("not-a-token"))
	assert.Equal(t, Anonymous, s.State())
	_, err := store.Load()
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{"), 0600))
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)

	_, err = New(store, nil)
	assert.Error(t, err)
}
