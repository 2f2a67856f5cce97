// Package session is the client's mirror of the server's expiry and role
// checks. It decides what to show; it never decides what the server accepts.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/rs/zerolog/log"
)

// State of the local session. Expired is held from the Check that found the
// token stale until the next Check, Begin or End moves the session on.
type State int

const (
	Anonymous State = iota
	Authenticated
	Expired
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return "anonymous"
	}
}

// Decision tells the caller what to render for a protected view.
type Decision int

const (
	Render Decision = iota
	RedirectLogin
	// RedirectHome means the role does not match the view.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	default:
		return "redirect-home"
	}
}

// Errors returned by HandleStatus.
var (
	ErrSessionEnded = errors.New("session ended, please log in again")
	ErrAccessDenied = errors.New("access denied")
)

type displayClaims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session holds the client's token and display fields. Construct one per
// process and pass it to whatever needs it.
type Session struct {
	store  Store
	now    func() time.Time
	state  State
	record Record
}

// New restores any stored session from store.
func New(store Store, now func() time.Time) (*Session, error) {
	if now == nil {
		now = time.Now
	}
	s := &Session{store: store, now: now, state: Anonymous}
	record, err := store.Load()
	switch {
	case err == nil:
		s.record = record
		s.state = Authenticated
	case errors.Is(err, ErrNoSession):
	default:
		return nil, err
	}
	return s, nil
}

// Begin stores a freshly issued token.
func (s *Session) Begin(token string) error {
	record, err := decodeForDisplay(token)
	if err != nil {
		return err
	}
	if err := s.store.Save(record); err != nil {
		return err
	}
	s.record = record
	s.state = Authenticated
	return nil
}

// End logs out locally.
func (s *Session) End() error {
	s.record = Record{}
	s.state = Anonymous
	return s.store.Clear()
}

// Check decides what to do before rendering a view that needs required
// (models.RoleAny for any signed-in user). A stale token is cleared and the
// session reports Expired until the following Check, which settles it to
// Anonymous.
func (s *Session) Check(required models.Role) Decision {
	if s.state != Authenticated || s.record.Token == "" {
		s.state = Anonymous
		return RedirectLogin
	}
	if !s.now().Before(s.record.ExpiresAt) {
		if err := s.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("Failed to clear expired session")
		}
		s.record = Record{}
		s.state = Expired
		return RedirectLogin
	}
	if required != models.RoleAny && required != s.record.Role {
		return RedirectHome
	}
	return Render
}

// HandleStatus reacts to a server response: 401 tears the session down, 403
// keeps it and reports access denied.
func (s *Session) HandleStatus(code int) error {
	switch code {
	case http.StatusUnauthorized:
		if err := s.End(); err != nil {
			return err
		}
		return ErrSessionEnded
	case http.StatusForbidden:
		return ErrAccessDenied
	default:
		return nil
	}
}

// State returns the current local state.
func (s *Session) State() State { return s.state }

// Token returns the stored token, or "" when anonymous.
func (s *Session) Token() string { return s.record.Token }

// Username returns the display name decoded from the token.
func (s *Session) Username() string { return s.record.Username }

// Role returns the display role decoded from the token.
func (s *Session) Role() models.Role { return s.record.Role }

// ExpiresAt returns the decoded expiry.
func (s *Session) ExpiresAt() time.Time { return s.record.ExpiresAt }

// decodeForDisplay reads claims without verifying the signature; the client
// does not hold the server secret.
func decodeForDisplay(token string) (Record, error) {
	var claims displayClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Record{}, fmt.Errorf("unreadable token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return Record{}, errors.New("unreadable token: missing expiry")
	}
	return Record{
		Token:     token,
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
