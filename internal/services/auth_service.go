package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/isdelr/bookfinder-be/internal/storage"
	"github.com/rs/zerolog/log"
)

// AuthServiceProvider defines the interface for registration and login.
type AuthServiceProvider interface {
	Register(ctx context.Context, input RegisterInput) (models.User, error)
	Login(ctx context.Context, email, password string) (LoginResult, error)
	CurrentUser(ctx context.Context, claims *auth.Claims) (models.User, error)
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	MobileNumber string
	Role         models.Role
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// AuthService issues session tokens against the credential store.
type AuthService struct {
	users  storage.UserStore
	hasher auth.Hasher
	tokens *auth.TokenManager
	events EventServiceProvider
	now    func() time.Time

	// Verified against when the email is unknown so both failure paths
	// cost one hash.
	dummySalt   []byte
	dummyDigest []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(users storage.UserStore, hasher auth.Hasher, tokens *auth.TokenManager, events EventServiceProvider, now func() time.Time) (*AuthService, error) {
	if now == nil {
		now = time.Now
	}
	salt, err := auth.NewSalt()
	if err != nil {
		return nil, err
	}
	digest, err := hasher.Hash([]byte("bookfinder-dummy-password"), salt)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		events:      events,
		now:         now,
		dummySalt:   salt,
		dummyDigest: digest,
	}, nil
}

// Register creates a new user. No token is issued.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	if !input.Role.Valid() {
		return models.User{}, auth.ErrInvalidRole
	}

	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)
	mobile := normalizeMobile(input.MobileNumber)
	switch {
	case username == "":
		return models.User{}, &ValidationError{Field: "username", Reason: "is required"}
	case !emailPattern.MatchString(email):
		return models.User{}, &ValidationError{Field: "email", Reason: "is not a valid address"}
	case !mobilePattern.MatchString(mobile):
		return models.User{}, &ValidationError{Field: "mobileNumber", Reason: "must be 10 digits"}
	}
	if err := validatePassword(input.Password); err != nil {
		return models.User{}, err
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return models.User{}, err
	}
	raw := []byte(input.Password)
	digest, err := s.hasher.Hash(raw, salt)
	clear(raw)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		PasswordSalt: salt,
		MobileNumber: mobile,
		Role:         input.Role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		return models.User{}, err
	}

	s.record(ctx, "auth.register", LevelInfo, fmt.Sprintf("User '%s' registered as %s.", user.Username, user.Role), &user.ID)
	return user.Sanitized(), nil
}

// Login verifies credentials and mints a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	raw := []byte(password)
	defer clear(raw)

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return LoginResult{}, fmt.Errorf("failed to look up user: %w", err)
		}
		s.hasher.Verify(raw, s.dummySalt, s.dummyDigest)
		s.record(ctx, "auth.login.fail", LevelWarn, "Failed login attempt.", nil)
		return LoginResult{}, auth.ErrInvalidCredentials
	}

	if !s.hasher.Verify(raw, user.PasswordSalt, user.PasswordHash) {
		s.record(ctx, "auth.login.fail", LevelWarn, "Failed login attempt.", &user.ID)
		return LoginResult{}, auth.ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user, s.now())
	if err != nil {
		return LoginResult{}, err
	}

	s.record(ctx, "auth.login.success", LevelInfo, fmt.Sprintf("User '%s' logged in.", user.Username), &user.ID)
	return LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user.Sanitized()}, nil
}

// CurrentUser loads the account behind validated claims.
func (s *AuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (models.User, error) {
	if claims == nil {
		return models.User{}, auth.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, claims.SubjectID)
	if err != nil {
		return models.User{}, err
	}
	return user.Sanitized(), nil
}

// record writes an audit event; failures are logged, never surfaced.
func (s *AuthService) record(ctx context.Context, eventType, level, message string, actorID *string) {
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(ctx, eventType, level, message, actorID); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
