package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/bookfinder-be/internal/models"
)

// Claims is the identity recovered from a valid session token.
type Claims struct {
	SubjectID string
	Username  string
	Role      models.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the wire form of Claims.
type tokenClaims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and decodes HS256 session tokens. It is immutable after
// construction and safe for concurrent use.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	parser *jwt.Parser
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// TTL returns the fixed lifetime of issued tokens.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Issue signs a session token for user. Timestamps are truncated to whole
// seconds, the precision of the encoded claims.
func (t *TokenManager) Issue(user models.User, now time.Time) (string, Claims, error) {
	issuedAt := now.UTC().Truncate(time.Second)
	claims := Claims{
		SubjectID: user.ID,
		Username:  user.Username,
		Role:      user.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(t.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: claims.Username,
		Role:     claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   claims.SubjectID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Decode verifies token and returns its claims as of now.
//
// The tag is checked over the raw header and payload segments before any
// claim is decoded, so a tampered payload is always ErrInvalidSignature and
// an attacker-chosen expiry is never read. A token minted for another issuer
// is ErrMalformed even when the secret is shared. ErrExpired is reported only
// for authentic tokens whose expiry is at or before now.
func (t *TokenManager) Decode(token string, now time.Time) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Claims{}, ErrMalformed
	}
	tag, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return Claims{}, ErrMalformed
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], tag, t.secret); err != nil {
		return Claims{}, ErrInvalidSignature
	}

	var wire tokenClaims
	if _, err := t.parser.ParseWithClaims(token, &wire, t.key); err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Claims{}, ErrInvalidSignature
		}
		return Claims{}, ErrMalformed
	}
	if wire.ExpiresAt == nil || wire.IssuedAt == nil || wire.Subject == "" || !wire.Role.Valid() {
		return Claims{}, ErrMalformed
	}
	if wire.Issuer != t.issuer {
		return Claims{}, ErrMalformed
	}

	claims := Claims{
		SubjectID: wire.Subject,
		Username:  wire.Username,
		Role:      wire.Role,
		IssuedAt:  wire.IssuedAt.Time.UTC(),
		ExpiresAt: wire.ExpiresAt.Time.UTC(),
	}
	if !now.Before(claims.ExpiresAt) {
		return Claims{}, ErrExpired
	}
	return claims, nil
}

func (t *TokenManager) key(*jwt.Token) (interface{}, error) {
	return t.secret, nil
}
