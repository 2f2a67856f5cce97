package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var issuedAt = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func newTestManager(ttl time.Duration) *TokenManager {
	return NewTokenManager(testSecret, "bookfinder-test", ttl)
}

func testUser(role models.Role) models.User {
	return models.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Role: role}
}

func TestIssueDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour)
	for _, role := range []models.Role{models.RoleRecommender, models.RoleReader} {
		token, issued, err := tm.Issue(testUser(role), issuedAt)
		require.NoError(t, err)
		assert.Equal(t, issuedAt.Truncate(time.Second), issued.IssuedAt)
		assert.Equal(t, issued.IssuedAt.Add(time.Hour), issued.ExpiresAt)

		decoded, err := tm.Decode(token, issuedAt.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, issued, decoded)
		assert.Equal(t, role, decoded.Role)
		assert.Equal(t, "user-1", decoded.SubjectID)
		assert.Equal(t, "alice", decoded.Username)
	}
}

func TestDecode_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Minute)
	token, issued, err := tm.Issue(testUser(models.RoleReader), issuedAt)
	require.NoError(t, err)

	_, err = tm.Decode(token, issued.ExpiresAt.Add(-time.Nanosecond))
	assert.NoError(t, err)

	for _, at := range []time.Time{
		issued.ExpiresAt,
		issued.ExpiresAt.Add(time.Nanosecond),
		issued.ExpiresAt.Add(time.Second),
		issued.ExpiresAt.Add(24 * time.Hour),
	} {
		_, err := tm.Decode(token, at)
		assert.ErrorIs(t, err, ErrExpired, "at %s", at)
	}
}

func TestDecode_TamperedPayload(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour)
	token, _, err := tm.Issue(testUser(models.RoleReader), issuedAt)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	for i := range payload {
		tampered := append([]byte(nil), payload...)
		tampered[i] ^= 0x01
		forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString(tampered) + "." + parts[2]

		_, err := tm.Decode(forged, issuedAt)
		require.ErrorIs(t, err, ErrInvalidSignature, "byte %d", i)
	}
}

func TestDecode_RoleEscalationRejected(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour)
	token, _, err := tm.Issue(testUser(models.RoleReader), issuedAt)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	escalated := strings.Replace(string(payload), `"BookReader"`, `"BookRecommender"`, 1)
	require.NotEqual(t, string(payload), escalated)

	forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(escalated)) + "." + parts[2]
	_, err = tm.Decode(forged, issuedAt)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestDecode_SignatureCheckedBeforeExpiry(t *testing.T) {
	t.Parallel()

	token, issued, err := newTestManager(time.Minute).Issue(testUser(models.RoleReader), issuedAt)
	require.NoError(t, err)

	other := NewTokenManager("ffffffffffffffffffffffffffffffff", "bookfinder-test", time.Minute)
	_, err = other.Decode(token, issued.ExpiresAt.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := newTestManager(time.Hour).Issue(testUser(models.RoleReader), issuedAt)
	require.NoError(t, err)

	other := NewTokenManager("ffffffffffffffffffffffffffffffff", "bookfinder-test", time.Hour)
	_, err = other.Decode(token, issuedAt)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestDecode_WrongIssuer(t *testing.T) {
	t.Parallel()

	foreign := NewTokenManager(testSecret, "other-service", time.Hour)
	token, _, err := foreign.Issue(testUser(models.RoleRecommender), issuedAt)
	require.NoError(t, err)

	_, err = newTestManager(time.Hour).Decode(token, issuedAt.Add(time.Second))
	assert.ErrorIs(t, err, ErrMalformed)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour)
	cases := map[string]string{
		"empty":          "",
		"one segment":    "abc",
		"two segments":   "abc.def",
		"four segments":  "a.b.c.d",
		"empty segment":  "abc..def",
		"bad tag base64": "abc.def.!!!",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Decode(token, issuedAt)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecode_AuthenticButMissingClaims(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: "alice",
		Role:     models.RoleReader,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "user-1",
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tm.Decode(signed, issuedAt)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_UnknownRoleIsMalformed(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: "mallory",
		Role:     models.Role("Admin"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-9",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tm.Decode(signed, issuedAt)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tm := newTestManager(time.Hour)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, tokenClaims{
		Username: "alice",
		Role:     models.RoleReader,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tm.Decode(signed, issuedAt)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrExpired)
}
