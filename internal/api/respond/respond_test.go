package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthError(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		category string
	}{
		{auth.ErrExpired, http.StatusUnauthorized, CodeExpired},
		{auth.ErrForbiddenRole, http.StatusForbidden, CodeForbiddenRole},
		{auth.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated},
		{auth.ErrMalformed, http.StatusUnauthorized, CodeUnauthenticated},
		{auth.ErrInvalidSignature, http.StatusUnauthorized, CodeUnauthenticated},
		{fmt.Errorf("wrapped: %w", auth.ErrExpired), http.StatusUnauthorized, CodeExpired},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			AuthError(rec, httptest.NewRequest(http.MethodGet, "/api/books", nil), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var env Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tc.status, env.Code)
			assert.Equal(t, tc.category, env.Error)
			assert.NotContains(t, env.Message, "signature")
		})
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, "created", map[string]string{"id": "b1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"code":201,"message":"created","data":{"id":"b1"}}`, rec.Body.String())
}
