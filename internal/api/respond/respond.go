package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/rs/zerolog/log"
)

// Error categories surfaced to clients. They name the failed check class and
// nothing more specific.
const (
	CodeDuplicateIdentity  = "DuplicateIdentity"
	CodeInvalidRole        = "InvalidRole"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeUnauthenticated    = "Unauthenticated"
	CodeExpired            = "Expired"
	CodeForbiddenRole      = "ForbiddenRole"
	CodeNotFound           = "NotFound"
	CodeConflict           = "Conflict"
	CodeBadRequest         = "BadRequest"
	CodeInternal           = "Internal"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, category, message string) {
	write(w, status, Envelope{Code: status, Message: message, Error: category})
}

// AuthError maps token and role failures to their status codes. Malformed and
// badly signed tokens are reported the same way as a missing token.
func AuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrExpired):
		Error(w, http.StatusUnauthorized, CodeExpired, "session expired")
	case errors.Is(err, auth.ErrForbiddenRole):
		Error(w, http.StatusForbidden, CodeForbiddenRole, "access denied")
	case errors.Is(err, auth.ErrMalformed), errors.Is(err, auth.ErrInvalidSignature), errors.Is(err, auth.ErrUnauthenticated):
		Error(w, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Unexpected authorization failure")
		Error(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("respond: encode payload failed")
	}
}
