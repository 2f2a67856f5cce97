package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/bookfinder-be/internal/api/respond"
	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/isdelr/bookfinder-be/internal/services"
	"github.com/isdelr/bookfinder-be/internal/storage"
	"github.com/rs/zerolog/log"
)

// writeServiceError translates a service error into a status code. Anything
// unrecognized is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, validationErr.Error())
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, resource+" not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, respond.CodeConflict, resource+" already exists")
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrForbiddenRole), errors.Is(err, auth.ErrExpired):
		respond.AuthError(w, r, err)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "internal error")
	}
}
