package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/bookfinder-be/internal/api/respond"
	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/isdelr/bookfinder-be/internal/services"
	"github.com/isdelr/bookfinder-be/internal/storage"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and identity lookups.
type AuthHandler struct {
	service      services.AuthServiceProvider
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie sets the Secure flag
// on the session cookie.
func NewAuthHandler(service services.AuthServiceProvider, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, secureCookie: secureCookie}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobileNumber"`
	Role         string `json:"role"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		Username:     payload.Username,
		Email:        payload.Email,
		Password:     payload.Password,
		MobileNumber: payload.MobileNumber,
		Role:         models.Role(payload.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRole):
			respond.Error(w, http.StatusBadRequest, respond.CodeInvalidRole, "role must be BookRecommender or BookReader")
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, respond.CodeDuplicateIdentity, "an account with this email already exists")
		default:
			writeServiceError(w, r, err, "user")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, "user registered", user)
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, respond.CodeInvalidCredentials, "invalid email or password")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	respond.JSON(w, http.StatusOK, "login successful", result)
}

// Me returns the account behind the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	user, err := h.service.CurrentUser(r.Context(), claims)
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	respond.JSON(w, http.StatusOK, "current user", user)
}
