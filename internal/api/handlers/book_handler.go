package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/bookfinder-be/internal/api/respond"
	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/isdelr/bookfinder-be/internal/services"
)

// BookHandler handles HTTP requests related to the catalog.
type BookHandler struct {
	service services.BookServiceProvider
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service services.BookServiceProvider) *BookHandler {
	return &BookHandler{service: service}
}

// GetAll handles the request to list books, optionally filtered by ?q=.
func (h *BookHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.GetAllBooks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err, "book")
		return
	}
	respond.JSON(w, http.StatusOK, "books", books)
}

// Get handles the request to get a single book by its ID.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetBookByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "book")
		return
	}
	respond.JSON(w, http.StatusOK, "book", book)
}

// Create handles the request to add a book.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "invalid request body")
		return
	}

	created, err := h.service.CreateBook(r.Context(), actorID(r), book)
	if err != nil {
		writeServiceError(w, r, err, "book")
		return
	}
	respond.JSON(w, http.StatusCreated, "book added successfully", created)
}

// Update handles the request to update an existing book.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "invalid request body")
		return
	}

	updated, err := h.service.UpdateBook(r.Context(), actorID(r), chi.URLParam(r, "id"), book)
	if err != nil {
		writeServiceError(w, r, err, "book")
		return
	}
	respond.JSON(w, http.StatusOK, "book updated successfully", updated)
}

// Delete handles the request to delete a book.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBook(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, "book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func actorID(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return claims.SubjectID
	}
	return ""
}
