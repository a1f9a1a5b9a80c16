package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

// BookStore persists the reading list.
type BookStore interface {
	Create(ctx context.Context, userID string, in models.CreateBookInput) (*models.Book, error)
	List(ctx context.Context, userID string) ([]models.Book, error)
	Delete(ctx context.Context, userID, id string) error
}

type CreateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Rating int    `json:"rating,omitempty"`
}

type BookHandler struct {
	books BookStore
	log   *zap.Logger
}

func NewBookHandler(books BookStore, log *zap.Logger) *BookHandler {
	return &BookHandler{books: books, log: log.Named("book_handler")}
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req CreateBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	book, err := h.books.Create(r.Context(), owner.UserID, models.CreateBookInput{
		Title:  req.Title,
		Author: req.Author,
		Status: req.Status,
		Notes:  req.Notes,
		Rating: req.Rating,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	books, err := h.books.List(r.Context(), owner.UserID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.books.Delete(r.Context(), owner.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
