package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

// NoteStore persists notes.
type NoteStore interface {
	Create(ctx context.Context, userID string, in models.CreateNoteInput) (*models.Note, error)
	List(ctx context.Context, userID string) ([]models.Note, error)
	Delete(ctx context.Context, userID, id string) error
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     string `json:"tag,omitempty"`
}

type NoteHandler struct {
	notes NoteStore
	log   *zap.Logger
}

func NewNoteHandler(notes NoteStore, log *zap.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, log: log.Named("note_handler")}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.notes.Create(r.Context(), owner.UserID, models.CreateNoteInput{
		Title:   req.Title,
		Content: req.Content,
		Tag:     req.Tag,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	notes, err := h.notes.List(r.Context(), owner.UserID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.notes.Delete(r.Context(), owner.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
