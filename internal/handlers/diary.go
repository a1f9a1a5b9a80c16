package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

// DiaryStore persists free-form diary entries.
type DiaryStore interface {
	Create(ctx context.Context, userID string, in models.CreateDiaryEntryInput) (*models.DiaryEntry, error)
	List(ctx context.Context, userID string, limit, skip int) ([]models.DiaryEntry, int64, error)
	Delete(ctx context.Context, userID, id string) error
}

type CreateDiaryEntryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Mood    string `json:"mood,omitempty"`
	Date    string `json:"date,omitempty"`
}

type DiaryListResponse struct {
	Entries []models.DiaryEntry `json:"entries"`
	Total   int64               `json:"total"`
}

type DiaryHandler struct {
	diary DiaryStore
	log   *zap.Logger
}

func NewDiaryHandler(diary DiaryStore, log *zap.Logger) *DiaryHandler {
	return &DiaryHandler{diary: diary, log: log.Named("diary_handler")}
}

func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req CreateDiaryEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.diary.Create(r.Context(), owner.UserID, models.CreateDiaryEntryInput{
		Title:   req.Title,
		Content: req.Content,
		Mood:    req.Mood,
		Date:    req.Date,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// List supports optional limit and skip query parameters.
func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	entries, total, err := h.diary.List(r.Context(), owner.UserID, limit, skip)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, DiaryListResponse{Entries: entries, Total: total})
}

func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.diary.Delete(r.Context(), owner.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
