package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

// PlannerStore persists planner tasks.
type PlannerStore interface {
	Create(ctx context.Context, userID string, in models.CreatePlannerTaskInput) (*models.PlannerTask, error)
	List(ctx context.Context, userID string) ([]models.PlannerTask, error)
	Update(ctx context.Context, userID, id string, in models.UpdatePlannerTaskInput) (*models.PlannerTask, error)
	Delete(ctx context.Context, userID, id string) error
}

type CreatePlannerTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// UpdatePlannerTaskRequest is a partial update; absent fields are unchanged.
type UpdatePlannerTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type PlannerHandler struct {
	tasks PlannerStore
	log   *zap.Logger
}

func NewPlannerHandler(tasks PlannerStore, log *zap.Logger) *PlannerHandler {
	return &PlannerHandler{tasks: tasks, log: log.Named("planner_handler")}
}

func (h *PlannerHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req CreatePlannerTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.tasks.Create(r.Context(), owner.UserID, models.CreatePlannerTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *PlannerHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	tasks, err := h.tasks.List(r.Context(), owner.UserID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Update handles PATCH /users/{userId}/planner/{id}, e.g. {"completed": true}.
func (h *PlannerHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req UpdatePlannerTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.tasks.Update(r.Context(), owner.UserID, chi.URLParam(r, "id"), models.UpdatePlannerTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Completed:   req.Completed,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *PlannerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), owner.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
