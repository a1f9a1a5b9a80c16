package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/middleware"
	"github.com/AnshRaj112/decision-journal-backend/internal/models"
	"github.com/AnshRaj112/decision-journal-backend/internal/services"
)

type memoryNotes struct{ notes map[string][]models.Note }

func (m *memoryNotes) Create(_ context.Context, userID string, in models.CreateNoteInput) (*models.Note, error) {
	in, err := services.ValidateNote(in)
	if err != nil {
		return nil, err
	}
	n := models.Note{ID: primitive.NewObjectID(), UserIDString: userID, Title: in.Title, Content: in.Content, Tag: in.Tag}
	m.notes[userID] = append(m.notes[userID], n)
	return &n, nil
}

func (m *memoryNotes) List(_ context.Context, userID string) ([]models.Note, error) {
	return append([]models.Note{}, m.notes[userID]...), nil
}

func (m *memoryNotes) Delete(_ context.Context, userID, id string) error {
	for i, n := range m.notes[userID] {
		if n.ID.Hex() == id {
			m.notes[userID] = append(m.notes[userID][:i], m.notes[userID][i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

type memoryBooks struct{ books map[string][]models.Book }

func (m *memoryBooks) Create(_ context.Context, userID string, in models.CreateBookInput) (*models.Book, error) {
	b, err := services.ValidateBook(in)
	if err != nil {
		return nil, err
	}
	b.ID, b.UserIDString = primitive.NewObjectID(), userID
	m.books[userID] = append(m.books[userID], b)
	return &b, nil
}

func (m *memoryBooks) List(_ context.Context, userID string) ([]models.Book, error) {
	return append([]models.Book{}, m.books[userID]...), nil
}

func (m *memoryBooks) Delete(_ context.Context, userID, id string) error {
	for i, b := range m.books[userID] {
		if b.ID.Hex() == id {
			m.books[userID] = append(m.books[userID][:i], m.books[userID][i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

type memoryPlanner struct{ tasks map[string][]models.PlannerTask }

func (m *memoryPlanner) Create(_ context.Context, userID string, in models.CreatePlannerTaskInput) (*models.PlannerTask, error) {
	task, err := services.ValidatePlannerTask(in)
	if err != nil {
		return nil, err
	}
	task.ID, task.UserIDString = primitive.NewObjectID(), userID
	m.tasks[userID] = append(m.tasks[userID], task)
	return &task, nil
}

func (m *memoryPlanner) List(_ context.Context, userID string) ([]models.PlannerTask, error) {
	return append([]models.PlannerTask{}, m.tasks[userID]...), nil
}

func (m *memoryPlanner) Update(_ context.Context, userID, id string, in models.UpdatePlannerTaskInput) (*models.PlannerTask, error) {
	for i := range m.tasks[userID] {
		task := &m.tasks[userID][i]
		if task.ID.Hex() != id {
			continue
		}
		if in.Title != nil {
			task.Title = *in.Title
		}
		if in.Completed != nil {
			task.Completed = *in.Completed
		}
		updated := *task
		return &updated, nil
	}
	return nil, models.ErrNotFound
}

func (m *memoryPlanner) Delete(_ context.Context, userID, id string) error {
	for i, task := range m.tasks[userID] {
		if task.ID.Hex() == id {
			m.tasks[userID] = append(m.tasks[userID][:i], m.tasks[userID][i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func TestNoteHandler(t *testing.T) {
	h := NewNoteHandler(&memoryNotes{notes: map[string][]models.Note{}}, zap.NewNop())
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(tokenAuth{}))
	r.Post("/users/{userId}/notes", h.Create)
	r.Get("/users/{userId}/notes", h.List)
	r.Delete("/users/{userId}/notes/{id}", h.Delete)

	rec := do(t, r, http.MethodPost, "/users/u1/notes", "tok-u1", CreateNoteRequest{Title: "Idea", Content: "Ship it", Tag: "work"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	note := decode[models.Note](t, rec)
	assert.Equal(t, "work", note.Tag)
	assert.NotContains(t, rec.Body.String(), "u1")

	rec = do(t, r, http.MethodPost, "/users/u1/notes", "tok-u1", CreateNoteRequest{Title: "Idea"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content", decode[ErrorResponse](t, rec).Field)

	rec = do(t, r, http.MethodGet, "/users/u1/notes", "tok-u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Note](t, rec), 1)

	rec = do(t, r, http.MethodGet, "/users/u2/notes", "tok-u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Note](t, rec))

	rec = do(t, r, http.MethodDelete, "/users/u1/notes/"+note.ID.Hex(), "tok-u2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, r, http.MethodDelete, "/users/u1/notes/"+note.ID.Hex(), "tok-u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, r, http.MethodDelete, "/users/u1/notes/"+note.ID.Hex(), "tok-u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookHandler(t *testing.T) {
	h := NewBookHandler(&memoryBooks{books: map[string][]models.Book{}}, zap.NewNop())
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(tokenAuth{}))
	r.Post("/users/{userId}/books", h.Create)
	r.Get("/users/{userId}/books", h.List)
	r.Delete("/users/{userId}/books/{id}", h.Delete)

	rec := do(t, r, http.MethodPost, "/users/u1/books", "tok-u1", CreateBookRequest{Title: "Dune", Author: "Herbert"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	book := decode[models.Book](t, rec)
	assert.Equal(t, models.BookWishlist, book.Status)

	rec = do(t, r, http.MethodPost, "/users/u1/books", "tok-u1", CreateBookRequest{Title: "Dune", Author: "Herbert", Rating: 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rating", decode[ErrorResponse](t, rec).Field)

	rec = do(t, r, http.MethodPost, "/users/u1/books", "tok-u1", CreateBookRequest{Title: "Dune", Author: "Herbert", Status: "lent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decode[ErrorResponse](t, rec).Field)

	rec = do(t, r, http.MethodGet, "/users/u1/books", "tok-u2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, r, http.MethodGet, "/users/u1/books", "tok-u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Book](t, rec), 1)

	rec = do(t, r, http.MethodDelete, "/users/u1/books/"+book.ID.Hex(), "tok-u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPlannerHandler(t *testing.T) {
	h := NewPlannerHandler(&memoryPlanner{tasks: map[string][]models.PlannerTask{}}, zap.NewNop())
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(tokenAuth{}))
	r.Post("/users/{userId}/planner", h.Create)
	r.Get("/users/{userId}/planner", h.List)
	r.Patch("/users/{userId}/planner/{id}", h.Update)
	r.Delete("/users/{userId}/planner/{id}", h.Delete)

	rec := do(t, r, http.MethodPost, "/users/u1/planner", "tok-u1", CreatePlannerTaskRequest{Title: "File taxes", DueDate: "2027-04-15"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[models.PlannerTask](t, rec)
	assert.False(t, task.Completed)
	assert.Equal(t, models.PriorityMedium, task.Priority)

	rec = do(t, r, http.MethodPost, "/users/u1/planner", "tok-u1", CreatePlannerTaskRequest{Title: "x", DueDate: "April"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "dueDate", decode[ErrorResponse](t, rec).Field)

	done := true
	rec = do(t, r, http.MethodPatch, "/users/u1/planner/"+task.ID.Hex(), "tok-u1", UpdatePlannerTaskRequest{Completed: &done})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[models.PlannerTask](t, rec).Completed)

	rec = do(t, r, http.MethodGet, "/users/u1/planner", "tok-u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]models.PlannerTask](t, rec)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	rec = do(t, r, http.MethodPatch, "/users/u1/planner/"+task.ID.Hex(), "tok-u2", UpdatePlannerTaskRequest{Completed: &done})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, r, http.MethodPatch, "/users/u1/planner/"+primitive.NewObjectID().Hex(), "tok-u1", UpdatePlannerTaskRequest{Completed: &done})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodDelete, "/users/u1/planner/"+task.ID.Hex(), "tok-u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
