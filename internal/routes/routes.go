package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/decision-journal-backend/internal/handlers"
	"github.com/AnshRaj112/decision-journal-backend/internal/middleware"
)

// Handlers groups the route handlers. The document collections (diary,
// notes, books, planner) are optional; a nil handler leaves its routes
// unregistered.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Decisions *handlers.DecisionHandler
	Diary     *handlers.DiaryHandler
	Notes     *handlers.NoteHandler
	Books     *handlers.BookHandler
	Planner   *handlers.PlannerHandler
}

func SetupRoutes(r chi.Router, h Handlers, auth middleware.Authenticator) {
	// Public auth routes
	r.Post("/auth/register", h.Auth.Register)
	r.Post("/auth/login", h.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth))

		r.Post("/auth/logout", h.Auth.Logout)

		// Admin panel
		r.With(middleware.RequireAdmin).Get("/users", h.Users.List)
		r.With(middleware.RequireAdmin).Post("/users", h.Users.Create)

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/", h.Users.Get)
			r.Put("/", h.Users.Update)
			r.Delete("/", h.Users.Delete)

			r.Route("/decision", func(r chi.Router) {
				r.Post("/", h.Decisions.Create)
				r.Get("/", h.Decisions.List)
				r.Get("/insights", h.Decisions.Insights)
				r.Get("/due", h.Decisions.Due)
				r.Patch("/{id}/review", h.Decisions.Review)
				r.Delete("/{id}", h.Decisions.Delete)
			})

			if h.Diary != nil {
				r.Route("/diary", func(r chi.Router) {
					r.Post("/", h.Diary.Create)
					r.Get("/", h.Diary.List)
					r.Delete("/{id}", h.Diary.Delete)
				})
			}
			if h.Notes != nil {
				r.Route("/notes", func(r chi.Router) {
					r.Post("/", h.Notes.Create)
					r.Get("/", h.Notes.List)
					r.Delete("/{id}", h.Notes.Delete)
				})
			}
			if h.Books != nil {
				r.Route("/books", func(r chi.Router) {
					r.Post("/", h.Books.Create)
					r.Get("/", h.Books.List)
					r.Delete("/{id}", h.Books.Delete)
				})
			}
			if h.Planner != nil {
				r.Route("/planner", func(r chi.Router) {
					r.Post("/", h.Planner.Create)
					r.Get("/", h.Planner.List)
					r.Patch("/{id}", h.Planner.Update)
					r.Delete("/{id}", h.Planner.Delete)
				})
			}
		})
	})
}
