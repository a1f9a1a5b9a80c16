package handlers

import (
	"context"
	"maps"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/middleware"
	"github.com/AnshRaj112/decision-journal-backend/internal/models"
	"github.com/AnshRaj112/decision-journal-backend/internal/services"
)

// UserDirectory manages accounts.
type UserDirectory interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id string, in services.UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// SessionRevoker drops a user's live session.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) error
}

// DecisionPurger removes every decision an owner holds.
type DecisionPurger interface {
	DeleteAll(ctx context.Context, owner models.Owner) (int64, error)
}

// UserDataPurger removes everything one store holds for a user.
type UserDataPurger interface {
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type UserHandler struct {
	users     UserDirectory
	sessions  SessionRevoker
	decisions DecisionPurger
	stores    map[string]UserDataPurger
	log       *zap.Logger
}

func NewUserHandler(users UserDirectory, sessions SessionRevoker, decisions DecisionPurger, log *zap.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		sessions:  sessions,
		decisions: decisions,
		stores:    map[string]UserDataPurger{},
		log:       log.Named("user_handler"),
	}
}

// PurgeWith registers a store whose data is removed along with the account.
func (h *UserHandler) PurgeWith(name string, store UserDataPurger) *UserHandler {
	h.stores[name] = store
	return h
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSelfOrAdmin(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSelfOrAdmin(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.Update(r.Context(), userID, services.UpdateUserInput{Name: req.Name, Email: req.Email})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete removes the account and everything it owns, then revokes its
// session. Purge failures are logged; the account is already gone.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSelfOrAdmin(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := h.users.Delete(ctx, userID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	// The caller's token is forwarded so a remote decision backend can authorise the purge.
	identity, _ := middleware.IdentityFrom(ctx)
	if h.decisions != nil {
		if _, err := h.decisions.DeleteAll(ctx, models.Owner{UserID: userID, Token: identity.Token}); err != nil {
			h.log.Warn("purge decisions of deleted user", zap.String("user_id", userID), zap.Error(err))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(h.stores)) {
		if _, err := h.stores[name].DeleteAllForUser(ctx, userID); err != nil {
			h.log.Warn("purge store of deleted user", zap.String("store", name), zap.String("user_id", userID), zap.Error(err))
		}
	}
	if err := h.sessions.RevokeUser(ctx, userID); err != nil {
		h.log.Warn("revoke session of deleted user", zap.String("user_id", userID), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// List returns every account. Admin only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Create provisions an account without logging it in. Admin only.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func requireSelfOrAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return "", false
	}
	userID := chi.URLParam(r, "userId")
	if userID != identity.UserID && !identity.IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden", "You can only manage your own account")
		return "", false
	}
	return userID, true
}
