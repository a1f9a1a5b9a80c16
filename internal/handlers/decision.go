package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/middleware"
	"github.com/AnshRaj112/decision-journal-backend/internal/models"
	"github.com/AnshRaj112/decision-journal-backend/internal/services"
)

// CreateDecisionRequest is the body of POST /users/{userId}/decision.
type CreateDecisionRequest struct {
	Decision        string `json:"decision"`
	Reasoning       string `json:"reasoning"`
	Emotion         string `json:"emotion"`
	Category        string `json:"category"`
	ExpectedOutcome string `json:"expectedOutcome"`
}

// ReviewDecisionRequest is the body of PATCH /users/{userId}/decision/{id}/review.
// A client-supplied reviewedAt is accepted but the server clock wins.
type ReviewDecisionRequest struct {
	ActualOutcome string     `json:"actualOutcome"`
	BiasDetected  []string   `json:"biasDetected"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
}

// maxGraceDays is the largest grace whose duration fits in a time.Duration.
const maxGraceDays = int(math.MaxInt64 / int64(24*time.Hour))

// InsightsResponse wraps the bias insights; Insights is null until there is
// enough data.
type InsightsResponse struct {
	Sufficient bool                   `json:"sufficient"`
	MinSample  int                    `json:"minSample"`
	Insights   *services.BiasInsights `json:"insights"`
}

// DecisionHandler serves the decision collection of the authenticated user.
type DecisionHandler struct {
	store *services.DecisionStore
	log   *zap.Logger
}

func NewDecisionHandler(store *services.DecisionStore, log *zap.Logger) *DecisionHandler {
	return &DecisionHandler{store: store, log: log.Named("decision_handler")}
}

func (h *DecisionHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req CreateDecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.store.Create(r.Context(), owner, models.CreateDecisionInput{
		DecisionText:    req.Decision,
		Reasoning:       req.Reasoning,
		Emotion:         req.Emotion,
		Category:        req.Category,
		ExpectedOutcome: req.ExpectedOutcome,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	decisions, err := h.store.List(r.Context(), owner)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, decisions)
}

func (h *DecisionHandler) Review(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req ReviewDecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.store.Review(r.Context(), owner, chi.URLParam(r, "id"), models.ReviewDecisionInput{
		ActualOutcome: req.ActualOutcome,
		BiasDetected:  req.BiasDetected,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DecisionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Insights recomputes the bias insights from the current collection.
func (h *DecisionHandler) Insights(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	insights, sufficient, err := h.store.Insights(r.Context(), owner)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	resp := InsightsResponse{Sufficient: sufficient, MinSample: services.MinInsightSample}
	if sufficient {
		resp.Insights = &insights
	}
	writeJSON(w, http.StatusOK, resp)
}

// Due lists unreviewed decisions older than the grace interval. The optional
// graceDays query parameter overrides the configured interval.
func (h *DecisionHandler) Due(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	policy := h.store.Policy()
	if raw := strings.TrimSpace(r.URL.Query().Get("graceDays")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 || days > maxGraceDays {
			writeError(w, http.StatusBadRequest, "validation",
				"graceDays must be an integer between 0 and "+strconv.Itoa(maxGraceDays))
			return
		}
		policy = services.NewReviewPolicy(time.Duration(days) * 24 * time.Hour)
	}

	due, err := h.store.DueForReview(r.Context(), owner, policy)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, due)
}

// requireOwner resolves the caller and checks that the {userId} path segment
// names them. Decision journals are private; admins get no access either.
func requireOwner(w http.ResponseWriter, r *http.Request) (models.Owner, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return models.Owner{}, false
	}
	if chi.URLParam(r, "userId") != identity.UserID {
		writeError(w, http.StatusForbidden, "forbidden", "You can only access your own journal")
		return models.Owner{}, false
	}
	return identity.Owner(), true
}
