package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

// DecisionRepository persists the per-user decision collection.
//
// List returns newest first. MarkReviewed fails with models.ErrNotFound when
// the id is absent and models.ErrAlreadyReviewed when a review is already
// recorded; it must not alter the record in either case. Delete fails with
// models.ErrNotFound when the id is absent.
type DecisionRepository interface {
	Insert(ctx context.Context, owner models.Owner, d models.Decision) (*models.Decision, error)
	List(ctx context.Context, owner models.Owner) ([]models.Decision, error)
	MarkReviewed(ctx context.Context, owner models.Owner, id string, review models.Review) (*models.Decision, error)
	Delete(ctx context.Context, owner models.Owner, id string) error
}

// DecisionStore is the canonical mutation surface for decisions. It validates
// input, assigns ids and timestamps, and delegates storage to a repository.
// It never retries a failed call.
type DecisionStore struct {
	repo   DecisionRepository
	policy ReviewPolicy
	log    *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewDecisionStore creates a DecisionStore backed by repo.
func NewDecisionStore(repo DecisionRepository, policy ReviewPolicy, log *zap.Logger) *DecisionStore {
	return &DecisionStore{
		repo:   repo,
		policy: policy,
		log:    log.Named("decisions"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
}

// Policy returns the review policy this store consults.
func (s *DecisionStore) Policy() ReviewPolicy {
	return s.policy
}

// Create logs a new, unreviewed decision.
func (s *DecisionStore) Create(ctx context.Context, owner models.Owner, in models.CreateDecisionInput) (*models.Decision, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}

	d := models.Decision{
		DecisionText:    strings.TrimSpace(in.DecisionText),
		Reasoning:       strings.TrimSpace(in.Reasoning),
		ExpectedOutcome: strings.TrimSpace(in.ExpectedOutcome),
	}
	switch {
	case d.DecisionText == "":
		return nil, models.NewValidationError("decision", "decision text is required")
	case d.Reasoning == "":
		return nil, models.NewValidationError("reasoning", "reasoning is required")
	case d.ExpectedOutcome == "":
		return nil, models.NewValidationError("expectedOutcome", "expected outcome is required")
	}

	emotion, err := models.ParseEmotion(in.Emotion)
	if err != nil {
		return nil, err
	}
	category, err := models.ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}

	d.ID = s.newID()
	d.UserID = owner.UserID
	d.Emotion = emotion
	d.Category = category
	d.CreatedAt = s.now()

	created, err := s.repo.Insert(ctx, owner, d)
	if err != nil {
		s.log.Error("create decision failed", zap.String("user_id", owner.UserID), zap.Error(err))
		return nil, fmt.Errorf("create decision: %w", err)
	}

	s.log.Info("decision created",
		zap.String("user_id", owner.UserID),
		zap.String("decision_id", created.ID),
		zap.String("emotion", string(created.Emotion)),
	)
	return created, nil
}

// Review records the actual outcome of a decision. It is the only mutation a
// decision ever receives.
func (s *DecisionStore) Review(ctx context.Context, owner models.Owner, id string, in models.ReviewDecisionInput) (*models.Decision, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("decision id is empty: %w", models.ErrNotFound)
	}

	outcome := strings.TrimSpace(in.ActualOutcome)
	if outcome == "" {
		return nil, models.NewValidationError("actualOutcome", "actual outcome is required")
	}

	review := models.Review{
		ReviewedAt:    s.now(),
		ActualOutcome: outcome,
		BiasDetected:  NormalizeBiasLabels(in.BiasDetected),
	}

	reviewed, err := s.repo.MarkReviewed(ctx, owner, id, review)
	if err != nil {
		s.log.Warn("review decision failed",
			zap.String("user_id", owner.UserID),
			zap.String("decision_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("review decision: %w", err)
	}

	s.log.Info("decision reviewed",
		zap.String("user_id", owner.UserID),
		zap.String("decision_id", id),
		zap.Int("bias_labels", len(reviewed.BiasDetected)),
	)
	return reviewed, nil
}

// Delete removes a decision unconditionally.
func (s *DecisionStore) Delete(ctx context.Context, owner models.Owner, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("decision id is empty: %w", models.ErrNotFound)
	}

	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("delete decision: %w", err)
	}

	s.log.Info("decision deleted", zap.String("user_id", owner.UserID), zap.String("decision_id", id))
	return nil
}

// DeleteAll removes every decision the owner holds, one at a time through
// the repository, and reports how many went. A decision that vanishes
// mid-way is skipped. The first other failure stops the purge.
func (s *DecisionStore) DeleteAll(ctx context.Context, owner models.Owner) (int64, error) {
	if err := requireOwner(owner); err != nil {
		return 0, err
	}

	snapshot, err := s.repo.List(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("purge decisions: %w", err)
	}

	var deleted int64
	for _, d := range snapshot {
		if err := s.repo.Delete(ctx, owner, d.ID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return deleted, fmt.Errorf("purge decision %s: %w", d.ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		s.log.Info("decisions purged", zap.String("user_id", owner.UserID), zap.Int64("decisions", deleted))
	}
	return deleted, nil
}

// List returns the owner's decisions, newest first.
func (s *DecisionStore) List(ctx context.Context, owner models.Owner) ([]models.Decision, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}

	decisions, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	if decisions == nil {
		decisions = []models.Decision{}
	}
	return decisions, nil
}

// Insights recomputes the bias insights over a fresh snapshot. The boolean is
// false when there is not enough data.
func (s *DecisionStore) Insights(ctx context.Context, owner models.Owner) (BiasInsights, bool, error) {
	snapshot, err := s.List(ctx, owner)
	if err != nil {
		return BiasInsights{}, false, err
	}
	insights, ok := ComputeBiasInsights(snapshot)
	return insights, ok, nil
}

// DueForReview returns the owner's decisions awaiting review under policy.
func (s *DecisionStore) DueForReview(ctx context.Context, owner models.Owner, policy ReviewPolicy) ([]models.Decision, error) {
	snapshot, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return policy.DueForReview(snapshot, s.now()), nil
}

// NormalizeBiasLabels trims labels, drops empty ones and removes duplicates
// while keeping first-seen order. The result is never nil.
func NormalizeBiasLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

func requireOwner(owner models.Owner) error {
	if strings.TrimSpace(owner.UserID) == "" {
		return fmt.Errorf("decision owner is missing: %w", models.ErrUnauthorized)
	}
	return nil
}
