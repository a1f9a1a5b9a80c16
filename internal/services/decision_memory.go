package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

// MemoryDecisionRepository keeps decisions in process memory, one
// prepend-ordered slice per user.
type MemoryDecisionRepository struct {
	mu     sync.RWMutex
	byUser map[string][]models.Decision
}

// NewMemoryDecisionRepository creates an empty in-memory repository.
func NewMemoryDecisionRepository() *MemoryDecisionRepository {
	return &MemoryDecisionRepository{byUser: make(map[string][]models.Decision)}
}

func (r *MemoryDecisionRepository) Insert(_ context.Context, owner models.Owner, d models.Decision) (*models.Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byUser[owner.UserID]
	for _, existing := range list {
		if existing.ID == d.ID {
			return nil, fmt.Errorf("decision %s: %w", d.ID, models.ErrConflict)
		}
	}

	stored := d.Clone()
	stored.UserID = owner.UserID
	r.byUser[owner.UserID] = append([]models.Decision{stored}, list...)

	out := stored.Clone()
	return &out, nil
}

func (r *MemoryDecisionRepository) List(_ context.Context, owner models.Owner) ([]models.Decision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byUser[owner.UserID]
	out := make([]models.Decision, len(list))
	for i, d := range list {
		out[i] = d.Clone()
	}
	return out, nil
}

func (r *MemoryDecisionRepository) MarkReviewed(_ context.Context, owner models.Owner, id string, review models.Review) (*models.Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byUser[owner.UserID]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if err := CanReview(list[i]); err != nil {
			return nil, err
		}

		reviewedAt := review.ReviewedAt
		outcome := review.ActualOutcome
		list[i].ReviewedAt = &reviewedAt
		list[i].ActualOutcome = &outcome
		list[i].BiasDetected = append([]string{}, review.BiasDetected...)

		out := list[i].Clone()
		return &out, nil
	}
	return nil, fmt.Errorf("decision %s: %w", id, models.ErrNotFound)
}

func (r *MemoryDecisionRepository) Delete(_ context.Context, owner models.Owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byUser[owner.UserID]
	for i := range list {
		if list[i].ID == id {
			r.byUser[owner.UserID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("decision %s: %w", id, models.ErrNotFound)
}
