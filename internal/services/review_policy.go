package services

import (
	"fmt"
	"time"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

// DefaultReviewGrace is how long a decision waits before it is due for review.
const DefaultReviewGrace = 7 * 24 * time.Hour

// ReviewPolicy decides which decisions are awaiting review and gates the
// one-way unreviewed -> reviewed transition.
type ReviewPolicy struct {
	Grace time.Duration
}

// NewReviewPolicy returns a policy with the given grace interval.
// A negative grace falls back to DefaultReviewGrace; zero makes every
// unreviewed decision due immediately.
func NewReviewPolicy(grace time.Duration) ReviewPolicy {
	if grace < 0 {
		grace = DefaultReviewGrace
	}
	return ReviewPolicy{Grace: grace}
}

// DueForReview returns the unreviewed decisions created at least p.Grace before now.
func (p ReviewPolicy) DueForReview(snapshot []models.Decision, now time.Time) []models.Decision {
	return DueForReview(snapshot, now, p.Grace)
}

// CanReview reports whether d may take the review transition.
func (p ReviewPolicy) CanReview(d models.Decision) error {
	return CanReview(d)
}

// DueForReview returns the subset of snapshot with no review where
// now - createdAt >= grace, preserving snapshot order.
func DueForReview(snapshot []models.Decision, now time.Time, grace time.Duration) []models.Decision {
	due := make([]models.Decision, 0)
	for _, d := range snapshot {
		if d.IsReviewed() {
			continue
		}
		if now.Sub(d.CreatedAt) >= grace {
			due = append(due, d)
		}
	}
	return due
}

// CanReview returns ErrAlreadyReviewed when d has a review recorded.
func CanReview(d models.Decision) error {
	if d.IsReviewed() {
		return fmt.Errorf("decision %s reviewed at %s: %w",
			d.ID, d.ReviewedAt.UTC().Format(time.RFC3339), models.ErrAlreadyReviewed)
	}
	return nil
}
