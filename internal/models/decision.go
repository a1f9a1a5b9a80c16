package models

import (
	"strings"
	"time"
)

// Emotion is the emotional state the user was in when logging a decision.
type Emotion string

const (
	EmotionConfident Emotion = "confident"
	EmotionAnxious   Emotion = "anxious"
	EmotionNeutral   Emotion = "neutral"
	EmotionExcited   Emotion = "excited"
	EmotionUncertain Emotion = "uncertain"
)

// Emotions lists every emotion in ordinal order. Insight tie-breaks follow this order.
var Emotions = []Emotion{
	EmotionConfident,
	EmotionAnxious,
	EmotionNeutral,
	EmotionExcited,
	EmotionUncertain,
}

// Category is the life area a decision belongs to.
type Category string

const (
	CategoryCareer        Category = "career"
	CategoryRelationships Category = "relationships"
	CategoryFinances      Category = "finances"
	CategoryHealth        Category = "health"
)

// Categories lists every category in ordinal order.
var Categories = []Category{
	CategoryCareer,
	CategoryRelationships,
	CategoryFinances,
	CategoryHealth,
}

// ParseEmotion validates a loosely typed emotion string.
func ParseEmotion(s string) (Emotion, error) {
	v := Emotion(strings.ToLower(strings.TrimSpace(s)))
	for _, e := range Emotions {
		if v == e {
			return e, nil
		}
	}
	return "", NewValidationError("emotion", "unknown emotion "+quote(s))
}

// ParseCategory validates a loosely typed category string.
func ParseCategory(s string) (Category, error) {
	v := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range Categories {
		if v == c {
			return c, nil
		}
	}
	return "", NewValidationError("category", "unknown category "+quote(s))
}

// Ordinal returns the position of e in Emotions, or len(Emotions) when unknown.
func (e Emotion) Ordinal() int {
	for i, v := range Emotions {
		if v == e {
			return i
		}
	}
	return len(Emotions)
}

// Decision is a single logged choice. ReviewedAt and ActualOutcome are either
// both set or both nil; once set they never change.
type Decision struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId,omitempty"`
	DecisionText    string     `json:"decision"`
	Reasoning       string     `json:"reasoning"`
	Emotion         Emotion    `json:"emotion"`
	Category        Category   `json:"category"`
	ExpectedOutcome string     `json:"expectedOutcome"`
	CreatedAt       time.Time  `json:"createdAt"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	ActualOutcome   *string    `json:"actualOutcome,omitempty"`
	BiasDetected    []string   `json:"biasDetected,omitempty"`
}

// IsReviewed reports whether the decision has been through the review transition.
func (d Decision) IsReviewed() bool {
	return d.ReviewedAt != nil
}

// CheckReviewPairing enforces that reviewedAt and actualOutcome are set together.
func (d Decision) CheckReviewPairing() error {
	if (d.ReviewedAt == nil) != (d.ActualOutcome == nil) {
		return NewValidationError("actualOutcome", "reviewedAt and actualOutcome must be set together")
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored records.
func (d Decision) Clone() Decision {
	out := d
	if d.ReviewedAt != nil {
		t := *d.ReviewedAt
		out.ReviewedAt = &t
	}
	if d.ActualOutcome != nil {
		s := *d.ActualOutcome
		out.ActualOutcome = &s
	}
	if d.BiasDetected != nil {
		out.BiasDetected = append([]string{}, d.BiasDetected...)
	}
	return out
}

// CreateDecisionInput holds the fields supplied when logging a decision.
type CreateDecisionInput struct {
	DecisionText    string
	Reasoning       string
	Emotion         string
	Category        string
	ExpectedOutcome string
}

// ReviewDecisionInput holds the fields supplied when reviewing a decision.
type ReviewDecisionInput struct {
	ActualOutcome string
	BiasDetected  []string
}

// Review is the normalised review applied to a stored decision.
type Review struct {
	ReviewedAt    time.Time
	ActualOutcome string
	BiasDetected  []string
}

// Owner scopes a decision collection to one user. Token is the bearer
// credential forwarded to remote backends; local backends ignore it.
type Owner struct {
	UserID string
	Token  string
}

func quote(s string) string {
	return `"` + s + `"`
}
