package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority ranks a planner task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts a priority case-insensitively. Empty defaults to medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", NewValidationError("priority", fmt.Sprintf("unknown priority %s", quote(s)))
}

type PlannerTask struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UserIDString string             `bson:"user_id_string,omitempty" json:"-"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	DueDate      string             `bson:"due_date,omitempty" json:"dueDate,omitempty"` // YYYY-MM-DD
	Priority     Priority           `bson:"priority" json:"priority"`
	Completed    bool               `bson:"completed" json:"completed"`
}

type CreatePlannerTaskInput struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
}

// UpdatePlannerTaskInput carries a partial update; nil fields are left alone.
type UpdatePlannerTaskInput struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *string
	Completed   *bool
}
