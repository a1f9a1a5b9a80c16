package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

const plannerCollection = "planner_tasks"

// PlannerService stores planner tasks in MongoDB.
type PlannerService struct {
	tasks ownedCollection[models.PlannerTask]
	log   *zap.Logger
	now   func() time.Time
}

func NewPlannerService(db *mongo.Database, log *zap.Logger) *PlannerService {
	return &PlannerService{
		tasks: newOwnedCollection[models.PlannerTask](db, plannerCollection, "planner task"),
		log:   log.Named("planner"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *PlannerService) EnsureIndexes(ctx context.Context) error {
	return s.tasks.ensureIndexes(ctx)
}

// ValidatePlannerTask requires a title. Priority defaults to medium and an
// optional due date must be YYYY-MM-DD. New tasks start incomplete.
func ValidatePlannerTask(in models.CreatePlannerTaskInput) (models.PlannerTask, error) {
	task := models.PlannerTask{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		DueDate:     strings.TrimSpace(in.DueDate),
	}
	if task.Title == "" {
		return task, models.NewValidationError("title", "Title is required")
	}
	if task.DueDate != "" {
		if err := checkDate("dueDate", task.DueDate); err != nil {
			return task, err
		}
	}
	priority, err := models.ParsePriority(in.Priority)
	if err != nil {
		return task, err
	}
	task.Priority = priority
	return task, nil
}

// plannerUpdate turns a partial update into a $set document. An empty
// update is rejected.
func plannerUpdate(in models.UpdatePlannerTaskInput) (bson.M, error) {
	set := bson.M{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("title", "Title is required")
		}
		set["title"] = title
	}
	if in.Description != nil {
		set["description"] = strings.TrimSpace(*in.Description)
	}
	if in.DueDate != nil {
		due := strings.TrimSpace(*in.DueDate)
		if due != "" {
			if err := checkDate("dueDate", due); err != nil {
				return nil, err
			}
		}
		set["due_date"] = due
	}
	if in.Priority != nil {
		if strings.TrimSpace(*in.Priority) == "" {
			return nil, models.NewValidationError("priority", "Priority must not be empty")
		}
		priority, err := models.ParsePriority(*in.Priority)
		if err != nil {
			return nil, err
		}
		set["priority"] = priority
	}
	if in.Completed != nil {
		set["completed"] = *in.Completed
	}
	if len(set) == 0 {
		return nil, models.NewValidationError("request", "Nothing to update")
	}
	return set, nil
}

func (s *PlannerService) Create(ctx context.Context, userID string, in models.CreatePlannerTaskInput) (*models.PlannerTask, error) {
	task, err := ValidatePlannerTask(in)
	if err != nil {
		return nil, err
	}
	task.ID = primitive.NewObjectID()
	task.CreatedAt = s.now()
	task.UserIDString = userID

	if err := s.tasks.insert(ctx, task); err != nil {
		return nil, err
	}

	s.log.Info("planner task created", zap.String("user_id", userID), zap.String("task_id", task.ID.Hex()))
	return &task, nil
}

// List returns all of userID's tasks, newest first.
func (s *PlannerService) List(ctx context.Context, userID string) ([]models.PlannerTask, error) {
	return s.tasks.find(ctx, userID, 0, 0)
}

// Update applies a partial update, typically the completed toggle.
func (s *PlannerService) Update(ctx context.Context, userID, id string, in models.UpdatePlannerTaskInput) (*models.PlannerTask, error) {
	set, err := plannerUpdate(in)
	if err != nil {
		return nil, err
	}
	return s.tasks.update(ctx, userID, id, set)
}

func (s *PlannerService) Delete(ctx context.Context, userID, id string) error {
	return s.tasks.delete(ctx, userID, id)
}

func (s *PlannerService) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	return s.tasks.deleteAll(ctx, userID)
}
