package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

const notesCollection = "notes"

// NoteService stores notes in MongoDB.
type NoteService struct {
	notes ownedCollection[models.Note]
	log   *zap.Logger
	now   func() time.Time
}

func NewNoteService(db *mongo.Database, log *zap.Logger) *NoteService {
	return &NoteService{
		notes: newOwnedCollection[models.Note](db, notesCollection, "note"),
		log:   log.Named("notes"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *NoteService) EnsureIndexes(ctx context.Context) error {
	return s.notes.ensureIndexes(ctx)
}

// ValidateNote trims in; title and content are both required.
func ValidateNote(in models.CreateNoteInput) (models.CreateNoteInput, error) {
	out := models.CreateNoteInput{
		Title:   strings.TrimSpace(in.Title),
		Content: strings.TrimSpace(in.Content),
		Tag:     strings.TrimSpace(in.Tag),
	}
	if out.Title == "" {
		return out, models.NewValidationError("title", "Title is required")
	}
	if out.Content == "" {
		return out, models.NewValidationError("content", "Content is required")
	}
	return out, nil
}

func (s *NoteService) Create(ctx context.Context, userID string, in models.CreateNoteInput) (*models.Note, error) {
	in, err := ValidateNote(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	note := models.Note{
		ID:           primitive.NewObjectID(),
		CreatedAt:    now,
		UpdatedAt:    now,
		UserIDString: userID,
		Title:        in.Title,
		Content:      in.Content,
		Tag:          in.Tag,
	}
	if err := s.notes.insert(ctx, note); err != nil {
		return nil, err
	}

	s.log.Info("note created", zap.String("user_id", userID), zap.String("note_id", note.ID.Hex()))
	return &note, nil
}

// List returns all of userID's notes, newest first.
func (s *NoteService) List(ctx context.Context, userID string) ([]models.Note, error) {
	return s.notes.find(ctx, userID, 0, 0)
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	return s.notes.delete(ctx, userID, id)
}

func (s *NoteService) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	return s.notes.deleteAll(ctx, userID)
}
