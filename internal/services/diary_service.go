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

const (
	diaryCollection  = "diary_entries"
	dateLayout       = "2006-01-02"
	DefaultDiaryPage = 20
	MaxDiaryPage     = 100
)

// DiaryService stores diary entries in MongoDB.
type DiaryService struct {
	entries ownedCollection[models.DiaryEntry]
	log     *zap.Logger
	now     func() time.Time
}

// NewDiaryService creates a DiaryService over db.
func NewDiaryService(db *mongo.Database, log *zap.Logger) *DiaryService {
	return &DiaryService{
		entries: newOwnedCollection[models.DiaryEntry](db, diaryCollection, "diary entry"),
		log:     log.Named("diary"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the per-user listing index.
func (s *DiaryService) EnsureIndexes(ctx context.Context) error {
	return s.entries.ensureIndexes(ctx)
}

// ValidateDiaryEntry normalises in and reports the first invalid field.
// An empty date becomes today's date.
func ValidateDiaryEntry(in models.CreateDiaryEntryInput, now time.Time) (models.CreateDiaryEntryInput, error) {
	out := models.CreateDiaryEntryInput{
		Title:   strings.TrimSpace(in.Title),
		Content: strings.TrimSpace(in.Content),
		Mood:    strings.TrimSpace(in.Mood),
		Date:    strings.TrimSpace(in.Date),
	}
	if out.Title == "" && out.Content == "" {
		return out, models.NewValidationError("content", "Title or content is required")
	}
	if out.Date == "" {
		out.Date = now.Format(dateLayout)
	} else if err := checkDate("date", out.Date); err != nil {
		return out, err
	}
	return out, nil
}

// Create stores a new entry for userID.
func (s *DiaryService) Create(ctx context.Context, userID string, in models.CreateDiaryEntryInput) (*models.DiaryEntry, error) {
	in, err := ValidateDiaryEntry(in, s.now())
	if err != nil {
		return nil, err
	}

	entry := models.DiaryEntry{
		ID:           primitive.NewObjectID(),
		CreatedAt:    s.now(),
		UserIDString: userID, // From session only; body user_id is ignored
		Title:        in.Title,
		Content:      in.Content,
		Mood:         in.Mood,
		Date:         in.Date,
	}
	if err := s.entries.insert(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Info("diary entry created", zap.String("user_id", userID), zap.String("entry_id", entry.ID.Hex()))
	return &entry, nil
}

// List returns a page of userID's entries, newest first, plus the total count.
func (s *DiaryService) List(ctx context.Context, userID string, limit, skip int) ([]models.DiaryEntry, int64, error) {
	if limit <= 0 {
		limit = DefaultDiaryPage
	}
	limit = min(limit, MaxDiaryPage)
	skip = max(skip, 0)

	total, err := s.entries.count(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	entries, err := s.entries.find(ctx, userID, int64(limit), int64(skip))
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Delete removes one of userID's entries.
func (s *DiaryService) Delete(ctx context.Context, userID, id string) error {
	return s.entries.delete(ctx, userID, id)
}

// DeleteAllForUser removes every entry owned by userID.
func (s *DiaryService) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.entries.deleteAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("diary purged", zap.String("user_id", userID), zap.Int64("entries", n))
	}
	return n, nil
}

// checkDate requires an optional date field to be YYYY-MM-DD.
func checkDate(field, value string) error {
	if _, err := time.Parse(dateLayout, value); err != nil {
		return models.NewValidationError(field, "Date must be YYYY-MM-DD")
	}
	return nil
}
