package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

const booksCollection = "books"

// BookService keeps each user's reading list in MongoDB.
type BookService struct {
	books ownedCollection[models.Book]
	log   *zap.Logger
	now   func() time.Time
}

func NewBookService(db *mongo.Database, log *zap.Logger) *BookService {
	return &BookService{
		books: newOwnedCollection[models.Book](db, booksCollection, "book"),
		log:   log.Named("books"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *BookService) EnsureIndexes(ctx context.Context) error {
	return s.books.ensureIndexes(ctx)
}

// ValidateBook requires a title and an author. Status defaults to wishlist
// and rating must be 0 (unrated) to MaxBookRating.
func ValidateBook(in models.CreateBookInput) (models.Book, error) {
	book := models.Book{
		Title:  strings.TrimSpace(in.Title),
		Author: strings.TrimSpace(in.Author),
		Notes:  strings.TrimSpace(in.Notes),
		Rating: in.Rating,
	}
	if book.Title == "" {
		return book, models.NewValidationError("title", "Title is required")
	}
	if book.Author == "" {
		return book, models.NewValidationError("author", "Author is required")
	}
	status, err := models.ParseBookStatus(in.Status)
	if err != nil {
		return book, err
	}
	book.Status = status
	if book.Rating < 0 || book.Rating > models.MaxBookRating {
		return book, models.NewValidationError("rating", fmt.Sprintf("Rating must be between 0 and %d", models.MaxBookRating))
	}
	return book, nil
}

func (s *BookService) Create(ctx context.Context, userID string, in models.CreateBookInput) (*models.Book, error) {
	book, err := ValidateBook(in)
	if err != nil {
		return nil, err
	}
	book.ID = primitive.NewObjectID()
	book.CreatedAt = s.now()
	book.UserIDString = userID

	if err := s.books.insert(ctx, book); err != nil {
		return nil, err
	}

	s.log.Info("book added", zap.String("user_id", userID), zap.String("book_id", book.ID.Hex()))
	return &book, nil
}

// List returns all of userID's books, newest first.
func (s *BookService) List(ctx context.Context, userID string) ([]models.Book, error) {
	return s.books.find(ctx, userID, 0, 0)
}

func (s *BookService) Delete(ctx context.Context, userID, id string) error {
	return s.books.delete(ctx, userID, id)
}

func (s *BookService) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	return s.books.deleteAll(ctx, userID)
}
