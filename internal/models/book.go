package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookStatus is where a book sits on the reading list.
type BookStatus string

const (
	BookReading   BookStatus = "reading"
	BookCompleted BookStatus = "completed"
	BookWishlist  BookStatus = "wishlist"
)

// MaxBookRating is the top of the 1-5 star scale. Zero means unrated.
const MaxBookRating = 5

// ParseBookStatus accepts a status case-insensitively. Empty defaults to wishlist.
func ParseBookStatus(s string) (BookStatus, error) {
	switch st := BookStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return BookWishlist, nil
	case BookReading, BookCompleted, BookWishlist:
		return st, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown book status %s", quote(s)))
}

type Book struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UserIDString string             `bson:"user_id_string,omitempty" json:"-"`
	Title        string             `bson:"title" json:"title"`
	Author       string             `bson:"author" json:"author"`
	Status       BookStatus         `bson:"status" json:"status"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Rating       int                `bson:"rating,omitempty" json:"rating,omitempty"`
}

type CreateBookInput struct {
	Title  string
	Author string
	Status string
	Notes  string
	Rating int
}
