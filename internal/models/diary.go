package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiaryEntry represents a private diary entry for a user
type DiaryEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UserIDString string             `bson:"user_id_string,omitempty" json:"-"`
	Title        string             `bson:"title" json:"title"`
	Content      string             `bson:"content" json:"content"`
	Mood         string             `bson:"mood,omitempty" json:"mood,omitempty"`
	Date         string             `bson:"date" json:"date"` // YYYY-MM-DD
}

// CreateDiaryEntryInput holds the fields supplied when writing a diary entry.
type CreateDiaryEntryInput struct {
	Title   string
	Content string
	Mood    string
	Date    string
}
