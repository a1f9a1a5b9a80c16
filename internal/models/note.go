package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is a titled free-form note with an optional tag.
type Note struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
	UserIDString string             `bson:"user_id_string,omitempty" json:"-"`
	Title        string             `bson:"title" json:"title"`
	Content      string             `bson:"content" json:"content"`
	Tag          string             `bson:"tag,omitempty" json:"tag,omitempty"`
}

type CreateNoteInput struct {
	Title   string
	Content string
	Tag     string
}
