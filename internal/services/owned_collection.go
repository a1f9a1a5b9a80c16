package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

const ownerField = "user_id_string"

// ownedCollection is a Mongo collection of per-user documents. Every query
// is filtered on the owner's id so one user can never read or touch another
// user's documents.
type ownedCollection[T any] struct {
	coll *mongo.Collection
	kind string // noun used in errors, e.g. "diary entry"
}

func newOwnedCollection[T any](db *mongo.Database, name, kind string) ownedCollection[T] {
	return ownedCollection[T]{coll: db.Collection(name), kind: kind}
}

// ensureIndexes creates the per-user, newest-first listing index.
func (c ownedCollection[T]) ensureIndexes(ctx context.Context) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: ownerField, Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (c ownedCollection[T]) insert(ctx context.Context, doc T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return models.NewTransportError("insert "+c.kind, 0, err)
	}
	return nil
}

func (c ownedCollection[T]) count(ctx context.Context, userID string) (int64, error) {
	total, err := c.coll.CountDocuments(ctx, bson.M{ownerField: userID})
	if err != nil {
		return 0, models.NewTransportError("count "+c.kind, 0, err)
	}
	return total, nil
}

// find returns userID's documents newest first. A limit of zero returns all.
func (c ownedCollection[T]) find(ctx context.Context, userID string, limit, skip int64) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}

	cursor, err := c.coll.Find(ctx, bson.M{ownerField: userID}, opts)
	if err != nil {
		return nil, models.NewTransportError("find "+c.kind, 0, err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, models.NewTransportError("decode "+c.kind, 0, err)
	}
	return docs, nil
}

// update applies set to one of userID's documents and returns the result.
func (c ownedCollection[T]) update(ctx context.Context, userID, id string, set bson.M) (*T, error) {
	filter, err := c.filter(userID, id)
	if err != nil {
		return nil, err
	}

	var doc T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = c.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s %s: %w", c.kind, id, models.ErrNotFound)
	}
	if err != nil {
		return nil, models.NewTransportError("update "+c.kind, 0, err)
	}
	return &doc, nil
}

func (c ownedCollection[T]) delete(ctx context.Context, userID, id string) error {
	filter, err := c.filter(userID, id)
	if err != nil {
		return err
	}

	result, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return models.NewTransportError("delete "+c.kind, 0, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", c.kind, id, models.ErrNotFound)
	}
	return nil
}

func (c ownedCollection[T]) deleteAll(ctx context.Context, userID string) (int64, error) {
	result, err := c.coll.DeleteMany(ctx, bson.M{ownerField: userID})
	if err != nil {
		return 0, models.NewTransportError("purge "+c.kind, 0, err)
	}
	return result.DeletedCount, nil
}

// filter matches one document by id, scoped to its owner. A malformed id
// cannot exist, so it reports not found.
func (c ownedCollection[T]) filter(userID, id string) (bson.M, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.kind, id, models.ErrNotFound)
	}
	return bson.M{"_id": objectID, ownerField: userID}, nil
}
