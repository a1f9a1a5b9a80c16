package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

var mongoNow = time.Date(2026, 10, 19, 22, 0, 0, 0, time.UTC)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func cursorResponse(coll string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, mtest.TestDb+"."+coll, mtest.FirstBatch, docs...)
}

func deletedResponse(n int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n})
}

func commandFailure() bson.D {
	return mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "rejected"})
}

// nextCommand returns the next command sent to the mock deployment.
func nextCommand(mt *mtest.T) bson.Raw {
	mt.Helper()
	ev := mt.GetStartedEvent()
	require.NotNil(mt, ev, "no command was sent")
	return ev.Command
}

func newMockDiary(mt *mtest.T) *DiaryService {
	svc := NewDiaryService(mt.DB, zap.NewNop())
	svc.now = func() time.Time { return mongoNow }
	return svc
}

func TestValidateDiaryEntry(t *testing.T) {
	got, err := ValidateDiaryEntry(models.CreateDiaryEntryInput{Title: "  Monday ", Mood: " calm "}, mongoNow)
	require.NoError(t, err)
	assert.Equal(t, "Monday", got.Title)
	assert.Equal(t, "calm", got.Mood)
	assert.Equal(t, "2026-10-19", got.Date)

	got, err = ValidateDiaryEntry(models.CreateDiaryEntryInput{Content: "x", Date: "2026-02-28"}, mongoNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", got.Date)

	_, err = ValidateDiaryEntry(models.CreateDiaryEntryInput{Title: " ", Content: "\n"}, mongoNow)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)

	_, err = ValidateDiaryEntry(models.CreateDiaryEntryInput{Content: "x", Date: "2026-02-30"}, mongoNow)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)
}

func TestDiaryService_Mongo(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, newMockDiary(mt).EnsureIndexes(ctx))

		cmd := nextCommand(mt)
		assert.Equal(mt, diaryCollection, cmd.Lookup("createIndexes").StringValue())
		assert.EqualValues(mt, 1, cmd.Lookup("indexes", "0", "key", "user_id_string").AsInt64())
		assert.EqualValues(mt, -1, cmd.Lookup("indexes", "0", "key", "created_at").AsInt64())
	})

	mt.Run("create stores the session owner", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		entry, err := newMockDiary(mt).Create(ctx, "u1", models.CreateDiaryEntryInput{Content: " Slept well "})
		require.NoError(mt, err)
		assert.False(mt, entry.ID.IsZero())
		assert.Equal(mt, "Slept well", entry.Content)
		assert.Equal(mt, "2026-10-19", entry.Date)
		assert.Equal(mt, mongoNow, entry.CreatedAt)

		cmd := nextCommand(mt)
		assert.Equal(mt, diaryCollection, cmd.Lookup("insert").StringValue())
		assert.Equal(mt, "u1", cmd.Lookup("documents", "0", "user_id_string").StringValue())
		assert.Equal(mt, entry.ID, cmd.Lookup("documents", "0", "_id").ObjectID())
	})

	mt.Run("create rejects invalid input before writing", func(mt *mtest.T) {
		_, err := newMockDiary(mt).Create(ctx, "u1", models.CreateDiaryEntryInput{})
		assert.ErrorIs(mt, err, models.ErrValidation)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("create surfaces driver failures as transport errors", func(mt *mtest.T) {
		mt.AddMockResponses(commandFailure())
		_, err := newMockDiary(mt).Create(ctx, "u1", models.CreateDiaryEntryInput{Content: "x"})
		assert.ErrorIs(mt, err, models.ErrTransport)
	})

	mt.Run("list pages newest first for the owner", func(mt *mtest.T) {
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			cursorResponse(diaryCollection, bson.D{{Key: "n", Value: 12}}),
			cursorResponse(diaryCollection,
				bson.D{{Key: "_id", Value: first}, {Key: "created_at", Value: mongoNow}, {Key: "user_id_string", Value: "u1"}, {Key: "title", Value: "Later"}, {Key: "date", Value: "2026-10-19"}},
				bson.D{{Key: "_id", Value: second}, {Key: "created_at", Value: mongoNow.Add(-time.Hour)}, {Key: "user_id_string", Value: "u1"}, {Key: "content", Value: "Earlier"}, {Key: "date", Value: "2026-10-19"}},
			),
		)

		entries, total, err := newMockDiary(mt).List(ctx, "u1", 5, 10)
		require.NoError(mt, err)
		assert.EqualValues(mt, 12, total)
		require.Len(mt, entries, 2)
		assert.Equal(mt, first, entries[0].ID)
		assert.Equal(mt, "Later", entries[0].Title)
		assert.Equal(mt, "Earlier", entries[1].Content)

		count := nextCommand(mt)
		assert.Equal(mt, diaryCollection, count.Lookup("aggregate").StringValue())
		assert.Equal(mt, "u1", count.Lookup("pipeline", "0", "$match", "user_id_string").StringValue())

		find := nextCommand(mt)
		assert.Equal(mt, diaryCollection, find.Lookup("find").StringValue())
		assert.Equal(mt, "u1", find.Lookup("filter", "user_id_string").StringValue())
		assert.EqualValues(mt, -1, find.Lookup("sort", "created_at").AsInt64())
		assert.EqualValues(mt, 5, find.Lookup("limit").AsInt64())
		assert.EqualValues(mt, 10, find.Lookup("skip").AsInt64())
	})

	mt.Run("list clamps the page size", func(mt *mtest.T) {
		mt.AddMockResponses(cursorResponse(diaryCollection), cursorResponse(diaryCollection))

		entries, total, err := newMockDiary(mt).List(ctx, "u1", 5000, -3)
		require.NoError(mt, err)
		assert.Zero(mt, total)
		assert.Empty(mt, entries)
		assert.NotNil(mt, entries)

		nextCommand(mt)
		find := nextCommand(mt)
		assert.EqualValues(mt, MaxDiaryPage, find.Lookup("limit").AsInt64())
		_, err = find.LookupErr("skip")
		assert.Error(mt, err)
	})

	mt.Run("delete is scoped to the owner", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(deletedResponse(1))
		require.NoError(mt, newMockDiary(mt).Delete(ctx, "u1", id.Hex()))

		cmd := nextCommand(mt)
		assert.Equal(mt, diaryCollection, cmd.Lookup("delete").StringValue())
		assert.Equal(mt, id, cmd.Lookup("deletes", "0", "q", "_id").ObjectID())
		assert.Equal(mt, "u1", cmd.Lookup("deletes", "0", "q", "user_id_string").StringValue())
	})

	mt.Run("delete of another user's entry is not found", func(mt *mtest.T) {
		mt.AddMockResponses(deletedResponse(0))
		err := newMockDiary(mt).Delete(ctx, "u2", primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("delete of a malformed id never reaches the server", func(mt *mtest.T) {
		err := newMockDiary(mt).Delete(ctx, "u1", "not-an-object-id")
		assert.ErrorIs(mt, err, models.ErrNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("delete surfaces driver failures", func(mt *mtest.T) {
		mt.AddMockResponses(commandFailure())
		err := newMockDiary(mt).Delete(ctx, "u1", primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, models.ErrTransport)
	})

	mt.Run("purge removes every entry of the user", func(mt *mtest.T) {
		mt.AddMockResponses(deletedResponse(3))
		n, err := newMockDiary(mt).DeleteAllForUser(ctx, "u1")
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)

		cmd := nextCommand(mt)
		assert.Equal(mt, "u1", cmd.Lookup("deletes", "0", "q", "user_id_string").StringValue())
		assert.EqualValues(mt, 0, cmd.Lookup("deletes", "0", "limit").AsInt64())
	})
}
