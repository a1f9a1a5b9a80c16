package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

var testOwner = models.Owner{UserID: "7c0a8a1e-3f9b-4a57-9a39-2f7f1f0c1a11", Token: "tok"}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*DecisionStore, *MemoryDecisionRepository, *testClock) {
	t.Helper()
	repo := NewMemoryDecisionRepository()
	clock := &testClock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}
	store := NewDecisionStore(repo, NewReviewPolicy(DefaultReviewGrace), zap.NewNop())
	store.now = clock.Now
	seq := 0
	store.newID = func() string {
		seq++
		return fmt.Sprintf("d-%03d", seq)
	}
	return store, repo, clock
}

func validInput() models.CreateDecisionInput {
	return models.CreateDecisionInput{
		DecisionText:    "  Accept the offer  ",
		Reasoning:       "Better team",
		Emotion:         "Excited",
		Category:        "career",
		ExpectedOutcome: "Learn faster",
	}
}

func TestDecisionStore_Create(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	d, err := store.Create(ctx, testOwner, validInput())
	require.NoError(t, err)

	assert.Equal(t, "d-001", d.ID)
	assert.Equal(t, testOwner.UserID, d.UserID)
	assert.Equal(t, "Accept the offer", d.DecisionText)
	assert.Equal(t, models.EmotionExcited, d.Emotion)
	assert.Equal(t, models.CategoryCareer, d.Category)
	assert.Equal(t, clock.Now(), d.CreatedAt)
	assert.Nil(t, d.ReviewedAt)
	assert.Nil(t, d.ActualOutcome)
	assert.Empty(t, d.BiasDetected)

	list, err := store.List(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, *d, list[0])
}

func TestDecisionStore_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*models.CreateDecisionInput)
		field string
	}{
		{"blank decision", func(in *models.CreateDecisionInput) { in.DecisionText = "   " }, "decision"},
		{"blank reasoning", func(in *models.CreateDecisionInput) { in.Reasoning = "" }, "reasoning"},
		{"blank expected outcome", func(in *models.CreateDecisionInput) { in.ExpectedOutcome = "\t" }, "expectedOutcome"},
		{"unknown emotion", func(in *models.CreateDecisionInput) { in.Emotion = "furious" }, "emotion"},
		{"unknown category", func(in *models.CreateDecisionInput) { in.Category = "hobbies" }, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, _ := newTestStore(t)
			in := validInput()
			tt.edit(&in)

			_, err := store.Create(context.Background(), testOwner, in)

			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, models.ErrValidation)

			list, _ := store.List(context.Background(), testOwner)
			assert.Empty(t, list)
		})
	}
}

func TestDecisionStore_MissingOwner(t *testing.T) {
	store, _, _ := newTestStore(t)
	_, err := store.Create(context.Background(), models.Owner{}, validInput())
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = store.List(context.Background(), models.Owner{UserID: " "})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestDecisionStore_ListNewestFirst(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, testOwner, validInput())
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	list, err := store.List(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"d-003", "d-002", "d-001"}, []string{list[0].ID, list[1].ID, list[2].ID})

	other, err := store.List(ctx, models.Owner{UserID: "someone-else"})
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Empty(t, other)
}

func TestDecisionStore_Review(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, testOwner, validInput())
	require.NoError(t, err)
	clock.Advance(8 * 24 * time.Hour)

	reviewed, err := store.Review(ctx, testOwner, created.ID, models.ReviewDecisionInput{
		ActualOutcome: " Learned a lot ",
		BiasDetected:  []string{"optimism bias", " ", "Optimism Bias", "anchoring"},
	})
	require.NoError(t, err)

	require.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, clock.Now(), *reviewed.ReviewedAt)
	require.NotNil(t, reviewed.ActualOutcome)
	assert.Equal(t, "Learned a lot", *reviewed.ActualOutcome)
	assert.Equal(t, []string{"optimism bias", "anchoring"}, reviewed.BiasDetected)
	assert.Equal(t, created.CreatedAt, reviewed.CreatedAt)
	assert.Equal(t, created.DecisionText, reviewed.DecisionText)
}

func TestDecisionStore_ReviewTwiceFails(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, testOwner, validInput())
	require.NoError(t, err)
	first, err := store.Review(ctx, testOwner, created.ID, models.ReviewDecisionInput{ActualOutcome: "first"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = store.Review(ctx, testOwner, created.ID, models.ReviewDecisionInput{ActualOutcome: "second"})
	require.ErrorIs(t, err, models.ErrAlreadyReviewed)

	list, err := store.List(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, *first, list[0])
	assert.Equal(t, "first", *list[0].ActualOutcome)
}

func TestDecisionStore_ReviewEmptyOutcomeLeavesDecisionUnreviewed(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, testOwner, validInput())
	require.NoError(t, err)

	_, err = store.Review(ctx, testOwner, created.ID, models.ReviewDecisionInput{ActualOutcome: "  "})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "actualOutcome", ve.Field)

	list, _ := store.List(ctx, testOwner)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].ReviewedAt)
	assert.Nil(t, list[0].ActualOutcome)
}

func TestDecisionStore_ReviewUnknownID(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.Review(context.Background(), testOwner, "missing", models.ReviewDecisionInput{ActualOutcome: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = store.Review(context.Background(), testOwner, "", models.ReviewDecisionInput{ActualOutcome: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDecisionStore_Delete(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, testOwner, validInput())
	require.NoError(t, err)
	b, err := store.Create(ctx, testOwner, validInput())
	require.NoError(t, err)

	err = store.Delete(ctx, testOwner, "does-not-exist")
	require.ErrorIs(t, err, models.ErrNotFound)
	list, _ := store.List(ctx, testOwner)
	assert.Len(t, list, 2)

	require.NoError(t, store.Delete(ctx, testOwner, a.ID))
	list, _ = store.List(ctx, testOwner)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	assert.ErrorIs(t, store.Delete(ctx, testOwner, a.ID), models.ErrNotFound)
}

func TestDecisionStore_DeleteReviewed(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	d, err := store.Create(ctx, testOwner, validInput())
	require.NoError(t, err)
	_, err = store.Review(ctx, testOwner, d.ID, models.ReviewDecisionInput{ActualOutcome: "done"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, testOwner, d.ID))
	list, _ := store.List(ctx, testOwner)
	assert.Empty(t, list)
}

func TestDecisionStore_DeleteAll(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()
	other := models.Owner{UserID: "0b6f0f3e-6a3d-4b8e-8f0a-5c2d1e9b7a22"}

	for range 3 {
		_, err := store.Create(ctx, testOwner, validInput())
		require.NoError(t, err)
	}
	kept, err := store.Create(ctx, other, validInput())
	require.NoError(t, err)

	n, err := store.DeleteAll(ctx, testOwner)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	list, err := store.List(ctx, testOwner)
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = store.List(ctx, other)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)

	n, err = store.DeleteAll(ctx, testOwner)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.DeleteAll(ctx, models.Owner{})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

// vanishingRepo reports one listed decision as already gone on delete.
type vanishingRepo struct {
	*MemoryDecisionRepository
	gone string
}

func (r vanishingRepo) Delete(ctx context.Context, owner models.Owner, id string) error {
	if id == r.gone {
		return fmt.Errorf("decision %s: %w", id, models.ErrNotFound)
	}
	return r.MemoryDecisionRepository.Delete(ctx, owner, id)
}

func TestDecisionStore_DeleteAllSkipsVanished(t *testing.T) {
	store, repo, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, testOwner, validInput())
	require.NoError(t, err)
	_, err = store.Create(ctx, testOwner, validInput())
	require.NoError(t, err)

	store.repo = vanishingRepo{MemoryDecisionRepository: repo, gone: a.ID}
	n, err := store.DeleteAll(ctx, testOwner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestDecisionStore_InsightsAndDue(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Insights(ctx, testOwner)
	require.NoError(t, err)
	assert.False(t, ok)

	emotions := []string{"confident", "anxious", "anxious", "neutral"}
	ids := make([]string, 0, len(emotions))
	for _, e := range emotions {
		in := validInput()
		in.Emotion = e
		d, err := store.Create(ctx, testOwner, in)
		require.NoError(t, err)
		ids = append(ids, d.ID)
		clock.Advance(24 * time.Hour)
	}
	_, err = store.Review(ctx, testOwner, ids[0], models.ReviewDecisionInput{ActualOutcome: "fine"})
	require.NoError(t, err)

	insights, ok, err := store.Insights(ctx, testOwner)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.EmotionAnxious, insights.DominantEmotion)
	assert.Equal(t, 25, insights.ReviewRate)
	assert.True(t, insights.StressPattern)

	// Created at day 0..3, now is day 4: with a 2-day grace, days 0..2 qualify and day 0 is reviewed.
	due, err := store.DueForReview(ctx, testOwner, NewReviewPolicy(2*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, ids[2], due[0].ID)
	assert.Equal(t, ids[1], due[1].ID)

	due, err = store.DueForReview(ctx, testOwner, store.Policy())
	require.NoError(t, err)
	assert.Empty(t, due)
}

type failingRepo struct{ err error }

func (f failingRepo) Insert(context.Context, models.Owner, models.Decision) (*models.Decision, error) {
	return nil, f.err
}
func (f failingRepo) List(context.Context, models.Owner) ([]models.Decision, error) { return nil, f.err }
func (f failingRepo) MarkReviewed(context.Context, models.Owner, string, models.Review) (*models.Decision, error) {
	return nil, f.err
}
func (f failingRepo) Delete(context.Context, models.Owner, string) error { return f.err }

func TestDecisionStore_PropagatesTransportErrors(t *testing.T) {
	transport := models.NewTransportError("list decisions", 502, errors.New("bad gateway"))
	store := NewDecisionStore(failingRepo{err: transport}, NewReviewPolicy(0), zap.NewNop())
	ctx := context.Background()

	_, err := store.Create(ctx, testOwner, validInput())
	assert.ErrorIs(t, err, models.ErrTransport)
	_, err = store.List(ctx, testOwner)
	assert.ErrorIs(t, err, models.ErrTransport)
	_, _, err = store.Insights(ctx, testOwner)
	assert.ErrorIs(t, err, models.ErrTransport)
	_, err = store.Review(ctx, testOwner, "d1", models.ReviewDecisionInput{ActualOutcome: "x"})
	assert.ErrorIs(t, err, models.ErrTransport)
	assert.ErrorIs(t, store.Delete(ctx, testOwner, "d1"), models.ErrTransport)
	_, err = store.DeleteAll(ctx, testOwner)
	assert.ErrorIs(t, err, models.ErrTransport)
}

func TestMemoryDecisionRepository_IsolatesCopies(t *testing.T) {
	repo := NewMemoryDecisionRepository()
	ctx := context.Background()

	in := models.Decision{ID: "d1", DecisionText: "original", CreatedAt: time.Now()}
	_, err := repo.Insert(ctx, testOwner, in)
	require.NoError(t, err)

	_, err = repo.Insert(ctx, testOwner, in)
	assert.ErrorIs(t, err, models.ErrConflict)

	list, _ := repo.List(ctx, testOwner)
	list[0].DecisionText = "mutated"

	again, _ := repo.List(ctx, testOwner)
	assert.Equal(t, "original", again[0].DecisionText)
}

func TestMemoryDecisionRepository_ConcurrentReviewOnlyOneWins(t *testing.T) {
	repo := NewMemoryDecisionRepository()
	ctx := context.Background()
	_, err := repo.Insert(ctx, testOwner, models.Decision{ID: "d1", CreatedAt: time.Now()})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.MarkReviewed(ctx, testOwner, "d1", models.Review{
				ReviewedAt:    time.Now(),
				ActualOutcome: fmt.Sprintf("outcome %d", i),
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, models.ErrAlreadyReviewed)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestNormalizeBiasLabels(t *testing.T) {
	assert.Equal(t, []string{}, NormalizeBiasLabels(nil))
	assert.Equal(t, []string{"sunk cost", "Anchoring"}, NormalizeBiasLabels([]string{" sunk cost", "Anchoring", "SUNK COST", ""}))
}
