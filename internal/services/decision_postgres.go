package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

const decisionColumns = `id, user_id, decision_text, reasoning, emotion, category,
	expected_outcome, created_at, reviewed_at, actual_outcome, bias_detected`

// PostgresDecisionRepository stores decisions in the decisions table.
type PostgresDecisionRepository struct {
	db *sql.DB
}

// NewPostgresDecisionRepository creates a repository over db.
func NewPostgresDecisionRepository(db *sql.DB) *PostgresDecisionRepository {
	return &PostgresDecisionRepository{db: db}
}

func (r *PostgresDecisionRepository) Insert(ctx context.Context, owner models.Owner, d models.Decision) (*models.Decision, error) {
	userID, err := uuid.Parse(owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", owner.UserID, models.ErrUnauthorized)
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, models.NewValidationError("id", "decision id must be a UUID")
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO decisions (id, user_id, decision_text, reasoning, emotion, category, expected_outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+decisionColumns,
		id, userID, d.DecisionText, d.Reasoning, string(d.Emotion), string(d.Category), d.ExpectedOutcome, d.CreatedAt,
	)
	created, err := scanDecision(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("decision %s: %w", d.ID, models.ErrConflict)
		}
		return nil, models.NewTransportError("insert decision", 0, err)
	}
	return created, nil
}

func (r *PostgresDecisionRepository) List(ctx context.Context, owner models.Owner) ([]models.Decision, error) {
	userID, err := uuid.Parse(owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", owner.UserID, models.ErrUnauthorized)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+decisionColumns+`
		FROM decisions
		WHERE user_id = $1
		ORDER BY seq DESC
	`, userID)
	if err != nil {
		return nil, models.NewTransportError("list decisions", 0, err)
	}
	defer rows.Close()

	decisions := make([]models.Decision, 0)
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, models.NewTransportError("scan decision", 0, err)
		}
		decisions = append(decisions, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewTransportError("list decisions", 0, err)
	}
	return decisions, nil
}

func (r *PostgresDecisionRepository) MarkReviewed(ctx context.Context, owner models.Owner, id string, review models.Review) (*models.Decision, error) {
	userID, err := uuid.Parse(owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", owner.UserID, models.ErrUnauthorized)
	}
	decisionID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("decision %s: %w", id, models.ErrNotFound)
	}

	// The reviewed_at IS NULL guard keeps the transition one-way under concurrent reviews.
	row := r.db.QueryRowContext(ctx, `
		UPDATE decisions
		SET reviewed_at = $3, actual_outcome = $4, bias_detected = $5
		WHERE id = $1 AND user_id = $2 AND reviewed_at IS NULL
		RETURNING `+decisionColumns,
		decisionID, userID, review.ReviewedAt, review.ActualOutcome, pq.Array(review.BiasDetected),
	)
	updated, err := scanDecision(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewTransportError("review decision", 0, err)
	}

	// Nothing updated: either the decision is missing or it was already reviewed.
	existing, err := scanDecision(r.db.QueryRowContext(ctx, `
		SELECT `+decisionColumns+`
		FROM decisions
		WHERE id = $1 AND user_id = $2
	`, decisionID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decision %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, models.NewTransportError("load decision", 0, err)
	}
	if err := CanReview(*existing); err != nil {
		return nil, err
	}
	return nil, models.NewTransportError("review decision", 0, errors.New("update matched no rows"))
}

func (r *PostgresDecisionRepository) Delete(ctx context.Context, owner models.Owner, id string) error {
	userID, err := uuid.Parse(owner.UserID)
	if err != nil {
		return fmt.Errorf("user %q: %w", owner.UserID, models.ErrUnauthorized)
	}
	decisionID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("decision %s: %w", id, models.ErrNotFound)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM decisions WHERE id = $1 AND user_id = $2`, decisionID, userID)
	if err != nil {
		return models.NewTransportError("delete decision", 0, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.NewTransportError("delete decision", 0, err)
	}
	if affected == 0 {
		return fmt.Errorf("decision %s: %w", id, models.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*models.Decision, error) {
	var (
		d             models.Decision
		id, userID    uuid.UUID
		emotion       string
		category      string
		reviewedAt    sql.NullTime
		actualOutcome sql.NullString
		bias          []string
	)
	if err := row.Scan(
		&id, &userID, &d.DecisionText, &d.Reasoning, &emotion, &category,
		&d.ExpectedOutcome, &d.CreatedAt, &reviewedAt, &actualOutcome, pq.Array(&bias),
	); err != nil {
		return nil, err
	}

	d.ID = id.String()
	d.UserID = userID.String()
	d.Emotion = models.Emotion(emotion)
	d.Category = models.Category(category)
	d.CreatedAt = d.CreatedAt.UTC()
	if reviewedAt.Valid {
		t := reviewedAt.Time.UTC()
		d.ReviewedAt = &t
	}
	if actualOutcome.Valid {
		s := actualOutcome.String
		d.ActualOutcome = &s
	}
	if d.ReviewedAt != nil {
		if bias == nil {
			bias = []string{}
		}
		d.BiasDetected = bias
	}
	return &d, nil
}
