package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

// DefaultRemoteTimeout bounds a single call to the remote decision API.
const DefaultRemoteTimeout = 10 * time.Second

// maxRemoteBody caps how much of a remote response is read.
const maxRemoteBody = 1 << 20

// RemoteDecisionRepository talks to a remote decision API over HTTP:
//
//	POST   /users/{userId}/decision
//	GET    /users/{userId}/decision
//	PATCH  /users/{userId}/decision/{id}/review
//	DELETE /users/{userId}/decision/{id}
//
// Every call carries owner.Token as a bearer credential.
type RemoteDecisionRepository struct {
	baseURL string
	client  *http.Client
}

// NewRemoteDecisionRepository creates a client for the API at baseURL.
// A nil client gets a default one with DefaultRemoteTimeout.
func NewRemoteDecisionRepository(baseURL string, client *http.Client) *RemoteDecisionRepository {
	if client == nil {
		client = &http.Client{Timeout: DefaultRemoteTimeout}
	}
	return &RemoteDecisionRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// decisionPayload is the wire representation. Enum fields stay strings so
// unknown values are rejected at the boundary instead of during decoding.
type decisionPayload struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId,omitempty"`
	Decision        string     `json:"decision"`
	Reasoning       string     `json:"reasoning"`
	Emotion         string     `json:"emotion"`
	Category        string     `json:"category"`
	ExpectedOutcome string     `json:"expectedOutcome"`
	CreatedAt       time.Time  `json:"createdAt"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	ActualOutcome   *string    `json:"actualOutcome,omitempty"`
	BiasDetected    []string   `json:"biasDetected,omitempty"`
}

type createPayload struct {
	Decision        string `json:"decision"`
	Reasoning       string `json:"reasoning"`
	Emotion         string `json:"emotion"`
	Category        string `json:"category"`
	ExpectedOutcome string `json:"expectedOutcome"`
}

type reviewPayload struct {
	ActualOutcome string     `json:"actualOutcome"`
	BiasDetected  []string   `json:"biasDetected,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
}

type remoteErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Field   string `json:"field"`
}

func (r *RemoteDecisionRepository) Insert(ctx context.Context, owner models.Owner, d models.Decision) (*models.Decision, error) {
	body := createPayload{
		Decision:        d.DecisionText,
		Reasoning:       d.Reasoning,
		Emotion:         string(d.Emotion),
		Category:        string(d.Category),
		ExpectedOutcome: d.ExpectedOutcome,
	}
	var out decisionPayload
	if err := r.do(ctx, owner, http.MethodPost, r.collectionPath(owner), body, &out, "create decision"); err != nil {
		return nil, err
	}
	return out.toDecision()
}

func (r *RemoteDecisionRepository) List(ctx context.Context, owner models.Owner) ([]models.Decision, error) {
	var out []decisionPayload
	if err := r.do(ctx, owner, http.MethodGet, r.collectionPath(owner), nil, &out, "list decisions"); err != nil {
		return nil, err
	}
	decisions := make([]models.Decision, 0, len(out))
	for _, p := range out {
		d, err := p.toDecision()
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, *d)
	}
	return decisions, nil
}

func (r *RemoteDecisionRepository) MarkReviewed(ctx context.Context, owner models.Owner, id string, review models.Review) (*models.Decision, error) {
	reviewedAt := review.ReviewedAt
	body := reviewPayload{
		ActualOutcome: review.ActualOutcome,
		BiasDetected:  review.BiasDetected,
		ReviewedAt:    &reviewedAt,
	}
	var out decisionPayload
	path := r.collectionPath(owner) + "/" + url.PathEscape(id) + "/review"
	if err := r.do(ctx, owner, http.MethodPatch, path, body, &out, "review decision"); err != nil {
		return nil, err
	}
	return out.toDecision()
}

func (r *RemoteDecisionRepository) Delete(ctx context.Context, owner models.Owner, id string) error {
	path := r.collectionPath(owner) + "/" + url.PathEscape(id)
	return r.do(ctx, owner, http.MethodDelete, path, nil, nil, "delete decision")
}

func (r *RemoteDecisionRepository) collectionPath(owner models.Owner) string {
	return "/users/" + url.PathEscape(owner.UserID) + "/decision"
}

func (r *RemoteDecisionRepository) do(ctx context.Context, owner models.Owner, method, path string, in, out any, op string) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return models.NewTransportError(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if owner.Token != "" {
		req.Header.Set("Authorization", "Bearer "+owner.Token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return models.NewTransportError(op, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return models.NewTransportError(op, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		if out != nil {
			return models.NewTransportError(op, resp.StatusCode, errors.New("empty response body"))
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return models.NewTransportError(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(op string, status int, raw []byte) error {
	var body remoteErrorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		field := body.Field
		if field == "" {
			field = "request"
		}
		return models.NewValidationError(field, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %s: %w", op, msg, models.ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %s: %w", op, msg, models.ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %s: %w", op, msg, models.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %s: %w", op, msg, models.ErrAlreadyReviewed)
	default:
		return models.NewTransportError(op, status, errors.New(msg))
	}
}

func (p decisionPayload) toDecision() (*models.Decision, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, models.NewValidationError("id", "remote decision has no id")
	}
	emotion, err := models.ParseEmotion(p.Emotion)
	if err != nil {
		return nil, err
	}
	category, err := models.ParseCategory(p.Category)
	if err != nil {
		return nil, err
	}

	d := models.Decision{
		ID:              p.ID,
		UserID:          p.UserID,
		DecisionText:    p.Decision,
		Reasoning:       p.Reasoning,
		Emotion:         emotion,
		Category:        category,
		ExpectedOutcome: p.ExpectedOutcome,
		CreatedAt:       p.CreatedAt.UTC(),
		ActualOutcome:   p.ActualOutcome,
		BiasDetected:    p.BiasDetected,
	}
	if p.ReviewedAt != nil {
		t := p.ReviewedAt.UTC()
		d.ReviewedAt = &t
		if d.BiasDetected == nil {
			d.BiasDetected = []string{}
		}
	}
	if err := d.CheckReviewPairing(); err != nil {
		return nil, err
	}
	return &d, nil
}
