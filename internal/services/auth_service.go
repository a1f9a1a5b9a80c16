package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
)

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService issues and verifies bearer credentials. A token is valid while
// its signature checks out and its session still exists in Redis.
type AuthService struct {
	users    *UserService
	sessions *SessionStore
	tokens   *TokenIssuer
	log      *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users *UserService, sessions *SessionStore, tokens *TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, tokens: tokens, log: log.Named("auth")}
}

// Register creates an account and logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := s.users.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

// Login verifies credentials and starts a new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

// Logout revokes the session behind identity.
func (s *AuthService) Logout(ctx context.Context, identity models.Identity) error {
	if err := s.sessions.Invalidate(ctx, identity.SessionID); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	s.log.Info("user logged out", zap.String("user_id", identity.UserID))
	return nil
}

// RevokeUser drops any session held by userID.
func (s *AuthService) RevokeUser(ctx context.Context, userID string) error {
	return s.sessions.InvalidateUser(ctx, userID)
}

// Authenticate resolves a bearer token into an Identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%v: %w", err, models.ErrUnauthorized)
	}

	userID, ok, err := s.sessions.Validate(ctx, claims.ID)
	if err != nil {
		return models.Identity{}, models.NewTransportError("validate session", 0, err)
	}
	if !ok || userID != claims.Subject {
		return models.Identity{}, fmt.Errorf("session expired or revoked: %w", models.ErrUnauthorized)
	}

	return models.Identity{
		UserID:    claims.Subject,
		SessionID: claims.ID,
		Roles:     claims.Roles,
		Token:     token,
	}, nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, models.NewTransportError("create session", 0, err)
	}
	token, err := s.tokens.Issue(user.ID, sessionID, user.Roles)
	if err != nil {
		_ = s.sessions.Invalidate(ctx, sessionID)
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("session started", zap.String("user_id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}
