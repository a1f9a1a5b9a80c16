package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/AnshRaj112/decision-journal-backend/internal/models"
	"github.com/AnshRaj112/decision-journal-backend/pkg/utils"
)

const userColumns = `id, email, name, password_hash, roles, created_at, is_active`

// RegisterInput holds the fields needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput holds optional profile changes.
type UpdateUserInput struct {
	Name  *string
	Email *string
}

// UserService manages user accounts in Postgres.
type UserService struct {
	db          *sql.DB
	cache       *CacheService
	adminEmails []string
	log         *zap.Logger
}

// NewUserService creates a UserService. Accounts registered with one of
// adminEmails receive the admin role.
func NewUserService(db *sql.DB, cache *CacheService, adminEmails []string, log *zap.Logger) *UserService {
	normalized := make([]string, 0, len(adminEmails))
	for _, e := range adminEmails {
		if e = utils.NormalizeEmail(e); e != "" {
			normalized = append(normalized, e)
		}
	}
	return &UserService{
		db:          db,
		cache:       cache,
		adminEmails: normalized,
		log:         log.Named("users"),
	}
}

// Register creates a new active account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	email := utils.NormalizeEmail(in.Email)

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roles := []string{models.RoleUser}
	if slices.Contains(s.adminEmails, email) {
		roles = append(roles, models.RoleAdmin)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, roles, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, NOW(), TRUE)
		RETURNING `+userColumns,
		uuid.New(), email, strings.TrimSpace(in.Name), hash, pq.Array(roles),
	)
	user, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("an account with this email already exists: %w", models.ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.Strings("roles", user.Roles))
	return user, nil
}

// Authenticate checks credentials and returns the matching active account.
// Any mismatch yields models.ErrUnauthorized without saying which part failed.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, models.NewValidationError("email", "Email and password are required")
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, utils.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invalid email or password: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is inactive: %w", models.ErrForbidden)
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil || !valid {
		return nil, fmt.Errorf("invalid email or password: %w", models.ErrUnauthorized)
	}
	return user, nil
}

// GetByID returns an account by id, consulting the profile cache first.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}

	var cached models.User
	if found, err := s.cache.Get(ctx, CacheKey("user", id), &cached); err == nil && found {
		return &cached, nil
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1 AND is_active = TRUE
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := s.cache.Set(ctx, CacheKey("user", id), user); err != nil {
		s.log.Warn("cache user profile", zap.String("user_id", id), zap.Error(err))
	}
	return user, nil
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Update changes name and/or email.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}

	var name, email *string
	if in.Name != nil {
		if err := utils.ValidateName(*in.Name); err != nil {
			return nil, toValidation(err)
		}
		v := strings.TrimSpace(*in.Name)
		name = &v
	}
	if in.Email != nil {
		if err := utils.ValidateEmail(*in.Email); err != nil {
			return nil, toValidation(err)
		}
		v := utils.NormalizeEmail(*in.Email)
		email = &v
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users
		SET name = COALESCE($2, name), email = COALESCE($3, email)
		WHERE id = $1 AND is_active = TRUE
		RETURNING `+userColumns,
		userID, name, email,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("an account with this email already exists: %w", models.ErrConflict)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, CacheKey("user", id))
	return user, nil
}

// Delete removes an account. Its decisions go with it (ON DELETE CASCADE).
func (s *UserService) Delete(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}

	_ = s.cache.Delete(ctx, CacheKey("user", id))
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}

func validateRegistration(in RegisterInput) error {
	for _, err := range []error{
		utils.ValidateName(in.Name),
		utils.ValidateEmail(in.Email),
		utils.ValidatePassword(in.Password),
	} {
		if err != nil {
			return toValidation(err)
		}
	}
	return nil
}

// toValidation lifts a utils.ValidationError into the domain error type.
func toValidation(err error) error {
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		return models.NewValidationError(ve.Field, ve.Message)
	}
	return models.NewValidationError("request", err.Error())
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u     models.User
		id    uuid.UUID
		roles []string
	)
	if err := row.Scan(&id, &u.Email, &u.Name, &u.PasswordHash, pq.Array(&roles), &u.CreatedAt, &u.IsActive); err != nil {
		return nil, err
	}
	u.ID = id.String()
	u.Roles = roles
	if u.Roles == nil {
		u.Roles = []string{}
	}
	return &u, nil
}
