package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"trackshare/internal/model"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// mapUserConstraintError translates a users-table unique violation to
// the matching domain error. Two registrations can race past the
// exists-checks; the constraint is the source of truth.
func mapUserConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch {
	case strings.Contains(pqErr.Constraint, "username"):
		return model.ErrUsernameExists
	case strings.Contains(pqErr.Constraint, "email"):
		return model.ErrEmailExists
	}
	return err
}

const userColumns = `id, username, email, password_hash, bio, twitter, instagram, github,
	       avatar_url, avatar_key, poster, admin, receives_mail, last_seen, created_at, updated_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, poster, admin, receives_mail, last_seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), NOW())
		RETURNING id, last_seen, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.Poster,
		u.Admin,
		u.ReceivesMail,
	)

	err := row.Scan(&u.ID, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if mapped := mapUserConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by their email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// ExistsByEmail checks if an email is already taken
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// UpdateProfile persists the editable profile fields.
func (r *userRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET username = $1, bio = $2, twitter = $3, instagram = $4, github = $5,
		    avatar_url = $6, avatar_key = $7, updated_at = NOW()
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		u.Username, u.Bio, u.Twitter, u.Instagram, u.Github,
		u.AvatarURL, u.AvatarKey, u.ID,
	)
	if err != nil {
		if mapped := mapUserConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetPoster(ctx context.Context, userID int64, poster bool) error {
	query := `UPDATE users SET poster = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, poster, userID)
	if err != nil {
		return fmt.Errorf("failed to set poster flag: %w", err)
	}
	return nil
}

func (r *userRepository) SetReceivesMail(ctx context.Context, userID int64, receives bool) error {
	query := `UPDATE users SET receives_mail = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, receives, userID)
	if err != nil {
		return fmt.Errorf("failed to set mail flag: %w", err)
	}
	return nil
}

func (r *userRepository) TouchLastSeen(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_seen = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to touch last seen: %w", err)
	}
	return nil
}

// Delete removes a user. Admin-flagged users are never deleted; the
// guard lives in the statement so it cannot be bypassed.
func (r *userRepository) Delete(ctx context.Context, userID int64) error {
	query := `DELETE FROM users WHERE id = $1 AND admin = FALSE`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) DeleteAllNonAdmin(ctx context.Context) error {
	query := `DELETE FROM users WHERE admin = FALSE`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

func (r *userRepository) ListAll(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username ASC`

	var users []model.User
	err := r.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func (r *userRepository) ListSubscribedEmails(ctx context.Context) ([]string, error) {
	query := `SELECT email FROM users WHERE receives_mail = TRUE ORDER BY email`

	var emails []string
	err := r.db.SelectContext(ctx, &emails, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed emails: %w", err)
	}

	return emails, nil
}
