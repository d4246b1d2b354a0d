package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureExists creates the user row on first contact
func (r *UserRepository) EnsureExists(ctx context.Context, userID int64) error {
	query := r.db.Rebind(`
		INSERT INTO users (user_id, created_at) VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO NOTHING
	`)
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Exists reports whether the user has been seen before
func (r *UserRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind("SELECT COUNT(*) FROM users WHERE user_id = ?"), userID); err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return count > 0, nil
}
