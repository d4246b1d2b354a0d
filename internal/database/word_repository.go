package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// WordRecord is a stored word row of the word service
type WordRecord struct {
	ID     int64  `db:"id" json:"id"`
	UserID int64  `db:"user_id" json:"-"`
	En     string `db:"en" json:"en"`
	Uz     string `db:"uz" json:"uz"`
}

// WordRepository handles database operations for words
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// ListByUser returns the user's words, most recently added first
func (r *WordRepository) ListByUser(ctx context.Context, userID int64) ([]WordRecord, error) {
	words := []WordRecord{}
	query := r.db.Rebind(`
		SELECT id, user_id, en, uz FROM words
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`)
	if err := r.db.SelectContext(ctx, &words, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	return words, nil
}

// Create inserts a new word and returns its id
func (r *WordRepository) Create(ctx context.Context, userID int64, en, uz string) (int64, error) {
	var id int64
	query := r.db.Rebind(`
		INSERT INTO words (user_id, en, uz, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		RETURNING id
	`)
	if err := r.db.QueryRowxContext(ctx, query, userID, en, uz).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create word: %w", err)
	}
	return id, nil
}

// Delete removes a word owned by userID. It returns ErrNotFound when no such word exists.
func (r *WordRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM words WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByUser returns how many words the user has
func (r *WordRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind("SELECT COUNT(*) FROM words WHERE user_id = ?"), userID); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}
