package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/proskill/pkg/models"
	"github.com/jmoiron/sqlx"
)

// StatisticsRepository handles database operations for quiz statistics
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// GetByUser returns the user's statistics. A user without a row has zero stats.
func (r *StatisticsRepository) GetByUser(ctx context.Context, userID int64) (models.UserStats, error) {
	return r.get(ctx, r.db, userID)
}

// RecordAnswer applies one answer to the user's statistics and returns the result
func (r *StatisticsRepository) RecordAnswer(ctx context.Context, userID int64, isCorrect bool) (models.UserStats, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stats, err := r.get(ctx, tx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	stats.Apply(isCorrect)

	query := tx.Rebind(`
		INSERT INTO stats (user_id, correct_count, wrong_count, streak, best_streak)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			correct_count = excluded.correct_count,
			wrong_count = excluded.wrong_count,
			streak = excluded.streak,
			best_streak = excluded.best_streak
	`)
	_, err = tx.ExecContext(ctx, query, userID, stats.Correct, stats.Wrong, stats.Streak, stats.BestStreak)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to update statistics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.UserStats{}, fmt.Errorf("failed to commit statistics: %w", err)
	}
	return stats, nil
}

func (r *StatisticsRepository) get(ctx context.Context, q sqlx.QueryerContext, userID int64) (models.UserStats, error) {
	var stats models.UserStats
	query := r.db.Rebind(`
		SELECT correct_count, wrong_count, streak, best_streak
		FROM stats
		WHERE user_id = ?
	`)
	err := sqlx.GetContext(ctx, q, &stats, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserStats{}, nil
	}
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to get statistics: %w", err)
	}
	return stats, nil
}
