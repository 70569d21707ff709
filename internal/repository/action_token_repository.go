package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/pkg/database"
)

// actionTokenRepository implements ActionTokenRepository interface
type actionTokenRepository struct {
	db *database.Postgres
}

// NewActionTokenRepository creates a new action token repository
func NewActionTokenRepository(db *database.Postgres) ActionTokenRepository {
	return &actionTokenRepository{db: db}
}

// Replace deletes any previous token of the same (user, type) before storing
// the new one, so at most one token per purpose is ever active.
func (r *actionTokenRepository) Replace(ctx context.Context, token *domain.ActionToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	deleteQuery := `DELETE FROM action_tokens WHERE user_id = $1 AND type = $2`
	if _, err := r.db.DB.ExecContext(ctx, deleteQuery, token.UserID, token.Type); err != nil {
		return fmt.Errorf("failed to delete previous action token: %w", err)
	}

	insertQuery := `
		INSERT INTO action_tokens (id, user_id, token, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.DB.ExecContext(ctx, insertQuery,
		token.ID,
		token.UserID,
		token.Token,
		token.Type,
		token.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("action token already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create action token: %w", err)
	}

	return nil
}

// GetByToken retrieves an action token by its raw value
func (r *actionTokenRepository) GetByToken(ctx context.Context, token string) (*domain.ActionToken, error) {
	query := `SELECT id, user_id, token, type, created_at FROM action_tokens WHERE token = $1`

	entity := &domain.ActionToken{}
	err := r.db.DB.QueryRowContext(ctx, query, token).Scan(
		&entity.ID,
		&entity.UserID,
		&entity.Token,
		&entity.Type,
		&entity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("action token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get action token: %w", err)
	}

	return entity, nil
}

// DeleteByToken consumes a single action token
func (r *actionTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM action_tokens WHERE token = $1`

	if _, err := r.db.DB.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete action token: %w", err)
	}

	return nil
}

// DeleteAllByUser deletes the user's action tokens, optionally only of the
// given types
func (r *actionTokenRepository) DeleteAllByUser(ctx context.Context, userID string, types ...domain.TokenType) error {
	if len(types) == 0 {
		query := `DELETE FROM action_tokens WHERE user_id = $1`
		if _, err := r.db.DB.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("failed to delete action tokens for user: %w", err)
		}
		return nil
	}

	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	query := `DELETE FROM action_tokens WHERE user_id = $1 AND type = ANY($2)`
	if _, err := r.db.DB.ExecContext(ctx, query, userID, pq.Array(typeNames)); err != nil {
		return fmt.Errorf("failed to delete action tokens for user: %w", err)
	}

	return nil
}

// DeleteOlderThan removes tokens created before the cutoff and returns the count
func (r *actionTokenRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM action_tokens WHERE created_at < $1`

	result, err := r.db.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired action tokens: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return deleted, nil
}
