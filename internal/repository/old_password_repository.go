package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/pkg/database"
)

// oldPasswordRepository implements OldPasswordRepository interface
type oldPasswordRepository struct {
	db *database.Postgres
}

// NewOldPasswordRepository creates a new old password repository
func NewOldPasswordRepository(db *database.Postgres) OldPasswordRepository {
	return &oldPasswordRepository{db: db}
}

// Create archives a replaced password hash
func (r *oldPasswordRepository) Create(ctx context.Context, old *domain.OldPassword) error {
	query := `
		INSERT INTO old_passwords (id, user_id, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if old.ID == "" {
		old.ID = uuid.New().String()
	}
	if old.CreatedAt.IsZero() {
		old.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query, old.ID, old.UserID, old.PasswordHash, old.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create old password: %w", err)
	}

	return nil
}

// GetByUser returns all retained hashes for the user
func (r *oldPasswordRepository) GetByUser(ctx context.Context, userID string) ([]*domain.OldPassword, error) {
	query := `SELECT id, user_id, password_hash, created_at FROM old_passwords WHERE user_id = $1`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list old passwords: %w", err)
	}
	defer rows.Close()

	var olds []*domain.OldPassword
	for rows.Next() {
		old := &domain.OldPassword{}
		if err := rows.Scan(&old.ID, &old.UserID, &old.PasswordHash, &old.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan old password: %w", err)
		}
		olds = append(olds, old)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate old passwords: %w", err)
	}

	return olds, nil
}

// DeleteAllByUser wipes the user's password history
func (r *oldPasswordRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	query := `DELETE FROM old_passwords WHERE user_id = $1`

	if _, err := r.db.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete old passwords for user: %w", err)
	}

	return nil
}

// DeleteOlderThan removes hashes archived before the cutoff and returns the count
func (r *oldPasswordRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM old_passwords WHERE created_at < $1`

	result, err := r.db.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired old passwords: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return deleted, nil
}
