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

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db *database.Postgres
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.Postgres) SessionRepository {
	return &sessionRepository{db: db}
}

// Create stores a new access/refresh pair for the user
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, access_token, refresh_token, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.AccessToken,
		session.RefreshToken,
		session.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("session already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) getBy(ctx context.Context, column, token string) (*domain.Session, error) {
	query := fmt.Sprintf(
		`SELECT id, user_id, access_token, refresh_token, created_at FROM sessions WHERE %s = $1`,
		column,
	)

	session := &domain.Session{}
	err := r.db.DB.QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.AccessToken,
		&session.RefreshToken,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// GetByAccessToken retrieves a session by its access token
func (r *sessionRepository) GetByAccessToken(ctx context.Context, accessToken string) (*domain.Session, error) {
	return r.getBy(ctx, "access_token", accessToken)
}

// GetByRefreshToken retrieves a session by its refresh token
func (r *sessionRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return r.getBy(ctx, "refresh_token", refreshToken)
}

// DeleteByAccessToken revokes the single session holding this access token
func (r *sessionRepository) DeleteByAccessToken(ctx context.Context, accessToken string) error {
	query := `DELETE FROM sessions WHERE access_token = $1`

	if _, err := r.db.DB.ExecContext(ctx, query, accessToken); err != nil {
		return fmt.Errorf("failed to delete session by access token: %w", err)
	}

	return nil
}

// DeleteByRefreshToken revokes the single session holding this refresh token
func (r *sessionRepository) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	query := `DELETE FROM sessions WHERE refresh_token = $1`

	if _, err := r.db.DB.ExecContext(ctx, query, refreshToken); err != nil {
		return fmt.Errorf("failed to delete session by refresh token: %w", err)
	}

	return nil
}

// DeleteAllByUser revokes every session of the user
func (r *sessionRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	query := `DELETE FROM sessions WHERE user_id = $1`

	if _, err := r.db.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete sessions for user: %w", err)
	}

	return nil
}

// DeleteOlderThan removes sessions created before the cutoff and returns the count
func (r *sessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE created_at < $1`

	result, err := r.db.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return deleted, nil
}
