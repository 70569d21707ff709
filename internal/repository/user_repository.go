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

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, role, name, photo, is_verified, is_deleted, deleted_at, created_at, updated_at`

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, name, photo, is_verified, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Name,
		user.Photo,
		user.IsVerified,
		user.IsDeleted,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var deletedAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Name,
		&user.Photo,
		&user.IsVerified,
		&user.IsDeleted,
		&deletedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}

	return user, nil
}

// GetByEmail retrieves a user by email, including soft-deleted accounts.
// Callers decide what a deleted account means for their flow.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// List returns non-deleted users matching the query plus the total count
func (r *userRepository) List(ctx context.Context, query UserListQuery) ([]*domain.User, int, error) {
	where := `WHERE is_deleted = FALSE`
	args := []any{}

	if query.Name != "" {
		args = append(args, "%"+query.Name+"%")
		where += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}

	orderBy := "created_at"
	switch query.OrderBy {
	case "name", "email", "created_at":
		orderBy = query.OrderBy
	}
	direction := "ASC"
	if query.Desc {
		direction = "DESC"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users ` + where
	if err := r.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	args = append(args, query.Limit, query.Limit*(query.Page-1))
	listQuery := fmt.Sprintf(
		`SELECT %s FROM users %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		userColumns, where, orderBy, direction, len(args)-1, len(args),
	)

	rows, err := r.db.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		var deletedAt sql.NullTime
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.Name,
			&user.Photo,
			&user.IsVerified,
			&user.IsDeleted,
			&deletedAt,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		if deletedAt.Valid {
			user.DeletedAt = &deletedAt.Time
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}

// Update updates a user's profile fields
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, photo = $4, updated_at = $5
		WHERE id = $1
	`

	user.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Photo,
		user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return r.checkAffected(result)
}

// UpdatePassword replaces the user's password hash
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return r.checkAffected(result)
}

// SetVerified marks the user's email as verified
func (r *userRepository) SetVerified(ctx context.Context, userID string) error {
	query := `UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to set user verified: %w", err)
	}

	return r.checkAffected(result)
}

// SetRole changes the user's role
func (r *userRepository) SetRole(ctx context.Context, userID string, role domain.Role) error {
	query := `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("failed to set user role: %w", err)
	}

	return r.checkAffected(result)
}

// SoftDelete marks the account deleted and strips everything that should not
// survive deletion: role falls back to USER, photo and verification are
// cleared. The row itself is kept so the account can be restored later.
func (r *userRepository) SoftDelete(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET is_deleted = TRUE, deleted_at = NOW(), role = $2, photo = '', is_verified = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, domain.RoleUser)
	if err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}

	return r.checkAffected(result)
}

// Restore clears the soft-delete flag and sets a fresh password hash
func (r *userRepository) Restore(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET is_deleted = FALSE, deleted_at = NULL, password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to restore user: %w", err)
	}

	return r.checkAffected(result)
}

// AddFavorite adds a place to the user's favorites set.
// The insert is idempotent, so concurrent adds cannot duplicate or clobber.
func (r *userRepository) AddFavorite(ctx context.Context, userID, placeID string) error {
	query := `
		INSERT INTO user_favorites (user_id, place_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, place_id) DO NOTHING
	`

	_, err := r.db.DB.ExecContext(ctx, query, userID, placeID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("user or place missing: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	return nil
}

// RemoveFavorite removes a place from the user's favorites set
func (r *userRepository) RemoveFavorite(ctx context.Context, userID, placeID string) error {
	query := `DELETE FROM user_favorites WHERE user_id = $1 AND place_id = $2`

	_, err := r.db.DB.ExecContext(ctx, query, userID, placeID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	return nil
}

// IsFavorite reports whether the place is in the user's favorites
func (r *userRepository) IsFavorite(ctx context.Context, userID, placeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_favorites WHERE user_id = $1 AND place_id = $2)`

	var exists bool
	if err := r.db.DB.QueryRowContext(ctx, query, userID, placeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}

	return exists, nil
}

// FavoriteIDs returns the ids of the user's favorite places
func (r *userRepository) FavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT place_id FROM user_favorites WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return ids, nil
}

func (r *userRepository) checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
