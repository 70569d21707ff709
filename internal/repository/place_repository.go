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

// placeRepository implements PlaceRepository interface
type placeRepository struct {
	db *database.Postgres
}

// NewPlaceRepository creates a new place repository
func NewPlaceRepository(db *database.Postgres) PlaceRepository {
	return &placeRepository{db: db}
}

const placeColumns = `id, name, description, address, longitude, latitude, photo, tags, type,
	average_check, rating, contact_phone, contact_telegram, contact_email,
	created_by, is_moderated, is_deleted, created_at, updated_at`

// Create creates a new place in the database
func (r *placeRepository) Create(ctx context.Context, place *domain.Place) error {
	query := `
		INSERT INTO places (id, name, description, address, longitude, latitude, photo, tags, type,
			average_check, rating, contact_phone, contact_telegram, contact_email,
			created_by, is_moderated, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	if place.ID == "" {
		place.ID = uuid.New().String()
	}

	now := time.Now()
	if place.CreatedAt.IsZero() {
		place.CreatedAt = now
	}
	if place.UpdatedAt.IsZero() {
		place.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		place.ID,
		place.Name,
		place.Description,
		place.Address,
		place.Longitude,
		place.Latitude,
		place.Photo,
		pq.Array(place.Tags),
		place.Type,
		place.AverageCheck,
		place.Rating,
		place.Contacts.Phone,
		place.Contacts.Telegram,
		place.Contacts.Email,
		place.CreatedBy,
		place.IsModerated,
		place.IsDeleted,
		place.CreatedAt,
		place.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create place: %w", err)
	}

	return nil
}

func scanPlace(scan func(dest ...any) error) (*domain.Place, error) {
	place := &domain.Place{}
	var tags pq.StringArray

	err := scan(
		&place.ID,
		&place.Name,
		&place.Description,
		&place.Address,
		&place.Longitude,
		&place.Latitude,
		&place.Photo,
		&tags,
		&place.Type,
		&place.AverageCheck,
		&place.Rating,
		&place.Contacts.Phone,
		&place.Contacts.Telegram,
		&place.Contacts.Email,
		&place.CreatedBy,
		&place.IsModerated,
		&place.IsDeleted,
		&place.CreatedAt,
		&place.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	place.Tags = tags
	return place, nil
}

// GetByID retrieves a place by ID
func (r *placeRepository) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = $1 AND is_deleted = FALSE`

	place, err := scanPlace(r.db.DB.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("place %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get place by id: %w", err)
	}

	return place, nil
}

// List returns non-deleted places matching the query plus the total count
func (r *placeRepository) List(ctx context.Context, query PlaceListQuery) ([]*domain.Place, int, error) {
	where := `WHERE is_deleted = FALSE`
	args := []any{}

	if query.Name != "" {
		args = append(args, "%"+query.Name+"%")
		where += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}
	if query.Type != "" {
		args = append(args, query.Type)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if query.Tag != "" {
		args = append(args, query.Tag)
		where += fmt.Sprintf(` AND $%d = ANY(tags)`, len(args))
	}
	if query.CreatedBy != "" {
		args = append(args, query.CreatedBy)
		where += fmt.Sprintf(` AND created_by = $%d`, len(args))
	}

	orderBy := "created_at"
	switch query.OrderBy {
	case "name", "rating", "average_check", "created_at":
		orderBy = query.OrderBy
	}
	direction := "ASC"
	if query.Desc {
		direction = "DESC"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM places ` + where
	if err := r.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count places: %w", err)
	}

	args = append(args, query.Limit, query.Limit*(query.Page-1))
	listQuery := fmt.Sprintf(
		`SELECT %s FROM places %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		placeColumns, where, orderBy, direction, len(args)-1, len(args),
	)

	rows, err := r.db.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	var places []*domain.Place
	for rows.Next() {
		place, err := scanPlace(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate places: %w", err)
	}

	return places, total, nil
}

// Update updates a place's editable fields
func (r *placeRepository) Update(ctx context.Context, place *domain.Place) error {
	query := `
		UPDATE places
		SET name = $2, description = $3, address = $4, longitude = $5, latitude = $6,
			tags = $7, type = $8, average_check = $9,
			contact_phone = $10, contact_telegram = $11, contact_email = $12,
			updated_at = $13
		WHERE id = $1 AND is_deleted = FALSE
	`

	place.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		place.ID,
		place.Name,
		place.Description,
		place.Address,
		place.Longitude,
		place.Latitude,
		pq.Array(place.Tags),
		place.Type,
		place.AverageCheck,
		place.Contacts.Phone,
		place.Contacts.Telegram,
		place.Contacts.Email,
		place.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update place: %w", err)
	}

	return checkAffected(result)
}

// UpdatePhoto replaces the place photo URL
func (r *placeRepository) UpdatePhoto(ctx context.Context, id, photo string) error {
	query := `UPDATE places SET photo = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.DB.ExecContext(ctx, query, id, photo)
	if err != nil {
		return fmt.Errorf("failed to update place photo: %w", err)
	}

	return checkAffected(result)
}

// SetModerated flips the moderation gate
func (r *placeRepository) SetModerated(ctx context.Context, id string, moderated bool) error {
	query := `UPDATE places SET is_moderated = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.DB.ExecContext(ctx, query, id, moderated)
	if err != nil {
		return fmt.Errorf("failed to set place moderated: %w", err)
	}

	return checkAffected(result)
}

// SetRating stores the derived rating
func (r *placeRepository) SetRating(ctx context.Context, id string, rating float64) error {
	query := `UPDATE places SET rating = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.DB.ExecContext(ctx, query, id, rating)
	if err != nil {
		return fmt.Errorf("failed to set place rating: %w", err)
	}

	return checkAffected(result)
}

// SetCreatedBy reassigns the place to another owner
func (r *placeRepository) SetCreatedBy(ctx context.Context, id, userID string) error {
	query := `UPDATE places SET created_by = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to reassign place: %w", err)
	}

	return checkAffected(result)
}

// SoftDelete marks the place deleted, keeping the row
func (r *placeRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE places SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete place: %w", err)
	}

	return checkAffected(result)
}

// CountByCreator counts the non-deleted places owned by a user
func (r *placeRepository) CountByCreator(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM places WHERE created_by = $1 AND is_deleted = FALSE`

	var count int
	if err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count places by creator: %w", err)
	}

	return count, nil
}

// AllTags returns every distinct tag used by non-deleted places
func (r *placeRepository) AllTags(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT unnest(tags) AS tag FROM places WHERE is_deleted = FALSE ORDER BY tag`

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, nil
}

// AddView records one user view of a place
func (r *placeRepository) AddView(ctx context.Context, view *domain.PlaceView) error {
	query := `
		INSERT INTO place_views (id, place_id, user_id, viewed_at)
		VALUES ($1, $2, $3, $4)
	`

	if view.ID == "" {
		view.ID = uuid.New().String()
	}
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query, view.ID, view.PlaceID, view.UserID, view.ViewedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("place or user missing: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to add place view: %w", err)
	}

	return nil
}

// CountViews counts views of a place within [from, to)
func (r *placeRepository) CountViews(ctx context.Context, placeID string, from, to time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM place_views WHERE place_id = $1 AND viewed_at >= $2 AND viewed_at < $3`

	var count int
	if err := r.db.DB.QueryRowContext(ctx, query, placeID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count place views: %w", err)
	}

	return count, nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
