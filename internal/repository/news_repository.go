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

// newsRepository implements NewsRepository interface
type newsRepository struct {
	db *database.Postgres
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(db *database.Postgres) NewsRepository {
	return &newsRepository{db: db}
}

const newsColumns = `id, place_id, type, title, text, photo, created_at, updated_at`

// Create creates a news item for a place
func (r *newsRepository) Create(ctx context.Context, news *domain.News) error {
	query := `
		INSERT INTO news (id, place_id, type, title, text, photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if news.ID == "" {
		news.ID = uuid.New().String()
	}

	now := time.Now()
	if news.CreatedAt.IsZero() {
		news.CreatedAt = now
	}
	if news.UpdatedAt.IsZero() {
		news.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		news.ID,
		news.PlaceID,
		news.Type,
		news.Title,
		news.Text,
		news.Photo,
		news.CreatedAt,
		news.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("place %s not found: %w", news.PlaceID, ErrNotFound)
		}
		return fmt.Errorf("failed to create news: %w", err)
	}

	return nil
}

func scanNews(scan func(dest ...any) error) (*domain.News, error) {
	news := &domain.News{}
	err := scan(
		&news.ID,
		&news.PlaceID,
		&news.Type,
		&news.Title,
		&news.Text,
		&news.Photo,
		&news.CreatedAt,
		&news.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return news, nil
}

// GetByID retrieves a news item by ID
func (r *newsRepository) GetByID(ctx context.Context, id string) (*domain.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE id = $1`

	news, err := scanNews(r.db.DB.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("news %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get news by id: %w", err)
	}

	return news, nil
}

// GetByPlace returns all news of a place, newest first
func (r *newsRepository) GetByPlace(ctx context.Context, placeID string) ([]*domain.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE place_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	defer rows.Close()

	var items []*domain.News
	for rows.Next() {
		news, err := scanNews(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news: %w", err)
		}
		items = append(items, news)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news: %w", err)
	}

	return items, nil
}

// Update updates a news item's content
func (r *newsRepository) Update(ctx context.Context, news *domain.News) error {
	query := `
		UPDATE news
		SET type = $2, title = $3, text = $4, updated_at = $5
		WHERE id = $1
	`

	news.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		news.ID,
		news.Type,
		news.Title,
		news.Text,
		news.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}

	return checkAffected(result)
}

// UpdatePhoto sets or clears a news item's photo URL
func (r *newsRepository) UpdatePhoto(ctx context.Context, id, photo string) error {
	query := `UPDATE news SET photo = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id, photo, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update news photo: %w", err)
	}

	return checkAffected(result)
}

// Delete removes a news item
func (r *newsRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM news WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}

	return checkAffected(result)
}
