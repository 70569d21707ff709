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

// reviewRepository implements ReviewRepository interface
type reviewRepository struct {
	db *database.Postgres
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *database.Postgres) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, place_id, user_id, rating, text, check_amount, is_edited, created_at, updated_at`

// Create creates a new review in the database
func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, place_id, user_id, rating, text, check_amount, is_edited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	now := time.Now()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	if review.UpdatedAt.IsZero() {
		review.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		review.ID,
		review.PlaceID,
		review.UserID,
		review.Rating,
		review.Text,
		review.Check,
		review.IsEdited,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("user already reviewed this place: %w", ErrDuplicateReview)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func scanReview(scan func(dest ...any) error) (*domain.Review, error) {
	review := &domain.Review{}
	err := scan(
		&review.ID,
		&review.PlaceID,
		&review.UserID,
		&review.Rating,
		&review.Text,
		&review.Check,
		&review.IsEdited,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}

// GetByID retrieves a review by ID
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.db.DB.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review by id: %w", err)
	}

	return review, nil
}

func (r *reviewRepository) listBy(ctx context.Context, column, value string) ([]*domain.Review, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM reviews WHERE %s = $1 ORDER BY created_at DESC`,
		reviewColumns, column,
	)

	rows, err := r.db.DB.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review, err := scanReview(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

// GetByPlace returns all reviews of a place, newest first
func (r *reviewRepository) GetByPlace(ctx context.Context, placeID string) ([]*domain.Review, error) {
	return r.listBy(ctx, "place_id", placeID)
}

// Update updates a review's content
func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, text = $3, check_amount = $4, is_edited = $5, updated_at = $6
		WHERE id = $1
	`

	review.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		review.ID,
		review.Rating,
		review.Text,
		review.Check,
		review.IsEdited,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	return checkAffected(result)
}

// Delete removes a review
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return checkAffected(result)
}

// AverageRating computes the mean rating of a place's reviews, rounded to one
// decimal. Returns 0 when the place has no reviews.
func (r *reviewRepository) AverageRating(ctx context.Context, placeID string) (float64, error) {
	query := `SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0) FROM reviews WHERE place_id = $1`

	var rating float64
	if err := r.db.DB.QueryRowContext(ctx, query, placeID).Scan(&rating); err != nil {
		return 0, fmt.Errorf("failed to compute average rating: %w", err)
	}

	return rating, nil
}
