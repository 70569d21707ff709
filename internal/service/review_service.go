package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/repository"
)

// reviewService implements ReviewService interface
type reviewService struct {
	reviewRepo repository.ReviewRepository
	placeRepo  repository.PlaceRepository
}

// NewReviewService creates a new review service
func NewReviewService(reviewRepo repository.ReviewRepository, placeRepo repository.PlaceRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, placeRepo: placeRepo}
}

// Create writes the caller's review of a moderated place. A user holds at
// most one review per place.
func (s *reviewService) Create(ctx context.Context, claims domain.TokenClaims, placeID string, req *dto.CreateReviewRequest) (*domain.Review, error) {
	if _, err := getModeratedPlace(ctx, s.placeRepo, placeID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		PlaceID: placeID,
		UserID:  claims.UserID,
		Rating:  req.Rating,
		Text:    req.Text,
		Check:   req.Check,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, apperr.Newf(apperr.KindConflict,
				"You have already written a review for this place")
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.refreshPlaceRating(ctx, placeID); err != nil {
		return nil, err
	}

	return review, nil
}

// GetByPlace returns the reviews of a moderated place, newest first
func (s *reviewService) GetByPlace(ctx context.Context, placeID string) ([]*domain.Review, error) {
	if _, err := getModeratedPlace(ctx, s.placeRepo, placeID); err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.GetByPlace(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Update edits a review. The edited flag is set on the first update and
// never reset.
func (s *reviewService) Update(ctx context.Context, claims domain.TokenClaims, placeID, reviewID string, req *dto.UpdateReviewRequest) (*domain.Review, error) {
	review, err := s.getGuardedReview(ctx, claims, placeID, reviewID)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Check != nil {
		review.Check = *req.Check
	}
	review.IsEdited = true

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if err := s.refreshPlaceRating(ctx, placeID); err != nil {
		return nil, err
	}

	return review, nil
}

// Delete removes a review
func (s *reviewService) Delete(ctx context.Context, claims domain.TokenClaims, placeID, reviewID string) error {
	review, err := s.getGuardedReview(ctx, claims, placeID, reviewID)
	if err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, review.ID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return s.refreshPlaceRating(ctx, placeID)
}

// getGuardedReview runs the full mutation gate: the place must be moderated,
// the review must exist under that place, and the caller must own it or be
// a superadmin.
func (s *reviewService) getGuardedReview(ctx context.Context, claims domain.TokenClaims, placeID, reviewID string) (*domain.Review, error) {
	if _, err := getModeratedPlace(ctx, s.placeRepo, placeID); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if review.PlaceID != placeID {
		return nil, apperr.Newf(apperr.KindForbidden, "Review does not belong to this place")
	}

	if err := Authorize(claims.Role, claims.UserID, review.UserID); err != nil {
		return nil, err
	}

	return review, nil
}

// refreshPlaceRating recomputes the place's cached rating after any review
// mutation. The mean is rounded to one decimal; a place with no reviews
// reads 0.
func (s *reviewService) refreshPlaceRating(ctx context.Context, placeID string) error {
	rating, err := s.reviewRepo.AverageRating(ctx, placeID)
	if err != nil {
		return err
	}
	if err := s.placeRepo.SetRating(ctx, placeID, rating); err != nil {
		return fmt.Errorf("failed to update place rating: %w", err)
	}
	return nil
}
