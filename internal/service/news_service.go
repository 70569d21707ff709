package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/repository"
)

// newsService implements NewsService interface
type newsService struct {
	newsRepo  repository.NewsRepository
	placeRepo repository.PlaceRepository
	media     MediaStorage
	logger    *zap.Logger
}

// NewNewsService creates a new news service
func NewNewsService(
	newsRepo repository.NewsRepository,
	placeRepo repository.PlaceRepository,
	media MediaStorage,
	logger *zap.Logger,
) NewsService {
	return &newsService{
		newsRepo:  newsRepo,
		placeRepo: placeRepo,
		media:     media,
		logger:    logger,
	}
}

// Create posts news to a moderated place owned by the caller
func (s *newsService) Create(ctx context.Context, claims domain.TokenClaims, placeID string, req *dto.CreateNewsRequest) (*domain.News, error) {
	place, err := getModeratedPlace(ctx, s.placeRepo, placeID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(claims.Role, claims.UserID, place.CreatedBy); err != nil {
		return nil, err
	}

	news := &domain.News{
		PlaceID: placeID,
		Type:    req.Type,
		Title:   req.Title,
		Text:    req.Text,
	}

	if err := s.newsRepo.Create(ctx, news); err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}

	return news, nil
}

// GetByID returns a news post of a place
func (s *newsService) GetByID(ctx context.Context, placeID, newsID string) (*domain.News, error) {
	news, err := s.getNews(ctx, newsID)
	if err != nil {
		return nil, err
	}
	if news.PlaceID != placeID {
		return nil, apperr.Newf(apperr.KindForbidden, "News does not belong to this place")
	}
	return news, nil
}

// GetByPlace returns the news of a place, newest first
func (s *newsService) GetByPlace(ctx context.Context, placeID string) ([]*domain.News, error) {
	if _, err := getModeratedPlace(ctx, s.placeRepo, placeID); err != nil {
		return nil, err
	}

	items, err := s.newsRepo.GetByPlace(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	return items, nil
}

// Update edits a news post
func (s *newsService) Update(ctx context.Context, claims domain.TokenClaims, placeID, newsID string, req *dto.UpdateNewsRequest) (*domain.News, error) {
	news, err := s.getGuardedNews(ctx, claims, placeID, newsID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		news.Type = *req.Type
	}
	if req.Title != nil {
		news.Title = *req.Title
	}
	if req.Text != nil {
		news.Text = *req.Text
	}

	if err := s.newsRepo.Update(ctx, news); err != nil {
		return nil, fmt.Errorf("failed to update news: %w", err)
	}

	return news, nil
}

// UpdatePhoto replaces a news photo, deleting the previous stored object
func (s *newsService) UpdatePhoto(ctx context.Context, claims domain.TokenClaims, placeID, newsID, photo string) (*domain.News, error) {
	news, err := s.getGuardedNews(ctx, claims, placeID, newsID)
	if err != nil {
		return nil, err
	}

	if news.Photo != "" && news.Photo != photo {
		s.deleteMedia(ctx, news.Photo)
	}

	if err := s.newsRepo.UpdatePhoto(ctx, newsID, photo); err != nil {
		return nil, fmt.Errorf("failed to update news photo: %w", err)
	}

	news.Photo = photo
	return news, nil
}

// Delete removes a news post and its stored photo
func (s *newsService) Delete(ctx context.Context, claims domain.TokenClaims, placeID, newsID string) error {
	news, err := s.getGuardedNews(ctx, claims, placeID, newsID)
	if err != nil {
		return err
	}

	if err := s.newsRepo.Delete(ctx, news.ID); err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}

	s.deleteMedia(ctx, news.Photo)
	return nil
}

// getGuardedNews runs the full mutation gate: the place must be moderated,
// the news must exist under that place, and the caller must own the place
// or be a superadmin.
func (s *newsService) getGuardedNews(ctx context.Context, claims domain.TokenClaims, placeID, newsID string) (*domain.News, error) {
	place, err := getModeratedPlace(ctx, s.placeRepo, placeID)
	if err != nil {
		return nil, err
	}

	news, err := s.getNews(ctx, newsID)
	if err != nil {
		return nil, err
	}

	if news.PlaceID != placeID {
		return nil, apperr.Newf(apperr.KindForbidden, "News does not belong to this place")
	}

	if err := Authorize(claims.Role, claims.UserID, place.CreatedBy); err != nil {
		return nil, err
	}

	return news, nil
}

func (s *newsService) getNews(ctx context.Context, newsID string) (*domain.News, error) {
	news, err := s.newsRepo.GetByID(ctx, newsID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound)
		}
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	return news, nil
}

func (s *newsService) deleteMedia(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.media.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete stored photo", zap.String("url", url), zap.Error(err))
	}
}
