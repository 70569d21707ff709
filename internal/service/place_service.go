package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/repository"
)

// placeService implements PlaceService interface
type placeService struct {
	placeRepo              repository.PlaceRepository
	media                  MediaStorage
	maxAdminEstablishments int
	logger                 *zap.Logger
}

// NewPlaceService creates a new place service
func NewPlaceService(
	placeRepo repository.PlaceRepository,
	media MediaStorage,
	maxAdminEstablishments int,
	logger *zap.Logger,
) PlaceService {
	return &placeService{
		placeRepo:              placeRepo,
		media:                  media,
		maxAdminEstablishments: maxAdminEstablishments,
		logger:                 logger,
	}
}

// List returns a filtered page of places
func (s *placeService) List(ctx context.Context, query repository.PlaceListQuery) (*dto.ListResponse[*domain.Place], error) {
	places, total, err := s.placeRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}

	return &dto.ListResponse[*domain.Place]{
		Items: places,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

// GetByID returns a place by id
func (s *placeService) GetByID(ctx context.Context, placeID string) (*domain.Place, error) {
	return s.getPlace(ctx, placeID)
}

// Create registers a new establishment owned by the caller. New places start
// unmoderated. An establishment admin may hold a limited number of places;
// superadmins are not capped.
func (s *placeService) Create(ctx context.Context, claims domain.TokenClaims, req *dto.CreatePlaceRequest) (*domain.Place, error) {
	if claims.Role != domain.RoleSuperadmin {
		count, err := s.placeRepo.CountByCreator(ctx, claims.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to count establishments: %w", err)
		}
		if count >= s.maxAdminEstablishments {
			return nil, apperr.Newf(apperr.KindForbidden,
				"establishment limit of %d reached", s.maxAdminEstablishments)
		}
	}

	place := &domain.Place{
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Longitude:    req.Longitude,
		Latitude:     req.Latitude,
		Tags:         req.Tags,
		Type:         req.Type,
		AverageCheck: req.AverageCheck,
		Contacts:     req.Contacts,
		CreatedBy:    claims.UserID,
	}

	if err := s.placeRepo.Create(ctx, place); err != nil {
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	return place, nil
}

// Update edits an establishment owned by the caller
func (s *placeService) Update(ctx context.Context, claims domain.TokenClaims, placeID string, req *dto.UpdatePlaceRequest) (*domain.Place, error) {
	place, err := s.getPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(claims.Role, claims.UserID, place.CreatedBy); err != nil {
		return nil, err
	}

	if req.Name != nil {
		place.Name = *req.Name
	}
	if req.Description != nil {
		place.Description = *req.Description
	}
	if req.Address != nil {
		place.Address = *req.Address
	}
	if req.Longitude != nil {
		place.Longitude = *req.Longitude
	}
	if req.Latitude != nil {
		place.Latitude = *req.Latitude
	}
	if req.Tags != nil {
		place.Tags = req.Tags
	}
	if req.Type != nil {
		place.Type = *req.Type
	}
	if req.AverageCheck != nil {
		place.AverageCheck = *req.AverageCheck
	}
	if req.Contacts != nil {
		place.Contacts = *req.Contacts
	}

	if err := s.placeRepo.Update(ctx, place); err != nil {
		return nil, fmt.Errorf("failed to update place: %w", err)
	}

	return place, nil
}

// UpdatePhoto replaces a place's photo, deleting the previous stored object
func (s *placeService) UpdatePhoto(ctx context.Context, claims domain.TokenClaims, placeID, photo string) (*domain.Place, error) {
	place, err := s.getPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(claims.Role, claims.UserID, place.CreatedBy); err != nil {
		return nil, err
	}

	if place.Photo != "" && place.Photo != photo {
		s.deleteMedia(ctx, place.Photo)
	}

	if err := s.placeRepo.UpdatePhoto(ctx, placeID, photo); err != nil {
		return nil, fmt.Errorf("failed to update place photo: %w", err)
	}

	place.Photo = photo
	return place, nil
}

// Delete soft-deletes an establishment owned by the caller
func (s *placeService) Delete(ctx context.Context, claims domain.TokenClaims, placeID string) error {
	place, err := s.getPlace(ctx, placeID)
	if err != nil {
		return err
	}
	if err := Authorize(claims.Role, claims.UserID, place.CreatedBy); err != nil {
		return err
	}

	if err := s.placeRepo.SoftDelete(ctx, placeID); err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}

	s.deleteMedia(ctx, place.Photo)
	return nil
}

// Moderate approves or rejects a place listing
func (s *placeService) Moderate(ctx context.Context, placeID string, moderated bool) (*domain.Place, error) {
	place, err := s.getPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}

	if err := s.placeRepo.SetModerated(ctx, placeID, moderated); err != nil {
		return nil, fmt.Errorf("failed to moderate place: %w", err)
	}

	place.IsModerated = moderated
	return place, nil
}

// AllTags returns every distinct tag in the catalog
func (s *placeService) AllTags(ctx context.Context) ([]string, error) {
	tags, err := s.placeRepo.AllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// AddView records a user viewing a moderated place
func (s *placeService) AddView(ctx context.Context, placeID, userID string) error {
	if _, err := getModeratedPlace(ctx, s.placeRepo, placeID); err != nil {
		return err
	}

	err := s.placeRepo.AddView(ctx, &domain.PlaceView{
		PlaceID:  placeID,
		UserID:   userID,
		ViewedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

// ViewsStats counts the views of a place in the half-open window [from, to).
// Only the place's owner or a superadmin may read it.
func (s *placeService) ViewsStats(ctx context.Context, claims domain.TokenClaims, placeID string, from, to time.Time) (*dto.ViewsStatsResponse, error) {
	place, err := s.getPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(claims.Role, claims.UserID, place.CreatedBy); err != nil {
		return nil, err
	}

	views, err := s.placeRepo.CountViews(ctx, placeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count views: %w", err)
	}

	return &dto.ViewsStatsResponse{
		PlaceID: placeID,
		From:    from,
		To:      to,
		Views:   views,
	}, nil
}

func (s *placeService) getPlace(ctx context.Context, placeID string) (*domain.Place, error) {
	place, err := s.placeRepo.GetByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound)
		}
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	return place, nil
}

func (s *placeService) deleteMedia(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.media.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete stored photo", zap.String("url", url), zap.Error(err))
	}
}
