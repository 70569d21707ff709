package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/repository"
)

// Authorize allows a superadmin to act on any resource; everyone else must
// own it. Role grants broaden access, they never narrow it.
func Authorize(role domain.Role, callerID, ownerID string) error {
	if role == domain.RoleSuperadmin {
		return nil
	}
	if callerID != ownerID {
		return apperr.New(apperr.KindForbidden)
	}
	return nil
}

// getModeratedPlace loads a place and enforces the moderation gate: a
// missing or soft-deleted place is a 404, an unmoderated one is a 403.
// There is no superadmin bypass here; an unmoderated place hosts nothing.
func getModeratedPlace(ctx context.Context, places repository.PlaceRepository, placeID string) (*domain.Place, error) {
	place, err := places.GetByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound)
		}
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	if !place.IsModerated {
		return nil, apperr.Newf(apperr.KindForbidden, "Place is not moderated")
	}
	return place, nil
}
