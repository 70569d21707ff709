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

// userService implements UserService interface
type userService struct {
	userRepo        repository.UserRepository
	placeRepo       repository.PlaceRepository
	sessionRepo     repository.SessionRepository
	actionTokenRepo repository.ActionTokenRepository
	media           MediaStorage
	logger          *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repository.UserRepository,
	placeRepo repository.PlaceRepository,
	sessionRepo repository.SessionRepository,
	actionTokenRepo repository.ActionTokenRepository,
	media MediaStorage,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo:        userRepo,
		placeRepo:       placeRepo,
		sessionRepo:     sessionRepo,
		actionTokenRepo: actionTokenRepo,
		media:           media,
		logger:          logger,
	}
}

// GetMe returns the authenticated user's profile
func (s *userService) GetMe(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// UpdateMe updates the caller's mutable profile fields
func (s *userService) UpdateMe(ctx context.Context, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.getActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Photo != nil && *req.Photo != user.Photo {
		s.deleteMedia(ctx, user.Photo)
		user.Photo = *req.Photo
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return dto.NewUserResponse(user), nil
}

// DeleteMe soft-deletes the caller's account, revokes every session and
// outstanding action token, and removes their uploaded photos
func (s *userService) DeleteMe(ctx context.Context, userID string) error {
	user, err := s.getActiveUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.deactivate(ctx, user)
}

// GetByID returns a user's profile by id
func (s *userService) GetByID(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// List returns a filtered page of users
func (s *userService) List(ctx context.Context, query repository.UserListQuery) (*dto.ListResponse[*dto.UserResponse], error) {
	users, total, err := s.userRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &dto.ListResponse[*dto.UserResponse]{
		Items: dto.NewUserResponseList(users),
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

// UpdatePhoto replaces the user's photo, deleting the previous stored object
func (s *userService) UpdatePhoto(ctx context.Context, userID, photo string) (*dto.UserResponse, error) {
	return s.UpdateMe(ctx, userID, &dto.UpdateUserRequest{Photo: &photo})
}

// AddFavorite adds a place to the user's favorites. Adding an already
// favorited place is a no-op.
func (s *userService) AddFavorite(ctx context.Context, userID, placeID string) error {
	if _, err := getModeratedPlace(ctx, s.placeRepo, placeID); err != nil {
		return err
	}

	if err := s.userRepo.AddFavorite(ctx, userID, placeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound)
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite removes a place from the user's favorites
func (s *userService) RemoveFavorite(ctx context.Context, userID, placeID string) error {
	if err := s.userRepo.RemoveFavorite(ctx, userID, placeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound)
		}
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// IsFavorite reports whether the place is in the caller's favorites
func (s *userService) IsFavorite(ctx context.Context, userID, placeID string) (bool, error) {
	favorite, err := s.userRepo.IsFavorite(ctx, userID, placeID)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return favorite, nil
}

// Favorites returns the user's favorited places. Places deleted since being
// favorited are skipped.
func (s *userService) Favorites(ctx context.Context, userID string) ([]*domain.Place, error) {
	ids, err := s.userRepo.FavoriteIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	places := make([]*domain.Place, 0, len(ids))
	for _, id := range ids {
		place, err := s.placeRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get place: %w", err)
		}
		places = append(places, place)
	}
	return places, nil
}

// Establishments returns the places administered by the user, newest first
func (s *userService) Establishments(ctx context.Context, userID string) ([]*domain.Place, error) {
	places, _, err := s.placeRepo.List(ctx, repository.PlaceListQuery{
		CreatedBy: userID,
		Page:      1,
		Limit:     100,
		OrderBy:   "created_at",
		Desc:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list establishments: %w", err)
	}
	return places, nil
}

// DeleteUser soft-deletes any user's account
func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.getActiveUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.deactivate(ctx, user)
}

// ChangeRole assigns a new role to a user
func (s *userService) ChangeRole(ctx context.Context, userID string, role domain.Role) (*dto.UserResponse, error) {
	if !role.Valid() {
		return nil, apperr.Newf(apperr.KindValidation, "unknown role %q", role)
	}

	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound)
		}
		return nil, fmt.Errorf("failed to change role: %w", err)
	}

	return s.GetByID(ctx, userID)
}

// ReassignEstablishment transfers ownership of a place to another user
func (s *userService) ReassignEstablishment(ctx context.Context, placeID, newOwnerID string) error {
	if _, err := s.getActiveUser(ctx, newOwnerID); err != nil {
		return err
	}

	if err := s.placeRepo.SetCreatedBy(ctx, placeID, newOwnerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound)
		}
		return fmt.Errorf("failed to reassign establishment: %w", err)
	}
	return nil
}

// deactivate is the shared soft-delete protocol: the row keeps its email
// but loses its role, photo and verified status; every session and action
// token is revoked so the account goes quiet immediately.
func (s *userService) deactivate(ctx context.Context, user *domain.User) error {
	if err := s.userRepo.SoftDelete(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to soft-delete user: %w", err)
	}

	if err := s.sessionRepo.DeleteAllByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	if err := s.actionTokenRepo.DeleteAllByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke action tokens: %w", err)
	}

	s.deleteMedia(ctx, user.Photo)

	// Sweep the user's upload folder too; the profile photo is not the only
	// object a client may have put there.
	if err := s.media.DeleteByPrefix(ctx, "users/"+user.ID); err != nil {
		s.logger.Warn("failed to delete stored folder",
			zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// getActiveUser loads a user and treats soft-deleted accounts as absent
func (s *userService) getActiveUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsDeleted {
		return nil, apperr.New(apperr.KindNotFound)
	}
	return user, nil
}

// deleteMedia is best-effort: a stale object in storage is preferable to a
// failed profile mutation
func (s *userService) deleteMedia(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.media.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete stored photo", zap.String("url", url), zap.Error(err))
	}
}
