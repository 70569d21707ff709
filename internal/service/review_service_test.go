package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/dto"
)

type reviewFixture struct {
	reviews *memReviewRepo
	places  *memPlaceRepo
	svc     ReviewService
}

func newReviewFixture(t *testing.T) (*reviewFixture, *domain.Place) {
	t.Helper()
	f := &reviewFixture{
		reviews: newMemReviewRepo(),
		places:  newMemPlaceRepo(),
	}
	f.svc = NewReviewService(f.reviews, f.places)

	place := &domain.Place{
		Name:        "Reviewed Cafe",
		Address:     "Lenina 1",
		Type:        domain.PlaceCafe,
		CreatedBy:   "owner",
		IsModerated: true,
	}
	require.NoError(t, f.places.Create(context.Background(), place))
	return f, place
}

func userClaims(userID string) domain.TokenClaims {
	return domain.TokenClaims{UserID: userID, Role: domain.RoleUser, Name: "User"}
}

func TestReviewService_Create(t *testing.T) {
	f, place := newReviewFixture(t)
	ctx := context.Background()

	review, err := f.svc.Create(ctx, userClaims("u1"), place.ID, &dto.CreateReviewRequest{
		Rating: 4,
		Text:   "Good coffee",
		Check:  12.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", review.UserID)
	assert.False(t, review.IsEdited)

	// The place's cached rating follows the review.
	updated, err := f.places.GetByID(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.Rating)
}

func TestReviewService_Create_OnePerUserPerPlace(t *testing.T) {
	f, place := newReviewFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, userClaims("u1"), place.ID, &dto.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, userClaims("u1"), place.ID, &dto.CreateReviewRequest{Rating: 5})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// A different user still may review.
	_, err = f.svc.Create(ctx, userClaims("u2"), place.ID, &dto.CreateReviewRequest{Rating: 5})
	assert.NoError(t, err)
}

func TestReviewService_Create_UnmoderatedPlace(t *testing.T) {
	f, _ := newReviewFixture(t)
	ctx := context.Background()

	pending := &domain.Place{Name: "Pending", Address: "a", Type: domain.PlaceBar, CreatedBy: "owner"}
	require.NoError(t, f.places.Create(ctx, pending))

	_, err := f.svc.Create(ctx, userClaims("u1"), pending.ID, &dto.CreateReviewRequest{Rating: 3})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Create(ctx, userClaims("u1"), "missing", &dto.CreateReviewRequest{Rating: 3})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestReviewService_RatingIsRoundedMean(t *testing.T) {
	f, place := newReviewFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, userClaims("u1"), place.ID, &dto.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, userClaims("u2"), place.ID, &dto.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, userClaims("u3"), place.ID, &dto.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	// (5+4+4)/3 = 4.333... -> 4.3
	updated, err := f.places.GetByID(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.3, updated.Rating)
}

func TestReviewService_Update(t *testing.T) {
	f, place := newReviewFixture(t)
	ctx := context.Background()

	review, err := f.svc.Create(ctx, userClaims("u1"), place.ID, &dto.CreateReviewRequest{Rating: 2, Text: "meh"})
	require.NoError(t, err)

	newRating := 5
	newText := "actually great"
	updated, err := f.svc.Update(ctx, userClaims("u1"), place.ID, review.ID, &dto.UpdateReviewRequest{
		Rating: &newRating,
		Text:   &newText,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "actually great", updated.Text)
	assert.True(t, updated.IsEdited)

	refreshed, err := f.places.GetByID(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, refreshed.Rating)
}

func TestReviewService_Update_OnlyOwnerOrSuperadmin(t *testing.T) {
	f, place := newReviewFixture(t)
	ctx := context.Background()

	review, err := f.svc.Create(ctx, userClaims("u1"), place.ID, &dto.CreateReviewRequest{Rating: 3})
	require.NoError(t, err)

	newRating := 1
	_, err = f.svc.Update(ctx, userClaims("u2"), place.ID, review.ID, &dto.UpdateReviewRequest{Rating: &newRating})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Update(ctx, superClaims("boss"), place.ID, review.ID, &dto.UpdateReviewRequest{Rating: &newRating})
	assert.NoError(t, err)
}

func TestReviewService_Update_WrongPlace(t *testing.T) {
	f, place := newReviewFixture(t)
	ctx := context.Background()

	other := &domain.Place{Name: "Other", Address: "a", Type: domain.PlaceBar, CreatedBy: "owner", IsModerated: true}
	require.NoError(t, f.places.Create(ctx, other))

	review, err := f.svc.Create(ctx, userClaims("u1"), place.ID, &dto.CreateReviewRequest{Rating: 3})
	require.NoError(t, err)

	newRating := 5
	_, err = f.svc.Update(ctx, userClaims("u1"), other.ID, review.ID, &dto.UpdateReviewRequest{Rating: &newRating})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestReviewService_Delete(t *testing.T) {
	f, place := newReviewFixture(t)
	ctx := context.Background()

	review, err := f.svc.Create(ctx, userClaims("u1"), place.ID, &dto.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, userClaims("u2"), place.ID, review.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, f.svc.Delete(ctx, userClaims("u1"), place.ID, review.ID))

	// With no reviews left the rating drops back to zero.
	updated, err := f.places.GetByID(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Rating)

	reviews, err := f.svc.GetByPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
