package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/dto"
)

const testMaxEstablishments = 2

type placeFixture struct {
	places *memPlaceRepo
	media  *fakeMedia
	svc    PlaceService
}

func newPlaceFixture() *placeFixture {
	f := &placeFixture{
		places: newMemPlaceRepo(),
		media:  &fakeMedia{},
	}
	f.svc = NewPlaceService(f.places, f.media, testMaxEstablishments, zap.NewNop())
	return f
}

func adminClaims(userID string) domain.TokenClaims {
	return domain.TokenClaims{UserID: userID, Role: domain.RoleEstablishmentAdmin, Name: "Admin"}
}

func superClaims(userID string) domain.TokenClaims {
	return domain.TokenClaims{UserID: userID, Role: domain.RoleSuperadmin, Name: "Super"}
}

func (f *placeFixture) createPlace(t *testing.T, ownerID string, moderated bool) *domain.Place {
	t.Helper()
	place := &domain.Place{
		Name:        "Cafe Testov",
		Address:     "Lenina 1",
		Type:        domain.PlaceCafe,
		Tags:        []string{"coffee"},
		CreatedBy:   ownerID,
		IsModerated: moderated,
	}
	require.NoError(t, f.places.Create(context.Background(), place))
	return place
}

func TestPlaceService_Create(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()

	place, err := f.svc.Create(ctx, adminClaims("owner"), &dto.CreatePlaceRequest{
		Name:    "New Cafe",
		Address: "Mira 5",
		Type:    domain.PlaceCafe,
		Tags:    []string{"coffee", "breakfast"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, place.ID)
	assert.Equal(t, "owner", place.CreatedBy)
	assert.False(t, place.IsModerated, "new places start unmoderated")
}

func TestPlaceService_Create_EstablishmentCap(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()

	for i := 0; i < testMaxEstablishments; i++ {
		_, err := f.svc.Create(ctx, adminClaims("owner"), &dto.CreatePlaceRequest{
			Name: "Cafe", Address: "a", Type: domain.PlaceCafe,
		})
		require.NoError(t, err)
	}

	_, err := f.svc.Create(ctx, adminClaims("owner"), &dto.CreatePlaceRequest{
		Name: "One Too Many", Address: "a", Type: domain.PlaceCafe,
	})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	// The cap never applies to superadmins.
	for i := 0; i < testMaxEstablishments+1; i++ {
		_, err := f.svc.Create(ctx, superClaims("boss"), &dto.CreatePlaceRequest{
			Name: "Chain", Address: "a", Type: domain.PlaceCafe,
		})
		require.NoError(t, err)
	}
}

func TestPlaceService_Create_SoftDeletedPlacesFreeTheCap(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()

	var last *domain.Place
	for i := 0; i < testMaxEstablishments; i++ {
		place, err := f.svc.Create(ctx, adminClaims("owner"), &dto.CreatePlaceRequest{
			Name: "Cafe", Address: "a", Type: domain.PlaceCafe,
		})
		require.NoError(t, err)
		last = place
	}

	require.NoError(t, f.svc.Delete(ctx, adminClaims("owner"), last.ID))

	_, err := f.svc.Create(ctx, adminClaims("owner"), &dto.CreatePlaceRequest{
		Name: "Replacement", Address: "a", Type: domain.PlaceCafe,
	})
	assert.NoError(t, err)
}

func TestPlaceService_Update_Ownership(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	place := f.createPlace(t, "owner", true)

	newName := "Renamed"
	updated, err := f.svc.Update(ctx, adminClaims("owner"), place.ID, &dto.UpdatePlaceRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = f.svc.Update(ctx, adminClaims("intruder"), place.ID, &dto.UpdatePlaceRequest{Name: &newName})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	// A superadmin edits anyone's place.
	otherName := "Superadmin Was Here"
	updated, err = f.svc.Update(ctx, superClaims("boss"), place.ID, &dto.UpdatePlaceRequest{Name: &otherName})
	require.NoError(t, err)
	assert.Equal(t, "Superadmin Was Here", updated.Name)
}

func TestPlaceService_UpdatePhoto_DeletesOldMedia(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	place := f.createPlace(t, "owner", true)
	require.NoError(t, f.places.UpdatePhoto(ctx, place.ID, "https://cdn/old.jpg"))

	updated, err := f.svc.UpdatePhoto(ctx, adminClaims("owner"), place.ID, "https://cdn/new.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/new.jpg", updated.Photo)
	assert.Equal(t, []string{"https://cdn/old.jpg"}, f.media.deleted)
}

func TestPlaceService_Delete(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	place := f.createPlace(t, "owner", true)

	err := f.svc.Delete(ctx, adminClaims("intruder"), place.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, f.svc.Delete(ctx, adminClaims("owner"), place.ID))
	_, err = f.svc.GetByID(ctx, place.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPlaceService_Moderate(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	place := f.createPlace(t, "owner", false)

	moderated, err := f.svc.Moderate(ctx, place.ID, true)
	require.NoError(t, err)
	assert.True(t, moderated.IsModerated)

	rejected, err := f.svc.Moderate(ctx, place.ID, false)
	require.NoError(t, err)
	assert.False(t, rejected.IsModerated)

	_, err = f.svc.Moderate(ctx, "missing", true)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPlaceService_AddView_RequiresModeration(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	pending := f.createPlace(t, "owner", false)
	open := f.createPlace(t, "owner", true)

	err := f.svc.AddView(ctx, pending.ID, "viewer")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, f.svc.AddView(ctx, open.ID, "viewer"))
	require.NoError(t, f.svc.AddView(ctx, open.ID, "viewer"))
	assert.Len(t, f.places.views, 2)
}

func TestPlaceService_ViewsStats(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	place := f.createPlace(t, "owner", true)

	require.NoError(t, f.svc.AddView(ctx, place.ID, "v1"))
	require.NoError(t, f.svc.AddView(ctx, place.ID, "v2"))

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	stats, err := f.svc.ViewsStats(ctx, adminClaims("owner"), place.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Views)

	// Only the owner or a superadmin reads the stats.
	_, err = f.svc.ViewsStats(ctx, adminClaims("intruder"), place.ID, from, to)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.svc.ViewsStats(ctx, superClaims("boss"), place.ID, from, to)
	assert.NoError(t, err)

	// An empty window counts nothing.
	empty, err := f.svc.ViewsStats(ctx, adminClaims("owner"), place.ID, from, from)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Views)
}

func TestPlaceService_AllTags(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	f.createPlace(t, "owner", true)

	other := &domain.Place{Name: "Bar", Address: "a", Type: domain.PlaceBar, Tags: []string{"beer", "coffee"}, CreatedBy: "owner"}
	require.NoError(t, f.places.Create(ctx, other))

	tags, err := f.svc.AllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beer", "coffee"}, tags)
}
