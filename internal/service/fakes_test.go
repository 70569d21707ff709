package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/repository"
)

// In-memory repository fakes. They mirror the semantics the SQL
// implementations rely on: sentinel errors, soft-delete behavior and the
// replace-on-issue rule for action tokens.

type memUserRepo struct {
	users     map[string]*domain.User
	favorites map[string][]string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users:     make(map[string]*domain.User),
		favorites: make(map[string][]string),
	}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) List(_ context.Context, query repository.UserListQuery) ([]*domain.User, int, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.IsDeleted {
			continue
		}
		if query.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(query.Name)) {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *memUserRepo) SetVerified(_ context.Context, userID string) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	return nil
}

func (r *memUserRepo) SetRole(_ context.Context, userID string, role domain.Role) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *memUserRepo) SoftDelete(_ context.Context, userID string) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.IsDeleted = true
	u.DeletedAt = &now
	u.Role = domain.RoleUser
	u.Photo = ""
	u.IsVerified = false
	return nil
}

func (r *memUserRepo) Restore(_ context.Context, userID, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsDeleted = false
	u.DeletedAt = nil
	u.PasswordHash = passwordHash
	return nil
}

func (r *memUserRepo) AddFavorite(_ context.Context, userID, placeID string) error {
	for _, id := range r.favorites[userID] {
		if id == placeID {
			return nil
		}
	}
	r.favorites[userID] = append(r.favorites[userID], placeID)
	return nil
}

func (r *memUserRepo) RemoveFavorite(_ context.Context, userID, placeID string) error {
	ids := r.favorites[userID]
	for i, id := range ids {
		if id == placeID {
			r.favorites[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memUserRepo) IsFavorite(_ context.Context, userID, placeID string) (bool, error) {
	for _, id := range r.favorites[userID] {
		if id == placeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) FavoriteIDs(_ context.Context, userID string) ([]string, error) {
	return append([]string(nil), r.favorites[userID]...), nil
}

type memSessionRepo struct {
	sessions map[string]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session *domain.Session) error {
	for _, s := range r.sessions {
		if s.AccessToken == session.AccessToken || s.RefreshToken == session.RefreshToken {
			return repository.ErrDuplicateToken
		}
	}
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memSessionRepo) GetByAccessToken(_ context.Context, accessToken string) (*domain.Session, error) {
	for _, s := range r.sessions {
		if s.AccessToken == accessToken {
			clone := *s
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) GetByRefreshToken(_ context.Context, refreshToken string) (*domain.Session, error) {
	for _, s := range r.sessions {
		if s.RefreshToken == refreshToken {
			clone := *s
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) DeleteByAccessToken(_ context.Context, accessToken string) error {
	for id, s := range r.sessions {
		if s.AccessToken == accessToken {
			delete(r.sessions, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memSessionRepo) DeleteByRefreshToken(_ context.Context, refreshToken string) error {
	for id, s := range r.sessions {
		if s.RefreshToken == refreshToken {
			delete(r.sessions, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memSessionRepo) DeleteAllByUser(_ context.Context, userID string) error {
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, s := range r.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) countByUser(userID string) int {
	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

type memActionTokenRepo struct {
	tokens map[string]*domain.ActionToken
}

func newMemActionTokenRepo() *memActionTokenRepo {
	return &memActionTokenRepo{tokens: make(map[string]*domain.ActionToken)}
}

func (r *memActionTokenRepo) Replace(_ context.Context, token *domain.ActionToken) error {
	for id, t := range r.tokens {
		if t.UserID == token.UserID && t.Type == token.Type {
			delete(r.tokens, id)
		}
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.ID] = &clone
	return nil
}

func (r *memActionTokenRepo) GetByToken(_ context.Context, token string) (*domain.ActionToken, error) {
	for _, t := range r.tokens {
		if t.Token == token {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memActionTokenRepo) DeleteByToken(_ context.Context, token string) error {
	for id, t := range r.tokens {
		if t.Token == token {
			delete(r.tokens, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memActionTokenRepo) DeleteAllByUser(_ context.Context, userID string, types ...domain.TokenType) error {
	for id, t := range r.tokens {
		if t.UserID != userID {
			continue
		}
		if len(types) == 0 {
			delete(r.tokens, id)
			continue
		}
		for _, typ := range types {
			if t.Type == typ {
				delete(r.tokens, id)
				break
			}
		}
	}
	return nil
}

func (r *memActionTokenRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, t := range r.tokens {
		if t.CreatedAt.Before(cutoff) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *memActionTokenRepo) countByUser(userID string, tokenType domain.TokenType) int {
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID && t.Type == tokenType {
			n++
		}
	}
	return n
}

type memOldPasswordRepo struct {
	passwords []*domain.OldPassword
}

func newMemOldPasswordRepo() *memOldPasswordRepo {
	return &memOldPasswordRepo{}
}

func (r *memOldPasswordRepo) Create(_ context.Context, old *domain.OldPassword) error {
	if old.ID == "" {
		old.ID = uuid.New().String()
	}
	old.CreatedAt = time.Now()
	clone := *old
	r.passwords = append(r.passwords, &clone)
	return nil
}

func (r *memOldPasswordRepo) GetByUser(_ context.Context, userID string) ([]*domain.OldPassword, error) {
	var out []*domain.OldPassword
	for _, p := range r.passwords {
		if p.UserID == userID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memOldPasswordRepo) DeleteAllByUser(_ context.Context, userID string) error {
	kept := r.passwords[:0]
	for _, p := range r.passwords {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	r.passwords = kept
	return nil
}

func (r *memOldPasswordRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	kept := r.passwords[:0]
	for _, p := range r.passwords {
		if p.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, p)
	}
	r.passwords = kept
	return n, nil
}

type memPlaceRepo struct {
	places map[string]*domain.Place
	views  []*domain.PlaceView
}

func newMemPlaceRepo() *memPlaceRepo {
	return &memPlaceRepo{places: make(map[string]*domain.Place)}
}

func (r *memPlaceRepo) Create(_ context.Context, place *domain.Place) error {
	if place.ID == "" {
		place.ID = uuid.New().String()
	}
	place.CreatedAt = time.Now()
	place.UpdatedAt = place.CreatedAt
	clone := *place
	r.places[place.ID] = &clone
	return nil
}

func (r *memPlaceRepo) GetByID(_ context.Context, id string) (*domain.Place, error) {
	p, ok := r.places[id]
	if !ok || p.IsDeleted {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *memPlaceRepo) List(_ context.Context, query repository.PlaceListQuery) ([]*domain.Place, int, error) {
	var out []*domain.Place
	for _, p := range r.places {
		if p.IsDeleted {
			continue
		}
		if query.CreatedBy != "" && p.CreatedBy != query.CreatedBy {
			continue
		}
		if query.Type != "" && p.Type != query.Type {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *memPlaceRepo) Update(_ context.Context, place *domain.Place) error {
	p, ok := r.places[place.ID]
	if !ok || p.IsDeleted {
		return repository.ErrNotFound
	}
	clone := *place
	r.places[place.ID] = &clone
	return nil
}

func (r *memPlaceRepo) UpdatePhoto(_ context.Context, id, photo string) error {
	p, ok := r.places[id]
	if !ok || p.IsDeleted {
		return repository.ErrNotFound
	}
	p.Photo = photo
	return nil
}

func (r *memPlaceRepo) SetModerated(_ context.Context, id string, moderated bool) error {
	p, ok := r.places[id]
	if !ok || p.IsDeleted {
		return repository.ErrNotFound
	}
	p.IsModerated = moderated
	return nil
}

func (r *memPlaceRepo) SetRating(_ context.Context, id string, rating float64) error {
	p, ok := r.places[id]
	if !ok || p.IsDeleted {
		return repository.ErrNotFound
	}
	p.Rating = rating
	return nil
}

func (r *memPlaceRepo) SetCreatedBy(_ context.Context, id, userID string) error {
	p, ok := r.places[id]
	if !ok || p.IsDeleted {
		return repository.ErrNotFound
	}
	p.CreatedBy = userID
	return nil
}

func (r *memPlaceRepo) SoftDelete(_ context.Context, id string) error {
	p, ok := r.places[id]
	if !ok || p.IsDeleted {
		return repository.ErrNotFound
	}
	p.IsDeleted = true
	return nil
}

func (r *memPlaceRepo) CountByCreator(_ context.Context, userID string) (int, error) {
	n := 0
	for _, p := range r.places {
		if !p.IsDeleted && p.CreatedBy == userID {
			n++
		}
	}
	return n, nil
}

func (r *memPlaceRepo) AllTags(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, p := range r.places {
		if p.IsDeleted {
			continue
		}
		for _, tag := range p.Tags {
			seen[tag] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

func (r *memPlaceRepo) AddView(_ context.Context, view *domain.PlaceView) error {
	if view.ID == "" {
		view.ID = uuid.New().String()
	}
	clone := *view
	r.views = append(r.views, &clone)
	return nil
}

func (r *memPlaceRepo) CountViews(_ context.Context, placeID string, from, to time.Time) (int, error) {
	n := 0
	for _, v := range r.views {
		if v.PlaceID == placeID && !v.ViewedAt.Before(from) && v.ViewedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

type memReviewRepo struct {
	reviews map[string]*domain.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: make(map[string]*domain.Review)}
}

func (r *memReviewRepo) Create(_ context.Context, review *domain.Review) error {
	for _, rv := range r.reviews {
		if rv.PlaceID == review.PlaceID && rv.UserID == review.UserID {
			return repository.ErrDuplicateReview
		}
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	clone := *review
	r.reviews[review.ID] = &clone
	return nil
}

func (r *memReviewRepo) GetByID(_ context.Context, id string) (*domain.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *rv
	return &clone, nil
}

func (r *memReviewRepo) GetByPlace(_ context.Context, placeID string) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, rv := range r.reviews {
		if rv.PlaceID == placeID {
			clone := *rv
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memReviewRepo) Update(_ context.Context, review *domain.Review) error {
	if _, ok := r.reviews[review.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *review
	r.reviews[review.ID] = &clone
	return nil
}

func (r *memReviewRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *memReviewRepo) AverageRating(_ context.Context, placeID string) (float64, error) {
	sum, n := 0, 0
	for _, rv := range r.reviews {
		if rv.PlaceID == placeID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	// ROUND(AVG(rating), 1), same as the SQL implementation.
	avg := float64(sum) / float64(n)
	return float64(int(avg*10+0.5)) / 10, nil
}

type memNewsRepo struct {
	news map[string]*domain.News
}

func newMemNewsRepo() *memNewsRepo {
	return &memNewsRepo{news: make(map[string]*domain.News)}
}

func (r *memNewsRepo) Create(_ context.Context, news *domain.News) error {
	if news.ID == "" {
		news.ID = uuid.New().String()
	}
	news.CreatedAt = time.Now()
	news.UpdatedAt = news.CreatedAt
	clone := *news
	r.news[news.ID] = &clone
	return nil
}

func (r *memNewsRepo) GetByID(_ context.Context, id string) (*domain.News, error) {
	n, ok := r.news[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (r *memNewsRepo) GetByPlace(_ context.Context, placeID string) ([]*domain.News, error) {
	var out []*domain.News
	for _, n := range r.news {
		if n.PlaceID == placeID {
			clone := *n
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memNewsRepo) Update(_ context.Context, news *domain.News) error {
	if _, ok := r.news[news.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *news
	r.news[news.ID] = &clone
	return nil
}

func (r *memNewsRepo) UpdatePhoto(_ context.Context, id, photo string) error {
	n, ok := r.news[id]
	if !ok {
		return repository.ErrNotFound
	}
	n.Photo = photo
	return nil
}

func (r *memNewsRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.news[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.news, id)
	return nil
}

// fakeNotifier records sent emails and can be told to fail
type fakeNotifier struct {
	welcomes  []string
	verifies  []string
	forgots   []string
	restores  []string
	logouts   []string
	lastToken string
	fail      error
}

func (n *fakeNotifier) SendWelcome(_ context.Context, to, _, actionToken string) error {
	if n.fail != nil {
		return n.fail
	}
	n.welcomes = append(n.welcomes, to)
	n.lastToken = actionToken
	return nil
}

func (n *fakeNotifier) SendVerifyEmail(_ context.Context, to, _, actionToken string) error {
	if n.fail != nil {
		return n.fail
	}
	n.verifies = append(n.verifies, to)
	n.lastToken = actionToken
	return nil
}

func (n *fakeNotifier) SendForgotPassword(_ context.Context, to, actionToken string) error {
	if n.fail != nil {
		return n.fail
	}
	n.forgots = append(n.forgots, to)
	n.lastToken = actionToken
	return nil
}

func (n *fakeNotifier) SendAccountRestore(_ context.Context, to, actionToken string) error {
	if n.fail != nil {
		return n.fail
	}
	n.restores = append(n.restores, to)
	n.lastToken = actionToken
	return nil
}

func (n *fakeNotifier) SendLogout(_ context.Context, to, _ string) error {
	if n.fail != nil {
		return n.fail
	}
	n.logouts = append(n.logouts, to)
	return nil
}

// fakeMedia records deleted asset URLs
type fakeMedia struct {
	deleted  []string
	prefixes []string
}

func (m *fakeMedia) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *fakeMedia) DeleteByPrefix(_ context.Context, prefix string) error {
	m.prefixes = append(m.prefixes, prefix)
	return nil
}
