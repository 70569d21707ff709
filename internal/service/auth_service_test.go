package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/repository"
	"github.com/placium/places-api/internal/utils"
)

type authFixture struct {
	users        *memUserRepo
	sessions     *memSessionRepo
	actionTokens *memActionTokenRepo
	oldPasswords *memOldPasswordRepo
	notifier     *fakeNotifier
	tokenManager *utils.TokenManager
	svc          AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:        newMemUserRepo(),
		sessions:     newMemSessionRepo(),
		actionTokens: newMemActionTokenRepo(),
		oldPasswords: newMemOldPasswordRepo(),
		notifier:     &fakeNotifier{},
		tokenManager: utils.NewTokenManager(map[domain.TokenType]utils.TokenSettings{
			domain.TokenAccess:         {Secret: "access-secret-that-is-long-enough-000", Expiry: 15 * time.Minute},
			domain.TokenRefresh:        {Secret: "refresh-secret-that-is-long-enough-00", Expiry: 7 * 24 * time.Hour},
			domain.TokenVerifyEmail:    {Secret: "verify-secret-that-is-long-enough-000", Expiry: 24 * time.Hour},
			domain.TokenForgotPassword: {Secret: "forgot-secret-that-is-long-enough-000", Expiry: 30 * time.Minute},
			domain.TokenAccountRestore: {Secret: "restore-secret-that-is-long-enough-00", Expiry: 24 * time.Hour},
		}),
	}
	f.svc = NewAuthService(
		f.users,
		f.sessions,
		f.actionTokens,
		f.oldPasswords,
		f.tokenManager,
		f.notifier,
		bcrypt.MinCost,
		zap.NewNop(),
	)
	return f
}

func (f *authFixture) signUp(t *testing.T, email, password string) *domain.User {
	t.Helper()
	resp, err := f.svc.SignUp(context.Background(), &dto.SignUpRequest{
		Email:    email,
		Password: password,
		Name:     "Test User",
	})
	require.NoError(t, err)

	user, err := f.users.GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	return user
}

func (f *authFixture) claims(user *domain.User) domain.TokenClaims {
	return domain.TokenClaims{UserID: user.ID, Role: user.Role, Name: user.Name}
}

func TestAuthService_SignUp(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	resp, err := f.svc.SignUp(ctx, &dto.SignUpRequest{
		Email:    "  New@Example.COM ",
		Password: "Password123",
		Name:     "New User",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	assert.False(t, resp.User.IsVerified)
	require.NotNil(t, resp.Tokens)

	// A session is open right away.
	assert.Equal(t, 1, f.sessions.countByUser(resp.User.ID))
	_, err = f.sessions.GetByAccessToken(ctx, resp.Tokens.AccessToken)
	assert.NoError(t, err)

	// A verification token was stored and mailed out.
	assert.Equal(t, 1, f.actionTokens.countByUser(resp.User.ID, domain.TokenVerifyEmail))
	assert.Equal(t, []string{"new@example.com"}, f.notifier.welcomes)
	_, err = f.tokenManager.Verify(f.notifier.lastToken, domain.TokenVerifyEmail)
	assert.NoError(t, err)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	f.signUp(t, "dup@example.com", "Password123")

	_, err := f.svc.SignUp(context.Background(), &dto.SignUpRequest{
		Email:    "dup@example.com",
		Password: "Password456",
		Name:     "Other",
	})
	assert.True(t, apperr.Is(err, apperr.KindEmailInUse))
}

func TestAuthService_SignUp_MailFailureFailsRequest(t *testing.T) {
	f := newAuthFixture()
	f.notifier.fail = errors.New("smtp down")

	_, err := f.svc.SignUp(context.Background(), &dto.SignUpRequest{
		Email:    "mail@example.com",
		Password: "Password123",
		Name:     "Mail User",
	})
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestAuthService_SignUp_WeakPasswordRejected(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	// Length alone is not enough: the policy wants an upper-case letter
	// and a digit too.
	_, err := f.svc.SignUp(ctx, &dto.SignUpRequest{
		Email:    "weak@example.com",
		Password: "aaaaaaaa",
		Name:     "Weak",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	// Nothing was created and nothing was mailed.
	_, err = f.users.GetByEmail(ctx, "weak@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, f.notifier.welcomes)

	_, err = f.svc.SignUp(ctx, &dto.SignUpRequest{
		Email:    "weak@example.com",
		Password: "Aa1",
		Name:     "Weak",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAuthService_SignUp_InvalidEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.SignUp(context.Background(), &dto.SignUpRequest{
		Email:    "not-an-address",
		Password: "Password123",
		Name:     "Bad Email",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAuthService_SignIn(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "login@example.com", "Password123")

	resp, err := f.svc.SignIn(ctx, &dto.SignInRequest{Email: "Login@Example.com", Password: "Password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	require.NotNil(t, resp.Tokens)

	// The sign-up session stays alive alongside the new one.
	assert.Equal(t, 2, f.sessions.countByUser(user.ID))
}

func TestAuthService_SignIn_InvalidCredentials(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.signUp(t, "login@example.com", "Password123")

	_, err := f.svc.SignIn(ctx, &dto.SignInRequest{Email: "login@example.com", Password: "WrongPass1"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))

	// Unknown email gets the same answer as a wrong password.
	_, err = f.svc.SignIn(ctx, &dto.SignInRequest{Email: "ghost@example.com", Password: "Password123"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
}

func TestAuthService_SignIn_DeletedAccount(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "gone@example.com", "Password123")
	require.NoError(t, f.users.SoftDelete(ctx, user.ID))

	_, err := f.svc.SignIn(ctx, &dto.SignInRequest{Email: "gone@example.com", Password: "Password123"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "refresh@example.com", "Password123")

	session, err := f.sessions.GetByRefreshToken(ctx, firstRefreshToken(t, f, user.ID))
	require.NoError(t, err)

	tokens, err := f.svc.Refresh(ctx, f.claims(user), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, tokens.RefreshToken)

	// The presented pair is revoked, the fresh one persisted.
	_, err = f.sessions.GetByRefreshToken(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.sessions.GetByRefreshToken(ctx, tokens.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.sessions.countByUser(user.ID))
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "logout@example.com", "Password123")

	session, err := f.sessions.GetByRefreshToken(ctx, firstRefreshToken(t, f, user.ID))
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, f.claims(user), session.AccessToken))
	assert.Equal(t, 0, f.sessions.countByUser(user.ID))
	assert.Equal(t, []string{"logout@example.com"}, f.notifier.logouts)

	// Logging out an already-revoked session is not an error.
	assert.NoError(t, f.svc.Logout(ctx, f.claims(user), session.AccessToken))
}

func TestAuthService_LogoutAll(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "logoutall@example.com", "Password123")

	for i := 0; i < 2; i++ {
		_, err := f.svc.SignIn(ctx, &dto.SignInRequest{Email: "logoutall@example.com", Password: "Password123"})
		require.NoError(t, err)
	}
	require.Equal(t, 3, f.sessions.countByUser(user.ID))

	require.NoError(t, f.svc.LogoutAll(ctx, f.claims(user)))
	assert.Equal(t, 0, f.sessions.countByUser(user.ID))
}

func TestAuthService_Verify(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "verify@example.com", "Password123")
	require.Equal(t, 1, f.actionTokens.countByUser(user.ID, domain.TokenVerifyEmail))

	require.NoError(t, f.svc.Verify(ctx, f.claims(user)))

	updated, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)
	assert.Equal(t, 0, f.actionTokens.countByUser(user.ID, domain.TokenVerifyEmail))
}

func TestAuthService_ResendVerifyEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "resend@example.com", "Password123")
	firstToken := f.notifier.lastToken

	require.NoError(t, f.svc.ResendVerifyEmail(ctx, f.claims(user)))
	assert.Equal(t, []string{"resend@example.com"}, f.notifier.verifies)
	assert.NotEqual(t, firstToken, f.notifier.lastToken)

	// The previous token was replaced, not accumulated.
	assert.Equal(t, 1, f.actionTokens.countByUser(user.ID, domain.TokenVerifyEmail))
	_, err := f.actionTokens.GetByToken(ctx, firstToken)
	assert.Error(t, err)
}

func TestAuthService_ResendVerifyEmail_AlreadyVerified(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "resend2@example.com", "Password123")
	require.NoError(t, f.users.SetVerified(ctx, user.ID))

	err := f.svc.ResendVerifyEmail(ctx, f.claims(user))
	assert.True(t, apperr.Is(err, apperr.KindEmailVerified))
}

func TestAuthService_ForgotPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "forgot@example.com", "Password123")

	require.NoError(t, f.svc.ForgotPassword(ctx, "Forgot@Example.com"))
	assert.Equal(t, []string{"forgot@example.com"}, f.notifier.forgots)
	assert.Equal(t, 1, f.actionTokens.countByUser(user.ID, domain.TokenForgotPassword))

	err := f.svc.ForgotPassword(ctx, "ghost@example.com")
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
}

func TestAuthService_ForgotPassword_DeletedAccount(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "forgotgone@example.com", "Password123")
	require.NoError(t, f.users.SoftDelete(ctx, user.ID))

	err := f.svc.ForgotPassword(ctx, "forgotgone@example.com")
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
}

func TestAuthService_ForgotPasswordSet(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "reset@example.com", "Password123")

	require.NoError(t, f.svc.ForgotPassword(ctx, "reset@example.com"))
	resetToken := f.notifier.lastToken

	require.NoError(t, f.svc.ForgotPasswordSet(ctx, f.claims(user), resetToken, "NewPassword1"))

	updated, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("NewPassword1", updated.PasswordHash))

	// The replaced hash joins the history, the token is consumed and every
	// session is revoked.
	history, err := f.oldPasswords.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, utils.CheckPasswordHash("Password123", history[0].PasswordHash))
	_, err = f.actionTokens.GetByToken(ctx, resetToken)
	assert.Error(t, err)
	assert.Equal(t, 0, f.sessions.countByUser(user.ID))
}

func TestAuthService_ForgotPasswordSet_ReusedPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "reset2@example.com", "Password123")

	require.NoError(t, f.svc.ForgotPassword(ctx, "reset2@example.com"))
	resetToken := f.notifier.lastToken

	err := f.svc.ForgotPasswordSet(ctx, f.claims(user), resetToken, "Password123")
	assert.True(t, apperr.Is(err, apperr.KindPasswordReuse))

	// On failure the token stays valid and sessions stay open.
	_, err = f.actionTokens.GetByToken(ctx, resetToken)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.sessions.countByUser(user.ID))
}

func TestAuthService_ForgotPasswordSet_WeakPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "reset3@example.com", "Password123")

	require.NoError(t, f.svc.ForgotPassword(ctx, "reset3@example.com"))
	resetToken := f.notifier.lastToken

	err := f.svc.ForgotPasswordSet(ctx, f.claims(user), resetToken, "aaaaaaaa")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	// The token stays valid and sessions stay open, same as a reuse failure.
	_, err = f.actionTokens.GetByToken(ctx, resetToken)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.sessions.countByUser(user.ID))
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "change@example.com", "Password123")

	err := f.svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword1",
	})
	require.NoError(t, err)

	updated, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("NewPassword1", updated.PasswordHash))
	assert.Equal(t, 0, f.sessions.countByUser(user.ID))
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "change2@example.com", "Password123")

	err := f.svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		OldPassword: "WrongPass1",
		NewPassword: "NewPassword1",
	})
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
}

func TestAuthService_ChangePassword_ReuseCheckedBeforeOldPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "change3@example.com", "Password123")

	// Reusing the current password is reported as reuse even when the
	// presented old password is wrong.
	err := f.svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		OldPassword: "WrongPass1",
		NewPassword: "Password123",
	})
	assert.True(t, apperr.Is(err, apperr.KindPasswordReuse))
}

func TestAuthService_ChangePassword_HistoricalReuse(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "change4@example.com", "Password123")

	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword1",
	}))

	// Rotating back to the original password is rejected.
	err := f.svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		OldPassword: "NewPassword1",
		NewPassword: "Password123",
	})
	assert.True(t, apperr.Is(err, apperr.KindPasswordReuse))
}

func TestAuthService_ChangePassword_WeakNewPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "change5@example.com", "Password123")

	err := f.svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "aaaaaaaa",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	// The password is unchanged and the session survives.
	updated, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("Password123", updated.PasswordHash))
	assert.Equal(t, 1, f.sessions.countByUser(user.ID))
}

func TestAuthService_AccountRestore(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "restore@example.com", "Password123")
	require.NoError(t, f.users.SoftDelete(ctx, user.ID))

	require.NoError(t, f.svc.AccountRestore(ctx, "restore@example.com"))
	assert.Equal(t, []string{"restore@example.com"}, f.notifier.restores)
	assert.Equal(t, 1, f.actionTokens.countByUser(user.ID, domain.TokenAccountRestore))

	err := f.svc.AccountRestore(ctx, "ghost@example.com")
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
}

func TestAuthService_AccountRestoreSet(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "restore2@example.com", "Password123")

	// Build up some history before deletion.
	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword1",
	}))
	require.NoError(t, f.users.SoftDelete(ctx, user.ID))

	require.NoError(t, f.svc.AccountRestore(ctx, "restore2@example.com"))
	restoreToken := f.notifier.lastToken

	// The history is wiped first, so returning to the very first password
	// is allowed.
	require.NoError(t, f.svc.AccountRestoreSet(ctx, f.claims(user), restoreToken, "Password123"))

	updated, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsDeleted)
	assert.True(t, utils.CheckPasswordHash("Password123", updated.PasswordHash))

	history, err := f.oldPasswords.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = f.actionTokens.GetByToken(ctx, restoreToken)
	assert.Error(t, err)
	assert.Equal(t, 0, f.sessions.countByUser(user.ID))
}

func TestAuthService_AccountRestoreSet_WeakPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.signUp(t, "restore3@example.com", "Password123")

	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword1",
	}))
	require.NoError(t, f.users.SoftDelete(ctx, user.ID))

	require.NoError(t, f.svc.AccountRestore(ctx, "restore3@example.com"))
	restoreToken := f.notifier.lastToken

	err := f.svc.AccountRestoreSet(ctx, f.claims(user), restoreToken, "aaaaaaaa")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	// Rejected before anything happened: the history is intact, the token
	// unconsumed, the account still deleted.
	history, err := f.oldPasswords.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	_, err = f.actionTokens.GetByToken(ctx, restoreToken)
	assert.NoError(t, err)
	restored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsDeleted)
}

// firstRefreshToken finds the refresh token of the user's only session
func firstRefreshToken(t *testing.T, f *authFixture, userID string) string {
	t.Helper()
	for _, s := range f.sessions.sessions {
		if s.UserID == userID {
			return s.RefreshToken
		}
	}
	t.Fatalf("no session for user %s", userID)
	return ""
}
