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
	"github.com/placium/places-api/internal/utils"
)

// authService implements AuthService interface
type authService struct {
	userRepo        repository.UserRepository
	sessionRepo     repository.SessionRepository
	actionTokenRepo repository.ActionTokenRepository
	oldPasswordRepo repository.OldPasswordRepository
	tokenManager    *utils.TokenManager
	notifier        Notifier
	bcryptCost      int
	logger          *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	actionTokenRepo repository.ActionTokenRepository,
	oldPasswordRepo repository.OldPasswordRepository,
	tokenManager *utils.TokenManager,
	notifier Notifier,
	bcryptCost int,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:        userRepo,
		sessionRepo:     sessionRepo,
		actionTokenRepo: actionTokenRepo,
		oldPasswordRepo: oldPasswordRepo,
		tokenManager:    tokenManager,
		notifier:        notifier,
		bcryptCost:      bcryptCost,
		logger:          logger,
	}
}

// SignUp registers a new user, opens their first session and emails a
// verification token
func (s *authService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error) {
	email := utils.SanitizeEmail(req.Email)
	if !utils.ValidateEmail(email) {
		return nil, apperr.Newf(apperr.KindValidation, "invalid email address")
	}
	if err := checkPasswordPolicy(req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         domain.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.New(apperr.KindEmailInUse)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	verifyToken, err := s.issueActionToken(ctx, user, domain.TokenVerifyEmail)
	if err != nil {
		return nil, err
	}

	// The flow is useless without the verification email, so a send failure
	// fails the request.
	if err := s.notifier.SendWelcome(ctx, user.Email, user.Name, verifyToken); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, fmt.Errorf("failed to send welcome email: %w", err))
	}

	return &dto.AuthResponse{User: dto.NewUserResponse(user), Tokens: &tokens}, nil
}

// SignIn authenticates a user and opens a new session
func (s *authService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// A soft-deleted account presents as absent, not as wrong-password.
	if user.IsDeleted {
		return nil, apperr.New(apperr.KindNotFound)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperr.New(apperr.KindInvalidCredentials)
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{User: dto.NewUserResponse(user), Tokens: &tokens}, nil
}

// Refresh rotates a session: the presented pair is revoked and a fresh
// pair is issued in its place
func (s *authService) Refresh(ctx context.Context, claims domain.TokenClaims, refreshToken string) (domain.TokenPair, error) {
	if err := s.sessionRepo.DeleteByRefreshToken(ctx, refreshToken); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return domain.TokenPair{}, fmt.Errorf("failed to revoke session: %w", err)
	}

	tokens, err := s.tokenManager.GeneratePair(claims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	session := &domain.Session{
		UserID:       claims.UserID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to create session: %w", err)
	}

	return tokens, nil
}

// Logout revokes the presented session and sends a courtesy email
func (s *authService) Logout(ctx context.Context, claims domain.TokenClaims, accessToken string) error {
	if err := s.sessionRepo.DeleteByAccessToken(ctx, accessToken); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.sendLogoutEmail(ctx, claims.UserID)
	return nil
}

// LogoutAll revokes every session of the user
func (s *authService) LogoutAll(ctx context.Context, claims domain.TokenClaims) error {
	if err := s.sessionRepo.DeleteAllByUser(ctx, claims.UserID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.sendLogoutEmail(ctx, claims.UserID)
	return nil
}

// Verify marks the user's email as verified and consumes every outstanding
// verification token
func (s *authService) Verify(ctx context.Context, claims domain.TokenClaims) error {
	if err := s.userRepo.SetVerified(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound)
		}
		return fmt.Errorf("failed to verify user: %w", err)
	}

	if err := s.actionTokenRepo.DeleteAllByUser(ctx, claims.UserID, domain.TokenVerifyEmail); err != nil {
		return fmt.Errorf("failed to consume verification tokens: %w", err)
	}

	return nil
}

// ResendVerifyEmail issues a fresh verification token, invalidating the
// previous one
func (s *authService) ResendVerifyEmail(ctx context.Context, claims domain.TokenClaims) error {
	user, err := s.getUser(ctx, claims.UserID)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return apperr.New(apperr.KindEmailVerified)
	}

	verifyToken, err := s.issueActionToken(ctx, user, domain.TokenVerifyEmail)
	if err != nil {
		return err
	}

	if err := s.notifier.SendVerifyEmail(ctx, user.Email, user.Name, verifyToken); err != nil {
		return apperr.Wrap(apperr.KindInternal, fmt.Errorf("failed to send verification email: %w", err))
	}

	return nil
}

// ForgotPassword emails a password-reset token to a known account
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindInvalidCredentials)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsDeleted {
		return apperr.New(apperr.KindInvalidCredentials)
	}

	resetToken, err := s.issueActionToken(ctx, user, domain.TokenForgotPassword)
	if err != nil {
		return err
	}

	if err := s.notifier.SendForgotPassword(ctx, user.Email, resetToken); err != nil {
		return apperr.Wrap(apperr.KindInternal, fmt.Errorf("failed to send reset email: %w", err))
	}

	return nil
}

// ForgotPasswordSet replaces the password after a reset-token check. The
// new password must differ from the current one and everything in the
// retained history; the replaced hash joins the history and every session
// is revoked.
func (s *authService) ForgotPasswordSet(ctx context.Context, claims domain.TokenClaims, token, password string) error {
	user, err := s.getUser(ctx, claims.UserID)
	if err != nil {
		return err
	}

	if err := s.rotatePassword(ctx, user, password); err != nil {
		return err
	}

	if err := s.actionTokenRepo.DeleteByToken(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	if err := s.sessionRepo.DeleteAllByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	return nil
}

// ChangePassword replaces the password of an authenticated user. The reuse
// check runs before the old-password check, so a reused password is always
// reported as reuse.
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	if err := checkPasswordPolicy(req.NewPassword); err != nil {
		return err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	history, err := s.passwordHistory(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := utils.EnsureNotReused(req.NewPassword, user.PasswordHash, history); err != nil {
		return err
	}

	if !utils.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return apperr.New(apperr.KindInvalidCredentials)
	}

	if err := s.setPassword(ctx, user, req.NewPassword); err != nil {
		return err
	}

	if err := s.sessionRepo.DeleteAllByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	return nil
}

// AccountRestore emails a restore token to a soft-deleted account
func (s *authService) AccountRestore(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindInvalidCredentials)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	restoreToken, err := s.issueActionToken(ctx, user, domain.TokenAccountRestore)
	if err != nil {
		return err
	}

	if err := s.notifier.SendAccountRestore(ctx, user.Email, restoreToken); err != nil {
		return apperr.Wrap(apperr.KindInternal, fmt.Errorf("failed to send restore email: %w", err))
	}

	return nil
}

// AccountRestoreSet reactivates a soft-deleted account with a new password.
// The password history is wiped first, so the user may return to any
// password they ever had, including the last one.
func (s *authService) AccountRestoreSet(ctx context.Context, claims domain.TokenClaims, token, password string) error {
	if err := checkPasswordPolicy(password); err != nil {
		return err
	}

	if err := s.oldPasswordRepo.DeleteAllByUser(ctx, claims.UserID); err != nil {
		return fmt.Errorf("failed to clear password history: %w", err)
	}

	passwordHash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.Restore(ctx, claims.UserID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound)
		}
		return fmt.Errorf("failed to restore user: %w", err)
	}

	if err := s.actionTokenRepo.DeleteByToken(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to consume restore token: %w", err)
	}

	if err := s.sessionRepo.DeleteAllByUser(ctx, claims.UserID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	return nil
}

// openSession issues a token pair and persists it
func (s *authService) openSession(ctx context.Context, user *domain.User) (domain.TokenPair, error) {
	tokens, err := s.tokenManager.GeneratePair(domain.TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	session := &domain.Session{
		UserID:       user.ID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to create session: %w", err)
	}

	return tokens, nil
}

// issueActionToken signs a single-purpose token and stores it, replacing
// any previous token of the same purpose
func (s *authService) issueActionToken(ctx context.Context, user *domain.User, tokenType domain.TokenType) (string, error) {
	token, err := s.tokenManager.Generate(domain.TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	}, tokenType)
	if err != nil {
		return "", err
	}

	err = s.actionTokenRepo.Replace(ctx, &domain.ActionToken{
		UserID: user.ID,
		Token:  token,
		Type:   tokenType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store %s token: %w", tokenType, err)
	}

	return token, nil
}

// rotatePassword enforces the reuse rule and replaces the current password,
// retaining the replaced hash in the history
func (s *authService) rotatePassword(ctx context.Context, user *domain.User, password string) error {
	if err := checkPasswordPolicy(password); err != nil {
		return err
	}

	history, err := s.passwordHistory(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := utils.EnsureNotReused(password, user.PasswordHash, history); err != nil {
		return err
	}

	return s.setPassword(ctx, user, password)
}

func (s *authService) setPassword(ctx context.Context, user *domain.User, password string) error {
	err := s.oldPasswordRepo.Create(ctx, &domain.OldPassword{
		UserID:       user.ID,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		return fmt.Errorf("failed to retain old password: %w", err)
	}

	passwordHash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// checkPasswordPolicy rejects a candidate password before any hashing or
// reuse checks run
func checkPasswordPolicy(password string) error {
	if !utils.ValidatePassword(password) {
		return apperr.Newf(apperr.KindValidation,
			"password must be at least 8 characters with an upper-case letter, a lower-case letter and a digit")
	}
	return nil
}

func (s *authService) passwordHistory(ctx context.Context, userID string) ([]string, error) {
	old, err := s.oldPasswordRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load password history: %w", err)
	}

	hashes := make([]string, 0, len(old))
	for _, p := range old {
		hashes = append(hashes, p.PasswordHash)
	}
	return hashes, nil
}

func (s *authService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// sendLogoutEmail is best-effort: a logout must not fail because SMTP is down
func (s *authService) sendLogoutEmail(ctx context.Context, userID string) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user for logout email", zap.Error(err))
		return
	}
	if err := s.notifier.SendLogout(ctx, user.Email, user.Name); err != nil {
		s.logger.Warn("failed to send logout email", zap.String("user_id", userID), zap.Error(err))
	}
}
