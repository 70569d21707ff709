package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/repository"
)

// CleanupConfig holds the retention windows of the purgeable stores
type CleanupConfig struct {
	SessionMaxAge     time.Duration
	ActionTokenMaxAge time.Duration
	OldPasswordMaxAge time.Duration
}

// cleanupService implements CleanupService interface
type cleanupService struct {
	sessionRepo     repository.SessionRepository
	actionTokenRepo repository.ActionTokenRepository
	oldPasswordRepo repository.OldPasswordRepository
	config          CleanupConfig
	logger          *zap.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(
	sessionRepo repository.SessionRepository,
	actionTokenRepo repository.ActionTokenRepository,
	oldPasswordRepo repository.OldPasswordRepository,
	config CleanupConfig,
	logger *zap.Logger,
) CleanupService {
	return &cleanupService{
		sessionRepo:     sessionRepo,
		actionTokenRepo: actionTokenRepo,
		oldPasswordRepo: oldPasswordRepo,
		config:          config,
		logger:          logger,
	}
}

// Run purges rows past their retention windows. The service holds no timer;
// callers (an external scheduler hitting the admin endpoint) decide when.
func (s *cleanupService) Run(ctx context.Context) (*dto.CleanupResponse, error) {
	now := time.Now()

	sessions, err := s.sessionRepo.DeleteOlderThan(ctx, now.Add(-s.config.SessionMaxAge))
	if err != nil {
		return nil, fmt.Errorf("failed to purge sessions: %w", err)
	}

	actionTokens, err := s.actionTokenRepo.DeleteOlderThan(ctx, now.Add(-s.config.ActionTokenMaxAge))
	if err != nil {
		return nil, fmt.Errorf("failed to purge action tokens: %w", err)
	}

	oldPasswords, err := s.oldPasswordRepo.DeleteOlderThan(ctx, now.Add(-s.config.OldPasswordMaxAge))
	if err != nil {
		return nil, fmt.Errorf("failed to purge old passwords: %w", err)
	}

	s.logger.Info("cleanup finished",
		zap.Int64("sessions", sessions),
		zap.Int64("action_tokens", actionTokens),
		zap.Int64("old_passwords", oldPasswords),
	)

	return &dto.CleanupResponse{
		Sessions:     sessions,
		ActionTokens: actionTokens,
		OldPasswords: oldPasswords,
	}, nil
}
