package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/repository"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

type lockRepository interface {
	Read(ctx context.Context) (*models.LockInfo, error)
	IsStale(info *models.LockInfo) bool
	Acquire(ctx context.Context, user string) (*models.LockInfo, error)
	Release(ctx context.Context, user string) (bool, error)
	Refresh(ctx context.Context, user string) (bool, error)
	RemoveStale(ctx context.Context) (*models.LockInfo, error)
}

// LockService guards the planning document against concurrent editors.
type LockService struct {
	repo   lockRepository
	logger *zap.Logger
}

// NewLockService constructs a LockService.
func NewLockService(repo lockRepository, logger *zap.Logger) *LockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockService{repo: repo, logger: logger}
}

// Acquire takes the edit lock for user.
func (s *LockService) Acquire(ctx context.Context, user string) (*models.LockStatus, error) {
	info, err := s.repo.Acquire(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrLockHeld) {
			return nil, appErrors.Clone(appErrors.ErrLocked, fmt.Sprintf("data file is locked by %s", holderName(info)))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire lock")
	}
	s.logger.Info("lock acquired", zap.String("user", user))
	return &models.LockStatus{Locked: true, OwnedBy: user, Holder: info}, nil
}

// Release gives up the edit lock held by user.
func (s *LockService) Release(ctx context.Context, user string) error {
	released, err := s.repo.Release(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrLockHeld) {
			return appErrors.Clone(appErrors.ErrForbidden, "lock is held by another user")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release lock")
	}
	if released {
		s.logger.Info("lock released", zap.String("user", user))
	}
	return nil
}

// Status describes the current lock. A stale lock is reported as not locked.
func (s *LockService) Status(ctx context.Context) (*models.LockStatus, error) {
	info, err := s.repo.Read(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read lock")
	}
	if info == nil {
		return &models.LockStatus{}, nil
	}
	if s.repo.IsStale(info) {
		return &models.LockStatus{Stale: true, Holder: info}, nil
	}
	return &models.LockStatus{Locked: true, OwnedBy: info.User, Holder: info}, nil
}

// EnsureHeld fails with ErrLocked unless user holds a fresh lock. A successful check counts as
// activity and restarts the holder's timeout.
func (s *LockService) EnsureHeld(ctx context.Context, user string) error {
	status, err := s.Status(ctx)
	if err != nil {
		return err
	}
	if !status.Locked {
		return appErrors.Clone(appErrors.ErrLocked, "acquire the lock before editing")
	}
	if status.OwnedBy != user {
		return appErrors.Clone(appErrors.ErrLocked, fmt.Sprintf("data file is locked by %s", status.OwnedBy))
	}
	if _, err := s.repo.Refresh(ctx, user); err != nil {
		s.logger.Warn("lock not refreshed", zap.String("user", user), zap.Error(err))
	}
	return nil
}

// SweepStale removes a lock whose holder has been idle past the timeout.
func (s *LockService) SweepStale(ctx context.Context) error {
	removed, err := s.repo.RemoveStale(ctx)
	if err != nil {
		s.logger.Warn("stale lock sweep failed", zap.Error(err))
		return err
	}
	if removed != nil {
		s.logger.Info("stale lock removed", zap.String("holder", holderName(removed)), zap.String("timestamp", removed.Timestamp))
	}
	return nil
}

func holderName(info *models.LockInfo) string {
	if info == nil || info.User == "" {
		return "unknown user"
	}
	return info.User
}
