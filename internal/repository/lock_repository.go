package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/pkg/storage"
)

const lockFileName = "data.lock"

// ErrLockHeld is returned when another user holds a fresh lock.
var ErrLockHeld = errors.New("lock held by another user")

// LockRepository manages the data.lock file next to the document.
type LockRepository struct {
	store    *storage.LocalStorage
	timeout  time.Duration
	logger   *zap.Logger
	pid      int
	hostname string
	now      func() time.Time
}

// NewLockRepository constructs a lock repository; locks older than timeout are stale.
func NewLockRepository(store *storage.LocalStorage, timeout time.Duration, logger *zap.Logger) *LockRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Hour
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &LockRepository{
		store:    store,
		timeout:  timeout,
		logger:   logger,
		pid:      os.Getpid(),
		hostname: hostname,
		now:      time.Now,
	}
}

// Read returns the raw lock file content, nil when absent. An undecodable file is reported as a
// lock without timestamp, which IsStale treats as stale.
func (r *LockRepository) Read(ctx context.Context) (*models.LockInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := r.store.Read(lockFileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read lock file: %w", err)
	}
	var info models.LockInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		r.logger.Warn("lock file unreadable", zap.Error(err))
		return &models.LockInfo{Locked: true}, nil
	}
	return &info, nil
}

// IsStale reports whether the lock is older than the timeout or has no usable timestamp.
func (r *LockRepository) IsStale(info *models.LockInfo) bool {
	if info == nil {
		return false
	}
	ts, err := time.Parse(time.RFC3339Nano, info.Timestamp)
	if err != nil {
		return true
	}
	return r.now().Sub(ts) > r.timeout
}

// Acquire takes the lock for user. A stale lock is replaced; a fresh lock held by someone else
// is returned together with ErrLockHeld. Re-acquiring one's own lock refreshes it.
func (r *LockRepository) Acquire(ctx context.Context, user string) (*models.LockInfo, error) {
	current, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil && current.User != user {
		if !r.IsStale(current) {
			return current, ErrLockHeld
		}
		r.logger.Info("removing stale lock", zap.String("holder", current.User))
	}

	info := &models.LockInfo{
		Locked:    true,
		User:      user,
		Timestamp: r.now().UTC().Format(time.RFC3339Nano),
		PID:       r.pid,
		Hostname:  r.hostname,
	}
	if err := r.write(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Release removes the lock if user owns it or it is stale. Releasing an absent lock is a no-op.
func (r *LockRepository) Release(ctx context.Context, user string) (bool, error) {
	current, err := r.Read(ctx)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}
	if current.User != user && !r.IsStale(current) {
		return false, ErrLockHeld
	}
	if err := r.store.Delete(lockFileName); err != nil {
		return false, fmt.Errorf("release lock: %w", err)
	}
	return true, nil
}

// Refresh bumps the timestamp of user's lock. Only the holder's own activity keeps a lock alive,
// so a lock that already went stale is left for Acquire or RemoveStale to replace.
func (r *LockRepository) Refresh(ctx context.Context, user string) (bool, error) {
	current, err := r.Read(ctx)
	if err != nil || current == nil {
		return false, err
	}
	if current.User != user || r.IsStale(current) {
		return false, nil
	}
	current.Timestamp = r.now().UTC().Format(time.RFC3339Nano)
	if err := r.write(current); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveStale deletes the lock file once it is past the timeout and returns the lock it removed.
func (r *LockRepository) RemoveStale(ctx context.Context) (*models.LockInfo, error) {
	current, err := r.Read(ctx)
	if err != nil || current == nil {
		return nil, err
	}
	if !r.IsStale(current) {
		return nil, nil
	}
	if err := r.store.Delete(lockFileName); err != nil {
		return nil, fmt.Errorf("remove stale lock: %w", err)
	}
	return current, nil
}

func (r *LockRepository) write(info *models.LockInfo) error {
	payload, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encode lock file: %w", err)
	}
	if _, err := r.store.Save(lockFileName, payload); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	return nil
}
