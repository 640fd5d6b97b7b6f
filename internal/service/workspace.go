package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/repository"
	"github.com/noah-isme/seatplan-api/internal/validation"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

type dataFileRepository interface {
	Load(ctx context.Context) (*models.DataFile, error)
	Save(ctx context.Context, df *models.DataFile, createBackup bool) error
}

type lockGuard interface {
	EnsureHeld(ctx context.Context, user string) error
}

// MutateFunc edits the document in place. Returned errors abort the mutation.
type MutateFunc func(df *models.DataFile) error

// Workspace serialises every change to the planning document: lock check, edit, shape check,
// save, history push and cache invalidation.
type Workspace struct {
	repo    dataFileRepository
	locks   lockGuard
	history *HistoryService
	cache   *CacheService
	logger  *zap.Logger
	now     func() time.Time

	mu sync.RWMutex
}

// NewWorkspace wires the document repository with its guards.
func NewWorkspace(repo dataFileRepository, locks lockGuard, history *HistoryService, cache *CacheService, logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	if history == nil {
		history = NewHistoryService(DefaultMaxStates, logger)
	}
	return &Workspace{repo: repo, locks: locks, history: history, cache: cache, logger: logger, now: time.Now}
}

// Snapshot loads a private copy of the document.
func (w *Workspace) Snapshot(ctx context.Context) (*models.DataFile, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.load(ctx)
}

// Mutate applies fn on behalf of actor and persists the result.
func (w *Workspace) Mutate(ctx context.Context, actor string, fn MutateFunc) (*models.DataFile, error) {
	if err := w.ensureLock(ctx, actor); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	df, err := w.load(ctx)
	if err != nil {
		return nil, err
	}
	if w.history.Empty() {
		w.history.Push(df)
	}
	before := problemSet(validation.DataFile(df))

	if err := fn(df); err != nil {
		return nil, err
	}
	df.Touch(actor, w.now())

	var introduced []string
	for _, problem := range validation.DataFile(df) {
		if !before[problem] {
			introduced = append(introduced, problem)
		}
	}
	if err := rejectProblems(introduced); err != nil {
		return nil, err
	}

	if err := w.persist(ctx, df, false); err != nil {
		return nil, err
	}
	w.history.Push(df)
	return df, nil
}

// Undo restores the previous history state.
func (w *Workspace) Undo(ctx context.Context, actor string) (*models.DataFile, error) {
	return w.step(ctx, actor, w.history.CanUndo, w.history.Undo, "nothing to undo")
}

// Redo re-applies the last undone state.
func (w *Workspace) Redo(ctx context.Context, actor string) (*models.DataFile, error) {
	return w.step(ctx, actor, w.history.CanRedo, w.history.Redo, "nothing to redo")
}

// Replace swaps the whole document, backing up the current one first. The replacement must pass
// the shape check on its own. The new state becomes the history baseline.
func (w *Workspace) Replace(ctx context.Context, actor string, df *models.DataFile) error {
	if err := w.ensureLock(ctx, actor); err != nil {
		return err
	}
	if err := rejectProblems(validation.DataFile(df)); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	df.Touch(actor, w.now())
	if err := w.persist(ctx, df, true); err != nil {
		return err
	}
	w.history.Clear()
	w.history.Push(df)
	return nil
}

// History exposes the undo/redo counters.
func (w *Workspace) History() HistoryInfo {
	return w.history.Info()
}

func (w *Workspace) step(ctx context.Context, actor string, can func() bool, pop func() *models.DataFile, empty string) (*models.DataFile, error) {
	if err := w.ensureLock(ctx, actor); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if !can() {
		return nil, appErrors.Clone(appErrors.ErrNothingToUndo, empty)
	}
	state := pop()
	if state == nil {
		return nil, appErrors.Clone(appErrors.ErrNothingToUndo, empty)
	}
	if err := w.persist(ctx, state, false); err != nil {
		return nil, err
	}
	w.logger.Info("history state restored", zap.String("actor", actor), zap.String("last_modified", state.Metadata.LastModified))
	return state, nil
}

func (w *Workspace) ensureLock(ctx context.Context, actor string) error {
	if w.locks == nil {
		return nil
	}
	return w.locks.EnsureHeld(ctx, actor)
}

func (w *Workspace) load(ctx context.Context) (*models.DataFile, error) {
	df, err := w.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCorruptDataFile) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "data file is corrupt, a copy was kept in backups")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load data file")
	}
	return df, nil
}

func (w *Workspace) persist(ctx context.Context, df *models.DataFile, backup bool) error {
	if err := w.repo.Save(ctx, df, backup); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save data file")
	}
	if err := w.cache.Invalidate(ctx, "*"); err != nil {
		w.logger.Warn("cache not invalidated after save", zap.Error(err))
	}
	return nil
}

func rejectProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return appErrors.Clone(appErrors.ErrValidation, strings.Join(problems, "; "))
}

func problemSet(problems []string) map[string]bool {
	set := make(map[string]bool, len(problems))
	for _, p := range problems {
		set[p] = true
	}
	return set
}
