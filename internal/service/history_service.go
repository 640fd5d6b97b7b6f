package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/models"
)

// DefaultMaxStates bounds the undo stack when no limit is configured.
const DefaultMaxStates = 50

// HistoryInfo summarises the undo and redo stacks.
type HistoryInfo struct {
	UndoAvailable bool `json:"undo_available"`
	RedoAvailable bool `json:"redo_available"`
	UndoCount     int  `json:"undo_count"`
	RedoCount     int  `json:"redo_count"`
	MaxStates     int  `json:"max_states"`
}

type historyEntry struct {
	takenAt time.Time
	state   *models.DataFile
}

// HistoryService keeps bounded undo/redo stacks of full document snapshots. The top of the undo
// stack is always the current state.
type HistoryService struct {
	mu        sync.Mutex
	undo      []historyEntry
	redo      []historyEntry
	maxStates int
	logger    *zap.Logger
}

// NewHistoryService constructs a history with the given capacity.
func NewHistoryService(maxStates int, logger *zap.Logger) *HistoryService {
	if maxStates <= 0 {
		maxStates = DefaultMaxStates
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{maxStates: maxStates, logger: logger}
}

// Push records a new current state, dropping the oldest beyond capacity and clearing redo.
func (h *HistoryService) Push(state *models.DataFile) {
	if state == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, historyEntry{takenAt: time.Now().UTC(), state: state.Clone()})
	if len(h.undo) > h.maxStates {
		h.undo = h.undo[len(h.undo)-h.maxStates:]
	}
	h.redo = nil
	h.logger.Debug("history state pushed", zap.Int("undo", len(h.undo)))
}

// Undo moves the current state to redo and returns the previous one. It returns nil when there is
// no earlier state.
func (h *HistoryService) Undo() *models.DataFile {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) < 2 {
		return nil
	}
	current := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return h.undo[len(h.undo)-1].state.Clone()
}

// Redo re-applies the most recently undone state, or returns nil.
func (h *HistoryService) Redo() *models.DataFile {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return nil
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, next)
	return next.state.Clone()
}

// CanUndo reports whether an earlier state exists.
func (h *HistoryService) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 1
}

// CanRedo reports whether an undone state exists.
func (h *HistoryService) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Empty reports whether no state was recorded yet.
func (h *HistoryService) Empty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) == 0
}

// Clear drops both stacks.
func (h *HistoryService) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}

// Info returns the current stack counters.
func (h *HistoryService) Info() HistoryInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	undoCount := len(h.undo) - 1
	if undoCount < 0 {
		undoCount = 0
	}
	return HistoryInfo{
		UndoAvailable: len(h.undo) > 1,
		RedoAvailable: len(h.redo) > 0,
		UndoCount:     undoCount,
		RedoCount:     len(h.redo),
		MaxStates:     h.maxStates,
	}
}
