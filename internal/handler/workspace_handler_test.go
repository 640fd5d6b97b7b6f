package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/service"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

type workspaceMock struct {
	undoErr error
	info    service.HistoryInfo
}

func (m *workspaceMock) Snapshot(ctx context.Context) (*models.DataFile, error) {
	return models.NewDataFile(), nil
}

func (m *workspaceMock) Undo(ctx context.Context, actor string) (*models.DataFile, error) {
	if m.undoErr != nil {
		return nil, m.undoErr
	}
	df := models.NewDataFile()
	df.Metadata.LastUser = actor
	return df, nil
}

func (m *workspaceMock) Redo(ctx context.Context, actor string) (*models.DataFile, error) {
	return m.Undo(ctx, actor)
}

func (m *workspaceMock) History() service.HistoryInfo { return m.info }

func TestWorkspaceHandlerUndo(t *testing.T) {
	handler := NewWorkspaceHandler(&workspaceMock{info: service.HistoryInfo{RedoAvailable: true, RedoCount: 1, MaxStates: 50}})

	c, w := newContext(http.MethodPost, "/history/undo", "")
	handler.Undo(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"last_user":"admin"`)
	assert.Contains(t, w.Body.String(), `"redo_available":true`)
}

func TestWorkspaceHandlerNothingToRedo(t *testing.T) {
	handler := NewWorkspaceHandler(&workspaceMock{undoErr: appErrors.Clone(appErrors.ErrNothingToUndo, "nothing to redo")})

	c, w := newContext(http.MethodPost, "/history/redo", "")
	handler.Redo(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOTHING_TO_UNDO", decodeEnvelope(t, w).Error.Code)
}

func TestWorkspaceHandlerDocumentAndHistory(t *testing.T) {
	handler := NewWorkspaceHandler(&workspaceMock{info: service.HistoryInfo{MaxStates: 50}})

	c, w := newContext(http.MethodGet, "/document", "")
	handler.Document(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.0"`)

	c, w = newContext(http.MethodGet, "/history", "")
	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"max_states":50`)
}
