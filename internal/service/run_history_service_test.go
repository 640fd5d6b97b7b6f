package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/models"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
	"github.com/noah-isme/seatplan-api/pkg/jobs"
)

func TestRunHistoryRecordsThroughQueue(t *testing.T) {
	store := &memoryRunStore{}
	queue := jobs.NewQueue("history", jobs.QueueConfig{Workers: 1})
	svc := NewRunHistoryService(store, queue, NewMetricsService(), nil)
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, svc.Record(context.Background(), &models.AssignmentRun{Week: "2025-W43", CreatedBy: "admin"}))

	require.Eventually(t, func() bool {
		runs, err := svc.List(context.Background(), "2025-W43", 5)
		return err == nil && len(runs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunHistoryFallsBackWhenQueueStopped(t *testing.T) {
	store := &memoryRunStore{}
	queue := jobs.NewQueue("history", jobs.QueueConfig{})
	svc := NewRunHistoryService(store, queue, nil, nil)

	require.NoError(t, svc.Record(context.Background(), &models.AssignmentRun{Week: "2025-W43"}))
	assert.Len(t, store.runs, 1)
}

func TestRunHistoryDisabled(t *testing.T) {
	svc := NewRunHistoryService(nil, nil, nil, nil)
	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Record(context.Background(), &models.AssignmentRun{Week: "2025-W43"}))

	_, err := svc.List(context.Background(), "2025-W43", 5)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(t, err))
}
