package recovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/agentrun/metrics"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStuckStore struct {
	stuck     []models.AgentExecution
	findErr   error
	failErr   map[uuid.UUID]error
	failed    []uuid.UUID
	failedMsg map[uuid.UUID]string
}

func (s *fakeStuckStore) FindStuck(ctx context.Context, threshold time.Duration) ([]models.AgentExecution, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.stuck, nil
}

func (s *fakeStuckStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	if err, ok := s.failErr[id]; ok {
		return err
	}
	s.failed = append(s.failed, id)
	if s.failedMsg == nil {
		s.failedMsg = map[uuid.UUID]string{}
	}
	s.failedMsg[id] = errorMessage
	return nil
}

func TestRecoverFailsStuckExecutions(t *testing.T) {
	first := models.AgentExecution{ID: uuid.New(), ScheduleID: uuid.New()}
	second := models.AgentExecution{ID: uuid.New(), ScheduleID: uuid.New()}
	store := &fakeStuckStore{stuck: []models.AgentExecution{first, second}}
	collector := metrics.NewCollector()

	recov := NewStuckRecovery(store, collector, 30*time.Minute)
	recov.RecoverOnce(context.Background())

	require.Len(t, store.failed, 2)
	assert.Equal(t, "execution exceeded 30m0s in running state", store.failedMsg[first.ID])
	assert.Equal(t, int64(2), collector.Snapshot().RecoveredTotal)
}

func TestRecoverSkipsFailedMarks(t *testing.T) {
	broken := models.AgentExecution{ID: uuid.New()}
	healthy := models.AgentExecution{ID: uuid.New()}
	store := &fakeStuckStore{
		stuck:   []models.AgentExecution{broken, healthy},
		failErr: map[uuid.UUID]error{broken.ID: errors.New("connection reset")},
	}
	collector := metrics.NewCollector()

	recov := NewStuckRecovery(store, collector, 30*time.Minute)
	recov.RecoverOnce(context.Background())

	require.Len(t, store.failed, 1)
	assert.Equal(t, healthy.ID, store.failed[0])
	assert.Equal(t, int64(1), collector.Snapshot().RecoveredTotal)
}

func TestRecoverToleratesFindError(t *testing.T) {
	store := &fakeStuckStore{findErr: errors.New("database unavailable")}
	collector := metrics.NewCollector()

	recov := NewStuckRecovery(store, collector, 30*time.Minute)
	recov.RecoverOnce(context.Background())

	assert.Empty(t, store.failed)
	assert.Equal(t, int64(0), collector.Snapshot().RecoveredTotal)
}
