package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func newMockRepo(t *testing.T) (*ExecutionRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	return NewExecutionRepository(db), mock
}

func TestTransitionStatusClaimsRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	startedAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "agent_executions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claimed, err := repo.TransitionStatus(context.Background(), id, "pending_approval", "running", &startedAt)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusLosesRace(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "agent_executions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	claimed, err := repo.TransitionStatus(context.Background(), id, "pending_approval", "running", nil)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTerminalBefore(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Now().AddDate(0, 0, -90)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "agent_executions"`).
		WillReturnResult(sqlmock.NewResult(0, 42))
	mock.ExpectCommit()

	deleted, err := repo.DeleteTerminalBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(42), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
