package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/orbitdesk-ai/orbitdesk/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	admins   []uuid.UUID
	adminErr error
	owner    uuid.UUID
	ownerErr error
}

func (s *stubDirectory) AdminIDs(ctx context.Context, workspaceID uuid.UUID) ([]uuid.UUID, error) {
	return s.admins, s.adminErr
}

func (s *stubDirectory) OwnerID(ctx context.Context, workspaceID uuid.UUID) (uuid.UUID, error) {
	return s.owner, s.ownerErr
}

func TestResolveFallbackOrder(t *testing.T) {
	managerA := uuid.New()
	managerB := uuid.New()
	creator := uuid.New()
	admin := uuid.New()
	owner := uuid.New()
	workspaceID := uuid.New()

	tests := []struct {
		name      string
		reportsTo models.StringArray
		createdBy *uuid.UUID
		admins    []uuid.UUID
		expected  []uuid.UUID
	}{
		{
			name:      "reports_to wins and keeps every entry",
			reportsTo: models.StringArray{managerA.String(), managerB.String()},
			createdBy: &creator,
			admins:    []uuid.UUID{admin},
			expected:  []uuid.UUID{managerA, managerB},
		},
		{
			name:      "creator when reports_to is empty",
			reportsTo: models.StringArray{},
			createdBy: &creator,
			admins:    []uuid.UUID{admin},
			expected:  []uuid.UUID{creator},
		},
		{
			name:     "admins when creator is unset",
			admins:   []uuid.UUID{admin},
			expected: []uuid.UUID{admin},
		},
		{
			name:     "owner as the final fallback",
			expected: []uuid.UUID{owner},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(&stubDirectory{admins: tt.admins, owner: owner})

			localAgent := &models.LocalAgent{
				AgentID:     uuid.New(),
				WorkspaceID: workspaceID,
				ReportsTo:   tt.reportsTo,
			}
			schedule := &models.AgentSchedule{
				ID:        uuid.New(),
				CreatedBy: tt.createdBy,
			}

			recipients, err := resolver.Resolve(context.Background(), localAgent, schedule, workspaceID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, recipients)
		})
	}
}

func TestResolveSkipsBadReportsToEntries(t *testing.T) {
	manager := uuid.New()
	resolver := NewResolver(&stubDirectory{owner: uuid.New()})

	localAgent := &models.LocalAgent{
		AgentID:     uuid.New(),
		WorkspaceID: uuid.New(),
		ReportsTo:   models.StringArray{"not-a-uuid", manager.String()},
	}

	recipients, err := resolver.Resolve(context.Background(), localAgent, &models.AgentSchedule{}, localAgent.WorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{manager}, recipients)
}

func TestResolveAdminLookupFailureFallsToOwner(t *testing.T) {
	owner := uuid.New()
	resolver := NewResolver(&stubDirectory{adminErr: errors.New("timeout"), owner: owner})

	recipients, err := resolver.Resolve(context.Background(), nil, &models.AgentSchedule{}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{owner}, recipients)
}

func TestResolveOwnerLookupFailure(t *testing.T) {
	resolver := NewResolver(&stubDirectory{ownerErr: errors.New("not found")})

	_, err := resolver.Resolve(context.Background(), nil, &models.AgentSchedule{}, uuid.New())
	assert.Error(t, err)
}
