package management

import (
	"context"
	"testing"

	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/leads/repository"
	"inmo_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLead(tenantID uuid.UUID, stage string) repository.Lead {
	return repository.Lead{ID: uuid.New(), TenantID: tenantID, Name: "Ana López", Stage: stage, Status: "open"}
}

func TestUpdateStageNormalizesLocalizedNames(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "prospectando")
	repo := newFakeRepo(lead)
	bus := &captureBus{}
	svc := New(repo, nil, bus, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "oportunidad")

	require.True(t, res.Success, res.Error)
	assert.True(t, res.StageChanged)
	assert.Equal(t, "prospecting", res.PreviousStage)
	assert.Equal(t, "opportunity", res.NewStage)
	assert.Equal(t, "Ana López", res.LeadName)
	assert.Equal(t, []string{"prospectando->opportunity"}, repo.casCalls)
	assert.Equal(t, "opportunity", repo.leads[lead.ID].Stage)
	assert.Equal(t, []string{"stage_changed"}, repo.activities)

	require.Len(t, bus.events, 1)
	changed, ok := bus.events[0].(events.LeadStageChanged)
	require.True(t, ok)
	assert.Equal(t, "prospecting", changed.PreviousStage)
	assert.Equal(t, "opportunity", changed.NewStage)
}

func TestUpdateStageSameStageDoesNotWrite(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "qualification")
	repo := newFakeRepo(lead)
	bus := &captureBus{}
	svc := New(repo, nil, bus, nil, "")

	for _, target := range []string{"qualification", "Calificación", "  CALIFICACION "} {
		res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), target)
		require.True(t, res.Success, target)
		assert.False(t, res.StageChanged, target)
	}
	assert.Empty(t, repo.casCalls)
	assert.Empty(t, repo.writes)
	assert.Empty(t, bus.events)
}

func TestUpdateStageTerminalAlwaysWrites(t *testing.T) {
	tenantID := uuid.New()
	for _, target := range []string{"closed", "cerrado", "confirmed"} {
		t.Run(target, func(t *testing.T) {
			lead := newLead(tenantID, target)
			if target == "cerrado" {
				lead.Stage = "closed"
			}
			repo := newFakeRepo(lead)
			svc := New(repo, nil, nil, nil, "")

			res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), target)

			require.True(t, res.Success)
			assert.True(t, res.StageChanged)
			assert.Len(t, repo.writes, 1)
			assert.Empty(t, repo.casCalls)
		})
	}
}

func TestUpdateStageClosedAlsoClosesStatus(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "opportunity")
	repo := newFakeRepo(lead)
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "closed")

	require.True(t, res.Success)
	assert.Equal(t, "closed", repo.leads[lead.ID].Status)
}

func TestUpdateStageNotFound(t *testing.T) {
	tenantID := uuid.New()
	svc := New(newFakeRepo(), nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), uuid.NewString(), "new")

	assert.False(t, res.Success)
	assert.False(t, res.StageChanged)
	assert.Equal(t, CodeLeadNotFound, res.ErrorCode)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, apperr.KindNotFound, FailureKind(res.ErrorCode))
}

func TestUpdateStageIgnoresOtherTenants(t *testing.T) {
	lead := newLead(uuid.New(), "new")
	repo := newFakeRepo(lead)
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), uuid.New(), uuid.New(), lead.ID.String(), "prospecting")

	assert.Equal(t, CodeLeadNotFound, res.ErrorCode)
	assert.Equal(t, "new", repo.leads[lead.ID].Stage)
}

func TestUpdateStageAmbiguousPrimaryKey(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "new")
	repo := newFakeRepo(lead)
	repo.duplicate[lead.ID] = true
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "prospecting")

	assert.False(t, res.Success)
	assert.Equal(t, CodeAmbiguousLead, res.ErrorCode)
	assert.Empty(t, repo.casCalls)
}

func TestUpdateStageInvalidTarget(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "new")
	svc := New(newFakeRepo(lead), nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "perdido")

	assert.Equal(t, CodeInvalidStage, res.ErrorCode)
	assert.Equal(t, apperr.KindValidation, FailureKind(res.ErrorCode))
}

func TestUpdateStageConflictWhenStageMovedUnderneath(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "new")
	repo := newFakeRepo(lead)
	repo.casConflict = true
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "prospecting")

	assert.False(t, res.Success)
	assert.Equal(t, CodeStageConflict, res.ErrorCode)
	assert.Equal(t, apperr.KindConflict, FailureKind(res.ErrorCode))
	assert.Empty(t, repo.activities)
}

func TestUpdateStageDatabaseErrorIsStructured(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "new")
	repo := newFakeRepo(lead)
	repo.lookupErr = errDatabaseDown
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "prospecting")

	assert.False(t, res.Success)
	assert.Equal(t, CodeDatabaseError, res.ErrorCode)
	assert.Equal(t, lead.ID.String(), res.LeadID)
}

func TestUpdateStageResolvesLegacyMetadataIDs(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "new")
	lead.Metadata = map[string]any{"database_id": float64(4182)}
	repo := newFakeRepo(lead)
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), "4182", "prospecto")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, lead.ID.String(), res.LeadID)
	assert.Equal(t, "prospecting", repo.leads[lead.ID].Stage)
	assert.Equal(t, lead.ID, repo.aliases[tenantID.String()+"/4182"])
}

func TestUpdateStageMetadataKeyOrder(t *testing.T) {
	tenantID := uuid.New()
	first := newLead(tenantID, "new")
	first.Metadata = map[string]any{"original_id": "crm-7"}
	second := newLead(tenantID, "new")
	second.Metadata = map[string]any{"real_id": "crm-7"}
	repo := newFakeRepo(first, second)
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), "crm-7", "qualification")

	require.True(t, res.Success)
	assert.Equal(t, first.ID.String(), res.LeadID)
}

func TestUpdateStageUsesRecordedAlias(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "new")
	repo := newFakeRepo(lead)
	repo.aliases[tenantID.String()+"/legacy-1"] = lead.ID
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), "legacy-1", "oportunidad")

	require.True(t, res.Success)
	assert.Equal(t, "opportunity", res.NewStage)
}

func TestUpdateStageReopensClosedLead(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "qualification")
	lead.Status = "closed"
	repo := newFakeRepo(lead)
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "nuevo")

	require.True(t, res.Success, res.Error)
	assert.True(t, res.StageChanged)
	assert.Equal(t, "new", res.NewStage)
	assert.Equal(t, "new", repo.leads[lead.ID].Stage)
	assert.Equal(t, "open", repo.leads[lead.ID].Status)
}

func TestUpdateStageReopensOntoStoredStage(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "opportunity")
	lead.Status = "closed"
	repo := newFakeRepo(lead)
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "opportunity")

	require.True(t, res.Success, res.Error)
	assert.True(t, res.StageChanged)
	assert.Equal(t, []string{"opportunity->opportunity"}, repo.casCalls)
	assert.Equal(t, "open", repo.leads[lead.ID].Status)
}

func TestUpdateStageConfirmedReopensClosedLead(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "closed")
	lead.Status = "closed"
	repo := newFakeRepo(lead)
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "confirmado")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, []string{"confirmed"}, repo.writes)
	assert.Equal(t, "open", repo.leads[lead.ID].Status)
}

func TestUpdateStageTerminalWriteOnVanishedLead(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "opportunity")
	repo := newFakeRepo(lead)
	repo.writeErr = repository.ErrNotFound
	svc := New(repo, nil, nil, nil, "")

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "closed")

	assert.False(t, res.Success)
	assert.Equal(t, CodeLeadNotFound, res.ErrorCode)
	assert.Equal(t, apperr.KindNotFound, FailureKind(res.ErrorCode))
	assert.Empty(t, repo.activities)
}
