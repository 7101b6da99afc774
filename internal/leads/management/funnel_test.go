package management

import (
	"context"
	"testing"

	"inmo_crm_backend/internal/leads/ports"
	"inmo_crm_backend/internal/leads/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestFunnelBucketsAndExcludesClosed(t *testing.T) {
	tenantID := uuid.New()
	byStage := map[string]repository.Lead{}
	for _, stage := range []string{"new", "prospectando", "Calificación", "opportunity", "confirmed", "closed", "desconocido"} {
		byStage[stage] = newLead(tenantID, stage)
	}
	closedStatus := newLead(tenantID, "opportunity")
	closedStatus.Status = "closed"

	leads := []repository.Lead{closedStatus}
	for _, l := range byStage {
		leads = append(leads, l)
	}
	svc := New(newFakeRepo(leads...), nil, nil, nil, "")

	board := svc.GetSalesFunnelWithAgents(context.Background(), tenantID)

	assert.False(t, board.Degraded)
	assert.Equal(t, []string{"new", "prospecting", "qualification", "opportunity"}, board.Order)
	require.Len(t, board.Columns, 4)

	ids := func(stage string) []uuid.UUID {
		out := []uuid.UUID{}
		for _, l := range board.Columns[stage] {
			out = append(out, l.ID)
		}
		return out
	}
	assert.ElementsMatch(t, []uuid.UUID{byStage["new"].ID, byStage["desconocido"].ID}, ids("new"))
	assert.Equal(t, []uuid.UUID{byStage["prospectando"].ID}, ids("prospecting"))
	assert.Equal(t, []uuid.UUID{byStage["Calificación"].ID}, ids("qualification"))
	assert.Equal(t, []uuid.UUID{byStage["opportunity"].ID}, ids("opportunity"))

	for _, column := range board.Columns {
		for _, l := range column {
			assert.NotEqual(t, closedStatus.ID, l.ID)
			assert.NotEqual(t, byStage["closed"].ID, l.ID)
			assert.NotEqual(t, byStage["confirmed"].ID, l.ID)
		}
	}
}

func TestFunnelShowsReopenedLeadInItsColumn(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "qualification")
	lead.Status = "closed"
	repo := newFakeRepo(lead)
	svc := New(repo, nil, nil, nil, "")

	before := svc.GetSalesFunnelWithAgents(context.Background(), tenantID)
	for _, column := range before.Columns {
		assert.Empty(t, column)
	}

	res := svc.UpdateStage(context.Background(), tenantID, uuid.New(), lead.ID.String(), "prospecting")
	require.True(t, res.Success, res.Error)

	after := svc.GetSalesFunnelWithAgents(context.Background(), tenantID)
	require.Len(t, after.Columns["prospecting"], 1)
	assert.Equal(t, lead.ID, after.Columns["prospecting"][0].ID)
	assert.Empty(t, after.Columns["qualification"])
}

func TestFunnelJoinsAgentsInOneBatch(t *testing.T) {
	tenantID := uuid.New()
	withName := uuid.New()
	emailOnly := uuid.New()
	missing := uuid.New()

	agents := &fakeAgents{records: map[uuid.UUID]ports.AgentRecord{
		withName:  {ID: withName, Name: "Carlos Ruiz", Email: "carlos@example.com", AvatarURL: strPtr("https://cdn.example.com/c.png")},
		emailOnly: {ID: emailOnly, Email: "maria@example.com", Metadata: map[string]any{"avatar": "https://cdn.example.com/m.png"}},
	}}

	a := newLead(tenantID, "new")
	a.AgentID = &withName
	b := newLead(tenantID, "new")
	b.AgentID = &emailOnly
	c := newLead(tenantID, "new")
	c.AgentID = &missing
	d := newLead(tenantID, "new")
	e := newLead(tenantID, "new")
	e.AgentID = &withName

	svc := New(newFakeRepo(a, b, c, d, e), agents, nil, nil, "")
	board := svc.GetSalesFunnelWithAgents(context.Background(), tenantID)

	assert.Equal(t, 1, agents.calls)
	members := map[uuid.UUID][]string{}
	for _, l := range board.Columns["new"] {
		names := []string{}
		for _, m := range l.Members {
			names = append(names, m.Name)
		}
		members[l.ID] = names
	}
	assert.Equal(t, []string{"Carlos Ruiz"}, members[a.ID])
	assert.Equal(t, []string{"maria@example.com"}, members[b.ID])
	assert.Empty(t, members[c.ID])
	assert.Empty(t, members[d.ID])
	assert.Equal(t, []string{"Carlos Ruiz"}, members[e.ID])

	for _, l := range board.Columns["new"] {
		if l.ID == b.ID {
			require.Len(t, l.Members, 1)
			require.NotNil(t, l.Members[0].Avatar)
			assert.Equal(t, "https://cdn.example.com/m.png", *l.Members[0].Avatar)
		}
	}
}

func TestFunnelSkipsAgentLookupWithoutAssignments(t *testing.T) {
	tenantID := uuid.New()
	agents := &fakeAgents{}
	svc := New(newFakeRepo(newLead(tenantID, "new")), agents, nil, nil, "")

	svc.GetSalesFunnelWithAgents(context.Background(), tenantID)

	assert.Zero(t, agents.calls)
}

func TestFunnelCardFields(t *testing.T) {
	tenantID := uuid.New()
	lead := newLead(tenantID, "opportunity")
	lead.BudgetMin = floatPtr(1_000_000)
	lead.BudgetMax = floatPtr(2_000_000)
	lead.InterestLevel = strPtr("high")
	lead.Metadata = map[string]any{"campaign": "feria-2024"}

	svc := New(newFakeRepo(lead), nil, nil, nil, "")
	board := svc.GetSalesFunnelWithAgents(context.Background(), tenantID)

	require.Len(t, board.Columns["opportunity"], 1)
	card := board.Columns["opportunity"][0]
	require.NotNil(t, card.Budget)
	assert.Equal(t, 1_500_000.0, *card.Budget)
	assert.Equal(t, "alta", card.Priority)
	assert.Equal(t, "feria-2024", card.Metadata["campaign"])
	assert.Equal(t, "alta", card.Metadata["priority"])
	assert.Equal(t, "opportunity", card.Stage)
}

func TestFunnelDegradesToEmptyColumns(t *testing.T) {
	tenantID := uuid.New()

	t.Run("lead query fails", func(t *testing.T) {
		repo := newFakeRepo(newLead(tenantID, "new"))
		repo.listErr = errDatabaseDown
		board := New(repo, nil, nil, nil, "").GetSalesFunnelWithAgents(context.Background(), tenantID)
		assertEmptyBoard(t, board.Columns)
		assert.True(t, board.Degraded)
	})

	t.Run("agent query fails", func(t *testing.T) {
		agentID := uuid.New()
		lead := newLead(tenantID, "new")
		lead.AgentID = &agentID
		agents := &fakeAgents{err: errDatabaseDown}
		board := New(newFakeRepo(lead), agents, nil, nil, "").GetSalesFunnelWithAgents(context.Background(), tenantID)
		assertEmptyBoard(t, board.Columns)
		assert.True(t, board.Degraded)
	})
}

func assertEmptyBoard[T any](t *testing.T, columns map[string][]T) {
	t.Helper()
	require.Len(t, columns, 4)
	for stage, leads := range columns {
		assert.NotNil(t, leads, stage)
		assert.Empty(t, leads, stage)
	}
}
