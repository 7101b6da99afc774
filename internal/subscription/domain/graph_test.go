package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func crmNodes() []Node {
	return []Node{
		{Code: "leads"},
		{Code: "agents"},
		{Code: "appointments", DependsOn: []string{"leads", "agents"}},
		{Code: "reminders", DependsOn: []string{"appointments"}},
		{Code: "properties"},
	}
}

func TestBlockedUntilDependencyAssigned(t *testing.T) {
	g := NewGraph(crmNodes(), []string{"leads"})

	assert.True(t, g.IsBlocked("appointments"))
	g.Assign("agents")
	assert.False(t, g.IsBlocked("appointments"))
	assert.False(t, g.IsBlocked("properties"))
}

func TestCantUnassignWhileDependentAssigned(t *testing.T) {
	g := NewGraph(crmNodes(), []string{"leads", "agents", "appointments"})

	assert.True(t, g.CantUnassign("leads"))
	assert.Equal(t, []string{"appointments"}, g.Dependents("agents"))

	g.Unassign("appointments")
	assert.False(t, g.CantUnassign("leads"))
	assert.Empty(t, g.Dependents("agents"))
}

func TestMissingDependenciesIsTransitiveAndOrdered(t *testing.T) {
	g := NewGraph(crmNodes(), []string{"agents"})

	assert.Equal(t, []string{"leads", "appointments"}, g.MissingDependencies("reminders"))

	g.Assign(g.MissingDependencies("reminders")...)
	g.Assign("reminders")
	assert.False(t, g.IsBlocked("reminders"))
	assert.Empty(t, g.MissingDependencies("reminders"))
}

func TestCheckDependencies(t *testing.T) {
	cases := []struct {
		name    string
		code    string
		deps    []string
		wantErr bool
	}{
		{name: "valid", code: "properties", deps: []string{"agents"}},
		{name: "self", code: "leads", deps: []string{"leads"}, wantErr: true},
		{name: "unknown", code: "properties", deps: []string{"billing"}, wantErr: true},
		{name: "cycle", code: "leads", deps: []string{"reminders"}, wantErr: true},
		{name: "new module", code: "website", deps: []string{"properties"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckDependencies(tc.code, tc.deps, crmNodes())
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
