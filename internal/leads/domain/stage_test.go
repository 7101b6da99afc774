package domain

import "testing"

func TestNormalizeStageCanonicalIdentity(t *testing.T) {
	for _, stage := range CanonicalStages {
		got, ok := NormalizeStage(string(stage))
		if !ok || got != stage {
			t.Fatalf("expected %q to normalize to itself, got %q (ok=%v)", stage, got, ok)
		}
	}
}

func TestNormalizeStageAliases(t *testing.T) {
	cases := []struct {
		alias string
		want  Stage
	}{
		{"nuevo", StageNew},
		{"Nueva", StageNew},
		{"prospectando", StageProspecting},
		{"Prospección", StageProspecting},
		{"calificación", StageQualification},
		{"CUALIFICACION", StageQualification},
		{"oportunidad", StageOpportunity},
		{" confirmado ", StageConfirmed},
		{"cerrada", StageClosed},
		{"CLOSED", StageClosed},
	}

	for _, tc := range cases {
		got, ok := NormalizeStage(tc.alias)
		if !ok || got != tc.want {
			t.Errorf("NormalizeStage(%q) = %q, %v; want %q", tc.alias, got, ok, tc.want)
		}
	}
}

func TestNormalizeStageUnknown(t *testing.T) {
	for _, raw := range []string{"", "lost", "ganado", "kanban"} {
		if _, ok := NormalizeStage(raw); ok {
			t.Errorf("expected %q to be unknown", raw)
		}
	}
}

func TestEveryAliasTargetsCanonicalStage(t *testing.T) {
	for alias, stage := range stageAliases {
		if !IsCanonical(string(stage)) {
			t.Errorf("alias %q maps to non canonical stage %q", alias, stage)
		}
		if foldStageKey(alias) != alias {
			t.Errorf("alias key %q is not folded", alias)
		}
	}
}

func TestAliasesIncludeCanonicalFirst(t *testing.T) {
	aliases := Aliases(StageProspecting)
	if aliases[0] != "prospecting" {
		t.Fatalf("expected canonical code first, got %v", aliases)
	}
	found := false
	for _, a := range aliases {
		if a == "prospectando" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected prospectando in %v", aliases)
	}
}

func TestTerminalStages(t *testing.T) {
	if !IsTerminal(StageConfirmed) || !IsTerminal(StageClosed) {
		t.Fatalf("confirmed and closed must be terminal")
	}
	if IsTerminal(StageOpportunity) {
		t.Fatalf("opportunity must not be terminal")
	}
}
