package migrations

import (
	"strings"
	"testing"
)

func TestLeadStageAcceptsImportedAliases(t *testing.T) {
	raw, err := FS.ReadFile("00001_leads.sql")
	if err != nil {
		t.Fatalf("read leads migration: %v", err)
	}
	sql := string(raw)
	if strings.Contains(sql, "CHECK (stage IN") {
		t.Fatalf("leads.stage must accept localized values from imported rows")
	}
	if !strings.Contains(sql, "CHECK (btrim(stage) <> '')") {
		t.Fatalf("leads.stage must still reject blank values")
	}
}
