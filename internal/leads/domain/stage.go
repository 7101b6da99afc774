package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stage is a canonical funnel stage code.
type Stage string

const (
	StageNew           Stage = "new"
	StageProspecting   Stage = "prospecting"
	StageQualification Stage = "qualification"
	StageOpportunity   Stage = "opportunity"
	StageConfirmed     Stage = "confirmed"
	StageClosed        Stage = "closed"
)

// CanonicalStages lists every stage in funnel order.
var CanonicalStages = []Stage{
	StageNew, StageProspecting, StageQualification, StageOpportunity, StageConfirmed, StageClosed,
}

// FunnelStages are the stages shown as kanban columns.
var FunnelStages = []Stage{StageNew, StageProspecting, StageQualification, StageOpportunity}

// stageAliases is the single alias table used by transitions, listings and the
// funnel. Keys are lowercase without diacritics; see foldStageKey.
var stageAliases = map[string]Stage{
	"new":           StageNew,
	"prospecting":   StageProspecting,
	"qualification": StageQualification,
	"opportunity":   StageOpportunity,
	"confirmed":     StageConfirmed,
	"closed":        StageClosed,

	"nuevo":  StageNew,
	"nueva":  StageNew,
	"nuevos": StageNew,

	"prospecto":    StageProspecting,
	"prospectos":   StageProspecting,
	"prospectando": StageProspecting,
	"prospeccion":  StageProspecting,

	"calificacion":  StageQualification,
	"cualificacion": StageQualification,
	"calificando":   StageQualification,

	"oportunidad":   StageOpportunity,
	"oportunidades": StageOpportunity,

	"confirmado": StageConfirmed,
	"confirmada": StageConfirmed,

	"cerrado": StageClosed,
	"cerrada": StageClosed,
}

// NormalizeStage maps a canonical code or a localized alias to its canonical
// stage. Matching ignores case, surrounding space and accents.
func NormalizeStage(raw string) (Stage, bool) {
	stage, ok := stageAliases[foldStageKey(raw)]
	return stage, ok
}

// IsCanonical reports whether s is already one of the canonical codes.
func IsCanonical(s string) bool {
	for _, stage := range CanonicalStages {
		if string(stage) == s {
			return true
		}
	}
	return false
}

func IsFunnelStage(s Stage) bool {
	for _, stage := range FunnelStages {
		if stage == s {
			return true
		}
	}
	return false
}

// IsTerminal reports the stages written without the unchanged check.
func IsTerminal(s Stage) bool {
	return s == StageConfirmed || s == StageClosed
}

func foldStageKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return key
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, key)
	if err != nil {
		return key
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(folded, "_", " ")), " ")
}

// Aliases returns every raw value that normalizes to stage, canonical code first.
// List filters use it to match rows still carrying legacy values.
func Aliases(stage Stage) []string {
	out := []string{string(stage)}
	for alias, s := range stageAliases {
		if s == stage && alias != string(stage) {
			out = append(out, alias)
		}
	}
	return out
}
