package management

import (
	"context"
	"errors"
	"strings"

	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/leads/domain"
	"inmo_crm_backend/internal/leads/repository"
	"inmo_crm_backend/internal/leads/transport"
	"inmo_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// Stage transition failure codes.
const (
	CodeLeadNotFound  = "LEAD_NOT_FOUND"
	CodeAmbiguousLead = "AMBIGUOUS_LEAD"
	CodeInvalidStage  = "INVALID_STAGE"
	CodeStageConflict = "STAGE_CONFLICT"
	CodeDatabaseError = "DATABASE_ERROR"
)

const (
	msgAmbiguousLead = "más de un lead coincide con el identificador"
	msgStageConflict = "la etapa del lead cambió durante la actualización, recarga e intenta de nuevo"
)

// FailureKind maps a stage transition failure code to the error kind that
// decides its HTTP status.
func FailureKind(code string) apperr.Kind {
	switch code {
	case CodeLeadNotFound:
		return apperr.KindNotFound
	case CodeAmbiguousLead, CodeStageConflict:
		return apperr.KindConflict
	case CodeInvalidStage:
		return apperr.KindValidation
	case CodeDatabaseError:
		return apperr.KindInternal
	default:
		return apperr.KindUnknown
	}
}

// UpdateStage moves a lead to target. leadRef is the lead id or a legacy
// identifier stored in lead_aliases or the lead metadata. Failures are
// reported in the response rather than returned as errors.
func (s *Service) UpdateStage(ctx context.Context, tenantID, actorID uuid.UUID, leadRef, target string) transport.StageTransitionResponse {
	leadRef = strings.TrimSpace(leadRef)
	result := transport.StageTransitionResponse{LeadID: leadRef}

	next, ok := domain.NormalizeStage(target)
	if !ok {
		return s.stageFailure(result, CodeInvalidStage, msgInvalidStage)
	}

	lead, code, err := s.resolveStageLead(ctx, tenantID, leadRef)
	if err != nil {
		s.logger(ctx).DatabaseError("leads.UpdateStage.resolve", err)
		return s.stageFailure(result, CodeDatabaseError, msgDatabase)
	}
	switch code {
	case CodeLeadNotFound:
		return s.stageFailure(result, code, msgLeadNotFound)
	case CodeAmbiguousLead:
		return s.stageFailure(result, code, msgAmbiguousLead)
	}

	result.LeadID = lead.ID.String()
	result.LeadName = lead.Name
	previous := reportedStage(lead.Stage)
	result.PreviousStage = previous

	// A closed lead moved to any other stage is reopened, even onto its stored stage.
	reopening := strings.EqualFold(lead.Status, domain.StatusClosed) && next != domain.StageClosed

	switch {
	case domain.IsTerminal(next):
		if err := s.repo.WriteStage(ctx, lead.ID, tenantID, string(next)); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return s.stageFailure(result, CodeLeadNotFound, msgLeadNotFound)
			}
			s.logger(ctx).DatabaseError("leads.UpdateStage.write", err)
			return s.stageFailure(result, CodeDatabaseError, msgDatabase)
		}
	case previous == string(next) && !reopening:
		result.Success = true
		result.NewStage = previous
		s.transitions.WithLabelValues("unchanged").Inc()
		return result
	default:
		applied, err := s.repo.CompareAndSetStage(ctx, lead.ID, tenantID, lead.Stage, string(next))
		if err != nil {
			s.logger(ctx).DatabaseError("leads.UpdateStage.compareAndSet", err)
			return s.stageFailure(result, CodeDatabaseError, msgDatabase)
		}
		if !applied {
			return s.stageFailure(result, CodeStageConflict, msgStageConflict)
		}
	}

	result.Success = true
	result.StageChanged = true
	result.NewStage = string(next)
	s.transitions.WithLabelValues("changed").Inc()

	meta := map[string]any{
		"from": previous,
		"to":   string(next),
	}
	if reopening {
		meta["reopened"] = true
	}
	s.addActivity(ctx, lead.ID, tenantID, actorID, "stage_changed", meta)
	s.publish(ctx, events.LeadStageChanged{
		BaseEvent:     events.NewBaseEvent(tenantID),
		LeadID:        lead.ID,
		PreviousStage: previous,
		NewStage:      string(next),
		ActorID:       actorID,
	})

	return result
}

// resolveStageLead finds the lead by id, then by recorded alias, then by the
// legacy metadata keys in order. A metadata hit is recorded as an alias so the
// next lookup is indexed.
func (s *Service) resolveStageLead(ctx context.Context, tenantID uuid.UUID, ref string) (repository.StageCandidate, string, error) {
	if id, err := uuid.Parse(ref); err == nil {
		rows, err := s.repo.FindStageCandidates(ctx, id, tenantID)
		if err != nil {
			return repository.StageCandidate{}, "", err
		}
		if len(rows) > 1 {
			return repository.StageCandidate{}, CodeAmbiguousLead, nil
		}
		if len(rows) == 1 {
			return rows[0], "", nil
		}
	}
	if ref == "" {
		return repository.StageCandidate{}, CodeLeadNotFound, nil
	}

	aliased, err := s.repo.FindByAlias(ctx, tenantID, ref)
	if err != nil {
		return repository.StageCandidate{}, "", err
	}
	if aliased != nil {
		return *aliased, "", nil
	}

	for _, key := range domain.LegacyIDKeys {
		rows, err := s.repo.FindByMetadataKey(ctx, tenantID, key, ref)
		if err != nil {
			return repository.StageCandidate{}, "", err
		}
		if len(rows) == 0 {
			continue
		}
		if err := s.repo.RecordAlias(ctx, tenantID, ref, rows[0].ID); err != nil {
			s.logger(ctx).Warn("failed to record lead alias", "leadId", rows[0].ID, "key", key, "error", err)
		}
		return rows[0], "", nil
	}

	return repository.StageCandidate{}, CodeLeadNotFound, nil
}

func (s *Service) stageFailure(result transport.StageTransitionResponse, code, message string) transport.StageTransitionResponse {
	result.Success = false
	result.StageChanged = false
	result.ErrorCode = code
	result.Error = message
	s.transitions.WithLabelValues(strings.ToLower(code)).Inc()
	return result
}

// reportedStage is the canonical form of a stored stage, or the raw value when
// it is not a known alias.
func reportedStage(stored string) string {
	if stage, ok := domain.NormalizeStage(stored); ok {
		return string(stage)
	}
	return stored
}
