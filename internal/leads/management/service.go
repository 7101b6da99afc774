// Package management implements lead CRUD, stage transitions and the sales funnel.
package management

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"time"

	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/leads/domain"
	"inmo_crm_backend/internal/leads/ports"
	"inmo_crm_backend/internal/leads/repository"
	"inmo_crm_backend/internal/leads/transport"
	"inmo_crm_backend/platform/apperr"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/phone"
	"inmo_crm_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	msgLeadNotFound  = "lead no encontrado"
	msgAgentNotFound = "el agente no existe o está inactivo"
	msgDatabase      = "no se pudo completar la operación"
	msgInvalidStage  = "etapa no válida"

	defaultPageSize = 20
	activityLimit   = 100
)

// Repository is the persistence the service depends on.
type Repository interface {
	Create(ctx context.Context, lead repository.Lead) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error)
	ListAllByTenant(ctx context.Context, tenantID uuid.UUID) ([]repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	RecordContact(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, at time.Time, next *time.Time) (repository.Lead, error)
	AddActivity(ctx context.Context, leadID uuid.UUID, tenantID uuid.UUID, actorID uuid.UUID, action string, meta map[string]any) error
	ListActivity(ctx context.Context, leadID uuid.UUID, tenantID uuid.UUID, limit int) ([]repository.Activity, error)

	FindStageCandidates(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) ([]repository.StageCandidate, error)
	FindByAlias(ctx context.Context, tenantID uuid.UUID, externalID string) (*repository.StageCandidate, error)
	FindByMetadataKey(ctx context.Context, tenantID uuid.UUID, key, value string) ([]repository.StageCandidate, error)
	RecordAlias(ctx context.Context, tenantID uuid.UUID, externalID string, leadID uuid.UUID) error
	WriteStage(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, stage string) error
	CompareAndSetStage(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, prev, next string) (bool, error)
}

type Service struct {
	repo        Repository
	agents      ports.AgentDirectory
	bus         events.Bus
	log         *logger.Logger
	phoneRegion string
	transitions *prometheus.CounterVec
}

func New(repo Repository, agents ports.AgentDirectory, bus events.Bus, log *logger.Logger, phoneRegion string) *Service {
	if log == nil {
		log = logger.NewWithWriter("production", io.Discard)
	}
	if phoneRegion == "" {
		phoneRegion = phone.DefaultRegion
	}
	return &Service{
		repo:        repo,
		agents:      agents,
		bus:         bus,
		log:         log,
		phoneRegion: phoneRegion,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lead_stage_transitions_total",
			Help: "Lead stage transition attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Collectors exposes the service metrics for registration.
func (s *Service) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.transitions}
}

func (s *Service) Create(ctx context.Context, tenantID, actorID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	stage := domain.StageNew
	if strings.TrimSpace(req.Stage) != "" {
		normalized, ok := domain.NormalizeStage(req.Stage)
		if !ok {
			return transport.LeadResponse{}, apperr.Validation(msgInvalidStage).WithCode(CodeInvalidStage)
		}
		stage = normalized
	}
	if err := validateBudget(req.BudgetMin, req.BudgetMax); err != nil {
		return transport.LeadResponse{}, err
	}
	if req.AgentID != nil {
		if err := s.ensureAgent(ctx, tenantID, *req.AgentID); err != nil {
			return transport.LeadResponse{}, err
		}
	}

	status := domain.StatusOpen
	if stage == domain.StageClosed {
		status = domain.StatusClosed
	}

	lead := repository.Lead{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Name:           sanitize.Text(req.Name),
		Email:          optionalLower(req.Email),
		Phone:          optionalPhone(req.Phone, s.phoneRegion),
		Status:         status,
		Stage:          string(stage),
		AgentID:        req.AgentID,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		PropertyType:   optional(req.PropertyType),
		PreferredZones: cleanZones(req.PreferredZones),
		InterestLevel:  optional(req.InterestLevel),
		Source:         optional(sanitize.Text(req.Source)),
		Notes:          optional(sanitize.Text(req.Notes)),
		Metadata:       req.Metadata,
		NextContactAt:  req.NextContactAt,
	}

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return transport.LeadResponse{}, s.dbError("leads.Create", err)
	}

	s.recordLegacyAliases(ctx, created)
	s.addActivity(ctx, created.ID, tenantID, actorID, "created", map[string]any{"stage": created.Stage})
	s.publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(tenantID),
		LeadID:    created.ID,
		AgentID:   created.AgentID,
		Source:    derefString(created.Source),
	})

	return toLeadResponse(created), nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.LeadResponse{}, s.mapRepoError("leads.GetByID", err)
	}
	return toLeadResponse(lead), nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	params := repository.ListParams{
		TenantID:  tenantID,
		Search:    req.Search,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}
	if req.Stage != "" {
		stage, ok := domain.NormalizeStage(req.Stage)
		if !ok {
			return transport.LeadListResponse{}, apperr.Validation(msgInvalidStage).WithCode(CodeInvalidStage)
		}
		params.StageValues = domain.Aliases(stage)
	}
	if req.Status != "" {
		params.Status = &req.Status
	}
	if req.PropertyType != "" {
		params.PropertyType = &req.PropertyType
	}
	switch req.AgentID {
	case "":
	case "none":
		params.Unassigned = true
	default:
		agentID, err := uuid.Parse(req.AgentID)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation("agentId no válido")
		}
		params.AgentID = &agentID
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, s.dbError("leads.List", err)
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadResponse(lead))
	}

	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func (s *Service) Update(ctx context.Context, tenantID, actorID, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	if req.BudgetMin.Set && req.BudgetMax.Set {
		if err := validateBudget(req.BudgetMin.Value, req.BudgetMax.Value); err != nil {
			return transport.LeadResponse{}, err
		}
	}
	if req.AgentID.Set && req.AgentID.Value != nil {
		if err := s.ensureAgent(ctx, tenantID, *req.AgentID.Value); err != nil {
			return transport.LeadResponse{}, err
		}
	}

	params := repository.UpdateLeadParams{
		Name:           sanitize.TextPtr(req.Name),
		Email:          lowerPtr(req.Email),
		Phone:          phone.NormalizePtr(req.Phone, s.phoneRegion),
		Status:         req.Status,
		AgentID:        req.AgentID.Value,
		AgentIDSet:     req.AgentID.Set,
		BudgetMin:      req.BudgetMin.Value,
		BudgetMinSet:   req.BudgetMin.Set,
		BudgetMax:      req.BudgetMax.Value,
		BudgetMaxSet:   req.BudgetMax.Set,
		PropertyType:   req.PropertyType,
		PreferredZones: req.PreferredZones,
		InterestLevel:  req.InterestLevel,
		Source:         sanitize.TextPtr(req.Source),
		Notes:          sanitize.TextPtr(req.Notes),
		Metadata:       req.Metadata,
		NextContactAt:  req.NextContactAt,
	}
	if params.PreferredZones != nil {
		params.PreferredZones = cleanZones(params.PreferredZones)
	}

	updated, err := s.repo.Update(ctx, id, tenantID, params)
	if err != nil {
		return transport.LeadResponse{}, s.mapRepoError("leads.Update", err)
	}

	if req.Metadata != nil {
		s.recordLegacyAliases(ctx, updated)
	}
	s.addActivity(ctx, id, tenantID, actorID, "updated", nil)
	return toLeadResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, tenantID); err != nil {
		return s.mapRepoError("leads.Delete", err)
	}
	return nil
}

// Assign sets or clears the responsible agent.
func (s *Service) Assign(ctx context.Context, tenantID, actorID, id uuid.UUID, agentID *uuid.UUID) (transport.LeadResponse, error) {
	if agentID != nil {
		if err := s.ensureAgent(ctx, tenantID, *agentID); err != nil {
			return transport.LeadResponse{}, err
		}
	}

	updated, err := s.repo.Update(ctx, id, tenantID, repository.UpdateLeadParams{AgentID: agentID, AgentIDSet: true})
	if err != nil {
		return transport.LeadResponse{}, s.mapRepoError("leads.Assign", err)
	}

	meta := map[string]any{"agentId": nil}
	if agentID != nil {
		meta["agentId"] = agentID.String()
	}
	s.addActivity(ctx, id, tenantID, actorID, "assigned", meta)
	s.publish(ctx, events.LeadAssigned{BaseEvent: events.NewBaseEvent(tenantID), LeadID: id, AgentID: agentID})

	return toLeadResponse(updated), nil
}

func (s *Service) RecordContact(ctx context.Context, tenantID, actorID, id uuid.UUID, req transport.RecordContactRequest) (transport.LeadResponse, error) {
	updated, err := s.repo.RecordContact(ctx, id, tenantID, time.Now().UTC(), req.NextContactAt)
	if err != nil {
		return transport.LeadResponse{}, s.mapRepoError("leads.RecordContact", err)
	}

	meta := map[string]any{"channel": req.Channel}
	if notes := sanitize.Text(req.Notes); notes != "" {
		meta["notes"] = notes
	}
	s.addActivity(ctx, id, tenantID, actorID, "contact_recorded", meta)
	return toLeadResponse(updated), nil
}

func (s *Service) ListActivity(ctx context.Context, tenantID, id uuid.UUID) ([]transport.ActivityResponse, error) {
	if _, err := s.repo.GetByID(ctx, id, tenantID); err != nil {
		return nil, s.mapRepoError("leads.ListActivity", err)
	}

	items, err := s.repo.ListActivity(ctx, id, tenantID, activityLimit)
	if err != nil {
		return nil, s.dbError("leads.ListActivity", err)
	}

	out := make([]transport.ActivityResponse, 0, len(items))
	for _, a := range items {
		meta := a.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		out = append(out, transport.ActivityResponse{ID: a.ID, ActorID: a.ActorID, Action: a.Action, Meta: meta, CreatedAt: a.CreatedAt})
	}
	return out, nil
}

func (s *Service) ensureAgent(ctx context.Context, tenantID, agentID uuid.UUID) error {
	if s.agents == nil {
		return nil
	}
	found, err := s.agents.GetAgentsByIDs(ctx, tenantID, []uuid.UUID{agentID})
	if err != nil {
		return s.dbError("leads.ensureAgent", err)
	}
	agent, ok := found[agentID]
	if !ok || !agent.Active {
		return apperr.Validation(msgAgentNotFound)
	}
	return nil
}

// recordLegacyAliases indexes legacy ids carried in metadata so stage
// transitions resolve them through lead_aliases.
func (s *Service) recordLegacyAliases(ctx context.Context, lead repository.Lead) {
	for _, key := range domain.LegacyIDKeys {
		value, ok := metadataString(lead.Metadata, key)
		if !ok {
			continue
		}
		if err := s.repo.RecordAlias(ctx, lead.TenantID, value, lead.ID); err != nil {
			s.logger(ctx).Warn("failed to record lead alias", "leadId", lead.ID, "key", key, "error", err)
		}
	}
}

func (s *Service) addActivity(ctx context.Context, leadID, tenantID, actorID uuid.UUID, action string, meta map[string]any) {
	if err := s.repo.AddActivity(ctx, leadID, tenantID, actorID, action, meta); err != nil {
		s.logger(ctx).Warn("failed to record lead activity", "leadId", leadID, "action", action, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func (s *Service) logger(ctx context.Context) *logger.Logger {
	return s.log.WithContext(ctx)
}

func (s *Service) mapRepoError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound).WithCode(CodeLeadNotFound)
	}
	return s.dbError(op, err)
}

func (s *Service) dbError(op string, err error) error {
	return apperr.Wrap(apperr.KindInternal, msgDatabase, err).WithOp(op).WithCode(CodeDatabaseError)
}

func validateBudget(min, max *float64) error {
	if min != nil && max != nil && *min > *max {
		return apperr.Validation("el presupuesto mínimo no puede superar al máximo")
	}
	return nil
}
