package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/subscription/domain"
	"inmo_crm_backend/internal/subscription/repository"
	"inmo_crm_backend/internal/subscription/transport"
	"inmo_crm_backend/platform/apperr"
	"inmo_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPlanCurrency = "MXN"
	defaultBilling      = "monthly"
)

func (s *Service) ListPlans(ctx context.Context) ([]transport.PlanResponse, error) {
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, dbError("subscription.ListPlans", err)
	}
	out := make([]transport.PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	return out, nil
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (transport.PlanResponse, error) {
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return transport.PlanResponse{}, mapRepoError("subscription.GetPlan", msgPlanNotFound, err)
	}
	return toPlanResponse(p), nil
}

func (s *Service) CreatePlan(ctx context.Context, req transport.CreatePlanRequest) (transport.PlanResponse, error) {
	code, err := normalizeCode(req.Code)
	if err != nil {
		return transport.PlanResponse{}, err
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultPlanCurrency
	}
	billing := req.BillingPeriod
	if billing == "" {
		billing = defaultBilling
	}

	created, err := s.repo.CreatePlan(ctx, repository.Plan{
		ID:            uuid.New(),
		Code:          code,
		Name:          sanitize.Text(req.Name),
		Description:   nonEmpty(sanitize.Text(req.Description)),
		Price:         req.Price,
		Currency:      currency,
		BillingPeriod: billing,
		IsActive:      boolOr(req.IsActive, true),
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		return transport.PlanResponse{}, mapRepoError("subscription.CreatePlan", msgPlanNotFound, err)
	}
	return toPlanResponse(created), nil
}

func (s *Service) UpdatePlan(ctx context.Context, id uuid.UUID, req transport.UpdatePlanRequest) (transport.PlanResponse, error) {
	code, err := normalizeCodePtr(req.Code)
	if err != nil {
		return transport.PlanResponse{}, err
	}
	var currency *string
	if req.Currency != nil {
		v := strings.ToUpper(strings.TrimSpace(*req.Currency))
		currency = &v
	}

	updated, err := s.repo.UpdatePlan(ctx, id, repository.PlanUpdate{
		Code:          code,
		Name:          sanitize.TextPtr(req.Name),
		Description:   sanitize.TextPtr(req.Description),
		Price:         req.Price,
		Currency:      currency,
		BillingPeriod: req.BillingPeriod,
		IsActive:      req.IsActive,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		return transport.PlanResponse{}, mapRepoError("subscription.UpdatePlan", msgPlanNotFound, err)
	}
	return toPlanResponse(updated), nil
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		return mapRepoError("subscription.DeletePlan", msgPlanNotFound, err)
	}
	return nil
}

// planState is the plan with its module graph loaded.
type planState struct {
	modules     []repository.Module
	byID        map[uuid.UUID]repository.Module
	byCode      map[string]repository.Module
	assignments map[uuid.UUID]repository.Assignment
	graph       *domain.Graph
}

func (s *Service) loadPlanState(ctx context.Context, planID uuid.UUID, op string) (*planState, error) {
	if _, err := s.repo.GetPlan(ctx, planID); err != nil {
		return nil, mapRepoError(op, msgPlanNotFound, err)
	}
	modules, err := s.modules(ctx)
	if err != nil {
		return nil, dbError(op, err)
	}
	assignments, err := s.repo.ListAssignments(ctx, planID)
	if err != nil {
		return nil, dbError(op, err)
	}

	st := &planState{
		modules:     modules,
		byID:        make(map[uuid.UUID]repository.Module, len(modules)),
		byCode:      make(map[string]repository.Module, len(modules)),
		assignments: make(map[uuid.UUID]repository.Assignment, len(assignments)),
	}
	for _, m := range modules {
		st.byID[m.ID] = m
		st.byCode[m.Code] = m
	}
	assignedCodes := make([]string, 0, len(assignments))
	for _, a := range assignments {
		st.assignments[a.ModuleID] = a
		assignedCodes = append(assignedCodes, a.ModuleCode)
	}
	st.graph = domain.NewGraph(toNodes(modules), assignedCodes)
	return st, nil
}

// PlanModules lists every module with its assignment status for the plan.
func (s *Service) PlanModules(ctx context.Context, planID uuid.UUID) (transport.PlanModulesResponse, error) {
	st, err := s.loadPlanState(ctx, planID, "subscription.PlanModules")
	if err != nil {
		return transport.PlanModulesResponse{}, err
	}

	resp := transport.PlanModulesResponse{PlanID: planID, Modules: make([]transport.PlanModuleStatus, 0, len(st.modules))}
	for _, m := range st.modules {
		deps := m.DependsOn
		if deps == nil {
			deps = []string{}
		}
		status := transport.PlanModuleStatus{
			ModuleID:            m.ID,
			Code:                m.Code,
			Name:                m.Name,
			IsCore:              m.IsCore,
			IsActive:            m.IsActive,
			Assigned:            st.graph.IsAssigned(m.Code),
			Blocked:             st.graph.IsBlocked(m.Code),
			Locked:              st.graph.IsAssigned(m.Code) && st.graph.CantUnassign(m.Code),
			DependsOn:           deps,
			MissingDependencies: st.graph.MissingDependencies(m.Code),
			Dependents:          st.graph.Dependents(m.Code),
			FeatureLevel:        domain.FeatureLevel(m.Metadata, m.IsCore),
		}
		if a, ok := st.assignments[m.ID]; ok {
			status.Limits = a.Limits
		}
		resp.Modules = append(resp.Modules, status)
	}
	return resp, nil
}

// AssignModule adds a module to the plan. Missing dependencies are either
// refused with DEPENDENCIES_REQUIRED or, with autoAssign, added together
// with the module in one transaction.
func (s *Service) AssignModule(ctx context.Context, planID, moduleID uuid.UUID, autoAssign bool) (transport.AssignResult, error) {
	st, err := s.loadPlanState(ctx, planID, "subscription.AssignModule")
	if err != nil {
		return transport.AssignResult{}, err
	}
	module, ok := st.byID[moduleID]
	if !ok {
		return transport.AssignResult{}, apperr.NotFound(msgModuleNotFound)
	}
	if !module.IsActive {
		return transport.AssignResult{}, apperr.Validation(fmt.Sprintf("el módulo %s está inactivo", module.Code))
	}

	result := transport.AssignResult{PlanID: planID, Assigned: []string{}}
	if st.graph.IsAssigned(module.Code) {
		return result, nil
	}

	missing := st.graph.MissingDependencies(module.Code)
	if len(missing) > 0 && !autoAssign {
		return transport.AssignResult{}, apperr.Conflict(
			fmt.Sprintf("el módulo %s requiere: %s", module.Code, strings.Join(missing, ", ")),
		).WithCode(CodeDependenciesRequired).WithDetails(map[string]any{"missingDependencies": missing})
	}

	ids := make([]uuid.UUID, 0, len(missing)+1)
	for _, code := range missing {
		dep, ok := st.byCode[code]
		if !ok {
			return transport.AssignResult{}, apperr.Validation(fmt.Sprintf("dependencia desconocida %s", code))
		}
		if !dep.IsActive {
			return transport.AssignResult{}, apperr.Validation(fmt.Sprintf("la dependencia %s está inactiva", code))
		}
		ids = append(ids, dep.ID)
	}
	ids = append(ids, module.ID)

	if err := s.repo.AssignModules(ctx, planID, ids); err != nil {
		return transport.AssignResult{}, dbError("subscription.AssignModule", err)
	}

	result.Assigned = append(append(result.Assigned, missing...), module.Code)
	s.publishPlanChange(ctx, planID, result.Assigned, nil)
	return result, nil
}

// UnassignModule removes a module unless an assigned module depends on it.
func (s *Service) UnassignModule(ctx context.Context, planID, moduleID uuid.UUID) error {
	st, err := s.loadPlanState(ctx, planID, "subscription.UnassignModule")
	if err != nil {
		return err
	}
	module, ok := st.byID[moduleID]
	if !ok {
		return apperr.NotFound(msgModuleNotFound)
	}
	if !st.graph.IsAssigned(module.Code) {
		return apperr.NotFound(msgNotAssigned)
	}
	if dependents := st.graph.Dependents(module.Code); len(dependents) > 0 {
		return apperr.Conflict(
			fmt.Sprintf("no se puede quitar %s, lo requieren: %s", module.Code, strings.Join(dependents, ", ")),
		).WithCode(CodeModuleLocked).WithDetails(map[string]any{"dependents": dependents})
	}

	if err := s.repo.UnassignModule(ctx, planID, moduleID); err != nil {
		return mapRepoError("subscription.UnassignModule", msgNotAssigned, err)
	}
	s.publishPlanChange(ctx, planID, nil, []string{module.Code})
	return nil
}

// UpdateLimits stores a limits bag after checking it against the catalog.
func (s *Service) UpdateLimits(ctx context.Context, planID, moduleID uuid.UUID, limits map[string]any) error {
	if s.catalog != nil {
		if err := s.catalog.Validate(limits); err != nil {
			details := map[string]string{}
			var limitErr *domain.LimitError
			if errors.As(err, &limitErr) {
				details = limitErr.Problems
			}
			return apperr.Validation("límites no válidos").WithCode(CodeInvalidLimits).WithDetails(details)
		}
	}
	if err := s.repo.UpdateLimits(ctx, planID, moduleID, limits); err != nil {
		return mapRepoError("subscription.UpdateLimits", msgNotAssigned, err)
	}
	return nil
}

func (s *Service) publishPlanChange(ctx context.Context, planID uuid.UUID, assigned, unassigned []string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.PlanModulesChanged{
		BaseEvent:  events.NewBaseEvent(uuid.Nil),
		PlanID:     planID,
		Assigned:   assigned,
		Unassigned: unassigned,
	})
}

func toPlanResponse(p repository.Plan) transport.PlanResponse {
	return transport.PlanResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Currency:      p.Currency,
		BillingPeriod: p.BillingPeriod,
		IsActive:      p.IsActive,
		SortOrder:     p.SortOrder,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
