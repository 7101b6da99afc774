package service

import (
	"context"

	"inmo_crm_backend/internal/subscription/domain"
	"inmo_crm_backend/internal/subscription/repository"
	"inmo_crm_backend/internal/subscription/transport"
	"inmo_crm_backend/platform/apperr"
	"inmo_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

func (s *Service) ListModules(ctx context.Context) ([]transport.ModuleResponse, error) {
	modules, err := s.modules(ctx)
	if err != nil {
		return nil, dbError("subscription.ListModules", err)
	}
	out := make([]transport.ModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, toModuleResponse(m))
	}
	return out, nil
}

func (s *Service) GetModule(ctx context.Context, id uuid.UUID) (transport.ModuleResponse, error) {
	m, err := s.repo.GetModule(ctx, id)
	if err != nil {
		return transport.ModuleResponse{}, mapRepoError("subscription.GetModule", msgModuleNotFound, err)
	}
	return toModuleResponse(m), nil
}

func (s *Service) CreateModule(ctx context.Context, req transport.CreateModuleRequest) (transport.ModuleResponse, error) {
	code, err := normalizeCode(req.Code)
	if err != nil {
		return transport.ModuleResponse{}, err
	}

	created, err := s.repo.CreateModule(ctx, repository.Module{
		ID:          uuid.New(),
		Code:        code,
		Name:        sanitize.Text(req.Name),
		Description: nonEmpty(sanitize.Text(req.Description)),
		IsCore:      req.IsCore,
		IsActive:    boolOr(req.IsActive, true),
		SortOrder:   req.SortOrder,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return transport.ModuleResponse{}, mapRepoError("subscription.CreateModule", msgModuleNotFound, err)
	}
	s.invalidateModules(ctx)
	return toModuleResponse(created), nil
}

func (s *Service) UpdateModule(ctx context.Context, id uuid.UUID, req transport.UpdateModuleRequest) (transport.ModuleResponse, error) {
	code, err := normalizeCodePtr(req.Code)
	if err != nil {
		return transport.ModuleResponse{}, err
	}

	updated, err := s.repo.UpdateModule(ctx, id, repository.ModuleUpdate{
		Code:        code,
		Name:        sanitize.TextPtr(req.Name),
		Description: sanitize.TextPtr(req.Description),
		IsCore:      req.IsCore,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return transport.ModuleResponse{}, mapRepoError("subscription.UpdateModule", msgModuleNotFound, err)
	}
	s.invalidateModules(ctx)
	return toModuleResponse(updated), nil
}

func (s *Service) DeleteModule(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteModule(ctx, id); err != nil {
		return mapRepoError("subscription.DeleteModule", msgModuleNotFound, err)
	}
	s.invalidateModules(ctx)
	return nil
}

// SetDependencies replaces the module's dependency codes after checking
// they exist and do not form a cycle.
func (s *Service) SetDependencies(ctx context.Context, id uuid.UUID, req transport.SetDependenciesRequest) (transport.ModuleResponse, error) {
	target, err := s.repo.GetModule(ctx, id)
	if err != nil {
		return transport.ModuleResponse{}, mapRepoError("subscription.SetDependencies", msgModuleNotFound, err)
	}
	all, err := s.repo.ListModules(ctx)
	if err != nil {
		return transport.ModuleResponse{}, dbError("subscription.SetDependencies", err)
	}

	codes := make([]string, 0, len(req.DependsOn))
	seen := map[string]bool{}
	for _, raw := range req.DependsOn {
		code, err := normalizeCode(raw)
		if err != nil {
			return transport.ModuleResponse{}, err
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	if err := domain.CheckDependencies(target.Code, codes, toNodes(all)); err != nil {
		return transport.ModuleResponse{}, apperr.Validation(err.Error())
	}
	if err := s.repo.ReplaceDependencies(ctx, id, codes); err != nil {
		return transport.ModuleResponse{}, mapRepoError("subscription.SetDependencies", msgModuleNotFound, err)
	}
	s.invalidateModules(ctx)

	updated, err := s.repo.GetModule(ctx, id)
	if err != nil {
		return transport.ModuleResponse{}, mapRepoError("subscription.SetDependencies", msgModuleNotFound, err)
	}
	return toModuleResponse(updated), nil
}

func toNodes(modules []repository.Module) []domain.Node {
	nodes := make([]domain.Node, 0, len(modules))
	for _, m := range modules {
		nodes = append(nodes, domain.Node{Code: m.Code, DependsOn: m.DependsOn})
	}
	return nodes
}

func toModuleResponse(m repository.Module) transport.ModuleResponse {
	metadata := m.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	deps := m.DependsOn
	if deps == nil {
		deps = []string{}
	}
	return transport.ModuleResponse{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		Description:  m.Description,
		IsCore:       m.IsCore,
		IsActive:     m.IsActive,
		SortOrder:    m.SortOrder,
		Metadata:     metadata,
		FeatureLevel: domain.FeatureLevel(metadata, m.IsCore),
		DependsOn:    deps,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
