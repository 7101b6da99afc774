package service

import (
	"context"

	"inmo_crm_backend/internal/subscription/repository"
	"inmo_crm_backend/internal/subscription/transport"
	"inmo_crm_backend/platform/apperr"
	"inmo_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

func (s *Service) ListVerticals(ctx context.Context) ([]transport.VerticalResponse, error) {
	verticals, err := s.repo.ListVerticals(ctx)
	if err != nil {
		return nil, dbError("subscription.ListVerticals", err)
	}
	out := make([]transport.VerticalResponse, 0, len(verticals))
	for _, v := range verticals {
		out = append(out, toVerticalResponse(v))
	}
	return out, nil
}

func (s *Service) GetVertical(ctx context.Context, id uuid.UUID) (transport.VerticalResponse, error) {
	v, err := s.repo.GetVertical(ctx, id)
	if err != nil {
		return transport.VerticalResponse{}, mapRepoError("subscription.GetVertical", msgVerticalNotFound, err)
	}
	return toVerticalResponse(v), nil
}

func (s *Service) CreateVertical(ctx context.Context, req transport.CreateVerticalRequest) (transport.VerticalResponse, error) {
	code, err := normalizeCode(req.Code)
	if err != nil {
		return transport.VerticalResponse{}, err
	}
	created, err := s.repo.CreateVertical(ctx, repository.Vertical{
		ID:          uuid.New(),
		Code:        code,
		Name:        sanitize.Text(req.Name),
		Description: nonEmpty(sanitize.Text(req.Description)),
		IsActive:    boolOr(req.IsActive, true),
	})
	if err != nil {
		return transport.VerticalResponse{}, mapRepoError("subscription.CreateVertical", msgVerticalNotFound, err)
	}
	return toVerticalResponse(created), nil
}

func (s *Service) UpdateVertical(ctx context.Context, id uuid.UUID, req transport.UpdateVerticalRequest) (transport.VerticalResponse, error) {
	code, err := normalizeCodePtr(req.Code)
	if err != nil {
		return transport.VerticalResponse{}, err
	}
	updated, err := s.repo.UpdateVertical(ctx, id, repository.VerticalUpdate{
		Code:        code,
		Name:        sanitize.TextPtr(req.Name),
		Description: sanitize.TextPtr(req.Description),
		IsActive:    req.IsActive,
	})
	if err != nil {
		return transport.VerticalResponse{}, mapRepoError("subscription.UpdateVertical", msgVerticalNotFound, err)
	}
	return toVerticalResponse(updated), nil
}

func (s *Service) DeleteVertical(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteVertical(ctx, id); err != nil {
		return mapRepoError("subscription.DeleteVertical", msgVerticalNotFound, err)
	}
	return nil
}

// SetVerticalModules replaces the vertical's module set; every id must be a known module.
func (s *Service) SetVerticalModules(ctx context.Context, id uuid.UUID, moduleIDs []uuid.UUID) (transport.VerticalResponse, error) {
	if _, err := s.repo.GetVertical(ctx, id); err != nil {
		return transport.VerticalResponse{}, mapRepoError("subscription.SetVerticalModules", msgVerticalNotFound, err)
	}
	modules, err := s.modules(ctx)
	if err != nil {
		return transport.VerticalResponse{}, dbError("subscription.SetVerticalModules", err)
	}
	known := make(map[uuid.UUID]bool, len(modules))
	for _, m := range modules {
		known[m.ID] = true
	}

	unique := make([]uuid.UUID, 0, len(moduleIDs))
	seen := map[uuid.UUID]bool{}
	for _, moduleID := range moduleIDs {
		if !known[moduleID] {
			return transport.VerticalResponse{}, apperr.Validation(msgModuleNotFound).WithDetails(map[string]any{"moduleId": moduleID})
		}
		if !seen[moduleID] {
			seen[moduleID] = true
			unique = append(unique, moduleID)
		}
	}

	if err := s.repo.ReplaceVerticalModules(ctx, id, unique); err != nil {
		return transport.VerticalResponse{}, dbError("subscription.SetVerticalModules", err)
	}
	return s.GetVertical(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context, verticalID uuid.UUID) ([]transport.CategoryResponse, error) {
	if _, err := s.repo.GetVertical(ctx, verticalID); err != nil {
		return nil, mapRepoError("subscription.ListCategories", msgVerticalNotFound, err)
	}
	categories, err := s.repo.ListCategories(ctx, verticalID)
	if err != nil {
		return nil, dbError("subscription.ListCategories", err)
	}
	out := make([]transport.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, verticalID uuid.UUID, req transport.CreateCategoryRequest) (transport.CategoryResponse, error) {
	if _, err := s.repo.GetVertical(ctx, verticalID); err != nil {
		return transport.CategoryResponse{}, mapRepoError("subscription.CreateCategory", msgVerticalNotFound, err)
	}
	code, err := normalizeCode(req.Code)
	if err != nil {
		return transport.CategoryResponse{}, err
	}
	created, err := s.repo.CreateCategory(ctx, repository.Category{
		ID:         uuid.New(),
		VerticalID: verticalID,
		Code:       code,
		Name:       sanitize.Text(req.Name),
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		return transport.CategoryResponse{}, mapRepoError("subscription.CreateCategory", msgCategoryNotFound, err)
	}
	return toCategoryResponse(created), nil
}

func (s *Service) DeleteCategory(ctx context.Context, verticalID, categoryID uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, verticalID, categoryID); err != nil {
		return mapRepoError("subscription.DeleteCategory", msgCategoryNotFound, err)
	}
	return nil
}

func toVerticalResponse(v repository.Vertical) transport.VerticalResponse {
	moduleIDs := v.ModuleIDs
	if moduleIDs == nil {
		moduleIDs = []uuid.UUID{}
	}
	return transport.VerticalResponse{
		ID:          v.ID,
		Code:        v.Code,
		Name:        v.Name,
		Description: v.Description,
		IsActive:    v.IsActive,
		ModuleIDs:   moduleIDs,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toCategoryResponse(c repository.Category) transport.CategoryResponse {
	return transport.CategoryResponse{
		ID:         c.ID,
		VerticalID: c.VerticalID,
		Code:       c.Code,
		Name:       c.Name,
		SortOrder:  c.SortOrder,
		CreatedAt:  c.CreatedAt,
	}
}
