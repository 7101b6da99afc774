// Package service implements superadmin administration of modules, plans
// and verticals.
package service

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/subscription/domain"
	"inmo_crm_backend/internal/subscription/repository"
	"inmo_crm_backend/platform/apperr"
	"inmo_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgModuleNotFound   = "módulo no encontrado"
	msgPlanNotFound     = "plan no encontrado"
	msgVerticalNotFound = "vertical no encontrada"
	msgCategoryNotFound = "categoría no encontrada"
	msgNotAssigned      = "el módulo no está asignado al plan"
	msgDuplicateCode    = "ya existe un registro con ese código"
	msgInUse            = "otro módulo depende de este registro"
	msgInvalidCode      = "el código solo admite minúsculas, números, guiones y guiones bajos"
	msgDatabase         = "no se pudo completar la operación"

	CodeDependenciesRequired = "DEPENDENCIES_REQUIRED"
	CodeModuleLocked         = "MODULE_LOCKED"
	CodeInvalidLimits        = "INVALID_LIMITS"
)

var codePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type Repository interface {
	ListModules(ctx context.Context) ([]repository.Module, error)
	GetModule(ctx context.Context, id uuid.UUID) (repository.Module, error)
	CreateModule(ctx context.Context, m repository.Module) (repository.Module, error)
	UpdateModule(ctx context.Context, id uuid.UUID, u repository.ModuleUpdate) (repository.Module, error)
	DeleteModule(ctx context.Context, id uuid.UUID) error
	ReplaceDependencies(ctx context.Context, moduleID uuid.UUID, codes []string) error

	ListPlans(ctx context.Context) ([]repository.Plan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (repository.Plan, error)
	CreatePlan(ctx context.Context, p repository.Plan) (repository.Plan, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, u repository.PlanUpdate) (repository.Plan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
	ListAssignments(ctx context.Context, planID uuid.UUID) ([]repository.Assignment, error)
	AssignModules(ctx context.Context, planID uuid.UUID, moduleIDs []uuid.UUID) error
	UnassignModule(ctx context.Context, planID, moduleID uuid.UUID) error
	UpdateLimits(ctx context.Context, planID, moduleID uuid.UUID, limits map[string]any) error

	ListVerticals(ctx context.Context) ([]repository.Vertical, error)
	GetVertical(ctx context.Context, id uuid.UUID) (repository.Vertical, error)
	CreateVertical(ctx context.Context, v repository.Vertical) (repository.Vertical, error)
	UpdateVertical(ctx context.Context, id uuid.UUID, u repository.VerticalUpdate) (repository.Vertical, error)
	DeleteVertical(ctx context.Context, id uuid.UUID) error
	ReplaceVerticalModules(ctx context.Context, verticalID uuid.UUID, moduleIDs []uuid.UUID) error
	ListCategories(ctx context.Context, verticalID uuid.UUID) ([]repository.Category, error)
	CreateCategory(ctx context.Context, c repository.Category) (repository.Category, error)
	DeleteCategory(ctx context.Context, verticalID, categoryID uuid.UUID) error
}

// ModuleCache holds the module list between writes. Errors are logged and
// the service falls back to the database.
type ModuleCache interface {
	GetModules(ctx context.Context) ([]repository.Module, bool, error)
	SetModules(ctx context.Context, modules []repository.Module) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	repo    Repository
	cache   ModuleCache
	catalog *domain.LimitsCatalog
	bus     events.Bus
	log     *logger.Logger
}

func New(repo Repository, cache ModuleCache, catalog *domain.LimitsCatalog, bus events.Bus, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewWithWriter("production", io.Discard)
	}
	return &Service{repo: repo, cache: cache, catalog: catalog, bus: bus, log: log}
}

// LimitsCatalog returns the keys accepted in plan-module limits.
func (s *Service) LimitsCatalog() *domain.LimitsCatalog {
	return s.catalog
}

// modules reads through the cache.
func (s *Service) modules(ctx context.Context) ([]repository.Module, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetModules(ctx)
		if err != nil {
			s.log.WithContext(ctx).Warn("module cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetModules(ctx, modules); err != nil {
			s.log.WithContext(ctx).Warn("module cache write failed", "error", err)
		}
	}
	return modules, nil
}

func (s *Service) invalidateModules(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithContext(ctx).Warn("module cache invalidation failed", "error", err)
	}
}

func normalizeCode(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !codePattern.MatchString(code) {
		return "", apperr.Validation(msgInvalidCode)
	}
	return code, nil
}

func normalizeCodePtr(code *string) (*string, error) {
	if code == nil {
		return nil, nil
	}
	normalized, err := normalizeCode(*code)
	if err != nil {
		return nil, err
	}
	return &normalized, nil
}

func mapRepoError(op, notFound string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicateCode):
		return apperr.Conflict(msgDuplicateCode)
	case errors.Is(err, repository.ErrInUse):
		return apperr.Conflict(msgInUse).WithCode(CodeModuleLocked)
	default:
		return dbError(op, err)
	}
}

func dbError(op string, err error) error {
	return apperr.Wrap(apperr.KindInternal, msgDatabase, err).WithOp(op)
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
