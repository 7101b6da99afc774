package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/subscription/repository"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu           sync.Mutex
	modules      map[uuid.UUID]repository.Module
	plans        map[uuid.UUID]repository.Plan
	assignments  map[uuid.UUID]map[uuid.UUID]map[string]any
	verticals    map[uuid.UUID]repository.Vertical
	categories   map[uuid.UUID]repository.Category
	listCalls    int
	assignCalls  [][]uuid.UUID
	duplicateErr bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		modules:     map[uuid.UUID]repository.Module{},
		plans:       map[uuid.UUID]repository.Plan{},
		assignments: map[uuid.UUID]map[uuid.UUID]map[string]any{},
		verticals:   map[uuid.UUID]repository.Vertical{},
		categories:  map[uuid.UUID]repository.Category{},
	}
}

func (r *fakeRepo) addModule(code string, dependsOn ...string) repository.Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := repository.Module{ID: uuid.New(), Code: code, Name: code, IsActive: true, SortOrder: len(r.modules), DependsOn: dependsOn}
	r.modules[m.ID] = m
	return m
}

func (r *fakeRepo) addPlan(code string) repository.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := repository.Plan{ID: uuid.New(), Code: code, Name: code, Currency: "MXN", BillingPeriod: "monthly", IsActive: true}
	r.plans[p.ID] = p
	r.assignments[p.ID] = map[uuid.UUID]map[string]any{}
	return p
}

func (r *fakeRepo) ListModules(context.Context) ([]repository.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	out := make([]repository.Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *fakeRepo) GetModule(_ context.Context, id uuid.UUID) (repository.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[id]
	if !ok {
		return repository.Module{}, repository.ErrNotFound
	}
	return m, nil
}

func (r *fakeRepo) CreateModule(_ context.Context, m repository.Module) (repository.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.duplicateErr {
		return repository.Module{}, repository.ErrDuplicateCode
	}
	r.modules[m.ID] = m
	return m, nil
}

func (r *fakeRepo) UpdateModule(_ context.Context, id uuid.UUID, u repository.ModuleUpdate) (repository.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[id]
	if !ok {
		return repository.Module{}, repository.ErrNotFound
	}
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.IsActive != nil {
		m.IsActive = *u.IsActive
	}
	r.modules[id] = m
	return m, nil
}

func (r *fakeRepo) DeleteModule(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.modules, id)
	return nil
}

func (r *fakeRepo) ReplaceDependencies(_ context.Context, moduleID uuid.UUID, codes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[moduleID]
	if !ok {
		return repository.ErrNotFound
	}
	m.DependsOn = append([]string{}, codes...)
	r.modules[moduleID] = m
	return nil
}

func (r *fakeRepo) ListPlans(context.Context) ([]repository.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) GetPlan(_ context.Context, id uuid.UUID) (repository.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return repository.Plan{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) CreatePlan(_ context.Context, p repository.Plan) (repository.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[p.ID] = p
	r.assignments[p.ID] = map[uuid.UUID]map[string]any{}
	return p, nil
}

func (r *fakeRepo) UpdatePlan(_ context.Context, id uuid.UUID, u repository.PlanUpdate) (repository.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return repository.Plan{}, repository.ErrNotFound
	}
	if u.Currency != nil {
		p.Currency = *u.Currency
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	r.plans[id] = p
	return p, nil
}

func (r *fakeRepo) DeletePlan(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	delete(r.assignments, id)
	return nil
}

func (r *fakeRepo) ListAssignments(_ context.Context, planID uuid.UUID) ([]repository.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []repository.Assignment{}
	for moduleID, limits := range r.assignments[planID] {
		out = append(out, repository.Assignment{
			PlanID:     planID,
			ModuleID:   moduleID,
			ModuleCode: r.modules[moduleID].Code,
			Limits:     limits,
		})
	}
	return out, nil
}

func (r *fakeRepo) AssignModules(_ context.Context, planID uuid.UUID, moduleIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignCalls = append(r.assignCalls, append([]uuid.UUID{}, moduleIDs...))
	for _, id := range moduleIDs {
		if _, ok := r.assignments[planID][id]; !ok {
			r.assignments[planID][id] = map[string]any{}
		}
	}
	return nil
}

func (r *fakeRepo) UnassignModule(_ context.Context, planID, moduleID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[planID][moduleID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.assignments[planID], moduleID)
	return nil
}

func (r *fakeRepo) UpdateLimits(_ context.Context, planID, moduleID uuid.UUID, limits map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[planID][moduleID]; !ok {
		return repository.ErrNotFound
	}
	r.assignments[planID][moduleID] = limits
	return nil
}

func (r *fakeRepo) ListVerticals(context.Context) ([]repository.Vertical, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.Vertical, 0, len(r.verticals))
	for _, v := range r.verticals {
		out = append(out, v)
	}
	return out, nil
}

func (r *fakeRepo) GetVertical(_ context.Context, id uuid.UUID) (repository.Vertical, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.verticals[id]
	if !ok {
		return repository.Vertical{}, repository.ErrNotFound
	}
	return v, nil
}

func (r *fakeRepo) CreateVertical(_ context.Context, v repository.Vertical) (repository.Vertical, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verticals[v.ID] = v
	return v, nil
}

func (r *fakeRepo) UpdateVertical(_ context.Context, id uuid.UUID, u repository.VerticalUpdate) (repository.Vertical, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.verticals[id]
	if !ok {
		return repository.Vertical{}, repository.ErrNotFound
	}
	if u.Name != nil {
		v.Name = *u.Name
	}
	r.verticals[id] = v
	return v, nil
}

func (r *fakeRepo) DeleteVertical(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.verticals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.verticals, id)
	return nil
}

func (r *fakeRepo) ReplaceVerticalModules(_ context.Context, verticalID uuid.UUID, moduleIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.verticals[verticalID]
	if !ok {
		return repository.ErrNotFound
	}
	v.ModuleIDs = append([]uuid.UUID{}, moduleIDs...)
	r.verticals[verticalID] = v
	return nil
}

func (r *fakeRepo) ListCategories(_ context.Context, verticalID uuid.UUID) ([]repository.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []repository.Category{}
	for _, c := range r.categories {
		if c.VerticalID == verticalID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateCategory(_ context.Context, c repository.Category) (repository.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
	return c, nil
}

func (r *fakeRepo) DeleteCategory(_ context.Context, verticalID, categoryID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[categoryID]
	if !ok || c.VerticalID != verticalID {
		return repository.ErrNotFound
	}
	delete(r.categories, categoryID)
	return nil
}

// memoryCache is a ModuleCache kept in process.
type memoryCache struct {
	mu          sync.Mutex
	modules     []repository.Module
	ok          bool
	getErr      error
	invalidated int
}

func (c *memoryCache) GetModules(context.Context) ([]repository.Module, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.modules, c.ok, nil
}

func (c *memoryCache) SetModules(_ context.Context, modules []repository.Module) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules, c.ok = modules, true
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules, c.ok = nil, false
	c.invalidated++
	return nil
}

var errCacheDown = errors.New("redis: connection refused")

type captureBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *captureBus) Subscribe(string, events.Handler) {}
