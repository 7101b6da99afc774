package management

import (
	"context"
	"errors"
	"sync"
	"time"

	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/leads/ports"
	"inmo_crm_backend/internal/leads/repository"

	"github.com/google/uuid"
)

var errDatabaseDown = errors.New("connection refused")

type fakeRepo struct {
	leads       map[uuid.UUID]repository.Lead
	duplicate   map[uuid.UUID]bool
	aliases     map[string]uuid.UUID
	listErr     error
	lookupErr   error
	casConflict bool
	writeErr    error

	writes     []string
	casCalls   []string
	activities []string
}

func newFakeRepo(leads ...repository.Lead) *fakeRepo {
	r := &fakeRepo{
		leads:     map[uuid.UUID]repository.Lead{},
		duplicate: map[uuid.UUID]bool{},
		aliases:   map[string]uuid.UUID{},
	}
	for _, l := range leads {
		r.leads[l.ID] = l
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, lead repository.Lead) (repository.Lead, error) {
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	r.leads[lead.ID] = lead
	return lead, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id, tenantID uuid.UUID) (repository.Lead, error) {
	l, ok := r.leads[id]
	if !ok || l.TenantID != tenantID {
		return repository.Lead{}, repository.ErrNotFound
	}
	return l, nil
}

func (r *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	out := []repository.Lead{}
	for _, l := range r.leads {
		if l.TenantID == params.TenantID {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListAllByTenant(_ context.Context, tenantID uuid.UUID) ([]repository.Lead, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []repository.Lead{}
	for _, l := range r.leads {
		if l.TenantID == tenantID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, id, tenantID uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	l, ok := r.leads[id]
	if !ok || l.TenantID != tenantID {
		return repository.Lead{}, repository.ErrNotFound
	}
	if params.Name != nil {
		l.Name = *params.Name
	}
	if params.AgentIDSet {
		l.AgentID = params.AgentID
	}
	if params.Status != nil {
		l.Status = *params.Status
		if l.Status == "closed" {
			l.Stage = "closed"
		}
	}
	r.leads[id] = l
	return l, nil
}

func (r *fakeRepo) Delete(_ context.Context, id, tenantID uuid.UUID) error {
	l, ok := r.leads[id]
	if !ok || l.TenantID != tenantID {
		return repository.ErrNotFound
	}
	delete(r.leads, id)
	return nil
}

func (r *fakeRepo) RecordContact(_ context.Context, id, tenantID uuid.UUID, at time.Time, next *time.Time) (repository.Lead, error) {
	l, ok := r.leads[id]
	if !ok || l.TenantID != tenantID {
		return repository.Lead{}, repository.ErrNotFound
	}
	l.ContactCount++
	l.LastContactAt = &at
	l.NextContactAt = next
	r.leads[id] = l
	return l, nil
}

func (r *fakeRepo) AddActivity(_ context.Context, _, _, _ uuid.UUID, action string, _ map[string]any) error {
	r.activities = append(r.activities, action)
	return nil
}

func (r *fakeRepo) ListActivity(context.Context, uuid.UUID, uuid.UUID, int) ([]repository.Activity, error) {
	return nil, nil
}

func candidate(l repository.Lead) repository.StageCandidate {
	return repository.StageCandidate{ID: l.ID, Name: l.Name, Stage: l.Stage, Status: l.Status}
}

func (r *fakeRepo) FindStageCandidates(_ context.Context, id, tenantID uuid.UUID) ([]repository.StageCandidate, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	l, ok := r.leads[id]
	if !ok || l.TenantID != tenantID {
		return nil, nil
	}
	if r.duplicate[id] {
		return []repository.StageCandidate{candidate(l), candidate(l)}, nil
	}
	return []repository.StageCandidate{candidate(l)}, nil
}

func (r *fakeRepo) FindByAlias(_ context.Context, tenantID uuid.UUID, externalID string) (*repository.StageCandidate, error) {
	id, ok := r.aliases[tenantID.String()+"/"+externalID]
	if !ok {
		return nil, nil
	}
	c := candidate(r.leads[id])
	return &c, nil
}

func (r *fakeRepo) FindByMetadataKey(_ context.Context, tenantID uuid.UUID, key, value string) ([]repository.StageCandidate, error) {
	for _, l := range r.leads {
		if l.TenantID != tenantID {
			continue
		}
		if v, ok := metadataString(l.Metadata, key); ok && v == value {
			return []repository.StageCandidate{candidate(l)}, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) RecordAlias(_ context.Context, tenantID uuid.UUID, externalID string, leadID uuid.UUID) error {
	r.aliases[tenantID.String()+"/"+externalID] = leadID
	return nil
}

func (r *fakeRepo) WriteStage(_ context.Context, id, _ uuid.UUID, stage string) error {
	r.writes = append(r.writes, stage)
	if r.writeErr != nil {
		return r.writeErr
	}
	l := r.leads[id]
	l.Stage = stage
	l.Status = statusForStage(stage)
	r.leads[id] = l
	return nil
}

func (r *fakeRepo) CompareAndSetStage(_ context.Context, id, _ uuid.UUID, prev, next string) (bool, error) {
	r.casCalls = append(r.casCalls, prev+"->"+next)
	l := r.leads[id]
	if r.casConflict || l.Stage != prev {
		return false, nil
	}
	l.Stage = next
	l.Status = statusForStage(next)
	r.leads[id] = l
	return true, nil
}

func statusForStage(stage string) string {
	if stage == "closed" {
		return "closed"
	}
	return "open"
}

type fakeAgents struct {
	records map[uuid.UUID]ports.AgentRecord
	err     error
	calls   int
}

func (f *fakeAgents) GetAgentsByIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ports.AgentRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := map[uuid.UUID]ports.AgentRecord{}
	for _, id := range ids {
		if rec, ok := f.records[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

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
