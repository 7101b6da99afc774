package service

import (
	"bytes"
	"context"
	"testing"

	"inmo_crm_backend/internal/properties/repository"
	"inmo_crm_backend/internal/properties/transport"
	"inmo_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	items      map[uuid.UUID]repository.Property
	lastParams repository.ListParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]repository.Property{}}
}

func (r *fakeRepo) Create(_ context.Context, p repository.Property) (repository.Property, error) {
	r.items[p.ID] = p
	return p, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id, tenantID uuid.UUID) (repository.Property, error) {
	p, ok := r.items[id]
	if !ok || p.TenantID != tenantID {
		return repository.Property{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Property, int, error) {
	r.lastParams = params
	out := []repository.Property{}
	for _, p := range r.items {
		if p.TenantID == params.TenantID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, id, tenantID uuid.UUID, params repository.UpdateParams) (repository.Property, error) {
	p, ok := r.items[id]
	if !ok || p.TenantID != tenantID {
		return repository.Property{}, repository.ErrNotFound
	}
	if params.Status != nil {
		p.Status = *params.Status
	}
	if params.Currency != nil {
		p.Currency = *params.Currency
	}
	r.items[id] = p
	return p, nil
}

func (r *fakeRepo) Delete(_ context.Context, id, tenantID uuid.UUID) error {
	p, ok := r.items[id]
	if !ok || p.TenantID != tenantID {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeAgents map[uuid.UUID]bool

func (f fakeAgents) Exists(_ context.Context, _, agentID uuid.UUID) (bool, error) {
	return f[agentID], nil
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, fakeAgents{}, "https://inmo.example.com/propiedades/", nil)
	tenantID := uuid.New()

	resp, err := svc.Create(context.Background(), tenantID, transport.CreatePropertyRequest{
		Title:        "  Casa en <b>Coyoacán</b> ",
		PropertyType: "house",
		Operation:    "sale",
		Price:        4500000,
		City:         "CDMX",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "Casa en Coyoacán" {
		t.Fatalf("expected sanitized title, got %q", resp.Title)
	}
	if resp.Status != "available" || resp.Currency != "MXN" {
		t.Fatalf("expected defaults, got status=%q currency=%q", resp.Status, resp.Currency)
	}
	if resp.PublicURL != "https://inmo.example.com/propiedades/"+resp.ID.String() {
		t.Fatalf("unexpected public url %q", resp.PublicURL)
	}
	if resp.Features == nil || resp.ImageURLs == nil {
		t.Fatalf("expected empty collections, got nil")
	}
}

func TestCreateRejectsUnknownAgent(t *testing.T) {
	svc := New(newFakeRepo(), fakeAgents{}, "https://inmo.example.com", nil)
	agentID := uuid.New()

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreatePropertyRequest{
		Title: "Depto", PropertyType: "apartment", Operation: "rent", AgentID: &agentID,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListValidatesPriceRangeAndMapsFilters(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil, "https://inmo.example.com", nil)
	minPrice, maxPrice := 3_000_000.0, 1_000_000.0

	_, err := svc.List(context.Background(), uuid.New(), transport.ListPropertiesRequest{MinPrice: &minPrice, MaxPrice: &maxPrice})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	agentID := uuid.New()
	resp, err := svc.List(context.Background(), uuid.New(), transport.ListPropertiesRequest{
		Operation: "rent", AgentID: agentID.String(), Page: 3, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastParams.Offset != 20 || repo.lastParams.Limit != 10 {
		t.Fatalf("unexpected paging %d/%d", repo.lastParams.Offset, repo.lastParams.Limit)
	}
	if repo.lastParams.AgentID == nil || *repo.lastParams.AgentID != agentID {
		t.Fatalf("expected agent filter")
	}
	if repo.lastParams.Operation == nil || *repo.lastParams.Operation != "rent" {
		t.Fatalf("expected operation filter")
	}
	if resp.Page != 3 || resp.TotalPages != 0 {
		t.Fatalf("unexpected page info %+v", resp)
	}
}

func TestOtherTenantCannotSeeProperty(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil, "https://inmo.example.com", nil)
	owner := uuid.New()
	created, err := svc.Create(context.Background(), owner, transport.CreatePropertyRequest{Title: "Local", PropertyType: "commercial", Operation: "rent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.GetByID(context.Background(), uuid.New(), created.ID)
	if apperr.GetCode(err) != CodePropertyNotFound {
		t.Fatalf("expected PROPERTY_NOT_FOUND, got %v", err)
	}
	if err := svc.Delete(context.Background(), uuid.New(), created.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}

func TestQRCodeEncodesPNG(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil, "https://inmo.example.com/p", nil)
	tenantID := uuid.New()
	created, err := svc.Create(context.Background(), tenantID, transport.CreatePropertyRequest{Title: "Terreno", PropertyType: "land", Operation: "sale"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	png, err := svc.QRCode(context.Background(), tenantID, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("expected PNG signature")
	}

	if _, err := svc.QRCode(context.Background(), uuid.New(), created.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for other tenant, got %v", err)
	}
}
