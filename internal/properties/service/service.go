package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"inmo_crm_backend/internal/properties/repository"
	"inmo_crm_backend/internal/properties/transport"
	"inmo_crm_backend/platform/apperr"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/sanitize"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	msgPropertyNotFound = "propiedad no encontrada"
	msgAgentNotFound    = "agente no encontrado"
	msgDatabase         = "no se pudo completar la operación"
	msgPriceRange       = "el precio mínimo no puede ser mayor que el máximo"
	msgQRCode           = "no se pudo generar el código QR"

	CodePropertyNotFound = "PROPERTY_NOT_FOUND"

	defaultCurrency = "MXN"
	defaultPageSize = 20
	qrSize          = 512
)

type Repository interface {
	Create(ctx context.Context, p repository.Property) (repository.Property, error)
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (repository.Property, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Property, int, error)
	Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, params repository.UpdateParams) (repository.Property, error)
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

// AgentChecker reports whether an agent is active in the tenant.
type AgentChecker interface {
	Exists(ctx context.Context, tenantID, agentID uuid.UUID) (bool, error)
}

type Service struct {
	repo          Repository
	agents        AgentChecker
	publicBaseURL string
	log           *logger.Logger
}

func New(repo Repository, agents AgentChecker, publicBaseURL string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewWithWriter("production", io.Discard)
	}
	return &Service{repo: repo, agents: agents, publicBaseURL: strings.TrimRight(publicBaseURL, "/"), log: log}
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreatePropertyRequest) (transport.PropertyResponse, error) {
	if req.AgentID != nil {
		if err := s.ensureAgent(ctx, tenantID, *req.AgentID); err != nil {
			return transport.PropertyResponse{}, err
		}
	}

	status := req.Status
	if status == "" {
		status = "available"
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	property := repository.Property{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Title:        sanitize.Text(req.Title),
		Description:  nonEmpty(sanitize.Text(req.Description)),
		PropertyType: req.PropertyType,
		Operation:    req.Operation,
		Status:       status,
		Price:        req.Price,
		Currency:     currency,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		AreaM2:       req.AreaM2,
		Street:       nonEmpty(sanitize.Text(req.Street)),
		City:         nonEmpty(sanitize.Text(req.City)),
		State:        nonEmpty(sanitize.Text(req.State)),
		PostalCode:   nonEmpty(req.PostalCode),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Features:     req.Features,
		ImageURLs:    req.ImageURLs,
		AgentID:      req.AgentID,
	}

	created, err := s.repo.Create(ctx, property)
	if err != nil {
		return transport.PropertyResponse{}, dbError("properties.Create", err)
	}
	return s.toResponse(created), nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.PropertyResponse, error) {
	property, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.PropertyResponse{}, mapRepoError("properties.GetByID", err)
	}
	return s.toResponse(property), nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListPropertiesRequest) (transport.PropertyListResponse, error) {
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return transport.PropertyListResponse{}, apperr.Validation(msgPriceRange)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	params := repository.ListParams{
		TenantID:     tenantID,
		PropertyType: optional(req.PropertyType),
		Operation:    optional(req.Operation),
		Status:       optional(req.Status),
		City:         optional(req.City),
		MinPrice:     req.MinPrice,
		MaxPrice:     req.MaxPrice,
		MinBedrooms:  req.MinBedrooms,
		Search:       optional(req.Search),
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	}
	if id, err := uuid.Parse(req.AgentID); err == nil {
		params.AgentID = &id
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.PropertyListResponse{}, dbError("properties.List", err)
	}

	resp := transport.PropertyListResponse{
		Items:      make([]transport.PropertyResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, s.toResponse(item))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdatePropertyRequest) (transport.PropertyResponse, error) {
	if req.AgentID != nil {
		if err := s.ensureAgent(ctx, tenantID, *req.AgentID); err != nil {
			return transport.PropertyResponse{}, err
		}
	}

	params := repository.UpdateParams{
		Title:        sanitize.TextPtr(req.Title),
		Description:  sanitize.TextPtr(req.Description),
		PropertyType: req.PropertyType,
		Operation:    req.Operation,
		Status:       req.Status,
		Price:        req.Price,
		Currency:     upperPtr(req.Currency),
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		AreaM2:       req.AreaM2,
		Street:       sanitize.TextPtr(req.Street),
		City:         sanitize.TextPtr(req.City),
		State:        sanitize.TextPtr(req.State),
		PostalCode:   req.PostalCode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Features:     req.Features,
		ImageURLs:    req.ImageURLs,
		AgentID:      req.AgentID,
		AgentIDSet:   req.AgentID != nil,
	}

	property, err := s.repo.Update(ctx, id, tenantID, params)
	if err != nil {
		return transport.PropertyResponse{}, mapRepoError("properties.Update", err)
	}
	return s.toResponse(property), nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, tenantID); err != nil {
		return mapRepoError("properties.Delete", err)
	}
	return nil
}

// QRCode renders a PNG pointing at the property's public listing.
func (s *Service) QRCode(ctx context.Context, tenantID, id uuid.UUID) ([]byte, error) {
	property, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, mapRepoError("properties.QRCode", err)
	}

	png, err := qrcode.Encode(s.publicURL(property.ID), qrcode.Medium, qrSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, msgQRCode, err).WithOp("properties.QRCode")
	}
	return png, nil
}

func (s *Service) publicURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/%s", s.publicBaseURL, id)
}

func (s *Service) ensureAgent(ctx context.Context, tenantID, agentID uuid.UUID) error {
	if s.agents == nil {
		return nil
	}
	ok, err := s.agents.Exists(ctx, tenantID, agentID)
	if err != nil {
		return dbError("properties.ensureAgent", err)
	}
	if !ok {
		return apperr.Validation(msgAgentNotFound)
	}
	return nil
}

func (s *Service) toResponse(p repository.Property) transport.PropertyResponse {
	features := p.Features
	if features == nil {
		features = map[string]any{}
	}
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	return transport.PropertyResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		PropertyType: p.PropertyType,
		Operation:    p.Operation,
		Status:       p.Status,
		Price:        p.Price,
		Currency:     p.Currency,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		AreaM2:       p.AreaM2,
		Address: transport.Address{
			Street:     p.Street,
			City:       p.City,
			State:      p.State,
			PostalCode: p.PostalCode,
		},
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Features:  features,
		ImageURLs: images,
		AgentID:   p.AgentID,
		PublicURL: s.publicURL(p.ID),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgPropertyNotFound).WithCode(CodePropertyNotFound)
	}
	return dbError(op, err)
}

func dbError(op string, err error) error {
	return apperr.Wrap(apperr.KindInternal, msgDatabase, err).WithOp(op)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nonEmpty(s string) *string {
	return optional(s)
}

func upperPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*s))
	return &v
}
