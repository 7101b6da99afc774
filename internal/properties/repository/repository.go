package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("property not found")

type Property struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Title        string
	Description  *string
	PropertyType string
	Operation    string
	Status       string
	Price        float64
	Currency     string
	Bedrooms     *int
	Bathrooms    *float64
	AreaM2       *float64
	Street       *string
	City         *string
	State        *string
	PostalCode   *string
	Latitude     *float64
	Longitude    *float64
	Features     map[string]any
	ImageURLs    []string
	AgentID      *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const propertyColumns = `id, tenant_id, title, description, property_type, operation, status, price, currency,
	bedrooms, bathrooms, area_m2, street, city, state, postal_code, latitude, longitude, features,
	image_urls, agent_id, created_at, updated_at`

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	var features []byte
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Title, &p.Description, &p.PropertyType, &p.Operation, &p.Status, &p.Price, &p.Currency,
		&p.Bedrooms, &p.Bathrooms, &p.AreaM2, &p.Street, &p.City, &p.State, &p.PostalCode, &p.Latitude, &p.Longitude, &features,
		&p.ImageURLs, &p.AgentID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Property{}, err
	}
	p.Features = map[string]any{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return Property{}, fmt.Errorf("failed to decode property features: %w", err)
		}
	}
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p Property) (Property, error) {
	features, err := marshalFeatures(p.Features)
	if err != nil {
		return Property{}, err
	}
	imageURLs := p.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	query := `
		INSERT INTO properties (
			id, tenant_id, title, description, property_type, operation, status, price, currency,
			bedrooms, bathrooms, area_m2, street, city, state, postal_code, latitude, longitude,
			features, image_urls, agent_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING ` + propertyColumns

	created, err := scanProperty(r.pool.QueryRow(ctx, query,
		p.ID, p.TenantID, p.Title, p.Description, p.PropertyType, p.Operation, p.Status, p.Price, p.Currency,
		p.Bedrooms, p.Bathrooms, p.AreaM2, p.Street, p.City, p.State, p.PostalCode, p.Latitude, p.Longitude,
		features, imageURLs, p.AgentID,
	))
	if err != nil {
		return Property{}, fmt.Errorf("failed to create property: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 AND tenant_id = $2`
	p, err := scanProperty(r.pool.QueryRow(ctx, query, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

type ListParams struct {
	TenantID     uuid.UUID
	PropertyType *string
	Operation    *string
	Status       *string
	City         *string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	AgentID      *uuid.UUID
	Search       *string
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"title":     "title",
	"areaM2":    "area_m2",
}

func buildListWhere(params ListParams) (string, []interface{}) {
	clauses := []string{"tenant_id = $1"}
	args := []interface{}{params.TenantID}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, strings.ReplaceAll(clause, "$?", fmt.Sprintf("$%d", len(args))))
	}

	if params.PropertyType != nil {
		add("property_type = $?", *params.PropertyType)
	}
	if params.Operation != nil {
		add("operation = $?", *params.Operation)
	}
	if params.Status != nil {
		add("status = $?", *params.Status)
	}
	if params.City != nil {
		add("city ILIKE $?", *params.City)
	}
	if params.MinPrice != nil {
		add("price >= $?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		add("price <= $?", *params.MaxPrice)
	}
	if params.MinBedrooms != nil {
		add("bedrooms >= $?", *params.MinBedrooms)
	}
	if params.AgentID != nil {
		add("agent_id = $?", *params.AgentID)
	}
	if params.Search != nil {
		add("(title ILIKE $? OR description ILIKE $? OR street ILIKE $?)", "%"+*params.Search+"%")
	}
	return strings.Join(clauses, " AND "), args
}

func orderBy(params ListParams) string {
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Property, int, error) {
	where, args := buildListWhere(params)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM properties WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		propertyColumns, where, orderBy(params), len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	items := make([]Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan property: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate properties: %w", err)
	}
	return items, total, nil
}

type UpdateParams struct {
	Title        *string
	Description  *string
	PropertyType *string
	Operation    *string
	Status       *string
	Price        *float64
	Currency     *string
	Bedrooms     *int
	Bathrooms    *float64
	AreaM2       *float64
	Street       *string
	City         *string
	State        *string
	PostalCode   *string
	Latitude     *float64
	Longitude    *float64
	Features     map[string]any
	ImageURLs    []string
	AgentID      *uuid.UUID
	AgentIDSet   bool
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, params UpdateParams) (Property, error) {
	setClauses := []string{}
	args := []interface{}{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Title != nil {
		set("title", *params.Title)
	}
	if params.Description != nil {
		set("description", *params.Description)
	}
	if params.PropertyType != nil {
		set("property_type", *params.PropertyType)
	}
	if params.Operation != nil {
		set("operation", *params.Operation)
	}
	if params.Status != nil {
		set("status", *params.Status)
	}
	if params.Price != nil {
		set("price", *params.Price)
	}
	if params.Currency != nil {
		set("currency", *params.Currency)
	}
	if params.Bedrooms != nil {
		set("bedrooms", *params.Bedrooms)
	}
	if params.Bathrooms != nil {
		set("bathrooms", *params.Bathrooms)
	}
	if params.AreaM2 != nil {
		set("area_m2", *params.AreaM2)
	}
	if params.Street != nil {
		set("street", *params.Street)
	}
	if params.City != nil {
		set("city", *params.City)
	}
	if params.State != nil {
		set("state", *params.State)
	}
	if params.PostalCode != nil {
		set("postal_code", *params.PostalCode)
	}
	if params.Latitude != nil {
		set("latitude", *params.Latitude)
	}
	if params.Longitude != nil {
		set("longitude", *params.Longitude)
	}
	if params.Features != nil {
		features, err := marshalFeatures(params.Features)
		if err != nil {
			return Property{}, err
		}
		set("features", features)
	}
	if params.ImageURLs != nil {
		set("image_urls", params.ImageURLs)
	}
	if params.AgentIDSet {
		set("agent_id", params.AgentID)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id, tenantID)
	}

	args = append(args, id, tenantID)
	query := fmt.Sprintf(`UPDATE properties SET %s, updated_at = now() WHERE id = $%d AND tenant_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args)-1, len(args), propertyColumns)

	p, err := scanProperty(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("failed to update property: %w", err)
	}
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalFeatures(features map[string]any) ([]byte, error) {
	if features == nil {
		features = map[string]any{}
	}
	data, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("failed to encode property features: %w", err)
	}
	return data, nil
}
