// Package repository persists modules, plans and verticals. These tables
// are platform wide and carry no tenant column.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCode = errors.New("code already exists")
	// ErrInUse means another row still references the one being deleted.
	ErrInUse         = errors.New("still referenced")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Module struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Description *string
	IsCore      bool
	IsActive    bool
	SortOrder   int
	Metadata    map[string]any
	DependsOn   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Plan struct {
	ID            uuid.UUID
	Code          string
	Name          string
	Description   *string
	Price         float64
	Currency      string
	BillingPeriod string
	IsActive      bool
	SortOrder     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Assignment is one plan_modules row.
type Assignment struct {
	PlanID     uuid.UUID
	ModuleID   uuid.UUID
	ModuleCode string
	Limits     map[string]any
}

type Vertical struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Description *string
	IsActive    bool
	ModuleIDs   []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Category struct {
	ID         uuid.UUID
	VerticalID uuid.UUID
	Code       string
	Name       string
	SortOrder  int
	CreatedAt  time.Time
}

func translateWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateCode
		case "23503":
			return ErrInUse
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func encodeJSON(v map[string]any) ([]byte, error) {
	if v == nil {
		v = map[string]any{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return data, nil
}

func decodeJSON(data []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	return out, nil
}
