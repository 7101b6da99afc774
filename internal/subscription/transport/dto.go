package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateModuleRequest struct {
	Code        string         `json:"code" validate:"required,min=2,max=60"`
	Name        string         `json:"name" validate:"required,min=1,max=120"`
	Description string         `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsCore      bool           `json:"isCore"`
	IsActive    *bool          `json:"isActive,omitempty"`
	SortOrder   int            `json:"sortOrder" validate:"gte=0"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type UpdateModuleRequest struct {
	Code        *string        `json:"code,omitempty" validate:"omitempty,min=2,max=60"`
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsCore      *bool          `json:"isCore,omitempty"`
	IsActive    *bool          `json:"isActive,omitempty"`
	SortOrder   *int           `json:"sortOrder,omitempty" validate:"omitempty,gte=0"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type SetDependenciesRequest struct {
	DependsOn []string `json:"dependsOn" validate:"max=50,dive,min=2,max=60"`
}

type ModuleResponse struct {
	ID           uuid.UUID      `json:"id"`
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	Description  *string        `json:"description,omitempty"`
	IsCore       bool           `json:"isCore"`
	IsActive     bool           `json:"isActive"`
	SortOrder    int            `json:"sortOrder"`
	Metadata     map[string]any `json:"metadata"`
	FeatureLevel string         `json:"featureLevel"`
	DependsOn    []string       `json:"dependsOn"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type CreatePlanRequest struct {
	Code          string  `json:"code" validate:"required,min=2,max=60"`
	Name          string  `json:"name" validate:"required,min=1,max=120"`
	Description   string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price         float64 `json:"price" validate:"gte=0"`
	Currency      string  `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	BillingPeriod string  `json:"billingPeriod,omitempty" validate:"omitempty,oneof=monthly yearly"`
	IsActive      *bool   `json:"isActive,omitempty"`
	SortOrder     int     `json:"sortOrder" validate:"gte=0"`
}

type UpdatePlanRequest struct {
	Code          *string  `json:"code,omitempty" validate:"omitempty,min=2,max=60"`
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Currency      *string  `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	BillingPeriod *string  `json:"billingPeriod,omitempty" validate:"omitempty,oneof=monthly yearly"`
	IsActive      *bool    `json:"isActive,omitempty"`
	SortOrder     *int     `json:"sortOrder,omitempty" validate:"omitempty,gte=0"`
}

type PlanResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	BillingPeriod string    `json:"billingPeriod"`
	IsActive      bool      `json:"isActive"`
	SortOrder     int       `json:"sortOrder"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type AssignModuleRequest struct {
	AutoAssignDependencies bool `json:"autoAssignDependencies"`
}

type UpdateLimitsRequest struct {
	Limits map[string]any `json:"limits" validate:"required"`
}

// PlanModuleStatus is one row of the plan's assignment screen.
type PlanModuleStatus struct {
	ModuleID            uuid.UUID      `json:"moduleId"`
	Code                string         `json:"code"`
	Name                string         `json:"name"`
	IsCore              bool           `json:"isCore"`
	IsActive            bool           `json:"isActive"`
	Assigned            bool           `json:"assigned"`
	Blocked             bool           `json:"blocked"`
	Locked              bool           `json:"locked"`
	DependsOn           []string       `json:"dependsOn"`
	MissingDependencies []string       `json:"missingDependencies"`
	Dependents          []string       `json:"dependents"`
	FeatureLevel        string         `json:"featureLevel"`
	Limits              map[string]any `json:"limits,omitempty"`
}

type PlanModulesResponse struct {
	PlanID  uuid.UUID          `json:"planId"`
	Modules []PlanModuleStatus `json:"modules"`
}

type AssignResult struct {
	PlanID   uuid.UUID `json:"planId"`
	Assigned []string  `json:"assigned"`
}

type CreateVerticalRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=60"`
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

type UpdateVerticalRequest struct {
	Code        *string `json:"code,omitempty" validate:"omitempty,min=2,max=60"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type SetVerticalModulesRequest struct {
	ModuleIDs []uuid.UUID `json:"moduleIds" validate:"max=100"`
}

type VerticalResponse struct {
	ID          uuid.UUID   `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	IsActive    bool        `json:"isActive"`
	ModuleIDs   []uuid.UUID `json:"moduleIds"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type CreateCategoryRequest struct {
	Code      string `json:"code" validate:"required,min=2,max=60"`
	Name      string `json:"name" validate:"required,min=1,max=120"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

type CategoryResponse struct {
	ID         uuid.UUID `json:"id"`
	VerticalID uuid.UUID `json:"verticalId"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	SortOrder  int       `json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
}
