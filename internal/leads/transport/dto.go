package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	Name           string         `json:"name" validate:"required,min=1,max=200"`
	Email          string         `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone          string         `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Stage          string         `json:"stage,omitempty" validate:"omitempty,max=50"`
	AgentID        *uuid.UUID     `json:"agentId,omitempty"`
	BudgetMin      *float64       `json:"budgetMin,omitempty" validate:"omitempty,gte=0"`
	BudgetMax      *float64       `json:"budgetMax,omitempty" validate:"omitempty,gte=0"`
	PropertyType   string         `json:"propertyType,omitempty" validate:"omitempty,oneof=house apartment land commercial office"`
	PreferredZones []string       `json:"preferredZones,omitempty" validate:"omitempty,max=20,dive,min=1,max=100"`
	InterestLevel  string         `json:"interestLevel,omitempty" validate:"omitempty,oneof=high medium low"`
	Source         string         `json:"source,omitempty" validate:"omitempty,max=100"`
	Notes          string         `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	NextContactAt  *time.Time     `json:"nextContactAt,omitempty"`
}

type UpdateLeadRequest struct {
	Name           *string        `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email          *string        `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone          *string        `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Status         *string        `json:"status,omitempty" validate:"omitempty,oneof=open closed"`
	AgentID        OptionalUUID   `json:"agentId,omitempty" validate:"-"`
	BudgetMin      OptionalFloat  `json:"budgetMin,omitempty" validate:"-"`
	BudgetMax      OptionalFloat  `json:"budgetMax,omitempty" validate:"-"`
	PropertyType   *string        `json:"propertyType,omitempty" validate:"omitempty,oneof=house apartment land commercial office"`
	PreferredZones []string       `json:"preferredZones,omitempty" validate:"omitempty,max=20,dive,min=1,max=100"`
	InterestLevel  *string        `json:"interestLevel,omitempty" validate:"omitempty,oneof=high medium low"`
	Source         *string        `json:"source,omitempty" validate:"omitempty,max=100"`
	Notes          *string        `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	NextContactAt  *time.Time     `json:"nextContactAt,omitempty"`
}

// UpdateStageRequest accepts canonical codes and localized names alike.
type UpdateStageRequest struct {
	Stage string `json:"stage" validate:"required,min=1,max=50"`
}

type AssignLeadRequest struct {
	AgentID *uuid.UUID `json:"agentId"`
}

type RecordContactRequest struct {
	Channel       string     `json:"channel" validate:"required,oneof=call email whatsapp visit other"`
	Notes         string     `json:"notes,omitempty" validate:"omitempty,max=2000"`
	NextContactAt *time.Time `json:"nextContactAt,omitempty"`
}

type ListLeadsRequest struct {
	Stage        string `form:"stage" validate:"omitempty,max=50"`
	Status       string `form:"status" validate:"omitempty,oneof=open closed"`
	AgentID      string `form:"agentId" validate:"omitempty"`
	PropertyType string `form:"propertyType" validate:"omitempty,oneof=house apartment land commercial office"`
	Search       string `form:"search" validate:"omitempty,max=100"`
	SortBy       string `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt name budget nextContactAt"`
	SortOrder    string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page         int    `form:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type LeadResponse struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Email          *string        `json:"email,omitempty"`
	Phone          *string        `json:"phone,omitempty"`
	Status         string         `json:"status"`
	Stage          string         `json:"stage"`
	AgentID        *uuid.UUID     `json:"agentId,omitempty"`
	BudgetMin      *float64       `json:"budgetMin,omitempty"`
	BudgetMax      *float64       `json:"budgetMax,omitempty"`
	PropertyType   *string        `json:"propertyType,omitempty"`
	PreferredZones []string       `json:"preferredZones"`
	InterestLevel  *string        `json:"interestLevel,omitempty"`
	Source         *string        `json:"source,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	Metadata       map[string]any `json:"metadata"`
	ContactCount   int            `json:"contactCount"`
	LastContactAt  *time.Time     `json:"lastContactAt,omitempty"`
	NextContactAt  *time.Time     `json:"nextContactAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type ActivityResponse struct {
	ID        uuid.UUID      `json:"id"`
	ActorID   *uuid.UUID     `json:"actorId,omitempty"`
	Action    string         `json:"action"`
	Meta      map[string]any `json:"meta"`
	CreatedAt time.Time      `json:"createdAt"`
}

// StageTransitionResponse is returned for successes and failures alike;
// callers check Success.
type StageTransitionResponse struct {
	Success       bool   `json:"success"`
	LeadID        string `json:"leadId"`
	LeadName      string `json:"leadName,omitempty"`
	StageChanged  bool   `json:"stageChanged"`
	PreviousStage string `json:"previousStage,omitempty"`
	NewStage      string `json:"newStage,omitempty"`
	Error         string `json:"error,omitempty"`
	ErrorCode     string `json:"errorCode,omitempty"`
}

type FunnelMember struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar *string   `json:"avatar,omitempty"`
}

type FunnelLead struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     *string        `json:"email,omitempty"`
	Phone     *string        `json:"phone,omitempty"`
	Stage     string         `json:"stage"`
	Budget    *float64       `json:"budget,omitempty"`
	Priority  string         `json:"priority"`
	Metadata  map[string]any `json:"metadata"`
	Members   []FunnelMember `json:"members"`
	CreatedAt time.Time      `json:"createdAt"`
}

// FunnelResponse always carries the four displayed columns. Degraded is set
// when the board could not be loaded and the columns are empty.
type FunnelResponse struct {
	Columns  map[string][]FunnelLead `json:"columns"`
	Order    []string                `json:"order"`
	Degraded bool                    `json:"degraded"`
}
