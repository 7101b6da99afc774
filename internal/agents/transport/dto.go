package transport

import (
	"time"

	"inmo_crm_backend/internal/agents/domain"

	"github.com/google/uuid"
)

type CreateAgentRequest struct {
	Name      string         `json:"name" validate:"required,min=1,max=200"`
	Email     string         `json:"email" validate:"required,email,max=254"`
	Phone     string         `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	AvatarURL string         `json:"avatarUrl,omitempty" validate:"omitempty,url,max=2048"`
	Bio       string         `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Active    *bool          `json:"active,omitempty"`
}

type UpdateAgentRequest struct {
	Name      *string        `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email     *string        `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone     *string        `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	AvatarURL *string        `json:"avatarUrl,omitempty" validate:"omitempty,url,max=2048"`
	Bio       *string        `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Active    *bool          `json:"active,omitempty"`
}

type ListAgentsRequest struct {
	Active *bool  `form:"active"`
	Search string `form:"search" validate:"omitempty,max=100"`
}

type SlotsRequest struct {
	Date string `form:"date" validate:"required,isodate"`
}

type AgentResponse struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     *string        `json:"phone,omitempty"`
	AvatarURL *string        `json:"avatarUrl,omitempty"`
	Bio       *string        `json:"bio,omitempty"`
	Metadata  map[string]any `json:"metadata"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type AgentListResponse struct {
	Items []AgentResponse `json:"items"`
}

type AvailabilityResponse struct {
	AgentID      uuid.UUID           `json:"agentId"`
	Availability domain.Availability `json:"availability"`
}

// DaySlotsResponse lists the agent's slots on Date. Degraded is set when the
// schedule could not be loaded and Slots is empty.
type DaySlotsResponse struct {
	AgentID     uuid.UUID     `json:"agentId"`
	Date        string        `json:"date"`
	SlotMinutes int           `json:"slotMinutes"`
	Slots       []domain.Slot `json:"slots"`
	Degraded    bool          `json:"degraded,omitempty"`
}
