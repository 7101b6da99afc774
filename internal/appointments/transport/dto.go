package transport

import (
	"time"

	agentdomain "inmo_crm_backend/internal/agents/domain"

	"github.com/google/uuid"
)

const (
	StatusScheduled   = "scheduled"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

type CreateAppointmentRequest struct {
	LeadID           uuid.UUID   `json:"leadId" validate:"required"`
	AgentID          *uuid.UUID  `json:"agentId,omitempty"`
	Date             string      `json:"date" validate:"required,isodate"`
	Time             string      `json:"time" validate:"required,clock"`
	DurationMinutes  int         `json:"durationMinutes,omitempty" validate:"omitempty,min=5,max=720"`
	Location         string      `json:"location,omitempty" validate:"omitempty,max=500"`
	PropertyIDs      []uuid.UUID `json:"propertyIds,omitempty" validate:"omitempty,max=20"`
	Notes            string      `json:"notes,omitempty" validate:"omitempty,max=2000"`
	FollowUpDate     *string     `json:"followUpDate,omitempty" validate:"omitempty,isodate"`
	FollowUpNotes    string      `json:"followUpNotes,omitempty" validate:"omitempty,max=2000"`
	SendConfirmation bool        `json:"sendConfirmation,omitempty"`
}

type UpdateAppointmentRequest struct {
	AgentID         *uuid.UUID  `json:"agentId,omitempty"`
	Date            *string     `json:"date,omitempty" validate:"omitempty,isodate"`
	Time            *string     `json:"time,omitempty" validate:"omitempty,clock"`
	DurationMinutes *int        `json:"durationMinutes,omitempty" validate:"omitempty,min=5,max=720"`
	Location        *string     `json:"location,omitempty" validate:"omitempty,max=500"`
	PropertyIDs     []uuid.UUID `json:"propertyIds,omitempty" validate:"omitempty,max=20"`
	Notes           *string     `json:"notes,omitempty" validate:"omitempty,max=2000"`
	FollowUpDate    *string     `json:"followUpDate,omitempty" validate:"omitempty,isodate"`
	FollowUpNotes   *string     `json:"followUpNotes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed completed cancelled rescheduled"`
}

type ListAppointmentsRequest struct {
	AgentID  string `form:"agentId" validate:"omitempty,uuid"`
	LeadID   string `form:"leadId" validate:"omitempty,uuid"`
	Status   string `form:"status" validate:"omitempty,oneof=scheduled confirmed completed cancelled rescheduled"`
	FromDate string `form:"from" validate:"omitempty,isodate"`
	ToDate   string `form:"to" validate:"omitempty,isodate"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type CalendarRequest struct {
	AgentID string `form:"agentId" validate:"required,uuid"`
	Date    string `form:"date" validate:"required,isodate"`
}

type AppointmentResponse struct {
	ID              uuid.UUID   `json:"id"`
	LeadID          uuid.UUID   `json:"leadId"`
	AgentID         *uuid.UUID  `json:"agentId,omitempty"`
	Date            string      `json:"date"`
	Time            string      `json:"time"`
	DurationMinutes int         `json:"durationMinutes"`
	Location        *string     `json:"location,omitempty"`
	PropertyIDs     []uuid.UUID `json:"propertyIds"`
	Status          string      `json:"status"`
	Notes           *string     `json:"notes,omitempty"`
	FollowUpDate    *string     `json:"followUpDate,omitempty"`
	FollowUpNotes   *string     `json:"followUpNotes,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type AppointmentListResponse struct {
	Items      []AppointmentResponse `json:"items"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// CalendarResponse is one agent's day: the slot grid and the appointments on it.
type CalendarResponse struct {
	AgentID      uuid.UUID             `json:"agentId"`
	Date         string                `json:"date"`
	SlotMinutes  int                   `json:"slotMinutes"`
	Slots        []agentdomain.Slot    `json:"slots"`
	Appointments []AppointmentResponse `json:"appointments"`
	Degraded     bool                  `json:"degraded,omitempty"`
}
