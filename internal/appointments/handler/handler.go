package handler

import (
	"net/http"

	"inmo_crm_backend/internal/appointments/service"
	"inmo_crm_backend/internal/appointments/transport"
	"inmo_crm_backend/internal/tenant"
	"inmo_crm_backend/platform/httpkit"
	"inmo_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "solicitud no válida"
	msgValidationFailed = "la validación falló"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/calendar", h.Calendar)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/status", h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAppointmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := tenant.MustFromContext(c)
	if !ok {
		return
	}

	appt, err := h.svc.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, appt)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListAppointmentsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	tenantID, ok := tenant.MustFromContext(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Calendar(c *gin.Context) {
	var req transport.CalendarRequest
	if !h.bindQuery(c, &req) {
		return
	}
	tenantID, ok := tenant.MustFromContext(c)
	if !ok {
		return
	}

	agentID, _ := uuid.Parse(req.AgentID)
	result, err := h.svc.Calendar(c.Request.Context(), tenantID, agentID, req.Date)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, tenantID, ok := h.scope(c)
	if !ok {
		return
	}

	appt, err := h.svc.GetByID(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, appt)
}

func (h *Handler) Update(c *gin.Context) {
	var req transport.UpdateAppointmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id, tenantID, ok := h.scope(c)
	if !ok {
		return
	}

	appt, err := h.svc.Update(c.Request.Context(), tenantID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, appt)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req transport.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id, tenantID, ok := h.scope(c)
	if !ok {
		return
	}

	appt, err := h.svc.UpdateStatus(c.Request.Context(), tenantID, id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, appt)
}

func (h *Handler) Delete(c *gin.Context) {
	id, tenantID, ok := h.scope(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), tenantID, id)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *Handler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.UUID{}, uuid.UUID{}, false
	}
	tenantID, ok := tenant.MustFromContext(c)
	if !ok {
		return uuid.UUID{}, uuid.UUID{}, false
	}
	return id, tenantID, true
}
