package handler

import (
	"net/http"

	"inmo_crm_backend/internal/subscription/service"
	"inmo_crm_backend/internal/subscription/transport"
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

// RegisterRoutes mounts the superadmin catalog endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	modules := rg.Group("/modules")
	modules.GET("", h.ListModules)
	modules.POST("", h.CreateModule)
	modules.GET("/:id", h.GetModule)
	modules.PUT("/:id", h.UpdateModule)
	modules.DELETE("/:id", h.DeleteModule)
	modules.PUT("/:id/dependencies", h.SetDependencies)

	plans := rg.Group("/plans")
	plans.GET("", h.ListPlans)
	plans.POST("", h.CreatePlan)
	plans.GET("/:id", h.GetPlan)
	plans.PUT("/:id", h.UpdatePlan)
	plans.DELETE("/:id", h.DeletePlan)
	plans.GET("/:id/modules", h.PlanModules)
	plans.POST("/:id/modules/:moduleId", h.AssignModule)
	plans.DELETE("/:id/modules/:moduleId", h.UnassignModule)
	plans.PUT("/:id/modules/:moduleId/limits", h.UpdateLimits)

	rg.GET("/limits/catalog", h.LimitsCatalog)

	verticals := rg.Group("/verticals")
	verticals.GET("", h.ListVerticals)
	verticals.POST("", h.CreateVertical)
	verticals.GET("/:id", h.GetVertical)
	verticals.PUT("/:id", h.UpdateVertical)
	verticals.DELETE("/:id", h.DeleteVertical)
	verticals.PUT("/:id/modules", h.SetVerticalModules)
	verticals.GET("/:id/categories", h.ListCategories)
	verticals.POST("/:id/categories", h.CreateCategory)
	verticals.DELETE("/:id/categories/:categoryId", h.DeleteCategory)
}

// Modules

func (h *Handler) ListModules(c *gin.Context) {
	modules, err := h.svc.ListModules(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, modules)
}

func (h *Handler) GetModule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	module, err := h.svc.GetModule(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, module)
}

func (h *Handler) CreateModule(c *gin.Context) {
	var req transport.CreateModuleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	module, err := h.svc.CreateModule(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, module)
}

func (h *Handler) UpdateModule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateModuleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	module, err := h.svc.UpdateModule(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, module)
}

func (h *Handler) DeleteModule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteModule(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) SetDependencies(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.SetDependenciesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	module, err := h.svc.SetDependencies(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, module)
}

// Plans

func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.svc.ListPlans(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, plans)
}

func (h *Handler) GetPlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	plan, err := h.svc.GetPlan(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, plan)
}

func (h *Handler) CreatePlan(c *gin.Context) {
	var req transport.CreatePlanRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plan, err := h.svc.CreatePlan(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, plan)
}

func (h *Handler) UpdatePlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.UpdatePlanRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plan, err := h.svc.UpdatePlan(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, plan)
}

func (h *Handler) DeletePlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeletePlan(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) PlanModules(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.PlanModules(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// AssignModule accepts an empty body, which means no automatic dependency assignment.
func (h *Handler) AssignModule(c *gin.Context) {
	planID, moduleID, ok := parsePlanModule(c)
	if !ok {
		return
	}
	var req transport.AssignModuleRequest
	if c.Request.ContentLength > 0 {
		if !h.bindJSON(c, &req) {
			return
		}
	}
	result, err := h.svc.AssignModule(c.Request.Context(), planID, moduleID, req.AutoAssignDependencies)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) UnassignModule(c *gin.Context) {
	planID, moduleID, ok := parsePlanModule(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.UnassignModule(c.Request.Context(), planID, moduleID)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) UpdateLimits(c *gin.Context) {
	planID, moduleID, ok := parsePlanModule(c)
	if !ok {
		return
	}
	var req transport.UpdateLimitsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.svc.UpdateLimits(c.Request.Context(), planID, moduleID, req.Limits)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) LimitsCatalog(c *gin.Context) {
	catalog := h.svc.LimitsCatalog()
	if catalog == nil {
		httpkit.OK(c, gin.H{"limits": []any{}})
		return
	}
	httpkit.OK(c, catalog)
}

// Verticals

func (h *Handler) ListVerticals(c *gin.Context) {
	verticals, err := h.svc.ListVerticals(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, verticals)
}

func (h *Handler) GetVertical(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	vertical, err := h.svc.GetVertical(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, vertical)
}

func (h *Handler) CreateVertical(c *gin.Context) {
	var req transport.CreateVerticalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	vertical, err := h.svc.CreateVertical(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, vertical)
}

func (h *Handler) UpdateVertical(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateVerticalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	vertical, err := h.svc.UpdateVertical(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, vertical)
}

func (h *Handler) DeleteVertical(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteVertical(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) SetVerticalModules(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.SetVerticalModulesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	vertical, err := h.svc.SetVerticalModules(c.Request.Context(), id, req.ModuleIDs)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, vertical)
}

func (h *Handler) ListCategories(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	categories, err := h.svc.ListCategories(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	verticalID, ok := parseID(c, "id")
	if !ok {
		return
	}
	categoryID, ok := parseID(c, "categoryId")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteCategory(c.Request.Context(), verticalID, categoryID)) {
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

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func parsePlanModule(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	planID, ok := parseID(c, "id")
	if !ok {
		return uuid.UUID{}, uuid.UUID{}, false
	}
	moduleID, ok := parseID(c, "moduleId")
	if !ok {
		return uuid.UUID{}, uuid.UUID{}, false
	}
	return planID, moduleID, true
}
