// Package tenant resolves the tenant every request acts on.
package tenant

import (
	"context"
	"net/http"

	"inmo_crm_backend/platform/apperr"
	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/httpkit"
	"inmo_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeConfigurationError = "TENANT_CONFIGURATION_ERROR"
	CodeMissingTenant      = "MISSING_TENANT"

	contextKey = "activeTenantID"
)

// Session is the subset of the authenticated identity the resolver reads.
type Session interface {
	IsAuthenticated() bool
	HasRole(role string) bool
	TenantID() *uuid.UUID
}

type Resolver struct {
	cfg config.TenantConfig
}

func NewResolver(cfg config.TenantConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve returns the tenant for session. Superadmins always act on the
// configured default tenant; everybody else on the tenant in their token.
func (r *Resolver) Resolve(session Session) (uuid.UUID, error) {
	if session == nil || !session.IsAuthenticated() {
		return uuid.Nil, apperr.Unauthorized("sesión no iniciada").WithCode(CodeUnauthenticated)
	}

	if session.HasRole(httpkit.RoleSuperAdmin) {
		id := uuid.Nil
		if r.cfg != nil {
			id = r.cfg.GetDefaultTenantID()
		}
		if id == uuid.Nil {
			return uuid.Nil, apperr.Internal("no hay un tenant por defecto configurado").WithCode(CodeConfigurationError)
		}
		return id, nil
	}

	tenantID := session.TenantID()
	if tenantID == nil || *tenantID == uuid.Nil {
		return uuid.Nil, apperr.Forbidden("la sesión no tiene un tenant asignado").WithCode(CodeMissingTenant)
	}
	return *tenantID, nil
}

// Middleware resolves the tenant on every request and aborts on failure.
func Middleware(r *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := r.Resolve(httpkit.GetIdentity(c))
		if err != nil {
			httpkit.HandleError(c, err)
			c.Abort()
			return
		}
		c.Set(contextKey, tenantID)
		ctx := context.WithValue(c.Request.Context(), logger.TenantIDKey, tenantID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// FromContext returns the tenant stored by Middleware.
func FromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(contextKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// MustFromContext writes a 403 and returns false when no tenant was resolved.
func MustFromContext(c *gin.Context) (uuid.UUID, bool) {
	id, ok := FromContext(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "tenant no resuelto", nil)
		return uuid.Nil, false
	}
	return id, true
}
