// Package httpkit provides HTTP helpers shared by every module.
package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoleSuperAdmin is the role allowed to administer plans and modules
// and to act on the configured default tenant.
const RoleSuperAdmin = "superadmin"

// Identity is the authenticated session as seen by handlers.
type Identity interface {
	UserID() uuid.UUID
	Roles() []string
	HasRole(role string) bool
	// TenantID is the tenant carried by the token, nil when the claim is absent.
	TenantID() *uuid.UUID
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	roles         []string
	tenantID      *uuid.UUID
	authenticated bool
}

func (i *identity) UserID() uuid.UUID        { return i.userID }
func (i *identity) Roles() []string          { return i.roles }
func (i *identity) HasRole(role string) bool { return slices.Contains(i.roles, role) }
func (i *identity) TenantID() *uuid.UUID     { return i.tenantID }
func (i *identity) IsAuthenticated() bool    { return i.authenticated }

// NewIdentity builds an authenticated identity, mainly for tests and workers.
func NewIdentity(userID uuid.UUID, roles []string, tenantID *uuid.UUID) Identity {
	return &identity{userID: userID, roles: roles, tenantID: tenantID, authenticated: true}
}

// GetIdentity never returns nil; the result may be unauthenticated.
func GetIdentity(c *gin.Context) Identity {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := raw.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	var roles []string
	if r, ok := c.Get(ContextRolesKey); ok {
		roles, _ = r.([]string)
	}

	var tenantID *uuid.UUID
	if t, ok := c.Get(ContextTenantIDKey); ok {
		if id, ok := t.(uuid.UUID); ok {
			tenantID = &id
		}
	}

	return &identity{userID: uid, roles: roles, tenantID: tenantID, authenticated: true}
}

// MustGetIdentity aborts with 401 and returns nil when no session is present.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "no autenticado"})
		return nil
	}
	return id
}
