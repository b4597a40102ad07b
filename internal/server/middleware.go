package server

import (
	"strings"

	"github.com/dineops/dineops/internal/staff"
	"github.com/gin-gonic/gin"
)

const (
	headerStaffID   = "X-Staff-ID"
	headerStaffRole = "X-Staff-Role"

	ctxStaffID   = "staff_id"
	ctxStaffRole = "staff_role"
)

// StaffContext reads the staff identity headers into the request
// context. Identity is asserted by the front-of-house terminal; this
// service trusts it and only enforces role capabilities.
func StaffContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxStaffID, strings.TrimSpace(c.GetHeader(headerStaffID)))
		c.Set(ctxStaffRole, strings.TrimSpace(strings.ToLower(c.GetHeader(headerStaffRole))))
		c.Next()
	}
}

// RequireCapability rejects requests whose staff role does not hold the
// capability. Missing or unknown roles are unauthorized, known roles
// without the capability are forbidden.
func RequireCapability(cap staff.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := staff.Role(c.GetString(ctxStaffRole))
		if !staff.Valid(role) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !staff.Allowed(role, cap) {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func staffID(c *gin.Context) string {
	return c.GetString(ctxStaffID)
}
