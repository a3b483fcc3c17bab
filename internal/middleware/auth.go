package middleware

import (
	"encoding/json"

	"github.com/CivicGate/civigate/internal/config"
	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

const (
	ContextCitizenKey = "citizen_id"
	ContextStaffKey   = "staff"
)

// CitizenAuth trusts the identity header injected by the verifying
// gateway in front of this service. Token verification never happens
// here; an absent header means the gateway rejected or skipped the
// request.
func CitizenAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		citizenID := c.GetHeader(cfg.Auth.CitizenIDHeader)
		if citizenID == "" {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "missing citizen identity", nil))
			c.Abort()
			return
		}
		c.Set(ContextCitizenKey, citizenID)
		c.Next()
	}
}

// StaffAuth resolves the staff principal from gateway headers: the
// staff id plus a JSON claims document whose shape varies by identity
// provider. Role derivation is a single pure mapping; absent or
// unparseable claims degrade to viewer.
func StaffAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		staffID := c.GetHeader(cfg.Auth.StaffIDHeader)
		if staffID == "" {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "missing staff identity", nil))
			c.Abort()
			return
		}

		claims := map[string]any{}
		if raw := c.GetHeader(cfg.Auth.StaffClaimsHeader); raw != "" {
			_ = json.Unmarshal([]byte(raw), &claims)
		}

		c.Set(ContextStaffKey, model.Staff{
			StaffID: staffID,
			Role:    model.RoleFromClaims(claims),
		})
		c.Next()
	}
}

// RequireRole gates a route on minimum staff role. Must run after
// StaffAuth.
func RequireRole(min model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		staffVal, exists := c.Get(ContextStaffKey)
		if !exists {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "missing staff context", nil))
			c.Abort()
			return
		}
		staff := staffVal.(model.Staff)
		if !staff.Role.AtLeast(min) {
			c.Error(apperrors.NewForbidden("insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}
