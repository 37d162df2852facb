package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docuforge/docuforge/pkg/domain"
)

// RequireAdmin ensures the authenticated user holds the admin role. The
// role is re-read from the store rather than trusted from the token, so a
// demoted admin loses access as soon as the change lands.
// Apply AFTER the JWT authentication middleware.
func RequireAdmin(users domain.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get("user_id").(uuid.UUID)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "unauthorized",
					"message": "Authentication required",
				})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, userID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "user_not_found",
					"message": "User not found",
				})
			}

			if !u.IsAdmin() {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"error":   "insufficient_permissions",
					"message": "Admin access required",
				})
			}

			c.Set("user_role", string(u.Role))

			return next(c)
		}
	}
}

// RequireVerifiedEmail blocks accounts that have not confirmed their email.
// Accounts created through an external provider or phone login count as
// verified: the provider already proved the identity.
func RequireVerifiedEmail(users domain.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get("user_id").(uuid.UUID)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "unauthorized",
					"message": "Authentication required",
				})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, userID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "user_not_found",
					"message": "User not found",
				})
			}

			if u.AuthProvider == domain.ProviderLocal && !u.EmailVerified {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"error":   "email_not_verified",
					"message": "Please verify your email address to use this feature",
				})
			}

			return next(c)
		}
	}
}
