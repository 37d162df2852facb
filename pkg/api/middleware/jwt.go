package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/docuforge/docuforge/pkg/auth"
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
)

// JWTMiddleware creates a JWT authentication middleware
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return JWTMiddlewareWithBlacklist(secret, nil, nil)
}

// JWTMiddlewareWithBlacklist creates a JWT authentication middleware with
// blacklist support and an optional active-account check
func JWTMiddlewareWithBlacklist(secret string, blacklist *auth.TokenBlacklist, users domain.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "missing_token",
					Message: "Authorization header is required",
				})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token_format",
					Message: "Authorization header must be 'Bearer {token}'",
				})
			}

			return validateAndStore(c, next, parts[1], secret, blacklist, users)
		}
	}
}

// JWTFromQueryOrHeader accepts the token from the Authorization header or a
// token query parameter. Used for export/download links where setting
// headers is impractical.
func JWTFromQueryOrHeader(secret string, blacklist *auth.TokenBlacklist, users domain.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					token = parts[1]
				}
			}

			if token == "" {
				token = c.QueryParam("token")
			}

			if token == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "missing_token",
					Message: "Authorization header or token query parameter is required",
				})
			}

			return validateAndStore(c, next, token, secret, blacklist, users)
		}
	}
}

func validateAndStore(c echo.Context, next echo.HandlerFunc, token, secret string, blacklist *auth.TokenBlacklist, users domain.UserStore) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	claims, err := auth.ValidateJWTWithBlacklist(ctx, token, secret, blacklist)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_token",
			Message: "Token is invalid or has expired",
		})
	}

	// Reject deactivated accounts even with a valid token
	if users != nil {
		u, err := users.GetByID(ctx, claims.UserID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "user_not_found",
				Message: "User account not found",
			})
		}
		if !u.IsActive {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "account_disabled",
				Message: "This account has been disabled",
			})
		}
	}

	// Store token in context for potential logout
	c.Set("token", token)

	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
	c.Set("user_role", claims.Role)
	c.Set("user_plan", claims.Plan)

	return next(c)
}
