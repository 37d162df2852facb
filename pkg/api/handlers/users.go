package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/docuforge/docuforge/pkg/api/errors"
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
	"github.com/docuforge/docuforge/pkg/users"
)

// UserHandler handles admin user management and profile endpoints
type UserHandler struct {
	service   *users.Service
	validator *validator.Validate
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *users.Service) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: validator.New(),
	}
}

// List returns users matching the filter (admin only)
func (h *UserHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	f := domain.UserFilter{
		Role:   domain.Role(c.QueryParam("role")),
		Plan:   domain.Plan(c.QueryParam("plan")),
		Search: c.QueryParam("search"),
		Limit:  limit,
		Offset: offset,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.List(ctx, f)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Get returns one user (admin only)
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "user")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.service.Get(ctx, id)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Update applies an admin edit to role, plan or active flag
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "user")
	}

	var req models.AdminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.service.AdminUpdate(ctx, id, &req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// ToggleStatus flips the active flag (admin only)
func (h *UserHandler) ToggleStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "user")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.service.ToggleStatus(ctx, id)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Delete removes a user and, through the schema, their documents
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "user")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "User deleted",
	})
}

// UpdateProfile lets the caller edit their own profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.service.UpdateProfile(ctx, userID, &req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Usage returns the caller's document counts and plan limits
func (h *UserHandler) Usage(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	usage, err := h.service.Usage(ctx, userID)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, usage)
}
