package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/docuforge/docuforge/pkg/api/errors"
	"github.com/docuforge/docuforge/pkg/billing"
	"github.com/docuforge/docuforge/config"
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
)

// SubscriptionHandler handles billing endpoints
type SubscriptionHandler struct {
	service   *billing.Service
	config    *config.Config
	validator *validator.Validate
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(service *billing.Service, cfg *config.Config) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:   service,
		config:    cfg,
		validator: validator.New(),
	}
}

// Plans returns the public pricing table
func (h *SubscriptionHandler) Plans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.GetPricing())
}

// MySubscription returns the caller's subscription state
func (h *SubscriptionHandler) MySubscription(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	info, err := h.service.GetSubscriptionInfo(ctx, userID)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// Subscribe starts a Stripe Checkout session for a paid plan
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	// Stripe round trips can be slow
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	session, err := h.service.CreateCheckoutSession(ctx, userID, domain.Plan(req.Plan), domain.BillingCycle(req.BillingCycle))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// Cancel schedules cancellation at the end of the current period
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := h.service.CancelSubscription(ctx, userID); err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Subscription will be cancelled at the end of the current period",
	})
}

// ChangePlan switches the active subscription to another plan or cycle
func (h *SubscriptionHandler) ChangePlan(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	var req models.ChangePlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := h.service.ChangePlan(ctx, userID, domain.Plan(req.Plan), domain.BillingCycle(req.BillingCycle)); err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Plan updated",
	})
}

// Portal opens a Stripe customer portal session
func (h *SubscriptionHandler) Portal(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	session, err := h.service.CreateCustomerPortalSession(ctx, userID, h.config.FrontendURL+"/settings/billing")
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// StripeWebhook receives billing events from Stripe. The raw body is
// needed for signature verification, so no binding happens here.
func (h *SubscriptionHandler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 65536))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Could not read webhook payload",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := h.service.HandleWebhook(ctx, payload, c.Request().Header.Get("Stripe-Signature")); err != nil {
		log.Printf("⚠️ Stripe webhook rejected: %v", err)
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_webhook",
			Message: "Webhook verification failed",
		})
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "received"})
}
