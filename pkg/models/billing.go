package models

// CheckoutRequest represents a request to create a checkout session
type CheckoutRequest struct {
	Plan         string `json:"plan" validate:"required,oneof=premium enterprise"`
	BillingCycle string `json:"billing_cycle" validate:"required,oneof=monthly annual"`
}

// CheckoutResponse represents a checkout session response
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// CustomerPortalResponse represents a customer portal session response
type CustomerPortalResponse struct {
	URL string `json:"url"`
}

// ChangePlanRequest switches an active subscription to another plan
type ChangePlanRequest struct {
	Plan         string `json:"plan" validate:"required,oneof=premium enterprise"`
	BillingCycle string `json:"billing_cycle" validate:"required,oneof=monthly annual"`
}

// SubscriptionInfo represents subscription information
type SubscriptionInfo struct {
	Plan         string `json:"plan"`
	Status       string `json:"status"`
	BillingCycle string `json:"billing_cycle,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Features     []string `json:"features"`
}

// PricingPlan represents a subscription plan with details
type PricingPlan struct {
	Name         string   `json:"name"`
	PriceMonthly int      `json:"price_monthly"`
	PriceAnnual  int      `json:"price_annual"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
}

// PricingResponse represents pricing information
type PricingResponse struct {
	Plans []PricingPlan `json:"plans"`
}
