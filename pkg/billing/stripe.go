package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	billingportalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	stripesubscription "github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
)

// EmailSender sends transactional billing emails
type EmailSender interface {
	SendEmail(toEmail, toName, subject, htmlBody, plainTextBody string) error
}

// UserStore is the slice of the user store billing needs
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey              string
	WebhookSecret          string
	PricePremiumMonthly    string
	PricePremiumAnnual     string
	PriceEnterpriseMonthly string
	PriceEnterpriseAnnual  string
	SuccessURL             string
	CancelURL              string
	BaseURL                string
}

// Service handles Stripe billing operations
type Service struct {
	users  UserStore
	config *StripeConfig
	email  EmailSender
}

// NewService creates a new billing service
func NewService(users UserStore, config *StripeConfig) *Service {
	stripe.Key = config.SecretKey
	return &Service{
		users:  users,
		config: config,
	}
}

// SetEmailSender injects the email sender for billing notifications
func (s *Service) SetEmailSender(email EmailSender) {
	s.email = email
}

// CreateCheckoutSession creates a Stripe checkout session for a subscription upgrade
func (s *Service) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, plan domain.Plan, cycle domain.BillingCycle) (*models.CheckoutResponse, error) {
	priceID, err := s.getPriceID(plan, cycle)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	customerID := u.Subscription.StripeCustomerID
	if customerID == "" {
		custParams := &stripe.CustomerParams{
			Email: stripe.String(u.Email),
			Name:  stripe.String(u.Name),
		}
		custParams.AddMetadata("user_id", u.ID.String())

		cust, err := customer.New(custParams)
		if err != nil {
			return nil, fmt.Errorf("failed to create Stripe customer: %w", err)
		}
		customerID = cust.ID

		u.Subscription.StripeCustomerID = customerID
		if err := s.users.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to save customer ID: %w", err)
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.config.SuccessURL),
		CancelURL:  stripe.String(s.config.CancelURL),
		Metadata: map[string]string{
			"user_id":       u.ID.String(),
			"plan":          string(plan),
			"billing_cycle": string(cycle),
		},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &models.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// CreateCustomerPortalSession creates a Stripe customer portal session
func (s *Service) CreateCustomerPortalSession(ctx context.Context, userID uuid.UUID, returnURL string) (*models.CustomerPortalResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if u.Subscription.StripeCustomerID == "" {
		return nil, domain.NewValidationError("no billing account for this user")
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(u.Subscription.StripeCustomerID),
		ReturnURL: stripe.String(returnURL),
	}

	sess, err := billingportalsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal session: %w", err)
	}

	return &models.CustomerPortalResponse{URL: sess.URL}, nil
}

// CancelSubscription schedules cancellation at the end of the current period
func (s *Service) CancelSubscription(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if u.Subscription.StripeSubscriptionID == "" {
		return domain.NewValidationError("no active subscription to cancel")
	}

	_, err = stripesubscription.Update(u.Subscription.StripeSubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	u.Subscription.Status = domain.SubscriptionCanceling
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to save subscription status: %w", err)
	}

	log.Printf("🔄 Subscription %s scheduled for cancellation", u.Subscription.StripeSubscriptionID)
	return nil
}

// ChangePlan switches an active subscription to a different plan or billing cycle
func (s *Service) ChangePlan(ctx context.Context, userID uuid.UUID, plan domain.Plan, cycle domain.BillingCycle) error {
	priceID, err := s.getPriceID(plan, cycle)
	if err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if u.Subscription.StripeSubscriptionID == "" {
		return domain.NewValidationError("no active subscription to change")
	}

	sub, err := stripesubscription.Get(u.Subscription.StripeSubscriptionID, nil)
	if err != nil {
		return fmt.Errorf("failed to get subscription: %w", err)
	}
	if len(sub.Items.Data) == 0 {
		return fmt.Errorf("subscription %s has no items", sub.ID)
	}

	_, err = stripesubscription.Update(sub.ID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(sub.Items.Data[0].ID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	})
	if err != nil {
		return fmt.Errorf("failed to change plan: %w", err)
	}

	u.Subscription.Plan = plan
	u.Subscription.BillingCycle = cycle
	u.Subscription.Status = domain.SubscriptionActive
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to save plan change: %w", err)
	}

	log.Printf("✅ Subscription %s moved to %s/%s", sub.ID, plan, cycle)
	return nil
}

// GetSubscriptionInfo returns the current subscription state for a user
func (s *Service) GetSubscriptionInfo(ctx context.Context, userID uuid.UUID) (*models.SubscriptionInfo, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	info := &models.SubscriptionInfo{
		Plan:         string(u.Subscription.Plan),
		Status:       string(u.Subscription.Status),
		BillingCycle: string(u.Subscription.BillingCycle),
	}
	if u.Subscription.StartDate != nil {
		info.StartDate = u.Subscription.StartDate.Format("2006-01-02")
	}
	if u.Subscription.EndDate != nil {
		info.EndDate = u.Subscription.EndDate.Format("2006-01-02")
	}
	for _, f := range domain.PlanFeatures(u.Subscription.Plan) {
		info.Features = append(info.Features, string(f))
	}
	return info, nil
}

// HandleWebhook processes Stripe webhook events
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	log.Printf("📨 Stripe webhook received: %s", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		return s.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	case "invoice.paid", "invoice.payment_succeeded":
		return s.handleInvoicePaid(ctx, event)
	case "invoice.payment_failed":
		return s.handleInvoicePaymentFailed(ctx, event)
	default:
		log.Printf("⚠️  Unhandled webhook event type: %s", event.Type)
	}

	return nil
}

// handleCheckoutCompleted activates the purchased plan on the user account
func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	userIDStr, ok := sess.Metadata["user_id"]
	if !ok {
		return fmt.Errorf("user_id not found in metadata")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user_id in metadata: %w", err)
	}

	plan := domain.Plan(sess.Metadata["plan"])
	cycle := domain.BillingCycle(sess.Metadata["billing_cycle"])
	if sess.Subscription == nil || sess.Subscription.ID == "" {
		return fmt.Errorf("checkout session %s carries no subscription", sess.ID)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	now := time.Now().UTC()
	u.Subscription.Plan = plan
	u.Subscription.Status = domain.SubscriptionActive
	u.Subscription.BillingCycle = cycle
	u.Subscription.StartDate = &now
	u.Subscription.EndDate = nil
	u.Subscription.StripeSubscriptionID = sess.Subscription.ID
	if sess.Customer != nil {
		u.Subscription.StripeCustomerID = sess.Customer.ID
	}

	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	log.Printf("✅ Checkout completed: user=%s plan=%s cycle=%s subscription=%s", userID, plan, cycle, sess.Subscription.ID)
	return nil
}

// handleSubscriptionUpdated syncs status and period end with Stripe
func (s *Service) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	log.Printf("🔄 Subscription updated: %s, status=%s", sub.ID, sub.Status)

	u, err := s.users.GetBySubscriptionID(ctx, sub.ID)
	if err != nil {
		if domain.IsNotFound(err) {
			log.Printf("⚠️  Subscription not found: %s", sub.ID)
			return nil
		}
		return fmt.Errorf("failed to find subscription owner: %w", err)
	}

	previous := u.Subscription.Status
	u.Subscription.Status = subscriptionStatus(sub.Status, sub.CancelAtPeriodEnd)
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		u.Subscription.EndDate = &end
	}
	if plan, cycle, ok := s.planForPrice(subscriptionPriceID(&sub)); ok {
		u.Subscription.Plan = plan
		u.Subscription.BillingCycle = cycle
	}

	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	if s.email != nil && previous != u.Subscription.Status {
		switch u.Subscription.Status {
		case domain.SubscriptionActive:
			subject, html, plain := buildSubscriptionActivatedEmail(u.Name, string(u.Subscription.Plan), s.config.BaseURL)
			if err := s.email.SendEmail(u.Email, u.Name, subject, html, plain); err != nil {
				log.Printf("⚠️  Failed to send activation email to %s: %v", u.Email, err)
			}
		case domain.SubscriptionPastDue:
			subject, html, plain := buildPaymentFailedEmail(u.Name, s.config.BaseURL)
			if err := s.email.SendEmail(u.Email, u.Name, subject, html, plain); err != nil {
				log.Printf("⚠️  Failed to send payment failed email to %s: %v", u.Email, err)
			}
		}
	}

	return nil
}

// handleSubscriptionDeleted downgrades the owner back to the free plan
func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	log.Printf("❌ Subscription deleted: %s", sub.ID)

	u, err := s.users.GetBySubscriptionID(ctx, sub.ID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to find subscription owner: %w", err)
	}

	now := time.Now().UTC()
	u.Subscription.Plan = domain.PlanFree
	u.Subscription.Status = domain.SubscriptionCancelled
	u.Subscription.BillingCycle = ""
	u.Subscription.EndDate = &now
	u.Subscription.StripeSubscriptionID = ""

	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to downgrade user: %w", err)
	}

	if s.email != nil {
		subject, html, plain := buildSubscriptionCancelledEmail(u.Name, s.config.BaseURL)
		if err := s.email.SendEmail(u.Email, u.Name, subject, html, plain); err != nil {
			log.Printf("⚠️  Failed to send cancellation email to %s: %v", u.Email, err)
		}
	}

	return nil
}

// handleInvoicePaid extends the paid period and notifies on renewals
func (s *Service) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	log.Printf("💰 Invoice paid: %s, amount=%d", invoice.ID, invoice.AmountPaid)

	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}

	u, err := s.users.GetBySubscriptionID(ctx, invoice.Subscription.ID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to find subscription owner: %w", err)
	}

	u.Subscription.Status = domain.SubscriptionActive
	if invoice.PeriodEnd > 0 {
		end := time.Unix(invoice.PeriodEnd, 0).UTC()
		u.Subscription.EndDate = &end
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to extend subscription: %w", err)
	}

	// Renewal email only for recurring invoices, not the first charge
	if s.email != nil && invoice.BillingReason == stripe.InvoiceBillingReasonSubscriptionCycle {
		nextBilling := time.Unix(invoice.PeriodEnd, 0).Format("2006-01-02")
		subject, html, plain := buildSubscriptionRenewedEmail(u.Name, string(u.Subscription.Plan), nextBilling, s.config.BaseURL)
		if err := s.email.SendEmail(u.Email, u.Name, subject, html, plain); err != nil {
			log.Printf("⚠️  Failed to send renewal email to %s: %v", u.Email, err)
		}
	}

	return nil
}

// handleInvoicePaymentFailed marks the subscription past due
func (s *Service) handleInvoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	log.Printf("⚠️  Invoice payment failed: %s", invoice.ID)

	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}

	u, err := s.users.GetBySubscriptionID(ctx, invoice.Subscription.ID)
	if err != nil {
		if domain.IsNotFound(err) {
			log.Printf("⚠️  Subscription not found for failed invoice: %s", invoice.Subscription.ID)
			return nil
		}
		return fmt.Errorf("failed to find subscription owner: %w", err)
	}

	u.Subscription.Status = domain.SubscriptionPastDue
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to mark subscription past_due: %w", err)
	}

	log.Printf("🔄 Subscription %s set to past_due due to payment failure", invoice.Subscription.ID)

	if s.email != nil {
		subject, html, plain := buildPaymentFailedEmail(u.Name, s.config.BaseURL)
		if err := s.email.SendEmail(u.Email, u.Name, subject, html, plain); err != nil {
			log.Printf("⚠️  Failed to send payment failed email to %s: %v", u.Email, err)
		}
	}

	return nil
}

// getPriceID returns the Stripe price ID for a plan and billing cycle
func (s *Service) getPriceID(plan domain.Plan, cycle domain.BillingCycle) (string, error) {
	switch {
	case plan == domain.PlanPremium && cycle == domain.BillingMonthly:
		return s.config.PricePremiumMonthly, nil
	case plan == domain.PlanPremium && cycle == domain.BillingAnnual:
		return s.config.PricePremiumAnnual, nil
	case plan == domain.PlanEnterprise && cycle == domain.BillingMonthly:
		return s.config.PriceEnterpriseMonthly, nil
	case plan == domain.PlanEnterprise && cycle == domain.BillingAnnual:
		return s.config.PriceEnterpriseAnnual, nil
	default:
		return "", domain.NewValidationError(fmt.Sprintf("no price for plan %q with %q billing", plan, cycle))
	}
}

// planForPrice is the inverse of getPriceID, used when syncing from webhooks
func (s *Service) planForPrice(priceID string) (domain.Plan, domain.BillingCycle, bool) {
	switch priceID {
	case "":
		return "", "", false
	case s.config.PricePremiumMonthly:
		return domain.PlanPremium, domain.BillingMonthly, true
	case s.config.PricePremiumAnnual:
		return domain.PlanPremium, domain.BillingAnnual, true
	case s.config.PriceEnterpriseMonthly:
		return domain.PlanEnterprise, domain.BillingMonthly, true
	case s.config.PriceEnterpriseAnnual:
		return domain.PlanEnterprise, domain.BillingAnnual, true
	default:
		return "", "", false
	}
}

// subscriptionStatus maps a Stripe subscription status onto the domain status
func subscriptionStatus(status stripe.SubscriptionStatus, cancelAtPeriodEnd bool) domain.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		if cancelAtPeriodEnd {
			return domain.SubscriptionCanceling
		}
		return domain.SubscriptionActive
	case stripe.SubscriptionStatusTrialing:
		return domain.SubscriptionTrial
	case stripe.SubscriptionStatusCanceled:
		return domain.SubscriptionCancelled
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return domain.SubscriptionPastDue
	case stripe.SubscriptionStatusIncompleteExpired:
		return domain.SubscriptionExpired
	default:
		return domain.SubscriptionActive
	}
}

// subscriptionPriceID extracts the price ID of the first subscription item
func subscriptionPriceID(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return ""
	}
	return sub.Items.Data[0].Price.ID
}
