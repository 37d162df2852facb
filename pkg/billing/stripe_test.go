package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/docuforge/docuforge/pkg/domain"
)

type fakeUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}
	return u, nil
}

func (s *fakeUserStore) GetByStripeCustomerID(_ context.Context, customerID string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Subscription.StripeCustomerID == customerID {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("user")
}

func (s *fakeUserStore) GetBySubscriptionID(_ context.Context, subscriptionID string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Subscription.StripeSubscriptionID == subscriptionID {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("user")
}

func (s *fakeUserStore) Update(_ context.Context, u *domain.User) error {
	s.users[u.ID] = u
	return nil
}

type fakeEmailSender struct {
	sent []string
}

func (f *fakeEmailSender) SendEmail(toEmail, _, subject, _, _ string) error {
	f.sent = append(f.sent, toEmail+": "+subject)
	return nil
}

func testConfig() *StripeConfig {
	return &StripeConfig{
		SecretKey:              "sk_test_123",
		WebhookSecret:          "whsec_123",
		PricePremiumMonthly:    "price_prem_month",
		PricePremiumAnnual:     "price_prem_year",
		PriceEnterpriseMonthly: "price_ent_month",
		PriceEnterpriseAnnual:  "price_ent_year",
		SuccessURL:             "https://docuforge.io/success",
		CancelURL:              "https://docuforge.io/cancel",
		BaseURL:                "https://docuforge.io",
	}
}

func testUser(t *testing.T) *domain.User {
	t.Helper()
	u, err := domain.NewUser("Laura Méndez", "laura@example.com", "hashed", domain.ProviderLocal, "", "")
	require.NoError(t, err)
	return u
}

func stripeEvent(t *testing.T, payload interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return stripe.Event{Data: &stripe.EventData{Raw: raw}}
}

func TestGetPriceID(t *testing.T) {
	s := NewService(newFakeUserStore(), testConfig())

	tests := []struct {
		plan    domain.Plan
		cycle   domain.BillingCycle
		want    string
		wantErr bool
	}{
		{domain.PlanPremium, domain.BillingMonthly, "price_prem_month", false},
		{domain.PlanPremium, domain.BillingAnnual, "price_prem_year", false},
		{domain.PlanEnterprise, domain.BillingMonthly, "price_ent_month", false},
		{domain.PlanEnterprise, domain.BillingAnnual, "price_ent_year", false},
		{domain.PlanFree, domain.BillingMonthly, "", true},
		{domain.Plan("unknown"), domain.BillingAnnual, "", true},
	}

	for _, tt := range tests {
		got, err := s.getPriceID(tt.plan, tt.cycle)
		if tt.wantErr {
			assert.Error(t, err, "plan=%s cycle=%s", tt.plan, tt.cycle)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestPlanForPrice(t *testing.T) {
	s := NewService(newFakeUserStore(), testConfig())

	plan, cycle, ok := s.planForPrice("price_ent_year")
	assert.True(t, ok)
	assert.Equal(t, domain.PlanEnterprise, plan)
	assert.Equal(t, domain.BillingAnnual, cycle)

	_, _, ok = s.planForPrice("price_unknown")
	assert.False(t, ok)

	_, _, ok = s.planForPrice("")
	assert.False(t, ok)
}

func TestSubscriptionStatusMapping(t *testing.T) {
	tests := []struct {
		status            stripe.SubscriptionStatus
		cancelAtPeriodEnd bool
		want              domain.SubscriptionStatus
	}{
		{stripe.SubscriptionStatusActive, false, domain.SubscriptionActive},
		{stripe.SubscriptionStatusActive, true, domain.SubscriptionCanceling},
		{stripe.SubscriptionStatusTrialing, false, domain.SubscriptionTrial},
		{stripe.SubscriptionStatusCanceled, false, domain.SubscriptionCancelled},
		{stripe.SubscriptionStatusPastDue, false, domain.SubscriptionPastDue},
		{stripe.SubscriptionStatusUnpaid, false, domain.SubscriptionPastDue},
		{stripe.SubscriptionStatusIncompleteExpired, false, domain.SubscriptionExpired},
	}

	for _, tt := range tests {
		got := subscriptionStatus(tt.status, tt.cancelAtPeriodEnd)
		assert.Equal(t, tt.want, got, "status=%s cancel=%v", tt.status, tt.cancelAtPeriodEnd)
	}
}

func TestHandleCheckoutCompleted(t *testing.T) {
	u := testUser(t)
	store := newFakeUserStore(u)
	s := NewService(store, testConfig())

	event := stripeEvent(t, map[string]interface{}{
		"id": "cs_test_1",
		"metadata": map[string]string{
			"user_id":       u.ID.String(),
			"plan":          "premium",
			"billing_cycle": "monthly",
		},
		"subscription": map[string]string{"id": "sub_123"},
		"customer":     map[string]string{"id": "cus_123"},
	})

	err := s.handleCheckoutCompleted(context.Background(), event)
	require.NoError(t, err)

	updated := store.users[u.ID]
	assert.Equal(t, domain.PlanPremium, updated.Subscription.Plan)
	assert.Equal(t, domain.SubscriptionActive, updated.Subscription.Status)
	assert.Equal(t, domain.BillingMonthly, updated.Subscription.BillingCycle)
	assert.Equal(t, "sub_123", updated.Subscription.StripeSubscriptionID)
	assert.Equal(t, "cus_123", updated.Subscription.StripeCustomerID)
	assert.NotNil(t, updated.Subscription.StartDate)
}

func TestHandleCheckoutCompletedMissingUserID(t *testing.T) {
	s := NewService(newFakeUserStore(), testConfig())

	event := stripeEvent(t, map[string]interface{}{
		"id":           "cs_test_2",
		"metadata":     map[string]string{},
		"subscription": map[string]string{"id": "sub_123"},
	})

	err := s.handleCheckoutCompleted(context.Background(), event)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "user_id")
}

func TestHandleSubscriptionDeleted(t *testing.T) {
	u := testUser(t)
	u.Subscription.Plan = domain.PlanPremium
	u.Subscription.Status = domain.SubscriptionActive
	u.Subscription.StripeSubscriptionID = "sub_del"
	store := newFakeUserStore(u)
	sender := &fakeEmailSender{}
	s := NewService(store, testConfig())
	s.SetEmailSender(sender)

	event := stripeEvent(t, map[string]interface{}{"id": "sub_del"})
	err := s.handleSubscriptionDeleted(context.Background(), event)
	require.NoError(t, err)

	updated := store.users[u.ID]
	assert.Equal(t, domain.PlanFree, updated.Subscription.Plan)
	assert.Equal(t, domain.SubscriptionCancelled, updated.Subscription.Status)
	assert.Empty(t, updated.Subscription.StripeSubscriptionID)
	assert.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "cancelada")
}

func TestHandleSubscriptionDeletedUnknownSubscription(t *testing.T) {
	s := NewService(newFakeUserStore(), testConfig())

	event := stripeEvent(t, map[string]interface{}{"id": "sub_ghost"})
	err := s.handleSubscriptionDeleted(context.Background(), event)
	assert.NoError(t, err, "unknown subscriptions are ignored")
}

func TestHandleSubscriptionUpdatedSyncsPlanAndStatus(t *testing.T) {
	u := testUser(t)
	u.Subscription.Plan = domain.PlanPremium
	u.Subscription.Status = domain.SubscriptionPastDue
	u.Subscription.StripeSubscriptionID = "sub_upd"
	store := newFakeUserStore(u)
	sender := &fakeEmailSender{}
	s := NewService(store, testConfig())
	s.SetEmailSender(sender)

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	event := stripeEvent(t, map[string]interface{}{
		"id":                 "sub_upd",
		"status":             "active",
		"current_period_end": periodEnd,
		"items": map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": "si_1", "price": map[string]string{"id": "price_ent_year"}},
			},
		},
	})

	err := s.handleSubscriptionUpdated(context.Background(), event)
	require.NoError(t, err)

	updated := store.users[u.ID]
	assert.Equal(t, domain.SubscriptionActive, updated.Subscription.Status)
	assert.Equal(t, domain.PlanEnterprise, updated.Subscription.Plan)
	assert.Equal(t, domain.BillingAnnual, updated.Subscription.BillingCycle)
	require.NotNil(t, updated.Subscription.EndDate)
	assert.Equal(t, periodEnd, updated.Subscription.EndDate.Unix())
	assert.Len(t, sender.sent, 1, "status change triggers activation email")
	assert.Contains(t, sender.sent[0], "activada")
}

func TestHandleInvoicePaymentFailed(t *testing.T) {
	u := testUser(t)
	u.Subscription.Plan = domain.PlanPremium
	u.Subscription.Status = domain.SubscriptionActive
	u.Subscription.StripeSubscriptionID = "sub_fail"
	store := newFakeUserStore(u)
	sender := &fakeEmailSender{}
	s := NewService(store, testConfig())
	s.SetEmailSender(sender)

	event := stripeEvent(t, map[string]interface{}{
		"id":           "in_1",
		"subscription": map[string]string{"id": "sub_fail"},
	})

	err := s.handleInvoicePaymentFailed(context.Background(), event)
	require.NoError(t, err)

	updated := store.users[u.ID]
	assert.Equal(t, domain.SubscriptionPastDue, updated.Subscription.Status)
	assert.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "pago")
}

func TestHandleInvoicePaidExtendsPeriod(t *testing.T) {
	u := testUser(t)
	u.Subscription.Plan = domain.PlanPremium
	u.Subscription.Status = domain.SubscriptionPastDue
	u.Subscription.StripeSubscriptionID = "sub_paid"
	store := newFakeUserStore(u)
	sender := &fakeEmailSender{}
	s := NewService(store, testConfig())
	s.SetEmailSender(sender)

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	event := stripeEvent(t, map[string]interface{}{
		"id":             "in_2",
		"amount_paid":    1900,
		"billing_reason": "subscription_cycle",
		"subscription":   map[string]string{"id": "sub_paid"},
		"period_end":     periodEnd,
	})

	err := s.handleInvoicePaid(context.Background(), event)
	require.NoError(t, err)

	updated := store.users[u.ID]
	assert.Equal(t, domain.SubscriptionActive, updated.Subscription.Status)
	require.NotNil(t, updated.Subscription.EndDate)
	assert.Equal(t, periodEnd, updated.Subscription.EndDate.Unix())
	assert.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "renovada")
}

func TestGetSubscriptionInfo(t *testing.T) {
	u := testUser(t)
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)
	u.Subscription = domain.Subscription{
		Plan:         domain.PlanPremium,
		Status:       domain.SubscriptionActive,
		BillingCycle: domain.BillingAnnual,
		StartDate:    &start,
		EndDate:      &end,
	}
	s := NewService(newFakeUserStore(u), testConfig())

	info, err := s.GetSubscriptionInfo(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "premium", info.Plan)
	assert.Equal(t, "active", info.Status)
	assert.Equal(t, "annual", info.BillingCycle)
	assert.Equal(t, "2026-01-15", info.StartDate)
	assert.Equal(t, "2027-01-15", info.EndDate)
	assert.Contains(t, info.Features, "analyze_documents")
	assert.NotContains(t, info.Features, "api_access")
}

func TestGetPricing(t *testing.T) {
	s := NewService(newFakeUserStore(), testConfig())

	pricing := s.GetPricing()
	require.Len(t, pricing.Plans, 3)

	assert.Equal(t, "free", pricing.Plans[0].Name)
	assert.Equal(t, 0, pricing.Plans[0].PriceMonthly)
	assert.Equal(t, "premium", pricing.Plans[1].Name)
	assert.Equal(t, "enterprise", pricing.Plans[2].Name)
	for _, p := range pricing.Plans {
		assert.NotEmpty(t, p.Description)
		assert.NotEmpty(t, p.Features)
	}
}

func TestBuildSubscriptionActivatedEmail(t *testing.T) {
	subject, html, plain := buildSubscriptionActivatedEmail("Laura", "premium", "https://docuforge.io")

	assert.Contains(t, subject, "activada")
	assert.Contains(t, html, "Laura")
	assert.Contains(t, html, "premium")
	assert.Contains(t, plain, "Laura")
	assert.Contains(t, plain, "premium")
	assert.NotEmpty(t, subject)
}

func TestBuildSubscriptionCancelledEmail(t *testing.T) {
	subject, html, plain := buildSubscriptionCancelledEmail("Diego", "https://docuforge.io")

	assert.Contains(t, subject, "cancelada")
	assert.Contains(t, html, "Diego")
	assert.Contains(t, html, "documentos")
	assert.Contains(t, plain, "Diego")
	assert.NotEmpty(t, subject)
}

func TestBuildSubscriptionRenewedEmail(t *testing.T) {
	subject, html, plain := buildSubscriptionRenewedEmail("Ana", "enterprise", "2026-03-01", "https://docuforge.io")

	assert.Contains(t, subject, "renovada")
	assert.Contains(t, html, "Ana")
	assert.Contains(t, html, "enterprise")
	assert.Contains(t, html, "2026-03-01")
	assert.Contains(t, plain, "Ana")
	assert.Contains(t, plain, "2026-03-01")
	assert.NotEmpty(t, subject)
}

func TestBuildPaymentFailedEmail(t *testing.T) {
	subject, html, plain := buildPaymentFailedEmail("Carmen", "https://docuforge.io")

	assert.Contains(t, subject, "pago")
	assert.Contains(t, html, "Carmen")
	assert.Contains(t, plain, "Carmen")
	assert.Contains(t, plain, "docuforge.io/dashboard/settings")
}

// signWebhookPayload builds a Stripe-Signature header the way Stripe does:
// HMAC-SHA256 over "t=<timestamp>.<payload>" with the endpoint secret.
func signWebhookPayload(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestHandleWebhookDispatchesInvoicePaymentSucceeded(t *testing.T) {
	u := testUser(t)
	u.Subscription.Plan = domain.PlanPremium
	u.Subscription.Status = domain.SubscriptionPastDue
	u.Subscription.StripeSubscriptionID = "sub_renew"
	store := newFakeUserStore(u)
	s := NewService(store, testConfig())

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_1",
		"type":        "invoice.payment_succeeded",
		"api_version": stripe.APIVersion,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             "in_3",
				"amount_paid":    1900,
				"billing_reason": "subscription_cycle",
				"subscription":   map[string]string{"id": "sub_renew"},
				"period_end":     periodEnd,
			},
		},
	})
	require.NoError(t, err)

	header := signWebhookPayload(t, payload, testConfig().WebhookSecret)
	require.NoError(t, s.HandleWebhook(context.Background(), payload, header))

	updated := store.users[u.ID]
	assert.Equal(t, domain.SubscriptionActive, updated.Subscription.Status)
	require.NotNil(t, updated.Subscription.EndDate)
	assert.Equal(t, periodEnd, updated.Subscription.EndDate.Unix())
}
