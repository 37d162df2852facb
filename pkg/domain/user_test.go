package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserLocal(t *testing.T) {
	u, err := NewUser("Ana", "Ana@Example.COM", "hashed", ProviderLocal, "", "")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, ProfileIndividual, u.ProfileType)
	assert.Equal(t, PlanFree, u.Subscription.Plan)
	assert.Equal(t, SubscriptionActive, u.Subscription.Status)
	assert.True(t, u.IsActive)
	assert.False(t, u.EmailVerified)
}

func TestNewUserExactlyOneLoginMethod(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		provider   AuthProvider
		providerID string
		phone      string
		wantErr    bool
	}{
		{"local ok", "a@b.com", "hash", ProviderLocal, "", "", false},
		{"local without password", "a@b.com", "", ProviderLocal, "", "", true},
		{"local with provider id", "a@b.com", "hash", ProviderLocal, "apple-1", "", true},
		{"local without email", "", "hash", ProviderLocal, "", "", true},
		{"apple ok", "a@b.com", "", ProviderApple, "apple-1", "", false},
		{"apple without provider id", "a@b.com", "", ProviderApple, "", "", true},
		{"github with password", "a@b.com", "hash", ProviderGithub, "gh-1", "", true},
		{"phone ok", "", "", ProviderPhone, "", "+34600111222", false},
		{"phone without number", "", "", ProviderPhone, "", "", true},
		{"phone with password", "", "hash", ProviderPhone, "", "+34600111222", true},
		{"unknown provider", "a@b.com", "hash", AuthProvider("ldap"), "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser("Ana", tt.email, tt.password, tt.provider, tt.providerID, tt.phone)
			if tt.wantErr {
				assert.True(t, IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHasActiveSubscription(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"free always active", Subscription{Plan: PlanFree, Status: SubscriptionExpired}, true},
		{"premium active no end date", Subscription{Plan: PlanPremium, Status: SubscriptionActive}, true},
		{"premium active future end", Subscription{Plan: PlanPremium, Status: SubscriptionActive, EndDate: &future}, true},
		{"premium active past end", Subscription{Plan: PlanPremium, Status: SubscriptionActive, EndDate: &past}, false},
		{"premium canceling keeps access", Subscription{Plan: PlanPremium, Status: SubscriptionCanceling, EndDate: &future}, true},
		{"premium trial", Subscription{Plan: PlanEnterprise, Status: SubscriptionTrial}, true},
		{"premium expired", Subscription{Plan: PlanPremium, Status: SubscriptionExpired}, false},
		{"premium past due", Subscription{Plan: PlanPremium, Status: SubscriptionPastDue}, false},
		{"no plan", Subscription{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Subscription: tt.sub}
			assert.Equal(t, tt.want, u.HasActiveSubscription())
		})
	}
}

func TestCanAccess(t *testing.T) {
	free := &User{Subscription: Subscription{Plan: PlanFree, Status: SubscriptionActive}}
	premium := &User{Subscription: Subscription{Plan: PlanPremium, Status: SubscriptionActive}}
	enterprise := &User{Subscription: Subscription{Plan: PlanEnterprise, Status: SubscriptionActive}}
	lapsed := &User{Subscription: Subscription{Plan: PlanPremium, Status: SubscriptionExpired}}

	assert.True(t, free.CanAccess(FeatureGenerateBasic))
	assert.False(t, free.CanAccess(FeatureAnalyze))
	assert.False(t, free.CanAccess(FeatureTemplates))

	assert.True(t, premium.CanAccess(FeatureAnalyze))
	assert.True(t, premium.CanAccess(FeatureTemplates))
	assert.False(t, premium.CanAccess(FeatureAPIAccess))

	assert.True(t, enterprise.CanAccess(FeatureAPIAccess))
	assert.True(t, enterprise.CanAccess(FeatureTeamAccess))

	// A lapsed subscription grants nothing, including free-tier features.
	assert.False(t, lapsed.CanAccess(FeatureGenerateBasic))
}

func TestRecordUsage(t *testing.T) {
	u := &User{}
	u.RecordUsage("generate")
	u.RecordUsage("generate")
	u.RecordUsage("analyze")
	u.RecordUsage("edit")
	u.RecordUsage("unknown")

	assert.Equal(t, 2, u.Usage.DocumentsGenerated)
	assert.Equal(t, 1, u.Usage.DocumentsAnalyzed)
	assert.Equal(t, 1, u.Usage.DocumentsEdited)
	assert.Equal(t, 2, u.DocumentCount)
	assert.NotNil(t, u.Usage.LastActivity)
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en", NormalizeLanguage("en"))
	assert.Equal(t, "en", NormalizeLanguage("en-US"))
	assert.Equal(t, "es", NormalizeLanguage("es"))
	assert.Equal(t, "es", NormalizeLanguage("es-MX"))
	assert.Equal(t, "es", NormalizeLanguage("fr"))
	assert.Equal(t, "es", NormalizeLanguage(""))
	assert.Equal(t, "es", NormalizeLanguage("not a language"))
}
