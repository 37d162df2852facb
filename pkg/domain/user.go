package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Role is a platform-level user role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AuthProvider identifies how an account authenticates
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderApple  AuthProvider = "apple"
	ProviderGithub AuthProvider = "github"
	ProviderPhone  AuthProvider = "phone"
)

// ProfileType distinguishes individual from business accounts
type ProfileType string

const (
	ProfileIndividual ProfileType = "individual"
	ProfileBusiness   ProfileType = "business"
)

// Plan is a subscription tier
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// SubscriptionStatus is the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionCanceling SubscriptionStatus = "canceling"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
)

// BillingCycle is the subscription billing interval
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingAnnual  BillingCycle = "annual"
)

// Feature is a plan-gated platform capability
type Feature string

const (
	FeatureGenerateBasic    Feature = "generate_basic_documents"
	FeatureGenerateAdvanced Feature = "generate_advanced_documents"
	FeatureAnalyze          Feature = "analyze_documents"
	FeatureEdit             Feature = "edit_documents"
	FeatureView             Feature = "view_documents"
	FeatureDownload         Feature = "download_documents"
	FeatureTemplates        Feature = "save_templates"
	FeatureTeamAccess       Feature = "team_access"
	FeatureAPIAccess        Feature = "api_access"
)

// planFeatures maps each plan to the features it unlocks
var planFeatures = map[Plan][]Feature{
	PlanFree: {
		FeatureGenerateBasic, FeatureView, FeatureDownload,
	},
	PlanPremium: {
		FeatureGenerateBasic, FeatureGenerateAdvanced, FeatureAnalyze,
		FeatureEdit, FeatureView, FeatureDownload, FeatureTemplates,
	},
	PlanEnterprise: {
		FeatureGenerateBasic, FeatureGenerateAdvanced, FeatureAnalyze,
		FeatureEdit, FeatureView, FeatureDownload, FeatureTemplates,
		FeatureTeamAccess, FeatureAPIAccess,
	},
}

// Subscription holds the billing state attached to a user
type Subscription struct {
	Plan                 Plan               `json:"plan"`
	Status               SubscriptionStatus `json:"status"`
	StartDate            *time.Time         `json:"start_date,omitempty"`
	EndDate              *time.Time         `json:"end_date,omitempty"`
	BillingCycle         BillingCycle       `json:"billing_cycle,omitempty"`
	StripeCustomerID     string             `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string             `json:"stripe_subscription_id,omitempty"`
}

// UsageStats tracks per-user document activity counters
type UsageStats struct {
	DocumentsGenerated int        `json:"documents_generated"`
	DocumentsAnalyzed  int        `json:"documents_analyzed"`
	DocumentsEdited    int        `json:"documents_edited"`
	LastActivity       *time.Time `json:"last_activity,omitempty"`
}

// User is the account aggregate
type User struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Phone         string
	PasswordHash  string
	Role          Role
	ProfileType   ProfileType
	AuthProvider  AuthProvider
	ProviderID    string
	IsActive      bool
	EmailVerified bool
	PhoneVerified bool
	Language      string // preferred interface language (es/en)

	// Verification and reset tokens are stored hashed
	VerificationTokenHash   string
	VerificationTokenExpire *time.Time
	ResetTokenHash          string
	ResetTokenExpire        *time.Time
	PhoneCodeHash           string
	PhoneCodeExpire         *time.Time

	Subscription  Subscription
	Usage         UsageStats
	DocumentCount int

	LastLogin *time.Time
	CreatedAt time.Time
}

// NewUser validates identity invariants and builds a user.
// Exactly one login method must be present: a password (local), an external
// provider identity, or a verified phone number.
func NewUser(name, email string, passwordHash string, provider AuthProvider, providerID, phone string) (*User, error) {
	email = NormalizeEmail(email)
	if name == "" {
		return nil, NewValidationError("name is required")
	}

	switch provider {
	case ProviderLocal:
		if passwordHash == "" {
			return nil, NewValidationError("password is required for local accounts")
		}
		if providerID != "" {
			return nil, NewValidationError("local accounts cannot carry a provider identity")
		}
		if email == "" {
			return nil, NewValidationError("email is required")
		}
	case ProviderApple, ProviderGithub:
		if providerID == "" {
			return nil, NewValidationError("provider id is required for external accounts")
		}
		if passwordHash != "" {
			return nil, NewValidationError("external accounts cannot carry a password")
		}
		if email == "" {
			return nil, NewValidationError("email is required")
		}
	case ProviderPhone:
		if phone == "" {
			return nil, NewValidationError("phone number is required for phone accounts")
		}
		if passwordHash != "" || providerID != "" {
			return nil, NewValidationError("phone accounts cannot carry other credentials")
		}
	default:
		return nil, NewValidationError("unknown auth provider")
	}

	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		ProfileType:  ProfileIndividual,
		AuthProvider: provider,
		ProviderID:   providerID,
		IsActive:     true,
		Language:     "es",
		Subscription: Subscription{
			Plan:   PlanFree,
			Status: SubscriptionActive,
		},
		CreatedAt: now,
	}, nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasActiveSubscription reports whether the subscription currently grants access.
// The free plan is always active; paid plans require active status and an
// end date in the future (or none yet).
func (u *User) HasActiveSubscription() bool {
	if u.Subscription.Plan == "" {
		return false
	}
	if u.Subscription.Plan == PlanFree {
		return true
	}
	if u.Subscription.Status != SubscriptionActive && u.Subscription.Status != SubscriptionCanceling && u.Subscription.Status != SubscriptionTrial {
		return false
	}
	return u.Subscription.EndDate == nil || u.Subscription.EndDate.After(time.Now())
}

// PlanFeatures returns the features unlocked by a plan
func PlanFeatures(p Plan) []Feature {
	return planFeatures[p]
}

// CanAccess reports whether the user's plan includes the feature
func (u *User) CanAccess(feature Feature) bool {
	if !u.HasActiveSubscription() {
		return false
	}
	for _, f := range planFeatures[u.Subscription.Plan] {
		if f == feature {
			return true
		}
	}
	return false
}

// RecordUsage bumps the usage counters for a document action
func (u *User) RecordUsage(action string) {
	now := time.Now().UTC()
	switch action {
	case "generate":
		u.Usage.DocumentsGenerated++
		u.DocumentCount++
	case "analyze":
		u.Usage.DocumentsAnalyzed++
	case "edit":
		u.Usage.DocumentsEdited++
	}
	u.Usage.LastActivity = &now
}

// NormalizeEmail lowercases and trims an email for case-insensitive uniqueness
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeLanguage maps a free-form language value onto a supported tag.
// Unknown values fall back to Spanish, the platform default.
func NormalizeLanguage(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "es"
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return "en"
	default:
		return "es"
	}
}

// ValidRole reports whether s is a known role value
func ValidRole(s string) bool {
	return s == string(RoleUser) || s == string(RoleAdmin)
}

// ValidPlan reports whether s is a known plan value
func ValidPlan(s string) bool {
	switch Plan(s) {
	case PlanFree, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}
