package jobs

import (
	"context"
	"log"
	"time"

	"github.com/docuforge/docuforge/pkg/domain"
)

const pageSize = 100

// Sweeper runs periodic account maintenance over the user store
type Sweeper struct {
	users  domain.UserStore
	logger *log.Logger
}

// NewSweeper creates a new sweeper
func NewSweeper(users domain.UserStore, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{users: users, logger: logger}
}

// SweepExpiredSubscriptions marks paid accounts whose billing period ended
// without renewal as expired. Stripe webhooks handle this on the happy path;
// the sweep catches accounts whose webhook was lost.
func (s *Sweeper) SweepExpiredSubscriptions(ctx context.Context) (int, error) {
	now := time.Now()
	expired := 0

	err := s.eachUser(ctx, func(u *domain.User) error {
		if !subscriptionLapsed(u, now) {
			return nil
		}
		// Status alone cuts off paid features; the plan stays so a late
		// renewal webhook can restore the account without guessing it.
		u.Subscription.Status = domain.SubscriptionExpired
		if err := s.users.Update(ctx, u); err != nil {
			s.logger.Printf("⚠️ Failed to expire subscription for %s: %v", u.ID, err)
			return nil
		}
		expired++
		s.logger.Printf("⏳ Subscription expired for user %s (plan %s)", u.ID, u.Subscription.Plan)
		return nil
	})
	return expired, err
}

func subscriptionLapsed(u *domain.User, now time.Time) bool {
	sub := u.Subscription
	if sub.Plan == domain.PlanFree {
		return false
	}
	switch sub.Status {
	case domain.SubscriptionActive, domain.SubscriptionCanceling, domain.SubscriptionTrial, domain.SubscriptionPastDue:
	default:
		return false
	}
	return sub.EndDate != nil && sub.EndDate.Before(now)
}

// PurgeExpiredTokens clears verification, reset and phone code hashes whose
// expiry passed, so stale secrets do not linger on rows
func (s *Sweeper) PurgeExpiredTokens(ctx context.Context) (int, error) {
	now := time.Now()
	purged := 0

	err := s.eachUser(ctx, func(u *domain.User) error {
		dirty := false
		if u.VerificationTokenExpire != nil && u.VerificationTokenExpire.Before(now) {
			u.VerificationTokenHash = ""
			u.VerificationTokenExpire = nil
			dirty = true
		}
		if u.ResetTokenExpire != nil && u.ResetTokenExpire.Before(now) {
			u.ResetTokenHash = ""
			u.ResetTokenExpire = nil
			dirty = true
		}
		if u.PhoneCodeExpire != nil && u.PhoneCodeExpire.Before(now) {
			u.PhoneCodeHash = ""
			u.PhoneCodeExpire = nil
			dirty = true
		}
		if !dirty {
			return nil
		}
		if err := s.users.Update(ctx, u); err != nil {
			s.logger.Printf("⚠️ Failed to purge tokens for %s: %v", u.ID, err)
			return nil
		}
		purged++
		return nil
	})
	return purged, err
}

// eachUser pages through the whole user table
func (s *Sweeper) eachUser(ctx context.Context, fn func(*domain.User) error) error {
	offset := 0
	for {
		page, _, err := s.users.List(ctx, domain.UserFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return err
		}
		for _, u := range page {
			if err := fn(u); err != nil {
				return err
			}
		}
		if len(page) < pageSize {
			return nil
		}
		offset += pageSize
	}
}
