package jobs

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuforge/docuforge/pkg/domain"
)

type memUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newMemUserStore(users ...*domain.User) *memUserStore {
	s := &memUserStore{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) Create(_ context.Context, u *domain.User) error {
	s.users[u.ID] = u
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}
	copied := *u
	return &copied, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.NewNotFoundError("user")
}

func (s *memUserStore) GetByProvider(_ context.Context, _ domain.AuthProvider, _ string) (*domain.User, error) {
	return nil, domain.NewNotFoundError("user")
}

func (s *memUserStore) GetByPhone(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.NewNotFoundError("user")
}

func (s *memUserStore) GetByStripeCustomerID(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.NewNotFoundError("user")
}

func (s *memUserStore) GetBySubscriptionID(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.NewNotFoundError("user")
}

func (s *memUserStore) Update(_ context.Context, u *domain.User) error {
	if _, ok := s.users[u.ID]; !ok {
		return domain.NewNotFoundError("user")
	}
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *memUserStore) List(_ context.Context, f domain.UserFilter) ([]*domain.User, int, error) {
	all := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })

	if f.Offset >= len(all) {
		return nil, len(all), nil
	}
	end := len(all)
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], len(all), nil
}

func (s *memUserStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.users, id)
	return nil
}

func newUser(t *testing.T, address string) *domain.User {
	t.Helper()
	u, err := domain.NewUser("Usuario Prueba", address, "hashed", domain.ProviderLocal, "", "")
	require.NoError(t, err)
	return u
}

func TestSweepExpiredSubscriptions(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	lapsed := newUser(t, "lapsed@example.com")
	lapsed.Subscription.Plan = domain.PlanPremium
	lapsed.Subscription.Status = domain.SubscriptionCanceling
	lapsed.Subscription.EndDate = &past

	current := newUser(t, "current@example.com")
	current.Subscription.Plan = domain.PlanPremium
	current.Subscription.Status = domain.SubscriptionActive
	current.Subscription.EndDate = &future

	free := newUser(t, "free@example.com")

	store := newMemUserStore(lapsed, current, free)
	sweeper := NewSweeper(store, nil)

	count, err := sweeper.SweepExpiredSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	updated, err := store.GetByID(context.Background(), lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionExpired, updated.Subscription.Status)
	// The plan is left in place so a late renewal can restore the account.
	assert.Equal(t, domain.PlanPremium, updated.Subscription.Plan)
	assert.False(t, updated.HasActiveSubscription())

	untouched, err := store.GetByID(context.Background(), current.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPremium, untouched.Subscription.Plan)
	assert.Equal(t, domain.SubscriptionActive, untouched.Subscription.Status)
}

func TestSweepIgnoresAlreadyExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	u := newUser(t, "done@example.com")
	u.Subscription.Plan = domain.PlanFree
	u.Subscription.Status = domain.SubscriptionExpired
	u.Subscription.EndDate = &past

	sweeper := NewSweeper(newMemUserStore(u), nil)

	count, err := sweeper.SweepExpiredSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPurgeExpiredTokens(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	stale := newUser(t, "stale@example.com")
	stale.VerificationTokenHash = "deadbeef"
	stale.VerificationTokenExpire = &past
	stale.ResetTokenHash = "cafebabe"
	stale.ResetTokenExpire = &past

	fresh := newUser(t, "fresh@example.com")
	fresh.ResetTokenHash = "0123abcd"
	fresh.ResetTokenExpire = &future

	store := newMemUserStore(stale, fresh)
	sweeper := NewSweeper(store, nil)

	count, err := sweeper.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	updated, err := store.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.VerificationTokenHash)
	assert.Nil(t, updated.VerificationTokenExpire)
	assert.Empty(t, updated.ResetTokenHash)

	kept, err := store.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "0123abcd", kept.ResetTokenHash)
}

func TestSweeperPagesThroughAllUsers(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	store := newMemUserStore()
	for i := 0; i < 2*pageSize+5; i++ {
		u := newUser(t, uuid.NewString()+"@example.com")
		u.Subscription.Plan = domain.PlanPremium
		u.Subscription.Status = domain.SubscriptionActive
		u.Subscription.EndDate = &past
		store.users[u.ID] = u
	}

	sweeper := NewSweeper(store, nil)
	count, err := sweeper.SweepExpiredSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2*pageSize+5, count)
}
