package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserFilter narrows List queries. Zero value means no filtering.
type UserFilter struct {
	Role   Role
	Plan   Plan
	Search string // matches name or email, case-insensitive
	Limit  int
	Offset int
}

// UserStore is the persistence boundary for users.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByProvider(ctx context.Context, provider AuthProvider, providerID string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*User, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, f UserFilter) ([]*User, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Type   DocumentType
	Status DocumentStatus
	Search string // matches title, case-insensitive
	Limit  int
	Offset int
}

// DocumentStore is the persistence boundary for documents.
//
// Update performs a compare-and-swap on the revision stamp: it persists the
// document only when the stored revision matches d.Revision, then bumps it.
// A stale revision yields a CONFLICT domain error and leaves the row intact.
type DocumentStore interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	Update(ctx context.Context, d *Document) error
	ListByUser(ctx context.Context, userID uuid.UUID, f DocumentFilter) ([]*Document, int, error)
	ListAll(ctx context.Context, f DocumentFilter) ([]*Document, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
