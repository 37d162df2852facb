package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuforge/docuforge/pkg/domain"
)

const uniqueViolation = "23505"

var _ domain.UserStore = (*UserRepository)(nil)

// UserRepository persists users in PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a user repository backed by the pool
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, phone, password_hash, role, profile_type,
	auth_provider, provider_id, is_active, email_verified, phone_verified, language,
	verification_token_hash, verification_token_expire,
	reset_token_hash, reset_token_expire,
	phone_code_hash, phone_code_expire,
	subscription, usage_stats, document_count, last_login, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var subscription, usage []byte

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.ProfileType,
		&u.AuthProvider, &u.ProviderID, &u.IsActive, &u.EmailVerified, &u.PhoneVerified, &u.Language,
		&u.VerificationTokenHash, &u.VerificationTokenExpire,
		&u.ResetTokenHash, &u.ResetTokenExpire,
		&u.PhoneCodeHash, &u.PhoneCodeExpire,
		&subscription, &usage, &u.DocumentCount, &u.LastLogin, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(subscription, &u.Subscription); err != nil {
		return nil, fmt.Errorf("failed to decode subscription: %w", err)
	}
	if err := json.Unmarshal(usage, &u.Usage); err != nil {
		return nil, fmt.Errorf("failed to decode usage stats: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	subscription, err := json.Marshal(u.Subscription)
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}
	usage, err := json.Marshal(u.Usage)
	if err != nil {
		return fmt.Errorf("failed to encode usage stats: %w", err)
	}

	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

	_, err = r.db.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.ProfileType,
		u.AuthProvider, u.ProviderID, u.IsActive, u.EmailVerified, u.PhoneVerified, u.Language,
		u.VerificationTokenHash, u.VerificationTokenExpire,
		u.ResetTokenHash, u.ResetTokenExpire,
		u.PhoneCodeHash, u.PhoneCodeExpire,
		subscription, usage, u.DocumentCount, u.LastLogin, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.NewConflictError("account already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND email <> ''`
	return r.getOne(ctx, query, domain.NormalizeEmail(email))
}

func (r *UserRepository) GetByProvider(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE auth_provider = $1 AND provider_id = $2 AND provider_id <> ''`
	return r.getOne(ctx, query, provider, providerID)
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1 AND phone <> ''`
	return r.getOne(ctx, query, phone)
}

func (r *UserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE subscription->>'stripe_customer_id' = $1`
	return r.getOne(ctx, query, customerID)
}

func (r *UserRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE subscription->>'stripe_subscription_id' = $1`
	return r.getOne(ctx, query, subscriptionID)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	subscription, err := json.Marshal(u.Subscription)
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}
	usage, err := json.Marshal(u.Usage)
	if err != nil {
		return fmt.Errorf("failed to encode usage stats: %w", err)
	}

	query := `UPDATE users SET
		name = $2, email = $3, phone = $4, password_hash = $5, role = $6,
		profile_type = $7, auth_provider = $8, provider_id = $9,
		is_active = $10, email_verified = $11, phone_verified = $12,
		language = $13,
		verification_token_hash = $14, verification_token_expire = $15,
		reset_token_hash = $16, reset_token_expire = $17,
		phone_code_hash = $18, phone_code_expire = $19,
		subscription = $20, usage_stats = $21, document_count = $22,
		last_login = $23
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role,
		u.ProfileType, u.AuthProvider, u.ProviderID,
		u.IsActive, u.EmailVerified, u.PhoneVerified, u.Language,
		u.VerificationTokenHash, u.VerificationTokenExpire,
		u.ResetTokenHash, u.ResetTokenExpire,
		u.PhoneCodeHash, u.PhoneCodeExpire,
		subscription, usage, u.DocumentCount,
		u.LastLogin,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.NewConflictError("account already exists")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("user")
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, f domain.UserFilter) ([]*domain.User, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Role != "" {
		where = append(where, "role = "+arg(f.Role))
	}
	if f.Plan != "" {
		where = append(where, "subscription->>'plan' = "+arg(f.Plan))
	}
	if f.Search != "" {
		p := arg("%" + strings.ToLower(f.Search) + "%")
		where = append(where, "(lower(name) LIKE "+p+" OR lower(email) LIKE "+p+")")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("user")
	}
	return nil
}
