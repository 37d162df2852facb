package users

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
)

// Service implements profile management and the admin user operations
type Service struct {
	users domain.UserStore
}

// NewService creates a new user service
func NewService(users domain.UserStore) *Service {
	return &Service{users: users}
}

// List returns a paged admin listing of users
func (s *Service) List(ctx context.Context, f domain.UserFilter) (*models.UserListResponse, error) {
	list, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, err
	}

	resp := &models.UserListResponse{
		Users:  make([]models.UserResponse, 0, len(list)),
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	for _, u := range list {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	return resp, nil
}

// Get returns a single user by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.UserResponse, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

// AdminUpdate applies role, plan or active-flag changes to a user
func (s *Service) AdminUpdate(ctx context.Context, id uuid.UUID, req *models.AdminUpdateUserRequest) (*models.UserResponse, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		u.Role = domain.Role(*req.Role)
	}
	if req.Plan != nil {
		u.Subscription.Plan = domain.Plan(*req.Plan)
		if u.Subscription.Status == "" {
			u.Subscription.Status = domain.SubscriptionActive
		}
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	log.Printf("👤 Admin updated user %s (role=%s plan=%s active=%t)", u.ID, u.Role, u.Subscription.Plan, u.IsActive)

	resp := toUserResponse(u)
	return &resp, nil
}

// ToggleStatus flips the active flag, locking or unlocking the account
func (s *Service) ToggleStatus(ctx context.Context, id uuid.UUID) (*models.UserResponse, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.IsActive = !u.IsActive
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	if u.IsActive {
		log.Printf("✅ User %s reactivated", u.ID)
	} else {
		log.Printf("🔒 User %s deactivated", u.ID)
	}

	resp := toUserResponse(u)
	return &resp, nil
}

// Delete removes the account. Documents created by the user go with it
// (the schema cascades on creator).
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("🗑️ User %s deleted", id)
	return nil
}

// UpdateProfile applies self-service profile changes
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, domain.NewValidationError("name cannot be empty")
		}
		u.Name = *req.Name
	}
	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		if email == "" {
			return nil, domain.NewValidationError("email cannot be empty")
		}
		if email != u.Email {
			if u.AuthProvider != domain.ProviderLocal {
				return nil, domain.NewValidationError("email is managed by the login provider")
			}
			u.Email = email
			// The new address must be confirmed again
			u.EmailVerified = false
		}
	}
	if req.ProfileType != nil {
		u.ProfileType = domain.ProfileType(*req.ProfileType)
	}
	if req.Language != nil {
		u.Language = domain.NormalizeLanguage(*req.Language)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := toUserResponse(u)
	return &resp, nil
}

// Usage returns the user's activity counters
func (s *Service) Usage(ctx context.Context, userID uuid.UUID) (*models.UsageResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &models.UsageResponse{
		DocumentsGenerated: u.Usage.DocumentsGenerated,
		DocumentsAnalyzed:  u.Usage.DocumentsAnalyzed,
		DocumentsEdited:    u.Usage.DocumentsEdited,
		DocumentCount:      u.DocumentCount,
		Plan:               string(u.Subscription.Plan),
	}
	if u.Usage.LastActivity != nil {
		resp.LastActivity = u.Usage.LastActivity.Format(time.RFC3339)
	}
	return resp, nil
}

func toUserResponse(u *domain.User) models.UserResponse {
	return models.UserResponse{
		ID:            u.ID.String(),
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          string(u.Role),
		ProfileType:   string(u.ProfileType),
		AuthProvider:  string(u.AuthProvider),
		Plan:          string(u.Subscription.Plan),
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		Language:      u.Language,
		DocumentCount: u.DocumentCount,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
	}
}
