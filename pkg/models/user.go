package models

// UpdateProfileRequest represents a request to update user profile
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	ProfileType *string `json:"profile_type,omitempty" validate:"omitempty,oneof=individual business"`
	Language    *string `json:"language,omitempty"`
}

// UserResponse represents a user in responses
type UserResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Role          string `json:"role"`
	ProfileType   string `json:"profile_type"`
	AuthProvider  string `json:"auth_provider"`
	Plan          string `json:"plan"`
	IsActive      bool   `json:"is_active"`
	EmailVerified bool   `json:"email_verified"`
	Language      string `json:"language"`
	DocumentCount int    `json:"document_count"`
	CreatedAt     string `json:"created_at"`
}

// UserListResponse is a paged admin listing of users
type UserListResponse struct {
	Users  []UserResponse `json:"users"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// AdminUpdateUserRequest lets an admin change role, plan or active flag
type AdminUpdateUserRequest struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Plan     *string `json:"plan,omitempty" validate:"omitempty,oneof=free premium enterprise"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UsageResponse represents usage statistics
type UsageResponse struct {
	DocumentsGenerated int    `json:"documents_generated"`
	DocumentsAnalyzed  int    `json:"documents_analyzed"`
	DocumentsEdited    int    `json:"documents_edited"`
	DocumentCount      int    `json:"document_count"`
	LastActivity       string `json:"last_activity,omitempty"`
	Plan               string `json:"plan"`
}
