package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docuforge/docuforge/config"
	"github.com/docuforge/docuforge/pkg/api/errors"
	"github.com/docuforge/docuforge/pkg/auth"
	"github.com/docuforge/docuforge/pkg/cache"
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/email"
	"github.com/docuforge/docuforge/pkg/models"
	"github.com/docuforge/docuforge/pkg/oauth"
	"github.com/docuforge/docuforge/pkg/phone"
	"github.com/docuforge/docuforge/pkg/sms"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
	phoneCodeTTL         = 10 * time.Minute
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users        domain.UserStore
	config       *config.Config
	blacklist    *auth.TokenBlacklist
	cache        *cache.Client
	emailService *email.Service
	smsService   *sms.Service
	oauthService *oauth.Service
	validator    *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users domain.UserStore, cfg *config.Config, blacklist *auth.TokenBlacklist, cacheClient *cache.Client, emailService *email.Service, smsService *sms.Service, oauthService *oauth.Service) *AuthHandler {
	return &AuthHandler{
		users:        users,
		config:       cfg,
		blacklist:    blacklist,
		cache:        cacheClient,
		emailService: emailService,
		smsService:   smsService,
		oauthService: oauthService,
		validator:    validator.New(),
	}
}

// Register creates a local account with email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Check if user already exists
	if _, err := h.users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "user_exists",
			Message: "User with this email already exists",
		})
	} else if !domain.IsNotFound(err) {
		return errors.InternalError(c, err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return errors.InternalError(c, err)
	}

	u, err := domain.NewUser(req.Name, req.Email, hashedPassword, domain.ProviderLocal, "", "")
	if err != nil {
		return errors.Domain(c, err)
	}

	verificationToken, err := auth.GenerateToken()
	if err != nil {
		return errors.InternalError(c, err)
	}
	tokenExpire := time.Now().Add(verificationTokenTTL)
	u.VerificationTokenHash = auth.HashToken(verificationToken)
	u.VerificationTokenExpire = &tokenExpire

	if err := h.users.Create(ctx, u); err != nil {
		return errors.Domain(c, err)
	}

	// Token hash to user id mapping for the verification lookup
	if err := h.cache.Set(ctx, verifyKey(u.VerificationTokenHash), u.ID.String(), verificationTokenTTL); err != nil {
		return errors.InternalError(c, err)
	}

	// Send verification email (async)
	go h.emailService.SendVerificationEmail(u.Email, u.Name, verificationToken)

	return h.respondWithToken(c, http.StatusCreated, u)
}

// Login authenticates a local account
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid email or password",
			})
		}
		return errors.InternalError(c, err)
	}

	if u.AuthProvider != domain.ProviderLocal || !auth.CheckPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
	}

	if !u.IsActive {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "account_disabled",
			Message: "This account has been disabled",
		})
	}

	h.recordLogin(ctx, u)

	return h.respondWithToken(c, http.StatusOK, u)
}

// ProviderLogin exchanges external provider credentials for a session.
// Supported providers: apple (identity token), github (authorization code).
func (h *AuthHandler) ProviderLogin(c echo.Context) error {
	provider := c.Param("provider")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var info *oauth.UserInfo
	var name string

	switch provider {
	case "apple":
		var req models.AppleAuthRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: "Invalid request body",
			})
		}
		if err := h.validator.Struct(req); err != nil {
			return errors.ValidationError(c, err)
		}
		var err error
		info, err = h.oauthService.VerifyAppleToken(ctx, req.IdentityToken)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_token",
				Message: "Identity token could not be verified",
			})
		}
		// Apple only sends the name on the first authorization
		name = req.Name

	case "github":
		var req models.GithubAuthRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: "Invalid request body",
			})
		}
		if err := h.validator.Struct(req); err != nil {
			return errors.ValidationError(c, err)
		}
		var err error
		info, err = h.oauthService.ExchangeGithubCode(ctx, req.Code)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_code",
				Message: "Authorization code could not be exchanged",
			})
		}
		name = info.Name

	default:
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_provider",
			Message: "Supported providers: apple, github",
		})
	}

	u, err := h.findOrCreateProviderUser(ctx, info, name)
	if err != nil {
		return errors.Domain(c, err)
	}

	if !u.IsActive {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "account_disabled",
			Message: "This account has been disabled",
		})
	}

	h.recordLogin(ctx, u)

	return h.respondWithToken(c, http.StatusOK, u)
}

// findOrCreateProviderUser resolves an external identity to an account,
// linking by email when the address already has a local account
func (h *AuthHandler) findOrCreateProviderUser(ctx context.Context, info *oauth.UserInfo, name string) (*domain.User, error) {
	u, err := h.users.GetByProvider(ctx, info.Provider, info.ID)
	if err == nil {
		return u, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	if info.Email != "" {
		u, err = h.users.GetByEmail(ctx, info.Email)
		if err == nil {
			// Link the provider identity to the existing account
			u.AuthProvider = info.Provider
			u.ProviderID = info.ID
			u.PasswordHash = ""
			u.EmailVerified = true
			if err := h.users.Update(ctx, u); err != nil {
				return nil, err
			}
			return u, nil
		}
		if !domain.IsNotFound(err) {
			return nil, err
		}
	}

	if name == "" {
		name = "Usuario de DocuForge"
	}
	u, err = domain.NewUser(name, info.Email, "", info.Provider, info.ID, "")
	if err != nil {
		return nil, err
	}
	// The provider already verified the address
	u.EmailVerified = info.Email != ""

	if err := h.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// PhoneStart sends an SMS login code to the given number
func (h *AuthHandler) PhoneStart(c echo.Context) error {
	var req models.PhoneStartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	e164, err := phone.Normalize(req.Phone, req.Region)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_phone",
			Message: "Invalid phone number",
		})
	}
	if !phone.IsMobile(e164) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_phone",
			Message: "SMS codes can only be sent to mobile numbers",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	code, err := auth.GenerateVerificationCode()
	if err != nil {
		return errors.InternalError(c, err)
	}
	codeHash := auth.HashToken(code)
	codeExpire := time.Now().Add(phoneCodeTTL)

	u, err := h.users.GetByPhone(ctx, e164)
	switch {
	case err == nil:
		u.PhoneCodeHash = codeHash
		u.PhoneCodeExpire = &codeExpire
		if err := h.users.Update(ctx, u); err != nil {
			return errors.Domain(c, err)
		}
	case domain.IsNotFound(err):
		// Account does not exist yet; hold the code until it is verified
		if err := h.cache.Set(ctx, phoneCodeKey(e164), codeHash, phoneCodeTTL); err != nil {
			return errors.InternalError(c, err)
		}
	default:
		return errors.InternalError(c, err)
	}

	if err := h.smsService.SendVerificationCode(ctx, e164, code); err != nil {
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Verification code sent",
	})
}

// PhoneVerify exchanges an SMS code for a session, creating the account on
// first login
func (h *AuthHandler) PhoneVerify(c echo.Context) error {
	var req models.PhoneVerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	e164, err := phone.Normalize(req.Phone, "")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_phone",
			Message: "Invalid phone number",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	codeHash := auth.HashToken(req.Code)

	u, err := h.users.GetByPhone(ctx, e164)
	switch {
	case err == nil:
		if u.PhoneCodeHash == "" || u.PhoneCodeHash != codeHash ||
			u.PhoneCodeExpire == nil || time.Now().After(*u.PhoneCodeExpire) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_code",
				Message: "Invalid or expired verification code",
			})
		}
		u.PhoneCodeHash = ""
		u.PhoneCodeExpire = nil
		u.PhoneVerified = true
		if err := h.users.Update(ctx, u); err != nil {
			return errors.Domain(c, err)
		}

	case domain.IsNotFound(err):
		stored, cacheErr := h.cache.Get(ctx, phoneCodeKey(e164))
		if cacheErr != nil || stored == "" || stored != codeHash {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_code",
				Message: "Invalid or expired verification code",
			})
		}
		h.cache.Delete(ctx, phoneCodeKey(e164))

		name := req.Name
		if name == "" {
			name = "Usuario de DocuForge"
		}
		u, err = domain.NewUser(name, "", "", domain.ProviderPhone, "", e164)
		if err != nil {
			return errors.Domain(c, err)
		}
		u.PhoneVerified = true
		if err := h.users.Create(ctx, u); err != nil {
			return errors.Domain(c, err)
		}

	default:
		return errors.InternalError(c, err)
	}

	if !u.IsActive {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "account_disabled",
			Message: "This account has been disabled",
		})
	}

	h.recordLogin(ctx, u)

	return h.respondWithToken(c, http.StatusOK, u)
}

// VerifyEmail confirms the address behind a verification token
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing_token",
			Message: "Verification token is required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tokenHash := auth.HashToken(token)
	userIDStr, err := h.cache.Get(ctx, verifyKey(tokenHash))
	if err != nil || userIDStr == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired verification token",
		})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return errors.InternalError(c, err)
	}

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired verification token",
		})
	}

	if u.EmailVerified {
		return c.JSON(http.StatusOK, models.SuccessResponse{
			Success: true,
			Message: "Email already verified",
		})
	}

	// The row hash is the source of truth; the cache key only locates the user
	if u.VerificationTokenHash != tokenHash ||
		u.VerificationTokenExpire == nil || time.Now().After(*u.VerificationTokenExpire) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "expired_token",
			Message: "Verification token has expired",
		})
	}

	u.EmailVerified = true
	u.VerificationTokenHash = ""
	u.VerificationTokenExpire = nil
	if err := h.users.Update(ctx, u); err != nil {
		return errors.Domain(c, err)
	}
	h.cache.Delete(ctx, verifyKey(tokenHash))

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Email verified successfully",
	})
}

// ResendVerification issues a fresh verification token for the logged-in user
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return errors.Domain(c, err)
	}

	if u.EmailVerified {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "already_verified",
			Message: "Email is already verified",
		})
	}
	if u.Email == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no_email",
			Message: "Account has no email address",
		})
	}

	verificationToken, err := auth.GenerateToken()
	if err != nil {
		return errors.InternalError(c, err)
	}
	tokenExpire := time.Now().Add(verificationTokenTTL)
	u.VerificationTokenHash = auth.HashToken(verificationToken)
	u.VerificationTokenExpire = &tokenExpire

	if err := h.users.Update(ctx, u); err != nil {
		return errors.Domain(c, err)
	}
	if err := h.cache.Set(ctx, verifyKey(u.VerificationTokenHash), u.ID.String(), verificationTokenTTL); err != nil {
		return errors.InternalError(c, err)
	}

	go h.emailService.SendVerificationEmail(u.Email, u.Name, verificationToken)

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Verification email sent",
	})
}

// ForgotPassword starts the password reset flow. The response never reveals
// whether the address exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	neutral := models.SuccessResponse{
		Success: true,
		Message: "If an account exists with this email, you will receive a password reset link",
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil || u.AuthProvider != domain.ProviderLocal {
		return c.JSON(http.StatusOK, neutral)
	}

	resetToken, err := auth.GenerateToken()
	if err != nil {
		return errors.InternalError(c, err)
	}
	tokenExpire := time.Now().Add(resetTokenTTL)
	u.ResetTokenHash = auth.HashToken(resetToken)
	u.ResetTokenExpire = &tokenExpire

	if err := h.users.Update(ctx, u); err != nil {
		return errors.Domain(c, err)
	}
	if err := h.cache.Set(ctx, resetKey(u.ResetTokenHash), u.ID.String(), resetTokenTTL); err != nil {
		return errors.InternalError(c, err)
	}

	go h.emailService.SendPasswordResetEmail(u.Email, u.Name, resetToken)

	return c.JSON(http.StatusOK, neutral)
}

// ResetPassword completes the password reset flow
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tokenHash := auth.HashToken(req.Token)
	userIDStr, err := h.cache.Get(ctx, resetKey(tokenHash))
	if err != nil || userIDStr == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired reset token",
		})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return errors.InternalError(c, err)
	}

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired reset token",
		})
	}
	if u.ResetTokenHash != tokenHash ||
		u.ResetTokenExpire == nil || time.Now().After(*u.ResetTokenExpire) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired reset token",
		})
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return errors.InternalError(c, err)
	}

	u.PasswordHash = hashedPassword
	u.ResetTokenHash = ""
	u.ResetTokenExpire = nil
	if err := h.users.Update(ctx, u); err != nil {
		return errors.Domain(c, err)
	}

	// One-time use
	h.cache.Delete(ctx, resetKey(tokenHash))

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Password reset successfully",
	})
}

// ChangePassword changes the password of a logged-in local account
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return errors.Domain(c, err)
	}

	if u.AuthProvider != domain.ProviderLocal {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no_password",
			Message: "This account signs in through an external provider",
		})
	}
	if !auth.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Current password is incorrect",
		})
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return errors.InternalError(c, err)
	}
	u.PasswordHash = hashedPassword
	if err := h.users.Update(ctx, u); err != nil {
		return errors.Domain(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Password changed successfully",
	})
}

// Me returns the current user's information
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return errors.Domain(c, err)
	}

	return c.JSON(http.StatusOK, userInfo(u))
}

// Logout revokes the current JWT token
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := c.Get("token").(string)
	if !ok || token == "" {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "missing_token",
			Message: "No token found in request",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Blacklist with TTL matching the JWT expiration
	expiration := time.Duration(h.config.JWTExpirationHours) * time.Hour
	if err := h.blacklist.Add(ctx, token, expiration); err != nil {
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Successfully logged out",
	})
}

// recordLogin stamps the login time; failures never block the login
func (h *AuthHandler) recordLogin(ctx context.Context, u *domain.User) {
	now := time.Now().UTC()
	u.LastLogin = &now
	_ = h.users.Update(ctx, u)
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, u *domain.User) error {
	token, err := auth.GenerateJWT(
		u.ID,
		u.Email,
		string(u.Role),
		string(u.Subscription.Plan),
		h.config.JWTSecret,
		h.config.JWTExpirationHours,
	)
	if err != nil {
		return errors.InternalError(c, err)
	}

	return c.JSON(status, models.AuthResponse{
		Token: token,
		User:  userInfo(u),
	})
}

func userInfo(u *domain.User) *models.UserInfo {
	return &models.UserInfo{
		ID:            u.ID.String(),
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          string(u.Role),
		Plan:          string(u.Subscription.Plan),
		EmailVerified: u.EmailVerified,
	}
}

func verifyKey(tokenHash string) string {
	return fmt.Sprintf("email_verify:%s", tokenHash)
}

func resetKey(tokenHash string) string {
	return fmt.Sprintf("password_reset:%s", tokenHash)
}

func phoneCodeKey(e164 string) string {
	return fmt.Sprintf("phone_code:%s", e164)
}
