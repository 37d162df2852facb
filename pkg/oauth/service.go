package oauth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docuforge/docuforge/pkg/domain"
)

var (
	// ErrInvalidCode is returned when the authorization code is invalid
	ErrInvalidCode = errors.New("invalid authorization code")
	// ErrInvalidToken is returned when an identity token fails verification
	ErrInvalidToken = errors.New("invalid identity token")
	// ErrProviderAPIError is returned when the provider API returns an error
	ErrProviderAPIError = errors.New("OAuth provider API error")
)

const appleJWKSURL = "https://appleid.apple.com/auth/keys"

// UserInfo holds the identity returned by an external provider
type UserInfo struct {
	ID       string
	Email    string
	Name     string
	Provider domain.AuthProvider
}

// Service exchanges provider credentials (a GitHub authorization code or an
// Apple identity token) for a verified identity
type Service struct {
	appleClientID      string
	githubClientID     string
	githubClientSecret string
	client             *http.Client

	mu        sync.Mutex
	appleKeys map[string]*rsa.PublicKey
	keysAge   time.Time
}

// NewService creates a new OAuth service
func NewService(appleClientID, githubClientID, githubClientSecret string) *Service {
	return &Service{
		appleClientID:      appleClientID,
		githubClientID:     githubClientID,
		githubClientSecret: githubClientSecret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VerifyAppleToken validates a Sign in with Apple identity token against
// Apple's published keys and returns the identity it carries
func (s *Service) VerifyAppleToken(ctx context.Context, identityToken string) (*UserInfo, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(identityToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		return s.appleKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if iss, _ := claims["iss"].(string); iss != "https://appleid.apple.com" {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	if s.appleClientID != "" {
		if aud, _ := claims["aud"].(string); aud != s.appleClientID {
			return nil, fmt.Errorf("%w: token issued for another app", ErrInvalidToken)
		}
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)

	return &UserInfo{
		ID:       sub,
		Email:    email,
		Provider: domain.ProviderApple,
	}, nil
}

// appleKey returns the RSA public key for the given key id, refreshing the
// cached JWKS when it is stale or the kid is unknown (Apple rotates keys)
func (s *Service) appleKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key, ok := s.appleKeys[kid]; ok && time.Since(s.keysAge) < time.Hour {
		return key, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, appleJWKSURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Apple keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d fetching keys", ErrProviderAPIError, resp.StatusCode)
	}

	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("failed to decode Apple keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: int(new(big.Int).SetBytes(eBytes).Int64()),
		}
	}
	s.appleKeys = keys
	s.keysAge = time.Now()

	key, ok := keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: unknown key id", ErrInvalidToken)
	}
	return key, nil
}

// ExchangeGithubCode exchanges a GitHub authorization code for the user's
// identity
func (s *Service) ExchangeGithubCode(ctx context.Context, code string) (*UserInfo, error) {
	tokenURL := "https://github.com/login/oauth/access_token"
	data := url.Values{}
	data.Set("client_id", s.githubClientID)
	data.Set("client_secret", s.githubClientSecret)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.URL.RawQuery = data.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidCode
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, ErrInvalidCode
	}

	userInfoURL := "https://api.github.com/user"
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tokenResp.AccessToken)

	resp, err = s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderAPIError, resp.StatusCode, string(body))
	}

	var githubUser struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&githubUser); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	// If email is not public, fetch from emails endpoint
	email := githubUser.Email
	if email == "" {
		email, err = s.getGithubPrimaryEmail(ctx, tokenResp.AccessToken)
		if err != nil {
			return nil, err
		}
	}

	name := githubUser.Name
	if name == "" {
		name = githubUser.Login
	}

	return &UserInfo{
		ID:       fmt.Sprintf("%d", githubUser.ID),
		Email:    email,
		Name:     name,
		Provider: domain.ProviderGithub,
	}, nil
}

func (s *Service) getGithubPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	emailsURL := "https://api.github.com/user/emails"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, emailsURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get emails: %w", err)
	}
	defer resp.Body.Close()

	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("failed to decode emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}

	return "", errors.New("no email found for GitHub user")
}
