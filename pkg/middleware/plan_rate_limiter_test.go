package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestPlanRateLimiter_FreePlan(t *testing.T) {
	prl := NewPlanRateLimiter()
	e := echo.New()

	handler := prl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	userID := uuid.New()

	// Free plan: 6 requests/minute, burst 3
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user_id", userID)
		c.Set("user_plan", "free")

		err := handler(c)
		assert.NoError(t, err)

		if i < 3 {
			assert.Equal(t, http.StatusOK, rec.Code, "request %d should succeed (burst)", i)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code, "request %d should be rate limited", i)
		}
	}
}

func TestPlanRateLimiter_EnterprisePlan(t *testing.T) {
	prl := NewPlanRateLimiter()
	e := echo.New()

	handler := prl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	userID := uuid.New()

	successCount := 0
	for i := 0; i < 35; i++ {
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user_id", userID)
		c.Set("user_plan", "enterprise")

		err := handler(c)
		assert.NoError(t, err)

		if rec.Code == http.StatusOK {
			successCount++
		}
	}

	// Enterprise burst is 30
	assert.GreaterOrEqual(t, successCount, 30)
}

func TestPlanRateLimiter_UnauthenticatedFallsBackToIP(t *testing.T) {
	prl := NewPlanRateLimiter()
	e := echo.New()

	handler := prl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// No user_id in context: default limits keyed by IP (burst 3)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		req.Header.Set("X-Real-IP", "192.168.1.1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)
		assert.NoError(t, err)

		if i < 3 {
			assert.Equal(t, http.StatusOK, rec.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
}

func TestPlanRateLimiter_DifferentUsers(t *testing.T) {
	prl := NewPlanRateLimiter()
	e := echo.New()

	handler := prl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	user1 := uuid.New()
	user2 := uuid.New()

	// User 1 exhausts their free-plan burst
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user_id", user1)
		c.Set("user_plan", "free")
		handler(c)
	}

	// User 2 has their own limiter
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", user2)
	c.Set("user_plan", "free")

	err := handler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code, "User 2 should not be rate limited by user 1's usage")
}

func TestPlanRateLimiter_UnknownPlanUsesDefault(t *testing.T) {
	prl := NewPlanRateLimiter()
	e := echo.New()

	handler := prl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	userID := uuid.New()

	successCount := 0
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user_id", userID)
		c.Set("user_plan", "mystery")
		handler(c)

		if rec.Code == http.StatusOK {
			successCount++
		}
	}

	// Default limits match the free plan burst of 3
	assert.Equal(t, 3, successCount)
}

func TestPlanRateLimiter_ErrorMessage(t *testing.T) {
	prl := NewPlanRateLimiter()
	e := echo.New()

	handler := prl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	userID := uuid.New()

	var lastBody string
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user_id", userID)
		c.Set("user_plan", "free")
		handler(c)
		lastBody = rec.Body.String()
	}

	assert.Contains(t, lastBody, "rate_limit_exceeded")
	assert.Contains(t, lastBody, "plan")
}
