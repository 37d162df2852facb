package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// PlanLimits defines rate limits for each subscription plan
type PlanLimits struct {
	RequestsPerMinute int
	Burst             int
}

// PlanRateLimiter throttles the AI endpoints per user, with limits that
// scale with the subscription plan. Unauthenticated requests fall back to a
// per-IP limiter.
type PlanRateLimiter struct {
	userLimiters map[uuid.UUID]*rate.Limiter
	ipLimiters   map[string]*rate.Limiter
	mu           sync.RWMutex

	planLimits    map[string]PlanLimits
	defaultLimits PlanLimits
}

// NewPlanRateLimiter creates a new plan-based rate limiter
func NewPlanRateLimiter() *PlanRateLimiter {
	prl := &PlanRateLimiter{
		userLimiters: make(map[uuid.UUID]*rate.Limiter),
		ipLimiters:   make(map[string]*rate.Limiter),
		planLimits: map[string]PlanLimits{
			"free": {
				RequestsPerMinute: 6, // AI calls are expensive
				Burst:             3,
			},
			"premium": {
				RequestsPerMinute: 30,
				Burst:             10,
			},
			"enterprise": {
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
		defaultLimits: PlanLimits{
			RequestsPerMinute: 6,
			Burst:             3,
		},
	}

	go prl.cleanupLimiters()

	return prl
}

// getUserLimiter returns or creates a rate limiter for a user's plan
func (prl *PlanRateLimiter) getUserLimiter(userID uuid.UUID, plan string) *rate.Limiter {
	prl.mu.Lock()
	defer prl.mu.Unlock()

	if limiter, exists := prl.userLimiters[userID]; exists {
		return limiter
	}

	limits, exists := prl.planLimits[plan]
	if !exists {
		limits = prl.defaultLimits
	}

	rps := float64(limits.RequestsPerMinute) / 60.0
	limiter := rate.NewLimiter(rate.Limit(rps), limits.Burst)
	prl.userLimiters[userID] = limiter

	return limiter
}

// getIPLimiter returns or creates a rate limiter for an IP address
func (prl *PlanRateLimiter) getIPLimiter(ip string) *rate.Limiter {
	prl.mu.Lock()
	defer prl.mu.Unlock()

	if limiter, exists := prl.ipLimiters[ip]; exists {
		return limiter
	}

	rps := float64(prl.defaultLimits.RequestsPerMinute) / 60.0
	limiter := rate.NewLimiter(rate.Limit(rps), prl.defaultLimits.Burst)
	prl.ipLimiters[ip] = limiter

	return limiter
}

// cleanupLimiters removes inactive limiters every 5 minutes
func (prl *PlanRateLimiter) cleanupLimiters() {
	for {
		time.Sleep(5 * time.Minute)

		prl.mu.Lock()
		for userID, limiter := range prl.userLimiters {
			// A limiter with full burst tokens hasn't been used recently
			if limiter.Tokens() >= float64(limiter.Burst()) {
				delete(prl.userLimiters, userID)
			}
		}
		for ip, limiter := range prl.ipLimiters {
			if limiter.Tokens() >= float64(limiter.Burst()) {
				delete(prl.ipLimiters, ip)
			}
		}
		prl.mu.Unlock()
	}
}

// Middleware returns the Echo middleware applying the plan-based limits.
// It reads user_id and user_plan from the context set by the JWT middleware.
func (prl *PlanRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var limiter *rate.Limiter

			if userID, ok := c.Get("user_id").(uuid.UUID); ok {
				plan, _ := c.Get("user_plan").(string)
				limiter = prl.getUserLimiter(userID, plan)
			} else {
				ip := c.RealIP()
				if ip == "" {
					ip = c.Request().RemoteAddr
				}
				limiter = prl.getIPLimiter(ip)
			}

			if !limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":   "rate_limit_exceeded",
					"message": "AI request limit reached for your plan. Please try again later.",
				})
			}

			return next(c)
		}
	}
}
