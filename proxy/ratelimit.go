package proxy

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/papercomputeco/novostroy/pkg/llm"
	"github.com/papercomputeco/novostroy/pkg/metrics"
)

// RateLimitedMessage is returned with 429, whether the limit was hit here or
// at the gateway.
const RateLimitedMessage = "Слишком много запросов. Попробуйте позже."

// newLimiter returns a token bucket refilled at perMinute requests per
// minute, or nil when perMinute is zero or negative.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
}

// rateLimit rejects searches over the configured rate without waiting.
func (p *Proxy) rateLimit(c *fiber.Ctx) error {
	if p.limiter == nil || c.Method() == fiber.MethodOptions {
		return c.Next()
	}
	if !p.limiter.Allow() {
		p.logger.Warn("search rate limited", "ip", c.IP())
		metrics.ObserveOutcome(metrics.OutcomeRateLimited)
		p.headerHandler.SetCORSHeaders(c)
		return c.Status(fiber.StatusTooManyRequests).JSON(llm.ErrorResponse{Error: RateLimitedMessage})
	}
	return c.Next()
}
