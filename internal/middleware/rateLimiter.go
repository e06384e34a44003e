package middleware

import (
	"sync"

	"github.com/akolanti/DocRAG/internal/config"
	"golang.org/x/time/rate"
)

var limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT)

// ConfigureRateLimit replaces the process wide limiter; call it before serving.
func ConfigureRateLimit(settings config.RateLimitSettings) {
	limit := rate.Limit(settings.PerSecond)
	if settings.PerSecond <= 0 {
		limit = rate.Inf
	}
	limiterInstance = NewIPRateLimiter(limit, settings.Burst)
}

type IPRateLimiter struct {
	ips       map[string]*rate.Limiter
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{ips: make(map[string]*rate.Limiter), rateLimit: r, burstRate: b}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.rateLimit, i.burstRate)
		i.ips[ip] = limiter
	}
	return limiter
}

//TODO: move the per ip limiters to redis once more than one api instance runs
