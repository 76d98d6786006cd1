package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/pkg/logger"
)

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Rule is a per-endpoint request budget, counted per client IP.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

var (
	RuleCheckEmail     = Rule{Name: "check_email", Limit: 5, Window: time.Minute}
	RuleSendOTP        = Rule{Name: "send_otp", Limit: 5, Window: time.Minute}
	RuleVerifyOTP      = Rule{Name: "verify_otp", Limit: 10, Window: time.Minute}
	RuleRegister       = Rule{Name: "register", Limit: 5, Window: time.Minute}
	RuleUpdateProfile  = Rule{Name: "update_profile", Limit: 5, Window: time.Minute}
	RuleRefresh        = Rule{Name: "refresh", Limit: 10, Window: time.Minute}
	RuleLogout         = Rule{Name: "logout", Limit: 10, Window: time.Minute}
	RuleTokenBlacklist = Rule{Name: "token_blacklist", Limit: 10, Window: time.Minute}
)

// RateLimit rejects requests over rule's budget with 429. When the limiter
// backend fails the request is blocked with 503.
func RateLimit(l Limiter, rule Rule, log *zap.Logger) func(http.Handler) http.Handler {
	log = logger.OrNop(log)
	retryAfter := int(rule.Window / time.Second)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIPFromContext(r.Context())
			if ip == "" {
				ip = remoteHost(r)
			}
			ok, err := l.Allow(r.Context(), rule.Name+":"+ip, rule.Limit, rule.Window)
			if err != nil {
				log.Error("rate limiter unavailable", zap.String("rule", rule.Name), zap.Error(err))
				writeJSONError(w, http.StatusServiceUnavailable, errorBody{
					Error: "Service temporarily unavailable. Please try again later.",
					Code:  "rate_limiter_unavailable",
				})
				return
			}
			if !ok {
				log.Warn("rate limit exceeded", zap.String("rule", rule.Name), zap.String("ip", ip))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
				w.Header().Set("X-RateLimit-Remaining", "0")
				writeJSONError(w, http.StatusTooManyRequests, errorBody{
					Error:      "Too many requests. Please try again later.",
					Code:       "rate_limited",
					RetryAfter: retryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
