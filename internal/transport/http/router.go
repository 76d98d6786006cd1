package http

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/config"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/logger"
	"github.com/jeeva2692001/mindkonnect/internal/transport/http/handler"
	appmiddleware "github.com/jeeva2692001/mindkonnect/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	log := logger.OrNop(deps.Logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.ClientIP(trustedProxies(cfg, log)))
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.Authenticator)
	limit := func(rule appmiddleware.Rule) func(http.Handler) http.Handler {
		return appmiddleware.RateLimit(deps.Limiter, rule, log)
	}

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(deps.Auth, log)
	profileH := handler.NewProfileHandler(deps.Profile, log)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// ── Public routes (no auth) ──────────────────────────────────────────
			r.With(limit(appmiddleware.RuleCheckEmail)).Post("/check-email", authH.CheckEmail)
			r.With(limit(appmiddleware.RuleSendOTP)).Post("/send-otp", authH.SendOTP)
			r.With(limit(appmiddleware.RuleVerifyOTP)).Post("/verify-otp", authH.VerifyOTP)
			r.With(limit(appmiddleware.RuleRegister)).Post("/register", authH.Register)
			r.With(limit(appmiddleware.RuleRefresh)).Post("/refresh", authH.Refresh)

			// ── Authenticated routes ─────────────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(authMw)

				r.Get("/user-info", profileH.UserInfo)
				r.With(limit(appmiddleware.RuleUpdateProfile)).Post("/update-profile", profileH.UpdateProfile)
				r.Get("/activity-logs", profileH.ActivityLogs)
				r.With(limit(appmiddleware.RuleLogout)).Post("/logout", authH.Logout)
			})
		})

		r.With(limit(appmiddleware.RuleTokenBlacklist)).Post("/token/blacklist", authH.BlacklistToken)
	})

	return r
}

// trustedProxies returns the proxy networks whose forwarding headers are
// honoured. Entries that fail to parse are skipped; Config.Validate rejects
// them at startup.
func trustedProxies(cfg *config.Config, log *zap.Logger) []*net.IPNet {
	if !cfg.TrustProxyHeaders {
		return nil
	}
	nets := make([]*net.IPNet, 0, len(cfg.TrustedProxies))
	for _, p := range cfg.TrustedProxies {
		n, err := config.ParseProxy(p)
		if err != nil {
			log.Error("ignoring trusted proxy", zap.String("entry", p), zap.Error(err))
			continue
		}
		nets = append(nets, n)
	}
	return nets
}
