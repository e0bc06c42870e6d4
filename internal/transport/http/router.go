package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/library-access-api/internal/application/access"
	"github.com/library-access-api/internal/application/otp"
	"github.com/library-access-api/internal/application/session"
	"github.com/library-access-api/internal/config"
	"github.com/library-access-api/internal/domain"
	jwtinfra "github.com/library-access-api/internal/infrastructure/jwt"
	"github.com/library-access-api/internal/infrastructure/smtp"
	"github.com/library-access-api/internal/transport/http/handler"
	appmiddleware "github.com/library-access-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OTPRepo     OTPRepository
	AccountRepo AccountRepository
	Mailer      smtp.Mailer
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// RATE_LIMIT_RPS <= 0 disables throttling of the OTP routes.
	otpLimit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		otpLimit = appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), burst).Limit
	}

	otpSvc := otp.NewService(otp.ServiceDeps{
		OTPRepo: deps.OTPRepo,
		Mailer:  deps.Mailer,
		TTL:     cfg.OTPTTL,
		Length:  cfg.OTPLength,
	})
	accessSvc := access.NewService(access.ServiceDeps{AccountRepo: deps.AccountRepo})

	// Without a JWT provider verification still works but no bearer is
	// issued and every deletion route answers 401.
	var sessionSvc session.Service
	if deps.JWTProvider != nil {
		sessionSvc = session.NewService(session.ServiceDeps{
			AccountRepo:      deps.AccountRepo,
			JWTProvider:      deps.JWTProvider,
			SuperAdminEmails: cfg.SuperAdminEmails,
		})
	}

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc, sessionSvc)
	accountH := handler.NewAccountHandler(accessSvc)

	r.Route("/v1", func(r chi.Router) {
		// Public
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(otpLimit).Post("/otp/request", otpH.Request)
		r.With(otpLimit).Post("/otp/verify", otpH.Verify)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.With(appmiddleware.RequireRole(domain.RoleAdmin)).Delete("/librarians", accountH.DeleteLibrarian)
			r.With(appmiddleware.RequireRole(domain.RoleLibrarian)).Delete("/users", accountH.DeleteUser)
			// Any role reaches the handler; the deletion service enforces super_admin.
			r.Delete("/accounts/{partition}", accountH.DeleteAny)
		})
	})

	return r
}
