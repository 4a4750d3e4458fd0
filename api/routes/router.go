package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voo-ward/voo-citizen-backend/api/controllers"
	aicontrollers "github.com/voo-ward/voo-citizen-backend/api/controllers/ai"
	bursarycontrollers "github.com/voo-ward/voo-citizen-backend/api/controllers/bursary"
	issuecontrollers "github.com/voo-ward/voo-citizen-backend/api/controllers/issues"
	lostidcontrollers "github.com/voo-ward/voo-citizen-backend/api/controllers/lostid"
	"github.com/voo-ward/voo-citizen-backend/api/middleware"
	"github.com/voo-ward/voo-citizen-backend/internal/ai"
	"github.com/voo-ward/voo-citizen-backend/internal/announcements"
	"github.com/voo-ward/voo-citizen-backend/internal/auth"
	"github.com/voo-ward/voo-citizen-backend/internal/bursary"
	"github.com/voo-ward/voo-citizen-backend/internal/emergencycontacts"
	"github.com/voo-ward/voo-citizen-backend/internal/feedback"
	"github.com/voo-ward/voo-citizen-backend/internal/issues"
	"github.com/voo-ward/voo-citizen-backend/internal/lostid"
	"github.com/voo-ward/voo-citizen-backend/internal/media"
	"github.com/voo-ward/voo-citizen-backend/pkg/auth/session"
	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
	pkgredis "github.com/voo-ward/voo-citizen-backend/pkg/redis"
)

// maxBodyBytes matches the largest issue submission the app sends (five
// base64 photos).
const maxBodyBytes = 50 << 20

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error)
	Revoke(ctx context.Context, accessID string) error
}

// Store is the Redis surface used by the rate limiters and idempotency.
type Store interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	pkgredis.IdempotencyStore
}

// Services bundles the domain services mounted by the router. A nil
// service answers its routes with an internal error.
type Services struct {
	Auth              auth.Service
	Register          auth.RegisterService
	AdminRegister     auth.AdminRegisterService
	Issues            issues.Service
	Bursary           bursary.Service
	LostID            lostid.Service
	Announcements     announcements.Service
	EmergencyContacts emergencycontacts.Service
	Feedback          feedback.Service
	AI                ai.Service
	Media             media.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	store Store,
	sessions sessionManager,
	gatherer prometheus.Gatherer,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		chimw.RealIP,
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		chimw.RequestSize(maxBodyBytes),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginPhoneLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterPhoneLimit,
	)
	issuePolicy := middleware.NewUserRateLimitPolicy(
		"issues",
		cfg.IssueRateLimit.Window,
		cfg.IssueRateLimit.Limit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, readiness, logg))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/api/health", controllers.HealthCheck())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, store, logg)).Post("/register", controllers.AuthRegister(svc.Register, svc.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, store, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, store, logg)).Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
	})

	if !cfg.App.IsProd() {
		r.With(middleware.AuthRateLimit(registerPolicy, store, logg)).
			Post("/api/admin/auth/register", controllers.AdminRegister(svc.AdminRegister, logg))
	}

	// Public reads.
	r.Get("/api/issues/categories", issuecontrollers.Categories())
	r.Get("/api/announcements", controllers.ListAnnouncements(svc.Announcements, logg))
	r.Get("/api/emergency-contacts", controllers.ListEmergencyContacts(svc.EmergencyContacts, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(store, logg))

		r.Get("/api/profile", controllers.Profile(svc.Auth, logg))
		r.Patch("/api/profile/device-token", controllers.UpdateDeviceToken(svc.Auth, logg))

		r.Route("/api/issues", func(r chi.Router) {
			r.With(middleware.UserRateLimit(issuePolicy, store, logg)).Post("/", issuecontrollers.Create(svc.Issues, logg))
			r.Get("/my", issuecontrollers.ListMine(svc.Issues, logg))
			r.Get("/{id}", issuecontrollers.Get(svc.Issues, logg))
			r.Post("/{id}/upvote", issuecontrollers.Upvote(svc.Issues, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/", issuecontrollers.ListAll(svc.Issues, logg))
				r.Patch("/{id}/status", issuecontrollers.UpdateStatus(svc.Issues, logg))
			})
		})

		r.Route("/api/bursary", func(r chi.Router) {
			r.Post("/apply", bursarycontrollers.Apply(svc.Bursary, logg))
			r.Get("/my", bursarycontrollers.ListMine(svc.Bursary, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/admin/pending", bursarycontrollers.ListPending(svc.Bursary, logg))
				r.Patch("/{id}/approve", bursarycontrollers.Approve(svc.Bursary, logg))
				r.Patch("/{id}/deny", bursarycontrollers.Deny(svc.Bursary, logg))
			})

			r.Get("/{id}", bursarycontrollers.Get(svc.Bursary, logg))
		})

		r.Route("/api/lost-id", func(r chi.Router) {
			r.Post("/report", lostidcontrollers.Report(svc.LostID, logg))
			r.Get("/my", lostidcontrollers.ListMine(svc.LostID, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/admin", lostidcontrollers.List(svc.LostID, logg))
				r.Patch("/{id}/status", lostidcontrollers.UpdateStatus(svc.LostID, logg))
			})
		})

		r.Route("/api/feedback", func(r chi.Router) {
			r.Post("/", controllers.SubmitFeedback(svc.Feedback, logg))
			r.Get("/my", controllers.ListMyFeedback(svc.Feedback, logg))
		})

		r.Route("/api/ai", func(r chi.Router) {
			r.Post("/analyze-image", aicontrollers.AnalyzeImage(svc.AI, logg))
			r.Post("/enhance-description", aicontrollers.EnhanceDescription(svc.AI, logg))
			r.Post("/suggest-category", aicontrollers.SuggestCategory(svc.AI, logg))
			r.Post("/chat", aicontrollers.Chat(svc.AI, logg))
			r.Get("/chat/history", aicontrollers.ChatHistory(svc.AI, logg))
		})

		r.Post("/api/upload", controllers.UploadImage(svc.Media, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/api/announcements", controllers.CreateAnnouncement(svc.Announcements, logg))
			r.Post("/api/emergency-contacts", controllers.CreateEmergencyContact(svc.EmergencyContacts, logg))
		})
	})

	return r
}
