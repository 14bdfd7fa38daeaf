package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/dental-booking-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/dental-booking-platform/internal/http/middleware"
	"github.com/wolfman30/dental-booking-platform/internal/messaging"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	WebhookHandler *messaging.Handler

	AuthHandler          *handlers.AuthHandler
	AdminAppointments    *handlers.AdminAppointmentsHandler
	AdminUsers           *handlers.AdminUsersHandler
	AdminTimeSlots       *handlers.AdminTimeSlotsHandler
	AdminStats           *handlers.AdminStatsHandler
	AdminConversations   *handlers.AdminConversationsHandler
	AdminAuthSecret      string
	MetricsHandler       http.Handler
	CORSAllowedOrigins   []string
	WebhookRatePerSecond float64
	WebhookBurst         int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: health, webhook, metrics.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		if cfg.WebhookHandler != nil {
			rate := cfg.WebhookRatePerSecond
			burst := cfg.WebhookBurst
			if rate <= 0 {
				rate = 20
			}
			if burst <= 0 {
				burst = 40
			}
			public.Route("/webhooks/whatsapp", func(wh chi.Router) {
				wh.Use(httpmiddleware.RateLimit(rate, burst))
				wh.Get("/", cfg.WebhookHandler.VerifyWebhook)
				wh.Post("/", cfg.WebhookHandler.ReceiveWebhook)
			})
		}

		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.AuthHandler != nil {
			public.Post("/admin/login", cfg.AuthHandler.Login)
		}
	})

	// Admin API, JWT-guarded.
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

		if cfg.AdminAppointments != nil {
			admin.Route("/appointments", func(a chi.Router) {
				a.Get("/", cfg.AdminAppointments.List)
				a.Get("/{id}", cfg.AdminAppointments.Get)
				a.Patch("/{id}/status", cfg.AdminAppointments.UpdateStatus)
				a.Delete("/{id}", cfg.AdminAppointments.Delete)
			})
		}
		if cfg.AdminUsers != nil {
			admin.Route("/users", func(u chi.Router) {
				u.Get("/", cfg.AdminUsers.List)
				u.Get("/{id}", cfg.AdminUsers.Get)
				u.Get("/{id}/appointments", cfg.AdminUsers.Appointments)
				if cfg.AdminConversations != nil {
					u.Get("/{id}/transcript", cfg.AdminConversations.Transcript)
				}
			})
		}
		if cfg.AdminTimeSlots != nil {
			admin.Route("/time-slots", func(ts chi.Router) {
				ts.Get("/", cfg.AdminTimeSlots.List)
				ts.Post("/", cfg.AdminTimeSlots.Create)
				ts.Put("/{id}", cfg.AdminTimeSlots.Update)
				ts.Delete("/{id}", cfg.AdminTimeSlots.Delete)
			})
		}
		if cfg.AdminStats != nil {
			admin.Get("/stats", cfg.AdminStats.Get)
		}
	})

	return r
}
