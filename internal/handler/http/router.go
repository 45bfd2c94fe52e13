package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ozo-extended/ozo-agent/internal/domain/auth"
	"github.com/ozo-extended/ozo-agent/internal/handler/http/middleware"
	"github.com/ozo-extended/ozo-agent/internal/handler/http/response"
	"github.com/ozo-extended/ozo-agent/internal/pkg/jwt"
)

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Settings   SettingsHandler
	System     SystemHandler
	Events     EventsHandler
}

func NewRouter(cfg RouterConfig, jwtService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", h.Auth.Token)
		r.Get("/events", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService))

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/events/token", h.Auth.SSEToken)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/work-info", h.Attendance.WorkInfo)
				r.Post("/work-info/refresh", h.Attendance.Refresh)
				r.Get("/monthly", h.Attendance.Monthly)
				r.Post("/clock-in", h.Attendance.ClockIn)
				r.Post("/clock-out", h.Attendance.ClockOut)
				r.Get("/history", h.Attendance.History)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Settings.Get)
				r.Get("/configured", h.Settings.Configured)

				// Settings window and tray only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireClient(auth.ClientSettings, auth.ClientTray))
					r.Put("/", h.Settings.Save)
					r.Post("/test-login", h.Settings.TestLogin)
				})
			})

			r.Get("/network", h.System.Network)
			r.Post("/ui/visibility", h.System.Visibility)
		})
	})
	return r
}
