package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth     AuthHandler
	User     UserHandler
	Team     TeamHandler
	Clock    ClockHandler
	Planning PlanningHandler
	KPI      KPIHandler
}

func NewRouter(logger *slog.Logger, allowedOrigins []string, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if logger != nil {
		r.Use(httplog.RequestLogger(logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			response.Success(w, map[string]string{"status": "ok"})
		})
		r.Handle("/metrics", promhttp.Handler())

		r.Post("/auth/login", h.Auth.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/users", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionUserCreate)).Post("/", h.User.Create)
				r.Get("/", h.User.List)
				r.With(middleware.RequirePermission(user.PermissionUserViewReports)).Get("/me/reports", h.User.DirectReports)
				r.Get("/{id}", h.User.Get)
				r.Put("/{id}", h.User.Update)
				r.With(middleware.RequirePermission(user.PermissionUserDelete)).Delete("/{id}", h.User.Delete)
			})

			r.Route("/teams", func(r chi.Router) {
				r.Get("/", h.Team.List)
				r.Get("/user/{userId}", h.Team.ListForUser)
				r.Get("/{id}", h.Team.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTeamManage))
					r.Post("/", h.Team.Create)
					r.Put("/{id}", h.Team.Update)
					r.Delete("/{id}", h.Team.Delete)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTeamMembers))
					r.Post("/{id}/members", h.Team.AddMember)
					r.Delete("/{id}/members/{userId}", h.Team.RemoveMember)
				})
			})

			r.Route("/clocks", func(r chi.Router) {
				r.Post("/", h.Clock.ClockIn)
				r.Get("/", h.Clock.List)
				r.Get("/user/{userId}", h.Clock.ListForUser)
				r.Get("/{id}", h.Clock.Get)
				r.Put("/{id}/clockout", h.Clock.ClockOut)
				r.With(middleware.RequirePermission(user.PermissionClockDelete)).Delete("/{id}", h.Clock.Delete)
			})

			r.Route("/planning", func(r chi.Router) {
				r.Get("/", h.Planning.ListTemplates)
				r.Get("/dated", h.Planning.ListDated)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPlanningWrite))
					r.Post("/", h.Planning.Create)
					r.Put("/{id}", h.Planning.Update)
					r.Delete("/{id}", h.Planning.Delete)
				})
			})

			r.Route("/kpis", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionKPICreate)).Post("/", h.KPI.Create)
				r.Get("/", h.KPI.List)
				r.Post("/compute", h.KPI.Compute)
				r.Get("/{id}", h.KPI.Get)
				r.Get("/{id}/results", h.KPI.Results)
				r.Get("/{id}/export", h.KPI.Results)
				r.With(middleware.RequirePermission(user.PermissionKPIDelete)).Delete("/{id}", h.KPI.Delete)
			})
		})
	})
	return r
}
