package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal/approval"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/project"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/transport/middleware"
	"github.com/frahmantamala/timesheet-management/internal/transport/swagger"
	"github.com/frahmantamala/timesheet-management/internal/user"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	projectHandler *project.Handler,
	timesheetHandler *timesheet.Handler,
	approvalHandler *approval.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRoleAuthorization(logger)

	router.Use(middleware.CORSWithOrigins(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI contract and Swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// Everything below needs an authenticated user.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/projects", projectHandler.List)
			pr.Group(func(ar chi.Router) {
				ar.Use(rbac.RequireAdmin())
				ar.Post("/projects", projectHandler.Create)
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Use(rbac.RequireAdmin())
				ur.Get("/", userHandler.List)
				ur.Post("/", userHandler.Create)
				ur.Get("/{id}", userHandler.Get)
				ur.Patch("/{id}", userHandler.Update)
				ur.Delete("/{id}", userHandler.Delete)
			})

			pr.Route("/timesheets", func(tr chi.Router) {
				tr.Post("/", timesheetHandler.Save)
				tr.Get("/", timesheetHandler.List)
				tr.Get("/{id}", timesheetHandler.Get)
				tr.Patch("/{id}", timesheetHandler.Update)

				tr.Group(func(dr chi.Router) {
					dr.Use(rbac.RequireApprover())
					dr.Post("/{id}/decision", approvalHandler.Decide)
				})

				tr.Group(func(or chi.Router) {
					or.Use(rbac.RequireAdmin())
					or.Post("/{id}/override", approvalHandler.Override)
				})
			})
		})
	})
}
