package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	adminController *controllers.AdminController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	admin := middleware.RequireAdmin(verifier, logger)
	optional := middleware.OptionalAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("GET /auth/me", auth(authController.Me))

	// Events
	mux.HandleFunc("GET /events", eventController.List)
	mux.HandleFunc("GET /events/{eventID}", optional(eventController.Get))
	mux.HandleFunc("POST /events", auth(eventController.Create))
	mux.HandleFunc("PUT /events/{eventID}", auth(eventController.Update))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.Delete))
	mux.HandleFunc("GET /events/my", auth(eventController.ListMine))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(registrationController.Register))
	mux.HandleFunc("GET /events/{eventID}/registrations", auth(registrationController.ListForEvent))
	mux.HandleFunc("DELETE /registrations/{registrationID}", auth(registrationController.Cancel))
	mux.HandleFunc("GET /registrations/my", auth(registrationController.ListMine))

	// Admin
	mux.HandleFunc("GET /admin/events/pending", admin(adminController.ListPendingEvents))
	mux.HandleFunc("PUT /admin/events/{eventID}/approve", admin(adminController.ApproveEvent))
	mux.HandleFunc("PUT /admin/events/{eventID}/reject", admin(adminController.RejectEvent))
	mux.HandleFunc("GET /admin/users", admin(adminController.ListUsers))
	mux.HandleFunc("PUT /admin/users/{userID}/role", admin(adminController.UpdateUserRole))
	mux.HandleFunc("PUT /admin/users/{userID}/deactivate", admin(adminController.DeactivateUser))
	mux.HandleFunc("GET /admin/dashboard", admin(adminController.GetDashboard))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
