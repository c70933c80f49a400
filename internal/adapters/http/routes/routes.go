package routes

import (
	"time"

	"smartlocker/internal/adapters/http/handlers"
	"smartlocker/internal/adapters/http/middleware"
	"smartlocker/internal/adapters/persistence/repositories"
	"smartlocker/internal/config"
	"smartlocker/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	lockerRepo := repositories.NewLockerRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Initialize services
	notifyService := services.NewNotifyService()
	otpService := services.NewOTPService(otpRepo)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, otpService, notifyService, cfg)
	reservationService := services.NewReservationService(reservationRepo, lockerRepo, auditRepo, notifyService, cfg)
	lockerService := services.NewLockerService(lockerRepo, auditRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	reservationHandler := handlers.NewReservationHandler(reservationService)
	depositHandler := handlers.NewDepositHandler(reservationService)
	lockerHandler := handlers.NewLockerHandler(lockerService)
	adminHandler := handlers.NewAdminHandler(lockerService, reservationService, cfg)

	// Health check routes
	app.Get("/health", healthHandler.Check)
	app.Get("/health/ready", healthHandler.Ready)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate-limited, never cached)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Deposit route (public - booking code is the authorization)
	apiV1.Post("/deposit", middleware.NoCacheHeaders(), middleware.AuthRateLimiter(), depositHandler.Deposit)

	// Reservation routes (authenticated)
	reservationRoutes := apiV1.Group("/reservations")
	reservationRoutes.Use(middleware.AuthMiddleware(cfg))
	setupReservationRoutes(reservationRoutes, reservationHandler)

	// Locker routes (authenticated)
	lockerRoutes := apiV1.Group("/lockers")
	lockerRoutes.Use(middleware.AuthMiddleware(cfg))
	lockerRoutes.Get("/:id/status", middleware.PrivateCacheHeaders(5*time.Second), lockerHandler.Status)

	// Admin routes (admin only)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (OTP issuance and registration are the strictest)
	router.Post("/otp/request", middleware.StrictRateLimiter(), handler.RequestOTP)
	router.Post("/register", middleware.StrictRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupReservationRoutes configures reservation routes (Authenticated)
func setupReservationRoutes(router fiber.Router, handler *handlers.ReservationHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.List)
	router.Get("/active", handler.CheckActive)
	router.Post("/:id/pickup", handler.Pickup)
}

// setupAdminRoutes configures admin routes (Admin only)
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	router.Post("/lockers/:id/command", handler.LockerCommand)
	router.Get("/reservations", handler.ListReservations)
	router.Get("/audit", handler.AuditLog)
}
