// Package routes handles the setup and configuration of API routes
package routes

import (
	"context"
	"database/sql"
	"oversave/internal/api/handlers"
	"oversave/internal/api/middleware"
	"oversave/internal/auth"
	"oversave/internal/config"
	"oversave/internal/email"
	"oversave/internal/maintenance"
	"oversave/internal/repository/postgres"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes and their handlers
func SetupRoutes(cfg *config.Config, db *sql.DB, manager *maintenance.Manager) *gin.Engine {
	// Create router
	r := gin.Default()

	// Initialize health handler for basic routes
	healthHandler := handlers.NewHealthHandler(db)

	// Apply transport rate limiting to all routes. This is per IP and
	// request-count based; the credential lockout is separate and DB-backed.
	r.Use(middleware.NewRateLimiter(cfg).Middleware())

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	auditRepo := postgres.NewAuditLogRepository(db)
	loginAttemptRepo := postgres.NewLoginAttemptRepository(db)
	passwordResetRepo := postgres.NewPasswordResetRepository(db)
	idpAccountRepo := postgres.NewIdpAccountRepository(db)

	// Initialize services
	sessionManager := auth.NewSessionManager(cfg.Session, sessionRepo, auditRepo)
	authService := auth.NewService(cfg.Lockout, userRepo, idpAccountRepo, loginAttemptRepo, auditRepo, sessionManager)
	emailService := email.NewService(cfg.Email)
	resetService := auth.NewResetService(cfg.Reset, userRepo, passwordResetRepo, auditRepo, emailService)

	// Register maintenance sweeps so the admin endpoint and the cron
	// scheduler run the same tasks
	manager.RegisterTask(maintenance.TaskFunc{TaskName: maintenance.TaskSessions, Func: sessionManager.Cleanup})
	manager.RegisterTask(maintenance.TaskFunc{TaskName: maintenance.TaskResetTokens, Func: resetService.CleanupExpired})
	manager.RegisterTask(maintenance.TaskFunc{TaskName: maintenance.TaskAuditLogs, Func: func(ctx context.Context) (int, error) {
		return auditRepo.CleanupOld(ctx, cfg.AuditRetention)
	}})

	// Initialize middleware
	sessionMiddleware := middleware.NewSessionMiddleware(authService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	resetHandler := handlers.NewPasswordResetHandler(resetService)
	maintenanceHandler := handlers.NewMaintenanceHandler(manager)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Health check (no authentication required)
		v1.GET("/health", healthHandler.Health)

		// Auth routes
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/idp-login", authHandler.IdpLogin)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/me", sessionMiddleware.SessionRequired(), authHandler.Me)
			authRoutes.GET("/session", authHandler.SessionStatus)
			authRoutes.POST("/reset-password", resetHandler.RequestReset)
			authRoutes.GET("/reset-password/validate", resetHandler.ValidateToken)
			authRoutes.POST("/reset-password/complete", resetHandler.CompleteReset)
		}

		// Admin routes (requires authentication)
		admin := v1.Group("/admin")
		admin.Use(sessionMiddleware.SessionRequired())
		{
			admin.POST("/cleanup-sessions", maintenanceHandler.CleanupSessions)
		}
	}

	return r
}
