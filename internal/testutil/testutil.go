// Package testutil provides utilities for testing
package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	"oversave/internal/api/handlers"
	"oversave/internal/auth"
	"oversave/internal/config"
	"oversave/internal/maintenance"
	"oversave/internal/models"
	"oversave/internal/repository"
	"oversave/internal/repository/postgres"
	"oversave/internal/testutil/db"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// LoadTestConfig loads the test configuration
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return db.LoadTestConfig(t)
}

// TestContext holds common test dependencies
type TestContext struct {
	T                 *testing.T
	DB                *sql.DB
	Config            *config.Config
	UserRepo          repository.UserRepository
	SessionRepo       repository.SessionRepository
	LoginAttemptRepo  repository.LoginAttemptRepository
	PasswordResetRepo repository.PasswordResetRepository
	IdpAccountRepo    repository.IdpAccountRepository
	AuditRepo         repository.AuditLogRepository
	SessionManager    *auth.SessionManager
	AuthService       *auth.Service
	ResetService      *auth.ResetService
	EmailService      *MockEmailService
	Maintenance       *maintenance.Manager
	AuthHandler       *handlers.AuthHandler
	ResetHandler      *handlers.PasswordResetHandler
}

// MockEmailService records sent mail instead of talking to SMTP, so
// tests can read back the reset token that would have been mailed
type MockEmailService struct {
	mu             sync.Mutex
	ResetTokens    []string
	ResetRecipient string
	ChangedMails   int
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (s *MockEmailService) SendPasswordResetEmail(to, firstName, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ResetTokens = append(s.ResetTokens, token)
	s.ResetRecipient = to
	return nil
}

func (s *MockEmailService) SendPasswordChangedEmail(to, firstName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ChangedMails++
	return nil
}

// LastResetToken returns the most recently mailed reset token
func (s *MockEmailService) LastResetToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ResetTokens) == 0 {
		return ""
	}
	return s.ResetTokens[len(s.ResetTokens)-1]
}

// NewTestContext creates a new test context with all dependencies
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Initialize validators
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		if err != nil {
			t.Fatal("Failed to register validator:", err)
		}
	}

	// Load test config
	cfg := LoadTestConfig(t)

	// Setup test database
	testDB := db.SetupTestDB(t, &cfg.Database)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(testDB)
	sessionRepo := postgres.NewSessionRepository(testDB)
	loginAttemptRepo := postgres.NewLoginAttemptRepository(testDB)
	passwordResetRepo := postgres.NewPasswordResetRepository(testDB)
	idpAccountRepo := postgres.NewIdpAccountRepository(testDB)
	auditRepo := postgres.NewAuditLogRepository(testDB)

	// Initialize services
	sessionManager := auth.NewSessionManager(cfg.Session, sessionRepo, auditRepo)
	authService := auth.NewService(cfg.Lockout, userRepo, idpAccountRepo, loginAttemptRepo, auditRepo, sessionManager)
	emailService := NewMockEmailService()
	resetService := auth.NewResetService(cfg.Reset, userRepo, passwordResetRepo, auditRepo, emailService)

	manager := maintenance.NewManager(cfg.CleanupSchedule)
	manager.RegisterTask(maintenance.TaskFunc{TaskName: maintenance.TaskSessions, Func: sessionManager.Cleanup})
	manager.RegisterTask(maintenance.TaskFunc{TaskName: maintenance.TaskResetTokens, Func: resetService.CleanupExpired})
	manager.RegisterTask(maintenance.TaskFunc{TaskName: maintenance.TaskAuditLogs, Func: func(ctx context.Context) (int, error) {
		return auditRepo.CleanupOld(ctx, cfg.AuditRetention)
	}})

	tc := &TestContext{
		T:                 t,
		DB:                testDB,
		Config:            cfg,
		UserRepo:          userRepo,
		SessionRepo:       sessionRepo,
		LoginAttemptRepo:  loginAttemptRepo,
		PasswordResetRepo: passwordResetRepo,
		IdpAccountRepo:    idpAccountRepo,
		AuditRepo:         auditRepo,
		SessionManager:    sessionManager,
		AuthService:       authService,
		ResetService:      resetService,
		EmailService:      emailService,
		Maintenance:       manager,
		AuthHandler:       handlers.NewAuthHandler(authService),
		ResetHandler:      handlers.NewPasswordResetHandler(resetService),
	}

	// Register cleanup function
	t.Cleanup(func() {
		tc.cleanup()
	})

	return tc
}

// cleanup performs necessary cleanup after tests
func (tc *TestContext) cleanup() {
	if tc.DB != nil {
		if err := db.CleanupTestDB(tc.DB); err != nil {
			tc.T.Errorf("Failed to cleanup test database: %v", err)
		}
		tc.DB.Close()
	}
}

// CreateTestUser creates a user with the given credentials and returns it
func (tc *TestContext) CreateTestUser(email, password string) *models.User {
	tc.T.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(tc.T, err, "Failed to hash password")

	user := &models.User{
		Email:          email,
		HashedPassword: string(hashedPassword),
		FirstName:      "Test",
		LastName:       "User",
	}

	err = tc.UserRepo.Create(context.Background(), user)
	require.NoError(tc.T, err, "Failed to create test user")

	return user
}

// LoginTestUser logs the user in and returns the session token
func (tc *TestContext) LoginTestUser(email, password string) string {
	tc.T.Helper()

	result := tc.AuthService.Login(context.Background(), models.LoginRequest{
		Email:    email,
		Password: password,
	}, "127.0.0.1", "test-agent")
	require.Equal(tc.T, auth.OutcomeSuccess, result.Outcome, "Failed to log in test user")

	return result.Token
}

// ExecuteSQL executes a raw SQL statement for test fixtures
func (tc *TestContext) ExecuteSQL(query string, args ...interface{}) {
	tc.T.Helper()
	_, err := tc.DB.ExecContext(context.Background(), query, args...)
	require.NoError(tc.T, err)
}
