package handlers

import (
	"net/http"
	"oversave/internal/api/middleware"
	"oversave/internal/auth"
	"oversave/internal/models"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles HTTP requests for authentication and sessions
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new authentication handler with the given dependencies
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// writeAuthResult maps a tagged authentication outcome onto the HTTP
// surface. Invalid credentials always read the same regardless of which
// check failed; the audit trail keeps the distinction.
func writeAuthResult(c *gin.Context, result auth.AuthResult, successStatus int) {
	switch result.Outcome {
	case auth.OutcomeSuccess:
		c.JSON(successStatus, models.AuthResponse{
			Token: result.Token,
			User:  result.User,
		})
	case auth.OutcomeInvalidCredentials:
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials"})
	case auth.OutcomeRateLimited:
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "too many failed login attempts, try again later"})
	case auth.OutcomeEmailExists:
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "email already registered"})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to process request"})
	}
}

// Login authenticates an email/password pair and returns a session token
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	result := h.authService.Login(c.Request.Context(), req, c.ClientIP(), c.GetHeader("User-Agent"))
	writeAuthResult(c, result, http.StatusOK)
}

// Signup registers a new account and logs it in
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	// Password policy violations are reported in full, unlike credential
	// failures: the caller already knows their own candidate password.
	if violations := auth.ValidatePasswordStrength(req.Password); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, models.PasswordPolicyResponse{
			Error:      "password does not meet the security requirements",
			Violations: violations,
		})
		return
	}

	result := h.authService.Signup(c.Request.Context(), req, c.ClientIP(), c.GetHeader("User-Agent"))
	writeAuthResult(c, result, http.StatusCreated)
}

// IdpLogin authenticates an identity-provider account already verified
// upstream and returns a session token
func (h *AuthHandler) IdpLogin(c *gin.Context) {
	var req models.IdpLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	result := h.authService.LoginWithIdp(c.Request.Context(), req, c.ClientIP(), c.GetHeader("User-Agent"))
	writeAuthResult(c, result, http.StatusOK)
}

// Logout invalidates the presented session. Logging out an already-dead
// session still succeeds; there is nothing useful to report otherwise.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing bearer token"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token, c.ClientIP()); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to log out"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Message: "logged out"})
}

// Me returns the profile of the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := c.MustGet(middleware.ContextUserKey).(*models.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to resolve user"})
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

// SessionStatus reports whether the presented token names a live
// session. Always 200; validity is carried in the body so clients can
// poll it without tripping error handling.
func (h *AuthHandler) SessionStatus(c *gin.Context) {
	token := middleware.BearerToken(c)
	valid := token != "" && h.authService.IsValidSession(c.Request.Context(), token)

	c.JSON(http.StatusOK, models.SessionStatusResponse{Valid: valid})
}
