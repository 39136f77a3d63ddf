package handlers

import (
	"net/http"
	"oversave/internal/auth"
	"oversave/internal/models"

	"github.com/gin-gonic/gin"
)

// PasswordResetHandler handles HTTP requests for the password reset flow
type PasswordResetHandler struct {
	resetService *auth.ResetService
}

// NewPasswordResetHandler creates a new password reset handler
func NewPasswordResetHandler(resetService *auth.ResetService) *PasswordResetHandler {
	return &PasswordResetHandler{resetService: resetService}
}

// RequestReset starts a password reset. The response is the same generic
// 200 whether or not the email is registered.
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	result := h.resetService.RequestReset(c.Request.Context(), req.Email, c.ClientIP())
	if !result.Success {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: result.Message})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Message: result.Message})
}

// ValidateToken reports whether a reset token is still redeemable, so a
// reset form can reject a dead link before asking for a new password
func (h *PasswordResetHandler) ValidateToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "reset token is required"})
		return
	}

	valid := h.resetService.ValidateToken(c.Request.Context(), token)
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// CompleteReset redeems a reset token with a new password
func (h *PasswordResetHandler) CompleteReset(c *gin.Context) {
	var req models.CompleteResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	result := h.resetService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, c.ClientIP())
	if !result.Success {
		if len(result.Violations) > 0 {
			c.JSON(http.StatusBadRequest, models.PasswordPolicyResponse{
				Error:      result.Message,
				Violations: result.Violations,
			})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: result.Message})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Message: result.Message})
}
