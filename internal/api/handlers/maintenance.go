package handlers

import (
	"net/http"
	"oversave/internal/maintenance"
	"oversave/internal/models"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler triggers the credential hygiene sweeps on demand,
// outside of their cron schedule
type MaintenanceHandler struct {
	manager *maintenance.Manager
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(manager *maintenance.Manager) *MaintenanceHandler {
	return &MaintenanceHandler{manager: manager}
}

// CleanupSessions runs every registered sweep and reports the counts
func (h *MaintenanceHandler) CleanupSessions(c *gin.Context) {
	counts, err := h.manager.RunAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "cleanup failed"})
		return
	}

	c.JSON(http.StatusOK, models.CleanupResponse{
		SessionsInvalidated: counts[maintenance.TaskSessions],
		ResetTokensRemoved:  counts[maintenance.TaskResetTokens],
		AuditLogsRemoved:    counts[maintenance.TaskAuditLogs],
	})
}
