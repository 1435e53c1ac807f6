package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

// adminHandler exposes maintenance operations.
type adminHandler struct {
	rebuildService portssvc.RebuildSvcFacade
	userService    portssvc.UserSvcFacade
}

func registerAdminRoutes(rg *gin.RouterGroup, rebuildService portssvc.RebuildSvcFacade, userService portssvc.UserSvcFacade) {
	h := &adminHandler{rebuildService: rebuildService, userService: userService}

	admin := rg.Group("/admin")
	{
		admin.POST("/verify-ledger", h.verifyLedger)
	}
}

// verifyLedger godoc
// @Summary Verify derived state against the transaction log
// @Description Replays every applied transaction and reports drift. Admin only; read-only.
// @Tags admin
// @Produce json
// @Success 200 {object} dto.LedgerVerifyReport
// @Failure 403 {object} ErrorResponse
// @Router /admin/verify-ledger [post]
func (h *adminHandler) verifyLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if _, ok := requireAdmin(c, h.userService); !ok {
		return
	}

	report, err := h.rebuildService.VerifyLedger(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to verify ledger")
		return
	}

	c.JSON(http.StatusOK, report)
}
