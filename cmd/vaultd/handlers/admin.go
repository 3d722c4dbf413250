package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vaultbin/vaultbin/cmd/vaultd/service"
	"github.com/vaultbin/vaultbin/common/bootstrap"
	"github.com/vaultbin/vaultbin/common/metrics"
)

// AdminHandler handles operational endpoints
type AdminHandler struct {
	components *bootstrap.Components
	reclaimSvc *service.ReclaimService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(components *bootstrap.Components, reclaimSvc *service.ReclaimService) *AdminHandler {
	return &AdminHandler{
		components: components,
		reclaimSvc: reclaimSvc,
	}
}

// Reclaim runs a reclamation sweep over orphaned content records
// POST /api/v1/admin/reclaim
func (h *AdminHandler) Reclaim(c echo.Context) error {
	reclaimed, err := h.reclaimSvc.Sweep(c.Request().Context())
	if err != nil {
		h.components.Logger.Error("reclamation sweep failed", "reclaimed", reclaimed, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "reclamation sweep failed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reclaimed": reclaimed,
	})
}

// Stats returns a runtime snapshot of the process
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, metrics.Capture())
}
