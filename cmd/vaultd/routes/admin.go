package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vaultbin/vaultbin/cmd/vaultd/container"
	"github.com/vaultbin/vaultbin/cmd/vaultd/handlers"
)

// RegisterAdminRoutes registers operational routes
func RegisterAdminRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAdminHandler(c.Components, c.ReclaimService)

	admin := e.Group("/api/v1/admin")
	{
		admin.POST("/reclaim", h.Reclaim) // POST /api/v1/admin/reclaim
		admin.GET("/stats", h.Stats)      // GET /api/v1/admin/stats
	}

	e.GET("/health", func(ctx echo.Context) error {
		if err := c.Components.DB.Health(ctx.Request().Context()); err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return ctx.JSON(http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": c.Components.Config.Service.Name,
		})
	})
}
