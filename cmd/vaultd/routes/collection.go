package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/vaultbin/vaultbin/cmd/vaultd/container"
	"github.com/vaultbin/vaultbin/cmd/vaultd/handlers"
)

// RegisterCollectionRoutes registers collection CRUD routes
func RegisterCollectionRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewCollectionHandler(c.Components, c.CollectionService)

	collections := e.Group("/api/v1/collections")
	{
		collections.POST("", h.CreateCollection)       // POST /api/v1/collections
		collections.GET("", h.ListCollections)         // GET /api/v1/collections
		collections.GET("/:id", h.GetCollection)       // GET /api/v1/collections/{collection_id}
		collections.DELETE("/:id", h.DeleteCollection) // DELETE /api/v1/collections/{collection_id}
	}
}
