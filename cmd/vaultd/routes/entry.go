package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/vaultbin/vaultbin/cmd/vaultd/container"
	"github.com/vaultbin/vaultbin/cmd/vaultd/handlers"
)

// RegisterEntryRoutes registers keyed entry routes. Entry paths are
// hierarchical, so the value segment is a wildcard.
func RegisterEntryRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewEntryHandler(c.Components, c.EntryService, c.CollectionService)

	entries := e.Group("/api/v1/collections/:id/entries")
	{
		entries.GET("", h.ListEntries)            // GET /api/v1/collections/{id}/entries
		entries.PUT("/*", h.PutEntry)             // PUT /api/v1/collections/{id}/entries/{path}
		entries.GET("/*", h.GetEntry)             // GET /api/v1/collections/{id}/entries/{path}?raw=true
		entries.PATCH("/*", h.PatchEntryMetadata) // PATCH /api/v1/collections/{id}/entries/{path}
		entries.DELETE("/*", h.DeleteEntry)       // DELETE /api/v1/collections/{id}/entries/{path}
	}
}
