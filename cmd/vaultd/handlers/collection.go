package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/vaultbin/vaultbin/cmd/vaultd/middleware"
	"github.com/vaultbin/vaultbin/cmd/vaultd/service"
	"github.com/vaultbin/vaultbin/common/bootstrap"
)

// CollectionHandler handles collection CRUD operations
type CollectionHandler struct {
	components    *bootstrap.Components
	collectionSvc *service.CollectionService
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(components *bootstrap.Components, collectionSvc *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		components:    components,
		collectionSvc: collectionSvc,
	}
}

type createCollectionRequest struct {
	Name string `json:"name"`
}

// CreateCollection creates a new collection for the calling tenant
// POST /api/v1/collections
func (h *CollectionHandler) CreateCollection(c echo.Context) error {
	ownerID, err := middleware.RequireOwner(c)
	if err != nil {
		return err
	}

	var req createCollectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	col, err := h.collectionSvc.Create(c.Request().Context(), req.Name, ownerID)
	if err != nil {
		h.components.Logger.Error("failed to create collection", "name", req.Name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create collection")
	}

	return c.JSON(http.StatusCreated, col)
}

// GetCollection retrieves a collection by id
// GET /api/v1/collections/:id
func (h *CollectionHandler) GetCollection(c echo.Context) error {
	ownerID, err := middleware.RequireOwner(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid collection id format")
	}

	col, err := h.collectionSvc.GetByID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(statusForError(err), "collection not found")
	}
	if col.OwnerID != ownerID {
		// Don't reveal other tenants' collections
		return echo.NewHTTPError(http.StatusNotFound, "collection not found")
	}

	return c.JSON(http.StatusOK, col)
}

// ListCollections lists the calling tenant's collections
// GET /api/v1/collections
func (h *CollectionHandler) ListCollections(c echo.Context) error {
	ownerID, err := middleware.RequireOwner(c)
	if err != nil {
		return err
	}

	cols, err := h.collectionSvc.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		h.components.Logger.Error("failed to list collections", "owner_id", ownerID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list collections")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"collections": cols,
	})
}

// DeleteCollection removes a collection and its entries
// DELETE /api/v1/collections/:id
func (h *CollectionHandler) DeleteCollection(c echo.Context) error {
	ownerID, err := middleware.RequireOwner(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid collection id format")
	}

	col, err := h.collectionSvc.GetByID(c.Request().Context(), id)
	if err != nil || col.OwnerID != ownerID {
		return echo.NewHTTPError(http.StatusNotFound, "collection not found")
	}

	if err := h.collectionSvc.Delete(c.Request().Context(), id); err != nil {
		h.components.Logger.Error("failed to delete collection", "collection_id", id, "error", err)
		return echo.NewHTTPError(statusForError(err), "failed to delete collection")
	}

	return c.NoContent(http.StatusNoContent)
}
