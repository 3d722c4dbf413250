package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/vaultbin/vaultbin/cmd/vaultd/middleware"
	"github.com/vaultbin/vaultbin/cmd/vaultd/service"
	"github.com/vaultbin/vaultbin/common/bootstrap"
	"github.com/vaultbin/vaultbin/common/models"
)

// EntryHandler handles keyed entry operations
type EntryHandler struct {
	components    *bootstrap.Components
	entrySvc      *service.EntryService
	collectionSvc *service.CollectionService
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(components *bootstrap.Components, entrySvc *service.EntryService, collectionSvc *service.CollectionService) *EntryHandler {
	return &EntryHandler{
		components:    components,
		entrySvc:      entrySvc,
		collectionSvc: collectionSvc,
	}
}

type putEntryRequest struct {
	// Exactly one of Text/Binary must be set. Binary is base64 in JSON.
	Text      *string         `json:"text,omitempty"`
	Binary    []byte          `json:"binary,omitempty"`
	MediaType string          `json:"media_type"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

type entryResponse struct {
	Entry *models.KeyedEntry `json:"entry"`
	Value *valueResponse     `json:"value,omitempty"`
}

type valueResponse struct {
	Text      *string `json:"text,omitempty"`
	Binary    []byte  `json:"binary,omitempty"`
	MediaType string  `json:"media_type"`
	SizeBytes int64   `json:"size_bytes"`
	Digest    string  `json:"digest"`
}

// collectionForOwner resolves the :id param and enforces tenant ownership
func (h *EntryHandler) collectionForOwner(c echo.Context) (uuid.UUID, string, error) {
	ownerID, err := middleware.RequireOwner(c)
	if err != nil {
		return uuid.Nil, "", err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusBadRequest, "invalid collection id format")
	}

	col, err := h.collectionSvc.GetByID(c.Request().Context(), id)
	if err != nil || col.OwnerID != ownerID {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusNotFound, "collection not found")
	}

	return id, ownerID, nil
}

// PutEntry stores a value under a path, deduplicating identical content
// PUT /api/v1/collections/:id/entries/*
func (h *EntryHandler) PutEntry(c echo.Context) error {
	collectionID, ownerID, err := h.collectionForOwner(c)
	if err != nil {
		return err
	}

	path := c.Param("*")
	if path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "entry path is required")
	}

	var req putEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	payload := models.Payload{Text: req.Text, Binary: req.Binary}
	entry, err := h.entrySvc.Put(c.Request().Context(), collectionID, path, ownerID, payload, req.MediaType, req.Metadata)
	if err != nil {
		h.components.Logger.Error("failed to store entry", "collection_id", collectionID, "path", path, "error", err)
		return echo.NewHTTPError(statusForError(err), err.Error())
	}

	return c.JSON(http.StatusOK, entryResponse{Entry: entry})
}

// GetEntry retrieves an entry and its value. With ?raw=true the payload
// bytes are returned directly under the stored media type.
// GET /api/v1/collections/:id/entries/*
func (h *EntryHandler) GetEntry(c echo.Context) error {
	collectionID, _, err := h.collectionForOwner(c)
	if err != nil {
		return err
	}

	path := c.Param("*")
	entry, rec, err := h.entrySvc.Get(c.Request().Context(), collectionID, path)
	if err != nil {
		return echo.NewHTTPError(statusForError(err), err.Error())
	}

	if c.QueryParam("raw") == "true" {
		return c.Blob(http.StatusOK, rec.MediaType, rec.PayloadBytes())
	}

	value := &valueResponse{
		MediaType: rec.MediaType,
		SizeBytes: rec.SizeBytes,
		Digest:    rec.Digest,
	}
	if rec.Kind == models.KindText {
		value.Text = rec.TextValue
	} else {
		value.Binary = rec.Blob
	}

	return c.JSON(http.StatusOK, entryResponse{Entry: entry, Value: value})
}

// ListEntries lists a collection's entries (metadata only, no payloads)
// GET /api/v1/collections/:id/entries
func (h *EntryHandler) ListEntries(c echo.Context) error {
	collectionID, _, err := h.collectionForOwner(c)
	if err != nil {
		return err
	}

	entries, err := h.entrySvc.List(c.Request().Context(), collectionID)
	if err != nil {
		h.components.Logger.Error("failed to list entries", "collection_id", collectionID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list entries")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// PatchEntryMetadata applies a JSON merge patch to an entry's metadata
// without touching its value
// PATCH /api/v1/collections/:id/entries/*
func (h *EntryHandler) PatchEntryMetadata(c echo.Context) error {
	collectionID, _, err := h.collectionForOwner(c)
	if err != nil {
		return err
	}

	patch, err := io.ReadAll(c.Request().Body)
	if err != nil || len(patch) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "merge patch body is required")
	}

	path := c.Param("*")
	entry, err := h.entrySvc.PatchMetadata(c.Request().Context(), collectionID, path, patch)
	if err != nil {
		return echo.NewHTTPError(statusForError(err), err.Error())
	}

	return c.JSON(http.StatusOK, entryResponse{Entry: entry})
}

// DeleteEntry removes an entry; the content it referenced is reclaimed
// later if nothing else references it
// DELETE /api/v1/collections/:id/entries/*
func (h *EntryHandler) DeleteEntry(c echo.Context) error {
	collectionID, _, err := h.collectionForOwner(c)
	if err != nil {
		return err
	}

	path := c.Param("*")
	if err := h.entrySvc.Delete(c.Request().Context(), collectionID, path); err != nil {
		return echo.NewHTTPError(statusForError(err), err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
