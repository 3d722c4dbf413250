package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// OwnerKey is the context key for storing the authenticated tenant id
	OwnerKey ContextKey = "owner_id"
)

// ExtractOwner is a middleware that extracts the X-User-ID header and stores
// it in the request context. Authentication itself happens upstream (the
// gateway terminates the OAuth session); by the time a request reaches this
// service the header carries the verified tenant id.
//
// Usage:
//
//	e := echo.New()
//	e.Use(middleware.ExtractOwner())
//
// Accessing in handlers:
//
//	ownerID := middleware.GetOwner(c)
func ExtractOwner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ownerID := c.Request().Header.Get("X-User-ID")

			if ownerID != "" {
				// Store in context for handler access
				c.Set(string(OwnerKey), ownerID)
			}

			return next(c)
		}
	}
}

// GetOwner retrieves the tenant id from the request context
// Returns empty string if not set
func GetOwner(c echo.Context) string {
	ownerID := c.Get(string(OwnerKey))
	if ownerID == nil {
		return ""
	}
	return ownerID.(string)
}

// RequireOwner ensures a tenant id exists in context.
// Returns a 401 error if not found; the caller must propagate it so echo's
// error handler writes the response and the handler body never runs without
// a tenant.
func RequireOwner(c echo.Context) (string, error) {
	ownerID := GetOwner(c)
	if ownerID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required (X-User-ID header missing)")
	}
	return ownerID, nil
}
