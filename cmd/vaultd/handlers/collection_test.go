package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultbin/vaultbin/common/bootstrap"
)

func newTestContext(method, target, body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func requireUnauthorized(t *testing.T, err error) {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

// The handlers are constructed with a nil service: if the tenant gate lets an
// unauthenticated request through, the handler body panics instead of
// silently persisting rows for an empty owner id.

func TestCreateCollection_Unauthenticated(t *testing.T) {
	h := NewCollectionHandler(&bootstrap.Components{}, nil)
	c := newTestContext(http.MethodPost, "/api/v1/collections", `{"name":"docs"}`)

	requireUnauthorized(t, h.CreateCollection(c))
}

func TestListCollections_Unauthenticated(t *testing.T) {
	h := NewCollectionHandler(&bootstrap.Components{}, nil)
	c := newTestContext(http.MethodGet, "/api/v1/collections", "")

	requireUnauthorized(t, h.ListCollections(c))
}

func TestDeleteCollection_Unauthenticated(t *testing.T) {
	h := NewCollectionHandler(&bootstrap.Components{}, nil)
	c := newTestContext(http.MethodDelete, "/api/v1/collections/ignored", "")

	requireUnauthorized(t, h.DeleteCollection(c))
}
