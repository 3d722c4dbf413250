package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestExtractOwner_SetsContextFromHeader(t *testing.T) {
	c, _ := newContext(map[string]string{"X-User-ID": "tenant-1"})

	called := false
	h := ExtractOwner()(func(c echo.Context) error {
		called = true
		return nil
	})

	require.NoError(t, h(c))
	assert.True(t, called)
	assert.Equal(t, "tenant-1", GetOwner(c))
}

func TestExtractOwner_MissingHeaderLeavesContextEmpty(t *testing.T) {
	c, _ := newContext(nil)

	h := ExtractOwner()(func(c echo.Context) error { return nil })
	require.NoError(t, h(c))

	assert.Empty(t, GetOwner(c))
}

func TestRequireOwner_MissingHeaderReturnsError(t *testing.T) {
	c, rec := newContext(nil)

	ownerID, err := RequireOwner(c)
	assert.Empty(t, ownerID)

	// The rejection must surface as a returned error, not a committed
	// response: a caller gating on err != nil stops before doing any work.
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestRequireOwner_Present(t *testing.T) {
	c, _ := newContext(map[string]string{"X-User-ID": "tenant-1"})

	h := ExtractOwner()(func(c echo.Context) error { return nil })
	require.NoError(t, h(c))

	ownerID, err := RequireOwner(c)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", ownerID)
}
