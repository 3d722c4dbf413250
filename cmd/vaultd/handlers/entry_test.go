package handlers

import (
	"net/http"
	"testing"

	"github.com/vaultbin/vaultbin/common/bootstrap"
)

func TestPutEntry_Unauthenticated(t *testing.T) {
	h := NewEntryHandler(&bootstrap.Components{}, nil, nil)
	c := newTestContext(http.MethodPut, "/api/v1/collections/ignored/entries/x", `{"text":"v","media_type":"text/plain"}`)

	requireUnauthorized(t, h.PutEntry(c))
}

func TestGetEntry_Unauthenticated(t *testing.T) {
	h := NewEntryHandler(&bootstrap.Components{}, nil, nil)
	c := newTestContext(http.MethodGet, "/api/v1/collections/ignored/entries/x", "")

	requireUnauthorized(t, h.GetEntry(c))
}
