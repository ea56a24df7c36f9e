package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowPortfolioRendersGallery(t *testing.T) {
	env := newTestEnv(t, OwnerCredentials{}, 0)
	items := decodeGallery(t, env.upload(t, uploadPart{name: "<i>cat.png", data: testPNG(t, 4, 4)})).Items
	require.Len(t, items, 1)

	rr := env.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	page := rr.Body.String()
	assert.Contains(t, page, `data-id="`+items[0].ID+`"`)
	assert.Contains(t, page, "cat.png")
	assert.Contains(t, page, `src="data:image/jpeg;base64,`)
	assert.Contains(t, page, `id="dropzone"`)
	assert.False(t, strings.Contains(page, "<i>cat"))
}

func TestShowPortfolioHidesEditingForVisitors(t *testing.T) {
	env := newTestEnv(t, ownerFor(t, "pw"), 0)

	rr := env.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `id="dropzone"`)
	assert.NotContains(t, rr.Body.String(), "gallery.js")
}
