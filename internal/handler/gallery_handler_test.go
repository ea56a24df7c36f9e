package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/portfolio/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListGalleryImagesEmpty(t *testing.T) {
	env := newTestEnv(t, OwnerCredentials{}, 0)

	rr := env.do(t, http.MethodGet, "/api/gallery", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[]}`, rr.Body.String())
}

func TestGalleryMutationsOverHTTP(t *testing.T) {
	env := newTestEnv(t, OwnerCredentials{}, 0)

	rr := env.upload(t,
		uploadPart{name: "a.png", data: testPNG(t, 200, 100)},
		uploadPart{name: "b.png", data: testPNG(t, 10, 10)},
	)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	items := decodeGallery(t, rr).Items
	require.Len(t, items, 2)
	a, b := items[0], items[1]
	assert.Equal(t, "a.png", a.Name)
	assert.Equal(t, "b.png", b.Name)

	rr = env.do(t, http.MethodPost, "/api/gallery/images/"+a.ID+"/move", strings.NewReader(`{"before_id":""}`), "application/json")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []string{b.ID, a.ID}, itemIDs(decodeGallery(t, rr).Items))

	rr = env.do(t, http.MethodPost, "/api/gallery/images/"+a.ID+"/move", strings.NewReader(`{"before_id":"`+b.ID+`"}`), "application/json")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{a.ID, b.ID}, itemIDs(decodeGallery(t, rr).Items))

	rr = env.do(t, http.MethodDelete, "/api/gallery/images/"+b.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{a.ID}, itemIDs(decodeGallery(t, rr).Items))

	rr = env.do(t, http.MethodDelete, "/api/gallery/images/missing", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{a.ID}, itemIDs(decodeGallery(t, rr).Items))

	rr = env.do(t, http.MethodDelete, "/api/gallery/images", nil, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, env.gallery.Items(), 1)

	rr = env.do(t, http.MethodDelete, "/api/gallery/images?confirm=true", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeGallery(t, rr).Items)

	raw, found, err := env.kv.Get(context.Background(), service.DefaultGalleryStorageKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "[]", raw)
}

func TestMoveWithoutBodyMovesToEnd(t *testing.T) {
	env := newTestEnv(t, OwnerCredentials{}, 0)
	items := decodeGallery(t, env.upload(t,
		uploadPart{name: "a.png", data: testPNG(t, 4, 4)},
		uploadPart{name: "b.png", data: testPNG(t, 4, 4)},
	)).Items
	require.Len(t, items, 2)

	rr := env.do(t, http.MethodPost, "/api/gallery/images/"+items[0].ID+"/move", nil, "application/json")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []string{items[1].ID, items[0].ID}, itemIDs(decodeGallery(t, rr).Items))

	rr = env.do(t, http.MethodPost, "/api/gallery/images/"+items[0].ID+"/move", strings.NewReader(`{"before_id":`), "application/json")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDownloadGalleryImage(t *testing.T) {
	env := newTestEnv(t, OwnerCredentials{}, 0)
	items := decodeGallery(t, env.upload(t, uploadPart{name: "晚霞.png", data: testPNG(t, 8, 8)})).Items
	require.Len(t, items, 1)

	rr := env.do(t, http.MethodGet, "/api/gallery/images/"+items[0].ID+"/download", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "filename*=utf-8''")
	assert.Equal(t, []byte{0xFF, 0xD8}, rr.Body.Bytes()[:2])

	rr = env.do(t, http.MethodGet, "/api/gallery/images/missing/download", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDownloadFallbackName(t *testing.T) {
	env := newTestEnv(t, OwnerCredentials{}, 0)
	require.NoError(t, env.gallery.Persist(context.Background(), []service.ImageRecord{
		{ID: "x", DataURL: service.EncodeDataURL("image/jpeg", []byte{0xFF, 0xD8, 0xFF}), Name: ""},
		{ID: "broken", DataURL: "not a data url", Name: "b.jpg"},
	}))

	rr := env.do(t, http.MethodGet, "/api/gallery/images/x/download", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename=image.jpg`, rr.Header().Get("Content-Disposition"))

	rr = env.do(t, http.MethodGet, "/api/gallery/images/broken/download", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
