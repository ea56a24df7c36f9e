package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/db"
	"github.com/portfolio/internal/service"
	"github.com/portfolio/internal/view"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	api     *API
	gallery *service.GalleryStore
	kv      *service.KVStore
	engine  *gin.Engine
}

type uploadPart struct {
	field string
	name  string
	data  []byte
}

type galleryResponse struct {
	Error   string                `json:"error"`
	Items   []service.ImageRecord `json:"items"`
	Skipped []string              `json:"skipped"`
}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to open test db")
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func newTestEnv(t *testing.T, owner OwnerCredentials, maxUpload int64) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := service.NewKVStore(setupHandlerTestDB(t))
	gallery := service.NewGalleryStore(kv, service.NewThumbnailer(64, 80, 0))
	_, err := gallery.Load(context.Background())
	require.NoError(t, err)

	api := NewAPI(gallery, service.NewProfileService("Test", "", nil), owner, nil, maxUpload)

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.SetHTMLTemplate(template.Must(view.Templates()))
	r.GET("/", api.ShowPortfolio)
	r.POST("/admin/login", api.Login)
	r.POST("/admin/logout", api.Logout)
	r.GET("/api/gallery", api.ListGalleryImages)
	r.GET("/api/gallery/images/:id/download", api.DownloadGalleryImage)
	guarded := r.Group("/api/gallery", api.OwnerRequired())
	guarded.POST("/images", api.UploadImages)
	guarded.DELETE("/images", api.ClearGallery)
	guarded.DELETE("/images/:id", api.DeleteGalleryImage)
	guarded.POST("/images/:id/move", api.MoveGalleryImage)

	return &testEnv{api: api, gallery: gallery, kv: kv, engine: r}
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, source string, parts ...uploadPart) (io.Reader, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if source != "" {
		require.NoError(t, writer.WriteField("source", source))
	}
	for _, part := range parts {
		field := part.field
		if field == "" {
			field = "images"
		}
		fw, err := writer.CreateFormFile(field, part.name)
		require.NoError(t, err)
		_, err = fw.Write(part.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) upload(t *testing.T, parts ...uploadPart) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "picker", parts...)
	return e.do(t, http.MethodPost, "/api/gallery/images", body, contentType)
}

func decodeGallery(t *testing.T, rr *httptest.ResponseRecorder) galleryResponse {
	t.Helper()

	var resp galleryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func itemIDs(items []service.ImageRecord) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
