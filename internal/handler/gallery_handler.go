package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
	"go.uber.org/zap"
)

type movePayload struct {
	BeforeID string `json:"before_id"`
}

// ListGalleryImages returns the gallery in display order.
func (a *API) ListGalleryImages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.gallery.Items()})
}

// DownloadGalleryImage streams a record's thumbnail as an attachment.
func (a *API) DownloadGalleryImage(c *gin.Context) {
	item, ok := a.gallery.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "作品不存在")
		return
	}

	mediaType, data, err := service.DecodeDataURL(item.DataURL)
	if err != nil {
		a.logger.Error("stored image is not a data url", zap.String("id", item.ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "读取作品失败")
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": service.DownloadName(item)})
	if disposition == "" {
		disposition = `attachment; filename="image.jpg"`
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, mediaType, data)
}

// DeleteGalleryImage removes one record; unknown ids are not an error.
func (a *API) DeleteGalleryImage(c *gin.Context) {
	items, err := a.gallery.RemoveImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.storageFailure(c, "删除作品失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "作品已删除", "items": items})
}

// ClearGallery empties the gallery. The caller must confirm explicitly.
func (a *API) ClearGallery(c *gin.Context) {
	if !strings.EqualFold(strings.TrimSpace(c.Query("confirm")), "true") {
		respondError(c, http.StatusBadRequest, "请确认清除全部作品")
		return
	}

	items, err := a.gallery.ClearAll(c.Request.Context())
	if err != nil {
		a.storageFailure(c, "清除作品失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "作品已清除", "items": items})
}

// MoveGalleryImage moves a record before another one, or to the end when
// before_id is empty or the body is omitted.
func (a *API) MoveGalleryImage(c *gin.Context) {
	var payload movePayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "请求参数不合法")
		return
	}

	items, err := a.gallery.MoveImage(c.Request.Context(), c.Param("id"), strings.TrimSpace(payload.BeforeID))
	if err != nil {
		a.storageFailure(c, "调整顺序失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "顺序已更新", "items": items})
}

func (a *API) storageFailure(c *gin.Context, message string, err error) {
	a.logger.Error(message, zap.Error(err))
	c.Error(err)
	respondError(c, http.StatusInternalServerError, message)
}
