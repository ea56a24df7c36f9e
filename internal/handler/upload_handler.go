package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
	"go.uber.org/zap"
)

// UploadImages 处理图片上传：无论来自文件选择器还是拖放，都先过滤掉非图片文件。
func (a *API) UploadImages(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(c, http.StatusRequestEntityTooLarge, "上传内容过大")
			return
		}
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}

	headers := slices.Concat(form.File["images"], form.File["image"])
	files, skipped := filterImageFiles(headers)
	source := strings.TrimSpace(c.PostForm("source"))
	a.logger.Info("gallery upload",
		zap.String("source", source),
		zap.Int("accepted", len(files)),
		zap.Strings("skipped", skipped))

	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "只允许上传图片文件", "skipped": skipped})
		return
	}

	items, err := a.gallery.AddImages(c.Request.Context(), files)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedImage), errors.Is(err, service.ErrImageTooLarge):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "items": items, "skipped": skipped})
		default:
			a.logger.Error("gallery upload failed", zap.Error(err))
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存图片失败", "items": items, "skipped": skipped})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "上传成功", "items": items, "skipped": skipped})
}

// filterImageFiles keeps the parts whose sniffed content is an image, in order.
func filterImageFiles(headers []*multipart.FileHeader) ([]service.UploadFile, []string) {
	files := make([]service.UploadFile, 0, len(headers))
	skipped := []string{}
	for _, header := range headers {
		if !isImage(header) {
			skipped = append(skipped, header.Filename)
			continue
		}
		files = append(files, service.UploadFile{
			Name: header.Filename,
			Open: func() (io.ReadCloser, error) { return header.Open() },
		})
	}
	return files, skipped
}

func isImage(header *multipart.FileHeader) bool {
	f, err := header.Open()
	if err != nil {
		return false
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mtype.String(), "image/")
}
