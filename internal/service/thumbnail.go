package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"strings"

	// 注册解码器：GIF/PNG 来自标准库，WebP/BMP/TIFF 来自 x/image。
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultThumbnailMaxSide caps the longest side of a stored thumbnail.
	DefaultThumbnailMaxSide = 900
	// DefaultThumbnailQuality is the JPEG quality used for re-encoding.
	DefaultThumbnailQuality = 86
	// DefaultMaxImagePixels rejects uploads that would decode to huge bitmaps.
	DefaultMaxImagePixels = 40_000_000

	thumbnailMediaType = "image/jpeg"
)

var (
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
	ErrImageTooLarge    = errors.New("image dimensions exceed limit")
	ErrInvalidDataURL   = errors.New("invalid data url")
)

// Thumbnailer downsizes uploaded images and re-encodes them as JPEG data URLs.
type Thumbnailer struct {
	MaxSide   int
	Quality   int
	MaxPixels int
}

// NewThumbnailer 构造 Thumbnailer，非法参数回退默认值。
func NewThumbnailer(maxSide, quality, maxPixels int) Thumbnailer {
	if maxSide <= 0 {
		maxSide = DefaultThumbnailMaxSide
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultThumbnailQuality
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	return Thumbnailer{MaxSide: maxSide, Quality: quality, MaxPixels: maxPixels}
}

// ScaledSize returns the thumbnail dimensions for a width x height image.
// The result never exceeds maxSide on its longest side and is never upscaled.
func ScaledSize(width, height, maxSide int) (int, int) {
	if width <= 0 || height <= 0 || maxSide <= 0 {
		return width, height
	}

	scale := math.Min(1, float64(maxSide)/float64(max(width, height)))
	outW := int(math.Round(float64(width) * scale))
	outH := int(math.Round(float64(height) * scale))
	return max(outW, 1), max(outH, 1)
}

// Thumbnail is the encoded result of one image.
type Thumbnail struct {
	DataURL string
	Width   int
	Height  int
}

// Create decodes r, scales it down and returns the JPEG data URL.
func (t Thumbnailer) Create(r io.Reader) (Thumbnail, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Thumbnail{}, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Thumbnail{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if t.MaxPixels > 0 && cfg.Width*cfg.Height > t.MaxPixels {
		return Thumbnail{}, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Thumbnail{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	bounds := src.Bounds()
	width, height := ScaledSize(bounds.Dx(), bounds.Dy(), t.MaxSide)

	// JPEG 不支持透明通道，先铺白底
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: t.Quality}); err != nil {
		return Thumbnail{}, fmt.Errorf("encode thumbnail: %w", err)
	}

	return Thumbnail{
		DataURL: EncodeDataURL(thumbnailMediaType, buf.Bytes()),
		Width:   width,
		Height:  height,
	}, nil
}

// EncodeDataURL builds a base64 data URL.
func EncodeDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URL into its media type and payload.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mediaType, data, nil
}
