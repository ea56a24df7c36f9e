package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"

	"github.com/portfolio/internal/config"
	"github.com/portfolio/internal/db"
	"github.com/portfolio/internal/service"
)

// 测试数据生成器：向图库写入若干渐变色示例图
func main() {
	count := flag.Int("n", 6, "number of sample images")
	force := flag.Bool("force", false, "append even when the gallery is not empty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	store, closeDB, err := openStore(cfg)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	defer closeDB()

	items, err := seed(context.Background(), store, *count, *force)
	if err != nil {
		closeDB()
		log.Fatal("生成示例图失败:", err)
	}
	fmt.Printf("图库共 %d 张作品\n", len(items))
}

// openStore opens the configured database. The returned func closes it.
func openStore(cfg config.AppConfig) (*service.GalleryStore, func() error, error) {
	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, err
	}

	store := service.NewGalleryStore(service.NewKVStore(gdb),
		service.NewThumbnailer(cfg.ThumbnailMaxSide, cfg.ThumbnailQuality, cfg.MaxImagePixels),
		service.WithStorageKey(cfg.GalleryStorageKey))
	return store, sqlDB.Close, nil
}

func seed(ctx context.Context, store *service.GalleryStore, count int, force bool) ([]service.ImageRecord, error) {
	existing, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 && !force {
		fmt.Println("图库已有作品，跳过生成")
		return existing, nil
	}

	files := make([]service.UploadFile, 0, count)
	for i := 0; i < count; i++ {
		raw, err := sampleImage(i)
		if err != nil {
			return nil, err
		}
		files = append(files, service.UploadFile{
			Name: fmt.Sprintf("sample-%02d.png", i+1),
			Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(raw)), nil },
		})
	}
	return store.AddImages(ctx, files)
}

// sampleImage alternates landscape and portrait gradients.
func sampleImage(i int) ([]byte, error) {
	width, height := 1200, 800
	if i%2 == 1 {
		width, height = 800, 1200
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	hue := uint8(i * 40)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: hue + uint8(x*255/width), G: uint8(y * 255 / height), B: 255 - hue, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
