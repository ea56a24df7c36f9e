package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/config"
	"github.com/portfolio/internal/db"
	"github.com/portfolio/internal/handler"
	"github.com/portfolio/internal/logging"
	"github.com/portfolio/internal/router"
	"github.com/portfolio/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.AppConfig, logger *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, closeDB, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// buildApp wires storage, services and routes. The returned func closes the database.
func buildApp(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (http.Handler, func() error, error) {
	// 初始化数据库
	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, err
	}

	thumbs := service.NewThumbnailer(cfg.ThumbnailMaxSide, cfg.ThumbnailQuality, cfg.MaxImagePixels)
	gallery := service.NewGalleryStore(service.NewKVStore(gdb), thumbs,
		service.WithStorageKey(cfg.GalleryStorageKey),
		service.WithLogger(logger.Named("gallery")))
	items, err := gallery.Load(ctx)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	logger.Info("gallery loaded", zap.String("key", gallery.Key()), zap.Int("items", len(items)))

	contacts := make([]service.ProfileContact, 0, len(cfg.ContactLinks))
	for _, link := range cfg.Contacts() {
		contacts = append(contacts, service.ProfileContact{Platform: link.Platform, URL: link.URL})
	}
	profiles := service.NewProfileService(cfg.SiteTitle, cfg.IntroPath, contacts)

	owner, err := handler.NewOwnerCredentials(cfg.OwnerUsername, cfg.OwnerPassword, cfg.OwnerPasswordHash)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	if !owner.Enabled() {
		logger.Warn("owner password not configured, gallery editing is open to every visitor")
	}

	api := handler.NewAPI(gallery, profiles, owner, logger, cfg.MaxUploadBytes)
	return router.SetupRouter(api, cfg.SessionSecret, logger.Named("http")), sqlDB.Close, nil
}
