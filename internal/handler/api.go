package handler

import (
	"github.com/portfolio/internal/service"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes limits the total size of one multipart upload.
const DefaultMaxUploadBytes int64 = 32 << 20

// API bundles shared dependencies for HTTP handlers.
type API struct {
	gallery        *service.GalleryStore
	profiles       *service.ProfileService
	owner          OwnerCredentials
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gallery *service.GalleryStore, profiles *service.ProfileService, owner OwnerCredentials, logger *zap.Logger, maxUploadBytes int64) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &API{
		gallery:        gallery,
		profiles:       profiles,
		owner:          owner,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}
