package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `env:"LISTEN_ADDR"`
	Port          string `env:"PORT" envDefault:"8080"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"portfolio.db"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"portfolio-dev-secret"`
	GinMode       string `env:"GIN_MODE" envDefault:"release"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	GalleryStorageKey string `env:"GALLERY_STORAGE_KEY" envDefault:"portfolio_images_v2"`
	ThumbnailMaxSide  int    `env:"THUMBNAIL_MAX_SIDE" envDefault:"900"`
	ThumbnailQuality  int    `env:"THUMBNAIL_QUALITY" envDefault:"86"`
	MaxImagePixels    int    `env:"MAX_IMAGE_PIXELS" envDefault:"40000000"`
	MaxUploadBytes    int64  `env:"MAX_UPLOAD_BYTES" envDefault:"33554432"`

	OwnerUsername     string `env:"OWNER_USERNAME" envDefault:"owner"`
	OwnerPassword     string `env:"OWNER_PASSWORD"`
	OwnerPasswordHash string `env:"OWNER_PASSWORD_HASH"`

	SiteTitle    string   `env:"SITE_TITLE" envDefault:"Portfolio"`
	IntroPath    string   `env:"INTRO_PATH"`
	ContactLinks []string `env:"CONTACT_LINKS" envSeparator:","`
}

// ContactLink is one parsed CONTACT_LINKS entry.
type ContactLink struct {
	Platform string
	URL      string
}

// Load 读取可选的 .env 文件后解析环境变量，并为缺失项提供默认值。
func Load(envFiles ...string) (AppConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	cfg.OwnerUsername = strings.TrimSpace(cfg.OwnerUsername)
	return cfg, nil
}

// OwnerAuthEnabled reports whether mutating routes require an owner session.
func (c AppConfig) OwnerAuthEnabled() bool {
	return strings.TrimSpace(c.OwnerPassword) != "" || strings.TrimSpace(c.OwnerPasswordHash) != ""
}

// Contacts parses CONTACT_LINKS entries of the form platform=url, keeping order.
// Malformed entries are skipped.
func (c AppConfig) Contacts() []ContactLink {
	links := make([]ContactLink, 0, len(c.ContactLinks))
	for _, raw := range c.ContactLinks {
		platform, url, ok := strings.Cut(strings.TrimSpace(raw), "=")
		platform = strings.ToLower(strings.TrimSpace(platform))
		url = strings.TrimSpace(url)
		if !ok || platform == "" || url == "" {
			continue
		}
		links = append(links, ContactLink{Platform: platform, URL: url})
	}
	return links
}
