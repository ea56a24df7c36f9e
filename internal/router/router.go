package router

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/handler"
	"github.com/portfolio/internal/logging"
	"github.com/portfolio/internal/view"
	"go.uber.org/zap"
)

const sessionName = "portfolio_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(logging.GinLogger(logger), gin.Recovery())

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetHTMLTemplate(template.Must(view.Templates()))
	r.StaticFS("/static", http.FS(view.Static()))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/", api.ShowPortfolio)

	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)
	}

	gallery := r.Group("/api/gallery")
	{
		gallery.GET("", api.ListGalleryImages)
		gallery.GET("/images/:id/download", api.DownloadGalleryImage)

		owner := gallery.Group("")
		owner.Use(api.OwnerRequired())
		{
			owner.POST("/images", api.UploadImages)
			owner.DELETE("/images", api.ClearGallery)
			owner.DELETE("/images/:id", api.DeleteGalleryImage)
			owner.POST("/images/:id/move", api.MoveGalleryImage)
		}
	}

	return r
}
