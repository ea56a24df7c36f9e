package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShowPortfolio renders the portfolio page with intro, gallery and contacts.
func (a *API) ShowPortfolio(c *gin.Context) {
	profile, err := a.profiles.Profile()
	if err != nil {
		a.logger.Error("load profile failed", zap.Error(err))
		c.Error(err)
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"profile": profile,
		"items":   a.gallery.Items(),
		"canEdit": a.isOwner(c),
	})
}
