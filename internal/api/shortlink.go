package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/platefeed/backend/internal/service"
)

// ShortLinkHandler serves the public /s/:code redirect. It lives outside the
// /api/v1 group so share links stay short.
type ShortLinkHandler struct {
	shortLinks *service.ShortLinkService
}

func NewShortLinkHandler(shortLinks *service.ShortLinkService) *ShortLinkHandler {
	return &ShortLinkHandler{shortLinks: shortLinks}
}

func (h *ShortLinkHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/s/:code", h.Resolve)
}

func (h *ShortLinkHandler) Resolve(c *gin.Context) {
	recipeID, err := h.shortLinks.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/api/v1/recipes/%s", recipeID))
}
