package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/platefeed/backend/internal/api"
	"github.com/pageza/platefeed/backend/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *api.AuthHandler
	Users     *api.UserHandler
	Catalog   *api.CatalogHandler
	Recipes   *api.RecipeHandler
	ShortLink *api.ShortLinkHandler
	Health    gin.HandlerFunc
}

// SetupRouter configures the application routes
func SetupRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.Recovery())

	if handlers.Health != nil {
		router.GET("/health", handlers.Health)
	} else {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	handlers.ShortLink.RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	handlers.Auth.RegisterRoutes(v1)
	handlers.Users.RegisterRoutes(v1)
	handlers.Catalog.RegisterRoutes(v1)
	handlers.Recipes.RegisterRoutes(v1)

	return router
}
