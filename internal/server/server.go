package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/platefeed/backend/config"
	"github.com/pageza/platefeed/backend/internal/api"
	"github.com/pageza/platefeed/backend/internal/database"
	"github.com/pageza/platefeed/backend/internal/middleware"
	"github.com/pageza/platefeed/backend/internal/repository"
	"github.com/pageza/platefeed/backend/internal/router"
	"github.com/pageza/platefeed/backend/internal/service"
)

// Server wires the full application together and owns its lifecycle.
type Server struct {
	cfg    *config.Config
	http   *http.Server
	health *database.DB
}

// New builds the server: connections, services, handlers, routes. Redis and
// S3 are optional at startup; the features backed by them degrade in place.
func New(cfg *config.Config) (*Server, error) {
	healthDB, err := database.New(cfg)
	if err != nil {
		return nil, err
	}

	gormDB, err := database.NewGorm(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, continuing without cache or rate limiting: %v", err)
		redisClient = nil
	}

	var imageStore service.ImageStore
	if cfg.AWSRegion != "" {
		s3Config, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			log.Printf("S3 unavailable, images will be stored inline: %v", err)
		} else {
			// uploaded images are served straight from the bucket
			if err := s3Config.SetupBucketPolicy(context.Background()); err != nil {
				log.Printf("Failed to apply bucket policy: %v", err)
			}
			imageStore = service.NewS3ImageStore(s3Config)
		}
	}

	catalogRepo := repository.NewCatalogRepo(gormDB)

	authService := service.NewAuthService(gormDB, cfg.JWTSecret)
	userService := service.NewUserService(gormDB)
	relationService := service.NewRelationService(gormDB)
	shoppingService := service.NewShoppingListService(gormDB)
	shortLinkService := service.NewShortLinkService(gormDB, redisClient)
	recipeService := service.NewRecipeService(gormDB, catalogRepo, shortLinkService)
	imageService := service.NewImageService(imageStore)

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	handlers := router.Handlers{
		Auth:    api.NewAuthHandler(authService),
		Users:   api.NewUserHandler(userService, relationService, recipeService, imageService, authService),
		Catalog: api.NewCatalogHandler(catalogRepo),
		Recipes: api.NewRecipeHandler(
			recipeService,
			relationService,
			shoppingService,
			shortLinkService,
			imageService,
			authService,
			cfg,
			limiter,
		),
		ShortLink: api.NewShortLinkHandler(shortLinkService),
		Health:    healthHandler(healthDB),
	}

	engine := router.SetupRouter(handlers)

	return &Server{
		cfg:    cfg,
		health: healthDB,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
	}, nil
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the health connection.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	return s.health.Close()
}

func healthHandler(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
