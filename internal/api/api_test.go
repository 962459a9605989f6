package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/platefeed/backend/config"
	"github.com/pageza/platefeed/backend/internal/models"
	"github.com/pageza/platefeed/backend/internal/repository"
	"github.com/pageza/platefeed/backend/internal/service"
	"github.com/pageza/platefeed/backend/internal/testhelpers"
)

// testAPI is a fully wired engine over an in-memory database. Redis and S3
// are absent, so rate limiting is off and images stay inline.
type testAPI struct {
	engine      *gin.Engine
	db          *gorm.DB
	auth        *service.AuthService
	relations   *service.RelationService
	tags        []models.Tag
	ingredients []models.Ingredient
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewTestDB(t)
	cfg := &config.Config{
		BaseURL:         "http://localhost:8080",
		ShortLinkPrefix: "/s",
	}

	catalogRepo := repository.NewCatalogRepo(db)
	authService := service.NewAuthService(db, "test-secret")
	userService := service.NewUserService(db)
	shortLinkService := service.NewShortLinkService(db, nil)
	recipeService := service.NewRecipeService(db, catalogRepo, shortLinkService)
	relationService := service.NewRelationService(db)
	shoppingService := service.NewShoppingListService(db)
	imageService := service.NewImageService(nil)

	engine := gin.New()
	v1 := engine.Group("/api/v1")
	NewAuthHandler(authService).RegisterRoutes(v1)
	NewUserHandler(userService, relationService, recipeService, imageService, authService).RegisterRoutes(v1)
	NewCatalogHandler(catalogRepo).RegisterRoutes(v1)
	NewRecipeHandler(
		recipeService,
		relationService,
		shoppingService,
		shortLinkService,
		imageService,
		authService,
		cfg,
		nil,
	).RegisterRoutes(v1)
	NewShortLinkHandler(shortLinkService).RegisterRoutes(engine)

	return &testAPI{
		engine:    engine,
		db:        db,
		auth:      authService,
		relations: relationService,
		tags: []models.Tag{
			testhelpers.CreateTag(t, db, "Breakfast", "breakfast"),
			testhelpers.CreateTag(t, db, "Dinner", "dinner"),
		},
		ingredients: []models.Ingredient{
			testhelpers.CreateIngredient(t, db, "flour", "g"),
			testhelpers.CreateIngredient(t, db, "milk", "ml"),
		},
	}
}

// newUserToken registers a user directly through the service and returns a
// valid bearer token for them.
func (a *testAPI) newUserToken(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	user, err := a.auth.Register(context.Background(), service.RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "hunter2hunter2",
	})
	require.NoError(t, err)

	token, err := a.auth.GenerateToken(user.ID)
	require.NoError(t, err)
	return user, token
}

func (a *testAPI) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

func (a *testAPI) validRecipeBody() map[string]interface{} {
	return map[string]interface{}{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"image":        tinyPNG,
		"cooking_time": 20,
		"tags":         []uint{a.tags[0].ID},
		"ingredients": []map[string]interface{}{
			{"id": a.ingredients[0].ID, "amount": 200},
			{"id": a.ingredients[1].ID, "amount": 300},
		},
	}
}

// 1x1 transparent PNG
const tinyPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="
