package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/platefeed/backend/config"
	"github.com/pageza/platefeed/backend/internal/middleware"
	"github.com/pageza/platefeed/backend/internal/models"
	"github.com/pageza/platefeed/backend/internal/service"
)

type IngredientLineRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required"`
}

type CreateRecipeRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"text" binding:"required"`
	Image       string                  `json:"image" binding:"required"`
	CookingTime int                     `json:"cooking_time" binding:"required"`
	Tags        []uint                  `json:"tags" binding:"required"`
	Ingredients []IngredientLineRequest `json:"ingredients" binding:"required"`
}

// UpdateRecipeRequest leaves scalars optional; absent fields keep their
// stored values. Tags and ingredients are always required on update and
// replace the stored collections entirely.
type UpdateRecipeRequest struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"text"`
	Image       *string                 `json:"image"`
	CookingTime *int                    `json:"cooking_time"`
	Tags        []uint                  `json:"tags" binding:"required"`
	Ingredients []IngredientLineRequest `json:"ingredients" binding:"required"`
}

type RecipeHandler struct {
	recipes    *service.RecipeService
	relations  *service.RelationService
	shopping   *service.ShoppingListService
	shortLinks *service.ShortLinkService
	images     *service.ImageService
	auth       *service.AuthService
	cfg        *config.Config
	limiter    *middleware.RateLimiter
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shopping *service.ShoppingListService,
	shortLinks *service.ShortLinkService,
	images *service.ImageService,
	auth *service.AuthService,
	cfg *config.Config,
	limiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:    recipes,
		relations:  relations,
		shopping:   shopping,
		shortLinks: shortLinks,
		images:     images,
		auth:       auth,
		cfg:        cfg,
		limiter:    limiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.auth), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.auth), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetRecipe)
		recipes.GET("/:id/get-link", h.GetLink)

		authed := recipes.Group("", middleware.AuthMiddleware(h.auth))
		{
			create := authed.Group("")
			if h.limiter != nil {
				create.Use(h.limiter.RateLimitMiddleware())
			}
			create.POST("", h.CreateRecipe)

			authed.PATCH("/:id", h.UpdateRecipe)
			authed.DELETE("/:id", h.DeleteRecipe)
			authed.POST("/:id/favorite", h.AddFavorite)
			authed.DELETE("/:id/favorite", h.RemoveFavorite)
			authed.POST("/:id/shopping_cart", h.AddToCart)
			authed.DELETE("/:id/shopping_cart", h.RemoveFromCart)
		}
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	params := parsePagination(c)

	filter := service.RecipeFilter{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "author must be a user id"})
			return
		}
		filter.AuthorID = &authorID
	}
	if tags := c.QueryArray("tags"); len(tags) > 0 {
		filter.TagSlugs = tags
	}

	viewerID, authed := currentUserID(c)
	if c.Query("is_favorited") == "1" {
		if !authed {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required for is_favorited"})
			return
		}
		filter.FavoritedBy = &viewerID
	}
	if c.Query("is_in_shopping_cart") == "1" {
		if !authed {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required for is_in_shopping_cart"})
			return
		}
		filter.InCartOf = &viewerID
	}

	recipes, total, err := h.recipes.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	flags, err := h.viewerFlags(c)
	if err != nil {
		writeError(c, err)
		return
	}

	views := make([]RecipeView, 0, len(recipes))
	for i := range recipes {
		views = append(views, newRecipeView(&recipes[i], flags))
	}
	c.JSON(http.StatusOK, newPagedResponse(c, params, total, views))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	flags, err := h.viewerFlags(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeView(recipe, flags))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageURL, err := h.saveImage(c, req.Image)
	if err != nil {
		writeError(c, err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, service.CreateRecipeInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Lines:       toLineInputs(req.Ingredients),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	flags, err := h.viewerFlags(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeView(recipe, flags))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateRecipeInput{
		Name:        req.Name,
		Description: req.Description,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Lines:       toLineInputs(req.Ingredients),
	}
	if req.Image != nil {
		imageURL, err := h.saveImage(c, *req.Image)
		if err != nil {
			writeError(c, err)
			return
		}
		input.ImageURL = &imageURL
	}

	recipe, err := h.recipes.Update(c.Request.Context(), userID, id, input)
	if err != nil {
		writeError(c, err)
		return
	}

	flags, err := h.viewerFlags(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeView(recipe, flags))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addRelation(c, h.relations.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.relations.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFromCart)
}

// GetLink returns the permanent short link for a recipe.
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	code, err := h.shortLinks.Code(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	link := fmt.Sprintf("%s%s/%s", strings.TrimSuffix(h.cfg.BaseURL, "/"), h.cfg.ShortLinkPrefix, code)
	c.JSON(http.StatusOK, gin.H{"short-link": link})
}

// DownloadShoppingCart renders the consolidated shopping list as a plain-text
// attachment. An empty cart still produces the header line.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := currentUserID(c)

	items, err := h.shopping.Aggregate(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderText(items)))
}

func (h *RecipeHandler) addRelation(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)) {
	userID, _ := currentUserID(c)
	recipeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	recipe, err := add(c.Request.Context(), userID, recipeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeShortView(recipe))
}

func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	userID, _ := currentUserID(c)
	recipeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), userID, recipeID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// viewerFlags fetches the caller's relation sets once for the request. The
// zero value is returned for anonymous callers.
func (h *RecipeHandler) viewerFlags(c *gin.Context) (viewerFlags, error) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return viewerFlags{}, nil
	}

	ctx := c.Request.Context()
	favorites, err := h.relations.FavoriteIDs(ctx, viewerID)
	if err != nil {
		return viewerFlags{}, err
	}
	cart, err := h.relations.CartIDs(ctx, viewerID)
	if err != nil {
		return viewerFlags{}, err
	}
	following, err := h.relations.FollowingIDs(ctx, viewerID)
	if err != nil {
		return viewerFlags{}, err
	}
	return viewerFlags{Favorites: favorites, Cart: cart, Following: following}, nil
}

// saveImage uploads base64 payloads; payloads that already look like URLs
// (an unchanged image echoed back on update) pass through untouched.
func (h *RecipeHandler) saveImage(c *gin.Context, payload string) (string, error) {
	if strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://") {
		return payload, nil
	}
	return h.images.SaveBase64(c.Request.Context(), payload, "recipes")
}

func toLineInputs(reqs []IngredientLineRequest) []service.IngredientLineInput {
	lines := make([]service.IngredientLineInput, 0, len(reqs))
	for _, req := range reqs {
		lines = append(lines, service.IngredientLineInput{
			IngredientID: req.ID,
			Amount:       req.Amount,
		})
	}
	return lines
}
