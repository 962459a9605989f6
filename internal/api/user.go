package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/platefeed/backend/internal/middleware"
	"github.com/pageza/platefeed/backend/internal/models"
	"github.com/pageza/platefeed/backend/internal/service"
)

type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

type UserHandler struct {
	users     *service.UserService
	relations *service.RelationService
	recipes   *service.RecipeService
	images    *service.ImageService
	auth      *service.AuthService
}

func NewUserHandler(users *service.UserService, relations *service.RelationService, recipes *service.RecipeService, images *service.ImageService, auth *service.AuthService) *UserHandler {
	return &UserHandler{
		users:     users,
		relations: relations,
		recipes:   recipes,
		images:    images,
		auth:      auth,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuthMiddleware(h.auth), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.auth), h.Me)
		users.PUT("/me/avatar", middleware.AuthMiddleware(h.auth), h.PutAvatar)
		users.DELETE("/me/avatar", middleware.AuthMiddleware(h.auth), h.DeleteAvatar)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.auth), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	params := parsePagination(c)

	users, total, err := h.users.List(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		writeError(c, err)
		return
	}

	following := map[uuid.UUID]bool{}
	if viewerID, ok := currentUserID(c); ok {
		following, err = h.relations.FollowingIDs(c.Request.Context(), viewerID)
		if err != nil {
			writeError(c, err)
			return
		}
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i], following[users[i].ID]))
	}
	c.JSON(http.StatusOK, newPagedResponse(c, params, total, views))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	subscribed := false
	if viewerID, ok := currentUserID(c); ok {
		following, err := h.relations.FollowingIDs(c.Request.Context(), viewerID)
		if err != nil {
			writeError(c, err)
			return
		}
		subscribed = following[user.ID]
	}
	c.JSON(http.StatusOK, newUserView(user, subscribed))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := currentUserID(c)
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(user, false))
}

func (h *UserHandler) PutAvatar(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar payload is required"})
		return
	}

	avatarURL, err := h.images.SaveBase64(c.Request.Context(), req.Avatar, "avatars")
	if err != nil {
		writeError(c, err)
		return
	}

	user, err := h.users.SetAvatar(c.Request.Context(), userID, avatarURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": user.AvatarURL})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	userID, _ := currentUserID(c)
	if err := h.users.RemoveAvatar(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the followed authors with a capped preview of each
// author's recipes. recipes_limit bounds the preview, not the author list.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, _ := currentUserID(c)
	params := parsePagination(c)

	recipesLimit := 0
	if raw := c.Query("recipes_limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipes_limit must be a non-negative integer"})
			return
		}
		recipesLimit = parsed
	}

	authors, total, err := h.relations.Subscriptions(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		writeError(c, err)
		return
	}

	views := make([]SubscriptionView, 0, len(authors))
	for i := range authors {
		view, err := h.subscriptionView(c, &authors[i], recipesLimit)
		if err != nil {
			writeError(c, err)
			return
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, newPagedResponse(c, params, total, views))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, _ := currentUserID(c)
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := h.relations.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := h.subscriptionView(c, author, 0)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, _ := currentUserID(c)
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.relations.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) subscriptionView(c *gin.Context, author *models.User, recipesLimit int) (SubscriptionView, error) {
	recipes, count, err := h.recipes.ListByAuthor(c.Request.Context(), author.ID, recipesLimit)
	if err != nil {
		return SubscriptionView{}, err
	}

	shorts := make([]RecipeShortView, 0, len(recipes))
	for i := range recipes {
		shorts = append(shorts, newRecipeShortView(&recipes[i]))
	}
	return SubscriptionView{
		UserView:     newUserView(author, true),
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}
