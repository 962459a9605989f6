package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/platefeed/backend/internal/models"
	"github.com/pageza/platefeed/backend/internal/service"
)

// UserView is the public shape of a user profile. IsSubscribed reflects the
// calling user's relation to this profile and is always false for anonymous
// callers.
type UserView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	AvatarURL    string    `json:"avatar"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// IngredientLineView flattens an ingredient line with its reference data.
type IngredientLineView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full recipe read model.
type RecipeView struct {
	ID               uuid.UUID            `json:"id"`
	Tags             []models.Tag         `json:"tags"`
	Author           UserView             `json:"author"`
	Ingredients      []IngredientLineView `json:"ingredients"`
	IsFavorited      bool                 `json:"is_favorited"`
	IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
	Name             string               `json:"name"`
	ImageURL         string               `json:"image"`
	Description      string               `json:"text"`
	CookingTime      int                  `json:"cooking_time"`
	CreatedAt        time.Time            `json:"created_at"`
}

// RecipeShortView is the compact recipe shape used by relation responses and
// subscription listings.
type RecipeShortView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// SubscriptionView is an author profile with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []RecipeShortView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// viewerFlags are the calling user's relation sets, looked up once per
// request. The zero value serves anonymous callers: every flag reads false.
type viewerFlags struct {
	Favorites map[uuid.UUID]bool
	Cart      map[uuid.UUID]bool
	Following map[uuid.UUID]bool
}

func newUserView(user *models.User, isSubscribed bool) UserView {
	return UserView{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		AvatarURL:    user.AvatarURL,
		IsSubscribed: isSubscribed,
	}
}

func newRecipeView(recipe *models.Recipe, flags viewerFlags) RecipeView {
	lines := make([]IngredientLineView, 0, len(recipe.Lines))
	for _, line := range recipe.Lines {
		view := IngredientLineView{
			ID:     line.IngredientID,
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			view.Name = line.Ingredient.Name
			view.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		lines = append(lines, view)
	}

	var author UserView
	if recipe.Author != nil {
		author = newUserView(recipe.Author, flags.Following[recipe.AuthorID])
	}

	tags := recipe.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeView{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      lines,
		IsFavorited:      flags.Favorites[recipe.ID],
		IsInShoppingCart: flags.Cart[recipe.ID],
		Name:             recipe.Name,
		ImageURL:         recipe.ImageURL,
		Description:      recipe.Description,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
	}
}

func newRecipeShortView(recipe *models.Recipe) RecipeShortView {
	return RecipeShortView{
		ID:          recipe.ID,
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

// writeError maps service sentinels to HTTP statuses. Anything unrecognized
// is an internal error; the details stay in the log, not the response.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// currentUserID reads the identity set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

// parseIDParam parses a uuid path parameter, responding 404 on garbage so
// /recipes/not-a-uuid behaves like any other missing resource.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
