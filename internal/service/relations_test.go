package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/platefeed/backend/internal/models"
	"github.com/pageza/platefeed/backend/internal/repository"
	"github.com/pageza/platefeed/backend/internal/testhelpers"
)

func TestFavoriteEdgeSemantics(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	relations := NewRelationService(f.db)

	recipe, err := f.svc.Create(ctx, f.author.ID, f.validInput())
	require.NoError(t, err)
	fan := testhelpers.CreateUser(t, f.db, "fan")

	got, err := relations.AddFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, got.ID)

	// second add of the same edge is a conflict, not a no-op
	_, err = relations.AddFavorite(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrConflict)

	ids, err := relations.FavoriteIDs(ctx, fan.ID)
	require.NoError(t, err)
	assert.True(t, ids[recipe.ID])

	require.NoError(t, relations.RemoveFavorite(ctx, fan.ID, recipe.ID))
	err = relations.RemoveFavorite(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartEdgeSemantics(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	relations := NewRelationService(f.db)

	recipe, err := f.svc.Create(ctx, f.author.ID, f.validInput())
	require.NoError(t, err)
	fan := testhelpers.CreateUser(t, f.db, "fan")

	_, err = relations.AddToCart(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	_, err = relations.AddToCart(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// favorites and cart are independent relations
	favIDs, err := relations.FavoriteIDs(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, favIDs)

	require.NoError(t, relations.RemoveFromCart(ctx, fan.ID, recipe.ID))
	err = relations.RemoveFromCart(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddEdgeUnknownRecipe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	relations := NewRelationService(db)
	fan := testhelpers.CreateUser(t, db, "fan")

	_, err := relations.AddFavorite(context.Background(), fan.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscriptionSemantics(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()
	relations := NewRelationService(db)

	follower := testhelpers.CreateUser(t, db, "follower")
	author := testhelpers.CreateUser(t, db, "writer")

	_, err := relations.Subscribe(ctx, follower.ID, follower.ID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = relations.Subscribe(ctx, follower.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := relations.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, got.ID)

	_, err = relations.Subscribe(ctx, follower.ID, author.ID)
	assert.ErrorIs(t, err, ErrConflict)

	authors, total, err := relations.Subscriptions(ctx, follower.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, authors, 1)
	assert.Equal(t, author.ID, authors[0].ID)

	require.NoError(t, relations.Unsubscribe(ctx, follower.ID, author.ID))
	err = relations.Unsubscribe(ctx, follower.ID, author.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEdgeRepoRecipeIDs(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	fan := testhelpers.CreateUser(t, db, "fan")
	author := testhelpers.CreateUser(t, db, "writer")

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        "Soup",
		ImageURL:    "https://img.example.com/soup.png",
		Description: "Boil it.",
		CookingTime: 30,
		ShortCode:   "abc123",
	}
	require.NoError(t, db.Create(&recipe).Error)

	repo := repository.NewEdgeRepo[models.Favorite](db)
	require.NoError(t, repo.Add(ctx, fan.ID, recipe.ID))

	ids, err := repo.RecipeIDs(ctx, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{recipe.ID: true}, ids)

	// the insert must carry a real timestamp
	var fav models.Favorite
	require.NoError(t, db.Where("user_id = ?", fan.ID).First(&fav).Error)
	assert.False(t, fav.CreatedAt.IsZero())
}
