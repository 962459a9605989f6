package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListAggregation(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	relations := NewRelationService(f.db)
	shopping := NewShoppingListService(f.db)

	flour, sugar := f.ingredients[0], f.ingredients[1]

	pancakes := f.validInput()
	pancakes.Lines = []IngredientLineInput{
		{IngredientID: flour.ID, Amount: 200},
		{IngredientID: sugar.ID, Amount: 50},
	}
	first, err := f.svc.Create(ctx, f.author.ID, pancakes)
	require.NoError(t, err)

	bread := f.validInput()
	bread.Name = "Bread"
	bread.Lines = []IngredientLineInput{
		{IngredientID: flour.ID, Amount: 100},
	}
	second, err := f.svc.Create(ctx, f.author.ID, bread)
	require.NoError(t, err)

	_, err = relations.AddToCart(ctx, f.author.ID, first.ID)
	require.NoError(t, err)
	_, err = relations.AddToCart(ctx, f.author.ID, second.ID)
	require.NoError(t, err)

	items, err := shopping.Aggregate(ctx, f.author.ID)
	require.NoError(t, err)

	// same (name, unit) groups sum; output is name-sorted
	assert.Equal(t, []ShoppingItem{
		{Name: "flour", Total: 300, MeasurementUnit: "g"},
		{Name: "sugar", Total: 50, MeasurementUnit: "g"},
	}, items)
}

func TestShoppingListEmptyCart(t *testing.T) {
	f := newRecipeFixture(t)
	shopping := NewShoppingListService(f.db)

	items, err := shopping.Aggregate(context.Background(), f.author.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.Equal(t, "Shopping list\n", RenderText(items))
}

func TestRenderText(t *testing.T) {
	items := []ShoppingItem{
		{Name: "flour", Total: 300, MeasurementUnit: "g"},
		{Name: "milk", Total: 250, MeasurementUnit: "ml"},
	}
	want := "Shopping list\n" +
		"flour - 300 (g)\n" +
		"milk - 250 (ml)\n"
	assert.Equal(t, want, RenderText(items))
}
