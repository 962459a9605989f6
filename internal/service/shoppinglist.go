package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingItem is one consolidated group of the shopping list.
type ShoppingItem struct {
	Name            string `json:"name"`
	Total           int    `json:"total"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ShoppingListService collapses every ingredient line of every recipe in a
// user's cart into one consolidated list.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate joins cart entries to ingredient lines, groups by
// (ingredient name, measurement unit), sums amounts, and sorts by name.
// Ordering is byte-wise ascending (plain SQL ORDER BY, no locale collation).
// An empty cart yields an empty list, not an error. The result is
// materialized fresh on every call.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := s.db.WithContext(ctx).
		Table("ingredient_lines").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_lines.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = ingredient_lines.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = ingredient_lines.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}
	return items, nil
}

// RenderText serializes the list as a plain-text document: a header line
// followed by one "{name} - {total} ({unit})" line per group.
func RenderText(items []ShoppingItem) string {
	var b strings.Builder
	b.WriteString("Shopping list\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s - %d (%s)\n", item.Name, item.Total, item.MeasurementUnit)
	}
	return b.String()
}
