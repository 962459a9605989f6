package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/platefeed/backend/internal/models"
)

// UserRecipeEdge constrains the two "user marked recipe" relations. They
// share the same shape and uniqueness rules but are distinct tables.
type UserRecipeEdge interface {
	models.Favorite | models.ShoppingCartEntry
}

// EdgeRepo provides membership operations for a (user, recipe) relation.
type EdgeRepo[T UserRecipeEdge] struct {
	db *gorm.DB
}

func NewEdgeRepo[T UserRecipeEdge](db *gorm.DB) *EdgeRepo[T] {
	return &EdgeRepo[T]{db: db}
}

func (r *EdgeRepo[T]) Exists(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add inserts the edge as a typed row so gorm stamps CreatedAt.
func (r *EdgeRepo[T]) Add(ctx context.Context, userID, recipeID uuid.UUID) error {
	edge := new(T)
	switch e := any(edge).(type) {
	case *models.Favorite:
		e.UserID, e.RecipeID = userID, recipeID
	case *models.ShoppingCartEntry:
		e.UserID, e.RecipeID = userID, recipeID
	}
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		return fmt.Errorf("add edge: %w", err)
	}
	return nil
}

// Remove deletes the edge and reports whether a row was actually removed,
// so callers can distinguish a missing edge from success.
func (r *EdgeRepo[T]) Remove(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(new(T))
	if result.Error != nil {
		return false, fmt.Errorf("remove edge: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RecipeIDs returns the set of recipe ids the user has marked. Used to
// annotate list views without one query per recipe.
func (r *EdgeRepo[T]) RecipeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ?", userID).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
