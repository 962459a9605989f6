package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/platefeed/backend/internal/models"
	"github.com/pageza/platefeed/backend/internal/repository"
)

const (
	minCookingTime = 1
	maxCookingTime = 32000
	minAmount      = 1
	maxAmount      = 32000

	shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxShortCodeDraws = 100
)

// IngredientLineInput references an ingredient with a per-recipe amount.
type IngredientLineInput struct {
	IngredientID uint `json:"id"`
	Amount       int  `json:"amount"`
}

// CreateRecipeInput carries the full recipe document.
type CreateRecipeInput struct {
	Name        string
	Description string
	ImageURL    string
	CookingTime int
	TagIDs      []uint
	Lines       []IngredientLineInput
}

// UpdateRecipeInput uses partial-update semantics for scalars (nil keeps the
// stored value) and full-replace semantics for the two collections, which
// must always be supplied and valid.
type UpdateRecipeInput struct {
	Name        *string
	Description *string
	ImageURL    *string
	CookingTime *int
	TagIDs      []uint
	Lines       []IngredientLineInput
}

// RecipeFilter narrows recipe listings.
type RecipeFilter struct {
	AuthorID    *uuid.UUID
	TagSlugs    []string
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Limit       int
	Offset      int
}

// ShortCodeInvalidator drops any cached resolution for a short code.
type ShortCodeInvalidator interface {
	Invalidate(ctx context.Context, code string) error
}

// RecipeService is the aggregate writer: it validates and persists the
// recipe document (header + tag set + ingredient lines) atomically.
type RecipeService struct {
	db      *gorm.DB
	catalog *repository.CatalogRepo
	links   ShortCodeInvalidator
}

// NewRecipeService wires the aggregate writer. links may be nil when no
// short-link cache is configured.
func NewRecipeService(db *gorm.DB, catalog *repository.CatalogRepo, links ShortCodeInvalidator) *RecipeService {
	return &RecipeService{db: db, catalog: catalog, links: links}
}

// Create validates the document and persists it in one transaction. The
// short code is drawn inside the transaction so a validation failure never
// leaves orphaned rows or burned codes.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input CreateRecipeInput) (*models.Recipe, error) {
	if err := validateHeader(input.Name, input.ImageURL, input.CookingTime); err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.validateLines(ctx, input.Lines); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := generateShortCode(tx)
		if err != nil {
			return err
		}
		recipe = models.Recipe{
			AuthorID:    authorID,
			Name:        input.Name,
			Description: input.Description,
			ImageURL:    input.ImageURL,
			CookingTime: input.CookingTime,
			ShortCode:   code,
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := insertLines(tx, recipe.ID, input.Lines); err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Append(&tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Update re-validates with the same rules and replaces both collections
// entirely (delete-then-reinsert). Scalars change only when supplied.
// Only the author may update.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, input UpdateRecipeInput) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, fmt.Errorf("%w: only the author may modify a recipe", ErrPermission)
	}

	name := recipe.Name
	if input.Name != nil {
		name = *input.Name
	}
	imageURL := recipe.ImageURL
	if input.ImageURL != nil {
		imageURL = *input.ImageURL
	}
	description := recipe.Description
	if input.Description != nil {
		description = *input.Description
	}
	cookingTime := recipe.CookingTime
	if input.CookingTime != nil {
		cookingTime = *input.CookingTime
	}

	if err := validateHeader(name, imageURL, cookingTime); err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.validateLines(ctx, input.Lines); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         name,
			"image_url":    imageURL,
			"description":  description,
			"cooking_time": cookingTime,
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientLine{}).Error; err != nil {
			return err
		}
		return insertLines(tx, recipeID, input.Lines)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipeID)
}

// Delete removes the recipe and everything hanging off it: ingredient lines,
// tag links, favorite and cart edges. The cascade runs explicitly inside the
// transaction so behavior does not depend on the driver's FK enforcement.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return fmt.Errorf("%w: only the author may delete a recipe", ErrPermission)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientLine{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error
	})
	if err != nil {
		return err
	}

	// the code must stop resolving as soon as the recipe is gone
	if s.links != nil {
		if err := s.links.Invalidate(ctx, recipe.ShortCode); err != nil {
			log.Printf("short link cache invalidation failed for %s: %v", recipe.ShortCode, err)
		}
	}
	return nil
}

// Get retrieves the fully-formed aggregate.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Lines.Ingredient").
		First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes newest first, with the requested filters applied.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	build := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Recipe{})
		if filter.AuthorID != nil {
			query = query.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			query = query.
				Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs).
				Distinct("recipes.*")
		}
		if filter.FavoritedBy != nil {
			query = query.
				Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
				Where("favorites.user_id = ?", *filter.FavoritedBy)
		}
		if filter.InCartOf != nil {
			query = query.
				Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id").
				Where("shopping_cart_entries.user_id = ?", *filter.InCartOf)
		}
		return query
	}

	var total int64
	if err := build().Distinct("recipes.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := build().
		Preload("Author").
		Preload("Tags").
		Preload("Lines.Ingredient").
		Order("recipes.created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListByAuthor returns the author's recipes, newest first, optionally capped.
// A limit of 0 means no cap. Used by the subscription views.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func validateHeader(name, imageURL string, cookingTime int) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if imageURL == "" {
		return fmt.Errorf("%w: image is required", ErrValidation)
	}
	if cookingTime < minCookingTime || cookingTime > maxCookingTime {
		return fmt.Errorf("%w: cooking_time must be between %d and %d", ErrValidation, minCookingTime, maxCookingTime)
	}
	return nil
}

func (s *RecipeService) resolveTags(ctx context.Context, tagIDs []uint) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one tag is required", ErrValidation)
	}
	seen := make(map[uint]bool, len(tagIDs))
	for _, id := range tagIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: tags must be unique", ErrValidation)
		}
		seen[id] = true
	}
	tags, err := s.catalog.TagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, fmt.Errorf("%w: unknown tag referenced", ErrValidation)
	}
	return tags, nil
}

func (s *RecipeService) validateLines(ctx context.Context, lines []IngredientLineInput) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrValidation)
	}
	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, line := range lines {
		if seen[line.IngredientID] {
			return fmt.Errorf("%w: ingredients must be unique", ErrValidation)
		}
		seen[line.IngredientID] = true
		if line.Amount < minAmount || line.Amount > maxAmount {
			return fmt.Errorf("%w: amount must be between %d and %d", ErrValidation, minAmount, maxAmount)
		}
		ids = append(ids, line.IngredientID)
	}
	ingredients, err := s.catalog.IngredientsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(ingredients) != len(ids) {
		return fmt.Errorf("%w: unknown ingredient referenced", ErrValidation)
	}
	return nil
}

func insertLines(tx *gorm.DB, recipeID uuid.UUID, inputs []IngredientLineInput) error {
	lines := make([]models.IngredientLine, 0, len(inputs))
	for _, input := range inputs {
		lines = append(lines, models.IngredientLine{
			RecipeID:     recipeID,
			IngredientID: input.IngredientID,
			Amount:       input.Amount,
		})
	}
	return tx.Create(&lines).Error
}

// generateShortCode draws fixed-length codes from the lowercase-alphanumeric
// alphabet until one is unused. The retry bound guards against a corrupted or
// exhausted namespace; hitting it surfaces as an internal error.
func generateShortCode(tx *gorm.DB) (string, error) {
	buf := make([]byte, models.ShortCodeLength)
	for attempt := 0; attempt < maxShortCodeDraws; attempt++ {
		for i := range buf {
			buf[i] = shortCodeAlphabet[rand.Intn(len(shortCodeAlphabet))]
		}
		code := string(buf)

		var count int64
		if err := tx.Model(&models.Recipe{}).Where("short_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("short code namespace exhausted after %d draws", maxShortCodeDraws)
}
