package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShortCodeLength is the fixed length of a recipe's shareable short code.
const ShortCodeLength = 6

// Recipe is the aggregate root: header fields plus the owned tag set and
// ingredient lines. The short code is assigned once at creation and never
// regenerated.
type Recipe struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	ImageURL    string    `gorm:"size:255;not null" json:"image"`
	Description string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null" json:"cooking_time"`
	ShortCode   string    `gorm:"size:6;uniqueIndex;not null" json:"-"`

	Author *User            `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags   []Tag            `gorm:"many2many:recipe_tags" json:"tags,omitempty"`
	Lines  []IngredientLine `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IngredientLine joins a recipe to an ingredient with a per-recipe amount.
// One line per ingredient within a recipe.
type IngredientLine struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	RecipeID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uint      `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"id"`
	Amount       int       `gorm:"not null" json:"amount"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"-"`
}

func (IngredientLine) TableName() string {
	return "ingredient_lines"
}
