package model

import (
	"time"
)

type Recipe struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Name        string    `gorm:"type:varchar(256);not null" json:"name"`
	Image       string    `gorm:"not null" json:"-"` // storage key
	Text        string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null" json:"cooking_time"` // minutes, >= 1
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations (loaded with Preload)
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	Tags        []RecipeTag        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient is one ingredient line of a recipe. Lines are read back in id order.
type RecipeIngredient struct {
	ID           uint `gorm:"primarykey" json:"id"`
	RecipeID     uint `gorm:"not null;uniqueIndex:idx_recipe_ingredients_recipe_ingredient" json:"recipe_id"`
	IngredientID uint `gorm:"not null;index;uniqueIndex:idx_recipe_ingredients_recipe_ingredient" json:"ingredient_id"`
	Amount       int  `gorm:"not null" json:"amount"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT" json:"ingredient"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// RecipeTag links a recipe to a tag.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey" json:"recipe_id"`
	TagID    uint `gorm:"primaryKey;index" json:"tag_id"`

	Tag Tag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"tag"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// RecipeShortLink maps a short code to a recipe. One per recipe.
type RecipeShortLink struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex" json:"recipe_id"`
	Code      string    `gorm:"type:varchar(8);not null;uniqueIndex" json:"code"`
	CreatedAt time.Time `json:"created_at"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RecipeShortLink) TableName() string {
	return "recipe_short_links"
}
