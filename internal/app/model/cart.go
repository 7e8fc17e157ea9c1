package model

import (
	"time"
)

type ShoppingCartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_shopping_cart_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_shopping_cart_user_recipe" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ShoppingCartItem) TableName() string {
	return "shopping_cart_items"
}

// ShoppingListRow is one aggregated line of a shopping list.
type ShoppingListRow struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int64  `json:"total"`
}
