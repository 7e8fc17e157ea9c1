package model

// Tag is read-only reference data used to label recipes.
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(32);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(32);uniqueIndex;not null" json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}

// Ingredient is a catalog entry. The same name may exist with different units.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"type:varchar(128);not null;index;uniqueIndex:idx_ingredients_name_unit" json:"name"`
	MeasurementUnit string `gorm:"type:varchar(64);not null;uniqueIndex:idx_ingredients_name_unit" json:"measurement_unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
