package models

// Tag and Ingredient are admin-seeded reference data with integer keys.

type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:256;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:256;uniqueIndex;not null" json:"slug"`
}

type Ingredient struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string `gorm:"size:256;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:256;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}
