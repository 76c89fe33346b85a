package model

import "time"

// MenuItem is a catalog entry owned by the menu service. The core only
// consumes id, name and price; the remaining fields back the catalog CRUD.
type MenuItem struct {
	ID          string    `json:"id" bson:"item_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64   `json:"price" bson:"price"`
	Category    string    `json:"category" bson:"category"`
	Available   bool      `json:"available" bson:"available"`
	MenuType    string    `json:"menu_type" bson:"menu_type"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// UpdateMenuItem carries a partial catalog update. Nil fields are untouched.
type UpdateMenuItem struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Available   *bool    `json:"available,omitempty"`
	MenuType    *string  `json:"menu_type,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
}

// MenuCategory is a display grouping for catalog entries.
type MenuCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MenuCategories is the preset category list exposed by the menu service.
var MenuCategories = []MenuCategory{
	{ID: "MAIN_DISHES", Name: "Main Dishes"},
	{ID: "APPETIZERS", Name: "Appetizers"},
	{ID: "DESSERTS", Name: "Desserts"},
	{ID: "BEVERAGES", Name: "Beverages"},
	{ID: "BUFFET_OPTIONS", Name: "Buffet Options"},
}
