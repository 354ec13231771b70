// internal/models/menu.go
package models

import "time"

// MenuItem is a single dish. Raw items carry the source image URL they were
// extracted from; consolidated items are the deduplicated rows persisted to
// the menu_items table. Nutritional fields are pointers because the model is
// told to return null rather than guess.
type MenuItem struct {
	ID             string    `json:"id,omitempty"`
	PlaceID        string    `json:"place_id,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Price          *float64  `json:"price"`
	Category       string    `json:"category,omitempty"`
	Calories       *int      `json:"calories"`
	Protein        *float64  `json:"protein"`
	Carbs          *float64  `json:"carbs"`
	Fat            *float64  `json:"fat"`
	Fiber          *float64  `json:"fiber"`
	Sugar          *float64  `json:"sugar"`
	Sodium         *float64  `json:"sodium"`
	SourceImageURL string    `json:"source_image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// MenuItemWithRestaurant is a menu item joined with its restaurant for the
// cross-restaurant listing API. Distance is from the caller's search center.
type MenuItemWithRestaurant struct {
	MenuItem
	RestaurantName       string  `json:"restaurant_name"`
	RestaurantDistanceKm float64 `json:"restaurant_distance_km"`
}

// NutritionField reports the value of a named nutritional or price field,
// with ok=false when the field is absent on this item. Used by the ratio
// sorting in the menu listing API.
func (m *MenuItem) NutritionField(name string) (float64, bool) {
	switch name {
	case "price":
		if m.Price == nil {
			return 0, false
		}
		return *m.Price, true
	case "calories":
		if m.Calories == nil {
			return 0, false
		}
		return float64(*m.Calories), true
	case "protein":
		if m.Protein == nil {
			return 0, false
		}
		return *m.Protein, true
	case "carbs":
		if m.Carbs == nil {
			return 0, false
		}
		return *m.Carbs, true
	case "fat":
		if m.Fat == nil {
			return 0, false
		}
		return *m.Fat, true
	case "fiber":
		if m.Fiber == nil {
			return 0, false
		}
		return *m.Fiber, true
	case "sugar":
		if m.Sugar == nil {
			return 0, false
		}
		return *m.Sugar, true
	case "sodium":
		if m.Sodium == nil {
			return 0, false
		}
		return *m.Sodium, true
	}
	return 0, false
}
