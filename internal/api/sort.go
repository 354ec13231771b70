// internal/api/sort.go
package api

import (
	"math"
	"sort"
	"strings"

	"macromaps/internal/models"
)

// Field names accepted on either side of a ratio sort. Items missing a
// field sort as if its value were absent (ratio 0).
var validRatioFields = map[string]bool{
	"protein":  true,
	"carbs":    true,
	"fat":      true,
	"fiber":    true,
	"sugar":    true,
	"sodium":   true,
	"calories": true,
	"price":    true,
}

var validMenuSortFields = map[string]bool{
	"restaurant_distance": true,
	"price":               true,
	"calories":            true,
	"protein":             true,
	"carbs":               true,
	"fat":                 true,
	"fiber":               true,
	"sugar":               true,
	"sodium":              true,
	"name":                true,
}

// parseRatioSort splits "num/den" and reports whether both sides are valid
// ratio fields.
func parseRatioSort(sortBy string) (numerator, denominator string, ok bool) {
	parts := strings.SplitN(sortBy, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	numerator = strings.TrimSpace(parts[0])
	denominator = strings.TrimSpace(parts[1])
	if !validRatioFields[numerator] || !validRatioFields[denominator] {
		return "", "", false
	}
	return numerator, denominator, true
}

// ratioValue computes numerator/denominator for one item. A missing field
// on either side yields 0. A zero denominator yields +Inf when the
// numerator is positive, 0 otherwise.
func ratioValue(item *models.MenuItem, numerator, denominator string) float64 {
	num, okNum := item.NutritionField(numerator)
	den, okDen := item.NutritionField(denominator)
	if !okNum || !okDen {
		return 0
	}
	if den == 0 {
		if num > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return num / den
}

// sortMenuItems orders items in place by the requested criteria. Ratio
// sorts with invalid fields fall back to the distance sort. The sort is
// stable so equal keys keep their query order.
func sortMenuItems(items []models.MenuItemWithRestaurant, sortBy, sortOrder string) {
	descending := strings.EqualFold(sortOrder, "desc")

	byDistance := func(i, j int) bool {
		return items[i].RestaurantDistanceKm < items[j].RestaurantDistanceKm
	}

	if strings.Contains(sortBy, "/") {
		numerator, denominator, ok := parseRatioSort(sortBy)
		if !ok {
			sort.SliceStable(items, byDistance)
			return
		}
		ratios := make([]float64, len(items))
		for i := range items {
			ratios[i] = ratioValue(&items[i].MenuItem, numerator, denominator)
		}
		sort.SliceStable(items, func(i, j int) bool {
			if descending {
				return ratios[i] > ratios[j]
			}
			return ratios[i] < ratios[j]
		})
		return
	}

	var key func(i int) float64
	switch sortBy {
	case "restaurant_distance":
		key = func(i int) float64 { return items[i].RestaurantDistanceKm }
	case "name":
		sort.SliceStable(items, func(i, j int) bool {
			ni, nj := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
			if descending {
				return ni > nj
			}
			return ni < nj
		})
		return
	case "price":
		// Unpriced items go last regardless of order.
		key = func(i int) float64 {
			if v, ok := items[i].NutritionField("price"); ok {
				return v
			}
			return math.Inf(1)
		}
	case "calories", "protein", "carbs", "fat", "fiber", "sugar", "sodium":
		field := sortBy
		key = func(i int) float64 {
			v, _ := items[i].NutritionField(field)
			return v
		}
	default:
		sort.SliceStable(items, byDistance)
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		if descending {
			return key(i) > key(j)
		}
		return key(i) < key(j)
	})
}

// sortRestaurants orders the restaurant listing. Distance ascending is the
// default; rating and reviews_count default to descending like the listing
// UI expects.
func sortRestaurants(restaurants []models.Restaurant, sortBy string) {
	switch sortBy {
	case "rating":
		sort.SliceStable(restaurants, func(i, j int) bool {
			return derefRating(restaurants[i].Rating) > derefRating(restaurants[j].Rating)
		})
	case "reviews_count":
		sort.SliceStable(restaurants, func(i, j int) bool {
			return restaurants[i].ReviewsCount > restaurants[j].ReviewsCount
		})
	case "name":
		sort.SliceStable(restaurants, func(i, j int) bool {
			return strings.ToLower(restaurants[i].Name) < strings.ToLower(restaurants[j].Name)
		})
	default: // distance
		sort.SliceStable(restaurants, func(i, j int) bool {
			return derefDistance(restaurants[i].DistanceKm) < derefDistance(restaurants[j].DistanceKm)
		})
	}
}

func derefRating(r *float64) float64 {
	if r == nil {
		return 0
	}
	return *r
}

func derefDistance(d *float64) float64 {
	if d == nil {
		return math.Inf(1)
	}
	return *d
}
