// internal/api/sort_test.go
package api

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macromaps/internal/models"
)

func item(name string, distance float64, protein, fat *float64, price *float64) models.MenuItemWithRestaurant {
	return models.MenuItemWithRestaurant{
		MenuItem: models.MenuItem{
			Name:    name,
			Protein: protein,
			Fat:     fat,
			Price:   price,
		},
		RestaurantDistanceKm: distance,
	}
}

func f(v float64) *float64 { return &v }

func names(items []models.MenuItemWithRestaurant) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestParseRatioSort(t *testing.T) {
	tests := []struct {
		sortBy string
		ok     bool
		num    string
		den    string
	}{
		{"protein/fat", true, "protein", "fat"},
		{"protein / calories", true, "protein", "calories"},
		{"protein/banana", false, "", ""},
		{"banana/fat", false, "", ""},
		{"protein", false, "", ""},
		{"/", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			num, den, ok := parseRatioSort(tt.sortBy)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.num, num)
				assert.Equal(t, tt.den, den)
			}
		})
	}
}

func TestRatioValueZeroDenominator(t *testing.T) {
	positive := models.MenuItem{Protein: f(30), Fat: f(0)}
	assert.True(t, math.IsInf(ratioValue(&positive, "protein", "fat"), 1))

	zero := models.MenuItem{Protein: f(0), Fat: f(0)}
	assert.Equal(t, 0.0, ratioValue(&zero, "protein", "fat"))
}

func TestRatioValueMissingField(t *testing.T) {
	missing := models.MenuItem{Protein: f(30)}
	assert.Equal(t, 0.0, ratioValue(&missing, "protein", "fat"))
	assert.Equal(t, 0.0, ratioValue(&missing, "fiber", "protein"))
}

func TestSortMenuItemsByRatio(t *testing.T) {
	items := []models.MenuItemWithRestaurant{
		item("lean", 1, f(40), f(10), nil),  // ratio 4
		item("fatty", 2, f(10), f(40), nil), // ratio 0.25
		item("zero-fat", 3, f(5), f(0), nil), // +Inf
		item("no-data", 4, nil, nil, nil),    // 0
	}

	sortMenuItems(items, "protein/fat", "desc")
	assert.Equal(t, []string{"zero-fat", "lean", "fatty", "no-data"}, names(items))

	sortMenuItems(items, "protein/fat", "asc")
	assert.Equal(t, []string{"no-data", "fatty", "lean", "zero-fat"}, names(items))
}

func TestSortMenuItemsInvalidRatioFallsBackToDistance(t *testing.T) {
	items := []models.MenuItemWithRestaurant{
		item("far", 9, nil, nil, nil),
		item("near", 1, nil, nil, nil),
		item("mid", 5, nil, nil, nil),
	}

	sortMenuItems(items, "protein/banana", "desc")
	assert.Equal(t, []string{"near", "mid", "far"}, names(items))
}

func TestSortMenuItemsByDistance(t *testing.T) {
	items := []models.MenuItemWithRestaurant{
		item("far", 9, nil, nil, nil),
		item("near", 1, nil, nil, nil),
	}

	sortMenuItems(items, "restaurant_distance", "asc")
	assert.Equal(t, []string{"near", "far"}, names(items))

	sortMenuItems(items, "restaurant_distance", "desc")
	assert.Equal(t, []string{"far", "near"}, names(items))
}

func TestSortMenuItemsUnpricedLast(t *testing.T) {
	items := []models.MenuItemWithRestaurant{
		item("no-price", 1, nil, nil, nil),
		item("cheap", 2, nil, nil, f(5)),
		item("pricey", 3, nil, nil, f(20)),
	}

	sortMenuItems(items, "price", "asc")
	assert.Equal(t, []string{"cheap", "pricey", "no-price"}, names(items))
}

func TestSortMenuItemsByNameIgnoresCase(t *testing.T) {
	items := []models.MenuItemWithRestaurant{
		item("banana split", 1, nil, nil, nil),
		item("Apple Pie", 2, nil, nil, nil),
		item("apple crumble", 3, nil, nil, nil),
	}

	sortMenuItems(items, "name", "asc")
	assert.Equal(t, []string{"apple crumble", "Apple Pie", "banana split"}, names(items))

	sortMenuItems(items, "name", "desc")
	assert.Equal(t, []string{"banana split", "Apple Pie", "apple crumble"}, names(items))
}

func TestSortMenuItemsByNameStableOnEqualFold(t *testing.T) {
	items := []models.MenuItemWithRestaurant{
		item("Apple", 1, nil, nil, nil),
		item("apple", 2, nil, nil, nil),
	}

	sortMenuItems(items, "name", "desc")
	assert.Equal(t, []string{"Apple", "apple"}, names(items))
}

func TestSortMenuItemsByFiberAndSodium(t *testing.T) {
	withNutrition := func(name string, fiber, sugar, sodium *float64) models.MenuItemWithRestaurant {
		return models.MenuItemWithRestaurant{
			MenuItem: models.MenuItem{Name: name, Fiber: fiber, Sugar: sugar, Sodium: sodium},
		}
	}

	items := []models.MenuItemWithRestaurant{
		withNutrition("lentil bowl", f(12), f(3), f(400)),
		withNutrition("milkshake", f(1), f(45), f(250)),
		withNutrition("fries", nil, nil, f(900)),
	}

	sortMenuItems(items, "fiber", "desc")
	assert.Equal(t, []string{"lentil bowl", "milkshake", "fries"}, names(items))

	sortMenuItems(items, "sodium", "asc")
	assert.Equal(t, []string{"milkshake", "lentil bowl", "fries"}, names(items))

	// fiber per gram of sugar
	sortMenuItems(items, "fiber/sugar", "desc")
	assert.Equal(t, []string{"lentil bowl", "milkshake", "fries"}, names(items))
}

func TestSortMenuItemsStableOnTies(t *testing.T) {
	items := []models.MenuItemWithRestaurant{
		item("first", 1, f(10), f(5), nil),
		item("second", 2, f(10), f(5), nil),
		item("third", 3, f(10), f(5), nil),
	}

	sortMenuItems(items, "protein/fat", "desc")
	assert.Equal(t, []string{"first", "second", "third"}, names(items))
}

func TestSortRestaurants(t *testing.T) {
	r := func(name string, rating float64, reviews int, distance float64) models.Restaurant {
		d := distance
		return models.Restaurant{Name: name, Rating: f(rating), ReviewsCount: reviews, DistanceKm: &d}
	}

	restaurants := []models.Restaurant{
		r("B", 4.0, 50, 2),
		r("A", 4.8, 10, 3),
		r("C", 3.5, 300, 1),
	}

	sortRestaurants(restaurants, "rating")
	require.Equal(t, "A", restaurants[0].Name)

	sortRestaurants(restaurants, "reviews_count")
	require.Equal(t, "C", restaurants[0].Name)

	sortRestaurants(restaurants, "name")
	require.Equal(t, "A", restaurants[0].Name)

	sortRestaurants(restaurants, "distance")
	require.Equal(t, "C", restaurants[0].Name)
}
