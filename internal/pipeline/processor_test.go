// internal/pipeline/processor_test.go
package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macromaps/internal/common/config"
	"macromaps/internal/common/logger/logtest"
	"macromaps/internal/models"
)

func testPipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		RestaurantWorkers:     3,
		ClassificationWorkers: 5,
		AnalysisWorkers:       3,
		ImagePriority: []config.ImagePriorityPattern{
			{Pattern: "googleusercontent", Rank: 0},
			{Pattern: "gps-cs-s", Rank: 1},
		},
	}
}

func newTestProcessor(t *testing.T, restaurants *fakeRestaurantStore, menus *fakeMenuStore, model *fakeMenuModel) *Processor {
	return NewProcessor(restaurants, menus, model, testPipelineConfig(), logtest.NewLogger(t))
}

func TestProcessRestaurantHappyPath(t *testing.T) {
	restaurants := newFakeRestaurantStore()
	restaurants.addRestaurant("place-1", models.StatusProcessing, []string{
		"https://img/menu-1.jpg",
		"https://img/interior.jpg",
		"https://img/menu-2.jpg",
	})
	menus := newFakeMenuStore()
	model := &fakeMenuModel{}
	p := newTestProcessor(t, restaurants, menus, model)

	result := p.ProcessRestaurant(context.Background(), "place-1")

	require.False(t, result.Failed())
	assert.Equal(t, 3, result.TotalImages)
	assert.Equal(t, 2, result.MenuImagesFound)
	assert.Equal(t, 2, result.TotalMenuItems)
	assert.Equal(t, models.StatusFinished, restaurants.status("place-1"))
	assert.Len(t, menus.menu("place-1"), 2)
	assert.Equal(t, 1, model.aggregateCalls)
}

func TestProcessRestaurantZeroImagesFinishesEmpty(t *testing.T) {
	restaurants := newFakeRestaurantStore()
	restaurants.addRestaurant("place-1", models.StatusProcessing, nil)
	menus := newFakeMenuStore()
	model := &fakeMenuModel{}
	p := newTestProcessor(t, restaurants, menus, model)

	result := p.ProcessRestaurant(context.Background(), "place-1")

	require.False(t, result.Failed())
	assert.Equal(t, 0, result.TotalImages)
	assert.Equal(t, 0, result.TotalMenuItems)
	assert.Equal(t, models.StatusFinished, restaurants.status("place-1"))
	assert.Equal(t, 0, model.aggregateCalls)
	assert.Empty(t, menus.menu("place-1"))
}

func TestProcessRestaurantNoMenuImagesFinishesEmpty(t *testing.T) {
	restaurants := newFakeRestaurantStore()
	restaurants.addRestaurant("place-1", models.StatusProcessing, []string{
		"https://img/interior.jpg",
		"https://img/facade.jpg",
	})
	menus := newFakeMenuStore()
	model := &fakeMenuModel{}
	p := newTestProcessor(t, restaurants, menus, model)

	result := p.ProcessRestaurant(context.Background(), "place-1")

	require.False(t, result.Failed())
	assert.Equal(t, 0, result.MenuImagesFound)
	assert.Equal(t, models.StatusFinished, restaurants.status("place-1"))
	assert.Equal(t, 0, model.aggregateCalls)
}

func TestProcessRestaurantClassificationFailureIsSoft(t *testing.T) {
	restaurants := newFakeRestaurantStore()
	restaurants.addRestaurant("place-1", models.StatusProcessing, []string{
		"https://img/menu-1.jpg",
		"https://img/classify-fail.jpg",
		"https://img/menu-2.jpg",
	})
	menus := newFakeMenuStore()
	model := &fakeMenuModel{}
	p := newTestProcessor(t, restaurants, menus, model)

	result := p.ProcessRestaurant(context.Background(), "place-1")

	require.False(t, result.Failed())
	assert.Equal(t, 2, result.MenuImagesFound)
	assert.Equal(t, 2, result.TotalMenuItems)
	assert.Equal(t, models.StatusFinished, restaurants.status("place-1"))
}

func TestProcessRestaurantAnalysisFailureIsSoft(t *testing.T) {
	restaurants := newFakeRestaurantStore()
	restaurants.addRestaurant("place-1", models.StatusProcessing, []string{
		"https://img/menu-1.jpg",
		"https://img/menu-analyze-fail.jpg",
		"https://img/menu-2.jpg",
	})
	menus := newFakeMenuStore()
	model := &fakeMenuModel{}
	p := newTestProcessor(t, restaurants, menus, model)

	result := p.ProcessRestaurant(context.Background(), "place-1")

	require.False(t, result.Failed())
	assert.Equal(t, 3, result.MenuImagesFound)
	assert.Equal(t, 2, result.TotalMenuItems)
	assert.Equal(t, models.StatusFinished, restaurants.status("place-1"))
}

func TestProcessRestaurantAggregationFailureIsFatal(t *testing.T) {
	restaurants := newFakeRestaurantStore()
	restaurants.addRestaurant("place-1", models.StatusProcessing, []string{
		"https://img/menu-1.jpg",
	})
	menus := newFakeMenuStore()
	model := &fakeMenuModel{aggregateErr: errors.New("aggregation blew up")}
	p := newTestProcessor(t, restaurants, menus, model)

	result := p.ProcessRestaurant(context.Background(), "place-1")

	require.True(t, result.Failed())
	assert.Contains(t, result.Error, "aggregation blew up")
	assert.Equal(t, models.StatusError, restaurants.status("place-1"))
	// Fatal aggregation must leave no partial menu behind.
	assert.Equal(t, 0, menus.writeCount())
}

func TestProcessRestaurantPersistsBeforeFinishing(t *testing.T) {
	restaurants := newFakeRestaurantStore()
	restaurants.addRestaurant("place-1", models.StatusProcessing, []string{"https://img/menu-1.jpg"})
	menus := newFakeMenuStore()
	menus.writeErr = errors.New("disk full")
	model := &fakeMenuModel{}
	p := newTestProcessor(t, restaurants, menus, model)

	result := p.ProcessRestaurant(context.Background(), "place-1")

	require.True(t, result.Failed())
	assert.Equal(t, models.StatusError, restaurants.status("place-1"))
	assert.NotContains(t, restaurants.transitions("place-1"), models.StatusFinished)
}

func TestProcessRestaurantClassifiesInPriorityOrder(t *testing.T) {
	restaurants := newFakeRestaurantStore()
	restaurants.addRestaurant("place-1", models.StatusProcessing, []string{
		"https://cdn.example.com/menu-other.jpg",
		"https://lh3.googleusercontent.com/menu-a.jpg",
		"https://maps.example.com/gps-cs-s/menu-b.jpg",
	})
	menus := newFakeMenuStore()
	model := &fakeMenuModel{}
	cfg := testPipelineConfig()
	cfg.ClassificationWorkers = 1 // serialize so submission order is observable
	p := NewProcessor(restaurants, menus, model, cfg, logtest.NewLogger(t))

	result := p.ProcessRestaurant(context.Background(), "place-1")

	require.False(t, result.Failed())
	assert.Equal(t, []string{
		"https://lh3.googleusercontent.com/menu-a.jpg",
		"https://maps.example.com/gps-cs-s/menu-b.jpg",
		"https://cdn.example.com/menu-other.jpg",
	}, model.classifyOrder)
}
