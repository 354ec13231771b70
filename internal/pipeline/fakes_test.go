// internal/pipeline/fakes_test.go
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"macromaps/internal/models"
)

// fakeRestaurantStore is an in-memory RestaurantStore tracking status
// transitions per place id.
type fakeRestaurantStore struct {
	mu       sync.Mutex
	images   map[string][]string
	statuses map[string]models.Status
	history  map[string][]models.Status
	details  map[string]string
	pending  []string

	imagesErr      error
	setStatusErr   error
	setStatusErrBy map[string]error
}

func newFakeRestaurantStore() *fakeRestaurantStore {
	return &fakeRestaurantStore{
		images:   map[string][]string{},
		statuses: map[string]models.Status{},
		history:  map[string][]models.Status{},
		details:  map[string]string{},
	}
}

func (f *fakeRestaurantStore) addRestaurant(placeID string, status models.Status, images []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[placeID] = status
	f.images[placeID] = images
}

func (f *fakeRestaurantStore) Images(ctx context.Context, placeID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.imagesErr != nil {
		return nil, f.imagesErr
	}
	return f.images[placeID], nil
}

func (f *fakeRestaurantStore) PendingPlaceIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending, nil
}

func (f *fakeRestaurantStore) StatusMap(ctx context.Context, placeIDs []string) (map[string]models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]models.Status{}
	for _, id := range placeIDs {
		if s, ok := f.statuses[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeRestaurantStore) SetStatus(ctx context.Context, placeID string, status models.Status, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	if err := f.setStatusErrBy[placeID]; err != nil {
		return err
	}
	if _, ok := f.statuses[placeID]; !ok {
		return errors.New("not found")
	}
	f.statuses[placeID] = status
	f.history[placeID] = append(f.history[placeID], status)
	f.details[placeID] = detail
	return nil
}

func (f *fakeRestaurantStore) status(placeID string) models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[placeID]
}

func (f *fakeRestaurantStore) transitions(placeID string) []models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Status(nil), f.history[placeID]...)
}

// fakeMenuStore records ReplaceForRestaurant calls.
type fakeMenuStore struct {
	mu       sync.Mutex
	menus    map[string][]models.MenuItem
	writes   int
	writeErr error
}

func newFakeMenuStore() *fakeMenuStore {
	return &fakeMenuStore{menus: map[string][]models.MenuItem{}}
}

func (f *fakeMenuStore) ReplaceForRestaurant(ctx context.Context, placeID string, items []models.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.menus[placeID] = items
	f.writes++
	return nil
}

func (f *fakeMenuStore) menu(placeID string) []models.MenuItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.menus[placeID]
}

func (f *fakeMenuStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// fakeMenuModel scripts the three stages. Classification returns is_menu
// for URLs containing "menu"; URLs containing "classify-fail" or
// "analyze-fail" error at their stage.
type fakeMenuModel struct {
	mu sync.Mutex

	aggregateErr   error
	aggregateCalls int
	classifyOrder  []string
}

func (f *fakeMenuModel) ClassifyMenuImage(ctx context.Context, imageURL string) (*models.ImageClassification, error) {
	f.mu.Lock()
	f.classifyOrder = append(f.classifyOrder, imageURL)
	f.mu.Unlock()

	if strings.Contains(imageURL, "classify-fail") {
		return nil, errors.New("classification blew up")
	}
	return &models.ImageClassification{
		ImageURL:        imageURL,
		IsMenu:          strings.Contains(imageURL, "menu"),
		ConfidenceLevel: "high",
		ImageType:       "menu",
	}, nil
}

func (f *fakeMenuModel) AnalyzeMenuImage(ctx context.Context, imageURL string) ([]models.MenuItem, error) {
	if strings.Contains(imageURL, "analyze-fail") {
		return nil, errors.New("analysis blew up")
	}
	return []models.MenuItem{
		{Name: "Dish from " + imageURL, SourceImageURL: imageURL},
	}, nil
}

func (f *fakeMenuModel) AggregateMenuItems(ctx context.Context, placeID string, items []models.MenuItem) ([]models.MenuItem, error) {
	f.mu.Lock()
	f.aggregateCalls++
	err := f.aggregateErr
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	// Pass raw items through with a category set, as a consolidation stand-in.
	out := make([]models.MenuItem, len(items))
	for i, item := range items {
		item.Category = "Mains"
		out[i] = item
	}
	return out, nil
}
