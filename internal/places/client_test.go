// internal/places/client_test.go
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "macromaps/internal/common/errors"
	"macromaps/internal/common/logger/logtest"
	"macromaps/internal/models"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:      baseURL,
		Token:        "test-token",
		ActorID:      "compass~crawler-google-places",
		MaxPlaces:    10,
		MaxImages:    5,
		PollInterval: time.Millisecond,
		RunTimeout:   2 * time.Second,
	}
}

// actorServer fakes the run -> poll -> dataset contract. The run reports
// RUNNING for pollsUntilDone polls, then finalStatus.
func actorServer(t *testing.T, finalStatus string, pollsUntilDone int32, items []placeRecord) *httptest.Server {
	var polls int32
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v2/acts/compass~crawler-google-places/runs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		var input map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, float64(10), input["maxCrawledPlacesPerSearch"])
		assert.Equal(t, float64(5), input["maxImages"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"id":"run-1","status":"RUNNING"}}`)
	})

	mux.HandleFunc("GET /v2/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		status := "RUNNING"
		datasetID := ""
		if atomic.AddInt32(&polls, 1) >= pollsUntilDone {
			status = finalStatus
			datasetID = "ds-1"
		}
		fmt.Fprintf(w, `{"data":{"id":"run-1","status":"%s","defaultDatasetId":"%s"}}`, status, datasetID)
	})

	mux.HandleFunc("GET /v2/datasets/ds-1/items", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(items))
	})

	return httptest.NewServer(mux)
}

func TestExtractNearby(t *testing.T) {
	records := []placeRecord{
		{
			Title:        "Green Bowl",
			Address:      "1 Main St",
			TotalScore:   4.6,
			ReviewsCount: 210,
			CategoryName: "Salad bar",
			PlaceID:      "place-1",
			URL:          "https://maps.google.com/?cid=1",
			ImageURLs:    []string{"https://img/a.jpg"},
		},
		{Title: "No Place ID"}, // dropped
	}
	records[0].Location.Lat = 52.52
	records[0].Location.Lng = 13.405

	server := actorServer(t, "SUCCEEDED", 2, records)
	defer server.Close()

	c := NewClient(testConfig(server.URL), logtest.NewLogger(t))
	restaurants, err := c.ExtractNearby(context.Background(), 52.52, 13.405)

	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	r := restaurants[0]
	assert.Equal(t, "place-1", r.PlaceID)
	assert.Equal(t, "Green Bowl", r.Name)
	assert.Equal(t, models.StatusPending, r.Status)
	assert.NotEmpty(t, r.ID)
	require.NotNil(t, r.Rating)
	assert.Equal(t, 4.6, *r.Rating)
	assert.Equal(t, 52.52, r.Latitude)
}

func TestExtractNearbyRunFailed(t *testing.T) {
	server := actorServer(t, "FAILED", 1, nil)
	defer server.Close()

	c := NewClient(testConfig(server.URL), logtest.NewLogger(t))
	_, err := c.ExtractNearby(context.Background(), 52.52, 13.405)

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeScrapeFailed))

	var se *apperrors.StandardError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Details, "FAILED")
	assert.True(t, se.Retryable)
}

func TestExtractNearbyRunTimesOut(t *testing.T) {
	// Run never leaves RUNNING within the budget.
	server := actorServer(t, "SUCCEEDED", 1000, nil)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RunTimeout = 50 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond

	c := NewClient(cfg, logtest.NewLogger(t))
	_, err := c.ExtractNearby(context.Background(), 52.52, 13.405)

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeScrapeTimeout))
}

func TestExtractNearbyStartRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL), logtest.NewLogger(t))
	_, err := c.ExtractNearby(context.Background(), 52.52, 13.405)

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeScrapeFailed))
}

func TestFormatRestaurantsDefaults(t *testing.T) {
	records := []placeRecord{
		{PlaceID: "p1"}, // no title, no score
	}

	restaurants := formatRestaurants(records)

	require.Len(t, restaurants, 1)
	assert.Equal(t, "Unknown", restaurants[0].Name)
	assert.Nil(t, restaurants[0].Rating)
	assert.Equal(t, models.StatusPending, restaurants[0].Status)
}
