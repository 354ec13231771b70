// internal/places/client.go
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "macromaps/internal/common/errors"
	"macromaps/internal/common/httpclient"
	"macromaps/internal/common/logger"
	"macromaps/internal/common/metrics"
	"macromaps/internal/models"
)

// Config holds the scraping-actor API settings.
type Config struct {
	BaseURL      string
	Token        string
	ActorID      string
	MaxPlaces    int
	MaxImages    int
	PollInterval time.Duration
	RunTimeout   time.Duration // budget for the whole run including polling
}

// Client drives a Google-Places crawling actor: start a run, poll it until
// it finishes, then page the dataset items. Runs routinely take tens of
// seconds, so every call is bounded by the configured run budget.
type Client struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: httpclient.New(0),
		logger: log.With(map[string]interface{}{
			"component": "places",
		}),
	}
}

type runState struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runEnvelope struct {
	Data runState `json:"data"`
}

// ExtractNearby starts an actor run for the coordinate pair and returns the
// normalized places it found.
func (c *Client) ExtractNearby(ctx context.Context, latitude, longitude float64) ([]models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RunTimeout)
	defer cancel()

	c.logger.Info("starting scraper run", map[string]interface{}{
		"latitude":  latitude,
		"longitude": longitude,
	})

	run, err := c.startRun(ctx, latitude, longitude)
	if err != nil {
		metrics.ScrapeRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	run, err = c.waitForRun(ctx, run)
	if err != nil {
		metrics.ScrapeRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	records, err := c.fetchDataset(ctx, run.DefaultDatasetID)
	if err != nil {
		metrics.ScrapeRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ScrapeRuns.WithLabelValues("ok").Inc()
	restaurants := formatRestaurants(records)

	c.logger.Info("scraper run finished", map[string]interface{}{
		"runId":  run.ID,
		"places": len(restaurants),
	})

	return restaurants, nil
}

func (c *Client) startRun(ctx context.Context, latitude, longitude float64) (*runState, error) {
	input := map[string]interface{}{
		"searchStringsArray":       []string{"restaurants"},
		"locationQuery":            fmt.Sprintf("%f,%f", latitude, longitude),
		"maxCrawledPlacesPerSearch": c.config.MaxPlaces,
		"maxImages":                c.config.MaxImages,
		"language":                 "en",
		"skipClosedPlaces":         false,
		"exportOpeningHours":       true,
		"exportImagesFromPlace":    true,
		"personalDataOptions":      "personal-data-to-be-excluded",
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, apperrors.NewScrapeFailedError(err)
	}

	url := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s", c.config.BaseURL, c.config.ActorID, c.config.Token)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewScrapeFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewScrapeTimeoutError("starting run")
		}
		return nil, apperrors.NewScrapeFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewScrapeFailedError(fmt.Errorf("start run status %d", resp.StatusCode))
	}

	var envelope runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, apperrors.NewScrapeFailedError(fmt.Errorf("decode run: %v", err))
	}
	if envelope.Data.ID == "" {
		return nil, apperrors.NewScrapeFailedError(errors.New("run id missing"))
	}

	return &envelope.Data, nil
}

func (c *Client) waitForRun(ctx context.Context, run *runState) (*runState, error) {
	for {
		switch run.Status {
		case "SUCCEEDED":
			if run.DefaultDatasetID == "" {
				return nil, apperrors.NewScrapeFailedError(errors.New("dataset id missing from run"))
			}
			return run, nil
		case "FAILED", "ABORTED", "TIMED-OUT":
			return nil, apperrors.NewScrapeFailedError(fmt.Errorf("run ended with status %s", run.Status))
		}

		select {
		case <-time.After(c.config.PollInterval):
		case <-ctx.Done():
			return nil, apperrors.NewScrapeTimeoutError(fmt.Sprintf("run %s still %s", run.ID, run.Status))
		}

		next, err := c.getRun(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		run = next
	}
}

func (c *Client) getRun(ctx context.Context, runID string) (*runState, error) {
	url := fmt.Sprintf("%s/v2/actor-runs/%s?token=%s", c.config.BaseURL, runID, c.config.Token)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewScrapeFailedError(err)
	}

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewScrapeTimeoutError(fmt.Sprintf("polling run %s", runID))
		}
		return nil, apperrors.NewScrapeFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewScrapeFailedError(fmt.Errorf("poll status %d", resp.StatusCode))
	}

	var envelope runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, apperrors.NewScrapeFailedError(fmt.Errorf("decode run: %v", err))
	}

	return &envelope.Data, nil
}

func (c *Client) fetchDataset(ctx context.Context, datasetID string) ([]placeRecord, error) {
	url := fmt.Sprintf("%s/v2/datasets/%s/items?token=%s&format=json", c.config.BaseURL, datasetID, c.config.Token)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewScrapeFailedError(err)
	}

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewScrapeTimeoutError(fmt.Sprintf("fetching dataset %s", datasetID))
		}
		return nil, apperrors.NewScrapeFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewScrapeFailedError(fmt.Errorf("dataset status %d", resp.StatusCode))
	}

	var records []placeRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, apperrors.NewScrapeFailedError(fmt.Errorf("decode dataset: %v", err))
	}

	return records, nil
}
