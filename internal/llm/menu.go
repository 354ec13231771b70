// internal/llm/menu.go
package llm

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"strings"

	apperrors "macromaps/internal/common/errors"
	"macromaps/internal/models"
)

// keepOrWrap passes already-typed errors (timeouts) through unchanged and
// wraps raw call failures with the stage's error constructor.
func keepOrWrap(err error, wrap func(error) *apperrors.StandardError) error {
	var se *apperrors.StandardError
	if goerrors.As(err, &se) {
		return err
	}
	return wrap(err)
}

// ClassifyMenuImage asks the cheap tier whether the image shows a menu.
func (c *Client) ClassifyMenuImage(ctx context.Context, imageURL string) (*models.ImageClassification, error) {
	content, err := c.complete(ctx, c.config.Classification, []chatMessage{
		textMessage("system", classificationSystemPrompt),
		visionMessage(classificationUserPrompt, imageURL),
	})
	if err != nil {
		return nil, keepOrWrap(err, func(cause error) *apperrors.StandardError {
			return apperrors.NewClassificationFailedError(imageURL, cause)
		})
	}

	doc := extractJSON(content)
	if err := validateAgainst(classificationSchema, doc); err != nil {
		return nil, err
	}

	var parsed struct {
		IsMenu          bool   `json:"is_menu"`
		ConfidenceLevel string `json:"confidence_level"`
		Reasoning       string `json:"reasoning"`
		ImageType       string `json:"image_type"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, apperrors.NewMalformedResponseError(err.Error())
	}

	result := &models.ImageClassification{
		ImageURL:        imageURL,
		IsMenu:          parsed.IsMenu,
		ConfidenceLevel: strings.ToLower(parsed.ConfidenceLevel),
		Reasoning:       parsed.Reasoning,
		ImageType:       parsed.ImageType,
	}
	if result.ConfidenceLevel == "" {
		result.ConfidenceLevel = "low"
	}
	if result.ImageType == "" {
		result.ImageType = "unknown"
	}

	c.logger.Debug("image classified", map[string]interface{}{
		"imageUrl":  imageURL,
		"isMenu":    result.IsMenu,
		"imageType": result.ImageType,
	})

	return result, nil
}

// AnalyzeMenuImage asks the stronger tier for a structured item extraction.
// Returned items carry the source image URL.
func (c *Client) AnalyzeMenuImage(ctx context.Context, imageURL string) ([]models.MenuItem, error) {
	content, err := c.complete(ctx, c.config.Analysis, []chatMessage{
		textMessage("system", analysisSystemPrompt),
		visionMessage(analysisUserPrompt, imageURL),
	})
	if err != nil {
		return nil, keepOrWrap(err, func(cause error) *apperrors.StandardError {
			return apperrors.NewAnalysisFailedError(imageURL, cause)
		})
	}

	items, err := parseMenuItems(content)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].SourceImageURL = imageURL
	}

	c.logger.Debug("menu image analyzed", map[string]interface{}{
		"imageUrl":  imageURL,
		"itemCount": len(items),
	})

	return items, nil
}

// AggregateMenuItems consolidates raw items from multiple images into one
// deduplicated menu. Single call, text only.
func (c *Client) AggregateMenuItems(ctx context.Context, placeID string, items []models.MenuItem) ([]models.MenuItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	raw, err := json.MarshalIndent(stripRowFields(items), "", "  ")
	if err != nil {
		return nil, apperrors.NewAggregationFailedError(placeID, err)
	}

	userPrompt := fmt.Sprintf(
		"Please consolidate these menu items for restaurant %s:\n\n%s\n\nReturn a clean, deduplicated list with the best information for each unique menu item.",
		placeID, raw,
	)

	content, err := c.complete(ctx, c.config.Aggregation, []chatMessage{
		textMessage("system", aggregationSystemPrompt),
		textMessage("user", userPrompt),
	})
	if err != nil {
		return nil, keepOrWrap(err, func(cause error) *apperrors.StandardError {
			return apperrors.NewAggregationFailedError(placeID, cause)
		})
	}

	final, err := parseMenuItems(content)
	if err != nil {
		return nil, err
	}

	c.logger.Info("menu items consolidated", map[string]interface{}{
		"placeId":  placeID,
		"rawCount": len(items),
		"final":    len(final),
	})

	return final, nil
}

func parseMenuItems(content string) ([]models.MenuItem, error) {
	doc := extractJSON(content)
	if err := validateAgainst(menuItemsSchema, doc); err != nil {
		return nil, err
	}

	var parsed struct {
		MenuItems []models.MenuItem `json:"menu_items"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, apperrors.NewMalformedResponseError(err.Error())
	}

	return parsed.MenuItems, nil
}

// stripRowFields drops persistence fields before feeding items back to the
// model, keeping the aggregation prompt focused on dish content.
func stripRowFields(items []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, len(items))
	for i, item := range items {
		out[i] = models.MenuItem{
			Name:           item.Name,
			Description:    item.Description,
			Price:          item.Price,
			Category:       item.Category,
			Calories:       item.Calories,
			Protein:        item.Protein,
			Carbs:          item.Carbs,
			Fat:            item.Fat,
			Fiber:          item.Fiber,
			Sugar:          item.Sugar,
			Sodium:         item.Sodium,
			SourceImageURL: item.SourceImageURL,
		}
	}
	return out
}
