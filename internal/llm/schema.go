// internal/llm/schema.go
package llm

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "macromaps/internal/common/errors"
)

// Structured model responses are validated against JSON schemas before
// unmarshalling so a half-shaped answer fails loudly instead of producing
// zero-valued records.

const classificationSchemaJSON = `{
	"type": "object",
	"required": ["is_menu"],
	"properties": {
		"is_menu": {"type": "boolean"},
		"confidence_level": {"type": "string", "enum": ["high", "medium", "low", "High", "Medium", "Low"]},
		"reasoning": {"type": "string"},
		"image_type": {"type": "string"}
	}
}`

const menuItemsSchemaJSON = `{
	"type": "object",
	"required": ["menu_items"],
	"properties": {
		"menu_items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"description": {"type": ["string", "null"]},
					"price": {"type": ["number", "null"]},
					"category": {"type": ["string", "null"]},
					"calories": {"type": ["integer", "null"]},
					"protein": {"type": ["number", "null"]},
					"carbs": {"type": ["number", "null"]},
					"fat": {"type": ["number", "null"]},
					"fiber": {"type": ["number", "null"]},
					"sugar": {"type": ["number", "null"]},
					"sodium": {"type": ["number", "null"]}
				}
			}
		}
	}
}`

var (
	classificationSchema = mustCompileSchema(classificationSchemaJSON)
	menuItemsSchema      = mustCompileSchema(menuItemsSchemaJSON)
)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid response schema: %v", err))
	}
	return schema
}

func validateAgainst(schema *gojsonschema.Schema, doc string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return apperrors.NewMalformedResponseError(err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return apperrors.NewMalformedResponseError(strings.Join(msgs, "; "))
	}
	return nil
}
