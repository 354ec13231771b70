// Package errors provides standardized error handling for the discovery and
// menu-processing services.
package errors

import (
	goerrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Scraper / places actor
	ErrCodeScrapeFailed  ErrorCode = "SCRAPE_FAILED"
	ErrCodeScrapeTimeout ErrorCode = "SCRAPE_TIMEOUT"

	// LLM calls
	ErrCodeLLMTimeout           ErrorCode = "LLM_TIMEOUT"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeAnalysisFailed       ErrorCode = "ANALYSIS_FAILED"
	ErrCodeAggregationFailed    ErrorCode = "AGGREGATION_FAILED"
	ErrCodeMalformedResponse    ErrorCode = "MALFORMED_RESPONSE"

	// Datastore
	ErrCodeDatastoreQueryFailed ErrorCode = "DATASTORE_QUERY_FAILED"
	ErrCodeDatastoreWriteFailed ErrorCode = "DATASTORE_WRITE_FAILED"
	ErrCodeRestaurantNotFound   ErrorCode = "RESTAURANT_NOT_FOUND"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HasCode reports whether err is (or wraps) a StandardError with the code.
func HasCode(err error, code ErrorCode) bool {
	var se *StandardError
	if goerrors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// ==========================
// Error Constructors
// ==========================

// NewScrapeFailedError creates a retryable scraper error.
func NewScrapeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScrapeFailed,
		Message:   "Places scraping run failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScrapeTimeoutError creates a retryable scraper timeout error.
func NewScrapeTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScrapeTimeout,
		Message:   "Places scraping run exceeded its time budget",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable model-call timeout error.
func NewLLMTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Model call exceeded its timeout",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError marks a per-image classification failure.
// Soft: the pipeline treats the image as not-a-menu and continues.
func NewClassificationFailedError(imageURL string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Image classification call failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"imageUrl": imageURL},
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisFailedError marks a per-image extraction failure.
// Soft: the image contributes zero items and the batch continues.
func NewAnalysisFailedError(imageURL string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisFailed,
		Message:   "Menu extraction call failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"imageUrl": imageURL},
		Timestamp: time.Now().UTC(),
	}
}

// NewAggregationFailedError marks the consolidation failure. Fatal for the
// restaurant: no partial menu is persisted.
func NewAggregationFailedError(placeID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAggregationFailed,
		Message:   "Menu consolidation call failed",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"placeId": placeID},
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedResponseError marks an unparsable model response.
func NewMalformedResponseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedResponse,
		Message:   "Model returned a malformed response",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatastoreQueryFailedError creates a retryable database read error.
func NewDatastoreQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatastoreQueryFailed,
		Message:   "Database query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatastoreWriteFailedError creates a retryable database write error.
func NewDatastoreWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatastoreWriteFailed,
		Message:   "Database write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRestaurantNotFoundError creates a non-retryable lookup error.
func NewRestaurantNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRestaurantNotFound,
		Message:   "Restaurant not found",
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
