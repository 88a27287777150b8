package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeNavigation      = "NAVIGATION_FAILED"
	ErrCodeElementNotFound = "ELEMENT_NOT_FOUND"
	ErrCodeSessionFault    = "SESSION_FAULT"
	ErrCodeTimeout         = "SCRAPE_TIMEOUT"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// Diagnostic markers recorded when extraction degrades instead of failing.
// A degraded result is still a well-formed result; these never abort a request.
const (
	DiagReadinessTimeout     = "readiness_timeout"
	DiagKeyboardFallback     = "keyboard_fallback"
	DiagMainContentTimeout   = "main_content_timeout"
	DiagOrderBookEmpty       = "order_book_empty"
	DiagFieldsEmpty          = "fields_empty"
	DiagLiveSnapshotDiverge  = "live_snapshot_divergence"
	DiagScreenshotFailed     = "screenshot_failed"
	DiagArtifactWriteFailed  = "artifact_write_failed"
	DiagLiveEvaluationFailed = "live_evaluation_failed"
	DiagSnapshotParseFailed  = "snapshot_parse_failed"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
//
// Only navigation- and session-level failures travel as errors; a missing
// field or empty table is represented as absence plus a diagnostic marker.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
