// Package errors provides standardized error handling for the lead pipeline
// and its BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Capture side
	ErrCodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"
	ErrCodeTransportFailure     ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeFieldAccessError     ErrorCode = "FIELD_ACCESS_ERROR"
	ErrCodePayloadInvalid       ErrorCode = "PAYLOAD_INVALID"

	// Normalization stage
	ErrCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrCodeMalformedAIOutput ErrorCode = "MALFORMED_AI_OUTPUT"
	ErrCodePayloadNotFound   ErrorCode = "PAYLOAD_NOT_FOUND"
	ErrCodeStoreUnavailable  ErrorCode = "STORE_UNAVAILABLE"

	// Delivery sinks
	ErrCodeRecordInsertFailed     ErrorCode = "RECORD_INSERT_FAILED"
	ErrCodeCRMSyncFailed          ErrorCode = "CRM_SYNC_FAILED"
	ErrCodeIndexWriteFailed       ErrorCode = "INDEX_WRITE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
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

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewConfigurationMissingError reports a required config setting that is
// absent. Initialization must abort; no capture is attempted.
func NewConfigurationMissingError(setting string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationMissing,
		Message:   "Required configuration is missing",
		Details:   fmt.Sprintf("setting: %s", setting),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportFailureError reports a failed or non-2xx webhook delivery.
// Transport failures are logged and handed to the completion callback but
// never surfaced to the submitting user.
func NewTransportFailureError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailure,
		Message:   "Lead payload delivery failed",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFieldAccessError reports a missing container or field during a
// manual-funnel capture. It fails that single capture attempt only.
func NewFieldAccessError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFieldAccessError,
		Message:   "Capture container or field not accessible",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadInvalidError reports an inbound capture request that failed
// schema validation.
func NewPayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadInvalid,
		Message:   "Lead payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError reports an AI response that matched neither of the
// tolerated envelope shapes. Fatal for the event; there is no further
// fallback.
func NewExtractionFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "AI response text extraction failed for all known shapes",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedAIOutputError reports AI output that is still unparseable after
// fence stripping. Fatal for the event; silently defaulting would corrupt the
// status and reason fields downstream.
func NewMalformedAIOutputError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedAIOutput,
		Message:   "AI classification output is not valid JSON after repair",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadNotFoundError reports a correlation id with no stored payload.
// Retryable: the store write may still be in flight.
func NewPayloadNotFoundError(correlationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadNotFound,
		Message:   "No stored lead payload for correlation id",
		Details:   fmt.Sprintf("correlationId: %s", correlationID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError reports a join-store access failure.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Lead payload store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordInsertFailedError reports a failed archive insert.
func NewRecordInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordInsertFailed,
		Message:   "Normalized lead record insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCRMSyncFailedError reports a failed CRM contact sync.
func NewCRMSyncFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMSyncFailed,
		Message:   "CRM contact sync failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexWriteFailedError reports a failed search index write.
func NewIndexWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexWriteFailed,
		Message:   "Lead record index write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError reports a failed reviewer notification.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Reviewer notification failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// --- Generic constructors used by infrastructure wrappers ---

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewBusinessRuleError(details, message string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The codes
// are identical on both sides so the workflow model can route on them
// directly.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeConfigurationMissing:   "CONFIGURATION_MISSING",
	ErrCodeTransportFailure:       "TRANSPORT_FAILURE",
	ErrCodeFieldAccessError:       "FIELD_ACCESS_ERROR",
	ErrCodePayloadInvalid:         "PAYLOAD_INVALID",
	ErrCodeExtractionFailed:       "EXTRACTION_FAILED",
	ErrCodeMalformedAIOutput:      "MALFORMED_AI_OUTPUT",
	ErrCodePayloadNotFound:        "PAYLOAD_NOT_FOUND",
	ErrCodeStoreUnavailable:       "STORE_UNAVAILABLE",
	ErrCodeRecordInsertFailed:     "RECORD_INSERT_FAILED",
	ErrCodeCRMSyncFailed:          "CRM_SYNC_FAILED",
	ErrCodeIndexWriteFailed:       "INDEX_WRITE_FAILED",
	ErrCodeNotificationSendFailed: "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTransportFailure,
		ErrCodeStoreUnavailable,
		ErrCodeRecordInsertFailed,
		ErrCodeCRMSyncFailed,
		ErrCodeIndexWriteFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodePayloadNotFound:
		return 2 // Store write may race the workflow trigger

	default:
		return 0 // Extraction/parse/config errors: fatal for the event
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for the engine.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIG"
	case strings.Contains(codeStr, "TRANSPORT"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "AI_OUTPUT"):
		return "AI"
	case strings.Contains(codeStr, "PAYLOAD") || strings.Contains(codeStr, "FIELD"):
		return "CAPTURE"
	case strings.Contains(codeStr, "STORE"):
		return "STORE"
	case strings.Contains(codeStr, "RECORD") || strings.Contains(codeStr, "CRM") ||
		strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "NOTIFICATION"):
		return "SINK"
	default:
		return "OTHER"
	}
}
