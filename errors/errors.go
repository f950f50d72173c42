package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation could succeed when repeated.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Pipeline failure constructors ---

// FileNotFound reports a missing input.
func FileNotFound(ref string) *AppError {
	return &AppError{
		Code: ErrCodeLoad, Message: fmt.Sprintf("File not found: %s", ref),
		Details: map[string]any{"input": ref},
	}
}

// UnsupportedFormat reports an input whose extension has no loader.
func UnsupportedFormat(ext string) *AppError {
	return &AppError{
		Code: ErrCodeLoad, Message: fmt.Sprintf("Unsupported file format: %s. Use CSV or Excel files.", ext),
		Details: map[string]any{"extension": ext},
	}
}

// LoadFailed reports a read or parse failure.
func LoadFailed(cause error) *AppError {
	msg := "Error loading file"
	if cause != nil {
		msg = fmt.Sprintf("Error loading file: %s", cause.Error())
	}
	return &AppError{Code: ErrCodeLoad, Message: msg, Cause: cause}
}

// NoTable reports that a step expected a table that is not in state.
func NoTable() *AppError {
	return &AppError{Code: ErrCodeNoHeaders, Message: "No dataframe available"}
}

// NoHeaders reports an empty header list.
func NoHeaders() *AppError {
	return &AppError{Code: ErrCodeEmptyHeader, Message: "No headers found"}
}

// HeaderCollision reports two distinct labels that normalize to the same name.
func HeaderCollision(first, second, normalized string) *AppError {
	return &AppError{
		Code:    ErrCodeHeaderCollision,
		Message: fmt.Sprintf("Header collision: %q and %q both normalize to %q", first, second, normalized),
		Details: map[string]any{"first": first, "second": second, "normalized": normalized},
	}
}

// ColumnAnalysis reports a failed per-column task.
func ColumnAnalysis(column string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeColumnAnalysis,
		Message: fmt.Sprintf("Column analysis failed for %q: %v", column, cause),
		Details: map[string]any{"column": column},
		Cause:   cause,
	}
}

// Timeout reports an operation that did not finish within d.
func Timeout(operation string, d time.Duration) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s timed out after %s", operation, d),
		Retryable: true,
		Details:   map[string]any{"operation": operation},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Storage wraps a storage backend failure.
func Storage(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("Storage %s failed", operation),
		Retryable: true, Cause: cause,
		Details: map[string]any{"operation": operation},
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	msg := "An unexpected error occurred"
	if cause != nil {
		msg = fmt.Sprintf("An unexpected error occurred: %v", cause)
	}
	return &AppError{Code: ErrCodeInternal, Message: msg, Cause: cause}
}

// --- Inspection helpers ---

// IsAppError reports whether err or any error in its chain is an *AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError extracts the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap converts any error into an *AppError. AppErrors pass through unchanged,
// other errors become INTERNAL_ERROR with the original as cause.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// Message returns the human-readable message of err: the AppError message if
// one is in the chain, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
