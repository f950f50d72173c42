package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors
const (
	// ErrCodeLoad indicates the input could not be located, read or parsed.
	ErrCodeLoad ErrorCode = "LOAD_ERROR"
	// ErrCodeNoHeaders indicates a table was expected but absent.
	ErrCodeNoHeaders ErrorCode = "NO_HEADERS"
	// ErrCodeEmptyHeader indicates the table has no columns.
	ErrCodeEmptyHeader ErrorCode = "EMPTY_HEADER"
	// ErrCodeHeaderCollision indicates two labels normalize to the same name.
	ErrCodeHeaderCollision ErrorCode = "HEADER_COLLISION"
	// ErrCodeInvalidInput indicates a caller supplied invalid input or configuration.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Execution errors
const (
	// ErrCodeColumnAnalysis indicates a per-column task failed.
	ErrCodeColumnAnalysis ErrorCode = "COLUMN_ANALYSIS"
	// ErrCodeTimeout indicates a fan-out did not complete in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an unexpected failure such as a recovered panic.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeStorage indicates an object storage backend failed.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout: true,
	ErrCodeStorage: true,
}

// IsRetryableCode returns true if the error code indicates a transient failure.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
