package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Plugin lifecycle errors
const (
	// ErrCodePluginNotFound indicates the referenced plugin name is not registered.
	ErrCodePluginNotFound ErrorCode = "PLUGIN_NOT_FOUND"
	// ErrCodePluginUnavailable indicates the plugin's cheap precondition check failed.
	ErrCodePluginUnavailable ErrorCode = "PLUGIN_UNAVAILABLE"
	// ErrCodeActivationFailed indicates the plugin's activation attempt threw.
	ErrCodeActivationFailed ErrorCode = "ACTIVATION_FAILED"
	// ErrCodeDeactivationFailed indicates the previous plugin failed to stop cleanly.
	ErrCodeDeactivationFailed ErrorCode = "DEACTIVATION_FAILED"
	// ErrCodeFallbackExhausted indicates every candidate in the fallback walk failed.
	ErrCodeFallbackExhausted ErrorCode = "FALLBACK_EXHAUSTED"
)

// Configuration errors
const (
	// ErrCodeInvalidOptions indicates a plugin rejected its option map.
	ErrCodeInvalidOptions ErrorCode = "INVALID_OPTIONS"
	// ErrCodeMissingField indicates a required option field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Data management errors
const (
	// ErrCodeDataError indicates a plugin data operation failed.
	ErrCodeDataError ErrorCode = "DATA_ERROR"
	// ErrCodeModelMissing indicates a required model asset is absent on disk.
	ErrCodeModelMissing ErrorCode = "MODEL_MISSING"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodePluginUnavailable: true,
	ErrCodeExternalService:   true,
}

// IsRetryableCode reports whether errors with the given code are
// worth retrying on a later orchestration run.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
