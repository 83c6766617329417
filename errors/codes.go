package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Client-side errors, detected before any network call.
const (
	// ErrCodeOptionInvalid indicates an invalid or incomplete option set.
	ErrCodeOptionInvalid ErrorCode = "OPTION_INVALID"
	// ErrCodeEmptyName indicates an empty container or object name.
	ErrCodeEmptyName ErrorCode = "EMPTY_NAME"
	// ErrCodeTempURLKeyMissing indicates a temp URL was requested without a signing key.
	ErrCodeTempURLKeyMissing ErrorCode = "TEMP_URL_KEY_MISSING"
	// ErrCodeUnseekableBody indicates a streamed body that cannot be rewound for replay.
	ErrCodeUnseekableBody ErrorCode = "UNSEEKABLE_BODY"
)

// Server-side errors.
const (
	// ErrCodeAuthentication indicates a failure of the credential exchange.
	ErrCodeAuthentication ErrorCode = "AUTHENTICATION_FAILED"
	// ErrCodeResponse indicates a non-success response from an authenticated call.
	ErrCodeResponse ErrorCode = "RESPONSE_ERROR"
)

// Sentinels for errors.Is comparisons. Only the code is compared.
var (
	ErrOptionInvalid     = &AppError{Code: ErrCodeOptionInvalid}
	ErrEmptyName         = &AppError{Code: ErrCodeEmptyName}
	ErrTempURLKeyMissing = &AppError{Code: ErrCodeTempURLKeyMissing}
	ErrUnseekableBody    = &AppError{Code: ErrCodeUnseekableBody}
	ErrAuthentication    = &AppError{Code: ErrCodeAuthentication}
	ErrResponse          = &AppError{Code: ErrCodeResponse}
)
