package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by every error the agent surfaces. Callers branch on
// these rather than on message text.
const (
	CloudErrorAuthFailed       = "CLOUD_AUTH_FAILED"
	CloudErrorConflict         = "CLOUD_CONFLICT"
	CloudErrorOverLimit        = "CLOUD_OVER_LIMIT"
	CloudErrorClientError      = "CLOUD_CLIENT_ERROR"
	CloudErrorTransportFailure = "CLOUD_TRANSPORT_FAILURE"
	CloudErrorDecodingError    = "CLOUD_DECODING_ERROR"
	CloudErrorBadConfig        = "CLOUD_BAD_CONFIG"
	CloudErrorInternal         = "CLOUD_INTERNAL_ERROR"
)

// NewAuthenticationFailure marks a 401 that persisted after the single
// reauthorize-and-retry pass.
func NewAuthenticationFailure(message string, metadata map[string]any) error {
	return newCloudError(message, goerrors.CategoryAuth, http.StatusUnauthorized, CloudErrorAuthFailed, metadata)
}

// NewConflictError marks an HTTP 409 from a backend service.
func NewConflictError(message string, metadata map[string]any) error {
	return newCloudError(message, goerrors.CategoryConflict, http.StatusConflict, CloudErrorConflict, metadata)
}

// NewOverLimitError marks an HTTP 413 on a resource-creation call so callers
// can apply quota-specific handling.
func NewOverLimitError(message string, metadata map[string]any) error {
	return newCloudError(message, goerrors.CategoryRateLimit, http.StatusRequestEntityTooLarge, CloudErrorOverLimit, metadata)
}

// NewClientError marks any other HTTP >= 400 response, carrying the status
// code and a best-effort message extracted from the body.
func NewClientError(status int, message string, metadata map[string]any) error {
	if strings.TrimSpace(message) == "" {
		message = "Unknown error"
	}
	return newCloudError(message, goerrors.CategoryExternal, status, CloudErrorClientError, metadata)
}

// NewTransportFailure marks an I/O-level failure (connect refused, timeout)
// unrelated to HTTP semantics.
func NewTransportFailure(source error, message string, metadata map[string]any) error {
	err := goerrors.Wrap(source, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(CloudErrorTransportFailure)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// NewDecodingError marks a response body that does not match the declared
// shape. Never retried.
func NewDecodingError(source error, message string, metadata map[string]any) error {
	err := goerrors.Wrap(source, goerrors.CategoryOperation, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(CloudErrorDecodingError)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// NewConfigError marks invalid or missing configuration, raised at
// construction time rather than call time.
func NewConfigError(field string, message string) error {
	return goerrors.NewValidation(message, goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(CloudErrorBadConfig)
}

// NewInternalError marks a wiring defect inside the agent itself.
func NewInternalError(message string) error {
	return newCloudError(message, goerrors.CategoryInternal, http.StatusInternalServerError, CloudErrorInternal, nil)
}

func newCloudError(message string, category goerrors.Category, code int, textCode string, metadata map[string]any) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// HasTextCode reports whether err carries the given cloud text code anywhere
// in its chain.
func HasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCode
}

// IsAuthenticationFailure reports a persisted 401.
func IsAuthenticationFailure(err error) bool { return HasTextCode(err, CloudErrorAuthFailed) }

// IsConflict reports an HTTP 409 outcome.
func IsConflict(err error) bool { return HasTextCode(err, CloudErrorConflict) }

// IsOverLimit reports an HTTP 413 on a creation call.
func IsOverLimit(err error) bool { return HasTextCode(err, CloudErrorOverLimit) }

// IsClientError reports a generic 4xx/5xx outcome.
func IsClientError(err error) bool { return HasTextCode(err, CloudErrorClientError) }

// IsTransportFailure reports an I/O-level failure.
func IsTransportFailure(err error) bool { return HasTextCode(err, CloudErrorTransportFailure) }

// IsDecodingError reports a body that failed to decode.
func IsDecodingError(err error) bool { return HasTextCode(err, CloudErrorDecodingError) }

// IsConfigError reports invalid construction input.
func IsConfigError(err error) bool { return HasTextCode(err, CloudErrorBadConfig) }

// StatusCode extracts the HTTP status carried by a cloud error, or zero.
func StatusCode(err error) int {
	var rich *goerrors.Error
	if err == nil || !goerrors.As(err, &rich) {
		return 0
	}
	return rich.Code
}
