package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorValidationFailed = "WEBHOOK_VALIDATION_FAILED"
	ErrorBadPayload       = "WEBHOOK_BAD_PAYLOAD"
	ErrorHandlerNotFound  = "WEBHOOK_HANDLER_NOT_FOUND"
	ErrorHandlerConflict  = "WEBHOOK_HANDLER_CONFLICT"
	ErrorEmitFailed       = "WEBHOOK_EMIT_FAILED"
	ErrorConfigInvalid    = "WEBHOOK_CONFIG_INVALID"
	ErrorInternal         = "WEBHOOK_INTERNAL_ERROR"
)

// ValidationFailure rejects a webhook call whose authenticity could not be
// established.
func ValidationFailure(message string, metadata map[string]any) error {
	return NewError(message, goerrors.CategoryAuth, http.StatusUnauthorized, ErrorValidationFailed, metadata)
}

func BadPayload(message string, metadata map[string]any) error {
	return NewError(message, goerrors.CategoryBadInput, http.StatusBadRequest, ErrorBadPayload, metadata)
}

func WrapBadPayload(source error, message string, metadata map[string]any) error {
	return WrapError(source, goerrors.CategoryBadInput, message, http.StatusBadRequest, ErrorBadPayload, metadata)
}

func ConfigInvalid(message string, metadata map[string]any) error {
	return NewError(message, goerrors.CategoryValidation, http.StatusInternalServerError, ErrorConfigInvalid, metadata)
}

func Internal(message string, metadata map[string]any) error {
	return NewError(message, goerrors.CategoryInternal, http.StatusInternalServerError, ErrorInternal, metadata)
}

func NewError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func WrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	if source == nil {
		return NewError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// TextCode returns the stable text code carried by err, if any.
func TextCode(err error) string {
	var richErr *goerrors.Error
	if err == nil || !goerrors.As(err, &richErr) {
		return ""
	}
	return strings.TrimSpace(richErr.TextCode)
}

// HTTPStatus resolves the response status a host should use for err.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return http.StatusInternalServerError
	}
	if richErr.Code != 0 {
		return richErr.Code
	}
	return categoryHTTPStatus(richErr.Category)
}

func categoryHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
