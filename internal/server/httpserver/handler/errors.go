// Package handler provides HTTP request handlers for the status panel.
package handler

import (
	"errors"
	"net/http"

	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
)

// Error codes returned in the response envelope.
const (
	CodeParseError      = "SV-CFG-4220"
	CodeValidationError = "SV-CFG-4221"
	CodeNotLoaded       = "SV-CFG-5030"
	CodeInternal        = "SV-SYS-5000"
	CodeTooManyRequests = "SV-SYS-4290"
)

// Error kinds reported in LoadError.Kind.
const (
	KindParse      = "parse"
	KindValidation = "validation"
	KindIO         = "io"
)

// describeError classifies a load error for the panel.
func describeError(err error) *LoadError {
	if err == nil {
		return nil
	}

	var pe *confloader.ParseError
	if errors.As(err, &pe) {
		return &LoadError{
			Kind:    KindParse,
			Code:    CodeParseError,
			Message: err.Error(),
			Path:    pe.Path,
		}
	}

	var ve *confloader.ValidationError
	if errors.As(err, &ve) {
		return &LoadError{
			Kind:    KindValidation,
			Code:    CodeValidationError,
			Message: ve.Error(),
			Reason:  ve.Reason,
		}
	}

	return &LoadError{
		Kind:    KindIO,
		Code:    CodeInternal,
		Message: err.Error(),
	}
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch code {
	case CodeParseError, CodeValidationError:
		return http.StatusUnprocessableEntity
	case CodeNotLoaded:
		return http.StatusServiceUnavailable
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
