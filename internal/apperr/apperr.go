// Package apperr defines the application error taxonomy shared by the
// processing pipeline and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeInvalidFormat    Code = "INVALID_FORMAT"
	CodeProcessing       Code = "PROCESSING_ERROR"
	CodeModelUnavailable Code = "MODEL_UNAVAILABLE"
)

// Error carries an error code, a stable message and the recommended HTTP
// status alongside the wrapped cause.
type Error struct {
	Code       Code
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// InvalidFormat reports an upload that cannot be treated as audio, or audio
// in an unsupported framing. Maps to a client error.
func InvalidFormat(message string) *Error {
	return &Error{
		Code:       CodeInvalidFormat,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Processing reports a failure inside the pipeline (transcoding, diarization,
// merging, extraction). Maps to a server error.
func Processing(message string, cause error) *Error {
	return &Error{
		Code:       CodeProcessing,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ModelUnavailable reports that the diarization engine could not be reached
// at startup. The server must not serve requests while this holds.
func ModelUnavailable(cause error) *Error {
	return &Error{
		Code:       CodeModelUnavailable,
		Message:    "speaker diarization engine is not available",
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// As unwraps err into an *Error, or nil if err is not one.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsInvalidFormat reports whether err carries CodeInvalidFormat.
func IsInvalidFormat(err error) bool {
	appErr := As(err)
	return appErr != nil && appErr.Code == CodeInvalidFormat
}

// IsProcessing reports whether err carries CodeProcessing.
func IsProcessing(err error) bool {
	appErr := As(err)
	return appErr != nil && appErr.Code == CodeProcessing
}
