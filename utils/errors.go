package utils

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorKind classifies failures surfaced by the room, answer and social services.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "not_found"
	KindConflict            ErrorKind = "conflict"
	KindForbidden           ErrorKind = "forbidden"
	KindCapacity            ErrorKind = "capacity"
	KindDuplicateSubmission ErrorKind = "duplicate_submission"
	KindInsufficientPlayers ErrorKind = "insufficient_players"
	KindBadRequest          ErrorKind = "bad_request"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindUpstreamFailure     ErrorKind = "upstream_failure"
	KindInternal            ErrorKind = "internal"
)

// AppError is the error type every service returns to the HTTP layer.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *AppError  { return NewError(KindNotFound, message) }
func Conflict(message string) *AppError  { return NewError(KindConflict, message) }
func Forbidden(message string) *AppError { return NewError(KindForbidden, message) }
func BadRequest(message string) *AppError {
	return NewError(KindBadRequest, message)
}

// Internal wraps an unexpected infrastructure error.
func Internal(message string, err error) *AppError {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error kind to its response status code.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindCapacity, KindDuplicateSubmission, KindInsufficientPlayers:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders the last error pushed with c.Error as a JSON body
// {"error": message, "kind": kind}. Internal details are only logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *AppError
		if !errors.As(err, &appErr) {
			appErr = Internal("internal server error", err)
		}

		message := appErr.Message
		if appErr.Kind == KindInternal {
			log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			message = "internal server error"
		}

		c.JSON(HTTPStatus(appErr.Kind), gin.H{
			"error": message,
			"kind":  appErr.Kind,
		})
	}
}
