package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Category sentinels. Every AppError unwraps to exactly one of these.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrFetchFailed  = errors.New("fetch failed")
	ErrUpdateFailed = errors.New("update failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")
)

// Definition is a named, pre-declared failure mode of an operation.
type Definition struct {
	Name        string
	Base        error
	Message     string
	UserMessage string
}

// New instantiates the definition with call-specific details and the underlying cause.
func (d Definition) New(details string, err error) *AppError {
	return &AppError{
		Name:        d.Name,
		BaseError:   d.Base,
		Message:     d.Message,
		UserMessage: d.UserMessage,
		Details:     details,
		Err:         err,
	}
}

// Is reports whether err is an AppError created from d.
func (d Definition) Is(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Name == d.Name
}

type AppError struct {
	Name        string
	BaseError   error
	Message     string
	UserMessage string
	Details     string
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.Name, e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.Name, e.Message, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

// Cause returns the underlying driver or client error, if any.
func (e *AppError) Cause() error {
	return e.Err
}

func NewNotFound(resource, identifier string) *AppError {
	return Definition{
		Name:        resource + "_not_found",
		Base:        ErrNotFound,
		Message:     fmt.Sprintf("%s not found", resource),
		UserMessage: fmt.Sprintf("The requested %s could not be found.", resource),
	}.New(fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier), nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return Definition{
		Name:        "invalid_input",
		Base:        ErrInvalidInput,
		Message:     "Invalid input provided",
		UserMessage: "The request contained invalid data.",
	}.New(details, err)
}

func NewInternal(details string, err error) *AppError {
	return Definition{
		Name:        "internal",
		Base:        ErrInternal,
		Message:     "An internal server error occurred",
		UserMessage: "Something went wrong. Please try again.",
	}.New(details, err)
}

func NewUnauthorized(details string, err error) *AppError {
	return Definition{
		Name:        "unauthorized",
		Base:        ErrUnauthorized,
		Message:     "Invalid credentials",
		UserMessage: "You need to sign in to continue.",
	}.New(details, err)
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrUpdateFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ToJSON renders only what may be shown to an end user.
func (e *AppError) ToJSON() gin.H {
	return gin.H{
		"error":   e.Name,
		"message": e.UserMessage,
	}
}
