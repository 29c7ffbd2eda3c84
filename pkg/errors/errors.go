package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeValidation represents malformed input or an unsupported platform
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeScrape represents a failed scrape (navigation, missing required field, browser launch)
	ErrorTypeScrape ErrorType = "scrape"
	// ErrorTypeRateLimit represents a platform that blocked or throttled us
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypePersistence represents store failures
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// AppError is the error type shared by every layer of the pipeline
type AppError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if retrying later may succeed
func (e *AppError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeScrape, ErrorTypePersistence:
		return true
	default:
		return false
	}
}

// New creates a new AppError
func New(errType ErrorType, provider, message string, err error) *AppError {
	return &AppError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewValidation creates a new validation error
func NewValidation(provider, message string) *AppError {
	return New(ErrorTypeValidation, provider, message, nil)
}

// NewScrape creates a new scrape error
func NewScrape(provider, message string, err error) *AppError {
	return New(ErrorTypeScrape, provider, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(provider string, duration time.Duration) *AppError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, provider, message, nil)
}

// NewPersistence creates a new persistence error
func NewPersistence(message string, err error) *AppError {
	return New(ErrorTypePersistence, "store", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *AppError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "" if there is none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return TypeOf(err) == ErrorTypeValidation }

// IsScrape reports whether err is a scrape failure, rate limiting included
func IsScrape(err error) bool {
	t := TypeOf(err)
	return t == ErrorTypeScrape || t == ErrorTypeRateLimit
}

// IsRateLimit reports whether err is a rate limit error
func IsRateLimit(err error) bool { return TypeOf(err) == ErrorTypeRateLimit }

// IsPersistence reports whether err is a persistence error
func IsPersistence(err error) bool { return TypeOf(err) == ErrorTypePersistence }
