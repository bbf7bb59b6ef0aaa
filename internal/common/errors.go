// Package common holds the error vocabulary, retry loop, logging setup and
// merchant matching shared by the pulse commands.
package common

import (
	"errors"
	"fmt"
)

// Storage lookups and writes.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Bank data sources. Plaid, SimpleFIN and OFX failures wrap these so commands
// can react without knowing which source produced them.
var (
	ErrSourceUnavailable = errors.New("bank data source unavailable")
	ErrRateLimit         = errors.New("rate limit exceeded")
	ErrEmptyStatement    = errors.New("statement holds no transactions")
)

// Settings read through viper or flags.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError pairs a message for the terminal with its cause. main prints only
// Message; errors.Is still reaches Err.
type UserError struct {
	Err     error
	Message string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a message meant for the terminal.
func NewUserError(message string, err error) error {
	return &UserError{Message: message, Err: err}
}

// Permanent stops WithRetry from trying again after err.
func Permanent(err error) error {
	return &RetryableError{Err: err}
}

// Permanentf is Permanent over fmt.Errorf.
func Permanentf(format string, args ...any) error {
	return Permanent(fmt.Errorf(format, args...))
}
