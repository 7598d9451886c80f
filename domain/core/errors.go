package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrRunNotFound    = fmt.Errorf("%w: run", ErrNotFound)
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)

	// Configuration errors
	ErrUnknownCategory = errors.New("unknown feature category")
	ErrEmptyConfig     = errors.New("no feature categories configured")

	// Data errors
	ErrEmptyCorpus      = errors.New("corpus contains no names")
	ErrLengthMismatch   = errors.New("feature and outcome lengths differ")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrZeroVariance     = errors.New("zero variance column")

	// Extractor state errors
	ErrNotFitted = errors.New("extractor has not been fitted")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewUnknownCategoryError(category string) error {
	return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

func NewLengthMismatchError(features, outcomes int) error {
	return fmt.Errorf("%w: %d features vs %d outcomes", ErrLengthMismatch, features, outcomes)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrEmptyConfig)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrEmptyCorpus) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrInsufficientData)
}
