package common

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Common error types used across the dataset build packages
var (
	ErrMissingInput      = errors.New("required input file does not exist")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnknownLabel      = errors.New("label not found in class list")
	ErrInvalidLabel      = errors.New("label is not a valid id")
	ErrDuplicateClass    = errors.New("duplicate class in class list")
	ErrLabelOverflow     = errors.New("label/tag cardinality exceeds 256")
	ErrSequenceOverflow  = errors.New("sequence exceeds maximum length")
	ErrMisalignedSample  = errors.New("token and tag sequences differ in length")
	ErrInvalidVocabulary = errors.New("invalid vocabulary file")
	ErrContainerClosed   = errors.New("container already finalized")
	ErrSchemaMismatch    = errors.New("batch does not match schema")
)

// MaxLabelCardinality is the number of distinct ids an unsigned 8-bit column can hold
const MaxLabelCardinality = 256

// WrapError wraps an error with additional context
func WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", context, err)
}

// RequireFile returns ErrMissingInput wrapped with the path when the file is absent
func RequireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, ErrMissingInput)
		}
		return fmt.Errorf("failed to access file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, ErrMissingInput)
	}
	return nil
}

// RequireNonEmpty validates that a string option is set
func RequireNonEmpty(value, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty: %w", fieldName, ErrInvalidConfig)
	}
	return nil
}

// TrimLineEnding strips a trailing carriage return left over from CRLF input
func TrimLineEnding(line string) string {
	return strings.TrimSuffix(line, "\r")
}
