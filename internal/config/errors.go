package config

import (
	"fmt"
	"strings"
)

// ConfigurationError represents a structured error that occurs while loading
// or validating the desired-state document.
type ConfigurationError struct {
	FilePath    string   `json:"filePath"`    // Full path to the file that caused the error
	Category    string   `json:"category"`    // Entity family (channels, warehouses, products, ...)
	ErrorType   string   `json:"errorType"`   // Type of error (parse, template, validation, io)
	Message     string   `json:"message"`     // Human-readable error message
	Suggestions []string `json:"suggestions"` // Actionable suggestions to fix the error
}

// Error implements the error interface.
func (ce *ConfigurationError) Error() string {
	if ce.Category != "" {
		return fmt.Sprintf("[%s/%s] %s", ce.ErrorType, ce.Category, ce.Message)
	}
	return fmt.Sprintf("[%s] %s", ce.ErrorType, ce.Message)
}

// DetailedError returns a multi-line error message with all context.
func (ce *ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration error: %s", ce.Message))
	if ce.FilePath != "" {
		parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	}
	if ce.Category != "" {
		parts = append(parts, fmt.Sprintf("  Category: %s", ce.Category))
	}
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

// newValidationError builds a ConfigurationError for a failed pre-flight
// check. Validation errors are never retried.
func newValidationError(category, message string, suggestions ...string) *ConfigurationError {
	return &ConfigurationError{
		Category:    category,
		ErrorType:   "validation",
		Message:     message,
		Suggestions: suggestions,
	}
}
