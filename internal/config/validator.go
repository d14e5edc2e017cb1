package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting found.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted log.level values.
func ValidLogLevels() []string { return []string{"debug", "info", "warn", "error"} }

// ValidLogFormats returns the accepted log.format values.
func ValidLogFormats() []string { return []string{"text", "json"} }

// ValidOutputFormats returns the accepted output.format values.
func ValidOutputFormats() []string { return []string{"fasta", "text", "json", "jsonl", "yaml"} }

// ValidOrders returns the accepted output.order values.
func ValidOrders() []string { return []string{"input", "tree"} }

// Validate returns every problem found in c.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(c.Binary) == "" {
		errs = append(errs, ValidationError{Field: "binary", Value: c.Binary, Message: "must not be empty"})
	}
	if c.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "timeout", Value: c.Timeout, Message: "must be non-negative"})
	}
	if c.Threads < 0 {
		errs = append(errs, ValidationError{Field: "threads", Value: c.Threads, Message: "must be non-negative"})
	}

	errs = append(errs, oneOf("log.level", strings.ToLower(c.Log.Level), ValidLogLevels())...)
	errs = append(errs, oneOf("log.format", c.Log.Format, ValidLogFormats())...)
	errs = append(errs, oneOf("output.format", c.Output.Format, ValidOutputFormats())...)
	errs = append(errs, oneOf("output.order", c.Output.Order, ValidOrders())...)

	if c.Output.Wrap < 0 {
		errs = append(errs, ValidationError{Field: "output.wrap", Value: c.Output.Wrap, Message: "must be non-negative"})
	}
	return errs
}

func oneOf(field, value string, valid []string) []ValidationError {
	if slices.Contains(valid, value) {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(valid, ", ")),
	}}
}
