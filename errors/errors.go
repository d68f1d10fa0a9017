package errors

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns absent from an input table. It aborts the run.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing columns %s", e.Table, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrMissingColumns
}

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Table  string
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error at line %d: %v (record: %v)", e.Table, e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeliveryError is returned when the notification channel fails or rejects a message.
type DeliveryError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("notification delivery: status %d: %v (body: %q)", e.StatusCode, e.Err, e.Body)
	}
	return fmt.Sprintf("notification delivery: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingColumns      = fmt.Errorf("missing required columns")
	ErrInvalidFieldCount   = fmt.Errorf("invalid field count")
	ErrEmptyInput          = fmt.Errorf("empty input")
	ErrDeliveryFailed      = fmt.Errorf("delivery failed")
	ErrDeliveryRejected    = fmt.Errorf("delivery rejected")
	ErrNoSuccessStatuses   = fmt.Errorf("no success statuses configured")
	ErrMissingInputPath    = fmt.Errorf("input path is required")
	ErrUnsupportedFormat   = fmt.Errorf("unsupported output format")
	ErrUnsupportedLogLevel = fmt.Errorf("unsupported log level")
	ErrInvalidTimeout      = fmt.Errorf("timeout must be positive")
)
