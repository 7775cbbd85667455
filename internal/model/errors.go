package model

import (
	"errors"
	"fmt"
)

// ValidationError reports a threshold or field outside its documented
// domain. It is raised before any query is processed, never mid-run.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation returns true if the error chain contains a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConfigurationError reports that a lineage-mapping source could not be
// loaded. Results computed without lineage data would be silently
// degraded, so this aborts the run.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("lineage source %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfiguration returns true if the error chain contains a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IOError reports a failed read or write of an input or output file.
// Path names the file; Op is the operation that failed.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsIO returns true if the error chain contains an IOError.
func IsIO(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe)
}
