package simulator

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the simulator answered without any payload.
var ErrEmptyResponse = errors.New("no data returned by the simulator")

// ConfigurationError reports a setup problem, typically a missing API key.
// Retrying will not help: the environment must be fixed first.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "simulator is not configured: " + e.Reason }

// TransportError wraps a failure of the call to the simulator itself.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("simulator call failed: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError reports a payload that does not match the expected shape.
type SchemaError struct {
	Path   string // json path of the offending value, "$" for the whole document
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid simulator payload at %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid simulator payload at %s: %s", e.Path, e.Reason)
}
func (e *SchemaError) Unwrap() error { return e.Err }

// IsConfiguration reports whether err is, or wraps, a *ConfigurationError.
func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}
