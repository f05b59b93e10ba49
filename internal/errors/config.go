// ABOUTME: Configuration validation errors
// ABOUTME: Names the offending key so operators can fix config.yaml or NETCMD_* env vars

package errors

import "fmt"

type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func NewConfigError(field string, value interface{}, reason string) *ConfigError {
	return &ConfigError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v (%s)", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Type() string { return "config_error" }
