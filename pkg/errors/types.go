package errors

import (
	"fmt"
)

// ErrorSeverity defines the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// BridgeError is the base error type for all bridge errors
type BridgeError struct {
	Op       string        // Operation that failed
	Err      error         // Underlying error
	Severity ErrorSeverity // Error severity
	Code     int           // Diagnostic code for MQTT
}

// Error implements the error interface
func (e *BridgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Severity, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Op)
}

// Unwrap returns the underlying error
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// AuthError represents a rejected login or an invalidated token on the
// Pecron cloud API. The coordinator resets its session when it sees one.
type AuthError struct {
	BridgeError
	Account string
}

// NewAuthError creates a new authentication error
func NewAuthError(op string, err error, account string) *AuthError {
	return &AuthError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      err,
			Severity: SeverityError,
			Code:     2, // Authentication error diagnostic code
		},
		Account: account,
	}
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.Account != "" {
		return fmt.Sprintf("[%s] Authentication for '%s': %s: %v",
			e.Severity, e.Account, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] Authentication: %s: %v", e.Severity, e.Op, e.Err)
}

// TransportError represents network-level failures talking to the cloud API
type TransportError struct {
	BridgeError
	Endpoint string
}

// NewTransportError creates a new transport error
func NewTransportError(op string, err error, endpoint string) *TransportError {
	return &TransportError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      err,
			Severity: SeverityWarning,
			Code:     3, // Transport error diagnostic code
		},
		Endpoint: endpoint,
	}
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("[%s] Transport to '%s': %s: %v",
			e.Severity, e.Endpoint, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] Transport: %s: %v", e.Severity, e.Op, e.Err)
}

// SessionError is returned when an operation needs a live session and
// the coordinator has none (not yet established, or invalidated)
type SessionError struct {
	BridgeError
	DeviceKey string
}

// NewSessionError creates a new session-unavailable error
func NewSessionError(op string, deviceKey string) *SessionError {
	return &SessionError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      fmt.Errorf("no active session"),
			Severity: SeverityError,
			Code:     4, // Session error diagnostic code
		},
		DeviceKey: deviceKey,
	}
}

// Error implements the error interface
func (e *SessionError) Error() string {
	if e.DeviceKey != "" {
		return fmt.Sprintf("[%s] Session for device '%s': %s: %v",
			e.Severity, e.DeviceKey, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] Session: %s: %v", e.Severity, e.Op, e.Err)
}

// RefreshError is returned when a full refresh cycle failed even after the
// in-cycle session reset retry was spent
type RefreshError struct {
	BridgeError
	Attempts int
}

// NewRefreshError creates a new refresh-failed error
func NewRefreshError(op string, err error, attempts int) *RefreshError {
	return &RefreshError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      err,
			Severity: SeverityError,
			Code:     5, // Refresh error diagnostic code
		},
		Attempts: attempts,
	}
}

// Error implements the error interface
func (e *RefreshError) Error() string {
	return fmt.Sprintf("[%s] Refresh failed after %d attempt(s): %s: %v",
		e.Severity, e.Attempts, e.Op, e.Err)
}

// NoDevicesError is a validation failure for an account that authenticates
// fine but has no devices registered. Kept distinct from AuthError so setup
// can tell the two apart.
type NoDevicesError struct {
	BridgeError
	Account string
}

// NewNoDevicesError creates a new no-devices validation error
func NewNoDevicesError(op string, account string) *NoDevicesError {
	return &NoDevicesError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      fmt.Errorf("no devices found on account"),
			Severity: SeverityWarning,
			Code:     6, // No-devices diagnostic code
		},
		Account: account,
	}
}

// Error implements the error interface
func (e *NoDevicesError) Error() string {
	return fmt.Sprintf("[%s] Account '%s': %s: %v",
		e.Severity, e.Account, e.Op, e.Err)
}

// ConfigError represents configuration errors
type ConfigError struct {
	BridgeError
	Field string
	Value interface{}
}

// NewConfigError creates a new configuration error
func NewConfigError(op string, err error, field string) *ConfigError {
	return &ConfigError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      err,
			Severity: SeverityCritical, // Config errors are critical
			Code:     1,                // Config error diagnostic code
		},
		Field: field,
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] Configuration field '%s': %s: %v",
			e.Severity, e.Field, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] Configuration: %s: %v",
		e.Severity, e.Op, e.Err)
}
