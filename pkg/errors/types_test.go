package errors

import (
	"errors"
	"fmt"
	"testing"
)

// TestAuthErrorCreation tests creating AuthError
func TestAuthErrorCreation(t *testing.T) {
	baseErr := fmt.Errorf("token rejected")
	authErr := NewAuthError("login", baseErr, "user@example.com")

	if authErr.Account != "user@example.com" {
		t.Errorf("Expected Account 'user@example.com', got '%s'", authErr.Account)
	}
	if authErr.Severity != SeverityError {
		t.Errorf("Expected SeverityError, got %v", authErr.Severity)
	}
	if authErr.Code != 2 {
		t.Errorf("Expected Code 2, got %d", authErr.Code)
	}

	errMsg := authErr.Error()
	if errMsg == "" {
		t.Error("Expected non-empty error message")
	}
	t.Logf("AuthError message: %s", errMsg)
}

// TestTransportErrorCreation tests creating TransportError
func TestTransportErrorCreation(t *testing.T) {
	baseErr := fmt.Errorf("connection refused")
	transportErr := NewTransportError("get_devices", baseErr, "us")

	if transportErr.Endpoint != "us" {
		t.Errorf("Expected Endpoint 'us', got '%s'", transportErr.Endpoint)
	}
	if transportErr.Severity != SeverityWarning {
		t.Errorf("Expected SeverityWarning, got %v", transportErr.Severity)
	}

	errMsg := transportErr.Error()
	if errMsg == "" {
		t.Error("Expected non-empty error message")
	}
}

// TestSessionErrorCreation tests creating SessionError
func TestSessionErrorCreation(t *testing.T) {
	sessionErr := NewSessionError("invoke_action", "dev-123")

	if sessionErr.DeviceKey != "dev-123" {
		t.Errorf("Expected DeviceKey 'dev-123', got '%s'", sessionErr.DeviceKey)
	}
	if sessionErr.Err == nil {
		t.Error("Expected a synthesized underlying error")
	}
}

// TestRefreshErrorCreation tests creating RefreshError
func TestRefreshErrorCreation(t *testing.T) {
	baseErr := fmt.Errorf("token rejected again")
	refreshErr := NewRefreshError("refresh", baseErr, 2)

	if refreshErr.Attempts != 2 {
		t.Errorf("Expected Attempts 2, got %d", refreshErr.Attempts)
	}
	errMsg := refreshErr.Error()
	if errMsg == "" {
		t.Error("Expected non-empty error message")
	}
	t.Logf("RefreshError message: %s", errMsg)
}

// TestNoDevicesErrorDistinctFromAuth tests that validation can tell an
// empty account apart from rejected credentials
func TestNoDevicesErrorDistinctFromAuth(t *testing.T) {
	var err error = NewNoDevicesError("validate", "user@example.com")

	var noDevices *NoDevicesError
	if !errors.As(err, &noDevices) {
		t.Fatal("Expected errors.As to find NoDevicesError")
	}
	var auth *AuthError
	if errors.As(err, &auth) {
		t.Error("NoDevicesError must not match AuthError")
	}
}

// TestErrorUnwrapping tests error unwrapping through the base type
func TestErrorUnwrapping(t *testing.T) {
	baseErr := fmt.Errorf("underlying failure")
	authErr := NewAuthError("login", baseErr, "user@example.com")

	if !errors.Is(authErr, baseErr) {
		t.Error("Expected errors.Is to reach the underlying error")
	}
	if unwrapped := errors.Unwrap(&authErr.BridgeError); unwrapped != baseErr {
		t.Errorf("Expected unwrap to return base error, got %v", unwrapped)
	}
}

// TestSeverityString tests severity string representations
func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity ErrorSeverity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityWarning, "WARNING"},
		{SeverityError, "ERROR"},
		{SeverityCritical, "CRITICAL"},
		{ErrorSeverity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.expected {
			t.Errorf("Expected '%s', got '%s'", tt.expected, got)
		}
	}
}
