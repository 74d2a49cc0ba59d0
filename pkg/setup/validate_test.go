package setup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	bridgeerr "pecron-mqtt-bridge/pkg/errors"
	"pecron-mqtt-bridge/pkg/pecron"
)

// stubAPI is a minimal pecron.API for validation tests
type stubAPI struct {
	loginErr   error
	devicesErr error
	devices    []pecron.Device
	closed     bool
}

func (s *stubAPI) Login(ctx context.Context, email, password string) error { return s.loginErr }

func (s *stubAPI) GetDevices(ctx context.Context) ([]pecron.Device, error) {
	if s.devicesErr != nil {
		return nil, s.devicesErr
	}
	return s.devices, nil
}

func (s *stubAPI) GetDeviceProperties(ctx context.Context, device pecron.Device) (pecron.PropertySet, error) {
	return pecron.PropertySet{}, nil
}

func (s *stubAPI) GetProductTSL(ctx context.Context, productKey string) ([]pecron.TSLProperty, error) {
	return nil, nil
}

func (s *stubAPI) InvokeAction(ctx context.Context, device pecron.Device, action string, enabled bool) (pecron.ActionResult, error) {
	return pecron.ActionResult{}, nil
}

func (s *stubAPI) Close() error {
	s.closed = true
	return nil
}

func factoryFor(api *stubAPI) APIFactory {
	return func(region string) (pecron.API, error) { return api, nil }
}

// TestValidateSuccess tests the happy path including session cleanup
func TestValidateSuccess(t *testing.T) {
	api := &stubAPI{devices: []pecron.Device{{DeviceKey: "dev-1", DeviceName: "Garage E2000"}}}

	result, err := ValidateCredentials(context.Background(), factoryFor(api), "user@example.com", "secret", "US")
	if err != nil {
		t.Fatalf("Expected validation to succeed, got %v", err)
	}
	if len(result.Devices) != 1 {
		t.Errorf("Expected 1 device, got %d", len(result.Devices))
	}
	if !api.closed {
		t.Error("Expected the session to be closed after validation")
	}
}

// TestValidateRejectedCredentials tests the auth failure mapping
func TestValidateRejectedCredentials(t *testing.T) {
	api := &stubAPI{loginErr: &pecron.APIError{Code: 401, Message: "unauthorized"}}

	_, err := ValidateCredentials(context.Background(), factoryFor(api), "user@example.com", "wrong", "US")
	var authErr *bridgeerr.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %T: %v", err, err)
	}
	if !api.closed {
		t.Error("Expected the session to be closed after a failed login")
	}
}

// TestValidateUnreachableCloud tests the transport failure mapping
func TestValidateUnreachableCloud(t *testing.T) {
	api := &stubAPI{loginErr: fmt.Errorf("connection refused")}

	_, err := ValidateCredentials(context.Background(), factoryFor(api), "user@example.com", "secret", "EU")
	var transportErr *bridgeerr.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %T: %v", err, err)
	}
}

// TestValidateEmptyAccount tests that zero devices is distinct from bad
// credentials
func TestValidateEmptyAccount(t *testing.T) {
	api := &stubAPI{}

	_, err := ValidateCredentials(context.Background(), factoryFor(api), "user@example.com", "secret", "US")
	var noDevices *bridgeerr.NoDevicesError
	if !errors.As(err, &noDevices) {
		t.Fatalf("Expected NoDevicesError, got %T: %v", err, err)
	}
	var authErr *bridgeerr.AuthError
	if errors.As(err, &authErr) {
		t.Error("An empty account must not look like rejected credentials")
	}
}

// TestValidateDeviceListAuthFailure tests auth mapping after a good login
func TestValidateDeviceListAuthFailure(t *testing.T) {
	api := &stubAPI{devicesErr: &pecron.APIError{Code: 5032, Message: "Token validation failed"}}

	_, err := ValidateCredentials(context.Background(), factoryFor(api), "user@example.com", "secret", "US")
	var authErr *bridgeerr.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %T: %v", err, err)
	}
}
