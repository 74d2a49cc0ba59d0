package setup

import (
	"context"
	"fmt"

	"pecron-mqtt-bridge/pkg/errors"
	"pecron-mqtt-bridge/pkg/pecron"
)

// APIFactory creates a vendor API client for a region
type APIFactory func(region string) (pecron.API, error)

// ValidationResult reports what a successful credential check found
type ValidationResult struct {
	Account string
	Region  string
	Devices []pecron.Device
}

// ValidateCredentials authenticates against the vendor cloud, lists the
// account's devices and closes the session again. It distinguishes rejected
// credentials, unreachable cloud and an account with no devices so a caller
// can surface the right message before the bridge is started.
func ValidateCredentials(ctx context.Context, factory APIFactory, email, password, region string) (*ValidationResult, error) {
	if factory == nil {
		factory = func(region string) (pecron.API, error) {
			return pecron.NewClient(region)
		}
	}

	api, err := factory(region)
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}
	defer api.Close()

	if err := api.Login(ctx, email, password); err != nil {
		switch errors.Classify(err) {
		case errors.ClassAuthentication:
			return nil, errors.NewAuthError("validate login", err, email)
		case errors.ClassTransport:
			return nil, errors.NewTransportError("validate login", err, region)
		default:
			return nil, fmt.Errorf("login failed: %w", err)
		}
	}

	devices, err := api.GetDevices(ctx)
	if err != nil {
		switch errors.Classify(err) {
		case errors.ClassAuthentication:
			return nil, errors.NewAuthError("validate device list", err, email)
		case errors.ClassTransport:
			return nil, errors.NewTransportError("validate device list", err, region)
		default:
			return nil, fmt.Errorf("listing devices: %w", err)
		}
	}
	if len(devices) == 0 {
		return nil, errors.NewNoDevicesError("validate", email)
	}

	return &ValidationResult{Account: email, Region: region, Devices: devices}, nil
}
