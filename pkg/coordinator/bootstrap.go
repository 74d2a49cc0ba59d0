package coordinator

import (
	"context"
	"time"

	bridgeerr "pecron-mqtt-bridge/pkg/errors"
	"pecron-mqtt-bridge/pkg/logger"
	"pecron-mqtt-bridge/pkg/notify"
)

// Notifier posts persistent user-visible notices. Identifiers are stable so
// a repeated occurrence updates the existing notice instead of duplicating it.
type Notifier interface {
	Notify(id, title, message string)
}

// BootstrapPolicy is the coarse retry applied around the entire first-ever
// refresh. It is independent of the in-cycle one-shot session reset.
type BootstrapPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultBootstrapPolicy retries 3 times with 5s/10s/20s delays
func DefaultBootstrapPolicy() BootstrapPolicy {
	return BootstrapPolicy{MaxAttempts: 3, InitialDelay: 5 * time.Second}
}

// Bootstrap performs the initial refresh. Authentication and transport
// failures are retried with doubling delays; once the attempts are exhausted
// the coordinator publishes an empty snapshot and records a degraded-state
// notice so setup completes instead of aborting. A zero-device account also
// gets its own notice.
func (c *Coordinator) Bootstrap(ctx context.Context, policy BootstrapPolicy, notifier Notifier) error {
	if policy.MaxAttempts <= 0 {
		policy = DefaultBootstrapPolicy()
	}

	delay := policy.InitialDelay
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		_, err := c.Refresh(ctx)
		if err == nil {
			if c.Stats().KnownDevices == 0 && notifier != nil {
				notifier.Notify(
					notify.NoDevicesID(c.email),
					"Pecron: No Devices Found",
					"No Pecron devices found on your account. Check that devices are registered in the Pecron app, then reload the bridge.",
				)
			}
			return nil
		}

		switch bridgeerr.Classify(err) {
		case bridgeerr.ClassAuthentication, bridgeerr.ClassTransport:
			// Retryable during bootstrap only
		default:
			return err
		}

		if attempt == policy.MaxAttempts {
			logger.LogError("Failed to fetch initial data for %s after %d attempts: %v",
				c.email, policy.MaxAttempts, err)
			if notifier != nil {
				notifier.Notify(
					notify.ConnectionFailedID(c.email),
					"Pecron: Connection Failed",
					"Failed to connect to the Pecron API after repeated attempts. Check your internet connection and credentials, then reload the bridge.",
				)
			}
			// Degraded but running: publish an empty snapshot so consumers
			// can tell "fetched nothing" from "never fetched"
			c.PublishEmpty()
			return nil
		}

		logger.LogWarn("Initial data fetch failed for %s (attempt %d/%d): %v. Retrying in %v...",
			c.email, attempt, policy.MaxAttempts, err, delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2 // Exponential backoff
	}
	return nil
}
