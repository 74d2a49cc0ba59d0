package points

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pecron-mqtt-bridge/pkg/logger"
	"pecron-mqtt-bridge/pkg/notify"
	"pecron-mqtt-bridge/pkg/pecron"
)

// Controller is the request-forwarding handle the coordinator exposes to
// adapters. Adapters never touch the session directly.
type Controller interface {
	InvokeAction(ctx context.Context, deviceKey, action string, enabled bool) (pecron.ActionResult, error)
	RequestRefresh()
}

// Notifier is the subset of the notice manager switches need
type Notifier interface {
	Notify(id, title, message string)
}

// Follow-up refresh delays after a successful control action, to converge
// with the state the device eventually reports
var defaultFollowUps = []time.Duration{5 * time.Second, 15 * time.Second}

// SwitchAdapter binds one controllable point on one device. It applies the
// optimistic-update protocol: report the requested state immediately, revert
// if the action fails, and clear the override on the next snapshot so reads
// come from confirmed data again.
type SwitchAdapter struct {
	desc       SwitchDescription
	deviceKey  string
	deviceName string
	uniqueID   string

	controller Controller
	notifier   Notifier
	emit       func(on bool, known bool)
	followUps  []time.Duration

	mu         sync.Mutex
	optimistic *bool
	confirmed  *bool
}

// NewSwitchAdapter creates an adapter for one switch point. emit pushes the
// displayed state outward (to MQTT) and may be nil.
func NewSwitchAdapter(desc SwitchDescription, device pecron.Device, controller Controller, notifier Notifier, emit func(on bool, known bool)) *SwitchAdapter {
	return &SwitchAdapter{
		desc:       desc,
		deviceKey:  device.DeviceKey,
		deviceName: device.DeviceName,
		uniqueID:   fmt.Sprintf("pecron_%s_%s", device.DeviceKey, desc.Key),
		controller: controller,
		notifier:   notifier,
		emit:       emit,
		followUps:  defaultFollowUps,
	}
}

// SetFollowUps overrides the follow-up refresh schedule (tests)
func (a *SwitchAdapter) SetFollowUps(delays []time.Duration) {
	a.followUps = delays
}

// UniqueID returns the stable point identifier
func (a *SwitchAdapter) UniqueID() string {
	return a.uniqueID
}

// IsOn returns the displayed state: the optimistic override while a control
// request is converging, otherwise the last confirmed snapshot state.
func (a *SwitchAdapter) IsOn() (on bool, known bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.optimistic != nil {
		return *a.optimistic, true
	}
	if a.confirmed != nil {
		return *a.confirmed, true
	}
	return false, false
}

// Update absorbs the device's latest property set from a published snapshot.
// The optimistic override is cleared so subsequent reads come from confirmed
// data; present is false when the device was missing from the snapshot.
func (a *SwitchAdapter) Update(props pecron.PropertySet, present bool) {
	a.mu.Lock()
	a.optimistic = nil
	if present {
		if on, ok := props.Bool(a.desc.Key); ok {
			v := on
			a.confirmed = &v
		}
	}
	on, known := a.displayedLocked()
	a.mu.Unlock()

	if a.emit != nil {
		a.emit(on, known)
	}
}

// Set applies the optimistic-update protocol for one control request
func (a *SwitchAdapter) Set(ctx context.Context, enabled bool) error {
	a.mu.Lock()
	previous := a.optimistic
	if previous == nil {
		previous = a.confirmed
	}
	v := enabled
	a.optimistic = &v
	a.mu.Unlock()

	// Instant feedback before the backend confirms
	if a.emit != nil {
		a.emit(enabled, true)
	}

	result, err := a.controller.InvokeAction(ctx, a.deviceKey, a.desc.Action, enabled)
	if err != nil {
		a.revert(previous)
		a.notifier.Notify(
			notify.ControlErrorID(a.uniqueID),
			"Pecron: Control Error",
			fmt.Sprintf("Error controlling %s %s: %v", a.deviceName, a.desc.Name, err),
		)
		return err
	}
	if !result.Success {
		a.revert(previous)
		message := result.Message
		if message == "" {
			message = "unknown error"
		}
		a.notifier.Notify(
			notify.ControlFailedID(a.uniqueID),
			"Pecron: Control Failed",
			fmt.Sprintf("Failed to %s %s %s: %s", onOff(enabled), a.deviceName, a.desc.Name, message),
		)
		return fmt.Errorf("control rejected: %s", message)
	}

	logger.LogInfo("Successfully %s %s %s", onOffPast(enabled), a.deviceName, a.desc.Name)

	// Converge with the device-reported state: one immediate refresh plus
	// delayed follow-ups. The optimistic override clears on the next
	// snapshot the coordinator publishes.
	a.controller.RequestRefresh()
	for _, delay := range a.followUps {
		time.AfterFunc(delay, a.controller.RequestRefresh)
	}
	return nil
}

// revert rolls the displayed state back to the last confirmed one
func (a *SwitchAdapter) revert(previous *bool) {
	a.mu.Lock()
	a.optimistic = previous
	on, known := a.displayedLocked()
	a.mu.Unlock()

	if a.emit != nil {
		a.emit(on, known)
	}
}

func (a *SwitchAdapter) displayedLocked() (bool, bool) {
	if a.optimistic != nil {
		return *a.optimistic, true
	}
	if a.confirmed != nil {
		return *a.confirmed, true
	}
	return false, false
}

func onOff(enabled bool) string {
	if enabled {
		return "turn on"
	}
	return "turn off"
}

func onOffPast(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
