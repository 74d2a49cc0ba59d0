package points

import (
	"pecron-mqtt-bridge/pkg/pecron"
)

// PowerMode is the device operating mode derived from concurrent input and
// output power flow
type PowerMode int

const (
	ModeIdle PowerMode = iota
	ModeCharging
	ModeDischarging
	ModeUPS // charging and discharging at once (pass-through)
)

// String returns the string representation of the power mode
func (m PowerMode) String() string {
	switch m {
	case ModeCharging:
		return "charging"
	case ModeDischarging:
		return "discharging"
	case ModeUPS:
		return "ups"
	default:
		return "idle"
	}
}

// ModeFor classifies the device's operating mode from the two power fields.
// Missing and negative readings normalize to zero.
func ModeFor(props pecron.PropertySet) PowerMode {
	input, ok := props.Number(CodeInputPower)
	if !ok || input < 0 {
		input = 0
	}
	output, ok := props.Number(CodeOutputPower)
	if !ok || output < 0 {
		output = 0
	}

	switch {
	case input > 0 && output > 0:
		return ModeUPS
	case input > 0:
		return ModeCharging
	case output > 0:
		return ModeDischarging
	default:
		return ModeIdle
	}
}

// SensorValue applies the display policy for one sensor: the raw value, or
// not-available when the property is absent or suppressed by the smart
// availability policy. A reported value of exactly zero is displayable
// whenever the mode permits display.
func SensorValue(desc SensorDescription, props pecron.PropertySet) (pecron.Value, bool) {
	value, ok := props.Lookup(desc.Key)
	if !ok {
		return pecron.Value{}, false
	}

	if desc.SmartAvailability {
		mode := ModeFor(props)
		switch desc.Key {
		case CodeTimeToFull:
			// Only meaningful while energy is flowing in
			if mode != ModeCharging && mode != ModeUPS {
				return pecron.Value{}, false
			}
		case CodeTimeToEmpty:
			// Only meaningful while energy is flowing out
			if mode != ModeDischarging && mode != ModeUPS {
				return pecron.Value{}, false
			}
		}
	}

	return value, true
}

// BinaryValue applies the display policy for one binary sensor. The online
// flag comes from the device identity record; everything else reads the
// property set.
func BinaryValue(desc BinarySensorDescription, device pecron.Device, props pecron.PropertySet) (bool, bool) {
	if desc.FromDevice {
		return device.Online, true
	}
	return props.Bool(desc.Key)
}
