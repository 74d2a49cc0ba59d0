package mqtt

import (
	"pecron-mqtt-bridge/pkg/config"
	"pecron-mqtt-bridge/pkg/pecron"
)

// DeviceInfo is the Home Assistant device registry block shared by all of a
// device's points
type DeviceInfo struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	HWVersion    string   `json:"hw_version,omitempty"`
}

// NewDeviceInfo builds the registry block for one Pecron device. The stable
// device key doubles as identifier and hardware id.
func NewDeviceInfo(device pecron.Device) DeviceInfo {
	return DeviceInfo{
		Name:         device.DeviceName,
		Identifiers:  []string{device.DeviceKey},
		Manufacturer: config.BridgeManufacturer,
		Model:        device.ProductName,
		HWVersion:    device.DeviceKey,
	}
}

// SensorConfig is the discovery payload for a measurement point
type SensorConfig struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	StateTopic          string     `json:"state_topic"`
	UnitOfMeasurement   string     `json:"unit_of_measurement,omitempty"`
	DeviceClass         string     `json:"device_class,omitempty"`
	StateClass          string     `json:"state_class,omitempty"`
	Icon                string     `json:"icon,omitempty"`
	Device              DeviceInfo `json:"device"`
	ValueTemplate       string     `json:"value_template"`
	AvailabilityTopic   string     `json:"availability_topic"`
	PayloadAvailable    string     `json:"payload_available"`
	PayloadNotAvailable string     `json:"payload_not_available"`
}

// BinarySensorConfig is the discovery payload for an on/off point
type BinarySensorConfig struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	StateTopic          string     `json:"state_topic"`
	DeviceClass         string     `json:"device_class,omitempty"`
	Icon                string     `json:"icon,omitempty"`
	Device              DeviceInfo `json:"device"`
	PayloadOn           string     `json:"payload_on"`
	PayloadOff          string     `json:"payload_off"`
	AvailabilityTopic   string     `json:"availability_topic"`
	PayloadAvailable    string     `json:"payload_available"`
	PayloadNotAvailable string     `json:"payload_not_available"`
}

// SwitchConfig is the discovery payload for a controllable point
type SwitchConfig struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	StateTopic          string     `json:"state_topic"`
	CommandTopic        string     `json:"command_topic"`
	DeviceClass         string     `json:"device_class,omitempty"`
	Icon                string     `json:"icon,omitempty"`
	Device              DeviceInfo `json:"device"`
	PayloadOn           string     `json:"payload_on"`
	PayloadOff          string     `json:"payload_off"`
	AvailabilityTopic   string     `json:"availability_topic"`
	PayloadAvailable    string     `json:"payload_available"`
	PayloadNotAvailable string     `json:"payload_not_available"`
}

// Switch wire payloads
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)
