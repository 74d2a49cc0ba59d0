package points

import (
	"pecron-mqtt-bridge/pkg/pecron"
)

// Property codes used by the availability policy
const (
	CodeInputPower       = "total_input_power"
	CodeOutputPower      = "total_output_power"
	CodeTimeToFull       = "remain_charging_time"
	CodeTimeToEmpty      = "remain_discharging_time"
	CodeBatteryPercent   = "battery_percentage"
	CodeACOutputVoltage  = "ac_output_voltage"
	CodeACOutputPower    = "ac_output_power"
	CodeACOutputFreq     = "ac_output_frequency"
	CodeUPSStatus        = "ups_status"
	CodeOnline           = "online"
	CodeACSwitch         = "ac_switch"
	CodeDCSwitch         = "dc_switch"
)

// SensorDescription describes one read-only measurement point
type SensorDescription struct {
	Key         string
	Name        string
	Unit        string
	DeviceClass string
	StateClass  string
	Icon        string

	// AlwaysCreate bypasses TSL filtering
	AlwaysCreate bool
	// SmartAvailability applies the power-mode suppression policy
	SmartAvailability bool
}

// Sensors is the catalog of measurement points per device
var Sensors = []SensorDescription{
	{
		Key:         CodeBatteryPercent,
		Name:        "Battery Percentage",
		Unit:        "%",
		DeviceClass: "battery",
		StateClass:  "measurement",
		Icon:        "mdi:battery",
	},
	{
		Key:         CodeInputPower,
		Name:        "Input Power",
		Unit:        "W",
		DeviceClass: "power",
		StateClass:  "measurement",
		Icon:        "mdi:flash",
	},
	{
		Key:         CodeOutputPower,
		Name:        "Output Power",
		Unit:        "W",
		DeviceClass: "power",
		StateClass:  "measurement",
		Icon:        "mdi:flash",
	},
	{
		Key:               CodeTimeToFull,
		Name:              "Time to Full",
		Unit:              "min",
		DeviceClass:       "duration",
		StateClass:        "measurement",
		Icon:              "mdi:battery-clock",
		AlwaysCreate:      true,
		SmartAvailability: true,
	},
	{
		Key:               CodeTimeToEmpty,
		Name:              "Time to Empty",
		Unit:              "min",
		DeviceClass:       "duration",
		StateClass:        "measurement",
		Icon:              "mdi:battery-clock-outline",
		AlwaysCreate:      true,
		SmartAvailability: true,
	},
	{
		Key:         CodeACOutputVoltage,
		Name:        "AC Output Voltage",
		Unit:        "V",
		DeviceClass: "voltage",
		StateClass:  "measurement",
		Icon:        "mdi:sine-wave",
	},
	{
		Key:         CodeACOutputPower,
		Name:        "AC Output Power",
		Unit:        "W",
		DeviceClass: "power",
		StateClass:  "measurement",
		Icon:        "mdi:flash",
	},
	{
		Key:         CodeACOutputFreq,
		Name:        "AC Output Frequency",
		Unit:        "Hz",
		DeviceClass: "frequency",
		StateClass:  "measurement",
		Icon:        "mdi:sine-wave",
	},
}

// BinarySensorDescription describes one read-only on/off point
type BinarySensorDescription struct {
	Key         string
	Name        string
	DeviceClass string
	IconTrue    string
	IconFalse   string

	// FromDevice reads the device identity record instead of the property set
	FromDevice bool
}

// BinarySensors is the catalog of on/off points per device
var BinarySensors = []BinarySensorDescription{
	{
		Key:       CodeUPSStatus,
		Name:      "UPS Mode",
		IconTrue:  "mdi:uninterruptible-power-supply",
		IconFalse: "mdi:power-plug-off",
	},
	{
		Key:         CodeOnline,
		Name:        "Online",
		DeviceClass: "connectivity",
		IconTrue:    "mdi:check-circle",
		IconFalse:   "mdi:close-circle",
		FromDevice:  true,
	},
}

// SwitchDescription describes one controllable point and the vendor action
// behind it
type SwitchDescription struct {
	Key    string
	Name   string
	Action string
	Icon   string
}

// Switches is the catalog of controllable points per device
var Switches = []SwitchDescription{
	{
		Key:    CodeACSwitch,
		Name:   "AC Output",
		Action: pecron.ActionSetACOutput,
		Icon:   "mdi:power-socket-us",
	},
	{
		Key:    CodeDCSwitch,
		Name:   "DC Output",
		Action: pecron.ActionSetDCOutput,
		Icon:   "mdi:power-socket-dc",
	},
}

// SupportedByTSL reports whether a product's TSL lists the point's property.
// The cloud maps "<code>_hm" TSL entries onto the plain code, so both count.
// A nil TSL means the product's property list could not be fetched;
// everything is allowed then.
func SupportedByTSL(key string, tsl []pecron.TSLProperty) bool {
	if tsl == nil {
		return true
	}
	for _, prop := range tsl {
		if prop.Code == key || prop.Code == key+"_hm" {
			return true
		}
	}
	return false
}
