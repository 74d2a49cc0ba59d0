package points

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pecron-mqtt-bridge/pkg/pecron"
)

func props(values map[string]pecron.Value) pecron.PropertySet {
	return pecron.NewPropertySet(values)
}

func numbers(values map[string]float64) pecron.PropertySet {
	typed := make(map[string]pecron.Value, len(values))
	for k, v := range values {
		typed[k] = pecron.NumberValue(v)
	}
	return props(typed)
}

func descByKey(t *testing.T, key string) SensorDescription {
	t.Helper()
	for _, d := range Sensors {
		if d.Key == key {
			return d
		}
	}
	t.Fatalf("no sensor description for %q", key)
	return SensorDescription{}
}

func TestModeFor(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		output float64
		want   PowerMode
	}{
		{"both zero", 0, 0, ModeIdle},
		{"input only", 150, 0, ModeCharging},
		{"output only", 0, 300, ModeDischarging},
		{"both flowing", 150, 300, ModeUPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := numbers(map[string]float64{
				CodeInputPower:  tt.input,
				CodeOutputPower: tt.output,
			})
			assert.Equal(t, tt.want, ModeFor(ps))
		})
	}
}

func TestModeForMissingAndNegativeNormalizeToZero(t *testing.T) {
	// No power fields at all
	assert.Equal(t, ModeIdle, ModeFor(numbers(nil)))

	// Negative readings clamp to zero
	assert.Equal(t, ModeIdle, ModeFor(numbers(map[string]float64{
		CodeInputPower:  -5,
		CodeOutputPower: -1,
	})))

	// One missing, one negative, one real
	assert.Equal(t, ModeDischarging, ModeFor(numbers(map[string]float64{
		CodeInputPower:  -5,
		CodeOutputPower: 200,
	})))
}

func TestSensorValueAbsentPropertyIsUnavailable(t *testing.T) {
	desc := descByKey(t, CodeBatteryPercent)
	_, ok := SensorValue(desc, numbers(map[string]float64{CodeInputPower: 100}))
	assert.False(t, ok, "missing property must read unavailable")
}

func TestSensorValuePlainSensorIgnoresMode(t *testing.T) {
	desc := descByKey(t, CodeBatteryPercent)
	v, ok := SensorValue(desc, numbers(map[string]float64{
		CodeBatteryPercent: 85,
	}))
	assert.True(t, ok)
	assert.Equal(t, 85.0, v.Number())
}

func TestSensorValueTimeToFullAvailability(t *testing.T) {
	desc := descByKey(t, CodeTimeToFull)

	tests := []struct {
		name      string
		input     float64
		output    float64
		available bool
	}{
		{"charging", 500, 0, true},
		{"ups", 500, 200, true},
		{"idle", 0, 0, false},
		{"discharging", 0, 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := numbers(map[string]float64{
				CodeInputPower:  tt.input,
				CodeOutputPower: tt.output,
				CodeTimeToFull:  95,
			})
			v, ok := SensorValue(desc, ps)
			assert.Equal(t, tt.available, ok)
			if tt.available {
				assert.Equal(t, 95.0, v.Number())
			}
		})
	}
}

func TestSensorValueTimeToEmptyAvailability(t *testing.T) {
	desc := descByKey(t, CodeTimeToEmpty)

	tests := []struct {
		name      string
		input     float64
		output    float64
		available bool
	}{
		{"discharging", 0, 200, true},
		{"ups", 500, 200, true},
		{"idle", 0, 0, false},
		{"charging", 500, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := numbers(map[string]float64{
				CodeInputPower:  tt.input,
				CodeOutputPower: tt.output,
				CodeTimeToEmpty: 340,
			})
			v, ok := SensorValue(desc, ps)
			assert.Equal(t, tt.available, ok)
			if tt.available {
				assert.Equal(t, 340.0, v.Number())
			}
		})
	}
}

func TestSensorValueZeroIsDisplayable(t *testing.T) {
	desc := descByKey(t, CodeTimeToEmpty)
	ps := numbers(map[string]float64{
		CodeOutputPower: 200,
		CodeTimeToEmpty: 0,
	})
	v, ok := SensorValue(desc, ps)
	assert.True(t, ok, "a reported zero must be shown, not suppressed")
	assert.Equal(t, 0.0, v.Number())
}

func TestSensorValueMissingBeatsSmartAvailability(t *testing.T) {
	// Mode would permit display, but the property itself is absent
	desc := descByKey(t, CodeTimeToFull)
	ps := numbers(map[string]float64{CodeInputPower: 500})
	_, ok := SensorValue(desc, ps)
	assert.False(t, ok)
}

func TestBinaryValueFromDevice(t *testing.T) {
	var online BinarySensorDescription
	for _, d := range BinarySensors {
		if d.Key == CodeOnline {
			online = d
		}
	}

	device := pecron.Device{DeviceKey: "dev-1", Online: true}
	on, ok := BinaryValue(online, device, numbers(nil))
	assert.True(t, ok)
	assert.True(t, on, "online flag comes from the device record")
}

func TestBinaryValueFromProperties(t *testing.T) {
	var ups BinarySensorDescription
	for _, d := range BinarySensors {
		if d.Key == CodeUPSStatus {
			ups = d
		}
	}

	device := pecron.Device{DeviceKey: "dev-1"}
	ps := props(map[string]pecron.Value{CodeUPSStatus: pecron.BoolValue(true)})
	on, ok := BinaryValue(ups, device, ps)
	assert.True(t, ok)
	assert.True(t, on)

	_, ok = BinaryValue(ups, device, numbers(nil))
	assert.False(t, ok, "missing property must read unavailable")
}

func TestSupportedByTSL(t *testing.T) {
	tsl := []pecron.TSLProperty{
		{Code: CodeBatteryPercent},
		{Code: CodeInputPower + "_hm"},
	}

	assert.True(t, SupportedByTSL(CodeBatteryPercent, tsl))
	assert.True(t, SupportedByTSL(CodeInputPower, tsl), "_hm variants count as supported")
	assert.False(t, SupportedByTSL(CodeOutputPower, tsl))
	assert.True(t, SupportedByTSL(CodeOutputPower, nil), "no TSL means no filtering")
}
