package mqtt

import (
	"context"
	"strings"
	"sync"

	"pecron-mqtt-bridge/pkg/coordinator"
	"pecron-mqtt-bridge/pkg/logger"
	"pecron-mqtt-bridge/pkg/pecron"
	"pecron-mqtt-bridge/pkg/points"
)

// DeviceBridge turns coordinator snapshots into Home Assistant entities:
// discovery configs when a device is first seen, state updates on every
// snapshot, and command routing for the controllable points. It is the
// presentation adapter layer — it only ever reads published snapshots and
// talks to the vendor through the coordinator's forwarding handle.
type DeviceBridge struct {
	publisher  *Publisher
	controller points.Controller
	notifier   points.Notifier

	mu    sync.Mutex
	known map[string]*deviceAdapters
}

// deviceAdapters holds the per-device point set created at discovery time
type deviceAdapters struct {
	device   pecron.Device
	sensors  []points.SensorDescription
	binaries []points.BinarySensorDescription
	switches map[string]*points.SwitchAdapter
}

// NewDeviceBridge creates the adapter layer for one coordinator
func NewDeviceBridge(publisher *Publisher, controller points.Controller, notifier points.Notifier) *DeviceBridge {
	return &DeviceBridge{
		publisher:  publisher,
		controller: controller,
		notifier:   notifier,
		known:      make(map[string]*deviceAdapters),
	}
}

// HandleSnapshot is the coordinator.Listener: it creates points for newly
// discovered devices and pushes every point's state.
func (b *DeviceBridge) HandleSnapshot(snap coordinator.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx := context.Background()

	for deviceKey, data := range snap {
		adapters, ok := b.known[deviceKey]
		if !ok {
			adapters = b.setupDevice(ctx, deviceKey, data)
			b.known[deviceKey] = adapters
		}
		b.publishStates(ctx, adapters, data)
	}

	// Devices missing from this snapshot keep their last published state;
	// the per-device online sensor goes stale, the bridge availability
	// topic covers total outages.
}

// setupDevice publishes discovery configs for every point the product's TSL
// supports and wires the switch command topics
func (b *DeviceBridge) setupDevice(ctx context.Context, deviceKey string, data coordinator.DeviceData) *deviceAdapters {
	logger.LogInfo("Creating Home Assistant entities for %s (key: %s)", data.Device.DeviceName, deviceKey)

	info := NewDeviceInfo(data.Device)
	factory := b.publisher.factory
	adapters := &deviceAdapters{
		device:   data.Device,
		switches: make(map[string]*points.SwitchAdapter),
	}

	for _, desc := range points.Sensors {
		if !desc.AlwaysCreate && !points.SupportedByTSL(desc.Key, data.TSL) {
			logger.LogDebug("Skipping sensor '%s' for %s - not in TSL", desc.Key, data.Device.DeviceName)
			continue
		}
		adapters.sensors = append(adapters.sensors, desc)

		cfg := SensorConfig{
			Name:                data.Device.DeviceName + " " + desc.Name,
			UniqueID:            factory.BuildUniqueID(deviceKey, desc.Key),
			StateTopic:          factory.BuildStateTopic(ComponentSensor, deviceKey, desc.Key),
			UnitOfMeasurement:   desc.Unit,
			DeviceClass:         desc.DeviceClass,
			StateClass:          desc.StateClass,
			Icon:                desc.Icon,
			Device:              info,
			ValueTemplate:       "{{ value_json.value }}",
			AvailabilityTopic:   b.publisher.StatusTopic(),
			PayloadAvailable:    "online",
			PayloadNotAvailable: "offline",
		}
		topic := factory.BuildDiscoveryTopic(ComponentSensor, deviceKey, desc.Key)
		if err := b.publisher.PublishDiscovery(ctx, topic, cfg); err != nil {
			logger.LogError("Error publishing sensor discovery for %s: %v", desc.Key, err)
		}
	}

	for _, desc := range points.BinarySensors {
		if !desc.FromDevice && !points.SupportedByTSL(desc.Key, data.TSL) {
			logger.LogDebug("Skipping binary sensor '%s' for %s - not in TSL", desc.Key, data.Device.DeviceName)
			continue
		}
		adapters.binaries = append(adapters.binaries, desc)

		cfg := BinarySensorConfig{
			Name:                data.Device.DeviceName + " " + desc.Name,
			UniqueID:            factory.BuildUniqueID(deviceKey, desc.Key),
			StateTopic:          factory.BuildStateTopic(ComponentBinarySensor, deviceKey, desc.Key),
			DeviceClass:         desc.DeviceClass,
			Icon:                desc.IconTrue,
			Device:              info,
			PayloadOn:           PayloadOn,
			PayloadOff:          PayloadOff,
			AvailabilityTopic:   b.publisher.StatusTopic(),
			PayloadAvailable:    "online",
			PayloadNotAvailable: "offline",
		}
		topic := factory.BuildDiscoveryTopic(ComponentBinarySensor, deviceKey, desc.Key)
		if err := b.publisher.PublishDiscovery(ctx, topic, cfg); err != nil {
			logger.LogError("Error publishing binary sensor discovery for %s: %v", desc.Key, err)
		}
	}

	for _, desc := range points.Switches {
		if !points.SupportedByTSL(desc.Key, data.TSL) {
			logger.LogDebug("Skipping switch '%s' for %s - not in TSL", desc.Key, data.Device.DeviceName)
			continue
		}

		stateTopic := factory.BuildStateTopic(ComponentSwitch, deviceKey, desc.Key)
		commandTopic := factory.BuildCommandTopic(ComponentSwitch, deviceKey, desc.Key)

		adapter := points.NewSwitchAdapter(desc, data.Device, b.controller, b.notifier,
			func(on, known bool) {
				if !known {
					return
				}
				if err := b.publisher.PublishBoolState(context.Background(), stateTopic, on); err != nil {
					logger.LogError("Error publishing switch state for %s: %v", stateTopic, err)
				}
			})
		adapters.switches[desc.Key] = adapter

		cfg := SwitchConfig{
			Name:                data.Device.DeviceName + " " + desc.Name,
			UniqueID:            adapter.UniqueID(),
			StateTopic:          stateTopic,
			CommandTopic:        commandTopic,
			DeviceClass:         "outlet",
			Icon:                desc.Icon,
			Device:              info,
			PayloadOn:           PayloadOn,
			PayloadOff:          PayloadOff,
			AvailabilityTopic:   b.publisher.StatusTopic(),
			PayloadAvailable:    "online",
			PayloadNotAvailable: "offline",
		}
		topic := factory.BuildDiscoveryTopic(ComponentSwitch, deviceKey, desc.Key)
		if err := b.publisher.PublishDiscovery(ctx, topic, cfg); err != nil {
			logger.LogError("Error publishing switch discovery for %s: %v", desc.Key, err)
		}

		if err := b.publisher.Subscribe(commandTopic, b.commandHandler(adapter)); err != nil {
			logger.LogError("Error subscribing to %s: %v", commandTopic, err)
		}
	}

	return adapters
}

// commandHandler routes an ON/OFF command payload to the switch adapter.
// Control requests run off the MQTT callback goroutine so a slow vendor
// call never blocks the broker client.
func (b *DeviceBridge) commandHandler(adapter *points.SwitchAdapter) func(payload []byte) {
	return func(payload []byte) {
		command := strings.ToUpper(strings.TrimSpace(string(payload)))
		var enabled bool
		switch command {
		case PayloadOn:
			enabled = true
		case PayloadOff:
			enabled = false
		default:
			logger.LogWarn("Ignoring unknown switch command %q", command)
			return
		}

		go func() {
			if err := adapter.Set(context.Background(), enabled); err != nil {
				logger.LogError("Switch command failed: %v", err)
			}
		}()
	}
}

// publishStates pushes the current snapshot's values for every point of one
// device
func (b *DeviceBridge) publishStates(ctx context.Context, adapters *deviceAdapters, data coordinator.DeviceData) {
	deviceKey := data.Device.DeviceKey
	factory := b.publisher.factory

	for _, desc := range adapters.sensors {
		topic := factory.BuildStateTopic(ComponentSensor, deviceKey, desc.Key)

		var payload *float64
		if value, ok := points.SensorValue(desc, data.Properties); ok {
			n := value.Number()
			payload = &n
		}
		if err := b.publisher.PublishSensorState(ctx, topic, payload); err != nil {
			logger.LogError("Error publishing sensor state for %s: %v", topic, err)
		}
	}

	for _, desc := range adapters.binaries {
		on, ok := points.BinaryValue(desc, data.Device, data.Properties)
		if !ok {
			continue
		}
		topic := factory.BuildStateTopic(ComponentBinarySensor, deviceKey, desc.Key)
		if err := b.publisher.PublishBoolState(ctx, topic, on); err != nil {
			logger.LogError("Error publishing binary sensor state for %s: %v", topic, err)
		}
	}

	for _, adapter := range adapters.switches {
		adapter.Update(data.Properties, true)
	}
}
