package coordinator

import (
	"pecron-mqtt-bridge/pkg/pecron"
)

// DeviceData bundles one device's identity with its most recently fetched
// property set and the product's TSL (nil when the TSL fetch failed).
type DeviceData struct {
	Device     pecron.Device
	Properties pecron.PropertySet
	TSL        []pecron.TSLProperty
}

// Snapshot maps device key to the data gathered in one refresh cycle.
// A snapshot is never mutated after publication: every cycle builds a fresh
// map and replaces the previous one atomically. An empty snapshot means the
// cycle ran and gathered nothing, which is distinct from "never fetched".
type Snapshot map[string]DeviceData

// Keys returns the device keys present in the snapshot (unordered)
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Listener receives every published snapshot, in publication order
type Listener func(Snapshot)
