package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"pecron-mqtt-bridge/pkg/coordinator"
	"pecron-mqtt-bridge/pkg/registry"
)

// TestCollectorEmitsPerAccountMetrics tests that every registered account
// shows up labelled in the scrape
func TestCollectorEmitsPerAccountMetrics(t *testing.T) {
	reg := registry.New()
	for _, id := range []string{"a@example.com", "b@example.com"} {
		if err := reg.Add(id, coordinator.New(id, "secret", "US", nil)); err != nil {
			t.Fatalf("Add %s failed: %v", id, err)
		}
	}

	collector := NewCollector(reg)

	expected := strings.NewReader(`
# HELP pecron_known_devices Devices discovered on the current session
# TYPE pecron_known_devices gauge
pecron_known_devices{account="a@example.com"} 0
pecron_known_devices{account="b@example.com"} 0
`)
	if err := testutil.CollectAndCompare(collector, expected, "pecron_known_devices"); err != nil {
		t.Errorf("Unexpected metrics: %v", err)
	}
}

// TestCollectorMetricCount tests the number of series per account
func TestCollectorMetricCount(t *testing.T) {
	reg := registry.New()
	if err := reg.Add("a@example.com", coordinator.New("a@example.com", "secret", "US", nil)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// lastRefresh is omitted until a cycle succeeded, so 7 series remain
	if got := testutil.CollectAndCount(NewCollector(reg)); got != 7 {
		t.Errorf("Expected 7 series for one idle account, got %d", got)
	}
}
