package notify

import (
	"context"
	"testing"
)

// recordingSink records published and cleared notices
type recordingSink struct {
	published []Notice
	cleared   []string
}

func (s *recordingSink) PublishNotice(ctx context.Context, notice Notice) error {
	s.published = append(s.published, notice)
	return nil
}

func (s *recordingSink) ClearNotice(ctx context.Context, id string) error {
	s.cleared = append(s.cleared, id)
	return nil
}

// TestNotifyPublishesAndTracks tests raising a notice
func TestNotifyPublishesAndTracks(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink)

	m.Notify("pecron_test_notice", "Title", "Message")

	if len(sink.published) != 1 {
		t.Fatalf("Expected 1 published notice, got %d", len(sink.published))
	}
	if sink.published[0].ID != "pecron_test_notice" {
		t.Errorf("Expected id 'pecron_test_notice', got '%s'", sink.published[0].ID)
	}
	if sink.published[0].Raised.IsZero() {
		t.Error("Expected a raised timestamp")
	}
	if len(m.Active()) != 1 {
		t.Errorf("Expected 1 active notice, got %d", len(m.Active()))
	}
}

// TestNotifySameIDUpdates tests that a repeated id never duplicates
func TestNotifySameIDUpdates(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink)

	m.Notify("pecron_test_notice", "Title", "First")
	m.Notify("pecron_test_notice", "Title", "Second")

	active := m.Active()
	if len(active) != 1 {
		t.Fatalf("Expected 1 active notice, got %d", len(active))
	}
	if active[0].Message != "Second" {
		t.Errorf("Expected the updated message, got '%s'", active[0].Message)
	}
}

// TestClear tests removing a notice
func TestClear(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink)

	m.Notify("pecron_test_notice", "Title", "Message")
	m.Clear("pecron_test_notice")

	if len(m.Active()) != 0 {
		t.Errorf("Expected no active notices, got %d", len(m.Active()))
	}
	if len(sink.cleared) != 1 || sink.cleared[0] != "pecron_test_notice" {
		t.Errorf("Expected the sink to clear the notice, got %v", sink.cleared)
	}

	// Clearing an unknown id must not reach the sink
	m.Clear("pecron_never_raised")
	if len(sink.cleared) != 1 {
		t.Errorf("Expected no extra clear calls, got %v", sink.cleared)
	}
}

// TestNilSinkIsMemoryOnly tests the sink-less mode
func TestNilSinkIsMemoryOnly(t *testing.T) {
	m := NewManager(nil)
	m.Notify("pecron_test_notice", "Title", "Message")
	m.Clear("pecron_test_notice")

	if len(m.Active()) != 0 {
		t.Errorf("Expected no active notices, got %d", len(m.Active()))
	}
}

// TestStableIDs tests the notice id helpers
func TestStableIDs(t *testing.T) {
	tests := []struct {
		got      string
		expected string
	}{
		{ConnectionFailedID("User@Example.com"), "pecron_connection_failed_user_example_com"},
		{NoDevicesID("user@example.com"), "pecron_no_devices_user_example_com"},
		{ControlFailedID("pecron_dev-1_ac_switch"), "pecron_control_failed_pecron_dev-1_ac_switch"},
		{ControlErrorID("pecron_dev-1_dc_switch"), "pecron_control_error_pecron_dev-1_dc_switch"},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("Expected '%s', got '%s'", tt.expected, tt.got)
		}
	}

	// Same input, same id
	if ConnectionFailedID("a@b.c") != ConnectionFailedID("a@b.c") {
		t.Error("Expected stable ids for the same instance")
	}
}
