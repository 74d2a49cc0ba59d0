package health

import (
	"testing"
	"time"
)

// TestMonitorStartsOnline tests the initial state
func TestMonitorStartsOnline(t *testing.T) {
	m := NewCloudHealthMonitor(0)
	if !m.IsOnline() {
		t.Error("Expected monitor to start online")
	}
	if m.IsInGracePeriod() {
		t.Error("Expected no grace period before any error")
	}
}

// TestErrorsWithinGracePeriodStayOnline tests grace period tolerance
func TestErrorsWithinGracePeriodStayOnline(t *testing.T) {
	m := NewCloudHealthMonitor(time.Hour)

	for i := 0; i < 5; i++ {
		if goOffline := m.RecordError(); goOffline {
			t.Fatalf("Error %d must not go offline inside the grace period", i+1)
		}
	}
	if !m.IsOnline() {
		t.Error("Expected monitor to stay online during grace period")
	}
	if !m.IsInGracePeriod() {
		t.Error("Expected grace period to be active")
	}
	if m.GetConsecutiveErrors() != 5 {
		t.Errorf("Expected 5 consecutive errors, got %d", m.GetConsecutiveErrors())
	}
}

// TestGoesOfflineOnceAfterGraceExpiry tests the offline transition fires
// exactly once per error sequence
func TestGoesOfflineOnceAfterGraceExpiry(t *testing.T) {
	m := NewCloudHealthMonitor(time.Nanosecond)

	m.RecordError()
	time.Sleep(time.Millisecond) // let the tiny grace period expire

	if goOffline := m.RecordError(); !goOffline {
		t.Fatal("Expected the transition to offline after grace expiry")
	}
	if m.IsOnline() {
		t.Error("Expected the monitor to be offline")
	}
	if goOffline := m.RecordError(); goOffline {
		t.Error("Expected the offline transition to fire only once")
	}
}

// TestRecoveryResetsSequence tests the success path and the recovered signal
func TestRecoveryResetsSequence(t *testing.T) {
	m := NewCloudHealthMonitor(time.Nanosecond)

	m.RecordError()
	time.Sleep(time.Millisecond)
	m.RecordError()

	if recovered := m.RecordSuccess(); !recovered {
		t.Fatal("Expected the success after offline to report recovery")
	}
	if !m.IsOnline() {
		t.Error("Expected the monitor to be back online")
	}
	if m.GetConsecutiveErrors() != 0 {
		t.Errorf("Expected the error sequence to reset, got %d", m.GetConsecutiveErrors())
	}

	// A success while already online is not a recovery
	if recovered := m.RecordSuccess(); recovered {
		t.Error("Expected no recovery signal while online")
	}
}

// TestCounters tests the lifetime counters
func TestCounters(t *testing.T) {
	m := NewCloudHealthMonitor(time.Hour)

	m.RecordSuccess()
	m.RecordSuccess()
	m.RecordError()

	if m.GetSuccessCount() != 2 {
		t.Errorf("Expected 2 successes, got %d", m.GetSuccessCount())
	}
	if m.GetErrorCount() != 1 {
		t.Errorf("Expected 1 error, got %d", m.GetErrorCount())
	}
	if m.GetLastSuccessTime().IsZero() {
		t.Error("Expected a recorded last success time")
	}
}
