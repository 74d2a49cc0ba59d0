package registry

import (
	"sort"
	"testing"

	"pecron-mqtt-bridge/pkg/coordinator"
)

func newCoord(email string) *coordinator.Coordinator {
	return coordinator.New(email, "secret", "US", nil)
}

// TestAddAndGet tests basic registration
func TestAddAndGet(t *testing.T) {
	r := New()
	c := newCoord("a@example.com")

	if err := r.Add("a@example.com", c); err != nil {
		t.Fatalf("Expected Add to succeed, got %v", err)
	}

	got, ok := r.Get("a@example.com")
	if !ok || got != c {
		t.Error("Expected to get the registered coordinator back")
	}
	if _, ok := r.Get("b@example.com"); ok {
		t.Error("Expected a miss for an unknown id")
	}
}

// TestAddDuplicateRejected tests duplicate id rejection
func TestAddDuplicateRejected(t *testing.T) {
	r := New()
	if err := r.Add("a@example.com", newCoord("a@example.com")); err != nil {
		t.Fatalf("First Add failed: %v", err)
	}
	if err := r.Add("a@example.com", newCoord("a@example.com")); err == nil {
		t.Error("Expected the duplicate id to be rejected")
	}
}

// TestRemove tests unregistering an instance
func TestRemove(t *testing.T) {
	r := New()
	if err := r.Add("a@example.com", newCoord("a@example.com")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if !r.Remove("a@example.com") {
		t.Error("Expected Remove to report the instance existed")
	}
	if _, ok := r.Get("a@example.com"); ok {
		t.Error("Expected the instance to be gone")
	}
	if r.Remove("a@example.com") {
		t.Error("Expected Remove of a missing id to report false")
	}
}

// TestListAndEach tests enumeration
func TestListAndEach(t *testing.T) {
	r := New()
	for _, id := range []string{"a@example.com", "b@example.com"} {
		if err := r.Add(id, newCoord(id)); err != nil {
			t.Fatalf("Add %s failed: %v", id, err)
		}
	}

	ids := r.List()
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "a@example.com" || ids[1] != "b@example.com" {
		t.Errorf("Unexpected ids: %v", ids)
	}

	visited := 0
	r.Each(func(id string, coord *coordinator.Coordinator) {
		visited++
		if coord.Account() != id {
			t.Errorf("Expected coordinator account %s to match id", id)
		}
	})
	if visited != 2 {
		t.Errorf("Expected to visit 2 instances, got %d", visited)
	}
}

// TestShutdownAll tests the teardown contract
func TestShutdownAll(t *testing.T) {
	r := New()
	for _, id := range []string{"a@example.com", "b@example.com"} {
		if err := r.Add(id, newCoord(id)); err != nil {
			t.Fatalf("Add %s failed: %v", id, err)
		}
	}

	r.ShutdownAll()

	if len(r.List()) != 0 {
		t.Errorf("Expected an empty registry after ShutdownAll, got %v", r.List())
	}
}
