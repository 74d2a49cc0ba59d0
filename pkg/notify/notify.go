package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"pecron-mqtt-bridge/pkg/logger"
)

// Notice is a persistent, user-visible condition. The ID is stable per
// condition and instance: raising the same ID again updates the notice
// rather than duplicating it.
type Notice struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Raised  time.Time `json:"raised"`
}

// Sink delivers notices to the host platform (MQTT retained topics)
type Sink interface {
	PublishNotice(ctx context.Context, notice Notice) error
	ClearNotice(ctx context.Context, id string) error
}

// Manager tracks active notices and forwards them to the sink
type Manager struct {
	sink Sink

	mu     sync.Mutex
	active map[string]Notice
}

// NewManager creates a notice manager. A nil sink keeps notices in memory
// only (used by the validation binary and in tests).
func NewManager(sink Sink) *Manager {
	return &Manager{
		sink:   sink,
		active: make(map[string]Notice),
	}
}

// Notify raises or updates the notice with the given stable id
func (m *Manager) Notify(id, title, message string) {
	notice := Notice{ID: id, Title: title, Message: message, Raised: time.Now()}

	m.mu.Lock()
	m.active[id] = notice
	m.mu.Unlock()

	logger.LogWarn("Notice [%s] %s: %s", id, title, message)

	if m.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.sink.PublishNotice(ctx, notice); err != nil {
		logger.LogError("Error publishing notice %s: %v", id, err)
	}
}

// Clear removes a notice by id, if present
func (m *Manager) Clear(id string) {
	m.mu.Lock()
	_, existed := m.active[id]
	delete(m.active, id)
	m.mu.Unlock()

	if !existed || m.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.sink.ClearNotice(ctx, id); err != nil {
		logger.LogError("Error clearing notice %s: %v", id, err)
	}
}

// Active returns a copy of the currently raised notices
func (m *Manager) Active() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	notices := make([]Notice, 0, len(m.active))
	for _, n := range m.active {
		notices = append(notices, n)
	}
	return notices
}

// Stable notice identifiers. The instance part is derived from the account
// email (or point unique id) so separate accounts keep separate notices.

// ConnectionFailedID identifies the total-initial-connection-failure notice
func ConnectionFailedID(instance string) string {
	return "pecron_connection_failed_" + slug(instance)
}

// NoDevicesID identifies the zero-devices-on-account notice
func NoDevicesID(instance string) string {
	return "pecron_no_devices_" + slug(instance)
}

// ControlFailedID identifies a failed-control-action notice for one point
func ControlFailedID(pointID string) string {
	return "pecron_control_failed_" + slug(pointID)
}

// ControlErrorID identifies a control-transport-error notice for one point
func ControlErrorID(pointID string) string {
	return "pecron_control_error_" + slug(pointID)
}

func slug(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("@", "_", ".", "_", "/", "_", " ", "_").Replace(s)
	return s
}
