package health

import (
	"sync"
	"time"
)

// CloudHealthMonitor tracks whether the vendor cloud is considered reachable.
// A grace period after the first error avoids flapping the availability
// topic on a single failed cycle.
type CloudHealthMonitor struct {
	mu sync.RWMutex

	isOnline          bool
	consecutiveErrors int
	firstErrorTime    time.Time
	lastErrorTime     time.Time
	lastSuccessTime   time.Time
	gracePeriod       time.Duration
	markedOffline     bool

	successCount int
	errorCount   int
}

// NewCloudHealthMonitor creates a monitor with the given grace period
// (default 60s when zero)
func NewCloudHealthMonitor(gracePeriod time.Duration) *CloudHealthMonitor {
	if gracePeriod == 0 {
		gracePeriod = 60 * time.Second
	}
	return &CloudHealthMonitor{
		isOnline:    true,
		gracePeriod: gracePeriod,
	}
}

// IsOnline returns whether the cloud is currently marked online
func (m *CloudHealthMonitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isOnline
}

// RecordSuccess resets the error sequence and returns true when this success
// brings the cloud back from offline (caller publishes the recovery).
func (m *CloudHealthMonitor) RecordSuccess() (recovered bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recovered = !m.isOnline
	m.isOnline = true
	m.markedOffline = false
	m.consecutiveErrors = 0
	m.firstErrorTime = time.Time{}
	m.lastSuccessTime = time.Now()
	m.successCount++
	return recovered
}

// RecordError records one failed cycle and returns true when the grace
// period just expired and the cloud should be marked offline now.
func (m *CloudHealthMonitor) RecordError() (goOffline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errorCount++
	m.consecutiveErrors++
	m.lastErrorTime = time.Now()
	if m.firstErrorTime.IsZero() {
		m.firstErrorTime = time.Now()
	}

	if time.Since(m.firstErrorTime) < m.gracePeriod {
		return false
	}
	if m.markedOffline {
		return false
	}
	m.isOnline = false
	m.markedOffline = true
	return true
}

// IsInGracePeriod returns true while errors are tolerated without going
// offline
func (m *CloudHealthMonitor) IsInGracePeriod() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.firstErrorTime.IsZero() {
		return false
	}
	return time.Since(m.firstErrorTime) < m.gracePeriod
}

// GetConsecutiveErrors returns the current error sequence length
func (m *CloudHealthMonitor) GetConsecutiveErrors() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.consecutiveErrors
}

// GetTimeSinceFirstError returns how long the current error sequence has
// lasted
func (m *CloudHealthMonitor) GetTimeSinceFirstError() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.firstErrorTime.IsZero() {
		return 0
	}
	return time.Since(m.firstErrorTime)
}

// GetLastSuccessTime returns the time of the last successful cycle
func (m *CloudHealthMonitor) GetLastSuccessTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSuccessTime
}

// GetErrorCount returns the total number of failed cycles
func (m *CloudHealthMonitor) GetErrorCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorCount
}

// GetSuccessCount returns the total number of successful cycles
func (m *CloudHealthMonitor) GetSuccessCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.successCount
}
