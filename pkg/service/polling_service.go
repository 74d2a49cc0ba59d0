package service

import (
	"context"
	"time"

	"pecron-mqtt-bridge/pkg/coordinator"
	bridgeerr "pecron-mqtt-bridge/pkg/errors"
	"pecron-mqtt-bridge/pkg/health"
	"pecron-mqtt-bridge/pkg/logger"
)

// StatusPublisher is the slice of the MQTT publisher the polling service
// needs to flip the bridge availability topic
type StatusPublisher interface {
	PublishStatusOnline(ctx context.Context) error
	PublishStatusOffline(ctx context.Context) error
}

// PollingService drives one coordinator on its refresh interval.
// Single Responsibility: scheduling and health transitions; the refresh
// semantics live in the coordinator.
type PollingService struct {
	coord         *coordinator.Coordinator
	statusPub     StatusPublisher
	healthMonitor *health.CloudHealthMonitor

	// Performance tracking
	successfulCycles int
	errorCycles      int
	lastSummaryTime  time.Time
}

// NewPollingService creates a polling service for one coordinator
func NewPollingService(coord *coordinator.Coordinator, statusPub StatusPublisher, healthMonitor *health.CloudHealthMonitor) *PollingService {
	return &PollingService{
		coord:         coord,
		statusPub:     statusPub,
		healthMonitor: healthMonitor,
		lastSummaryTime: time.Now(),
	}
}

// Start begins the polling loop. Ticks never overlap: a cycle that outlasts
// the interval simply absorbs the pending tick. Out-of-band refresh requests
// (from switch adapters) share the same serial loop. On cancellation the
// in-flight cycle finishes, then the session is shut down.
func (s *PollingService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.LogInfo("🔄 Polling started for %s with interval: %v", s.coord.Account(), interval)

	for {
		select {
		case <-ctx.Done():
			logger.LogDebug("🔄 Polling stopped for %s", s.coord.Account())
			s.coord.Shutdown()
			return
		case <-ticker.C:
		case <-s.coord.RefreshRequests():
		}
		s.runCycle(ctx)
	}
}

// runCycle executes one refresh and records the outcome
func (s *PollingService) runCycle(ctx context.Context) {
	snap, err := s.coord.Refresh(ctx)
	if err != nil {
		s.handleCycleError(ctx, err)
		return
	}
	s.handleCycleSuccess(ctx, len(snap))
}

// handleCycleError classifies the failure and walks the grace period
func (s *PollingService) handleCycleError(ctx context.Context, err error) {
	s.errorCycles++
	class := bridgeerr.Classify(err)
	logger.LogError("❌ Refresh cycle failed for %s (%s): %v", s.coord.Account(), class, err)

	goOffline := s.healthMonitor.RecordError()

	if s.healthMonitor.GetConsecutiveErrors() == 1 {
		logger.LogWarn("⚠️ First error detected for %s, starting grace period", s.coord.Account())
	}
	if s.healthMonitor.IsInGracePeriod() {
		logger.LogDebug("🕐 Error %d in grace period (%.1fs elapsed) - keeping status online",
			s.healthMonitor.GetConsecutiveErrors(),
			s.healthMonitor.GetTimeSinceFirstError().Seconds())
		return
	}

	if goOffline {
		logger.LogError("🔴 Grace period expired - cloud marked as OFFLINE after %d errors over %.1f seconds",
			s.healthMonitor.GetConsecutiveErrors(),
			s.healthMonitor.GetTimeSinceFirstError().Seconds())
		if pubErr := s.statusPub.PublishStatusOffline(ctx); pubErr != nil {
			logger.LogError("⚠️ Error publishing offline status: %v", pubErr)
		}
	}
}

// handleCycleSuccess resets the error sequence and publishes recovery
func (s *PollingService) handleCycleSuccess(ctx context.Context, deviceCount int) {
	s.successfulCycles++

	if recovered := s.healthMonitor.RecordSuccess(); recovered {
		logger.LogInfo("🟢 Cloud marked as ONLINE for %s - functionality restored", s.coord.Account())
		if err := s.statusPub.PublishStatusOnline(ctx); err != nil {
			logger.LogError("⚠️ Error publishing online status: %v", err)
		}
	}

	// Print summary every 30 minutes; cycles are slow enough that
	// per-cycle logging stays at debug
	if time.Since(s.lastSummaryTime) >= 30*time.Minute {
		logger.LogInfo("📊 Summary for %s - Success: %d, Errors: %d", s.coord.Account(), s.successfulCycles, s.errorCycles)
		s.lastSummaryTime = time.Now()
		s.successfulCycles = 0
		s.errorCycles = 0
	}

	logger.LogDebug("✅ Refresh cycle complete for %s: %d device(s)", s.coord.Account(), deviceCount)
}

// GetPerformanceStats returns current cycle statistics
func (s *PollingService) GetPerformanceStats() (successfulCycles, errorCycles int, lastSummary time.Time) {
	return s.successfulCycles, s.errorCycles, s.lastSummaryTime
}
