package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	bridgeerr "pecron-mqtt-bridge/pkg/errors"
	"pecron-mqtt-bridge/pkg/logger"
	"pecron-mqtt-bridge/pkg/pecron"
)

// APIFactory creates a fresh, unauthenticated vendor client. The coordinator
// calls it once per session; invalidating a session discards the old client
// entirely so token state can never leak between sessions.
type APIFactory func(region string) (pecron.API, error)

// Stats is a point-in-time copy of the coordinator's counters, read by the
// metrics collector.
type Stats struct {
	SessionsCreated int
	SessionResets   int
	Refreshes       int
	RefreshFailures int
	SkippedDevices  int
	KnownDevices    int
	LastRefresh     time.Time
	LastDuration    time.Duration
}

// Coordinator owns the single upstream API session for one account, runs the
// periodic refresh cycle with its one-shot authentication recovery, and
// publishes immutable snapshots to subscribers.
//
// All session state transitions happen under mu, which also serializes every
// upstream call: at most one vendor API request is in flight per coordinator.
type Coordinator struct {
	email    string
	password string
	region   string
	newAPI   APIFactory

	mu      sync.Mutex // session state + single in-flight upstream call
	api     pecron.API // nil while the session is absent
	devices []pecron.Device
	tsl     map[string][]pecron.TSLProperty
	stats   Stats

	snapMu      sync.RWMutex
	snapshot    Snapshot
	hasSnapshot bool

	listenerMu sync.Mutex
	listeners  []Listener

	refreshCh chan struct{}
}

// New creates a coordinator for one account. The factory defaults to the
// real HTTP client; tests inject a mock.
func New(email, password, region string, factory APIFactory) *Coordinator {
	if factory == nil {
		factory = func(region string) (pecron.API, error) {
			return pecron.NewClient(region)
		}
	}
	return &Coordinator{
		email:     email,
		password:  password,
		region:    region,
		newAPI:    factory,
		refreshCh: make(chan struct{}, 1),
	}
}

// Account returns the account email this coordinator polls for
func (c *Coordinator) Account() string {
	return c.email
}

// Subscribe registers a listener for published snapshots. Listeners are
// invoked sequentially in publication order; subscribe before the first
// refresh to observe every snapshot.
func (c *Coordinator) Subscribe(l Listener) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Snapshot returns the last published snapshot. ok is false only before the
// first cycle ever completed; an empty-but-ok snapshot means the last cycle
// gathered no device data.
func (c *Coordinator) Snapshot() (Snapshot, bool) {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snapshot, c.hasSnapshot
}

// Stats returns a copy of the coordinator's counters
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.stats
	stats.KnownDevices = len(c.devices)
	return stats
}

// RequestRefresh asks the run loop for an immediate out-of-band refresh.
// Requests coalesce: asking several times before the loop wakes up runs one
// cycle.
func (c *Coordinator) RequestRefresh() {
	select {
	case c.refreshCh <- struct{}{}:
	default:
	}
}

// RefreshRequests exposes the out-of-band refresh signal for the run loop
func (c *Coordinator) RefreshRequests() <-chan struct{} {
	return c.refreshCh
}

// EnsureSession guarantees a live session exists, authenticating and
// discovering the device list if necessary.
func (c *Coordinator) EnsureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureSessionLocked(ctx); err != nil {
		return err
	}
	return c.discoverLocked(ctx)
}

// InvalidateSession closes and discards the current session without
// fetching. The next refresh re-authenticates from scratch.
func (c *Coordinator) InvalidateSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

// Shutdown releases the session. Idempotent; safe to call while a refresh is
// in flight (it runs after the in-flight cycle completes).
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		logger.LogInfo("Shutting down coordinator for %s", c.email)
	}
	c.invalidateLocked()
}

// InvokeAction forwards a control request for one device using the current
// session. It never retries: the calling adapter requests a follow-up
// refresh to confirm the effect.
func (c *Coordinator) InvokeAction(ctx context.Context, deviceKey, action string, enabled bool) (pecron.ActionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api == nil {
		return pecron.ActionResult{}, bridgeerr.NewSessionError("invoke_action", deviceKey)
	}

	device, ok := c.deviceByKeyLocked(deviceKey)
	if !ok {
		return pecron.ActionResult{}, fmt.Errorf("unknown device %q", deviceKey)
	}

	return c.api.InvokeAction(ctx, device, action, enabled)
}

// Refresh performs one full refresh cycle and publishes the resulting
// snapshot. At most one authentication-triggered session reset is spent per
// cycle; transport and unknown per-device failures only skip that device.
func (c *Coordinator) Refresh(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	start := time.Now()
	snap, err := c.refreshLocked(ctx)
	c.stats.LastDuration = time.Since(start)
	if err != nil {
		c.stats.RefreshFailures++
		c.mu.Unlock()
		return nil, err
	}
	c.stats.Refreshes++
	c.stats.LastRefresh = time.Now()
	c.mu.Unlock()

	c.publish(snap)
	return snap, nil
}

// refreshLocked runs the two-attempt cycle. The caller holds mu.
func (c *Coordinator) refreshLocked(ctx context.Context) (Snapshot, error) {
	// Attempt 1. A login failure here surfaces as-is: rejected credentials
	// on a fresh session are not retried silently.
	if err := c.ensureSessionLocked(ctx); err != nil {
		return nil, err
	}

	snap, err := c.fetchLocked(ctx)
	if err == nil {
		return snap, nil
	}
	if bridgeerr.Classify(err) != bridgeerr.ClassAuthentication {
		// Device-list transport failure or similar: soft cycle failure,
		// previous snapshot stays published.
		return nil, err
	}

	// Token went stale mid-session. Spend the single reset-and-retry.
	logger.LogWarn("Authentication failure mid-cycle for %s, re-establishing session: %v", c.email, err)
	c.invalidateLocked()
	c.stats.SessionResets++

	if err := c.ensureSessionLocked(ctx); err != nil {
		return nil, bridgeerr.NewRefreshError("refresh", err, 2)
	}
	snap, err = c.fetchLocked(ctx)
	if err != nil {
		return nil, bridgeerr.NewRefreshError("refresh", err, 2)
	}
	return snap, nil
}

// ensureSessionLocked authenticates if no session exists. The caller holds mu.
func (c *Coordinator) ensureSessionLocked(ctx context.Context) error {
	if c.api != nil {
		return nil
	}

	logger.LogInfo("Establishing Pecron session for %s (region %s)", c.email, c.region)
	api, err := c.newAPI(c.region)
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}
	c.stats.SessionsCreated++

	if err := api.Login(ctx, c.email, c.password); err != nil {
		_ = api.Close()
		switch bridgeerr.Classify(err) {
		case bridgeerr.ClassAuthentication:
			return bridgeerr.NewAuthError("login", err, c.email)
		case bridgeerr.ClassTransport:
			return bridgeerr.NewTransportError("login", err, c.region)
		default:
			return fmt.Errorf("login: %w", err)
		}
	}

	c.api = api
	return nil
}

// discoverLocked fetches the device list for the current session if it has
// not been fetched yet. Product TSLs are fetched best-effort alongside.
// The caller holds mu.
func (c *Coordinator) discoverLocked(ctx context.Context) error {
	if c.devices != nil {
		return nil
	}

	devices, err := c.api.GetDevices(ctx)
	if err != nil {
		return err
	}

	logger.LogInfo("Found %d Pecron device(s) on account %s", len(devices), c.email)
	for _, device := range devices {
		logger.LogInfo("Discovered device: %s (key: %s, product: %s)",
			device.DeviceName, device.DeviceKey, device.ProductName)
	}

	tsl := make(map[string][]pecron.TSLProperty)
	for _, device := range devices {
		if _, done := tsl[device.ProductKey]; done {
			continue
		}
		props, err := c.api.GetProductTSL(ctx, device.ProductKey)
		if err != nil {
			// Without a TSL the adapters fall back to creating all points
			logger.LogDebug("TSL fetch failed for product %s: %v", device.ProductKey, err)
			continue
		}
		tsl[device.ProductKey] = props
	}

	if devices == nil {
		devices = []pecron.Device{}
	}
	c.devices = devices
	c.tsl = tsl
	return nil
}

// fetchLocked builds a snapshot from the session's device list. It returns
// an error only for authentication-classified failures (retryable at the
// cycle level) or a failed device-list fetch; transport/unknown per-device
// failures are logged and that device omitted. The caller holds mu.
func (c *Coordinator) fetchLocked(ctx context.Context) (Snapshot, error) {
	if err := c.discoverLocked(ctx); err != nil {
		return nil, err
	}

	// The device list snapshotted here is the one used for the whole cycle
	snap := make(Snapshot, len(c.devices))
	for _, device := range c.devices {
		props, err := c.api.GetDeviceProperties(ctx, device)
		if err != nil {
			if bridgeerr.Classify(err) == bridgeerr.ClassAuthentication {
				return nil, err
			}
			c.stats.SkippedDevices++
			logger.LogWarn("Skipping device %s (%s) this cycle: %v",
				device.DeviceName, device.DeviceKey, err)
			continue
		}
		snap[device.DeviceKey] = DeviceData{
			Device:     device,
			Properties: props,
			TSL:        c.tsl[device.ProductKey],
		}
		logger.LogTrace("Fetched %d properties for %s", props.Len(), device.DeviceName)
	}

	if len(snap) < len(c.devices) {
		logger.LogWarn("Partial cycle for %s: %d of %d devices fetched",
			c.email, len(snap), len(c.devices))
	}
	return snap, nil
}

// invalidateLocked closes and forgets the session. The caller holds mu.
func (c *Coordinator) invalidateLocked() {
	if c.api == nil {
		return
	}
	if err := c.api.Close(); err != nil {
		logger.LogDebug("Closing Pecron session: %v", err)
	}
	c.api = nil
	c.devices = nil
	c.tsl = nil
}

func (c *Coordinator) deviceByKeyLocked(deviceKey string) (pecron.Device, bool) {
	for _, device := range c.devices {
		if device.DeviceKey == deviceKey {
			return device, true
		}
	}
	return pecron.Device{}, false
}

// publish atomically replaces the published snapshot and notifies listeners
// in subscription order. Serialized so listeners never see snapshots out of
// publication order.
func (c *Coordinator) publish(snap Snapshot) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	c.snapMu.Lock()
	c.snapshot = snap
	c.hasSnapshot = true
	c.snapMu.Unlock()

	for _, l := range c.listeners {
		l(snap)
	}
}

// PublishEmpty publishes an empty snapshot, marking the coordinator as
// fetched-but-degraded. Used by bootstrap when all connection attempts fail.
func (c *Coordinator) PublishEmpty() {
	c.publish(Snapshot{})
}
