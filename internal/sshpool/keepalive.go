package sshpool

import "time"

// KeepaliveConfig controls how often and how aggressively keepalives are
// sent (spec.md §4.8 "KeepaliveController").
type KeepaliveConfig struct {
	Interval        time.Duration
	MaxMissed       int
	Enabled         bool
	ResponseTimeout time.Duration
}

// DefaultKeepaliveConfig matches the distilled source's Default impl.
func DefaultKeepaliveConfig() KeepaliveConfig {
	return KeepaliveConfig{
		Interval:        30 * time.Second,
		MaxMissed:       3,
		Enabled:         true,
		ResponseTimeout: 15 * time.Second,
	}
}

// DisabledKeepaliveConfig turns keepalives off entirely.
func DisabledKeepaliveConfig() KeepaliveConfig {
	c := DefaultKeepaliveConfig()
	c.Enabled = false
	return c
}

// HighLatencyKeepaliveConfig widens the interval/timeout for slow links.
func HighLatencyKeepaliveConfig() KeepaliveConfig {
	return KeepaliveConfig{Interval: 60 * time.Second, MaxMissed: 5, Enabled: true, ResponseTimeout: 30 * time.Second}
}

// AggressiveKeepaliveConfig shortens the interval/timeout for unstable links.
func AggressiveKeepaliveConfig() KeepaliveConfig {
	return KeepaliveConfig{Interval: 15 * time.Second, MaxMissed: 2, Enabled: true, ResponseTimeout: 10 * time.Second}
}

// Action is what Controller.Tick asks the caller to do next.
type Action int

const (
	ActionNone Action = iota
	ActionSendKeepalive
	ActionTimeout
	ActionDisconnect
)

// Controller tracks keepalive send/response timing and turns it into a
// {None, SendKeepalive, Timeout, Disconnect} tick decision, grounded on
// original_source/.../backend/ssh/keepalive.rs's KeepaliveManager.
type Controller struct {
	cfg           KeepaliveConfig
	lastSent      time.Time
	hasLastSent   bool
	lastReceived  time.Time
	hasLastRecv   bool
	missedCount   int
	alive         bool
	pending       bool
	pendingSince  time.Time
	totalSent     uint64
	totalReceived uint64
}

// NewController creates a controller in the "alive, nothing pending" state.
func NewController(cfg KeepaliveConfig) *Controller {
	return &Controller{cfg: cfg, alive: true}
}

// Disabled creates a controller with keepalives turned off.
func Disabled() *Controller { return NewController(DisabledKeepaliveConfig()) }

// IsEnabled reports whether keepalives are configured on.
func (c *Controller) IsEnabled() bool { return c.cfg.Enabled }

// IsAlive reports whether the connection is still considered alive.
func (c *Controller) IsAlive() bool { return c.alive }

func (c *Controller) isDue() bool {
	if !c.cfg.Enabled || c.pending {
		return false
	}
	if !c.hasLastSent {
		return true
	}
	return time.Since(c.lastSent) >= c.cfg.Interval
}

func (c *Controller) isTimedOut() bool {
	if !c.pending {
		return false
	}
	return time.Since(c.pendingSince) >= c.cfg.ResponseTimeout
}

// Tick evaluates current state and reports the next action. Call this
// periodically; act on the result, then call RecordSent/RecordResponse/
// RecordTimeout as appropriate.
func (c *Controller) Tick() Action {
	if !c.cfg.Enabled {
		return ActionNone
	}
	if !c.alive {
		return ActionDisconnect
	}
	if c.isTimedOut() {
		return ActionTimeout
	}
	if c.isDue() {
		return ActionSendKeepalive
	}
	return ActionNone
}

// RecordSent marks a keepalive as just sent and now awaiting a response.
func (c *Controller) RecordSent() {
	now := time.Now()
	c.lastSent = now
	c.hasLastSent = true
	c.pending = true
	c.pendingSince = now
	c.totalSent++
}

// RecordResponse marks the pending keepalive as answered.
func (c *Controller) RecordResponse() {
	c.lastReceived = time.Now()
	c.hasLastRecv = true
	c.missedCount = 0
	c.alive = true
	c.pending = false
	c.totalReceived++
}

// RecordTimeout marks the pending keepalive as missed, disconnecting once
// MaxMissed consecutive misses accumulate.
func (c *Controller) RecordTimeout() {
	c.missedCount++
	c.pending = false
	if c.missedCount >= c.cfg.MaxMissed {
		c.alive = false
	}
}

// ShouldDisconnect reports whether missed keepalives have killed the link.
func (c *Controller) ShouldDisconnect() bool { return !c.alive }

// Reset restores "alive, nothing pending" state, preserving lifetime
// counters for statistics — matching the Rust source's reset() semantics
// (fields noted there as NOT reset: total_sent, total_received).
func (c *Controller) Reset() {
	c.hasLastSent = false
	c.hasLastRecv = false
	c.missedCount = 0
	c.alive = true
	c.pending = false
}

// Stats summarizes lifetime keepalive activity.
type Stats struct {
	TotalSent     uint64
	TotalReceived uint64
	MissedCount   int
	IsAlive       bool
}

// SuccessRate reports responses received per keepalive sent.
func (s Stats) SuccessRate() float64 {
	if s.TotalSent == 0 {
		return 1
	}
	return float64(s.TotalReceived) / float64(s.TotalSent)
}

// Stats returns the controller's current lifetime statistics.
func (c *Controller) Stats() Stats {
	return Stats{
		TotalSent:     c.totalSent,
		TotalReceived: c.totalReceived,
		MissedCount:   c.missedCount,
		IsAlive:       c.alive,
	}
}
