package ws

import (
	"log"
	"time"
)

// Heartbeat periodically probes every registered connection for liveness and
// reclaims the ones that stopped answering. A second, longer-horizon pass
// removes connections with no observed activity at all, catching clients
// that still answer pings but were logically abandoned. Both passes are
// idempotent and safe alongside concurrent message handling.
type Heartbeat struct {
	registry   *Registry
	interval   time.Duration
	staleAfter time.Duration
	stop       chan struct{}
}

// NewHeartbeat creates a heartbeat monitor; call Run to start it.
func NewHeartbeat(registry *Registry, interval, staleAfter time.Duration) *Heartbeat {
	return &Heartbeat{
		registry:   registry,
		interval:   interval,
		staleAfter: staleAfter,
		stop:       make(chan struct{}),
	}
}

// Run ticks until Stop is called. Intended to run in its own goroutine.
func (h *Heartbeat) Run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Sweep()
			h.ReapStale()
		case <-h.stop:
			return
		}
	}
}

// Stop tears the monitor down.
func (h *Heartbeat) Stop() {
	close(h.stop)
}

// Sweep unregisters and closes every connection whose liveness flag was not
// refreshed since the previous pass, then clears the flag and pings the
// survivors so they can refresh it before the next one.
func (h *Heartbeat) Sweep() {
	active, terminated := 0, 0
	for _, conn := range h.registry.Conns() {
		if !conn.sweepAlive() {
			log.Printf("Terminating unresponsive connection for user %s", conn.UserID)
			h.registry.Unregister(conn)
			conn.close()
			terminated++
			continue
		}
		if err := conn.ping(); err != nil {
			log.Printf("Ping failed for user %s: %v", conn.UserID, err)
		}
		active++
	}
	log.Printf("Heartbeat sweep: %d active, %d terminated", active, terminated)
}

// ReapStale force-closes connections whose last activity is older than the
// staleness horizon, regardless of ping responses.
func (h *Heartbeat) ReapStale() {
	cutoff := time.Now().Add(-h.staleAfter)
	for _, conn := range h.registry.Conns() {
		if conn.lastActivity().Before(cutoff) {
			log.Printf("Removing stale connection for user %s", conn.UserID)
			h.registry.Unregister(conn)
			conn.close()
		}
	}
}
