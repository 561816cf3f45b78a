// Package registry manages the storage-server fleet: registration,
// reconnect, the per-channel send/recv discipline, and the heartbeat sweep
// that drives the Active/Failed state machine.
package registry

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metadata"
	"github.com/marmos91/naming-server/internal/metrics"
	"github.com/marmos91/naming-server/internal/telemetry"
	"github.com/marmos91/naming-server/internal/wire"
)

// HeartbeatInterval is how often the sweep checks every Active SS.
const HeartbeatInterval = 10 * time.Second

// HeartbeatTimeout is how long an Active SS may go without a successful
// heartbeat before being marked Failed.
const HeartbeatTimeout = 60 * time.Second

// Manager owns the live control-channel handles for every registered
// storage server and drives the heartbeat state machine against the
// metadata store. The metadata store's ssMu only guards the StorageServer
// table's fields; the actual net.Conn and its send/recv mutex live here so
// that channel I/O is never performed while holding the store's lock.
type Manager struct {
	store *metadata.Store

	mu       sync.Mutex
	channels map[string]*Channel

	// heartbeatInterval/heartbeatTimeout are stored as int64 nanoseconds so
	// the config hot-reload path can adjust them without a restart while
	// the sweep loop reads them concurrently.
	heartbeatInterval atomic.Int64
	heartbeatTimeout  atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewManager creates a Manager bound to store, using the package's default
// heartbeat interval/timeout until SetHeartbeatConfig is called.
func NewManager(store *metadata.Store) *Manager {
	m := &Manager{
		store:    store,
		channels: make(map[string]*Channel),
		shutdown: make(chan struct{}),
	}
	m.heartbeatInterval.Store(int64(HeartbeatInterval))
	m.heartbeatTimeout.Store(int64(HeartbeatTimeout))
	return m
}

// SetHeartbeatConfig updates the sweep interval and failure timeout. Safe to
// call against a running Manager; the config hot-reload watcher uses this.
func (m *Manager) SetHeartbeatConfig(interval, timeout time.Duration) {
	m.heartbeatInterval.Store(int64(interval))
	m.heartbeatTimeout.Store(int64(timeout))
}

// Register records a storage server's control channel, either as a brand
// new registration or a reconnect that preserves existing file metadata.
// It reasserts every filename the SS announces (spec §4.3) and evicts
// their search-cache relevance by invalidating the memo wholesale, since
// any SS flux can change which files are actually servable.
func (m *Manager) Register(id, ip string, nmPort, clientPort uint32, conn net.Conn, announcedFiles []string) {
	isReconnect := m.store.RegisterStorageServer(id, ip, nmPort, clientPort)

	m.mu.Lock()
	if old, ok := m.channels[id]; ok {
		_ = old.Close()
	}
	m.channels[id] = NewChannel(conn)
	m.mu.Unlock()

	for _, name := range announcedFiles {
		m.store.ReassertFile(name, id)
	}
	if len(announcedFiles) > 0 {
		m.store.InvalidateSearchCache()
	}

	logger.Info("storage server registered", logger.SSID(id), "reconnect", isReconnect)
}

// Channel returns the live control channel for id, if the SS is currently
// registered and connected.
func (m *Manager) Channel(id string) (*Channel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[id]
	return ch, ok
}

// removeChannel drops and closes the channel for id, called when the
// heartbeat sweep or a failed proxy call determines the SS is unreachable.
func (m *Manager) removeChannel(id string) {
	m.mu.Lock()
	ch, ok := m.channels[id]
	delete(m.channels, id)
	m.mu.Unlock()
	if ok {
		_ = ch.Close()
	}
}

// MarkFailed transitions id to Failed and drops its control channel. Called
// by the dispatcher when a proxied command fails on the control channel, so
// the next fallback/heartbeat attempt doesn't reuse a dead socket.
func (m *Manager) MarkFailed(id string) {
	m.store.MarkFailed(id)
	m.removeChannel(id)
}

// Run starts the heartbeat sweep loop; it blocks until ctx is cancelled or
// Shutdown is called. Intended to be launched with `go manager.Run(ctx)`.
func (m *Manager) Run(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	timer := time.NewTimer(time.Duration(m.heartbeatInterval.Load()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.shutdown:
			return
		case <-timer.C:
			m.sweep(ctx)
			timer.Reset(time.Duration(m.heartbeatInterval.Load()))
		}
	}
}

// sweep implements the heartbeat state machine transitions from spec §4.3.
func (m *Manager) sweep(ctx context.Context) {
	spanCtx, span := telemetry.StartSpan(ctx, telemetry.SpanHeartbeatSweep)
	defer span.End()

	for _, ssRec := range m.store.ListStorageServers() {
		if ssRec.State != metadata.SSActive {
			continue
		}

		if time.Since(ssRec.LastHeartbeat) > time.Duration(m.heartbeatTimeout.Load()) {
			logger.WarnCtx(spanCtx, "storage server heartbeat timed out", logger.SSID(ssRec.ID))
			m.MarkFailed(ssRec.ID)
			continue
		}

		m.ping(spanCtx, ssRec.ID)
	}

	m.recordStates()
}

// recordStates refreshes the per-state storage-server gauge served over
// the admin API's /metrics endpoint.
func (m *Manager) recordStates() {
	counts := map[metadata.SSState]int{}
	for _, ssRec := range m.store.ListStorageServers() {
		counts[ssRec.State]++
	}
	for _, state := range []metadata.SSState{metadata.SSUnregistered, metadata.SSActive, metadata.SSFailed} {
		metrics.StorageServersByState.WithLabelValues(state.String()).Set(float64(counts[state]))
	}
}

// ping sends a single HEARTBEAT frame over id's control channel. Failure
// marks the SS Failed and drops the channel; the caller's next Register
// (or a later heartbeat, once reconnected) will restore it.
func (m *Manager) ping(ctx context.Context, id string) {
	ch, ok := m.Channel(id)
	if !ok {
		m.store.MarkFailed(id)
		return
	}

	_, pingSpan := telemetry.StartSpan(ctx, telemetry.SpanHeartbeatPing, trace.WithAttributes(telemetry.SSID(id)))
	defer pingSpan.End()

	_, err := ch.Exchange(&wire.Message{Type: wire.HEARTBEAT})
	if err != nil {
		logger.Warn("heartbeat failed, marking storage server failed", logger.SSID(id), logger.Err(err))
		m.MarkFailed(id)
		return
	}
	m.store.MarkHeartbeatOK(id)
}

// BroadcastReplicate fires a best-effort REPLICATE notification for
// filename at every registered Active SS except excludeID (the SS that just
// took the CREATE). It never blocks the caller on a slow or dead peer
// beyond the channel's own write, and a failed notify only logs a warning:
// REPLICATE has no retry or acknowledgement, matching the spec's Non-goal
// of no replica quorum/consensus. Returns the ids it notified successfully.
func (m *Manager) BroadcastReplicate(excludeID, filename string) []string {
	m.mu.Lock()
	channels := make(map[string]*Channel, len(m.channels))
	for id, ch := range m.channels {
		if id == excludeID {
			continue
		}
		channels[id] = ch
	}
	m.mu.Unlock()

	notified := make([]string, 0, len(channels))
	for id, ch := range channels {
		ssRec, ok := m.store.GetStorageServer(id)
		if !ok || ssRec.State != metadata.SSActive {
			continue
		}
		msg := &wire.Message{Type: wire.REPLICATE, Filename: filename, Data: []byte(excludeID)}
		if err := ch.Notify(msg); err != nil {
			logger.Warn("replicate notify failed", logger.SSID(id), logger.Filename(filename), logger.Err(err))
			continue
		}
		notified = append(notified, id)
	}
	return notified
}

// Shutdown sends a SHUTDOWN message on every registered control channel and
// stops the heartbeat loop.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdown)

		m.mu.Lock()
		channels := make(map[string]*Channel, len(m.channels))
		for id, ch := range m.channels {
			channels[id] = ch
		}
		m.mu.Unlock()

		for id, ch := range channels {
			if err := ch.Notify(&wire.Message{Type: wire.SHUTDOWN}); err != nil {
				logger.Warn("failed to notify storage server of shutdown", logger.SSID(id), logger.Err(err))
			}
			_ = ch.Close()
		}
	})
	m.wg.Wait()
}
