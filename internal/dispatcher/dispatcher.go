// Package dispatcher implements the naming server's accept loop and the
// per-connection workers that classify each peer as a client or a storage
// server and drive the operation table against the metadata store.
package dispatcher

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/marmos91/naming-server/internal/audit"
	"github.com/marmos91/naming-server/internal/fallback"
	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metadata"
	"github.com/marmos91/naming-server/internal/registry"
)

// DefaultPort is the NS's default listening port (spec.md §6).
const DefaultPort = 8080

// DefaultMaxClients bounds concurrent client connections (spec.md §6).
const DefaultMaxClients = 100

// Config configures a Dispatcher.
type Config struct {
	Port       int
	MaxClients int
}

// Dispatcher owns the TCP accept loop and spawns one worker per connection.
type Dispatcher struct {
	cfg      Config
	store    *metadata.Store
	registry *registry.Manager
	fallback *fallback.Engine
	audit    *audit.Log

	listener net.Listener

	shutdown      chan struct{}
	shutdownOnce  sync.Once
	wg            sync.WaitGroup
	connSemaphore chan struct{}
}

// New creates a Dispatcher bound to store/registry/fallback, applying
// DefaultPort/DefaultMaxClients for zero-valued Config fields.
func New(store *metadata.Store, reg *registry.Manager, fb *fallback.Engine, cfg Config) *Dispatcher {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.MaxClients == 0 {
		cfg.MaxClients = DefaultMaxClients
	}
	return &Dispatcher{
		cfg:           cfg,
		store:         store,
		registry:      reg,
		fallback:      fb,
		audit:         audit.NewLog(audit.DefaultCapacity),
		shutdown:      make(chan struct{}),
		connSemaphore: make(chan struct{}, cfg.MaxClients),
	}
}

// Audit returns the dispatcher's access-control audit log, for the admin
// API's read-only GET /audit to consult.
func (d *Dispatcher) Audit() *audit.Log {
	return d.audit
}

// Serve binds the listener and runs the accept loop until ctx is cancelled
// or Stop is called. It blocks until every spawned worker has returned.
func (d *Dispatcher) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", d.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	d.listener = listener

	logger.Info("naming server listening", "address", addr, "max_clients", d.cfg.MaxClients)

	go func() {
		select {
		case <-ctx.Done():
			d.Stop()
		case <-d.shutdown:
		}
	}()

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				d.wg.Wait()
				return nil
			default:
				logger.Warn("accept error", logger.Err(err))
				d.wg.Wait()
				return err
			}
		}

		select {
		case d.connSemaphore <- struct{}{}:
		default:
			logger.Warn("max concurrent clients reached, rejecting connection", "remote", conn.RemoteAddr())
			_ = conn.Close()
			continue
		}

		d.wg.Add(1)
		go func(c net.Conn) {
			defer d.wg.Done()
			defer func() { <-d.connSemaphore }()
			d.handleConn(ctx, c)
		}(conn)
	}
}

// Ready reports whether the wire listener is bound and accepting
// connections, for the admin API's /readyz probe.
func (d *Dispatcher) Ready() bool {
	return d.listener != nil
}

// Stop closes the listener, signalling the accept loop and every in-flight
// client loop to exit.
func (d *Dispatcher) Stop() {
	d.shutdownOnce.Do(func() {
		close(d.shutdown)
		if d.listener != nil {
			_ = d.listener.Close()
		}
	})
}
