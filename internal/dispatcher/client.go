package dispatcher

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metrics"
	"github.com/marmos91/naming-server/internal/telemetry"
	"github.com/marmos91/naming-server/internal/wire"
)

// idleDeadline bounds each read so the client loop notices shutdown without
// a dedicated control goroutine per connection, mirroring the teacher's
// portmap TCP handler.
const idleDeadline = 5 * time.Second

// handleConn reads the first message to classify the peer (spec.md §4.1:
// the first message must be REGISTER_CLIENT or REGISTER_SS, anything else
// closes the connection) and either enters the client request loop or hands
// the connection to the registry manager as a persistent SS control
// channel.
func (d *Dispatcher) handleConn(ctx context.Context, conn net.Conn) {
	first, err := wire.ReadMessage(conn)
	if err != nil {
		_ = conn.Close()
		return
	}

	switch first.Type {
	case wire.REGISTER_CLIENT:
		d.handleClient(ctx, conn, first)
	case wire.REGISTER_SS:
		d.handleStorageServer(conn, first)
	default:
		logger.Warn("connection's first message was not a registration", "type", first.Type.String(), "remote", conn.RemoteAddr())
		_ = conn.Close()
	}
}

// handleStorageServer decodes the REGISTER_SS payload, registers the
// control channel, and hands the socket to the registry manager. The
// connection is intentionally left open: it is now owned by the registry's
// Channel and used by both proxied commands and the heartbeat sweep.
func (d *Dispatcher) handleStorageServer(conn net.Conn, msg *wire.Message) {
	reg, err := wire.DecodeSSRegistration(msg.Data)
	if err != nil {
		_ = wire.WriteMessage(conn, msg.Reply(wire.ERR_INVALID_REQUEST, []byte(err.Error())))
		_ = conn.Close()
		return
	}

	d.registry.Register(reg.SSID, reg.IP, reg.NMPort, reg.ClientPort, conn, reg.Files)

	if err := wire.WriteMessage(conn, msg.Reply(wire.RESP_SUCCESS, nil)); err != nil {
		logger.Warn("failed to ack SS registration", logger.SSID(reg.SSID), logger.Err(err))
	}
}

// handleClient logs the caller in, acknowledges REGISTER_CLIENT, then loops
// reading one message at a time until the socket errs, EOFs, or the
// dispatcher shuts down.
func (d *Dispatcher) handleClient(ctx context.Context, conn net.Conn, register *wire.Message) {
	defer conn.Close()

	username := register.Username
	clientIP := conn.RemoteAddr().String()

	if err := d.store.Login(username, clientIP); err != nil {
		_ = wire.WriteMessage(conn, errorReply(register, err))
		return
	}
	metrics.ActiveClients.Inc()
	defer metrics.ActiveClients.Dec()
	defer d.store.Logout(username)

	if err := wire.WriteMessage(conn, register.Reply(wire.RESP_SUCCESS, nil)); err != nil {
		return
	}

	logger.Info("client registered", logger.Username(username), logger.ClientIP(clientIP))

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(idleDeadline)); err != nil {
			return
		}

		msg, err := wire.ReadMessage(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("client disconnected", logger.Username(username))
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			logger.Debug("client read error", logger.Username(username), logger.Err(err))
			return
		}

		reply := d.dispatch(ctx, username, msg)
		if err := wire.WriteMessage(conn, reply); err != nil {
			logger.Debug("client write error", logger.Username(username), logger.Err(err))
			return
		}
	}
}

// dispatch routes msg to its operation handler and wraps it in a span
// named after the wire message type.
func (d *Dispatcher) dispatch(ctx context.Context, username string, msg *wire.Message) *wire.Message {
	spanName, ok := opSpans[msg.Type]
	if !ok {
		return msg.Reply(wire.ERR_INVALID_REQUEST, []byte("unknown or unsupported message type"))
	}

	spanCtx, span := telemetry.StartOperationSpan(ctx, spanName, msg.Type.String(),
		telemetry.Username(username), telemetry.Filename(msg.Filename))
	defer span.End()

	handler, ok := opTable[msg.Type]
	if !ok {
		return msg.Reply(wire.ERR_INVALID_REQUEST, []byte("unknown or unsupported message type"))
	}

	start := time.Now()
	reply := handler(d, spanCtx, username, msg)
	op := msg.Type.String()
	metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.OperationsTotal.WithLabelValues(op, reply.ErrorCode.String()).Inc()
	return reply
}
