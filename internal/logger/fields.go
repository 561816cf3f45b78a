package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the naming server.
// Use these keys consistently so log lines aggregate/query cleanly.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Wire Protocol & Operation
	// ========================================================================
	KeyOperation = "operation"  // Wire message type: CREATE, READ, REGISTER_SS, ...
	KeyErrorCode = "error_code" // Response errorCode returned to the peer

	// ========================================================================
	// Namespace
	// ========================================================================
	KeyFilename      = "filename"       // File name key in the namespace
	KeyFolder        = "folder"         // Folder path
	KeyCheckpointTag = "checkpoint_tag" // Checkpoint tag
	KeyRequestID     = "request_id"     // Access-request id

	// ========================================================================
	// Identity & Connection
	// ========================================================================
	KeyUsername   = "username"    // Authenticated client username
	KeyClientIP   = "client_ip"   // Client IP address
	KeyClientPort = "client_port" // Client source port
	KeySSID       = "ss_id"       // Storage server id
	KeySSIp       = "ss_ip"       // Storage server ip
	KeySSPort     = "ss_port"     // Storage server port

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyDataLength = "data_length" // Payload length in a wire message

	// ========================================================================
	// Heartbeat / Liveness
	// ========================================================================
	KeyHeartbeatAge = "heartbeat_age_s" // Seconds since last heartbeat
	KeyPrevState    = "prev_state"      // Previous SS state
	KeyNewState     = "new_state"       // New SS state

	// ========================================================================
	// Search cache
	// ========================================================================
	KeyQuery     = "query"     // Search query string
	KeyCacheHit  = "cache_hit" // Search cache hit indicator
	KeyResultLen = "results"   // Number of results returned
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Operation returns a slog.Attr for the wire message type.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// ErrorCode returns a slog.Attr for the response error code.
func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }

// Filename returns a slog.Attr for a namespace filename.
func Filename(name string) slog.Attr { return slog.String(KeyFilename, name) }

// Folder returns a slog.Attr for a folder path.
func Folder(path string) slog.Attr { return slog.String(KeyFolder, path) }

// CheckpointTag returns a slog.Attr for a checkpoint tag.
func CheckpointTag(tag string) slog.Attr { return slog.String(KeyCheckpointTag, tag) }

// RequestID returns a slog.Attr for an access-request id.
func RequestID(id uint64) slog.Attr { return slog.Uint64(KeyRequestID, id) }

// Username returns a slog.Attr for a username.
func Username(name string) slog.Attr { return slog.String(KeyUsername, name) }

// ClientIP returns a slog.Attr for a client IP address.
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

// ClientPort returns a slog.Attr for a client source port.
func ClientPort(port int) slog.Attr { return slog.Int(KeyClientPort, port) }

// SSID returns a slog.Attr for a storage server id.
func SSID(id string) slog.Attr { return slog.String(KeySSID, id) }

// SSAddr returns slog.Attrs for a storage server ip/port pair.
func SSAddr(ip string, port int) []any {
	return []any{slog.String(KeySSIp, ip), slog.Int(KeySSPort, port)}
}

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// DataLength returns a slog.Attr for a wire message payload length.
func DataLength(n int) slog.Attr { return slog.Int(KeyDataLength, n) }

// HeartbeatAge returns a slog.Attr for seconds since the last heartbeat.
func HeartbeatAge(s float64) slog.Attr { return slog.Float64(KeyHeartbeatAge, s) }

// StateTransition returns slog.Attrs describing an SS state transition.
func StateTransition(prev, next string) []any {
	return []any{slog.String(KeyPrevState, prev), slog.String(KeyNewState, next)}
}

// Query returns a slog.Attr for a search query string.
func Query(q string) slog.Attr { return slog.String(KeyQuery, q) }

// CacheHit returns a slog.Attr for a search cache hit indicator.
func CacheHit(hit bool) slog.Attr { return slog.Bool(KeyCacheHit, hit) }

// ResultLen returns a slog.Attr for the number of results returned.
func ResultLen(n int) slog.Attr { return slog.Int(KeyResultLen, n) }
