package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for naming-server spans.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client / peer attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"
	AttrClientPort = "client.port"

	// ========================================================================
	// Wire protocol attributes
	// ========================================================================
	AttrOperation     = "ns.operation"      // Wire message type: CREATE, READ, ...
	AttrFilename      = "ns.filename"       // Namespace file name
	AttrFolder        = "ns.folder"         // Folder path
	AttrCheckpointTag = "ns.checkpoint_tag" // Checkpoint tag
	AttrRequestID     = "ns.request_id"     // Access-request id
	AttrErrorCode     = "ns.error_code"     // Response error code
	AttrDataLength    = "ns.data_length"    // Payload length

	// ========================================================================
	// Storage server attributes
	// ========================================================================
	AttrSSID   = "ns.ss_id"
	AttrSSIp   = "ns.ss_ip"
	AttrSSPort = "ns.ss_port"

	// ========================================================================
	// User attributes
	// ========================================================================
	AttrUsername = "user.name"

	// ========================================================================
	// Search cache attributes
	// ========================================================================
	AttrQuery    = "ns.search.query"
	AttrCacheHit = "ns.search.cache_hit"
)

// Span names for naming-server operations.
const (
	// Root span for a single dispatched client or SS message
	SpanDispatch = "ns.dispatch"

	// Per-operation spans, named after the wire message type
	SpanCreate           = "ns.CREATE"
	SpanRead             = "ns.READ"
	SpanWrite            = "ns.WRITE"
	SpanDelete           = "ns.DELETE"
	SpanStream           = "ns.STREAM"
	SpanInfo             = "ns.INFO"
	SpanView             = "ns.VIEW"
	SpanExec             = "ns.EXEC"
	SpanSearch           = "ns.SEARCH"
	SpanCreateFolder     = "ns.CREATEFOLDER"
	SpanViewFolder       = "ns.VIEWFOLDER"
	SpanMove             = "ns.MOVE"
	SpanCheckpoint       = "ns.CHECKPOINT"
	SpanViewCheckpoint   = "ns.VIEWCHECKPOINT"
	SpanRevert           = "ns.REVERT"
	SpanListCheckpoints  = "ns.LISTCHECKPOINTS"
	SpanUndo             = "ns.UNDO"
	SpanAddAccess        = "ns.ADD_ACCESS"
	SpanRemAccess        = "ns.REM_ACCESS"
	SpanRequestAccess    = "ns.REQUESTACCESS"
	SpanViewRequests     = "ns.VIEWREQUESTS"
	SpanRespondRequest   = "ns.RESPONDREQUEST"
	SpanRegisterClient   = "ns.REGISTER_CLIENT"
	SpanRegisterSS       = "ns.REGISTER_SS"

	// Background / internal operations
	SpanHeartbeatSweep  = "ns.heartbeat.sweep"
	SpanHeartbeatPing   = "ns.heartbeat.ping"
	SpanFallbackCache   = "ns.fallback.cache"
	SpanFallbackBackup  = "ns.fallback.backup"
	SpanFallbackFailover = "ns.fallback.failover"
	SpanRegistryLoad    = "ns.registry.load"
	SpanRegistrySave    = "ns.registry.save"
)

// ClientIP returns an attribute for client IP address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Operation returns an attribute for the wire message type.
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// Filename returns an attribute for a namespace filename.
func Filename(name string) attribute.KeyValue {
	return attribute.String(AttrFilename, name)
}

// Folder returns an attribute for a folder path.
func Folder(path string) attribute.KeyValue {
	return attribute.String(AttrFolder, path)
}

// CheckpointTag returns an attribute for a checkpoint tag.
func CheckpointTag(tag string) attribute.KeyValue {
	return attribute.String(AttrCheckpointTag, tag)
}

// RequestID returns an attribute for an access-request id.
func RequestID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrRequestID, int64(id))
}

// ErrorCode returns an attribute for a response error code.
func ErrorCode(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}

// DataLength returns an attribute for a wire message payload length.
func DataLength(n int) attribute.KeyValue {
	return attribute.Int(AttrDataLength, n)
}

// SSID returns an attribute for a storage server id.
func SSID(id string) attribute.KeyValue {
	return attribute.String(AttrSSID, id)
}

// Username returns an attribute for a username.
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// Query returns an attribute for a search query string.
func Query(q string) attribute.KeyValue {
	return attribute.String(AttrQuery, q)
}

// CacheHit returns an attribute for a search cache hit indicator.
func CacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// StartOperationSpan starts a span for a dispatched wire operation.
// spanName should be one of the Span* constants for the message type.
func StartOperationSpan(ctx context.Context, spanName, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Operation(operation)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}
