package dispatcher

import (
	"context"

	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metadata"
	"github.com/marmos91/naming-server/internal/registry"
	"github.com/marmos91/naming-server/internal/telemetry"
	"github.com/marmos91/naming-server/internal/wire"
)

// handlerFunc processes one dispatched client message and returns the
// reply to write back.
type handlerFunc func(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message

// opTable is the client-facing operation table from spec.md §4.1.
// REGISTER_CLIENT/REGISTER_SS are handled before a connection reaches this
// table (client.go); HEARTBEAT/REPLICATE/SHUTDOWN are NS<->SS-only types a
// client never sends.
var opTable = map[wire.MessageType]handlerFunc{
	wire.CREATE:          opCreate,
	wire.READ:            opRead,
	wire.STREAM:          opRead, // STREAM shares READ's endpoint-resolution semantics
	wire.WRITE:           opWrite,
	wire.UNDO:            opWrite, // UNDO shares WRITE's endpoint-resolution semantics
	wire.DELETE:          opDelete,
	wire.INFO:            opInfo,
	wire.VIEW:            opView,
	wire.EXEC:            opExec,
	wire.SEARCH:          opSearch,
	wire.CREATEFOLDER:    opCreateFolder,
	wire.VIEWFOLDER:      opViewFolder,
	wire.MOVE:            opMove,
	wire.CHECKPOINT:      opCheckpoint,
	wire.VIEWCHECKPOINT:  opViewCheckpoint,
	wire.REVERT:          opRevert,
	wire.LISTCHECKPOINTS: opListCheckpoints,
	wire.ADD_ACCESS:      opAddAccess,
	wire.REM_ACCESS:      opRemAccess,
	wire.REQUESTACCESS:   opRequestAccess,
	wire.VIEWREQUESTS:    opViewRequests,
	wire.RESPONDREQUEST:  opRespondRequest,
	wire.LIST_USERS:      opListUsers,
	wire.LIST_SS:         opListSS,
}

var opSpans = map[wire.MessageType]string{
	wire.CREATE:          telemetry.SpanCreate,
	wire.READ:            telemetry.SpanRead,
	wire.STREAM:          telemetry.SpanStream,
	wire.WRITE:           telemetry.SpanWrite,
	wire.UNDO:            telemetry.SpanUndo,
	wire.DELETE:          telemetry.SpanDelete,
	wire.INFO:            telemetry.SpanInfo,
	wire.VIEW:            telemetry.SpanView,
	wire.EXEC:            telemetry.SpanExec,
	wire.SEARCH:          telemetry.SpanSearch,
	wire.CREATEFOLDER:    telemetry.SpanCreateFolder,
	wire.VIEWFOLDER:      telemetry.SpanViewFolder,
	wire.MOVE:            telemetry.SpanMove,
	wire.CHECKPOINT:      telemetry.SpanCheckpoint,
	wire.VIEWCHECKPOINT:  telemetry.SpanViewCheckpoint,
	wire.REVERT:          telemetry.SpanRevert,
	wire.LISTCHECKPOINTS: telemetry.SpanListCheckpoints,
	wire.ADD_ACCESS:      telemetry.SpanAddAccess,
	wire.REM_ACCESS:      telemetry.SpanRemAccess,
	wire.REQUESTACCESS:   telemetry.SpanRequestAccess,
	wire.VIEWREQUESTS:    telemetry.SpanViewRequests,
	wire.RESPONDREQUEST:  telemetry.SpanRespondRequest,
	wire.LIST_USERS:      telemetry.SpanDispatch,
	wire.LIST_SS:         telemetry.SpanDispatch,
}

// ssUnavailable builds the standard SS_UNAVAILABLE reply.
func ssUnavailable(msg *wire.Message) *wire.Message {
	return msg.Reply(wire.ERR_SS_UNAVAILABLE, []byte("storage server unavailable"))
}

// activeChannel returns the live control channel for ssID, or ok=false if
// the SS is unregistered, Failed, or has no control channel bound.
func (d *Dispatcher) activeChannel(ssID string) (ch *registry.Channel, ok bool) {
	ssRec, found := d.store.GetStorageServer(ssID)
	if !found || ssRec.State != metadata.SSActive {
		return nil, false
	}
	c, found := d.registry.Channel(ssID)
	if !found {
		return nil, false
	}
	return c, true
}

// proxySS sends req over ssID's control channel and returns the reply. On
// I/O failure it marks the SS Failed (spec.md §7: SS I/O errors on the
// control channel mark the SS Failed and close the channel) so the next
// caller's fallback/heartbeat attempt doesn't reuse a dead socket.
func (d *Dispatcher) proxySS(ssID string, req *wire.Message) (*wire.Message, error) {
	ch, ok := d.activeChannel(ssID)
	if !ok {
		return nil, errSSUnavailable
	}
	reply, err := ch.Exchange(req)
	if err != nil {
		logger.Warn("SS control-channel proxy failed, marking failed", logger.SSID(ssID), logger.Err(err))
		d.registry.MarkFailed(ssID)
		return nil, errSSUnavailable
	}
	return reply, nil
}
