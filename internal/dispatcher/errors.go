package dispatcher

import (
	"errors"

	"github.com/marmos91/naming-server/internal/metadata"
	"github.com/marmos91/naming-server/internal/wire"
)

// errSSUnavailable marks an SS proxy/fallback failure distinct from any
// metadata.StoreError kind; errorReply falls back to ERR_SERVER_ERROR for
// it, so callers that want ERR_SS_UNAVAILABLE build that reply directly via
// ssUnavailable instead of routing it through errorReply.
var errSSUnavailable = errors.New("storage server unavailable")

// mapKind translates a metadata.Kind into the wire.ErrorCode the dispatcher
// replies with, keeping the store free of any dependency on the transport
// encoding (spec.md §7's closed error-kind policy).
func mapKind(k metadata.Kind) wire.ErrorCode {
	switch k {
	case metadata.ErrNotFound:
		return wire.ERR_FILE_NOT_FOUND
	case metadata.ErrAlreadyExists:
		return wire.ERR_FILE_EXISTS
	case metadata.ErrPermissionDenied:
		return wire.ERR_PERMISSION_DENIED
	case metadata.ErrInvalidArgument:
		return wire.ERR_INVALID_REQUEST
	case metadata.ErrFolderNotFound:
		return wire.ERR_FOLDER_NOT_FOUND
	case metadata.ErrFolderExists:
		return wire.ERR_FOLDER_EXISTS
	case metadata.ErrCheckpointNotFound:
		return wire.ERR_CHECKPOINT_NOT_FOUND
	case metadata.ErrRequestNotFound:
		return wire.ERR_REQUEST_NOT_FOUND
	case metadata.ErrSessionLocked:
		return wire.ERR_FILE_LOCKED
	default:
		return wire.ERR_SERVER_ERROR
	}
}

// errorReply builds the wire reply for err, preferring the store's own
// closed error kind and falling back to ERR_SERVER_ERROR for anything else
// (I/O failures, SS proxy errors already classified by the caller).
func errorReply(msg *wire.Message, err error) *wire.Message {
	var storeErr *metadata.StoreError
	if errors.As(err, &storeErr) {
		return msg.Reply(mapKind(storeErr.Kind), []byte(storeErr.Message))
	}
	return msg.Reply(wire.ERR_SERVER_ERROR, []byte(err.Error()))
}
