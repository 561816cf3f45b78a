package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/naming-server/internal/audit"
	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metadata"
	"github.com/marmos91/naming-server/internal/wire"
)

// targetUser returns msg.Data decoded as a username; ADD_ACCESS/REM_ACCESS
// carry the target username in Data rather than Username, since Username
// already identifies the caller.
func targetUser(msg *wire.Message) string {
	return string(msg.Data)
}

// aclDetail renders a (read, write) capability pair for the audit log.
func aclDetail(canRead, canWrite bool) string {
	switch {
	case canRead && canWrite:
		return "read,write"
	case canWrite:
		return "write"
	case canRead:
		return "read"
	default:
		return "none"
	}
}

// opAddAccess: caller must own the file and the target must be a known
// user. flags&FlagWrite implies read, mirroring ACLEntry's own invariant.
func opAddAccess(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	file, err := d.store.GetFile(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	if file.Owner != username {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("only the owner may grant access"))
	}
	target := targetUser(msg)
	if !d.store.UserExists(target) {
		return msg.Reply(wire.ERR_INVALID_REQUEST, []byte("unknown user"))
	}

	canWrite := msg.Flags&wire.FlagWrite != 0
	canRead := msg.Flags&wire.FlagRead != 0 || canWrite
	if err := d.store.AddAccess(msg.Filename, target, canRead, canWrite); err != nil {
		return errorReply(msg, err)
	}

	d.audit.Record(audit.Event{
		Timestamp: time.Now(), Action: "add_access", Filename: msg.Filename,
		Actor: username, Target: target, Detail: aclDetail(canRead, canWrite),
	})
	logger.Info("access granted", logger.Filename(msg.Filename), "target", target)
	return msg.Reply(wire.RESP_SUCCESS, nil)
}

// opRemAccess: caller must own the file; removing a non-existent ACL entry
// is idempotent (store.RemoveAccess already treats it as a no-op).
func opRemAccess(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	file, err := d.store.GetFile(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	if file.Owner != username {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("only the owner may revoke access"))
	}

	target := targetUser(msg)
	if err := d.store.RemoveAccess(msg.Filename, target); err != nil {
		return errorReply(msg, err)
	}

	d.audit.Record(audit.Event{
		Timestamp: time.Now(), Action: "rem_access", Filename: msg.Filename,
		Actor: username, Target: target,
	})
	logger.Info("access revoked", logger.Filename(msg.Filename), "target", target)
	return msg.Reply(wire.RESP_SUCCESS, nil)
}

// opRequestAccess: a non-owner petitions for read, write, or read-write
// access, encoded in flags the same way ADD_ACCESS encodes a grant. The
// new request's id is returned in the reply's RequestID field rather than
// via msg.Reply, since Reply echoes the caller's (here: zero) RequestID.
func opRequestAccess(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	if _, err := d.store.GetFile(msg.Filename); err != nil {
		return errorReply(msg, err)
	}

	accessType := metadata.AccessRead
	switch {
	case msg.Flags&wire.FlagWrite != 0 && msg.Flags&wire.FlagRead != 0:
		accessType = metadata.AccessReadWrite
	case msg.Flags&wire.FlagWrite != 0:
		accessType = metadata.AccessWrite
	}

	id, err := d.store.RequestAccess(msg.Filename, username, accessType)
	if err != nil {
		return errorReply(msg, err)
	}

	d.audit.Record(audit.Event{
		Timestamp: time.Now(), Action: "request_access", Filename: msg.Filename,
		Actor: username, Detail: aclDetail(accessType.CanRead(), accessType.CanWrite()),
	})
	logger.Info("access requested", logger.Filename(msg.Filename), logger.Username(username), logger.RequestID(id))
	return &wire.Message{Type: msg.Type, RequestID: id, ErrorCode: wire.RESP_SUCCESS}
}

// opViewRequests: owner-only listing of pending requests as
// "id:requester:accessType:requestedAt" lines.
func opViewRequests(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	file, err := d.store.GetFile(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	if file.Owner != username {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("only the owner may view requests"))
	}

	pending, err := d.store.ListPendingRequests(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	lines := make([]string, 0, len(pending))
	for _, r := range pending {
		lines = append(lines, fmt.Sprintf("%d:%s:%d:%s", r.ID, r.Requester, r.AccessType, r.RequestedAt.Format("2006-01-02T15:04:05Z07:00")))
	}
	return msg.Reply(wire.RESP_SUCCESS, []byte(joinLines(lines)))
}

// opRespondRequest: owner approves or denies a pending request. flags here
// is repurposed from its ADD_ACCESS/REQUESTACCESS meaning: nonzero means
// approve, zero means deny. On approval, the ACL grant is derived from the
// request's own AccessType, not from this message's flags.
func opRespondRequest(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	file, err := d.store.GetFile(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	if file.Owner != username {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("only the owner may respond to requests"))
	}

	approve := msg.Flags != 0
	resolved, err := d.store.RespondRequest(msg.Filename, msg.RequestID, approve)
	if err != nil {
		return errorReply(msg, err)
	}

	if approve {
		if err := d.store.AddAccess(msg.Filename, resolved.Requester, resolved.AccessType.CanRead(), resolved.AccessType.CanWrite()); err != nil {
			return errorReply(msg, err)
		}
	}

	detail := "denied"
	if approve {
		detail = "approved:" + aclDetail(resolved.AccessType.CanRead(), resolved.AccessType.CanWrite())
	}
	d.audit.Record(audit.Event{
		Timestamp: time.Now(), Action: "respond_request", Filename: msg.Filename,
		Actor: username, Target: resolved.Requester, Detail: detail,
	})
	logger.Info("access request resolved", logger.Filename(msg.Filename), logger.RequestID(msg.RequestID), "approved", approve)
	return msg.Reply(wire.RESP_SUCCESS, nil)
}
