package dispatcher

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/marmos91/naming-server/internal/fallback"
	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metadata"
	"github.com/marmos91/naming-server/internal/metrics"
	"github.com/marmos91/naming-server/internal/wire"
)

// opCreate: file must not already exist; target SS is named by msg.Data
// (SS id) when non-empty, else an arbitrary Active SS is picked. The SS
// confirms the create over its control channel before the record is
// committed, so a rejected CREATE never leaves a dangling FileRecord.
func opCreate(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	if d.store.FileExists(msg.Filename) {
		return msg.Reply(wire.ERR_FILE_EXISTS, []byte("file already exists"))
	}

	ssID := string(msg.Data)
	if ssID == "" {
		id, ok := d.store.FirstActiveStorageServer("")
		if !ok {
			return ssUnavailable(msg)
		}
		ssID = id
	}

	reply, err := d.proxySS(ssID, &wire.Message{Type: wire.CREATE, Filename: msg.Filename})
	if err != nil {
		return ssUnavailable(msg)
	}
	if reply.ErrorCode != wire.RESP_SUCCESS {
		return msg.Reply(reply.ErrorCode, reply.Data)
	}

	if _, err := d.store.CreateFile(msg.Filename, username, ssID, msg.Folder); err != nil {
		return errorReply(msg, err)
	}
	d.store.InvalidateSearchCache()

	targets := d.registry.BroadcastReplicate(ssID, msg.Filename)
	if len(targets) > 0 {
		d.store.SetReplicationTargets(msg.Filename, targets)
	}

	logger.Info("file created", logger.Filename(msg.Filename), logger.Username(username), logger.SSID(ssID))
	return msg.Reply(wire.RESP_SUCCESS, nil)
}

// opRead serves READ and STREAM: both resolve to the owning SS's endpoint,
// falling back to the local cache/backup/failover chain when that SS is
// unreachable.
func opRead(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	file, err := d.store.GetFile(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	canRead, _, err := d.store.CheckPermission(msg.Filename, username)
	if err != nil {
		return errorReply(msg, err)
	}
	if !canRead {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("permission denied"))
	}

	if ssRec, ok := d.store.GetStorageServer(file.StorageServerID); ok && ssRec.State == metadata.SSActive {
		_ = d.store.TouchAccess(msg.Filename)
		return msg.SSInfoReply(ssRec.IP, ssRec.ClientPort)
	}

	result, err := d.fallback.Read(msg.Filename, file.StorageServerID, false)
	if err != nil {
		logger.Warn("fallback read failed", logger.Filename(msg.Filename), logger.Err(err))
		metrics.FallbackOutcomes.WithLabelValues("error").Inc()
		return ssUnavailable(msg)
	}
	switch result.Outcome {
	case fallback.Data:
		metrics.FallbackOutcomes.WithLabelValues("data").Inc()
		_ = d.store.TouchAccess(msg.Filename)
		return msg.Reply(wire.RESP_SUCCESS, result.Body)
	case fallback.Failover:
		metrics.FallbackOutcomes.WithLabelValues("failover").Inc()
		return msg.SSInfoReply(result.SSIp, result.SSPort)
	default:
		metrics.FallbackOutcomes.WithLabelValues("unavailable").Inc()
		return ssUnavailable(msg)
	}
}

// opWrite serves WRITE and UNDO: both require write access and an Active
// owning SS (the spec gives no cache/backup fallback for a write path) and
// reply with that SS's client endpoint for the caller to stream bytes to
// directly.
func opWrite(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	file, err := d.store.GetFile(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	_, canWrite, err := d.store.CheckPermission(msg.Filename, username)
	if err != nil {
		return errorReply(msg, err)
	}
	if !canWrite {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("permission denied"))
	}

	ssRec, ok := d.store.GetStorageServer(file.StorageServerID)
	if !ok || ssRec.State != metadata.SSActive {
		return ssUnavailable(msg)
	}

	_ = d.store.TouchModified(msg.Filename)
	return msg.SSInfoReply(ssRec.IP, ssRec.ClientPort)
}

// opDelete: caller must own the file, and the owning SS must confirm the
// delete before the record and everything attached to it (ACL,
// checkpoints, requests) is dropped.
func opDelete(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	file, err := d.store.GetFile(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	if file.Owner != username {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("only the owner may delete"))
	}

	reply, err := d.proxySS(file.StorageServerID, &wire.Message{Type: wire.DELETE, Filename: msg.Filename})
	if err != nil {
		return ssUnavailable(msg)
	}
	if reply.ErrorCode != wire.RESP_SUCCESS {
		return msg.Reply(reply.ErrorCode, reply.Data)
	}

	if err := d.store.DeleteFile(msg.Filename); err != nil {
		return errorReply(msg, err)
	}
	d.store.InvalidateSearchCache()

	logger.Info("file deleted", logger.Filename(msg.Filename), logger.Username(username))
	return msg.Reply(wire.RESP_SUCCESS, nil)
}

// opInfo fetches size/word/char counts, proxying an INFO request to the
// owning SS when Active, or recomputing from cache/backup via the fallback
// engine when not. The fallback-path reply payload is the "size:words:chars"
// text encoding built by encodeStats; the SS-proxied path passes the SS's
// own reply payload through unchanged.
func opInfo(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	file, err := d.store.GetFile(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	canRead, _, err := d.store.CheckPermission(msg.Filename, username)
	if err != nil {
		return errorReply(msg, err)
	}
	if !canRead {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("permission denied"))
	}

	if ssRec, ok := d.store.GetStorageServer(file.StorageServerID); ok && ssRec.State == metadata.SSActive {
		reply, err := d.proxySS(file.StorageServerID, &wire.Message{Type: wire.INFO, Filename: msg.Filename})
		if err != nil {
			return ssUnavailable(msg)
		}
		if reply.ErrorCode != wire.RESP_SUCCESS {
			return msg.Reply(reply.ErrorCode, reply.Data)
		}
		_ = d.store.TouchAccess(msg.Filename)
		return msg.Reply(wire.RESP_SUCCESS, reply.Data)
	}

	result, err := d.fallback.Read(msg.Filename, file.StorageServerID, true)
	if err != nil {
		return ssUnavailable(msg)
	}
	switch result.Outcome {
	case fallback.Data:
		_ = d.store.RefreshStats(msg.Filename, result.Size, result.Words, result.Chars)
		return msg.Reply(wire.RESP_SUCCESS, encodeStats(result.Size, result.Words, result.Chars))
	case fallback.Failover:
		return msg.SSInfoReply(result.SSIp, result.SSPort)
	default:
		return ssUnavailable(msg)
	}
}

// opView lists filenames visible to the caller, or every file when
// wire.FlagAll is set. Results are newline-joined filenames: VIEW has no
// per-file detail in the wire spec beyond the name.
func opView(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	files := d.store.VisibleFiles(username, msg.Flags&wire.FlagAll != 0)
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return msg.Reply(wire.RESP_SUCCESS, []byte(joinLines(names)))
}

// opExec fetches the file's bytes from its owning SS's client port, writes
// them to a temp file, and runs them under a shell, returning combined
// output. This is read-permission-gated remote execution, matching the
// spec's explicit description of EXEC as a feature rather than a defect.
func opExec(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	file, err := d.store.GetFile(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	canRead, _, err := d.store.CheckPermission(msg.Filename, username)
	if err != nil {
		return errorReply(msg, err)
	}
	if !canRead {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("permission denied"))
	}

	ssRec, ok := d.store.GetStorageServer(file.StorageServerID)
	if !ok || ssRec.State != metadata.SSActive {
		return ssUnavailable(msg)
	}

	body, err := fetchFromSS(ssRec.IP, ssRec.ClientPort, msg.Filename)
	if err != nil {
		logger.Warn("EXEC fetch from SS failed", logger.Filename(msg.Filename), logger.Err(err))
		return ssUnavailable(msg)
	}

	tmp, err := os.CreateTemp("", "ns-exec-*")
	if err != nil {
		return msg.Reply(wire.ERR_SERVER_ERROR, []byte(err.Error()))
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return msg.Reply(wire.ERR_SERVER_ERROR, []byte(err.Error()))
	}
	tmp.Close()
	if err := os.Chmod(tmpPath, 0o700); err != nil {
		return msg.Reply(wire.ERR_SERVER_ERROR, []byte(err.Error()))
	}

	out, runErr := exec.CommandContext(ctx, "sh", filepath.Clean(tmpPath)).CombinedOutput()
	if runErr != nil {
		out = append(out, []byte("\n"+runErr.Error())...)
	}

	logger.Info("file executed", logger.Filename(msg.Filename), logger.Username(username))
	return msg.Reply(wire.RESP_SUCCESS, out)
}
