package dispatcher

import (
	"context"
	"fmt"

	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/wire"
)

// opCheckpoint snapshots a file under a unique tag. The catalog entry is
// only committed after the owning SS confirms the snapshot was taken, and
// its reported size becomes the checkpoint's recorded size.
func opCheckpoint(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
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

	reply, err := d.proxySS(file.StorageServerID, &wire.Message{
		Type: wire.CHECKPOINT, Filename: msg.Filename, CheckpointTag: msg.CheckpointTag,
	})
	if err != nil {
		return ssUnavailable(msg)
	}
	if reply.ErrorCode != wire.RESP_SUCCESS {
		return msg.Reply(reply.ErrorCode, reply.Data)
	}

	size := uint64(len(reply.Data))
	if err := d.store.AddCheckpoint(msg.Filename, msg.CheckpointTag, username, size); err != nil {
		return errorReply(msg, err)
	}

	logger.Info("checkpoint created", logger.Filename(msg.Filename), logger.CheckpointTag(msg.CheckpointTag))
	return msg.Reply(wire.RESP_SUCCESS, nil)
}

// opViewCheckpoint validates the tag exists in the local catalog, then
// relays the owning SS's snapshot bytes.
func opViewCheckpoint(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
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
	if _, err := d.store.GetCheckpoint(msg.Filename, msg.CheckpointTag); err != nil {
		return errorReply(msg, err)
	}

	reply, err := d.proxySS(file.StorageServerID, &wire.Message{
		Type: wire.VIEWCHECKPOINT, Filename: msg.Filename, CheckpointTag: msg.CheckpointTag,
	})
	if err != nil {
		return ssUnavailable(msg)
	}
	return msg.Reply(reply.ErrorCode, reply.Data)
}

// opRevert validates the tag exists, asks the owning SS to restore it, and
// on success refreshes the file's cached size to the checkpoint's.
func opRevert(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
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
	cp, err := d.store.GetCheckpoint(msg.Filename, msg.CheckpointTag)
	if err != nil {
		return errorReply(msg, err)
	}

	reply, err := d.proxySS(file.StorageServerID, &wire.Message{
		Type: wire.REVERT, Filename: msg.Filename, CheckpointTag: msg.CheckpointTag,
	})
	if err != nil {
		return ssUnavailable(msg)
	}
	if reply.ErrorCode != wire.RESP_SUCCESS {
		return msg.Reply(reply.ErrorCode, reply.Data)
	}

	_ = d.store.TouchModified(msg.Filename)
	_ = d.store.RefreshStats(msg.Filename, cp.Size, 0, 0)
	logger.Info("file reverted", logger.Filename(msg.Filename), logger.CheckpointTag(msg.CheckpointTag))
	return msg.Reply(wire.RESP_SUCCESS, nil)
}

// opListCheckpoints returns the local catalog as "tag:creator:size" lines.
func opListCheckpoints(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	if _, err := d.store.GetFile(msg.Filename); err != nil {
		return errorReply(msg, err)
	}
	canRead, _, err := d.store.CheckPermission(msg.Filename, username)
	if err != nil {
		return errorReply(msg, err)
	}
	if !canRead {
		return msg.Reply(wire.ERR_PERMISSION_DENIED, []byte("permission denied"))
	}

	checkpoints, err := d.store.ListCheckpoints(msg.Filename)
	if err != nil {
		return errorReply(msg, err)
	}
	lines := make([]string, 0, len(checkpoints))
	for _, cp := range checkpoints {
		lines = append(lines, fmt.Sprintf("%s:%s:%d", cp.Tag, cp.Creator, cp.Size))
	}
	return msg.Reply(wire.RESP_SUCCESS, []byte(joinLines(lines)))
}
