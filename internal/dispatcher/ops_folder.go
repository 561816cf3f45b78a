package dispatcher

import (
	"context"

	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/wire"
)

// opCreateFolder creates path (and any missing ancestors) in the namespace,
// then best-effort mirrors the mkdir to one Active SS so its on-disk
// backup tree has somewhere to place files later. The mirror is advisory:
// the namespace entry is the source of truth and a proxy failure here
// isn't one of CREATEFOLDER's documented error cases.
func opCreateFolder(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	if err := d.store.CreateFolder(msg.Folder, username); err != nil {
		return errorReply(msg, err)
	}

	if ssID, ok := d.store.FirstActiveStorageServer(""); ok {
		if _, err := d.proxySS(ssID, &wire.Message{Type: wire.CREATEFOLDER, Folder: msg.Folder}); err != nil {
			logger.Warn("CREATEFOLDER mirror to SS failed", logger.Folder(msg.Folder), logger.Err(err))
		}
	}

	logger.Info("folder created", logger.Folder(msg.Folder), logger.Username(username))
	return msg.Reply(wire.RESP_SUCCESS, nil)
}

// opViewFolder lists the files filed under path (root when empty).
func opViewFolder(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
	if msg.Folder != "" && !d.store.FolderExists(msg.Folder) {
		return msg.Reply(wire.ERR_FOLDER_NOT_FOUND, []byte("folder not found"))
	}

	files := d.store.ListFilesInFolder(msg.Folder)
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return msg.Reply(wire.RESP_SUCCESS, []byte(joinLines(names)))
}

// opMove re-files a file into a different folder. Only the owner or a
// write-ACL'd user may move it; the target folder must already exist
// (empty string is the root, which always exists). Mirrored to the owning
// SS best-effort, matching CREATEFOLDER's mirror policy.
func opMove(d *Dispatcher, ctx context.Context, username string, msg *wire.Message) *wire.Message {
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
	if msg.Folder != "" && !d.store.FolderExists(msg.Folder) {
		return msg.Reply(wire.ERR_FOLDER_NOT_FOUND, []byte("folder not found"))
	}

	if err := d.store.SetFolder(msg.Filename, msg.Folder); err != nil {
		return errorReply(msg, err)
	}

	if _, err := d.proxySS(file.StorageServerID, &wire.Message{
		Type: wire.MOVE, Filename: msg.Filename, Folder: msg.Folder,
	}); err != nil {
		logger.Warn("MOVE mirror to SS failed", logger.Filename(msg.Filename), logger.Err(err))
	}

	return msg.Reply(wire.RESP_SUCCESS, nil)
}
