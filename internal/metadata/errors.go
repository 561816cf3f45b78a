// Package metadata owns the in-memory authoritative state of the naming
// server: files, folders, ACLs, checkpoints, access requests, storage
// servers, users, sessions, and the search cache.
package metadata

import "fmt"

// Kind is the closed set of errors the metadata store can return. It is
// independent of the wire package's ErrorCode so the store never imports
// the transport encoding; the dispatcher maps Kind onto a wire.ErrorCode
// at the boundary.
type Kind int

const (
	ErrNotFound Kind = iota + 1
	ErrAlreadyExists
	ErrPermissionDenied
	ErrInvalidArgument
	ErrFolderNotFound
	ErrFolderExists
	ErrCheckpointNotFound
	ErrRequestNotFound
	ErrSessionLocked
)

func (k Kind) String() string {
	switch k {
	case ErrNotFound:
		return "NotFound"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrPermissionDenied:
		return "PermissionDenied"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrFolderNotFound:
		return "FolderNotFound"
	case ErrFolderExists:
		return "FolderExists"
	case ErrCheckpointNotFound:
		return "CheckpointNotFound"
	case ErrRequestNotFound:
		return "RequestNotFound"
	case ErrSessionLocked:
		return "SessionLocked"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// StoreError is the concrete error type returned by store operations.
type StoreError struct {
	Kind    Kind
	Message string
	Subject string // filename, folder path, username, etc.
}

func (e *StoreError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newErr(kind Kind, subject, message string) *StoreError {
	return &StoreError{Kind: kind, Subject: subject, Message: message}
}

func NewNotFoundError(filename string) *StoreError {
	return newErr(ErrNotFound, filename, "file not found")
}

func NewAlreadyExistsError(filename string) *StoreError {
	return newErr(ErrAlreadyExists, filename, "file already exists")
}

func NewPermissionDeniedError(filename string) *StoreError {
	return newErr(ErrPermissionDenied, filename, "permission denied")
}

func NewInvalidArgumentError(message string) *StoreError {
	return newErr(ErrInvalidArgument, "", message)
}

func NewFolderNotFoundError(path string) *StoreError {
	return newErr(ErrFolderNotFound, path, "folder not found")
}

func NewFolderExistsError(path string) *StoreError {
	return newErr(ErrFolderExists, path, "folder already exists")
}

func NewCheckpointNotFoundError(tag string) *StoreError {
	return newErr(ErrCheckpointNotFound, tag, "checkpoint not found")
}

func NewRequestNotFoundError(id uint64) *StoreError {
	return newErr(ErrRequestNotFound, fmt.Sprintf("%d", id), "request not found or not pending")
}

func NewSessionLockedError(username, priorIP string, loginTime string) *StoreError {
	return newErr(ErrSessionLocked, username, fmt.Sprintf("already logged in from %s since %s", priorIP, loginTime))
}

// Is reports whether err is a StoreError of the given kind, for errors.Is.
func Is(err error, kind Kind) bool {
	se, ok := err.(*StoreError)
	return ok && se.Kind == kind
}
