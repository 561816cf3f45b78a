package metadata

import "time"

// AddAccess upserts an ACL entry for username on the named file. canWrite
// implies canRead (testable property 3), mirroring the wire ADDACCESS
// flags where flags&2 (write) implies read.
//
// The caller (dispatcher) is responsible for checking that requester is the
// file's owner before calling this; the store enforces only the data
// invariants, not the authorization policy.
func (s *Store) AddAccess(filename, username string, canRead, canWrite bool) error {
	if canWrite {
		canRead = true
	}

	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	f, ok := s.files[filename]
	if !ok {
		return NewNotFoundError(filename)
	}
	if username == f.Owner {
		return NewInvalidArgumentError("owner always has full access and cannot be added to the ACL")
	}

	if i := f.aclIndex(username); i >= 0 {
		f.ACL[i].CanRead = canRead
		f.ACL[i].CanWrite = canWrite
		return nil
	}

	f.ACL = append(f.ACL, ACLEntry{Username: username, CanRead: canRead, CanWrite: canWrite})
	return nil
}

// RemoveAccess drops username's ACL entry from the named file.
func (s *Store) RemoveAccess(filename, username string) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	f, ok := s.files[filename]
	if !ok {
		return NewNotFoundError(filename)
	}
	if username == f.Owner {
		return NewInvalidArgumentError("cannot remove the owner's implicit access")
	}

	i := f.aclIndex(username)
	if i < 0 {
		return nil // idempotent: no entry to remove is not an error
	}
	f.ACL = append(f.ACL[:i], f.ACL[i+1:]...)
	return nil
}

// CheckPermission returns the effective (read, write) capability of
// username on filename.
func (s *Store) CheckPermission(filename, username string) (canRead, canWrite bool, err error) {
	s.fileMu.RLock()
	defer s.fileMu.RUnlock()

	f, ok := s.files[filename]
	if !ok {
		return false, false, NewNotFoundError(filename)
	}
	r, w := f.Permission(username)
	return r, w, nil
}

// AddCheckpoint inserts a named snapshot record; tag must be unique per file.
func (s *Store) AddCheckpoint(filename, tag, creator string, size uint64) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	f, ok := s.files[filename]
	if !ok {
		return NewNotFoundError(filename)
	}
	if f.checkpointIndex(tag) >= 0 {
		return NewAlreadyExistsError(tag)
	}
	f.Checkpoints = append(f.Checkpoints, Checkpoint{
		Tag: tag, Creator: creator, CreatedAt: time.Now(), Size: size,
	})
	return nil
}

// GetCheckpoint returns the checkpoint with the given tag.
func (s *Store) GetCheckpoint(filename, tag string) (*Checkpoint, error) {
	s.fileMu.RLock()
	defer s.fileMu.RUnlock()

	f, ok := s.files[filename]
	if !ok {
		return nil, NewNotFoundError(filename)
	}
	i := f.checkpointIndex(tag)
	if i < 0 {
		return nil, NewCheckpointNotFoundError(tag)
	}
	cp := f.Checkpoints[i]
	return &cp, nil
}

// ListCheckpoints returns the local checkpoint catalog for a file.
func (s *Store) ListCheckpoints(filename string) ([]Checkpoint, error) {
	s.fileMu.RLock()
	defer s.fileMu.RUnlock()

	f, ok := s.files[filename]
	if !ok {
		return nil, NewNotFoundError(filename)
	}
	return append([]Checkpoint(nil), f.Checkpoints...), nil
}

// nextID allocates a strictly increasing access-request id (testable
// property 4). Guarded by its own lock so it never blocks on file-table
// contention, and file-table is never held while acquiring it (lock order:
// file-table -> request-lock, per the concurrency model).
func (s *Store) nextID() uint64 {
	s.requestIDMu.Lock()
	defer s.requestIDMu.Unlock()
	s.nextRequestID++
	return s.nextRequestID
}

// RequestAccess appends a new Pending access request from requester, unless
// one is already pending for this (file, requester) pair (testable
// property 5).
func (s *Store) RequestAccess(filename, requester string, accessType AccessType) (uint64, error) {
	s.fileMu.Lock()
	f, ok := s.files[filename]
	if !ok {
		s.fileMu.Unlock()
		return 0, NewNotFoundError(filename)
	}
	if requester == f.Owner {
		s.fileMu.Unlock()
		return 0, NewInvalidArgumentError("owner cannot request access to their own file")
	}
	if f.pendingRequestIndex(requester) >= 0 {
		s.fileMu.Unlock()
		return 0, NewAlreadyExistsError(requester)
	}
	s.fileMu.Unlock()

	id := s.nextID()

	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	f, ok = s.files[filename]
	if !ok {
		return 0, NewNotFoundError(filename)
	}
	// Re-check: another RequestAccess for this (file, requester) pair may
	// have inserted its own Pending entry between the unlock above and this
	// re-acquire, which would otherwise let two Pending requests coexist.
	if f.pendingRequestIndex(requester) >= 0 {
		return 0, NewAlreadyExistsError(requester)
	}
	f.Requests = append(f.Requests, AccessRequest{
		ID: id, Requester: requester, AccessType: accessType,
		RequestedAt: time.Now(), Status: RequestPending,
	})
	return id, nil
}

// ListPendingRequests returns the Pending requests on a file (VIEWREQUESTS).
func (s *Store) ListPendingRequests(filename string) ([]AccessRequest, error) {
	s.fileMu.RLock()
	defer s.fileMu.RUnlock()

	f, ok := s.files[filename]
	if !ok {
		return nil, NewNotFoundError(filename)
	}
	var pending []AccessRequest
	for _, r := range f.Requests {
		if r.Status == RequestPending {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// RespondRequest transitions a Pending request to Approved or Denied.
// Returns the resolved request so the caller (dispatcher) can derive the
// ACL grant on Approve. Terminal requests cannot be responded to again.
func (s *Store) RespondRequest(filename string, requestID uint64, approve bool) (*AccessRequest, error) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	f, ok := s.files[filename]
	if !ok {
		return nil, NewNotFoundError(filename)
	}
	for i := range f.Requests {
		if f.Requests[i].ID != requestID {
			continue
		}
		if f.Requests[i].Status.Terminal() {
			return nil, NewRequestNotFoundError(requestID)
		}
		if approve {
			f.Requests[i].Status = RequestApproved
		} else {
			f.Requests[i].Status = RequestDenied
		}
		resolved := f.Requests[i]
		return &resolved, nil
	}
	return nil, NewRequestNotFoundError(requestID)
}
