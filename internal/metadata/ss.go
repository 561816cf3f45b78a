package metadata

import "time"

// RegisterStorageServer inserts or updates a StorageServer record (testable
// property 6: at most one record per id). On reconnect (known id) the ip
// and ports are refreshed in place and the record is marked Active; on a
// brand new id a fresh record is inserted. Either way the caller is
// responsible for reconciling the announced file list via ReassertFile.
func (s *Store) RegisterStorageServer(id, ip string, nmPort, clientPort uint32) (isReconnect bool) {
	s.ssMu.Lock()
	defer s.ssMu.Unlock()

	existing, ok := s.ss[id]
	if !ok {
		s.ss[id] = &StorageServer{
			ID: id, IP: ip, NMPort: nmPort, ClientPort: clientPort,
			State: SSActive, LastHeartbeat: time.Now(), HasControlChannel: true,
		}
		return false
	}

	existing.IP = ip
	existing.NMPort = nmPort
	existing.ClientPort = clientPort
	existing.State = SSActive
	existing.LastHeartbeat = time.Now()
	existing.HasControlChannel = true
	return true
}

// ReassertFile registers a file announced by an SS registration payload. If
// the file is new it is created with owner "system" (the sentinel DESIGN.md
// documents: readable by no one until an owner overrides); if it already
// exists, only storageServerId is re-asserted and the ACL is preserved
// (testable scenario S4).
func (s *Store) ReassertFile(name, ssID string) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	if f, exists := s.files[name]; exists {
		f.StorageServerID = ssID
		return
	}

	now := time.Now()
	s.files[name] = &FileRecord{
		Name: name, Owner: "system", StorageServerID: ssID,
		CreatedAt: now, LastModified: now, LastAccessed: now,
	}
}

// MarkFailed transitions an SS to Failed and clears its control channel
// handle, called by the heartbeat sweep on timeout or I/O error.
func (s *Store) MarkFailed(id string) {
	s.ssMu.Lock()
	defer s.ssMu.Unlock()
	if ssRec, ok := s.ss[id]; ok {
		ssRec.State = SSFailed
		ssRec.HasControlChannel = false
	}
}

// MarkHeartbeatOK records a successful heartbeat, transitioning a
// previously Failed SS back to Active.
func (s *Store) MarkHeartbeatOK(id string) {
	s.ssMu.Lock()
	defer s.ssMu.Unlock()
	if ssRec, ok := s.ss[id]; ok {
		ssRec.State = SSActive
		ssRec.LastHeartbeat = time.Now()
	}
}

// GetStorageServer returns a copy of the SS record.
func (s *Store) GetStorageServer(id string) (*StorageServer, bool) {
	s.ssMu.RLock()
	defer s.ssMu.RUnlock()
	ssRec, ok := s.ss[id]
	if !ok {
		return nil, false
	}
	cp := *ssRec
	return &cp, true
}

// ListStorageServers returns a snapshot of every known SS, used by the
// heartbeat sweep and LIST_SS.
func (s *Store) ListStorageServers() []StorageServer {
	s.ssMu.RLock()
	defer s.ssMu.RUnlock()

	out := make([]StorageServer, 0, len(s.ss))
	for _, ssRec := range s.ss {
		out = append(out, *ssRec)
	}
	return out
}

// FirstActiveStorageServer returns the id of an arbitrary Active SS, used
// when CREATE doesn't name a target and when the fallback chain needs a
// failover candidate. excludeID is skipped if non-empty (used by failover
// to avoid re-selecting the SS that just went dark).
func (s *Store) FirstActiveStorageServer(excludeID string) (string, bool) {
	s.ssMu.RLock()
	defer s.ssMu.RUnlock()

	for id, ssRec := range s.ss {
		if id == excludeID {
			continue
		}
		if ssRec.State == SSActive {
			return id, true
		}
	}
	return "", false
}
