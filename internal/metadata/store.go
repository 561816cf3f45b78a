package metadata

import (
	"sync"
	"time"
)

// Store holds the naming server's entire in-memory authoritative state.
// It owns all metadata; callers borrow references only for the duration of
// a single operation and never retain them across a message boundary.
//
// Locking discipline (spec's five-domain model, never acquired out of the
// order listed here, and never held across storage-server control-channel
// I/O — callers must copy what they need and release first):
//
//	fileMu       -- FileRecord table, plus each record's ACL/checkpoint/
//	                request/folder-field mutations
//	folderMu     -- FolderRecord table
//	ssMu         -- StorageServer table (field mutations, not the socket)
//	usersMu      -- User table
//	sessionsMu   -- ActiveSession table
//	requestIDMu  -- nextRequestID counter only
//	searchMu     -- search cache
type Store struct {
	fileMu sync.RWMutex
	files  map[string]*FileRecord

	folderMu sync.RWMutex
	folders  map[string]*FolderRecord

	ssMu sync.RWMutex
	ss   map[string]*StorageServer

	usersMu sync.RWMutex
	users   map[string]*User

	sessionsMu sync.RWMutex
	sessions   map[string]*ActiveSession

	requestIDMu   sync.Mutex
	nextRequestID uint64

	searchMu    sync.RWMutex
	searchCache map[searchCacheKey]*SearchCacheEntry
	// searchCacheCap bounds the memo; oldest entry is evicted on overflow.
	searchCacheCap int
}

// searchCacheKey memoizes per caller: results are ACL-filtered by username,
// so two users searching the same query text must never share an entry.
type searchCacheKey struct {
	Query    string
	Username string
}

// DefaultSearchCacheCap bounds the number of memoized SEARCH results kept
// before the oldest entry is evicted to make room.
const DefaultSearchCacheCap = 256

// NewStore creates an empty metadata store.
func NewStore() *Store {
	return &Store{
		files:          make(map[string]*FileRecord),
		folders:        make(map[string]*FolderRecord),
		ss:             make(map[string]*StorageServer),
		users:          make(map[string]*User),
		sessions:       make(map[string]*ActiveSession),
		searchCache:    make(map[searchCacheKey]*SearchCacheEntry),
		searchCacheCap: DefaultSearchCacheCap,
	}
}

func cloneFileRecord(f *FileRecord) *FileRecord {
	cp := *f
	cp.ACL = append([]ACLEntry(nil), f.ACL...)
	cp.Checkpoints = append([]Checkpoint(nil), f.Checkpoints...)
	cp.Requests = append([]AccessRequest(nil), f.Requests...)
	cp.ReplicationTargets = append([]string(nil), f.ReplicationTargets...)
	return &cp
}

// GetFile returns a defensive copy of the named file's record.
func (s *Store) GetFile(name string) (*FileRecord, error) {
	s.fileMu.RLock()
	defer s.fileMu.RUnlock()
	f, ok := s.files[name]
	if !ok {
		return nil, NewNotFoundError(name)
	}
	return cloneFileRecord(f), nil
}

// RestoredFile carries the exact field values persistence.LoadRegistry read
// off disk, as opposed to CreateFile's "now" timestamps for a live CREATE.
type RestoredFile struct {
	Name            string
	Owner           string
	StorageServerID string
	CreatedAt       time.Time
	LastModified    time.Time
	LastAccessed    time.Time
	Size            uint64
	WordCount       uint64
	CharCount       uint64
}

// RestoreFile inserts a FileRecord with exact field values, used only by
// registry replay at startup before any traffic is accepted. ACLs are
// restored separately via AddAccess once the record exists.
func (s *Store) RestoreFile(rf RestoredFile) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	s.files[rf.Name] = &FileRecord{
		Name: rf.Name, Owner: rf.Owner, StorageServerID: rf.StorageServerID,
		CreatedAt: rf.CreatedAt, LastModified: rf.LastModified, LastAccessed: rf.LastAccessed,
		Size: rf.Size, WordCount: rf.WordCount, CharCount: rf.CharCount,
	}
}

// CreateFile inserts a new FileRecord owned by owner. Fails if the name is
// already taken.
func (s *Store) CreateFile(name, owner, storageServerID, folder string) (*FileRecord, error) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	if _, exists := s.files[name]; exists {
		return nil, NewAlreadyExistsError(name)
	}

	now := time.Now()
	f := &FileRecord{
		Name:            name,
		Owner:           owner,
		StorageServerID: storageServerID,
		Folder:          folder,
		CreatedAt:       now,
		LastModified:    now,
		LastAccessed:    now,
	}
	s.files[name] = f
	return cloneFileRecord(f), nil
}

// SetReplicationTargets records which other Active SS ids the NS fired a
// REPLICATE at for name. No-op if the file no longer exists (the SS
// broadcast is best-effort and races DELETE).
func (s *Store) SetReplicationTargets(name string, targets []string) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	if f, ok := s.files[name]; ok {
		f.ReplicationTargets = append([]string(nil), targets...)
	}
}

// DeleteFile removes a file and everything attached to it (ACLs,
// checkpoints, requests).
func (s *Store) DeleteFile(name string) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	if _, exists := s.files[name]; !exists {
		return NewNotFoundError(name)
	}
	delete(s.files, name)
	return nil
}

// FileExists reports whether name is currently registered.
func (s *Store) FileExists(name string) bool {
	s.fileMu.RLock()
	defer s.fileMu.RUnlock()
	_, ok := s.files[name]
	return ok
}

// TouchAccess updates lastAccessed to now.
func (s *Store) TouchAccess(name string) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	f, ok := s.files[name]
	if !ok {
		return NewNotFoundError(name)
	}
	f.LastAccessed = time.Now()
	return nil
}

// TouchModified updates lastModified to now (WRITE/UNDO).
func (s *Store) TouchModified(name string) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	f, ok := s.files[name]
	if !ok {
		return NewNotFoundError(name)
	}
	f.LastModified = time.Now()
	return nil
}

// RefreshStats updates the cached size/word/char counts, e.g. after an SS
// INFO response or a fallback-path local scan.
func (s *Store) RefreshStats(name string, size, words, chars uint64) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	f, ok := s.files[name]
	if !ok {
		return NewNotFoundError(name)
	}
	f.Size, f.WordCount, f.CharCount = size, words, chars
	return nil
}

// SetFolder moves a file into a new folder (MOVE).
func (s *Store) SetFolder(name, folder string) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	f, ok := s.files[name]
	if !ok {
		return NewNotFoundError(name)
	}
	f.Folder = folder
	return nil
}

// SetStorageServer re-points a file's owning SS (CREATE confirmation and
// fallback failover).
func (s *Store) SetStorageServer(name, ssID string) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	f, ok := s.files[name]
	if !ok {
		return NewNotFoundError(name)
	}
	f.StorageServerID = ssID
	return nil
}

// ListFiles returns defensive copies of every file, optionally filtered by
// a predicate (e.g. ACL-visibility for VIEW). Pass nil to list everything.
func (s *Store) ListFiles(filter func(*FileRecord) bool) []*FileRecord {
	s.fileMu.RLock()
	defer s.fileMu.RUnlock()

	out := make([]*FileRecord, 0, len(s.files))
	for _, f := range s.files {
		if filter == nil || filter(f) {
			out = append(out, cloneFileRecord(f))
		}
	}
	return out
}

// ListFilesInFolder returns files whose Folder matches path exactly
// (VIEWFOLDER).
func (s *Store) ListFilesInFolder(path string) []*FileRecord {
	return s.ListFiles(func(f *FileRecord) bool { return f.Folder == path })
}

// VisibleFiles returns every file (all=true, VIEW's FlagAll) or just the
// files username owns or has read access to.
func (s *Store) VisibleFiles(username string, all bool) []*FileRecord {
	return s.ListFiles(func(f *FileRecord) bool {
		if all {
			return true
		}
		canRead, _ := f.Permission(username)
		return canRead
	})
}
