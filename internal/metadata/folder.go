package metadata

import (
	"strings"
	"time"
)

// CreateFolder creates path and any missing ancestors under owner
// (CREATEFOLDER). Creating "a/b/c" when none exist yields three
// FolderRecords. Returns ErrFolderExists if path itself already exists.
func (s *Store) CreateFolder(path, owner string) error {
	if path == "" {
		return NewInvalidArgumentError("folder path must not be empty")
	}

	s.folderMu.Lock()
	defer s.folderMu.Unlock()

	if _, exists := s.folders[path]; exists {
		return NewFolderExistsError(path)
	}

	segments := strings.Split(path, "/")
	var built strings.Builder
	for i, seg := range segments {
		if i > 0 {
			built.WriteByte('/')
		}
		built.WriteString(seg)
		ancestor := built.String()
		if _, exists := s.folders[ancestor]; !exists {
			s.folders[ancestor] = &FolderRecord{Path: ancestor, Owner: owner, CreatedAt: time.Now()}
		}
	}
	return nil
}

// FolderExists reports whether path (or the empty root) is known.
func (s *Store) FolderExists(path string) bool {
	if path == "" {
		return true // root always exists
	}
	s.folderMu.RLock()
	defer s.folderMu.RUnlock()
	_, ok := s.folders[path]
	return ok
}

// GetFolder returns a copy of the folder record.
func (s *Store) GetFolder(path string) (*FolderRecord, error) {
	s.folderMu.RLock()
	defer s.folderMu.RUnlock()
	f, ok := s.folders[path]
	if !ok {
		return nil, NewFolderNotFoundError(path)
	}
	cp := *f
	return &cp, nil
}
