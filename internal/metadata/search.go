package metadata

import (
	"path/filepath"
	"strings"
	"time"
)

// SearchLookup consults the bounded memo for an exact (query, username)
// match. The second return value is false on a miss. The cache is keyed per
// caller because the stored results are already ACL-filtered for username;
// keying by query alone would leak one user's visible files to another.
func (s *Store) SearchLookup(query, username string) ([]string, bool) {
	s.searchMu.RLock()
	defer s.searchMu.RUnlock()

	entry, ok := s.searchCache[searchCacheKey{Query: query, Username: username}]
	if !ok {
		return nil, false
	}
	return entry.Results, true
}

// SearchStore memoizes a SEARCH result for username, evicting the oldest
// entry if the cache is at capacity.
func (s *Store) SearchStore(query, username string, results []string) {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	key := searchCacheKey{Query: query, Username: username}
	if _, exists := s.searchCache[key]; !exists && len(s.searchCache) >= s.searchCacheCap {
		s.evictOldestLocked()
	}
	s.searchCache[key] = &SearchCacheEntry{
		Query: query, Username: username, Results: results, Timestamp: time.Now(),
	}
}

// evictOldestLocked removes the least-recently-stored entry. Caller must
// hold searchMu.
func (s *Store) evictOldestLocked() {
	var oldestKey searchCacheKey
	var oldestTime time.Time
	found := false
	for k, e := range s.searchCache {
		if !found || e.Timestamp.Before(oldestTime) {
			oldestKey, oldestTime, found = k, e.Timestamp, true
		}
	}
	if found {
		delete(s.searchCache, oldestKey)
	}
}

// SetSearchCacheCapacity changes the memo bound, evicting oldest entries
// immediately if the new capacity is smaller than the current entry count.
// Safe to call against a live store; the config hot-reload path uses this.
func (s *Store) SetSearchCacheCapacity(n int) {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	s.searchCacheCap = n
	for len(s.searchCache) > s.searchCacheCap {
		s.evictOldestLocked()
	}
}

// InvalidateSearchCache wipes the entire memo wholesale (testable property
// 8: CREATE/DELETE must invalidate any prior cached query result).
func (s *Store) InvalidateSearchCache() {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	s.searchCache = make(map[searchCacheKey]*SearchCacheEntry)
}

// MatchesQuery reports whether name matches query using the chosen search
// semantics: case-sensitive substring, OR glob if query contains a glob
// metacharacter (*, ? or [). This resolves the spec's open question in favor
// of substring-by-default since that's the cheaper, more common case, with
// glob available for callers who need it.
func MatchesQuery(name, query string) bool {
	if strings.ContainsAny(query, "*?[") {
		if ok, err := filepath.Match(query, name); err == nil {
			return ok
		}
		return false
	}
	return strings.Contains(name, query)
}

// VisibleSearchResults scans the file table for names matching query and
// visible to username (ACL or ownership), per the chosen policy that
// SEARCH respects ACLs rather than listing files the caller cannot read.
func (s *Store) VisibleSearchResults(query, username string) []string {
	files := s.ListFiles(func(f *FileRecord) bool {
		if !MatchesQuery(f.Name, query) {
			return false
		}
		canRead, _ := f.Permission(username)
		return canRead
	})

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names
}
