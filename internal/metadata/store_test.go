package metadata

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerNeverInACL(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("notes.txt", "alice", "ss1", "")
	require.NoError(t, err)

	err = s.AddAccess("notes.txt", "alice", true, true)
	assert.Error(t, err)

	f, err := s.GetFile("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, -1, f.aclIndex("alice"))
}

func TestAddAccessUpsertsSingleEntryPerUser(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("notes.txt", "alice", "ss1", "")
	require.NoError(t, err)

	require.NoError(t, s.AddAccess("notes.txt", "bob", true, false))
	require.NoError(t, s.AddAccess("notes.txt", "bob", true, true))

	f, err := s.GetFile("notes.txt")
	require.NoError(t, err)
	require.Len(t, f.ACL, 1)
	assert.True(t, f.ACL[0].CanRead)
	assert.True(t, f.ACL[0].CanWrite)
}

func TestAddAccessWriteImpliesRead(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("notes.txt", "alice", "ss1", "")
	require.NoError(t, err)

	require.NoError(t, s.AddAccess("notes.txt", "bob", false, true))

	canRead, canWrite, err := s.CheckPermission("notes.txt", "bob")
	require.NoError(t, err)
	assert.True(t, canWrite)
	assert.True(t, canRead, "granting write must imply read")
}

func TestRemoveAccessIsIdempotent(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("notes.txt", "alice", "ss1", "")
	require.NoError(t, err)

	require.NoError(t, s.RemoveAccess("notes.txt", "bob"))
	require.NoError(t, s.AddAccess("notes.txt", "bob", true, false))
	require.NoError(t, s.RemoveAccess("notes.txt", "bob"))

	f, err := s.GetFile("notes.txt")
	require.NoError(t, err)
	assert.Empty(t, f.ACL)
}

func TestRequestIDStrictlyIncreasing(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("plan.doc", "alice", "ss1", "")
	require.NoError(t, err)

	var ids []uint64
	var mu sync.Mutex
	var wg sync.WaitGroup
	requesters := []string{"bob", "carol", "dave", "erin"}

	for _, r := range requesters {
		wg.Add(1)
		go func(requester string) {
			defer wg.Done()
			id, err := s.RequestAccess("plan.doc", requester, AccessRead)
			require.NoError(t, err)
			mu.Lock()
			ids = append(ids, id)
			mu.Unlock()
		}(r)
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "request id %d issued twice", id)
		seen[id] = true
	}

	next, err := s.RequestAccess("plan.doc", "frank", AccessRead)
	require.NoError(t, err)
	for _, id := range ids {
		assert.Greater(t, next, id, "a later request id must exceed every earlier one")
	}
}

func TestAtMostOnePendingRequestPerRequester(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("plan.doc", "alice", "ss1", "")
	require.NoError(t, err)

	_, err = s.RequestAccess("plan.doc", "bob", AccessReadWrite)
	require.NoError(t, err)

	_, err = s.RequestAccess("plan.doc", "bob", AccessReadWrite)
	assert.Error(t, err)
}

func TestConcurrentRequestAccessSameRequesterOnlyOnePending(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("plan.doc", "alice", "ss1", "")
	require.NoError(t, err)

	const attempts = 8
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.RequestAccess("plan.doc", "bob", AccessRead)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "only one concurrent RequestAccess for the same (file, requester) pair may succeed")

	pending, err := s.ListPendingRequests("plan.doc")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRespondRequestApproveThenDenyIsRejected(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("plan.doc", "alice", "ss1", "")
	require.NoError(t, err)

	id, err := s.RequestAccess("plan.doc", "bob", AccessReadWrite)
	require.NoError(t, err)

	_, err = s.RespondRequest("plan.doc", id, true)
	require.NoError(t, err)

	_, err = s.RespondRequest("plan.doc", id, false)
	assert.True(t, Is(err, ErrRequestNotFound))
}

func TestStorageServerAtMostOneRecordPerID(t *testing.T) {
	s := NewStore()
	isReconnect := s.RegisterStorageServer("ss1", "10.0.0.1", 9000, 9001)
	assert.False(t, isReconnect)

	isReconnect = s.RegisterStorageServer("ss1", "10.0.0.2", 9100, 9101)
	assert.True(t, isReconnect)

	assert.Len(t, s.ListStorageServers(), 1)
	ssRec, ok := s.GetStorageServer("ss1")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.2", ssRec.IP)
}

func TestReassertFilePreservesACLOnReconnect(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("file.txt", "alice", "ss1", "")
	require.NoError(t, err)
	require.NoError(t, s.AddAccess("file.txt", "bob", true, false))

	s.ReassertFile("file.txt", "ss1")

	f, err := s.GetFile("file.txt")
	require.NoError(t, err)
	assert.Equal(t, "alice", f.Owner)
	require.Len(t, f.ACL, 1)
	assert.Equal(t, "bob", f.ACL[0].Username)
	assert.True(t, f.ACL[0].CanRead)
	assert.False(t, f.ACL[0].CanWrite)
}

func TestLoginRejectsSecondSessionForSameUser(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Login("alice", "10.0.0.1"))

	err := s.Login("alice", "10.0.0.2")
	assert.True(t, Is(err, ErrSessionLocked))

	sessions := s.ListSessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "10.0.0.1", sessions[0].ClientIP)
}

func TestCreateFolderBuildsAncestors(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.CreateFolder("a/b/c", "alice"))

	assert.True(t, s.FolderExists("a"))
	assert.True(t, s.FolderExists("a/b"))
	assert.True(t, s.FolderExists("a/b/c"))

	err := s.CreateFolder("a/b/c", "alice")
	assert.True(t, Is(err, ErrFolderExists))
}

func TestInvalidateSearchCacheDropsMemoizedResults(t *testing.T) {
	s := NewStore()
	s.SearchStore("notes", "alice", []string{"notes.txt"})

	_, hit := s.SearchLookup("notes", "alice")
	assert.True(t, hit)

	s.InvalidateSearchCache()

	_, hit = s.SearchLookup("notes", "alice")
	assert.False(t, hit)
}

func TestSearchCacheIsPerUser(t *testing.T) {
	s := NewStore()
	s.SearchStore("report", "alice", []string{"alice-secret.txt"})

	_, hit := s.SearchLookup("report", "bob")
	assert.False(t, hit, "a cache entry stored for one username must not be visible to another")

	results, hit := s.SearchLookup("report", "alice")
	assert.True(t, hit)
	assert.Equal(t, []string{"alice-secret.txt"}, results)
}

func TestSetSearchCacheCapacityEvictsImmediately(t *testing.T) {
	s := NewStore()
	s.SearchStore("a", "alice", []string{"a.txt"})
	s.SearchStore("b", "alice", []string{"b.txt"})
	s.SearchStore("c", "alice", []string{"c.txt"})

	s.SetSearchCacheCapacity(1)

	hits := 0
	for _, q := range []string{"a", "b", "c"} {
		if _, ok := s.SearchLookup(q, "alice"); ok {
			hits++
		}
	}
	assert.Equal(t, 1, hits, "shrinking capacity below the current size must evict down to it")
}

func TestMatchesQuerySubstringAndGlob(t *testing.T) {
	assert.True(t, MatchesQuery("notes.txt", "notes"))
	assert.False(t, MatchesQuery("notes.txt", "plan"))
	assert.True(t, MatchesQuery("notes.txt", "*.txt"))
	assert.False(t, MatchesQuery("notes.doc", "*.txt"))
}

func TestVisibleSearchResultsRespectsACL(t *testing.T) {
	s := NewStore()
	_, err := s.CreateFile("secret.txt", "alice", "ss1", "")
	require.NoError(t, err)

	results := s.VisibleSearchResults("secret", "bob")
	assert.Empty(t, results)

	results = s.VisibleSearchResults("secret", "alice")
	assert.Equal(t, []string{"secret.txt"}, results)
}
