package fallback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/naming-server/internal/metadata"
)

func TestReadFromCache(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "report.txt"), []byte("HELLO"), 0o644))

	store := metadata.NewStore()
	engine := NewEngine(cacheDir, filepath.Join(dir, "backups"), store)

	result, err := engine.Read("report.txt", "ss1", false)
	require.NoError(t, err)
	assert.Equal(t, Data, result.Outcome)
	assert.Equal(t, []byte("HELLO"), result.Body)
}

func TestReadFromBackupPopulatesCache(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	backupDir := filepath.Join(dir, "backups")
	require.NoError(t, os.MkdirAll(filepath.Join(backupDir, "ss1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(backupDir, "ss1", "report.txt"), []byte("WORLD"), 0o644))

	store := metadata.NewStore()
	engine := NewEngine(cacheDir, backupDir, store)

	result, err := engine.Read("report.txt", "ss1", false)
	require.NoError(t, err)
	assert.Equal(t, Data, result.Outcome)
	assert.Equal(t, []byte("WORLD"), result.Body)

	cached, err := os.ReadFile(filepath.Join(cacheDir, "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("WORLD"), cached)
}

func TestReadFailsOverToAnotherActiveSS(t *testing.T) {
	dir := t.TempDir()
	store := metadata.NewStore()
	store.RegisterStorageServer("ss1", "10.0.0.1", 9000, 9001)
	store.RegisterStorageServer("ss2", "10.0.0.2", 9100, 9101)
	_, err := store.CreateFile("report.txt", "alice", "ss1", "")
	require.NoError(t, err)

	engine := NewEngine(filepath.Join(dir, "cache"), filepath.Join(dir, "backups"), store)

	result, err := engine.Read("report.txt", "ss1", false)
	require.NoError(t, err)
	assert.Equal(t, Failover, result.Outcome)
	assert.Equal(t, "10.0.0.2", result.SSIp)
	assert.Equal(t, uint32(9101), result.SSPort)

	f, err := store.GetFile("report.txt")
	require.NoError(t, err)
	assert.Equal(t, "ss2", f.StorageServerID)
}

func TestReadUnavailableWhenNothingWorks(t *testing.T) {
	dir := t.TempDir()
	store := metadata.NewStore()
	engine := NewEngine(filepath.Join(dir, "cache"), filepath.Join(dir, "backups"), store)

	result, err := engine.Read("ghost.txt", "ss1", false)
	require.NoError(t, err)
	assert.Equal(t, Unavailable, result.Outcome)
}

func TestReadWithStatsComputesWordAndCharCounts(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "notes.txt"), []byte("two words"), 0o644))

	store := metadata.NewStore()
	engine := NewEngine(cacheDir, filepath.Join(dir, "backups"), store)

	result, err := engine.Read("notes.txt", "ss1", true)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), result.Size)
	assert.Equal(t, uint64(2), result.Words)
	assert.Equal(t, uint64(9), result.Chars)
}
