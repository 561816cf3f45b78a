package adminapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/naming-server/internal/audit"
	"github.com/marmos91/naming-server/internal/metadata"
)

func TestHealthzAlwaysOK(t *testing.T) {
	a := New(metadata.NewStore(), nil, nil, nil)
	w := httptest.NewRecorder()
	a.handleHealthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestReadyzReflectsReadyFunc(t *testing.T) {
	a := New(metadata.NewStore(), func() bool { return false }, nil, nil)
	w := httptest.NewRecorder()
	a.handleReadyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	a.ready = func() bool { return true }
	w = httptest.NewRecorder()
	a.handleReadyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListSSReflectsStore(t *testing.T) {
	store := metadata.NewStore()
	store.RegisterStorageServer("ss1", "127.0.0.1", 9000, 9001)

	a := New(store, nil, nil, nil)
	w := httptest.NewRecorder()
	a.handleListSS(w, httptest.NewRequest(http.MethodGet, "/ss", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	views, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, views, 1)
}

func TestShutdownTriggersCallback(t *testing.T) {
	called := make(chan struct{})
	a := New(metadata.NewStore(), nil, func() { close(called) }, nil)

	w := httptest.NewRecorder()
	a.handleShutdown(w, httptest.NewRequest(http.MethodPost, "/shutdown", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	<-called
}

func TestRegistryDumpReflectsStore(t *testing.T) {
	store := metadata.NewStore()
	_, err := store.CreateFile("notes.txt", "alice", "ss1", "")
	require.NoError(t, err)
	require.NoError(t, store.AddAccess("notes.txt", "bob", true, false))

	a := New(store, nil, nil, nil)
	w := httptest.NewRecorder()
	a.handleRegistryDump(w, httptest.NewRequest(http.MethodGet, "/registry", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	views, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, views, 1)
	entry := views[0].(map[string]interface{})
	assert.Equal(t, "notes.txt", entry["name"])
	assert.Equal(t, "alice", entry["owner"])
	assert.Equal(t, []interface{}{"bob"}, entry["acl"])
}

func TestAuditLogReflectsRecordedEvents(t *testing.T) {
	log := audit.NewLog(8)
	log.Record(audit.Event{
		Timestamp: time.Now(), Action: "add_access", Filename: "notes.txt",
		Actor: "alice", Target: "bob", Detail: "read",
	})

	a := New(metadata.NewStore(), nil, nil, log)
	w := httptest.NewRecorder()
	a.handleAuditLog(w, httptest.NewRequest(http.MethodGet, "/audit", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	events, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, events, 1)
	entry := events[0].(map[string]interface{})
	assert.Equal(t, "add_access", entry["action"])
	assert.Equal(t, "notes.txt", entry["filename"])
	assert.Equal(t, "alice", entry["actor"])
	assert.Equal(t, "bob", entry["target"])
}

func TestAuditLogIsEmptyWhenNotWired(t *testing.T) {
	a := New(metadata.NewStore(), nil, nil, nil)
	w := httptest.NewRecorder()
	a.handleAuditLog(w, httptest.NewRequest(http.MethodGet, "/audit", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Nil(t, resp.Data)
}

func TestConfigSchemaIsValidJSON(t *testing.T) {
	a := New(metadata.NewStore(), nil, nil, nil)
	w := httptest.NewRecorder()
	a.handleConfigSchema(w, httptest.NewRequest(http.MethodGet, "/config/schema", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var schema map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&schema))
	assert.Equal(t, "Naming Server Configuration", schema["title"])
}
