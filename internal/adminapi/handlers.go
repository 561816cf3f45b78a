package adminapi

import (
	"encoding/json"
	"net/http"

	"github.com/invopop/jsonschema"

	"github.com/marmos91/naming-server/internal/config"
	"github.com/marmos91/naming-server/internal/metadata"
)

// auditEventView is one recorded access-control decision in GET /audit.
type auditEventView struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Filename  string `json:"filename"`
	Actor     string `json:"actor"`
	Target    string `json:"target,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// handleAuditLog returns the in-memory access-control audit trail, oldest
// first, observability-only: it is never consulted by any permission check.
func (a *API) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	var events []auditEventView
	if a.audit != nil {
		for _, e := range a.audit.Recent() {
			events = append(events, auditEventView{
				Timestamp: e.Timestamp.Format(timeFormat),
				Action:    e.Action,
				Filename:  e.Filename,
				Actor:     e.Actor,
				Target:    e.Target,
				Detail:    e.Detail,
			})
		}
	}
	ok(w, events)
}

// ssView is the JSON shape of GET /ss, mirroring wire op LIST_SS's payload.
type ssView struct {
	ID            string `json:"id"`
	IP            string `json:"ip"`
	NMPort        uint32 `json:"nm_port"`
	ClientPort    uint32 `json:"client_port"`
	State         string `json:"state"`
	LastHeartbeat string `json:"last_heartbeat"`
}

func (a *API) handleListSS(w http.ResponseWriter, r *http.Request) {
	servers := a.store.ListStorageServers()
	views := make([]ssView, 0, len(servers))
	for _, s := range servers {
		views = append(views, ssView{
			ID:            s.ID,
			IP:            s.IP,
			NMPort:        s.NMPort,
			ClientPort:    s.ClientPort,
			State:         s.State.String(),
			LastHeartbeat: s.LastHeartbeat.Format(timeFormat),
		})
	}
	ok(w, views)
}

// userView is the JSON shape of GET /users, mirroring wire op LIST_USERS's
// payload, annotated with whether the user currently has a live session.
type userView struct {
	Username     string `json:"username"`
	RegisteredAt string `json:"registered_at"`
	Online       bool   `json:"online"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users := a.store.ListUsers()
	sessions := map[string]metadata.ActiveSession{}
	for _, s := range a.store.ListSessions() {
		sessions[s.Username] = s
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		_, online := sessions[u.Username]
		views = append(views, userView{
			Username:     u.Username,
			RegisteredAt: u.RegisteredAt.Format(timeFormat),
			Online:       online,
		})
	}
	ok(w, views)
}

// registryEntryView is one file's row in GET /registry, the admin-API
// counterpart to the nsctl `registry dump` subcommand.
type registryEntryView struct {
	Name            string   `json:"name"`
	Owner           string   `json:"owner"`
	StorageServerID string   `json:"storage_server_id"`
	Folder          string   `json:"folder"`
	Size            uint64   `json:"size"`
	ACL             []string `json:"acl"`
}

func (a *API) handleRegistryDump(w http.ResponseWriter, r *http.Request) {
	files := a.store.ListFiles(nil)
	views := make([]registryEntryView, 0, len(files))
	for _, f := range files {
		acl := make([]string, 0, len(f.ACL))
		for _, e := range f.ACL {
			acl = append(acl, e.Username)
		}
		views = append(views, registryEntryView{
			Name:            f.Name,
			Owner:           f.Owner,
			StorageServerID: f.StorageServerID,
			Folder:          f.Folder,
			Size:            f.Size,
			ACL:             acl,
		})
	}
	ok(w, views)
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ok(w, map[string]string{"service": "naming-server"})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.ready == nil || !a.ready() {
		unavailable(w, "not ready")
		return
	}
	ok(w, map[string]string{"listener": "bound"})
}

// handleConfigSchema returns the JSON Schema of config.Config, generated at
// request time with invopop/jsonschema, so operator tooling can validate a
// config file before handing it to the server.
func (a *API) handleConfigSchema(w http.ResponseWriter, r *http.Request) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&config.Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "Naming Server Configuration"
	schema.Description = "Configuration schema for the naming server"

	w.Header().Set("Content-Type", "application/schema+json")
	if err := json.NewEncoder(w).Encode(schema); err != nil {
		serverError(w, "failed to encode schema")
	}
}

// handleShutdown triggers the same graceful shutdown path as the SHUTDOWN
// console command and SIGTERM. Bound to loopback only by default (cfg.BindLocalOnly).
func (a *API) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if a.shutdown == nil {
		serverError(w, "shutdown not wired")
		return
	}
	ok(w, map[string]string{"message": "shutdown initiated"})
	go a.shutdown()
}
