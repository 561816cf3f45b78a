// Package adminclient is a small REST client for the naming server's admin
// HTTP API, used exclusively by cmd/nsctl. It never touches the client/SS
// wire protocol.
package adminclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one naming server's admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client bound to baseURL (e.g. "http://localhost:9090").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// envelope mirrors internal/adminapi's Response shape.
type envelope struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// APIError represents a non-2xx response from the admin API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("admin API error (%d): %s", e.StatusCode, e.Message)
}

func (c *Client) do(method, path string, body io.Reader, result any) error {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = string(respBody)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return fmt.Errorf("failed to decode admin API response: %w", decodeErr)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, result any) error {
	return c.do(http.MethodPost, path, nil, result)
}

// StorageServer mirrors internal/adminapi's ssView.
type StorageServer struct {
	ID            string `json:"id"`
	IP            string `json:"ip"`
	NMPort        uint32 `json:"nm_port"`
	ClientPort    uint32 `json:"client_port"`
	State         string `json:"state"`
	LastHeartbeat string `json:"last_heartbeat"`
}

// ListStorageServers calls GET /ss.
func (c *Client) ListStorageServers() ([]StorageServer, error) {
	var servers []StorageServer
	if err := c.get("/ss", &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// User mirrors internal/adminapi's userView.
type User struct {
	Username     string `json:"username"`
	RegisteredAt string `json:"registered_at"`
	Online       bool   `json:"online"`
}

// ListUsers calls GET /users.
func (c *Client) ListUsers() ([]User, error) {
	var users []User
	if err := c.get("/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// RegistryEntry mirrors internal/adminapi's registryEntryView.
type RegistryEntry struct {
	Name            string   `json:"name"`
	Owner           string   `json:"owner"`
	StorageServerID string   `json:"storage_server_id"`
	Folder          string   `json:"folder"`
	Size            uint64   `json:"size"`
	ACL             []string `json:"acl"`
}

// DumpRegistry calls GET /registry.
func (c *Client) DumpRegistry() ([]RegistryEntry, error) {
	var entries []RegistryEntry
	if err := c.get("/registry", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AuditEvent mirrors internal/adminapi's auditEventView.
type AuditEvent struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Filename  string `json:"filename"`
	Actor     string `json:"actor"`
	Target    string `json:"target,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// AuditLog calls GET /audit.
func (c *Client) AuditLog() ([]AuditEvent, error) {
	var events []AuditEvent
	if err := c.get("/audit", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Shutdown calls POST /shutdown.
func (c *Client) Shutdown() error {
	return c.post("/shutdown", nil)
}
