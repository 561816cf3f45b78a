package adminapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/marmos91/naming-server/internal/logger"
)

// Response wraps every admin API body in a consistent envelope, following
// the teacher's own control-plane API response shape.
type Response struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("failed to encode admin API response", logger.Err(err))
		http.Error(w, `{"status":"error","error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func ok(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Status: "ok", Timestamp: time.Now().UTC(), Data: data})
}

func unavailable(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusServiceUnavailable, Response{Status: "unavailable", Timestamp: time.Now().UTC(), Error: reason})
}

func badRequest(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusBadRequest, Response{Status: "error", Timestamp: time.Now().UTC(), Error: reason})
}

func serverError(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusInternalServerError, Response{Status: "error", Timestamp: time.Now().UTC(), Error: reason})
}
