package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/codepad-dev/codepad/internal/version"
)

// SourceRequest is a full-text buffer replacement.
type SourceRequest struct {
	Content string `json:"content"`
}

// StatusResponse reports the compile loop's observable state.
type StatusResponse struct {
	Status    string `json:"status"`
	Token     uint64 `json:"token"`
	Published bool   `json:"published"`
	Kind      string `json:"kind,omitempty"`
}

// handlePreview serves the current output document. Until the first
// compile completes it serves a neutral placeholder so the frame is
// never blank.
func (s *PlaygroundServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	// The document embeds author-controlled script. The iframe already
	// sandboxes it via srcdoc; this header keeps the same isolation when
	// the document is navigated to directly on this origin.
	w.Header().Set("Content-Security-Policy", "sandbox allow-scripts")

	doc, ok := s.scheduler.Current()
	if !ok {
		w.Write([]byte(placeholderDocument))
		return
	}

	w.Write([]byte(doc.HTML))
}

const placeholderDocument = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>codepad preview</title></head>
<body><p style="font-family: sans-serif; color: #888;">Compiling&hellip;</p></body>
</html>
`

// handleSource accepts a full-text replacement of the source buffer.
// The replacement itself arms the debounce cycle; no compile result is
// returned here.
func (s *PlaygroundServer) handleSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Same source size cap as the websocket path.
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageSize)

	var req SourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Source too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid JSON request: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.buffer.Set(req.Content)
	w.WriteHeader(http.StatusAccepted)
}

// handleCompile is the manual "compile now" trigger. It answers 409
// while a compile is already in flight.
func (s *PlaygroundServer) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.scheduler.CompileNow(r.Context()) {
		http.Error(w, "Compile already in progress", http.StatusConflict)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleStatus reports the compile status flag and the current
// document's token.
func (s *PlaygroundServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := StatusResponse{
		Status: s.scheduler.Status().String(),
	}

	if doc, ok := s.scheduler.Current(); ok {
		resp.Token = doc.Token
		resp.Published = true
		resp.Kind = doc.Kind.String()
	}

	s.writeJSONResponse(w, resp)
}

// handleHealth returns the server health status for health checks
func (s *PlaygroundServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.clientsMutex.RLock()
	clientCount := len(s.clients)
	s.clientsMutex.RUnlock()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"checks": map[string]interface{}{
			"server":    map[string]interface{}{"status": "healthy", "message": "HTTP server operational"},
			"scheduler": map[string]interface{}{"status": "healthy", "state": s.scheduler.Status().String()},
			"clients":   map[string]interface{}{"status": "healthy", "connected": clientCount},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "failed to encode health response")
	}
}

// writeJSONResponse writes a JSON response
func (s *PlaygroundServer) writeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
