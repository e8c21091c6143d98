package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ndjson writes one JSON document per line and flushes after each so
// clients see progress immediately.
type ndjson struct {
	enc     *json.Encoder
	flusher http.Flusher
	broken  bool
}

func newNDJSON(w http.ResponseWriter) *ndjson {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	f, _ := w.(http.Flusher)
	return &ndjson{enc: json.NewEncoder(w), flusher: f}
}

// send writes c. After the first failed write (client gone) it drops
// everything.
func (n *ndjson) send(c model.Chunk) {
	if n.broken {
		return
	}
	if err := n.enc.Encode(c); err != nil {
		zap.L().Debug("server: stream write failed", zap.Error(err))
		n.broken = true
		return
	}
	if n.flusher != nil {
		n.flusher.Flush()
	}
}
