package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
)

// sseSink writes result batches as server-sent events. SSE headers go out
// lazily on the first emission so that pre-stream failures can still use a
// normal JSON error body.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	id      json.RawMessage
	started bool
}

// Emit writes one batch event, or the terminal complete event.
func (s *sseSink) Emit(batch catalog.ResultSet, final bool) error {
	if !s.started {
		s.w.Header().Set("Content-Type", "text/event-stream")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.Header().Set("Connection", "keep-alive")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	name := "batch"
	if final {
		name = "complete"
	}
	return s.event(name, response{
		JSONRPC: jsonrpcVersion,
		ID:      s.id,
		Result:  resultSetToJSON(batch),
	})
}

func (s *sseSink) event(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", name, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return fmt.Errorf("write %s event: %w", name, err)
	}
	s.flusher.Flush()
	return nil
}
