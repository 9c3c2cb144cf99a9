package rpc

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/alr-main/better-beans-server/internal/logger"
)

// HandleStream handles POST /rpc/stream: the SSE variant of
// similarity_search. Batches arrive as "batch" events, the terminal complete
// result set as a "complete" event. Envelope and resolution failures that
// happen before the first batch come back as a plain JSON-RPC error body.
func (s *Server) HandleStream(w http.ResponseWriter, r *http.Request) {
	req, rpcErr := decodeEnvelope(r)
	if rpcErr != nil {
		writeRPCError(w, http.StatusBadRequest, nil, rpcErr.Code, rpcErr.Message)
		return
	}
	id := ensureID(req.ID)

	if req.Method != MethodSimilaritySearch {
		writeRPCError(w, http.StatusNotFound, id, codeMethodNotFound,
			"streaming supports only "+MethodSimilaritySearch)
		return
	}

	q, err := flavorQueryFromParams(req.Params)
	if err != nil {
		s.handleDomainError(w, r, id, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeRPCError(w, http.StatusInternalServerError, id, codeInternalError,
			"streaming unsupported by connection")
		return
	}

	sink := &sseSink{w: w, flusher: flusher, id: id}

	if err := s.flavor.Stream(r.Context(), &q, sink, s.streamDelay); err != nil {
		if !sink.started {
			s.handleDomainError(w, r, id, err)
			return
		}
		// Headers are gone; the error has to travel in-band.
		_ = sink.event("error", response{
			JSONRPC: jsonrpcVersion,
			ID:      id,
			Error:   &rpcError{Code: codeInternalError, Message: safeDomainMessage(err)},
		})
		logpkg.FromContext(r.Context()).Warn("stream aborted", zap.Error(err))
	}
}

// WithStreamDelay sets the inter-batch delay for /rpc/stream. Zero keeps
// the resolver default.
func (s *Server) WithStreamDelay(d time.Duration) *Server {
	s.streamDelay = d
	return s
}
