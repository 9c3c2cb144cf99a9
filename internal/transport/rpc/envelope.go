// Package rpc exposes the catalog over a JSON-RPC 2.0 endpoint, plus the
// SSE streaming variant of similarity search and the unauthenticated
// health, manifest, and metrics routes.
package rpc

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// Protocol version accepted and emitted on every envelope.
const jsonrpcVersion = "2.0"

// JSON-RPC 2.0 error codes. The -320xx range is reserved for
// server-defined application errors.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603

	codeUnauthorized  = -32000
	codeNotFound      = -32001
	codeNoInventory   = -32002
	codeProviderError = -32003
)

// request is an incoming JSON-RPC 2.0 call envelope. Batch calls are not
// supported; a JSON array at the top level fails envelope validation.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// response is an outgoing JSON-RPC 2.0 envelope. Exactly one of Result and
// Error is set.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// ensureID returns the caller's id, or a server-assigned UUID when the call
// arrived without one, so responses and stream events stay correlatable.
func ensureID(id json.RawMessage) json.RawMessage {
	if len(id) > 0 && string(id) != "null" {
		return id
	}
	generated, _ := json.Marshal(uuid.NewString())
	return generated
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result any) {
	writeJSON(w, http.StatusOK, response{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Result:  result,
	})
}

func writeRPCError(w http.ResponseWriter, httpStatus int, id json.RawMessage, code int, message string) {
	if id == nil {
		id = json.RawMessage("null")
	}
	writeJSON(w, httpStatus, response{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
