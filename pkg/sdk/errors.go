package beans

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is() to check; the concrete *Error carries the
// raw JSON-RPC code and message.
var (
	ErrInvalidQuery   = errors.New("invalid query")
	ErrNotFound       = errors.New("not found")
	ErrNoInventory    = errors.New("no coffee inventory available")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrMethodNotFound = errors.New("method not found")
)

// Error is a JSON-RPC error object returned by the server.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Is maps server error codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidQuery:
		return e.Code == -32602
	case ErrNotFound:
		return e.Code == -32001
	case ErrNoInventory:
		return e.Code == -32002
	case ErrUnauthorized:
		return e.Code == -32000
	case ErrMethodNotFound:
		return e.Code == -32601
	}
	return false
}
