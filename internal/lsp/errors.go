package lsp

import (
	"errors"
	"fmt"
)

// Standard errors returned by the LSP client.
var (
	// ErrNotStarted indicates the server has not been started.
	ErrNotStarted = errors.New("lsp server not started")

	// ErrShutdown indicates the server has been shut down.
	ErrShutdown = errors.New("lsp server shut down")

	// ErrNoServer indicates no server is registered under the given id.
	ErrNoServer = errors.New("no server registered")

	// ErrNotSupported indicates the server does not support the requested feature.
	ErrNotSupported = errors.New("feature not supported by server")

	// ErrInvalidResponse indicates an invalid response from the server.
	ErrInvalidResponse = errors.New("invalid response from server")
)

// RPCError represents a JSON-RPC error from the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// LSP-specific errors
	CodeServerNotInitialized = -32002
	CodeRequestCancelled     = -32800
	CodeContentModified      = -32801
)
