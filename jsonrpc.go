package main

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC 2.0 framing for the stdio transport. One request or notification
// per input line, at most one response line out.

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the message carries no request id. A
// notification is never answered, even when handling it fails.
func (r *jsonRPCRequest) IsNotification() bool {
	return r.ID == nil
}

type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	errCodeParse          = -32700
	errCodeInvalidRequest = -32600
	errCodeMethodNotFound = -32601
	errCodeInvalidParams  = -32602
	errCodeInternal       = -32603
)

func newResultResponse(id any, result any) *jsonRPCResponse {
	return &jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func newErrorResponse(id any, code int, message string, data any) *jsonRPCResponse {
	return &jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &jsonRPCError{Code: code, Message: message, Data: data},
	}
}

// rpcError is an error that already knows which JSON-RPC code it maps to.
// Errors without a code (lifecycle failures, capability failures) are
// reported as invalid-params at the session boundary.
type rpcError struct {
	Code    int
	Message string
	Data    any
}

func (e *rpcError) Error() string {
	return e.Message
}

func invalidParamsf(format string, args ...any) error {
	return &rpcError{Code: errCodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func methodNotFoundf(format string, args ...any) error {
	return &rpcError{Code: errCodeMethodNotFound, Message: fmt.Sprintf(format, args...)}
}
