package models

import "encoding/json"

// JSON-RPC 2.0 Request. Params is kept raw so the collector can defer
// decoding until it knows the method. A nil Params serializes as null,
// which is what get_status sends.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      int             `json:"id"`
}

// JSON-RPC 2.0 Response
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// JSON-RPC 2.0 Error
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// UpdateStatusResult is what the collector returns for an accepted report.
type UpdateStatusResult struct {
	OK bool `json:"ok"`
}
