package jsonrpc

// ErrorCode is the numeric code of a JSON-RPC error object.
type ErrorCode int

const (
	ErrParseError     ErrorCode = -32700
	ErrInvalidRequest ErrorCode = -32600
	ErrMethodNotFound ErrorCode = -32601
	ErrInvalidParams  ErrorCode = -32602
	ErrInternalError  ErrorCode = -32603

	// Implementation-defined codes live in -32000..-32099.
	ErrServerError      ErrorCode = -32000
	ErrResourceNotFound ErrorCode = -32002
)
