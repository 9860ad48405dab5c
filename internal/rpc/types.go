package rpc

import (
	"context"
	"encoding/json"
	"sort"
)

// Request is the wire format the server accepts:
// {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// RpcError is carried inside the result object of an error response.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message"`
}

// Error codes for the serving surface.
const (
	CodeUnknownMethod = 31
	CodeInvalidParams = 26
	CodeNotFound      = 19
	CodeInternal      = 73
	CodeNotSupported  = 42
)

func errUnknownMethod(method string) *RpcError {
	return &RpcError{Code: CodeUnknownMethod, ErrorString: "unknownCmd", Message: "Unknown method: " + method}
}

func errInvalidParams(message string) *RpcError {
	return &RpcError{Code: CodeInvalidParams, ErrorString: "invalidParams", Message: message}
}

func errNotFound(message string) *RpcError {
	return &RpcError{Code: CodeNotFound, ErrorString: "entryNotFound", Message: message}
}

func errInternal(message string) *RpcError {
	return &RpcError{Code: CodeInternal, ErrorString: "internal", Message: message}
}

func errNotSupported(message string) *RpcError {
	return &RpcError{Code: CodeNotSupported, ErrorString: "notSupported", Message: message}
}

// MethodFunc handles one RPC method.
type MethodFunc func(ctx context.Context, params json.RawMessage) (any, *RpcError)

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	methods map[string]MethodFunc
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]MethodFunc)}
}

func (r *MethodRegistry) Register(name string, fn MethodFunc) {
	r.methods[name] = fn
}

func (r *MethodRegistry) Get(name string) (MethodFunc, bool) {
	fn, exists := r.methods[name]
	return fn, exists
}

func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}
