// Package jsonrpc holds the JSON-RPC 2.0 wire types used between the
// pipeline, the upstream provider and external callers.
package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Version is the only protocol version the pipeline speaks.
const Version = "2.0"

// Request represents a JSON-RPC 2.0 request.
//
// The ID is kept as raw JSON so that number, string and null correlation
// tokens round-trip unmodified. Params are an ordered sequence of JSON
// values as permitted by the spec.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  []interface{}   `json:"params,omitempty"`
}

// NewRequest builds a request with a fresh string ID. Used for calls the
// pipeline originates itself (e.g. block-height polling); externally
// submitted requests keep the caller's ID.
func NewRequest(method string, params ...interface{}) *Request {
	return &Request{
		JSONRPC: Version,
		ID:      json.RawMessage(strconv.Quote(uuid.New().String())),
		Method:  method,
		Params:  params,
	}
}

// ErrorObject captures the error member of a JSON-RPC response.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorObject) Error() string {
	return e.Message
}

// Well-known JSON-RPC error codes.
const (
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInternal       = -32603
)

// Response captures a JSON-RPC 2.0 response. Exactly one of Result and
// Error is populated.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// NewResult builds a success response for req carrying the given result
// value.
func NewResult(req *Request, result interface{}) (*Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result for %s: %v", req.Method, err)
	}
	return &Response{JSONRPC: Version, ID: req.ID, Result: data}, nil
}

// NewError builds an error response for req.
func NewError(req *Request, code int, message string) *Response {
	var id json.RawMessage
	if req != nil {
		id = req.ID
	}
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &ErrorObject{Code: code, Message: message},
	}
}

var nullResult = json.RawMessage("null")

// NewNullResult builds a success response whose result is JSON null.
func NewNullResult(req *Request) *Response {
	return &Response{JSONRPC: Version, ID: req.ID, Result: nullResult}
}

// HasNullResult reports whether the response carries a successful JSON
// null result.
func (r *Response) HasNullResult() bool {
	return r.Error == nil && (len(r.Result) == 0 || bytes.Equal(r.Result, nullResult))
}

// UnmarshalResult decodes the result member into v. If the response is the
// error variant, that error is returned instead and v is left untouched.
// A nil v discards the result.
func (r *Response) UnmarshalResult(v interface{}) error {
	if r.Error != nil {
		return r.Error
	}
	if v == nil {
		return nil
	}
	if len(r.Result) == 0 {
		return json.Unmarshal(nullResult, v)
	}
	return json.Unmarshal(r.Result, v)
}
