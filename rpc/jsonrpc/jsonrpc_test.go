package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponsePreservesRequestID(t *testing.T) {
	for _, id := range []string{`1`, `"abc"`, `null`} {
		req := &Request{JSONRPC: Version, ID: json.RawMessage(id), Method: "eth_gasPrice"}

		resp, err := NewResult(req, "0x1")
		require.NoError(t, err)
		require.JSONEq(t, id, string(resp.ID))

		errResp := NewError(req, ErrCodeInternal, "boom")
		require.JSONEq(t, id, string(errResp.ID))
	}
}

func TestUnmarshalResultOnErrorVariant(t *testing.T) {
	resp := &Response{
		JSONRPC: Version,
		Error:   &ErrorObject{Code: ErrCodeMethodNotFound, Message: "no such method"},
	}

	var out string
	err := resp.UnmarshalResult(&out)
	require.Error(t, err)
	require.Equal(t, "no such method", err.Error())
	require.Empty(t, out)
}

func TestNullResult(t *testing.T) {
	req := NewRequest("eth_getBlockByNumber", "0x1", false)
	resp := NewNullResult(req)
	require.True(t, resp.HasNullResult())

	var raw json.RawMessage
	require.NoError(t, resp.UnmarshalResult(&raw))
	require.JSONEq(t, "null", string(raw))

	ok, err := NewResult(req, "0x1")
	require.NoError(t, err)
	require.False(t, ok.HasNullResult())
}

func TestNewRequestGeneratesUniqueIDs(t *testing.T) {
	a := NewRequest("eth_blockNumber")
	b := NewRequest("eth_blockNumber")
	require.NotEqual(t, string(a.ID), string(b.ID))
	require.Equal(t, Version, a.JSONRPC)
}
