package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
)

func TestComposeOrdering(t *testing.T) {
	var trace []string

	mark := func(name string) Handler {
		return func(ctx context.Context, req *jsonrpc.Request, next Next) (*jsonrpc.Response, error) {
			trace = append(trace, name+"-in")
			resp, err := next(ctx, req)
			trace = append(trace, name+"-out")
			return resp, err
		}
	}

	terminal := func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
		trace = append(trace, "terminal")
		return jsonrpc.NewResult(req, "ok")
	}

	entry := compose(terminal, mark("outer"), mark("inner"))
	_, err := entry(context.Background(), jsonrpc.NewRequest("test_method"))
	require.NoError(t, err)
	require.Equal(t, []string{"outer-in", "inner-in", "terminal", "inner-out", "outer-out"}, trace)
}

func TestComposeShortCircuit(t *testing.T) {
	terminalCalled := false

	shortCircuit := func(ctx context.Context, req *jsonrpc.Request, next Next) (*jsonrpc.Response, error) {
		return jsonrpc.NewResult(req, "intercepted")
	}
	terminal := func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
		terminalCalled = true
		return jsonrpc.NewResult(req, "forwarded")
	}

	entry := compose(terminal, shortCircuit)
	resp, err := entry(context.Background(), jsonrpc.NewRequest("test_method"))
	require.NoError(t, err)
	require.False(t, terminalCalled)

	var result string
	require.NoError(t, resp.UnmarshalResult(&result))
	require.Equal(t, "intercepted", result)
}

func TestComposeErrorPropagation(t *testing.T) {
	terminal := func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
		return nil, ErrMethodNotSupported
	}
	passthrough := func(ctx context.Context, req *jsonrpc.Request, next Next) (*jsonrpc.Response, error) {
		return next(ctx, req)
	}

	entry := compose(terminal, passthrough, passthrough)
	_, err := entry(context.Background(), jsonrpc.NewRequest("test_method"))
	require.ErrorIs(t, err, ErrMethodNotSupported)
}
