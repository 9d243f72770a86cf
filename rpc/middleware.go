package rpc

import (
	"context"

	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
)

// Next is the continuation to the remainder of the chain.
type Next func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error)

// Handler is one middleware layer. A layer either answers the request
// itself, or invokes next (at most once) and optionally rewrites what
// comes back.
type Handler func(ctx context.Context, req *jsonrpc.Request, next Next) (*jsonrpc.Response, error)

// compose folds an ordered list of handlers right-to-left into a single
// entry function terminating at terminal. The first handler in the list
// sees the request first.
func compose(terminal Next, handlers ...Handler) Next {
	entry := terminal
	for i := len(handlers) - 1; i >= 0; i-- {
		h := handlers[i]
		inner := entry
		entry = func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			return h(ctx, req, inner)
		}
	}
	return entry
}
