package rpc

import (
	"context"

	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
)

// staticResultsHandler answers fixed-result methods without consulting
// any other layer. The pipeline always reports itself as a fully synced,
// listening client; the upstream provider has no sync state of its own to
// expose.
func staticResultsHandler(clientVersion string) Handler {
	results := map[string]interface{}{
		"eth_syncing":        false,
		"net_listening":      true,
		"web3_clientVersion": clientVersion,
	}

	return func(ctx context.Context, req *jsonrpc.Request, next Next) (*jsonrpc.Response, error) {
		if result, ok := results[req.Method]; ok {
			return jsonrpc.NewResult(req, result)
		}
		return next(ctx, req)
	}
}
