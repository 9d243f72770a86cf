package rpc

import (
	"context"

	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
	"github.com/web3pipe/web3pipe/rpc/network"
)

// networkIdentityHandler answers chain-identity queries from the static
// network table, so eth_chainId and net_version never depend on a live
// upstream.
func networkIdentityHandler(net network.Network) Handler {
	return func(ctx context.Context, req *jsonrpc.Request, next Next) (*jsonrpc.Response, error) {
		switch req.Method {
		case "eth_chainId":
			return jsonrpc.NewResult(req, net.ChainID)
		case "net_version":
			return jsonrpc.NewResult(req, net.NetworkID)
		}
		return next(ctx, req)
	}
}
