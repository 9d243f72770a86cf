// Package rpc implements the wallet's network-connection pipeline: an
// ordered middleware chain over a resilient upstream transport, with a
// background block-height poller.
package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/web3pipe/web3pipe/params"
	"github.com/web3pipe/web3pipe/rpc/blockpoller"
	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
	"github.com/web3pipe/web3pipe/rpc/network"
	"github.com/web3pipe/web3pipe/rpc/transport"
	"github.com/web3pipe/web3pipe/services/rpcstats"
)

// Client is a JSON-RPC pipeline bound to one upstream configuration.
// Every inbound call enters the top of the middleware chain; layers
// either answer it locally or let it flow down to the fetch transport.
//
// Client is safe for concurrent use. Reconfiguring network or credential
// means Stop followed by a fresh NewClient; a running chain is never
// mutated in place.
type Client struct {
	cfg       params.UpstreamConfig
	network   network.Network
	transport *transport.FetchTransport
	poller    *blockpoller.Poller
	entry     Next
	log       log.Logger
}

// NewClient composes the pipeline described by cfg. The capability set
// may be nil, in which case every wallet method answers
// ErrMethodNotSupported.
func NewClient(cfg params.UpstreamConfig, caps *Capabilities) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	net, err := network.Find(cfg.NetworkName)
	if err != nil {
		return nil, err
	}

	fetch := transport.New(transport.Config{
		URL:     cfg.UpstreamURL(),
		Timeout: cfg.RequestTimeout,
	})

	c := &Client{
		cfg:       cfg,
		network:   net,
		transport: fetch,
		poller:    blockpoller.New(fetch, cfg.PollInterval),
		log:       log.New("package", "web3pipe/rpc.Client"),
	}

	// Outer to inner; the transport terminates the chain.
	c.entry = compose(
		fetch.Send,
		staticResultsHandler(cfg.ClientVersion),
		capabilityHandler(caps),
		networkIdentityHandler(net),
		responseNormalizerHandler(),
	)

	return c, nil
}

// Start launches the block-height poller.
func (c *Client) Start() error {
	return c.poller.Start()
}

// Stop tears the pipeline down: the poller is cancelled and idle upstream
// connections are released. The client must not be reused afterwards.
func (c *Client) Stop() {
	c.poller.Stop()
	c.transport.Close()
}

// HandleRequest runs one request through the middleware chain.
func (c *Client) HandleRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	rpcstats.CountCall(req.Method)
	return c.entry(ctx, req)
}

// Call performs a JSON-RPC call with the given arguments and unmarshals
// into result if no error occurred. The result must be a pointer so that
// package json can unmarshal into it; nil discards the result.
func (c *Client) Call(result interface{}, method string, args ...interface{}) error {
	return c.CallContext(context.Background(), result, method, args...)
}

// CallContext performs a JSON-RPC call with the given arguments. If the
// context is canceled before the call has successfully returned,
// CallContext returns immediately.
func (c *Client) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	resp, err := c.HandleRequest(ctx, jsonrpc.NewRequest(method, args...))
	if err != nil {
		return err
	}
	return resp.UnmarshalResult(result)
}

// CurrentBlock exposes the poller's cached latest block height.
func (c *Client) CurrentBlock() string {
	return c.poller.CurrentBlock()
}

// LatestBlock forces a fresh block-height fetch through the transport.
func (c *Client) LatestBlock(ctx context.Context) (string, error) {
	return c.poller.LatestBlock(ctx)
}

// Network returns the resolved chain identity the client was built with.
func (c *Client) Network() network.Network {
	return c.network
}
