package rpc

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
)

// ErrMethodNotSupported is returned for a wallet method whose capability
// was not supplied. Absence of a capability is an expected condition, not
// a bug; such calls never fall through to the upstream.
var ErrMethodNotSupported = errors.New("Method not supported.")

// CapabilityFunc performs one wallet-specific action (signing, account
// listing and the like) on behalf of the pipeline.
type CapabilityFunc func(ctx context.Context, params ...interface{}) (interface{}, error)

// Capability names for the pending-state lookups, which are consulted
// opportunistically rather than delegated unconditionally.
const (
	CapabilityPendingNonce       = "pendingNonce"
	CapabilityPendingTransaction = "pendingTransaction"
)

// walletMethods are delegated unconditionally: a request for any of them
// is answered by the registered capability or fails fast.
var walletMethods = map[string]bool{
	"eth_accounts":               true,
	"eth_coinbase":               true,
	"eth_sendTransaction":        true,
	"eth_sign":                   true,
	"personal_sign":              true,
	"personal_ecRecover":         true,
	"eth_signTypedData":          true,
	"eth_signTypedData_v3":       true,
	"eth_signTypedData_v4":       true,
	"eth_getEncryptionPublicKey": true,
	"eth_decrypt":                true,
}

// Capabilities is the externally supplied set of wallet callables, keyed
// by method name. Safe for concurrent use.
type Capabilities struct {
	mu  sync.RWMutex
	fns map[string]CapabilityFunc
}

// NewCapabilities creates an empty capability set.
func NewCapabilities() *Capabilities {
	return &Capabilities{fns: make(map[string]CapabilityFunc)}
}

// Register installs fn for the given method or capability name.
func (c *Capabilities) Register(method string, fn CapabilityFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns[method] = fn
}

func (c *Capabilities) get(method string) (CapabilityFunc, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.fns[method]
	return fn, ok
}

// capabilityHandler delegates wallet methods to the supplied capability
// set. For the unconditional wallet methods delegation always wins over
// forwarding: such a method with no registered capability fails
// immediately rather than reaching the upstream. The pending-state
// lookups are different: they are ordinary upstream queries that are only
// intercepted when the matching capability is registered, and a
// pending-transaction miss still falls through to the upstream.
func capabilityHandler(caps *Capabilities) Handler {
	return func(ctx context.Context, req *jsonrpc.Request, next Next) (*jsonrpc.Response, error) {
		switch {
		case walletMethods[req.Method]:
			fn, ok := caps.get(req.Method)
			if !ok {
				return nil, ErrMethodNotSupported
			}
			return delegate(ctx, req, fn, normalizeWalletParams(req.Method, req.Params))

		case req.Method == "eth_getTransactionCount" && hasPendingTag(req.Params):
			if fn, ok := caps.get(CapabilityPendingNonce); ok {
				return delegate(ctx, req, fn, req.Params)
			}

		case req.Method == "eth_getTransactionByHash":
			if fn, ok := caps.get(CapabilityPendingTransaction); ok {
				resp, err := delegate(ctx, req, fn, req.Params)
				if err != nil {
					return nil, err
				}
				if !resp.HasNullResult() {
					return resp, nil
				}
				// Not in the local pending set; ask the upstream.
			}
		}

		return next(ctx, req)
	}
}

func delegate(ctx context.Context, req *jsonrpc.Request, fn CapabilityFunc, params []interface{}) (*jsonrpc.Response, error) {
	result, err := fn(ctx, params...)
	if err != nil {
		return nil, err
	}
	return jsonrpc.NewResult(req, result)
}

// normalizeWalletParams fixes up known param-order ambiguities before
// delegation. personal_sign is accepted both as [data, address, ...]
// (geth ordering) and [address, data, ...] (MetaMask ordering); the
// capability always receives [address, data, ...].
func normalizeWalletParams(method string, params []interface{}) []interface{} {
	if method != "personal_sign" || len(params) < 2 {
		return params
	}
	if resemblesAddress(params[1]) && !resemblesAddress(params[0]) {
		swapped := make([]interface{}, len(params))
		copy(swapped, params)
		swapped[0], swapped[1] = params[1], params[0]
		return swapped
	}
	return params
}

func resemblesAddress(v interface{}) bool {
	s, ok := v.(string)
	return ok && common.IsHexAddress(s)
}

func hasPendingTag(params []interface{}) bool {
	if len(params) < 2 {
		return false
	}
	tag, ok := params[1].(string)
	return ok && tag == "pending"
}
