package rpc

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
)

// Quantity members of a transaction object. Data members (hashes,
// addresses, input, the 8-byte block nonce) are left untouched.
var txQuantityFields = map[string]bool{
	"blockNumber":          true,
	"gas":                  true,
	"gasPrice":             true,
	"maxFeePerGas":         true,
	"maxPriorityFeePerGas": true,
	"nonce":                true,
	"transactionIndex":     true,
	"value":                true,
}

var blockQuantityFields = map[string]bool{
	"baseFeePerGas":   true,
	"difficulty":      true,
	"gasLimit":        true,
	"gasUsed":         true,
	"number":          true,
	"size":            true,
	"timestamp":       true,
	"totalDifficulty": true,
}

// responseNormalizerHandler forwards requests downstream and rewrites the
// responses of the block and transaction method families into a canonical
// shape: quantity fields become minimal "0x"-hex, zero-padded values
// included. Null results (including the transport's "Not Found" override)
// pass through unchanged.
func responseNormalizerHandler() Handler {
	return func(ctx context.Context, req *jsonrpc.Request, next Next) (*jsonrpc.Response, error) {
		resp, err := next(ctx, req)
		if err != nil || resp == nil || resp.Error != nil || resp.HasNullResult() {
			return resp, err
		}

		switch req.Method {
		case "eth_getBlockByNumber", "eth_getBlockByHash":
			resp.Result = normalizeObject(resp.Result, normalizeBlock)
		case "eth_getTransactionByHash",
			"eth_getTransactionByBlockNumberAndIndex",
			"eth_getTransactionByBlockHashAndIndex":
			resp.Result = normalizeObject(resp.Result, normalizeTransaction)
		}
		return resp, nil
	}
}

// normalizeObject decodes raw into a JSON object, rewrites it with fn and
// re-encodes. Anything unexpected leaves raw as received; normalization
// is best-effort and never turns a success into a failure.
func normalizeObject(raw json.RawMessage, fn func(map[string]interface{})) json.RawMessage {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return raw
	}
	fn(obj)
	out, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return out
}

func normalizeBlock(block map[string]interface{}) {
	normalizeQuantities(block, blockQuantityFields)
	txs, ok := block["transactions"].([]interface{})
	if !ok {
		return
	}
	for _, tx := range txs {
		if obj, ok := tx.(map[string]interface{}); ok {
			normalizeTransaction(obj)
		}
	}
}

func normalizeTransaction(tx map[string]interface{}) {
	normalizeQuantities(tx, txQuantityFields)
}

func normalizeQuantities(obj map[string]interface{}, fields map[string]bool) {
	for key, value := range obj {
		if !fields[key] {
			continue
		}
		if s, ok := value.(string); ok {
			if canon, ok := canonicalQuantity(s); ok {
				obj[key] = canon
			}
		}
	}
}

// canonicalQuantity re-encodes a hex quantity in its minimal form, e.g.
// "0x01b4" -> "0x1b4".
func canonicalQuantity(s string) (string, bool) {
	if !strings.HasPrefix(s, "0x") || len(s) == 2 {
		return "", false
	}
	v, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		return "", false
	}
	return hexutil.EncodeBig(v), true
}
