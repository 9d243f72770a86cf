package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeWalletParams(t *testing.T) {
	const (
		address = "0x89205a3a3b2a69de6dbf7f01ed13b2108b2c43e7"
		data    = "0xdeadbeef"
	)

	tests := []struct {
		name   string
		method string
		in     []interface{}
		want   []interface{}
	}{
		{
			name:   "geth ordering swapped",
			method: "personal_sign",
			in:     []interface{}{data, address},
			want:   []interface{}{address, data},
		},
		{
			name:   "wallet ordering kept",
			method: "personal_sign",
			in:     []interface{}{address, data},
			want:   []interface{}{address, data},
		},
		{
			name:   "extra params preserved",
			method: "personal_sign",
			in:     []interface{}{data, address, "password"},
			want:   []interface{}{address, data, "password"},
		},
		{
			name:   "no address resemblance left alone",
			method: "personal_sign",
			in:     []interface{}{"0x1", "0x2"},
			want:   []interface{}{"0x1", "0x2"},
		},
		{
			name:   "other methods untouched",
			method: "eth_sign",
			in:     []interface{}{data, address},
			want:   []interface{}{data, address},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, normalizeWalletParams(tc.method, tc.in))
		})
	}
}

func TestResemblesAddress(t *testing.T) {
	require.True(t, resemblesAddress("0x89205a3a3b2a69de6dbf7f01ed13b2108b2c43e7"))
	require.False(t, resemblesAddress("0xdeadbeef"))
	require.False(t, resemblesAddress(42))
	require.False(t, resemblesAddress(nil))
}

func TestCapabilitiesRegistry(t *testing.T) {
	caps := NewCapabilities()

	_, ok := caps.get("eth_accounts")
	require.False(t, ok)

	caps.Register("eth_accounts", func(ctx context.Context, p ...interface{}) (interface{}, error) {
		return nil, nil
	})
	_, ok = caps.get("eth_accounts")
	require.True(t, ok)

	// nil registry behaves as empty
	var nilCaps *Capabilities
	_, ok = nilCaps.get("eth_accounts")
	require.False(t, ok)
}
