// Package network maps configured network names to their protocol-level
// chain and network identifiers. The table is static and consulted without
// any network I/O.
package network

import (
	"fmt"
	"sort"
)

// Network describes one supported upstream network.
type Network struct {
	Name      string `json:"name"`
	ChainID   string `json:"chainId"`   // "0x"-prefixed hex
	NetworkID string `json:"networkId"` // decimal string
}

var networks = map[string]Network{
	"mainnet": {Name: "mainnet", ChainID: "0x1", NetworkID: "1"},
	"ropsten": {Name: "ropsten", ChainID: "0x3", NetworkID: "3"},
	"rinkeby": {Name: "rinkeby", ChainID: "0x4", NetworkID: "4"},
	"goerli":  {Name: "goerli", ChainID: "0x5", NetworkID: "5"},
	"kovan":   {Name: "kovan", ChainID: "0x2a", NetworkID: "42"},
	"sepolia": {Name: "sepolia", ChainID: "0xaa36a7", NetworkID: "11155111"},
}

// Find resolves a network name to its identifiers.
func Find(name string) (Network, error) {
	n, ok := networks[name]
	if !ok {
		return Network{}, fmt.Errorf("unknown network: %s", name)
	}
	return n, nil
}

// All returns the supported networks sorted by name.
func All() []Network {
	res := make([]Network, 0, len(networks))
	for _, n := range networks {
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}
