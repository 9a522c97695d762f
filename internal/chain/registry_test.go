package chain_test

import (
	"testing"

	"github.com/rui-yang/ICO/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
	}{
		{"sepolia", 11155111},
		{"goerli", 5},
		{"holesky", 17000},
		{"base-sepolia", 84532},
		{"polygon-amoy", 80002},
		{"localhost", 31337},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, n.Name)
			assert.Equal(t, tt.chainID, n.ChainID)
			assert.Equal(t, tt.chainID, n.ID().Int64())
		})
	}
}

func TestRegistryGetByNameCaseInsensitive(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("Sepolia")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", n.Name)
}

func TestRegistryGetUnknownNetwork(t *testing.T) {
	_, err := chain.NewRegistry().GetByName("mainnet")
	assert.ErrorIs(t, err, chain.ErrNetworkNotFound)
}

func TestRegistryGetByChainID(t *testing.T) {
	registry := chain.NewRegistry()

	n, err := registry.GetByChainID(5)
	require.NoError(t, err)
	assert.Equal(t, "goerli", n.Name)

	_, err = registry.GetByChainID(1)
	assert.ErrorIs(t, err, chain.ErrNetworkNotFound)
}

func TestAllNetworksHaveRPC(t *testing.T) {
	for _, n := range chain.NewRegistry().All() {
		t.Run(n.Name, func(t *testing.T) {
			assert.NotEmpty(t, n.RPCs, "network %s has no RPCs", n.Name)
			assert.NotEmpty(t, n.NativeCurrency)
		})
	}
}

func TestChainIDsUnique(t *testing.T) {
	seen := map[int64]string{}
	for _, n := range chain.NewRegistry().All() {
		if prev, ok := seen[n.ChainID]; ok {
			t.Fatalf("chain id %d used by %s and %s", n.ChainID, prev, n.Name)
		}
		seen[n.ChainID] = n.Name
	}
}

func TestExplorerURLs(t *testing.T) {
	registry := chain.NewRegistry()

	sepolia, _ := registry.GetByName("sepolia")
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", sepolia.TxURL("0xabc"))
	assert.Equal(t, "https://sepolia.etherscan.io/address/0xdef", sepolia.AddressURL("0xdef"))

	local, _ := registry.GetByName("localhost")
	assert.Empty(t, local.TxURL("0xabc"), "local node has no explorer")
	assert.Empty(t, local.AddressURL("0xdef"))
}
