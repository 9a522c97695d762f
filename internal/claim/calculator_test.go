package claim_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rui-yang/ICO/internal/chaintest"
	"github.com/rui-yang/ICO/internal/claim"
	"github.com/rui-yang/ICO/internal/contract"
	"github.com/rui-yang/ICO/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChainID = 5

var (
	owner  = chaintest.MustAccount(chaintest.OwnerKey)
	holder = chaintest.MustAccount(chaintest.HolderKey)
)

func newCalculator(t *testing.T, chain *chaintest.Chain, opts ...claim.Option) *claim.Calculator {
	t.Helper()
	p := provider.New(chaintest.NewConnector(chain, holder), big.NewInt(testChainID), nil)
	conn, err := p.Acquire(context.Background(), false)
	require.NoError(t, err)

	nft, err := chain.Book().NFT(conn)
	require.NoError(t, err)
	token, err := chain.Book().Token(conn)
	require.NoError(t, err)
	return claim.New(nft, token, opts...)
}

func TestClaimableZeroBalanceShortCircuits(t *testing.T) {
	chain := chaintest.New(testChainID, owner.Address)
	calc := newCalculator(t, chain)

	n, err := calc.Claimable(context.Background(), holder.Address)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, chain.Calls("nft.balanceOf"))
	assert.Zero(t, chain.Calls("nft.tokenOfOwnerByIndex"))
	assert.Zero(t, chain.Calls("token.tokenIdsClaimed"))
}

func TestClaimableCountsUnclaimed(t *testing.T) {
	tests := []struct {
		name    string
		held    []int64
		claimed []int64
		want    uint64
	}{
		{"none claimed", []int64{1, 2}, nil, 2},
		{"some claimed", []int64{3, 8, 13, 21}, []int64{8, 21}, 2},
		{"all claimed", []int64{5}, []int64{5}, 0},
		{"claimed ids held by others", []int64{40, 41, 42}, []int64{99}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, par := range []int{1, 4} {
				chain := chaintest.New(testChainID, owner.Address)
				chain.GiveNFTs(holder.Address, tt.held...)
				chain.MarkClaimed(tt.claimed...)
				calc := newCalculator(t, chain, claim.WithParallelism(par))

				n, err := calc.Claimable(context.Background(), holder.Address)
				require.NoError(t, err)
				assert.Equal(t, tt.want, n, "parallelism %d", par)
				assert.Equal(t, len(tt.held), chain.Calls("nft.tokenOfOwnerByIndex"))
				assert.Equal(t, len(tt.held), chain.Calls("token.tokenIdsClaimed"))
			}
		})
	}
}

func TestClaimableIdempotent(t *testing.T) {
	chain := chaintest.New(testChainID, owner.Address)
	chain.GiveNFTs(holder.Address, 1, 2, 3)
	chain.MarkClaimed(2)
	calc := newCalculator(t, chain)

	first, err := calc.Claimable(context.Background(), holder.Address)
	require.NoError(t, err)
	for range 3 {
		again, err := calc.Claimable(context.Background(), holder.Address)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClaimableReadFailures(t *testing.T) {
	boom := errors.New("header not found")
	keys := []struct {
		key string
		nth int
	}{
		{"nft.balanceOf", 1},
		{"nft.tokenOfOwnerByIndex", 2},
		{"token.tokenIdsClaimed", 3},
	}
	for _, k := range keys {
		for _, par := range []int{1, 3} {
			chain := chaintest.New(testChainID, owner.Address)
			chain.GiveNFTs(holder.Address, 1, 2, 3)
			chain.FailOnCall(k.key, k.nth, boom)
			calc := newCalculator(t, chain, claim.WithParallelism(par))

			n, err := calc.Claimable(context.Background(), holder.Address)
			assert.ErrorIs(t, err, claim.ErrCalculator, k.key)
			assert.ErrorIs(t, err, boom, k.key)
			assert.ErrorIs(t, err, contract.ErrChainCallFailed, k.key)
			assert.Zero(t, n, "no partial count on %s", k.key)
		}
	}
}

// hugeNFT reports a balance no enumeration can satisfy.
type hugeNFT struct {
	balance *big.Int
}

func (h hugeNFT) BalanceOf(context.Context, common.Address) (*big.Int, error) {
	return h.balance, nil
}

func (h hugeNFT) TokenOfOwnerByIndex(context.Context, common.Address, *big.Int) (*big.Int, error) {
	panic("enumeration must not start")
}

func TestClaimableHugeBalance(t *testing.T) {
	calc := claim.New(hugeNFT{new(big.Int).Lsh(big.NewInt(1), 70)}, nil)
	_, err := calc.Claimable(context.Background(), holder.Address)
	assert.ErrorIs(t, err, claim.ErrCalculator)
}
