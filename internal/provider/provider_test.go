package provider_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/rui-yang/ICO/internal/chaintest"
	"github.com/rui-yang/ICO/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var holder = chaintest.MustAccount(chaintest.HolderKey)

func TestAcquireReadOnly(t *testing.T) {
	chain := chaintest.New(11155111, holder.Address)
	p := provider.New(chaintest.NewConnector(chain, holder), big.NewInt(11155111), nil)

	conn, err := p.Acquire(context.Background(), false)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, holder.Address, conn.Account)
	assert.Equal(t, int64(11155111), conn.ChainID.Int64())
	assert.False(t, conn.CanSign())
	assert.Nil(t, conn.Opts)
}

func TestAcquireSigner(t *testing.T) {
	chain := chaintest.New(5, holder.Address)
	p := provider.New(chaintest.NewConnector(chain, holder), big.NewInt(5), nil)
	ctx := context.Background()

	conn, err := p.Acquire(ctx, true)
	require.NoError(t, err)
	require.True(t, conn.CanSign())
	assert.Equal(t, holder.Address, conn.Opts.From)
	assert.Equal(t, ctx, conn.Opts.Context)
}

func TestAcquireWrongNetwork(t *testing.T) {
	chain := chaintest.New(1, holder.Address)
	p := provider.New(chaintest.NewConnector(chain, holder), big.NewInt(5), nil)

	for _, signer := range []bool{false, true} {
		conn, err := p.Acquire(context.Background(), signer)
		assert.ErrorIs(t, err, provider.ErrWrongNetwork)
		assert.Nil(t, conn)
	}
	assert.Zero(t, chain.Calls("token.owner"))
	assert.Zero(t, chain.Calls("nft.balanceOf"))
}

func TestAcquireUserRejected(t *testing.T) {
	chain := chaintest.New(5, holder.Address)
	c := chaintest.NewConnector(chain, holder)
	c.Err = provider.ErrUserRejected
	p := provider.New(c, big.NewInt(5), nil)

	_, err := p.Acquire(context.Background(), true)
	assert.ErrorIs(t, err, provider.ErrUserRejected)
	assert.Zero(t, chain.Calls("ChainID"))
}

func TestAcquireChainIDFailure(t *testing.T) {
	chain := chaintest.New(5, holder.Address)
	boom := errors.New("dial tcp: connection refused")
	chain.FailOn("ChainID", boom)
	p := provider.New(chaintest.NewConnector(chain, holder), big.NewInt(5), nil)

	_, err := p.Acquire(context.Background(), false)
	assert.ErrorIs(t, err, boom)
}

func TestAcquireSignerOnWatchOnly(t *testing.T) {
	chain := chaintest.New(5, holder.Address)
	c := chaintest.NewConnector(chain, holder)
	c.ReadOnly = true
	p := provider.New(c, big.NewInt(5), nil)

	_, err := p.Acquire(context.Background(), true)
	assert.ErrorIs(t, err, provider.ErrNoSigner)

	conn, err := p.Acquire(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, conn.CanSign())
}

func TestAcquireCreatesFreshConnection(t *testing.T) {
	chain := chaintest.New(5, holder.Address)
	c := chaintest.NewConnector(chain, holder)
	p := provider.New(c, big.NewInt(5), nil)

	a, err := p.Acquire(context.Background(), false)
	require.NoError(t, err)
	b, err := p.Acquire(context.Background(), false)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, c.Connects())
}

func TestChainIDIsCopied(t *testing.T) {
	want := big.NewInt(5)
	p := provider.New(chaintest.NewConnector(chaintest.New(5, holder.Address), holder), want, nil)
	want.SetInt64(9)
	assert.Equal(t, int64(5), p.ChainID().Int64())
}
