package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerTransactOpts(t *testing.T) {
	m := NewManager()
	w, err := m.AddWithKey("dev", testKey)
	require.NoError(t, err)

	s, err := m.Signer(w)
	require.NoError(t, err)
	assert.Equal(t, testAddress, s.Address().Hex())

	chainID := big.NewInt(31337)
	opts, err := s.TransactOpts(chainID)
	require.NoError(t, err)
	assert.Equal(t, testAddress, opts.From.Hex())

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     0,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		Value:     big.NewInt(1),
	})
	signed, err := opts.Signer(opts.From, tx)
	require.NoError(t, err)

	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, opts.From, from)
}

func TestSignerWatchOnly(t *testing.T) {
	w := &Wallet{Name: "watch", Address: testAddress, Type: TypeWatchOnly}
	s := NewSigner(w, NewInMemoryKeystore())
	_, err := s.TransactOpts(big.NewInt(1))
	assert.ErrorIs(t, err, ErrWatchOnly)
}

func TestSignerKeyMismatch(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("dev", testKey)
	w := &Wallet{
		Name:    "dev",
		Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		Type:    TypeSigning,
		KeyRef:  ref,
	}
	_, err := NewSigner(w, ks).TransactOpts(big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestSignerUnlockCachesKey(t *testing.T) {
	resetSession(t)
	m := NewManager()
	w, err := m.AddWithKey("dev", testKey)
	require.NoError(t, err)
	s, err := m.Signer(w)
	require.NoError(t, err)

	assert.False(t, m.Unlocked(w))
	require.NoError(t, s.Unlock())
	assert.True(t, m.Unlocked(w))
	assert.False(t, m.UnlockedSince(w).IsZero())
}
