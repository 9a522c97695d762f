package chaintest

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustAccountAddresses(t *testing.T) {
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", MustAccount(OwnerKey).Address.Hex())
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", MustAccount(HolderKey).Address.Hex())
}

func TestCallContractUnknownAddress(t *testing.T) {
	c := New(31337, MustAccount(OwnerKey).Address)
	to := common.HexToAddress("0x01")
	out, err := c.CallContract(context.Background(), ethereum.CallMsg{To: &to, Data: []byte{1, 2, 3, 4}}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestReceiptNotFound(t *testing.T) {
	c := New(31337, MustAccount(OwnerKey).Address)
	_, err := c.TransactionReceipt(context.Background(), common.Hash{1})
	assert.ErrorIs(t, err, ethereum.NotFound)
}

func TestFailOnCall(t *testing.T) {
	c := New(1, common.Address{})
	boom := assert.AnError
	c.FailOnCall("ChainID", 2, boom)

	_, err := c.ChainID(context.Background())
	require.NoError(t, err)
	_, err = c.ChainID(context.Background())
	assert.ErrorIs(t, err, boom)
	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), id)
	assert.Equal(t, 3, c.Calls("ChainID"))
}

func TestHoldReceiptsHonoursContext(t *testing.T) {
	c := New(1, common.Address{})
	release := c.HoldReceipts()
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.TransactionReceipt(ctx, common.Hash{})
	assert.ErrorIs(t, err, context.Canceled)
}
