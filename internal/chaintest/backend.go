package chaintest

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

const estimatedGas = 120_000

// ChainID returns the configured network id.
func (c *Chain) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hit("ChainID"); err != nil {
		return nil, err
	}
	return new(big.Int).Set(c.chainID), nil
}

// BlockNumber returns the current head.
func (c *Chain) BlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block, nil
}

// CodeAt reports non-empty code at the two contract addresses.
func (c *Chain) CodeAt(ctx context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	if account == TokenAddress || account == NFTAddress {
		return []byte{0x60, 0x80}, nil
	}
	return nil, nil
}

// PendingCodeAt is CodeAt.
func (c *Chain) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return c.CodeAt(ctx, account, nil)
}

// PendingNonceAt returns the next nonce for account.
func (c *Chain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], nil
}

// HeaderByNumber returns a London header at the head.
func (c *Chain) HeaderByNumber(ctx context.Context, _ *big.Int) (*types.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &types.Header{
		Number:   new(big.Int).SetUint64(c.block),
		BaseFee:  new(big.Int).Set(baseFee),
		GasLimit: 30_000_000,
	}, nil
}

// SuggestGasPrice returns twice the base fee.
func (c *Chain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Mul(baseFee, big.NewInt(2)), nil
}

// SuggestGasTipCap returns one gwei.
func (c *Chain) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(baseFee), nil
}

// EstimateGas dry-runs the call and fails the way a node does on revert.
func (c *Chain) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hit("EstimateGas"); err != nil {
		return 0, err
	}
	if call.To == nil || *call.To != TokenAddress {
		return 21_000, nil
	}
	if _, err := c.execute(call.From, call.Value, call.Data, true); err != nil {
		return 0, err
	}
	return estimatedGas, nil
}

// CallContract answers view calls on both contracts.
func (c *Chain) CallContract(ctx context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if call.To == nil || len(call.Data) < 4 {
		return nil, fmt.Errorf("bad call")
	}
	var (
		parsed abi.ABI
		prefix string
	)
	switch *call.To {
	case TokenAddress:
		parsed, prefix = c.tokenABI, "token."
	case NFTAddress:
		parsed, prefix = c.nftABI, "nft."
	default:
		return nil, nil
	}
	method, err := parsed.MethodById(call.Data[:4])
	if err != nil {
		return nil, revert("unknown selector")
	}
	if err := c.hit(prefix + method.Name); err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method.Name, err)
	}

	var out []interface{}
	switch prefix + method.Name {
	case "token.balanceOf":
		out = []interface{}{new(big.Int).Set(c.balanceOf(args[0].(common.Address)))}
	case "token.totalSupply":
		out = []interface{}{new(big.Int).Set(c.totalSupply)}
	case "token.owner":
		out = []interface{}{c.owner}
	case "token.tokenIdsClaimed":
		out = []interface{}{c.claimed[args[0].(*big.Int).String()]}
	case "token.tokenPrice":
		out = []interface{}{new(big.Int).Set(TokenPrice)}
	case "token.maxTotalSupply":
		out = []interface{}{new(big.Int).Set(maxTotalSupply)}
	case "nft.balanceOf":
		out = []interface{}{big.NewInt(int64(len(c.holdings[args[0].(common.Address)])))}
	case "nft.tokenOfOwnerByIndex":
		held := c.holdings[args[0].(common.Address)]
		idx := args[1].(*big.Int)
		if !idx.IsInt64() || idx.Int64() >= int64(len(held)) {
			return nil, revert("ERC721Enumerable: owner index out of bounds")
		}
		out = []interface{}{new(big.Int).Set(held[idx.Int64()])}
	default:
		return nil, revert(method.Name + " is not a view")
	}
	return method.Outputs.Pack(out...)
}

// SendTransaction validates the signature and nonce, executes the call and
// records a receipt.
func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hit("SendTransaction"); err != nil {
		return err
	}

	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if want := c.nonces[from]; tx.Nonce() != want {
		return fmt.Errorf("nonce too low: have %d, want %d", tx.Nonce(), want)
	}
	c.nonces[from]++
	c.block++

	status := types.ReceiptStatusSuccessful
	if c.revertNext {
		c.revertNext = false
		status = types.ReceiptStatusFailed
	} else if tx.To() != nil && *tx.To() == TokenAddress {
		if _, err := c.execute(from, tx.Value(), tx.Data(), false); err != nil {
			status = types.ReceiptStatusFailed
		}
	}

	c.receipts[tx.Hash()] = &types.Receipt{
		Type:              tx.Type(),
		Status:            status,
		TxHash:            tx.Hash(),
		GasUsed:           estimatedGas,
		CumulativeGasUsed: estimatedGas,
		BlockNumber:       new(big.Int).SetUint64(c.block),
	}
	return nil
}

// TransactionReceipt returns ethereum.NotFound until the receipt is visible.
func (c *Chain) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hit("TransactionReceipt"); err != nil {
		return nil, err
	}
	r, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	if c.pendingPolls > 0 && c.calls["TransactionReceipt"] <= c.pendingPolls {
		return nil, ethereum.NotFound
	}
	return r, nil
}

// FilterLogs returns no logs.
func (c *Chain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

// SubscribeFilterLogs returns a subscription that never delivers.
func (c *Chain) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	}), nil
}

// execute runs a token write. With dryRun no state changes. Callers hold c.mu.
func (c *Chain) execute(from common.Address, value *big.Int, data []byte, dryRun bool) ([]interface{}, error) {
	if len(data) < 4 {
		return nil, revert("no selector")
	}
	method, err := c.tokenABI.MethodById(data[:4])
	if err != nil {
		return nil, revert("unknown selector")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, revert(err.Error())
	}
	if value == nil {
		value = new(big.Int)
	}

	switch method.Name {
	case "mint":
		amount := args[0].(*big.Int)
		required := new(big.Int).Mul(TokenPrice, amount)
		if value.Cmp(required) < 0 {
			return nil, revert("Ether sent is incorrect")
		}
		minted := new(big.Int).Mul(amount, oneToken)
		if new(big.Int).Add(c.totalSupply, minted).Cmp(maxTotalSupply) > 0 {
			return nil, revert("Exceeds the max total supply available.")
		}
		if !dryRun {
			c.credit(from, minted)
			c.ether[TokenAddress] = new(big.Int).Add(c.etherOf(TokenAddress), value)
		}
	case "claim":
		held := c.holdings[from]
		if len(held) == 0 {
			return nil, revert("You dont own any Crypto Dev NFT's")
		}
		var unclaimed []*big.Int
		for _, id := range held {
			if !c.claimed[id.String()] {
				unclaimed = append(unclaimed, id)
			}
		}
		if len(unclaimed) == 0 {
			return nil, revert("You have already claimed all the tokens")
		}
		if !dryRun {
			for _, id := range unclaimed {
				c.claimed[id.String()] = true
			}
			c.credit(from, new(big.Int).Mul(big.NewInt(int64(len(unclaimed))), tokensPerNFT))
		}
	case "withdraw":
		if from != c.owner {
			return nil, revert("Ownable: caller is not the owner")
		}
		if !dryRun {
			c.ether[from] = new(big.Int).Add(c.etherOf(from), c.etherOf(TokenAddress))
			c.ether[TokenAddress] = new(big.Int)
		}
	default:
		return nil, revert(method.Name + " is not payable entry point")
	}
	return nil, nil
}

func (c *Chain) credit(to common.Address, amount *big.Int) {
	c.balances[to] = new(big.Int).Add(c.balanceOf(to), amount)
	c.totalSupply = new(big.Int).Add(c.totalSupply, amount)
}
