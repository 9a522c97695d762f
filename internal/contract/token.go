package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TokenGateway is the typed binding of the token contract.
type TokenGateway struct {
	*Gateway
}

// BalanceOf returns the token balance of account in the smallest unit.
func (t *TokenGateway) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return t.callBig(ctx, "balanceOf", account)
}

// TotalSupply returns the number of tokens minted so far in the smallest unit.
func (t *TokenGateway) TotalSupply(ctx context.Context) (*big.Int, error) {
	return t.callBig(ctx, "totalSupply")
}

// Owner returns the contract owner.
func (t *TokenGateway) Owner(ctx context.Context) (common.Address, error) {
	out, err := t.Call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: token.owner: unexpected output %T", ErrChainCallFailed, out[0])
	}
	return *addr, nil
}

// TokenIDsClaimed reports whether the bonus for an NFT id was already claimed.
func (t *TokenGateway) TokenIDsClaimed(ctx context.Context, tokenID *big.Int) (bool, error) {
	out, err := t.Call(ctx, "tokenIdsClaimed", tokenID)
	if err != nil {
		return false, err
	}
	claimed, ok := abi.ConvertType(out[0], new(bool)).(*bool)
	if !ok {
		return false, fmt.Errorf("%w: token.tokenIdsClaimed: unexpected output %T", ErrChainCallFailed, out[0])
	}
	return *claimed, nil
}

// Mint buys qty whole tokens, sending payment wei.
func (t *TokenGateway) Mint(ctx context.Context, qty, payment *big.Int) (*types.Transaction, error) {
	return t.Transact(ctx, payment, "mint", qty)
}

// Claim redeems the bonus for every unclaimed NFT the signer holds.
func (t *TokenGateway) Claim(ctx context.Context) (*types.Transaction, error) {
	return t.Transact(ctx, nil, "claim")
}

// Withdraw sends the contract balance to the owner.
func (t *TokenGateway) Withdraw(ctx context.Context) (*types.Transaction, error) {
	return t.Transact(ctx, nil, "withdraw")
}
