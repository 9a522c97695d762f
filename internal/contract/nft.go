package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NFTGateway is the typed binding of the NFT collection.
type NFTGateway struct {
	*Gateway
}

// BalanceOf returns the number of NFTs owner holds.
func (n *NFTGateway) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return n.callBig(ctx, "balanceOf", owner)
}

// TokenOfOwnerByIndex returns the index-th token id held by owner.
func (n *NFTGateway) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	return n.callBig(ctx, "tokenOfOwnerByIndex", owner, index)
}
