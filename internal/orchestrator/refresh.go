package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rui-yang/ICO/internal/claim"
	"github.com/rui-yang/ICO/internal/provider"
	"github.com/rui-yang/ICO/internal/state"
)

// snapshot is one round of chain reads. A nil field means the read failed.
type snapshot struct {
	balance   *big.Int
	supply    *big.Int
	claimable *uint64
	owner     *common.Address
}

// refresh re-reads balance, minted supply, claimable count and ownership.
// A failed balance or claimable read resets that value to zero unless
// preserve is set; failed supply and owner reads leave the old value.
func (o *Orchestrator) refresh(ctx context.Context, conn *provider.Connection) error {
	snap, err := o.readAll(ctx, conn)

	o.store.Update(func(v *state.ViewState) {
		switch {
		case snap.balance != nil:
			v.BalanceOfTokens = snap.balance
		case !o.preserve:
			v.BalanceOfTokens = new(big.Int)
		}
		if snap.supply != nil {
			v.TotalMinted = snap.supply
		}
		switch {
		case snap.claimable != nil:
			v.TokensToBeClaimed = *snap.claimable
		case !o.preserve:
			v.TokensToBeClaimed = 0
		}
		if snap.owner != nil {
			v.IsOwner = *snap.owner == conn.Account
		}
	})
	return err
}

func (o *Orchestrator) readAll(ctx context.Context, conn *provider.Connection) (snapshot, error) {
	var (
		snap snapshot
		errs []error
	)
	fail := func(field string, err error) {
		o.metrics.incReadFailure(field)
		errs = append(errs, fmt.Errorf("%s: %w", field, err))
	}

	token, err := o.book.Token(conn)
	if err != nil {
		return snap, err
	}
	nft, err := o.book.NFT(conn)
	if err != nil {
		return snap, err
	}

	if b, err := token.BalanceOf(ctx, conn.Account); err != nil {
		fail("balance", err)
	} else {
		snap.balance = b
	}
	if s, err := token.TotalSupply(ctx); err != nil {
		fail("total_minted", err)
	} else {
		snap.supply = s
	}

	calc := claim.New(nft, token, claim.WithParallelism(o.parallelism))
	if n, err := calc.Claimable(ctx, conn.Account); err != nil {
		fail("claimable", err)
	} else {
		snap.claimable = &n
	}

	if owner, err := token.Owner(ctx); err != nil {
		fail("owner", err)
	} else {
		snap.owner = &owner
	}
	return snap, errors.Join(errs...)
}
