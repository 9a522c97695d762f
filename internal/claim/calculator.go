// Package claim computes how many NFT bonus slots an owner can still claim.
package claim

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// ErrCalculator marks an aborted scan. The count is unknown, not zero.
var ErrCalculator = errors.New("claim eligibility scan failed")

// NFTReader is the part of the NFT contract the scan reads.
type NFTReader interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error)
}

// ClaimReader is the part of the token contract the scan reads.
type ClaimReader interface {
	TokenIDsClaimed(ctx context.Context, tokenID *big.Int) (bool, error)
}

// Calculator cross-references an owner's NFTs against the claimed set.
//
// Holdings are read without a snapshot: a transfer between the balance read
// and the enumeration can skew the count. Callers accept that.
type Calculator struct {
	nft         NFTReader
	token       ClaimReader
	parallelism int
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithParallelism runs up to n claimed-checks at once. Values below 2 keep
// the scan serial.
func WithParallelism(n int) Option {
	return func(c *Calculator) {
		c.parallelism = n
	}
}

// New creates a calculator.
func New(nft NFTReader, token ClaimReader, opts ...Option) *Calculator {
	c := &Calculator{nft: nft, token: token, parallelism: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Claimable returns the number of owner's NFTs whose bonus is unclaimed.
// Any failed read aborts the scan with ErrCalculator.
func (c *Calculator) Claimable(ctx context.Context, owner common.Address) (uint64, error) {
	balance, err := c.nft.BalanceOf(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("%w: nft balance: %w", ErrCalculator, err)
	}
	if balance.Sign() == 0 {
		return 0, nil
	}
	if !balance.IsUint64() {
		return 0, fmt.Errorf("%w: nft balance %s out of range", ErrCalculator, balance)
	}

	ids, err := c.tokenIDs(ctx, owner, balance.Uint64())
	if err != nil {
		return 0, err
	}
	if c.parallelism > 1 {
		return c.countParallel(ctx, ids)
	}
	return c.countSerial(ctx, ids)
}

// tokenIDs enumerates owner's holdings in contract order.
func (c *Calculator) tokenIDs(ctx context.Context, owner common.Address, n uint64) ([]*big.Int, error) {
	ids := make([]*big.Int, 0, n)
	for i := uint64(0); i < n; i++ {
		id, err := c.nft.TokenOfOwnerByIndex(ctx, owner, new(big.Int).SetUint64(i))
		if err != nil {
			return nil, fmt.Errorf("%w: token at index %d: %w", ErrCalculator, i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Calculator) countSerial(ctx context.Context, ids []*big.Int) (uint64, error) {
	var unclaimed uint64
	for _, id := range ids {
		claimed, err := c.token.TokenIDsClaimed(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("%w: claimed flag of %s: %w", ErrCalculator, id, err)
		}
		if !claimed {
			unclaimed++
		}
	}
	return unclaimed, nil
}

// countParallel checks claimed flags concurrently. Each result lands in its
// own slot, so the aggregate does not depend on completion order.
func (c *Calculator) countParallel(ctx context.Context, ids []*big.Int) (uint64, error) {
	claimed := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i, id := range ids {
		g.Go(func() error {
			ok, err := c.token.TokenIDsClaimed(gctx, id)
			if err != nil {
				return fmt.Errorf("%w: claimed flag of %s: %w", ErrCalculator, id, err)
			}
			claimed[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var unclaimed uint64
	for _, ok := range claimed {
		if !ok {
			unclaimed++
		}
	}
	return unclaimed, nil
}
