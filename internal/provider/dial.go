package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/rui-yang/ICO/internal/rpc"
	"github.com/rui-yang/ICO/internal/wallet"
)

// ApproveFunc asks the user to authorise signing for account.
type ApproveFunc func(account common.Address) (bool, error)

// DialConnector connects a local wallet to the best of a set of RPC URLs.
type DialConnector struct {
	URLs          []string
	Algorithm     rpc.Algorithm
	SelectTimeout time.Duration
	Wallet        *wallet.Wallet
	Wallets       *wallet.Manager
	Approve       ApproveFunc // nil approves silently
	Log           log.Logger
}

// Connect picks an endpoint, dials it and attaches the wallet.
func (d *DialConnector) Connect(ctx context.Context, requireSigner bool) (*Session, error) {
	if d.Wallet == nil {
		return nil, wallet.ErrWalletNotFound
	}
	logger := d.Log
	if logger == nil {
		logger = log.Root()
	}

	var signer SigningIdentity
	if requireSigner {
		s, err := d.Wallets.Signer(d.Wallet)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoSigner, err)
		}
		if d.Approve != nil {
			ok, err := d.Approve(d.Wallet.Account())
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrUserRejected
			}
		}
		signer = s
	}

	timeout := d.SelectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	url, err := rpc.Select(ctx, d.URLs, d.Algorithm, timeout)
	if err != nil {
		return nil, err
	}
	logger.Debug("Dialing RPC endpoint", "url", url, "algorithm", d.Algorithm)

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Session{
		Backend: client,
		Account: d.Wallet.Account(),
		Signer:  signer,
		Close:   client.Close,
	}, nil
}
