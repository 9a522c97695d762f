// Package provider acquires chain connections for the token sale client.
//
// A Connection is created fresh for every Acquire and is never cached.
// The network check runs before any contract binding is made, so a wallet
// pointed at the wrong chain never reaches a contract call.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Errors.
var (
	ErrWrongNetwork = errors.New("wrong network")
	ErrUserRejected = errors.New("request rejected by user")
	ErrNoSigner     = errors.New("wallet cannot sign")
)

// Backend is the chain access a Connection carries: contract calls,
// transaction submission and receipt lookup.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// SigningIdentity produces a transactor bound to a chain id.
type SigningIdentity interface {
	TransactOpts(chainID *big.Int) (*bind.TransactOpts, error)
}

// Session is what the wallet layer hands back on connect.
type Session struct {
	Backend Backend
	Account common.Address
	Signer  SigningIdentity // nil for watch-only accounts
	Close   func()
}

// Connector is the wallet integration layer.
type Connector interface {
	Connect(ctx context.Context, requireSigner bool) (*Session, error)
}

// Connection is a network-checked handle for one interaction.
type Connection struct {
	Backend Backend
	ChainID *big.Int
	Account common.Address
	Opts    *bind.TransactOpts // nil for read-only connections

	close func()
}

// CanSign reports whether the connection can submit transactions.
func (c *Connection) CanSign() bool {
	return c.Opts != nil
}

// Close releases the underlying transport.
func (c *Connection) Close() {
	if c.close != nil {
		c.close()
	}
}

// Provider validates connections against a single target chain.
type Provider struct {
	connector Connector
	chainID   *big.Int
	log       log.Logger
}

// New creates a provider targeting chainID.
func New(connector Connector, chainID *big.Int, logger log.Logger) *Provider {
	if logger == nil {
		logger = log.Root()
	}
	return &Provider{
		connector: connector,
		chainID:   new(big.Int).Set(chainID),
		log:       logger.With("component", "provider"),
	}
}

// ChainID returns the target chain id.
func (p *Provider) ChainID() *big.Int {
	return new(big.Int).Set(p.chainID)
}

// Acquire connects through the wallet layer and checks the network. With
// requireSigner the returned connection carries a transactor.
func (p *Provider) Acquire(ctx context.Context, requireSigner bool) (*Connection, error) {
	sess, err := p.connector.Connect(ctx, requireSigner)
	if err != nil {
		return nil, err
	}
	conn := &Connection{Backend: sess.Backend, Account: sess.Account, close: sess.Close}

	id, err := sess.Backend.ChainID(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("reading network id: %w", err)
	}
	if id.Cmp(p.chainID) != 0 {
		conn.Close()
		p.log.Warn("Network mismatch", "want", p.chainID, "got", id)
		return nil, fmt.Errorf("%w: connected to chain %s, want %s", ErrWrongNetwork, id, p.chainID)
	}
	conn.ChainID = id

	if requireSigner {
		if sess.Signer == nil {
			conn.Close()
			return nil, fmt.Errorf("%w: %s", ErrNoSigner, sess.Account.Hex())
		}
		opts, err := sess.Signer.TransactOpts(id)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("deriving signer: %w", err)
		}
		opts.Context = ctx
		conn.Opts = opts
	}

	p.log.Debug("Connection acquired", "account", conn.Account, "chain", id, "signer", conn.CanSign())
	return conn, nil
}
