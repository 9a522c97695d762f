package chaintest

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rui-yang/ICO/internal/provider"
)

// Well-known development keys.
const (
	OwnerKey  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	HolderKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

// Account is a funded test account.
type Account struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
}

// MustAccount loads a hex private key.
func MustAccount(hexKey string) Account {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		panic(err)
	}
	return Account{Key: key, Address: crypto.PubkeyToAddress(key.PublicKey)}
}

// TransactOpts implements provider.SigningIdentity.
func (a Account) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(a.Key, chainID)
}

var _ provider.Backend = (*Chain)(nil)

// Connector hands out sessions on a Chain for one account.
type Connector struct {
	Chain    *Chain
	Account  Account
	ReadOnly bool  // omit the signer
	Err      error // returned from Connect when set

	connects atomic.Int32
}

// NewConnector connects acct to chain.
func NewConnector(chain *Chain, acct Account) *Connector {
	return &Connector{Chain: chain, Account: acct}
}

// Connect implements provider.Connector.
func (c *Connector) Connect(ctx context.Context, requireSigner bool) (*provider.Session, error) {
	c.connects.Add(1)
	if c.Err != nil {
		return nil, c.Err
	}
	sess := &provider.Session{Backend: c.Chain, Account: c.Account.Address}
	if !c.ReadOnly {
		sess.Signer = c.Account
	}
	return sess, nil
}

// Connects returns how many sessions were requested.
func (c *Connector) Connects() int {
	return int(c.connects.Load())
}
