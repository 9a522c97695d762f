// Package contract binds the token and NFT contracts to a connection.
//
// Gateways are thin: one method per contract entry point, no retries.
// Failures carry ErrChainCallFailed and keep the underlying cause.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rui-yang/ICO/internal/provider"
)

// Errors.
var (
	ErrChainCallFailed = errors.New("chain call failed")
	ErrReverted        = errors.New("transaction reverted")
	ErrReadOnly        = errors.New("connection cannot sign")
	ErrUnknownContract = errors.New("unknown contract")
	ErrNoAddress       = errors.New("contract address not configured")
)

// Book holds the deployed addresses of the sale contracts.
type Book struct {
	TokenAddress common.Address
	NFTAddress   common.Address
}

// Address returns the configured address for id.
func (b Book) Address(id ContractID) (common.Address, error) {
	var addr common.Address
	switch id {
	case ContractToken:
		addr = b.TokenAddress
	case ContractNFT:
		addr = b.NFTAddress
	default:
		return common.Address{}, fmt.Errorf("%w: %q", ErrUnknownContract, id)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrNoAddress, id)
	}
	return addr, nil
}

// Gateway binds one contract address and interface to a connection.
type Gateway struct {
	id      ContractID
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
	conn    *provider.Connection
}

// Gateway makes a binding of contract id to conn.
func (b Book) Gateway(id ContractID, conn *provider.Connection) (*Gateway, error) {
	addr, err := b.Address(id)
	if err != nil {
		return nil, err
	}
	parsed, err := ABI(id)
	if err != nil {
		return nil, err
	}
	return &Gateway{
		id:      id,
		address: addr,
		abi:     parsed,
		bound:   bind.NewBoundContract(addr, parsed, conn.Backend, conn.Backend, conn.Backend),
		conn:    conn,
	}, nil
}

// Token binds the token contract.
func (b Book) Token(conn *provider.Connection) (*TokenGateway, error) {
	g, err := b.Gateway(ContractToken, conn)
	if err != nil {
		return nil, err
	}
	return &TokenGateway{g}, nil
}

// NFT binds the NFT contract.
func (b Book) NFT(conn *provider.Connection) (*NFTGateway, error) {
	g, err := b.Gateway(ContractNFT, conn)
	if err != nil {
		return nil, err
	}
	return &NFTGateway{g}, nil
}

// ID returns the contract this gateway is bound to.
func (g *Gateway) ID() ContractID { return g.id }

// Address returns the bound contract address.
func (g *Gateway) Address() common.Address { return g.address }

// Call invokes a view method and returns its unpacked outputs.
func (g *Gateway) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: g.conn.Account}
	if err := g.bound.Call(opts, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %w", ErrChainCallFailed, g.id, method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s.%s: empty result", ErrChainCallFailed, g.id, method)
	}
	return out, nil
}

// Transact submits a state-changing call. value may be nil.
func (g *Gateway) Transact(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Transaction, error) {
	if !g.conn.CanSign() {
		return nil, fmt.Errorf("%w: %s.%s", ErrReadOnly, g.id, method)
	}
	opts := *g.conn.Opts
	opts.Context = ctx
	opts.Value = value

	tx, err := g.bound.Transact(&opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %w", ErrChainCallFailed, g.id, method, err)
	}
	return tx, nil
}

func (g *Gateway) callBig(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	out, err := g.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s: unexpected output %T", ErrChainCallFailed, g.id, method, out[0])
	}
	return v, nil
}
