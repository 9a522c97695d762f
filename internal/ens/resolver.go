// Package ens resolves ENS names so owners can be given as name.eth.
package ens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// RegistryAddress is the ENS registry, identical on mainnet and the public
// testnets.
var RegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// Errors.
var (
	ErrInvalidName = errors.New("not an address or ENS name")
	ErrNoResolver  = errors.New("no ENS resolver set")
	ErrNoRecord    = errors.New("no ENS record")
)

const ensABI = `[
  {"type":"function","name":"resolver","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"addr","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"name","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]}
]`

var parsedABI = func() abi.ABI {
	a, err := abi.JSON(strings.NewReader(ensABI))
	if err != nil {
		panic(err)
	}
	return a
}()

// Caller executes read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Resolver looks names up through the ENS registry.
type Resolver struct {
	caller   Caller
	registry common.Address
}

// NewResolver creates a resolver against the default registry.
func NewResolver(caller Caller) *Resolver {
	return &Resolver{caller: caller, registry: RegistryAddress}
}

// ResolveAccount accepts either a hex address or an ENS name.
func (r *Resolver) ResolveAccount(ctx context.Context, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if common.IsHexAddress(input) {
		return common.HexToAddress(input), nil
	}
	if !IsName(input) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidName, input)
	}
	return r.Resolve(ctx, input)
}

// Resolve returns the address record of name.
func (r *Resolver) Resolve(ctx context.Context, name string) (common.Address, error) {
	node := Namehash(name)
	resolver, err := r.resolverOf(ctx, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}

	var addr common.Address
	if err := r.call(ctx, resolver, "addr", &addr, node); err != nil {
		return common.Address{}, fmt.Errorf("querying ENS resolver: %w", err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w for %q", ErrNoRecord, name)
	}
	return addr, nil
}

// ReverseLookup returns the primary name of address.
func (r *Resolver) ReverseLookup(ctx context.Context, address common.Address) (string, error) {
	node := Namehash(strings.ToLower(address.Hex()[2:]) + ".addr.reverse")
	resolver, err := r.resolverOf(ctx, node)
	if err != nil {
		return "", fmt.Errorf("%s: %w", address.Hex(), err)
	}

	var name string
	if err := r.call(ctx, resolver, "name", &name, node); err != nil {
		return "", fmt.Errorf("querying reverse resolver: %w", err)
	}
	if name == "" {
		return "", fmt.Errorf("%w for %s", ErrNoRecord, address.Hex())
	}
	return name, nil
}

func (r *Resolver) resolverOf(ctx context.Context, node common.Hash) (common.Address, error) {
	var resolver common.Address
	if err := r.call(ctx, r.registry, "resolver", &resolver, node); err != nil {
		return common.Address{}, fmt.Errorf("querying ENS registry: %w", err)
	}
	if resolver == (common.Address{}) {
		return common.Address{}, ErrNoResolver
	}
	return resolver, nil
}

func (r *Resolver) call(ctx context.Context, to common.Address, method string, out interface{}, node common.Hash) error {
	data, err := parsedABI.Pack(method, node)
	if err != nil {
		return err
	}
	raw, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("empty response from %s", to.Hex())
	}
	return parsedABI.UnpackIntoInterface(out, method, raw)
}

// IsName reports whether s looks like a dotted ENS name.
func IsName(s string) bool {
	if !strings.Contains(s, ".") || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	return !strings.ContainsAny(s, " /\\:")
}

// Namehash implements the EIP-137 namehash over a lowercased name.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak256([]byte(labels[i]))
		copy(node[:], keccak256(node[:], label))
	}
	return node
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
