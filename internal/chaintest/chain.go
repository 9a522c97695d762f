// Package chaintest is an in-memory chain that runs the token sale
// contracts' rules behind the go-ethereum backend interfaces.
package chaintest

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/rui-yang/ICO/internal/contract"
)

// ErrExecutionReverted mirrors the node error for a failing call.
var ErrExecutionReverted = errors.New("execution reverted")

// Default addresses of the simulated deployment.
var (
	TokenAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	NFTAddress   = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

var (
	// TokenPrice is the wei price of one whole token.
	TokenPrice = big.NewInt(params.GWei * 1_000_000) // 0.001 ether

	oneToken       = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	tokensPerNFT   = new(big.Int).Mul(big.NewInt(10), oneToken)
	maxTotalSupply = new(big.Int).Mul(big.NewInt(10_000), oneToken)
	baseFee        = big.NewInt(params.GWei)
)

type fault struct {
	err error
	nth int // 0 = every call
}

// Chain is a fake EVM backend. Safe for concurrent use.
type Chain struct {
	mu sync.Mutex

	chainID *big.Int
	block   uint64

	tokenABI abi.ABI
	nftABI   abi.ABI

	owner       common.Address
	balances    map[common.Address]*big.Int
	totalSupply *big.Int
	claimed     map[string]bool
	holdings    map[common.Address][]*big.Int
	ether       map[common.Address]*big.Int
	nonces      map[common.Address]uint64

	receipts     map[common.Hash]*types.Receipt
	pendingPolls int
	revertNext   bool
	gate         chan struct{}

	calls  map[string]int
	faults map[string]fault
}

// New deploys both contracts with owner as token owner.
func New(chainID int64, owner common.Address) *Chain {
	return &Chain{
		chainID:     big.NewInt(chainID),
		block:       1,
		tokenABI:    contract.MustABI(contract.ContractToken),
		nftABI:      contract.MustABI(contract.ContractNFT),
		owner:       owner,
		balances:    map[common.Address]*big.Int{},
		totalSupply: new(big.Int),
		claimed:     map[string]bool{},
		holdings:    map[common.Address][]*big.Int{},
		ether:       map[common.Address]*big.Int{},
		nonces:      map[common.Address]uint64{},
		receipts:    map[common.Hash]*types.Receipt{},
		calls:       map[string]int{},
		faults:      map[string]fault{},
	}
}

// Book returns the simulated deployment addresses.
func (c *Chain) Book() contract.Book {
	return contract.Book{TokenAddress: TokenAddress, NFTAddress: NFTAddress}
}

// --- test setup ---

// GiveNFTs appends token ids to holder's enumeration.
func (c *Chain) GiveNFTs(holder common.Address, ids ...int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.holdings[holder] = append(c.holdings[holder], big.NewInt(id))
	}
}

// MarkClaimed flags token ids as already claimed.
func (c *Chain) MarkClaimed(ids ...int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.claimed[big.NewInt(id).String()] = true
	}
}

// SetChainID changes the reported network id.
func (c *Chain) SetChainID(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chainID = big.NewInt(id)
}

// FailOn makes every call of key fail with err. Keys are "token.<method>",
// "nft.<method>", or a backend method such as "ChainID" or "SendTransaction".
func (c *Chain) FailOn(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[key] = fault{err: err}
}

// FailOnCall makes only the nth (1-based) call of key fail.
func (c *Chain) FailOnCall(key string, nth int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[key] = fault{err: err, nth: nth}
}

// ClearFaults removes all injected failures.
func (c *Chain) ClearFaults() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults = map[string]fault{}
}

// Calls returns how many times key was invoked.
func (c *Chain) Calls(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

// ResetCalls zeroes every call counter.
func (c *Chain) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = map[string]int{}
}

// RevertNext mines the next submitted transaction with a failed status.
func (c *Chain) RevertNext() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revertNext = true
}

// SetPendingPolls makes the first n receipt lookups report not found.
func (c *Chain) SetPendingPolls(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingPolls = n
}

// HoldReceipts blocks receipt lookups until release is called.
func (c *Chain) HoldReceipts() (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gate := make(chan struct{})
	c.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.gate = nil
			c.mu.Unlock()
			close(gate)
		})
	}
}

// --- inspection ---

// TokenBalance returns holder's token balance in the smallest unit.
func (c *Chain) TokenBalance(holder common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.balanceOf(holder))
}

// TotalSupply returns the minted supply in the smallest unit.
func (c *Chain) TotalSupply() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.totalSupply)
}

// EtherBalance returns the wei held by addr. The token contract's proceeds
// are held at TokenAddress.
func (c *Chain) EtherBalance(addr common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.etherOf(addr))
}

// IsClaimed reports the claimed flag of a token id.
func (c *Chain) IsClaimed(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.claimed[big.NewInt(id).String()]
}

// --- internal ---

// hit counts a call and returns the injected fault for it, if any.
// Callers hold c.mu.
func (c *Chain) hit(key string) error {
	c.calls[key]++
	f, ok := c.faults[key]
	if !ok {
		return nil
	}
	if f.nth == 0 || f.nth == c.calls[key] {
		return f.err
	}
	return nil
}

func (c *Chain) balanceOf(a common.Address) *big.Int {
	if b, ok := c.balances[a]; ok {
		return b
	}
	return new(big.Int)
}

func (c *Chain) etherOf(a common.Address) *big.Int {
	if b, ok := c.ether[a]; ok {
		return b
	}
	return new(big.Int)
}

func revert(reason string) error {
	return fmt.Errorf("%w: %s", ErrExecutionReverted, reason)
}
