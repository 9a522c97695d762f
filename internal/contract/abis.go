package contract

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ContractID names one of the two sale contracts.
type ContractID string

const (
	ContractToken ContractID = "token"
	ContractNFT   ContractID = "nft"
)

// TokenABI is the subset of the CryptoDevToken interface the client uses.
const TokenABI = `[
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"tokenIdsClaimed","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"tokenPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"maxTotalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"mint","stateMutability":"payable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

// NFTABI is the subset of the CryptoDevs ERC-721 enumerable interface the
// client uses.
const NFTABI = `[
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"tokenOfOwnerByIndex","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// Definition describes a known contract interface.
type Definition struct {
	ID      ContractID
	Name    string
	ABIJSON string
}

var definitions = map[ContractID]Definition{
	ContractToken: {ID: ContractToken, Name: "Crypto Dev Token (ERC-20)", ABIJSON: TokenABI},
	ContractNFT:   {ID: ContractNFT, Name: "Crypto Devs NFT (ERC-721)", ABIJSON: NFTABI},
}

var (
	parsedMu sync.Mutex
	parsed   = map[ContractID]abi.ABI{}
)

// Definitions returns all known contracts sorted by ID.
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ABI returns the parsed interface for id.
func ABI(id ContractID) (abi.ABI, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if a, ok := parsed[id]; ok {
		return a, nil
	}
	def, ok := definitions[id]
	if !ok {
		return abi.ABI{}, fmt.Errorf("%w: %q", ErrUnknownContract, id)
	}
	a, err := abi.JSON(strings.NewReader(def.ABIJSON))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse %s abi: %w", id, err)
	}
	parsed[id] = a
	return a, nil
}

// MustABI is ABI for the built-in definitions, which always parse.
func MustABI(id ContractID) abi.ABI {
	a, err := ABI(id)
	if err != nil {
		panic(err)
	}
	return a
}
