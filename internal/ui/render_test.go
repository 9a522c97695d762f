package ui

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/rui-yang/ICO/internal/state"
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func connected() state.ViewState {
	return state.ViewState{
		WalletConnected: true,
		BalanceOfTokens: tokens(5),
		TotalMinted:     tokens(120),
		Account:         common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
		Phase:           state.PhaseIdle,
	}
}

func TestRenderDisconnectedOffersConnect(t *testing.T) {
	out := RenderView(state.ViewState{}, Screen{Network: "sepolia"})
	assert.Contains(t, out, "Connect your wallet")
	assert.Contains(t, out, "sepolia")
	assert.NotContains(t, out, "have been minted")
}

func TestRenderBalances(t *testing.T) {
	out := RenderView(connected(), Screen{})
	assert.Contains(t, out, "You have minted")
	assert.Contains(t, out, "5")
	assert.Contains(t, out, "Overall")
	assert.Contains(t, out, "120")
	assert.Contains(t, out, "/10000 have been minted!!!")
}

func TestRenderAffordances(t *testing.T) {
	busy := connected()
	busy.Busy = true
	busy.Phase = state.PhaseConfirming

	owner := connected()
	owner.IsOwner = true
	owner.TokensToBeClaimed = 3

	holder := connected()
	holder.TokensToBeClaimed = 3

	cases := []struct {
		name    string
		view    state.ViewState
		want    []string
		notWant string
	}{
		{"loading", busy, []string{"Loading...", "waiting for confirmation"}, "Mint Tokens"},
		{"owner withdraws", owner, []string{"Withdraw Coins"}, "Claim Tokens"},
		{"holder claims", holder, []string{"30 Tokens can be claimed!", "Claim Tokens"}, "Mint Tokens"},
		{"default mint", connected(), []string{"Amount of Tokens", "Mint Tokens"}, "Claim Tokens"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := RenderView(tc.view, Screen{})
			for _, w := range tc.want {
				assert.Contains(t, out, w)
			}
			assert.NotContains(t, out, tc.notWant)
		})
	}
}

func TestRenderMintShowsAmountAndCost(t *testing.T) {
	out := RenderView(connected(), Screen{Amount: "3", Payment: big.NewInt(3e15)})
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "costs 0.003 ETH")
	assert.NotContains(t, out, "Amount of Tokens")
}

func TestRenderNoticesAndConfirm(t *testing.T) {
	v := connected()
	v.Notice = state.Notice{Kind: state.NoticeSuccess, Text: "Successfully minted Crypto Dev Tokens"}
	v.LastTx = common.HexToHash("0xabc")
	out := RenderView(v, Screen{Confirm: "Mint 1 tokens for 0.001 ETH?"})
	assert.Contains(t, out, "Successfully minted Crypto Dev Tokens")
	assert.Contains(t, out, "Mint 1 tokens for 0.001 ETH?")
	assert.Contains(t, out, "[y/N]")
	assert.Contains(t, out, "last tx")

	v.Notice = state.Notice{Kind: state.NoticeError, Text: "claim failed: execution reverted: You have already claimed all the tokens"}
	out = RenderView(v, Screen{})
	assert.Contains(t, out, "reverted: You have already claimed all the tokens")
}

func TestClaimText(t *testing.T) {
	assert.Equal(t, "0 Tokens can be claimed!", ClaimText(0))
	assert.Equal(t, "20 Tokens can be claimed!", ClaimText(2))
}

func TestTokenText(t *testing.T) {
	assert.Equal(t, "0", TokenText(nil))
	assert.Equal(t, "1.5", TokenText(big.NewInt(15e17)))
}
