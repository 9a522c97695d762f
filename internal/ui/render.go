package ui

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rui-yang/ICO/internal/chain"
	"github.com/rui-yang/ICO/internal/config"
	"github.com/rui-yang/ICO/internal/state"
)

// Screen is the chrome around a ViewState: things the model tracks that
// are not chain state.
type Screen struct {
	Network string
	Amount  string // mint amount as typed
	Payment *big.Int
	Confirm string // pending confirmation question, if any
}

// TokenText formats a token amount held in the smallest unit.
func TokenText(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return chain.FormatUnits(x, config.TokenDecimals)
}

// ClaimText is the claim line: each unclaimed NFT is worth a fixed bonus.
func ClaimText(count uint64) string {
	return fmt.Sprintf("%d Tokens can be claimed!", count*config.TokensPerNFT)
}

// RenderView projects v onto the screen. It has no side effects.
func RenderView(v state.ViewState, s Screen) string {
	var sb strings.Builder
	sb.WriteString(Banner())
	if s.Network != "" {
		sb.WriteString(Meta("network ") + ChainName(s.Network))
		if v.WalletConnected {
			sb.WriteString(Meta("  account ") + Addr(v.Account.Hex()))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if v.WalletConnected {
		sb.WriteString(fmt.Sprintf("You have minted %s Crypto Dev Tokens\n", Val(TokenText(v.BalanceOfTokens))))
		sb.WriteString(fmt.Sprintf("Overall %s/%d have been minted!!!\n\n", Val(TokenText(v.TotalMinted)), config.MaxTotalSupply))
	}

	switch state.Select(v) {
	case state.AffordanceLoading:
		sb.WriteString(StyleWarning.Render("Loading...") + " " + Meta(phaseText(v)) + "\n")
	case state.AffordanceConnect:
		sb.WriteString(StyleButton.Render("Connect your wallet") + "  " + Meta("[enter/c]") + "\n")
	case state.AffordanceWithdraw:
		sb.WriteString(StyleButton.Render("Withdraw Coins") + "  " + Meta("[enter/w]") + "\n")
	case state.AffordanceClaim:
		sb.WriteString(StyleSuccess.Render(ClaimText(v.TokensToBeClaimed)) + "\n")
		sb.WriteString(StyleButton.Render("Claim Tokens") + "  " + Meta("[enter/l]") + "\n")
	case state.AffordanceMint:
		amount := s.Amount
		if amount == "" {
			amount = Meta("Amount of Tokens")
		}
		sb.WriteString(StyleBorder.Render(amount) + "\n")
		sb.WriteString(StyleButton.Render("Mint Tokens") + "  " + Meta("[enter/m]"))
		if s.Payment != nil && s.Payment.Sign() > 0 {
			sb.WriteString("  " + Meta("costs "+chain.FormatEther(s.Payment)+" ETH"))
		}
		sb.WriteString("\n")
	}

	if s.Confirm != "" {
		sb.WriteString("\n" + StyleWarning.Render(s.Confirm) + " [y/N]\n")
	}

	switch v.Notice.Kind {
	case state.NoticeSuccess:
		sb.WriteString("\n" + Success(v.Notice.Text) + "\n")
	case state.NoticeError:
		sb.WriteString("\n" + Err(ShortErr(v.Notice.Text)) + "\n")
	}
	if v.LastTx != (common.Hash{}) {
		sb.WriteString(Meta("last tx ") + Addr(v.LastTx.Hex()) + "\n")
	}

	sb.WriteString("\n" + Meta("r refresh  q quit") + "\n")
	return sb.String()
}

func phaseText(v state.ViewState) string {
	switch v.Phase {
	case state.PhaseAcquiring:
		return "waiting for wallet"
	case state.PhaseSubmitted:
		return "transaction sent"
	case state.PhaseConfirming:
		return "waiting for confirmation"
	case state.PhaseRefreshing:
		return "reading balances"
	}
	return ""
}
