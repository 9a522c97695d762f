package cmd

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"

	"github.com/rui-yang/ICO/internal/chain"
	"github.com/rui-yang/ICO/internal/claim"
	"github.com/rui-yang/ICO/internal/config"
	"github.com/rui-yang/ICO/internal/ens"
	"github.com/rui-yang/ICO/internal/provider"
	"github.com/rui-yang/ICO/internal/state"
	"github.com/rui-yang/ICO/internal/ui"
)

var claimableOwner string

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"connect"},
	Short:   "Connect the wallet and show balances, supply and what you can do next",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSale(nil)
		if err != nil {
			return err
		}
		defer s.flushMetrics()

		if err := s.orch.Connect(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), statusBlock(s, s.store.Snapshot()))
		return nil
	},
}

var claimableCmd = &cobra.Command{
	Use:   "claimable",
	Short: "Count the NFTs whose bonus has not been claimed yet",
	Long: `Count the Crypto Devs NFTs held by an address whose token bonus is still
unclaimed. Defaults to the selected wallet; --owner takes an address or an
ENS name.

Examples:
  ico claimable
  ico claimable --owner 0x70997970C51812dc3A010C7d01b50e0d17dc79C8
  ico claimable --owner alice.eth`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := buildSale(nil)
		if err != nil {
			return err
		}

		conn, err := s.provider.Acquire(ctx, false)
		if err != nil {
			return err
		}
		defer conn.Close()

		resolver := ens.NewResolver(conn.Backend)
		owner := conn.Account
		if claimableOwner != "" {
			if owner, err = resolver.ResolveAccount(ctx, claimableOwner); err != nil {
				return err
			}
		}

		nft, err := s.book.NFT(conn)
		if err != nil {
			return err
		}
		token, err := s.book.Token(conn)
		if err != nil {
			return err
		}
		n, err := claim.New(nft, token, claim.WithParallelism(cfg.ClaimParallelism)).Claimable(ctx, owner)
		if err != nil {
			return err
		}

		label := owner.Hex()
		if name, err := resolver.ReverseLookup(ctx, owner); err == nil {
			label = name + " (" + ui.TruncateAddr(owner.Hex()) + ")"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s unclaimed NFT(s)\n", ui.Addr(label), ui.Val(strconv.FormatUint(n, 10)))
		if n > 0 {
			fmt.Fprintln(out, ui.Success(ui.ClaimText(n)))
		}
		return nil
	},
}

var mintCmd = &cobra.Command{
	Use:   "mint <amount>",
	Short: "Buy whole Crypto Dev tokens at the sale price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || qty == 0 {
			return fmt.Errorf("amount must be a positive whole number of tokens, got %q", args[0])
		}
		s, err := buildSale(approveFromCmd(cmd))
		if err != nil {
			return err
		}
		defer s.flushMetrics()

		fmt.Fprintln(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("Minting %d token(s) for %s %s",
			qty, chain.FormatEther(s.orch.Payment(qty)), s.network.NativeCurrency)))
		return runWrite(cmd, s, func() (*types.Receipt, error) {
			return s.orch.Mint(cmd.Context(), qty)
		})
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim the token bonus for every unclaimed NFT you hold",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSale(approveFromCmd(cmd))
		if err != nil {
			return err
		}
		defer s.flushMetrics()

		if err := s.orch.Connect(cmd.Context()); err != nil {
			return err
		}
		if v := s.store.Snapshot(); v.TokensToBeClaimed == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Info("Nothing to claim: every NFT held by this wallet has been claimed."))
			return nil
		}
		return runWrite(cmd, s, func() (*types.Receipt, error) {
			return s.orch.Claim(cmd.Context())
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Send the sale proceeds to the contract owner (owner only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSale(approveFromCmd(cmd))
		if err != nil {
			return err
		}
		defer s.flushMetrics()

		if err := s.orch.Connect(cmd.Context()); err != nil {
			return err
		}
		if !s.store.Snapshot().IsOwner {
			return fmt.Errorf("%s is not the token contract owner", s.wallet.Address)
		}
		return runWrite(cmd, s, func() (*types.Receipt, error) {
			return s.orch.Withdraw(cmd.Context())
		})
	},
}

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Interactive sale screen",
	Long: `Open the interactive sale screen. It shows your balance and the minted
supply and offers one action at a time: connect, withdraw (owner), claim
(NFT holders with unclaimed bonus) or mint.

Keys: enter runs the offered action, digits edit the mint amount,
c connects, r refreshes, q quits. Every transaction asks y/n first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSale(nil)
		if err != nil {
			return err
		}
		defer s.flushMetrics()
		return ui.RunApp(cmd.Context(), s.orch, s.store, s.network.DisplayName,
			tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	},
}

func init() {
	claimableCmd.Flags().StringVar(&claimableOwner, "owner", "", "address or ENS name to check (default: selected wallet)")
}

func approveFromCmd(cmd *cobra.Command) func(*chain.Network) provider.ApproveFunc {
	return func(net *chain.Network) provider.ApproveFunc {
		return promptApprove(cmd.InOrStdin(), cmd.OutOrStdout(), net)
	}
}

// runWrite runs one orchestrated write with a spinner and prints the outcome.
func runWrite(cmd *cobra.Command, s *sale, action func() (*types.Receipt, error)) error {
	out := cmd.OutOrStdout()
	stop := watchProgress(s.store, cmd.ErrOrStderr())
	receipt, err := action()
	stop()

	v := s.store.Snapshot()
	if err != nil {
		switch {
		case receipt != nil:
			fmt.Fprintln(out, ui.Meta("tx "+txRef(s, receipt.TxHash)))
		case v.LastTx != (common.Hash{}):
			fmt.Fprintln(out, ui.Meta("tx "+txRef(s, v.LastTx)))
		}
		return err
	}

	fmt.Fprintln(out, ui.Success(v.Notice.Text))
	if receipt != nil {
		fmt.Fprintf(out, "  %s %s\n", ui.Meta("tx"), ui.Addr(txRef(s, receipt.TxHash)))
		fmt.Fprintf(out, "  %s %d\n", ui.Meta("block"), receipt.BlockNumber)
	}
	if v.Notice.Kind == state.NoticeError {
		fmt.Fprintln(out, ui.Warn(v.Notice.Text))
	}
	fmt.Fprintln(out, statusBlock(s, v))
	return nil
}

// txRef is the explorer link for hash, or the bare hash on networks
// without an explorer.
func txRef(s *sale, hash common.Hash) string {
	if u := s.network.TxURL(hash.Hex()); u != "" {
		return u
	}
	return hash.Hex()
}

// watchProgress shows a spinner once a transaction is in flight. The
// acquiring phase is skipped so the spinner never overwrites a prompt.
func watchProgress(store *state.Store, out io.Writer) (stop func()) {
	var (
		mu sync.Mutex
		sp *ui.Spinner
	)
	unsubscribe := store.Subscribe(func(v state.ViewState) {
		mu.Lock()
		defer mu.Unlock()
		text := progressText(v)
		if text == "" {
			return
		}
		if sp == nil {
			sp = ui.NewSpinner(out, text)
			sp.Start()
			return
		}
		sp.Update(text)
	})
	return func() {
		unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		if sp != nil {
			sp.Stop()
			sp = nil
		}
	}
}

func progressText(v state.ViewState) string {
	if !v.Busy {
		return ""
	}
	switch v.Phase {
	case state.PhaseSubmitted:
		return "Transaction sent " + ui.TruncateAddr(v.LastTx.Hex())
	case state.PhaseConfirming:
		return "Waiting for confirmation " + ui.TruncateAddr(v.LastTx.Hex())
	case state.PhaseRefreshing:
		return "Reading balances"
	}
	return ""
}

// statusBlock renders the view state the way the app screen does.
func statusBlock(s *sale, v state.ViewState) string {
	owner := "no"
	if v.IsOwner {
		owner = "yes"
	}
	pairs := [][2]string{
		{"Network", s.network.DisplayName},
		{"Account", v.Account.Hex()},
	}
	if u := s.network.AddressURL(v.Account.Hex()); u != "" && v.WalletConnected {
		pairs = append(pairs, [2]string{"Explorer", u})
	}
	pairs = append(pairs, [][2]string{
		{"Your tokens", ui.TokenText(v.BalanceOfTokens)},
		{"Minted", fmt.Sprintf("%s / %d", ui.TokenText(v.TotalMinted), config.MaxTotalSupply)},
		{"Claimable", ui.ClaimText(v.TokensToBeClaimed)},
		{"Owner", owner},
		{"Next", state.Select(v).String()},
	}...)
	return ui.KeyValueBlock("Crypto Devs ICO", pairs)
}
