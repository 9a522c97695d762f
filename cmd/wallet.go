package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/rui-yang/ICO/internal/ui"
	"github.com/rui-yang/ICO/internal/wallet"
)

var (
	walletKeyFlag   string
	walletUnlockAll bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a signing wallet (--key, or prompted) or a watch-only address",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, out := args[0], cmd.OutOrStdout()
		mgr := newWalletManager()

		key, address := walletKeyFlag, ""
		if len(args) == 2 {
			address = args[1]
		}
		if key == "" && address == "" {
			answer := ui.NewPrompter(cmd.InOrStdin(), out).Input("Private key or address to watch")
			if common.IsHexAddress(answer) {
				address = answer
			} else {
				key = answer
			}
		}

		switch {
		case key != "":
			w, err := mgr.AddWithKey(name, key)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		case address != "":
			if err := mgr.AddWatchOnly(name, address); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(address))))
			fmt.Fprintln(out, ui.Hint("Watch-only wallets can run status and claimable but cannot mint, claim or withdraw."))
		default:
			return fmt.Errorf("address required for a watch-only wallet\n  Usage: ico wallet add <name> <address>\n  Or for signing: ico wallet add <name> --key <private-key>")
		}
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Set as default with: ico wallet use %s", name)))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new key in the OS keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := newWalletManager().Generate(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("New wallet", [][2]string{
			{"Name", w.Name},
			{"Address", w.Address},
		}))
		fmt.Fprintln(out, ui.Hint("Fund it with test ether before minting: ico network list shows faucets."))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		mgr := newWalletManager()
		wallets := mgr.List()
		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Add one with: ico wallet add <name> --key <private-key>"))
			return nil
		}

		t := ui.NewTable(
			ui.Column{Title: "Name", Width: 16},
			ui.Column{Title: "Address", Width: 42},
			ui.Column{Title: "Type", Width: 10},
			ui.Column{Title: "Session", Width: 8},
			ui.Column{Title: "Default", Width: 7},
		)
		for i, w := range wallets {
			def, session := "", ""
			if w.IsDefault || w.Name == cfg.DefaultWallet {
				def = "✓"
				t.SelIdx = i
			}
			if mgr.Unlocked(w) {
				session = mgr.UnlockedSince(w).Local().Format("15:04")
			}
			t.AddRow(w.Name, w.Address, w.Type, session, def)
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet (interactive picker without a name)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			picked, err := ui.Pick("Default wallet", walletChoices(mgr.List()))
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, out := args[0], cmd.OutOrStdout()
		if !assumeYes && !ui.NewPrompter(cmd.InOrStdin(), out).ConfirmDanger(fmt.Sprintf("Remove wallet %q and its key?", name)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock [name]",
	Short: "Cache wallet keys for the session so transactions skip keychain prompts",
	Long: `Read private keys from the OS keychain once and cache them in a
restricted session file. Clear it with 'ico wallet lock'.

  ico wallet unlock          # the selected wallet
  ico wallet unlock alice
  ico wallet unlock --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		mgr := newWalletManager()

		var targets []*wallet.Wallet
		switch {
		case walletUnlockAll:
			for _, w := range mgr.List() {
				if w.CanSign() {
					targets = append(targets, w)
				}
			}
		default:
			name := walletFlag
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				name = cfg.DefaultWallet
			}
			w, err := mgr.Resolve(name)
			if err != nil {
				return err
			}
			targets = append(targets, w)
		}
		if len(targets) == 0 {
			fmt.Fprintln(out, ui.Info("No signing wallets found."))
			return nil
		}

		fmt.Fprintln(out, ui.Info("Your OS keychain may prompt once per wallet."))
		var failed int
		for _, w := range targets {
			if mgr.Unlocked(w) {
				fmt.Fprintln(out, ui.Meta(fmt.Sprintf("  %-20s already unlocked", w.Name)))
				continue
			}
			s, err := mgr.Signer(w)
			if err == nil {
				err = s.Unlock()
			}
			if err != nil {
				fmt.Fprintln(out, ui.Err(fmt.Sprintf("  %-20s %v", w.Name, err)))
				failed++
				continue
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("  %-20s unlocked", w.Name)))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d wallet(s) could not be unlocked", failed, len(targets))
		}
		return nil
	},
}

var walletLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Clear the session key cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		mgr := newWalletManager()
		if !mgr.SessionActive() {
			fmt.Fprintln(out, ui.Meta("No active session, nothing to clear."))
			return nil
		}
		if err := mgr.Lock(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Fprintln(out, ui.Success("Session cleared. The keychain will be used on next access."))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletUnlockCmd.Flags().BoolVar(&walletUnlockAll, "all", false, "unlock every signing wallet")
	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletUseCmd,
		walletRemoveCmd, walletUnlockCmd, walletLockCmd)
}

func walletChoices(wallets []*wallet.Wallet) []ui.Choice {
	choices := make([]ui.Choice, len(wallets))
	for i, w := range wallets {
		choices[i] = ui.Choice{
			Label:  w.Name,
			Detail: ui.TruncateAddr(w.Address) + "  " + w.Type,
			Value:  w.Name,
			Marked: w.IsDefault || w.Name == cfg.DefaultWallet,
		}
	}
	return choices
}
