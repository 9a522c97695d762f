package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rui-yang/ICO/internal/chain"
	"github.com/rui-yang/ICO/internal/config"
	"github.com/rui-yang/ICO/internal/rpc"
	"github.com/rui-yang/ICO/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Supported networks and their RPC endpoints",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable(
			ui.Column{Title: "Name", Width: 14},
			ui.Column{Title: "Display", Width: 14},
			ui.Column{Title: "Chain ID", Width: 10, Right: true},
			ui.Column{Title: "Currency", Width: 8},
			ui.Column{Title: "Faucet", Width: 44},
		)
		for i, n := range chain.NewRegistry().All() {
			if n.Name == cfg.Network {
				t.SelIdx = i
			}
			t.AddRow(n.Name, n.DisplayName, strconv.FormatInt(n.ChainID, 10), n.NativeCurrency, n.FaucetURL)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Hint("Switch with: ico config set network <name>"))
		return nil
	},
}

var networkBenchCmd = &cobra.Command{
	Use:   "bench [network]",
	Short: "Probe every RPC endpoint of a network and show which one would be used",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cfg.Network
		if len(args) == 1 {
			name = args[0]
		}
		n, err := chain.NewRegistry().GetByName(name)
		if err != nil {
			return fmt.Errorf("network %q: %w", name, err)
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		urls := append(append([]string{}, cfg.GetRPCs(n.Name)...), n.RPCs...)
		sp := ui.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Probing %d endpoint(s) on %s", len(urls), n.DisplayName))
		sp.Start()
		endpoints := rpc.Benchmark(cmd.Context(), urls, config.RPCSelectTimeout)
		sp.Stop()

		winner, pickErr := rpc.NewPicker(algo).Pick(endpoints)

		t := ui.NewTable(
			ui.Column{Title: "URL", Width: 48},
			ui.Column{Title: "Latency", Width: 9, Right: true},
			ui.Column{Title: "Block", Width: 10, Right: true},
			ui.Column{Title: "Status", Width: 24},
		)
		for i, ep := range endpoints {
			latency, block, status := "-", "-", "ok"
			if ep.Healthy {
				latency = ep.Latency.Round(time.Millisecond).String()
				block = strconv.FormatUint(ep.BlockNumber, 10)
			} else if ep.Err != nil {
				status = ui.ShortErr(ep.Err.Error())
			}
			if winner != nil && winner.URL == ep.URL {
				t.SelIdx = i
				status += " (" + string(algo) + ")"
			}
			t.AddRow(ep.URL, latency, block, status)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return pickErr
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkBenchCmd)
}
