package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rui-yang/ICO/internal/chain"
	"github.com/rui-yang/ICO/internal/config"
	"github.com/rui-yang/ICO/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orUnset := func(s string) string {
			if s == "" {
				return "(unset)"
			}
			return s
		}
		timeout := "none"
		if d := cfg.ConfirmTimeoutDuration(); d > 0 {
			timeout = d.String()
		}
		pairs := [][2]string{
			{"network", cfg.Network},
			{"default_wallet", orUnset(cfg.DefaultWallet)},
			{"token_address", orUnset(cfg.TokenAddress)},
			{"nft_address", orUnset(cfg.NFTAddress)},
			{"unit_price", cfg.UnitPrice + " ether"},
			{"rpc_algorithm", cfg.RPCAlgorithm},
			{"confirm_timeout", timeout},
			{"claim_parallelism", strconv.Itoa(cfg.ClaimParallelism)},
			{"preserve_on_read_failure", strconv.FormatBool(cfg.PreserveOnReadFailure)},
			{"log_level", cfg.LogLevel},
		}
		for network, urls := range cfg.CustomRPCs {
			if len(urls) > 0 {
				pairs = append(pairs, [2]string{"rpcs." + network, strings.Join(urls, ", ")})
			}
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("Configuration", pairs))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Keys: network, default_wallet, token_address, nft_address, unit_price,
rpc_algorithm, confirm_timeout, claim_parallelism, preserve_on_read_failure,
log_level.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == "network" {
			if _, err := chain.NewRegistry().GetByName(value); err != nil {
				return fmt.Errorf("unknown network %q — run `ico network list`", value)
			}
		}
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s = %s", key, value)))
		return nil
	},
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <network> <url>",
	Short: "Add a custom RPC endpoint, tried before the built-in ones",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddRPC(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added RPC %s for %s", args[1], ui.ChainName(args[0]))))
		return nil
	},
}

var configRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <network> <url>",
	Short: "Remove a custom RPC endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed RPC %s for %s", args[1], ui.ChainName(args[0]))))
		return nil
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import <deployment.yaml>",
	Short: "Load contract addresses, price and RPCs from a deployment manifest",
	Long: `Load a deployment manifest:

  network: sepolia
  chain_id: 11155111
  unit_price: "0.001"
  rpcs:
    - https://my-node.example
  contracts:
    token: 0x...
    nft: 0x...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := config.LoadDeployment(args[0])
		if err != nil {
			return err
		}
		if err := checkDeploymentNetwork(d); err != nil {
			return err
		}
		if err := cfg.ApplyDeployment(d); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success("Deployment imported"))
		fmt.Fprintln(out, ui.KeyValueBlock("", [][2]string{
			{"network", cfg.Network},
			{"token", cfg.TokenAddress},
			{"nft", cfg.NFTAddress},
			{"unit_price", cfg.UnitPrice},
		}))
		return nil
	},
}

// checkDeploymentNetwork rejects manifests whose chain id disagrees with
// the named network.
func checkDeploymentNetwork(d *config.Deployment) error {
	reg := chain.NewRegistry()
	if d.Network == "" {
		if d.ChainID == 0 {
			return nil
		}
		n, err := reg.GetByChainID(d.ChainID)
		if err != nil {
			return fmt.Errorf("chain id %d: %w", d.ChainID, err)
		}
		d.Network = n.Name
		return nil
	}
	n, err := reg.GetByName(d.Network)
	if err != nil {
		return fmt.Errorf("network %q: %w", d.Network, err)
	}
	if d.ChainID != 0 && d.ChainID != n.ChainID {
		return fmt.Errorf("manifest chain id %d does not match %s (%d)", d.ChainID, n.Name, n.ChainID)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configSetRPCCmd, configRemoveRPCCmd, configImportCmd)
}
