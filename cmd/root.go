package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/rui-yang/ICO/internal/config"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/rui-yang/ICO/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	walletFlag  string
	assumeYes   bool
	metricsFile string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "ico",
	Short: "Crypto Devs token sale client",
	Long: `ico mints Crypto Dev tokens, claims the bonus owed to Crypto Devs NFT
holders and lets the sale owner withdraw the proceeds.

Contract addresses come from config (ico config import deployment.yaml).
Keys live in the OS keychain; run 'ico wallet unlock' once per session to
skip keychain prompts.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		setupLogging(cfg.LogLevel, verbose)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// ICO_CONFIG_DIR env var overrides --config flag default.
	if envDir := os.Getenv("ICO_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.ico)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	pf.StringVar(&walletFlag, "wallet", "", "wallet to use (default: the configured default wallet)")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "skip signing confirmations")
	pf.StringVar(&metricsFile, "metrics-file", "", "write action metrics in Prometheus text format to this file")

	rootCmd.AddCommand(
		statusCmd,
		claimableCmd,
		mintCmd,
		claimCmd,
		withdrawCmd,
		appCmd,
		walletCmd,
		configCmd,
		networkCmd,
	)
}

// setupLogging installs a terminal handler on stderr as go-ethereum's
// default logger. --verbose wins over the configured level.
func setupLogging(level string, verbose bool) {
	lvl := logLevel(level)
	if verbose {
		lvl = log.LevelDebug
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, true)))
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return log.LevelDebug
	case "info":
		return log.LevelInfo
	case "error":
		return log.LevelError
	default:
		return log.LevelWarn
	}
}
