package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/rui-yang/ICO/internal/chain"
	"github.com/rui-yang/ICO/internal/config"
	"github.com/rui-yang/ICO/internal/contract"
	"github.com/rui-yang/ICO/internal/orchestrator"
	"github.com/rui-yang/ICO/internal/provider"
	"github.com/rui-yang/ICO/internal/rpc"
	"github.com/rui-yang/ICO/internal/state"
	"github.com/rui-yang/ICO/internal/ui"
	"github.com/rui-yang/ICO/internal/wallet"
)

// sale is everything a chain-facing command needs, built once per run.
type sale struct {
	network  *chain.Network
	wallet   *wallet.Wallet
	provider *provider.Provider
	book     contract.Book
	store    *state.Store
	metrics  *orchestrator.Metrics
	orch     *orchestrator.Orchestrator
}

// connectorFunc builds the wallet layer for a network and wallet.
type connectorFunc func(net *chain.Network, w *wallet.Wallet, mgr *wallet.Manager, approve provider.ApproveFunc) (provider.Connector, error)

// newConnector dials real RPC endpoints. Tests swap it for a fake chain.
var newConnector connectorFunc = dialConnector

func dialConnector(net *chain.Network, w *wallet.Wallet, mgr *wallet.Manager, approve provider.ApproveFunc) (provider.Connector, error) {
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return nil, err
	}
	urls := append(append([]string{}, cfg.GetRPCs(net.Name)...), net.RPCs...)
	if len(urls) == 0 {
		return nil, fmt.Errorf("no RPC endpoints for %s — add one with `ico config set-rpc %s <url>`", net.Name, net.Name)
	}
	return &provider.DialConnector{
		URLs:          urls,
		Algorithm:     algo,
		SelectTimeout: config.RPCSelectTimeout,
		Wallet:        w,
		Wallets:       mgr,
		Approve:       approve,
		Log:           log.Root().With("component", "dial"),
	}, nil
}

// newKeystore opens key custody. Tests swap it for an in-memory store.
var newKeystore = func() wallet.KeystoreBackend { return wallet.DefaultKeystore() }

// newWalletManager creates a Manager backed by the config-dir JSON store
// and the OS keychain.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(newKeystore()),
	)
}

// promptApprove asks on the terminal before any key is used, unless --yes.
func promptApprove(in io.Reader, out io.Writer, net *chain.Network) provider.ApproveFunc {
	if assumeYes {
		return nil
	}
	p := ui.NewPrompter(in, out)
	return func(account common.Address) (bool, error) {
		return p.Confirm(fmt.Sprintf("Sign with %s on %s?", ui.TruncateAddr(account.Hex()), net.DisplayName)), nil
	}
}

// buildSale wires provider, contracts, state and orchestrator from config.
func buildSale(approve func(*chain.Network) provider.ApproveFunc) (*sale, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	net, err := chain.NewRegistry().GetByName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("network %q: %w — run `ico network list`", cfg.Network, err)
	}

	mgr := newWalletManager()
	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	w, err := mgr.Resolve(name)
	if errors.Is(err, wallet.ErrWalletNotFound) {
		return nil, fmt.Errorf("no wallet selected — add one with `ico wallet add <name> --key <hex>` and `ico wallet use <name>`")
	}
	if err != nil {
		return nil, err
	}

	var ap provider.ApproveFunc
	if approve != nil {
		ap = approve(net)
	}
	connector, err := newConnector(net, w, mgr, ap)
	if err != nil {
		return nil, err
	}

	price, err := chain.ParseEther(cfg.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("unit_price: %w", err)
	}

	s := &sale{
		network: net,
		wallet:  w,
		book: contract.Book{
			TokenAddress: common.HexToAddress(cfg.TokenAddress),
			NFTAddress:   common.HexToAddress(cfg.NFTAddress),
		},
		store:   state.NewStore(),
		metrics: orchestrator.NewMetrics(),
	}
	s.provider = provider.New(connector, net.ID(), log.Root())
	s.orch = orchestrator.New(s.provider, s.book, s.store,
		orchestrator.WithUnitPrice(price),
		orchestrator.WithClaimParallelism(cfg.ClaimParallelism),
		orchestrator.WithPreserveOnReadFailure(cfg.PreserveOnReadFailure),
		orchestrator.WithConfirmTimeout(cfg.ConfirmTimeoutDuration()),
		orchestrator.WithPollInterval(config.ReceiptPollInterval),
		orchestrator.WithMetrics(s.metrics),
		orchestrator.WithLogger(log.Root()),
	)
	return s, nil
}

// flushMetrics writes the metrics file when --metrics-file is set.
func (s *sale) flushMetrics() {
	if metricsFile == "" {
		return
	}
	if err := s.metrics.WriteFile(metricsFile); err != nil {
		log.Warn("Could not write metrics", "path", metricsFile, "err", err)
	}
}
