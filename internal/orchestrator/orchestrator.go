// Package orchestrator drives user actions through acquire, submit,
// confirm and refresh, keeping the view state in step with the chain.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/rui-yang/ICO/internal/contract"
	"github.com/rui-yang/ICO/internal/provider"
	"github.com/rui-yang/ICO/internal/state"
)

// Errors.
var (
	ErrBusy          = errors.New("another action is in progress")
	ErrInvalidAmount = errors.New("mint amount must be a positive whole number")
)

// Action names.
const (
	ActionConnect  = "connect"
	ActionRefresh  = "refresh"
	ActionMint     = "mint"
	ActionClaim    = "claim"
	ActionWithdraw = "withdraw"
)

var successText = map[string]string{
	ActionMint:     "Successfully minted Crypto Dev Tokens",
	ActionClaim:    "Successfully claimed Crypto Dev Tokens",
	ActionWithdraw: "Successfully withdrew the sale proceeds",
}

// DefaultUnitPrice is 0.001 ether per whole token.
var DefaultUnitPrice = new(big.Int).Mul(big.NewInt(params.GWei), big.NewInt(1_000_000))

// Acquirer hands out network-checked connections.
type Acquirer interface {
	Acquire(ctx context.Context, requireSigner bool) (*provider.Connection, error)
}

// Orchestrator runs one action at a time against the view state.
type Orchestrator struct {
	provider Acquirer
	book     contract.Book
	store    *state.Store
	metrics  *Metrics
	log      log.Logger

	unitPrice      *big.Int
	parallelism    int
	preserve       bool
	confirmTimeout time.Duration
	poll           time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithUnitPrice sets the wei price of one whole token.
func WithUnitPrice(wei *big.Int) Option {
	return func(o *Orchestrator) { o.unitPrice = new(big.Int).Set(wei) }
}

// WithClaimParallelism sets concurrent claimed-checks during refresh.
func WithClaimParallelism(n int) Option {
	return func(o *Orchestrator) { o.parallelism = n }
}

// WithPreserveOnReadFailure keeps last known balances when a refresh read
// fails, instead of resetting them to zero.
func WithPreserveOnReadFailure(preserve bool) Option {
	return func(o *Orchestrator) { o.preserve = preserve }
}

// WithConfirmTimeout bounds the confirmation wait. Zero waits forever.
func WithConfirmTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.confirmTimeout = d }
}

// WithPollInterval sets how often receipts are polled.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.poll = d }
}

// WithMetrics records action outcomes.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New creates an orchestrator.
func New(p Acquirer, book contract.Book, store *state.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:  p,
		book:      book,
		store:     store,
		log:       log.Root(),
		unitPrice: new(big.Int).Set(DefaultUnitPrice),
		poll:      2 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With("component", "orchestrator")
	return o
}

// Store returns the view state the orchestrator writes.
func (o *Orchestrator) Store() *state.Store {
	return o.store
}

// Payment returns the wei due for qty whole tokens.
func (o *Orchestrator) Payment(qty uint64) *big.Int {
	return new(big.Int).Mul(o.unitPrice, new(big.Int).SetUint64(qty))
}

// SetMintAmount records the quantity the user typed.
func (o *Orchestrator) SetMintAmount(qty uint64) {
	o.store.Update(func(v *state.ViewState) { v.RequestedMintAmount = qty })
}

// Connect acquires a read-only connection and loads the view state.
func (o *Orchestrator) Connect(ctx context.Context) error {
	return o.read(ctx, ActionConnect)
}

// Refresh reloads the view state from the chain.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	return o.read(ctx, ActionRefresh)
}

// Mint buys qty whole tokens at the unit price.
func (o *Orchestrator) Mint(ctx context.Context, qty uint64) (*types.Receipt, error) {
	if qty == 0 {
		return nil, ErrInvalidAmount
	}
	payment := o.Payment(qty)
	return o.run(ctx, ActionMint, func(ctx context.Context, t *contract.TokenGateway) (*types.Transaction, error) {
		return t.Mint(ctx, new(big.Int).SetUint64(qty), payment)
	})
}

// Claim redeems the bonus for every unclaimed NFT held by the signer.
func (o *Orchestrator) Claim(ctx context.Context) (*types.Receipt, error) {
	return o.run(ctx, ActionClaim, func(ctx context.Context, t *contract.TokenGateway) (*types.Transaction, error) {
		return t.Claim(ctx)
	})
}

// Withdraw sends the sale proceeds to the owner.
func (o *Orchestrator) Withdraw(ctx context.Context) (*types.Receipt, error) {
	return o.run(ctx, ActionWithdraw, func(ctx context.Context, t *contract.TokenGateway) (*types.Transaction, error) {
		return t.Withdraw(ctx)
	})
}

type submitFunc func(ctx context.Context, t *contract.TokenGateway) (*types.Transaction, error)

// run takes the busy flag and carries one write through to refreshed state.
func (o *Orchestrator) run(ctx context.Context, action string, submit submitFunc) (*types.Receipt, error) {
	if !o.store.TryBegin(action) {
		o.metrics.incAction(action, "busy")
		return nil, ErrBusy
	}

	receipt, err := o.write(ctx, action, submit)
	if err != nil {
		o.log.Error("Action failed", "action", action, "err", err)
		o.metrics.incAction(action, "error")
		o.store.End(state.PhaseErrored, state.Notice{
			Kind: state.NoticeError,
			Text: fmt.Sprintf("%s failed: %v", action, err),
		})
		return receipt, err
	}

	o.metrics.incAction(action, "success")
	o.store.End(state.PhaseIdle, state.Notice{Kind: state.NoticeSuccess, Text: successText[action]})
	return receipt, nil
}

func (o *Orchestrator) write(ctx context.Context, action string, submit submitFunc) (*types.Receipt, error) {
	conn, err := o.provider.Acquire(ctx, true)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	token, err := o.book.Token(conn)
	if err != nil {
		return nil, err
	}
	tx, err := submit(ctx, token)
	if err != nil {
		return nil, err
	}
	o.log.Info("Transaction submitted", "action", action, "tx", tx.Hash())
	o.setPhase(state.PhaseSubmitted, tx.Hash())
	o.setPhase(state.PhaseConfirming, tx.Hash())

	wctx := ctx
	if o.confirmTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, o.confirmTimeout)
		defer cancel()
	}
	start := time.Now()
	receipt, err := contract.WaitMined(wctx, conn.Backend, tx, o.poll)
	if err != nil {
		return receipt, err
	}
	o.metrics.observeConfirm(action, time.Since(start))
	o.log.Info("Transaction confirmed", "action", action, "tx", tx.Hash(), "block", receipt.BlockNumber)

	o.setPhase(state.PhaseRefreshing, tx.Hash())
	if err := o.refresh(ctx, conn); err != nil {
		o.log.Warn("Refresh after action incomplete", "action", action, "err", err)
	}
	return receipt, nil
}

// read takes the busy flag and reloads state over a read-only connection.
func (o *Orchestrator) read(ctx context.Context, action string) error {
	if !o.store.TryBegin(action) {
		o.metrics.incAction(action, "busy")
		return ErrBusy
	}

	conn, err := o.provider.Acquire(ctx, false)
	if err != nil {
		o.log.Error("Connection failed", "action", action, "err", err)
		o.metrics.incAction(action, "error")
		o.store.Update(func(v *state.ViewState) { v.WalletConnected = false })
		o.store.End(state.PhaseErrored, state.Notice{
			Kind: state.NoticeError,
			Text: fmt.Sprintf("%s failed: %v", action, err),
		})
		return err
	}
	defer conn.Close()

	o.store.Update(func(v *state.ViewState) {
		v.WalletConnected = true
		v.Account = conn.Account
		v.Phase = state.PhaseRefreshing
	})

	if err := o.refresh(ctx, conn); err != nil {
		o.log.Warn("Refresh incomplete", "action", action, "err", err)
		o.metrics.incAction(action, "partial")
		o.store.End(state.PhaseIdle, state.Notice{Kind: state.NoticeError, Text: "Some values could not be read"})
		return err
	}
	o.metrics.incAction(action, "success")
	o.store.End(state.PhaseIdle, state.Notice{})
	return nil
}

func (o *Orchestrator) setPhase(p state.Phase, tx common.Hash) {
	o.store.Update(func(v *state.ViewState) {
		v.Phase = p
		v.LastTx = tx
	})
}
