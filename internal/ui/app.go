package ui

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/rui-yang/ICO/internal/chain"
	"github.com/rui-yang/ICO/internal/state"
)

// Actions is what the app drives. *orchestrator.Orchestrator satisfies it.
type Actions interface {
	Connect(ctx context.Context) error
	Refresh(ctx context.Context) error
	Mint(ctx context.Context, qty uint64) (*types.Receipt, error)
	Claim(ctx context.Context) (*types.Receipt, error)
	Withdraw(ctx context.Context) (*types.Receipt, error)
	SetMintAmount(qty uint64)
	Payment(qty uint64) *big.Int
}

// StateMsg carries a new ViewState into the model.
type StateMsg struct{ View state.ViewState }

// doneMsg reports the end of an action. The outcome itself arrives through
// the store; err is kept for tests and logging.
type doneMsg struct {
	action string
	err    error
}

// AppModel is the interactive sale screen.
type AppModel struct {
	ctx     context.Context
	actions Actions
	network string

	view    state.ViewState
	amount  string
	confirm string // question awaiting y/n
	pending tea.Cmd
	lastErr error
}

// NewApp builds the model from an initial snapshot.
func NewApp(ctx context.Context, actions Actions, network string, initial state.ViewState) AppModel {
	m := AppModel{ctx: ctx, actions: actions, network: network, view: initial}
	if initial.RequestedMintAmount > 0 {
		m.amount = strconv.FormatUint(initial.RequestedMintAmount, 10)
	}
	return m
}

// Init connects on start.
func (m AppModel) Init() tea.Cmd {
	return m.do("connect", func(ctx context.Context) error { return m.actions.Connect(ctx) })
}

func (m AppModel) do(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{action: action, err: fn(ctx)}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.view = msg.View
		return m, nil
	case doneMsg:
		m.lastErr = msg.err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m AppModel) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}

	if m.confirm != "" {
		cmd := m.pending
		m.confirm, m.pending = "", nil
		if key == "y" || key == "Y" {
			return m, cmd
		}
		return m, nil
	}

	if m.view.Busy {
		return m, nil
	}

	aff := state.Select(m.view)
	switch key {
	case "c":
		return m, m.do("connect", m.actions.Connect)
	case "r":
		if !m.view.WalletConnected {
			return m, nil
		}
		return m, m.do("refresh", m.actions.Refresh)
	case "enter":
		return m.trigger(aff)
	case "m":
		if aff == state.AffordanceMint {
			return m.trigger(aff)
		}
	case "l":
		if aff == state.AffordanceClaim {
			return m.trigger(aff)
		}
	case "w":
		if aff == state.AffordanceWithdraw {
			return m.trigger(aff)
		}
	case "backspace":
		if aff == state.AffordanceMint && m.amount != "" {
			m.amount = m.amount[:len(m.amount)-1]
			m.actions.SetMintAmount(m.qty())
		}
	default:
		if aff == state.AffordanceMint && len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			next := m.amount + key
			if _, err := strconv.ParseUint(next, 10, 64); err == nil {
				m.amount = next
				m.actions.SetMintAmount(m.qty())
			}
		}
	}
	return m, nil
}

func (m AppModel) qty() uint64 {
	n, _ := strconv.ParseUint(m.amount, 10, 64)
	return n
}

// trigger asks for confirmation before any write.
func (m AppModel) trigger(aff state.Affordance) (tea.Model, tea.Cmd) {
	switch aff {
	case state.AffordanceConnect:
		return m, m.do("connect", m.actions.Connect)
	case state.AffordanceMint:
		qty := m.qty()
		if qty == 0 {
			return m, nil
		}
		m.confirm = fmt.Sprintf("Mint %d tokens for %s ETH?", qty, chain.FormatEther(m.actions.Payment(qty)))
		m.pending = m.do("mint", func(ctx context.Context) error {
			_, err := m.actions.Mint(ctx, qty)
			return err
		})
	case state.AffordanceClaim:
		m.confirm = "Claim " + ClaimText(m.view.TokensToBeClaimed)
		m.pending = m.do("claim", func(ctx context.Context) error {
			_, err := m.actions.Claim(ctx)
			return err
		})
	case state.AffordanceWithdraw:
		m.confirm = "Withdraw the sale proceeds to the owner?"
		m.pending = m.do("withdraw", func(ctx context.Context) error {
			_, err := m.actions.Withdraw(ctx)
			return err
		})
	}
	return m, nil
}

func (m AppModel) View() string {
	var payment *big.Int
	if q := m.qty(); q > 0 {
		payment = m.actions.Payment(q)
	}
	return RenderView(m.view, Screen{
		Network: m.network,
		Amount:  m.amount,
		Payment: payment,
		Confirm: m.confirm,
	})
}

// RunApp runs the screen until the user quits. Store changes are pushed
// into the program as they happen.
func RunApp(ctx context.Context, actions Actions, store *state.Store, network string, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(NewApp(ctx, actions, network, store.Snapshot()), opts...)
	unsubscribe := store.Subscribe(func(v state.ViewState) { p.Send(StateMsg{View: v}) })
	defer unsubscribe()
	_, err := p.Run()
	return err
}
