// Package state holds the client's view state and derives which control to
// present from it.
package state

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Phase is the step an action is in.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseAcquiring  Phase = "acquiring"
	PhaseSubmitted  Phase = "submitted"
	PhaseConfirming Phase = "confirming"
	PhaseRefreshing Phase = "refreshing"
	PhaseErrored    Phase = "errored"
)

// NoticeKind classifies a user-visible message.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a message to show the user after an action.
type Notice struct {
	Kind NoticeKind
	Text string
}

// ViewState is everything the screen shows. Balances are in the token's
// smallest unit.
type ViewState struct {
	WalletConnected     bool
	IsOwner             bool
	BalanceOfTokens     *big.Int
	TotalMinted         *big.Int
	TokensToBeClaimed   uint64
	Busy                bool
	RequestedMintAmount uint64

	Account common.Address
	Action  string
	Phase   Phase
	Notice  Notice
	LastTx  common.Hash
}

// Clone returns a deep copy.
func (v ViewState) Clone() ViewState {
	v.BalanceOfTokens = cloneBig(v.BalanceOfTokens)
	v.TotalMinted = cloneBig(v.TotalMinted)
	return v
}

func cloneBig(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}

// Store owns the ViewState. Writers go through Update; readers take
// snapshots or subscribe.
type Store struct {
	mu     sync.Mutex
	view   ViewState
	subs   []subscriber
	nextID uint64
}

type subscriber struct {
	id uint64
	fn func(ViewState)
}

// NewStore creates a store in the disconnected idle state.
func NewStore() *Store {
	return &Store{view: ViewState{
		BalanceOfTokens: new(big.Int),
		TotalMinted:     new(big.Int),
		Phase:           PhaseIdle,
	}}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Clone()
}

// Subscribe registers fn to receive every state change until the returned
// func is called. fn runs on the mutating goroutine and must not call back
// into the store except to unsubscribe.
func (s *Store) Subscribe(fn func(ViewState)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() { s.unsubscribe(id) }
}

// unsubscribe replaces the slice rather than editing it, so a notify loop
// holding the old slice is unaffected.
func (s *Store) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.id != id {
			kept = append(kept, sub)
		}
	}
	s.subs = kept
}

func notify(subs []subscriber, snap ViewState) {
	for _, sub := range subs {
		sub.fn(snap)
	}
}

// Update applies fn to the state and notifies subscribers.
func (s *Store) Update(fn func(*ViewState)) {
	s.mu.Lock()
	fn(&s.view)
	snap, subs := s.view.Clone(), s.subs
	s.mu.Unlock()

	notify(subs, snap)
}

// TryBegin marks the store busy for action. It returns false, changing
// nothing, if another action holds the busy flag.
func (s *Store) TryBegin(action string) bool {
	s.mu.Lock()
	if s.view.Busy {
		s.mu.Unlock()
		return false
	}
	s.view.Busy = true
	s.view.Action = action
	s.view.Phase = PhaseAcquiring
	s.view.Notice = Notice{}
	snap, subs := s.view.Clone(), s.subs
	s.mu.Unlock()

	notify(subs, snap)
	return true
}

// End clears the busy flag and settles in phase with notice.
func (s *Store) End(phase Phase, notice Notice) {
	s.Update(func(v *ViewState) {
		v.Busy = false
		v.Phase = phase
		v.Notice = notice
	})
}
