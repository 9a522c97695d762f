package cmd

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rui-yang/ICO/internal/chain"
	"github.com/rui-yang/ICO/internal/state"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchProgressStopsListening(t *testing.T) {
	store := state.NewStore()
	var out lockedBuffer
	stop := watchProgress(store, &out)

	require.True(t, store.TryBegin("mint"))
	assert.Empty(t, out.String())

	store.Update(func(v *state.ViewState) { v.Phase = state.PhaseSubmitted })
	assert.Eventually(t, func() bool { return out.String() != "" }, time.Second, 5*time.Millisecond)
	stop()

	before := out.String()
	store.Update(func(v *state.ViewState) { v.Phase = state.PhaseConfirming })
	assert.Never(t, func() bool { return out.String() != before }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestStatusBlockExplorerLink(t *testing.T) {
	reg := chain.NewRegistry()
	sepolia, err := reg.GetByName("sepolia")
	require.NoError(t, err)
	local, err := reg.GetByName("localhost")
	require.NoError(t, err)

	v := state.NewStore().Snapshot()
	v.WalletConnected = true
	v.Account = holder.Address

	out := statusBlock(&sale{network: sepolia}, v)
	assert.Contains(t, out, sepolia.AddressURL(holder.Address.Hex()))

	assert.NotContains(t, statusBlock(&sale{network: local}, v), "Explorer")

	v.WalletConnected = false
	assert.NotContains(t, statusBlock(&sale{network: sepolia}, v), "Explorer")
}
