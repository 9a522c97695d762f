package wallet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWithKeyDerivesAddress(t *testing.T) {
	m := NewManager()
	w, err := m.AddWithKey("dev", "0x"+testKey)
	require.NoError(t, err)

	assert.Equal(t, testAddress, w.Address)
	assert.Equal(t, TypeSigning, w.Type)
	assert.Equal(t, "ico.dev", w.KeyRef)
	assert.True(t, w.CanSign())

	stored, err := m.Keystore().Retrieve(w.KeyRef)
	require.NoError(t, err)
	assert.Equal(t, testKey, stored)
}

func TestAddWithKeyInvalid(t *testing.T) {
	m := NewManager()
	_, err := m.AddWithKey("bad", "nothex")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAddDuplicate(t *testing.T) {
	m := NewManager()
	_, err := m.AddWithKey("dev", testKey)
	require.NoError(t, err)
	_, err = m.AddWithKey("dev", testKey)
	assert.ErrorIs(t, err, ErrWalletExists)
	assert.ErrorIs(t, m.AddWatchOnly("dev", testAddress), ErrWalletExists)
}

func TestAddWatchOnly(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddWatchOnly("watch", "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"))

	w, err := m.Get("watch")
	require.NoError(t, err)
	assert.Equal(t, testAddress, w.Address)
	assert.False(t, w.CanSign())

	_, err = m.Signer(w)
	assert.ErrorIs(t, err, ErrWatchOnly)

	assert.ErrorIs(t, m.AddWatchOnly("bad", "0x1234"), ErrInvalidAddress)
}

func TestGenerate(t *testing.T) {
	m := NewManager()
	w, err := m.Generate("fresh")
	require.NoError(t, err)
	assert.True(t, w.CanSign())
	assert.Len(t, w.Address, 42)
}

func TestRemoveDeletesKey(t *testing.T) {
	m := NewManager()
	w, err := m.AddWithKey("dev", testKey)
	require.NoError(t, err)

	require.NoError(t, m.Remove("dev"))
	_, err = m.Get("dev")
	assert.ErrorIs(t, err, ErrWalletNotFound)
	_, err = m.Keystore().Retrieve(w.KeyRef)
	assert.Error(t, err)

	assert.ErrorIs(t, m.Remove("dev"), ErrWalletNotFound)
}

func TestDefaultAndResolve(t *testing.T) {
	m := NewManager()
	assert.Nil(t, m.Default())
	_, err := m.Resolve("")
	assert.ErrorIs(t, err, ErrWalletNotFound)

	require.NoError(t, m.AddWatchOnly("a", testAddress))
	assert.Equal(t, "a", m.Default().Name, "single wallet is the implicit default")

	require.NoError(t, m.AddWatchOnly("b", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"))
	assert.Nil(t, m.Default())

	require.NoError(t, m.SetDefault("b"))
	w, err := m.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "b", w.Name)

	w, err = m.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "a", w.Name)

	assert.ErrorIs(t, m.SetDefault("zzz"), ErrWalletNotFound)
}

func TestListSorted(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddWatchOnly("zed", testAddress))
	require.NoError(t, m.AddWatchOnly("amy", testAddress))

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "amy", list[0].Name)
	assert.Equal(t, "zed", list[1].Name)
}

func TestJSONStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallets.json")
	ks := NewInMemoryKeystore()

	m := NewManager(WithStore(NewJSONStore(path)), WithKeystore(ks))
	_, err := m.AddWithKey("dev", testKey)
	require.NoError(t, err)
	require.NoError(t, m.SetDefault("dev"))

	reloaded := NewManager(WithStore(NewJSONStore(path)), WithKeystore(ks))
	w, err := reloaded.Get("dev")
	require.NoError(t, err)
	assert.Equal(t, testAddress, w.Address)
	assert.True(t, w.IsDefault)
}

func TestJSONStoreMissingFile(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "none.json"))
	wallets, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, wallets)
}
