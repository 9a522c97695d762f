package ens

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeENS answers registry and resolver calls from maps keyed by node.
type fakeENS struct {
	resolvers map[common.Hash]common.Address
	addrs     map[common.Hash]common.Address
	names     map[common.Hash]string
	err       error
}

func (f *fakeENS) CallContract(ctx context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	method, err := parsedABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	node := common.Hash(args[0].([32]byte))

	switch method.Name {
	case "resolver":
		return method.Outputs.Pack(f.resolvers[node])
	case "addr":
		return method.Outputs.Pack(f.addrs[node])
	default:
		return method.Outputs.Pack(f.names[node])
	}
}

var (
	publicResolver = common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")
	alice          = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func newFake() *fakeENS {
	return &fakeENS{
		resolvers: map[common.Hash]common.Address{},
		addrs:     map[common.Hash]common.Address{},
		names:     map[common.Hash]string{},
	}
}

func TestNamehashVectors(t *testing.T) {
	assert.Equal(t, common.Hash{}, Namehash(""))
	assert.Equal(t, "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae", Namehash("eth").Hex())
	assert.Equal(t, "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f", Namehash("foo.eth").Hex())
	assert.Equal(t, Namehash("foo.eth"), Namehash("FOO.eth"), "names are lowercased")
	assert.NotEqual(t, Namehash("alice.eth"), Namehash("bob.eth"))
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("alice.eth"))
	assert.True(t, IsName("sub.alice.eth"))
	assert.False(t, IsName("alice"))
	assert.False(t, IsName(".eth"))
	assert.False(t, IsName("alice."))
	assert.False(t, IsName("http://x.eth"))
}

func TestResolve(t *testing.T) {
	f := newFake()
	node := Namehash("alice.eth")
	f.resolvers[node] = publicResolver
	f.addrs[node] = alice

	got, err := NewResolver(f).Resolve(context.Background(), "alice.eth")
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestResolveNoResolver(t *testing.T) {
	_, err := NewResolver(newFake()).Resolve(context.Background(), "nobody.eth")
	assert.ErrorIs(t, err, ErrNoResolver)
}

func TestResolveNoRecord(t *testing.T) {
	f := newFake()
	f.resolvers[Namehash("empty.eth")] = publicResolver

	_, err := NewResolver(f).Resolve(context.Background(), "empty.eth")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestResolveCallError(t *testing.T) {
	f := newFake()
	boom := errors.New("rpc down")
	f.err = boom

	_, err := NewResolver(f).Resolve(context.Background(), "alice.eth")
	assert.ErrorIs(t, err, boom)
}

func TestResolveAccount(t *testing.T) {
	f := newFake()
	node := Namehash("alice.eth")
	f.resolvers[node] = publicResolver
	f.addrs[node] = alice
	r := NewResolver(f)
	ctx := context.Background()

	got, err := r.ResolveAccount(ctx, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	got, err = r.ResolveAccount(ctx, " alice.eth ")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = r.ResolveAccount(ctx, "0x1234")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestReverseLookup(t *testing.T) {
	f := newFake()
	node := Namehash("70997970c51812dc3a010c7d01b50e0d17dc79c8.addr.reverse")
	f.resolvers[node] = publicResolver
	f.names[node] = "alice.eth"
	r := NewResolver(f)

	name, err := r.ReverseLookup(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "alice.eth", name)

	f.names[node] = ""
	_, err = r.ReverseLookup(context.Background(), alice)
	assert.ErrorIs(t, err, ErrNoRecord)
}
