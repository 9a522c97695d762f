package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rui-yang/ICO/internal/config"
)

const manifest = `network: localhost
chain_id: 31337
unit_price: "0.002"
rpcs:
  - http://10.0.0.5:8545
contracts:
  token: 0x5FbDB2315678afecb367f032d93F642f64180aa3
  nft: 0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512
`

func TestConfigImportAndShow(t *testing.T) {
	e := &env{dir: t.TempDir()}
	path := filepath.Join(t.TempDir(), "deployment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	out := e.run(t, "config", "import", path)
	assert.Contains(t, out, "Deployment imported")

	out = e.run(t, "config", "show")
	assert.Contains(t, out, "0x5FbDB2315678afecb367f032d93F642f64180aa3")
	assert.Contains(t, out, "0.002 ether")
	assert.Contains(t, out, "rpcs.localhost")

	loaded, err := config.Load(e.dir)
	require.NoError(t, err)
	assert.Equal(t, "localhost", loaded.Network)
	assert.Equal(t, []string{"http://10.0.0.5:8545"}, loaded.GetRPCs("localhost"))
}

func TestConfigSetRejectsUnknownNetwork(t *testing.T) {
	e := &env{dir: t.TempDir()}
	_, err := e.exec(t, "", "config", "set", "network", "atlantis")
	assert.ErrorContains(t, err, "unknown network")
}

func TestConfigSetAndRemoveRPC(t *testing.T) {
	e := &env{dir: t.TempDir()}
	e.run(t, "config", "set-rpc", "sepolia", "https://rpc.example")
	_, err := e.exec(t, "", "config", "set-rpc", "sepolia", "https://rpc.example")
	assert.Error(t, err)
	e.run(t, "config", "remove-rpc", "sepolia", "https://rpc.example")

	loaded, err := config.Load(e.dir)
	require.NoError(t, err)
	assert.Empty(t, loaded.GetRPCs("sepolia"))
}

func TestCheckDeploymentNetwork(t *testing.T) {
	cases := []struct {
		name    string
		d       config.Deployment
		wantNet string
		wantErr bool
	}{
		{name: "empty", d: config.Deployment{}},
		{name: "chain id only", d: config.Deployment{ChainID: 11155111}, wantNet: "sepolia"},
		{name: "matching", d: config.Deployment{Network: "localhost", ChainID: 31337}, wantNet: "localhost"},
		{name: "mismatch", d: config.Deployment{Network: "sepolia", ChainID: 1}, wantErr: true},
		{name: "unknown chain id", d: config.Deployment{ChainID: 424242}, wantErr: true},
		{name: "unknown network", d: config.Deployment{Network: "atlantis"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.d
			err := checkDeploymentNetwork(&d)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantNet, d.Network)
		})
	}
}
