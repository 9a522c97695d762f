package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const (
	defaultNetwork   = "sepolia"
	defaultAlgorithm = "fastest"
	defaultLogLevel  = "warn"

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// ErrUnknownKey is returned by Set for keys that are not settable.
var ErrUnknownKey = errors.New("unknown config key")

// Load reads config from dir (or creates defaults). dir defaults to ~/.ico.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".ico")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.UnitPrice == "" {
		cfg.UnitPrice = DefaultUnitPrice
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of the wallet store.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// ConfirmTimeoutDuration converts ConfirmTimeout to a Duration. Zero means
// the confirmation wait is unbounded.
func (c *Config) ConfirmTimeoutDuration() time.Duration {
	if c.ConfirmTimeout <= 0 {
		return 0
	}
	return time.Duration(c.ConfirmTimeout) * time.Second
}

// Set updates a single key from its textual form.
func (c *Config) Set(key, value string) error {
	switch key {
	case "network":
		c.Network = strings.ToLower(value)
	case "default_wallet":
		c.DefaultWallet = value
	case "rpc_algorithm":
		switch value {
		case "fastest", "failover":
		default:
			return fmt.Errorf("invalid rpc_algorithm %q — choose: fastest, failover", value)
		}
		c.RPCAlgorithm = value
	case "token_address", "nft_address":
		if !common.IsHexAddress(value) {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		if key == "token_address" {
			c.TokenAddress = value
		} else {
			c.NFTAddress = value
		}
	case "unit_price":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("invalid unit_price %q", value)
		}
		c.UnitPrice = value
	case "confirm_timeout", "claim_parallelism":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q — expected a non-negative integer", key, value)
		}
		if key == "confirm_timeout" {
			c.ConfirmTimeout = n
		} else {
			c.ClaimParallelism = n
		}
	case "preserve_on_read_failure":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid preserve_on_read_failure %q", value)
		}
		c.PreserveOnReadFailure = b
	case "log_level":
		switch value {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("invalid log_level %q", value)
		}
		c.LogLevel = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Validate reports whether the contract addresses needed for any chain
// interaction are configured.
func (c *Config) Validate() error {
	if c.TokenAddress == "" {
		return fmt.Errorf("token_address not set — run `ico config set token_address 0x…` or `ico config import <deployment.yaml>`")
	}
	if c.NFTAddress == "" {
		return fmt.Errorf("nft_address not set — run `ico config set nft_address 0x…` or `ico config import <deployment.yaml>`")
	}
	if !common.IsHexAddress(c.TokenAddress) {
		return fmt.Errorf("invalid token_address %q", c.TokenAddress)
	}
	if !common.IsHexAddress(c.NFTAddress) {
		return fmt.Errorf("invalid nft_address %q", c.NFTAddress)
	}
	return nil
}

// LoadDeployment parses a YAML deployment manifest.
func LoadDeployment(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deployment: %w", err)
	}
	var d Deployment
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing deployment: %w", err)
	}
	return &d, nil
}

// ApplyDeployment copies the manifest's network, contracts, price and RPCs
// into c. Empty manifest fields leave the current value untouched.
func (c *Config) ApplyDeployment(d *Deployment) error {
	if d.Contracts.Token != "" {
		if err := c.Set("token_address", d.Contracts.Token); err != nil {
			return err
		}
	}
	if d.Contracts.NFT != "" {
		if err := c.Set("nft_address", d.Contracts.NFT); err != nil {
			return err
		}
	}
	if d.UnitPrice != "" {
		if err := c.Set("unit_price", d.UnitPrice); err != nil {
			return err
		}
	}
	if d.Network != "" {
		c.Network = strings.ToLower(d.Network)
	}
	for _, url := range d.RPCs {
		if !slices.Contains(c.CustomRPCs[c.Network], url) {
			c.AddRPC(c.Network, url) //nolint:errcheck
		}
	}
	return nil
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Network:      defaultNetwork,
		RPCAlgorithm: defaultAlgorithm,
		UnitPrice:    DefaultUnitPrice,
		LogLevel:     defaultLogLevel,
		CustomRPCs:   make(map[string][]string),
		configDir:    dir,
	}
}
