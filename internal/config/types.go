package config

// Config holds all ico configuration.
type Config struct {
	Network               string              `json:"network"`
	DefaultWallet         string              `json:"default_wallet"`
	RPCAlgorithm          string              `json:"rpc_algorithm"` // "fastest" | "failover"
	CustomRPCs            map[string][]string `json:"custom_rpcs"`
	TokenAddress          string              `json:"token_address"`
	NFTAddress            string              `json:"nft_address"`
	UnitPrice             string              `json:"unit_price"`      // ether per whole token, decimal
	ConfirmTimeout        int                 `json:"confirm_timeout"` // seconds, 0 = wait indefinitely
	ClaimParallelism      int                 `json:"claim_parallelism"`
	PreserveOnReadFailure bool                `json:"preserve_on_read_failure"`
	LogLevel              string              `json:"log_level"` // "debug" | "info" | "warn" | "error"

	// internal: config dir path used for Save()
	configDir string
}

// Deployment is a contract deployment manifest, usually produced by the
// contracts repo after `hardhat deploy`.
type Deployment struct {
	Network   string   `yaml:"network"`
	ChainID   int64    `yaml:"chain_id"`
	UnitPrice string   `yaml:"unit_price"`
	RPCs      []string `yaml:"rpcs"`
	Contracts struct {
		Token string `yaml:"token"`
		NFT   string `yaml:"nft"`
	} `yaml:"contracts"`
}
