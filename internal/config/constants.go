package config

import "time"

// Token sale parameters. These mirror the deployed CryptoDevToken contract;
// a mismatched unit price makes mint revert.
const (
	DefaultUnitPrice = "0.001" // ether per whole token
	MaxTotalSupply   = 10_000  // whole tokens
	TokensPerNFT     = 10      // whole tokens per unclaimed NFT
	TokenDecimals    = 18
)

// Timeout and polling constants used across cmd and orchestrator.
const (
	RPCSelectTimeout    = 10 * time.Second // endpoint benchmark before dialing
	ReceiptPollInterval = 2 * time.Second  // TransactionReceipt polling while confirming
)
