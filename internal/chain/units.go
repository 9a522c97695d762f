package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatUnits renders an integer amount in the smallest unit as a decimal
// string with the given number of decimals, trimming trailing zeros.
// The conversion is exact; it is meant for display only.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	if decimals <= 0 {
		return amount.String()
	}

	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)
	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, base, new(big.Int))

	s := whole.String()
	if frac.Sign() != 0 {
		fs := frac.String()
		fs = strings.Repeat("0", decimals-len(fs)) + fs
		s += "." + strings.TrimRight(fs, "0")
	}
	if neg {
		s = "-" + s
	}
	return s
}

// ParseUnits converts a decimal string such as "0.001" into an integer amount
// of the smallest unit. More fractional digits than decimals is an error
// rather than a silent truncation.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative amount: %s", s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("amount %s has more than %d decimals", s, decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}
	return n, nil
}

// FormatEther renders wei as ether.
func FormatEther(wei *big.Int) string { return FormatUnits(wei, 18) }

// ParseEther converts an ether amount to wei.
func ParseEther(s string) (*big.Int, error) { return ParseUnits(s, 18) }
