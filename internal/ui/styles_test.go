package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageHelpersKeepPrefixAndText(t *testing.T) {
	cases := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"success", Success, "✓"},
		{"warn", Warn, "⚠"},
		{"err", Err, "✗"},
		{"info", Info, "ℹ"},
		{"hint", Hint, "→"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.fn("tokens minted")
			assert.Contains(t, out, tc.prefix)
			assert.Contains(t, out, "tokens minted")
		})
	}
}

func TestBannerNamesTheSale(t *testing.T) {
	assert.Contains(t, Banner(), "Crypto Devs ICO")
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))
	assert.Equal(t, "0xf39F…2266", TruncateAddr("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"))
	assert.Equal(t, "", TruncateAddr(""))
}

func TestShortErr(t *testing.T) {
	cases := []struct{ in, want string }{
		{"dial tcp 127.0.0.1:8545: connect: connection refused", "unreachable"},
		{"Post \"http://x\": context deadline exceeded", "timed out"},
		{"insufficient funds for gas * price + value", "insufficient funds for gas"},
		{"mint failed: execution reverted: Ether sent is incorrect", "reverted: Ether sent is incorrect"},
		{"short", "short"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ShortErr(tc.in), tc.in)
	}
}

func TestShortErrCapsLength(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	out := ShortErr(string(long))
	assert.Equal(t, 120, len([]rune(out)))
	assert.Equal(t, '…', []rune(out)[119])
}
