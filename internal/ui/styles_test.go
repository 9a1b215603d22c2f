package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPrefixes(t *testing.T) {
	tests := []struct {
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
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.fn("article submitted")
			assert.Contains(t, result, tt.prefix)
			assert.Contains(t, result, "article submitted")
		})
	}
}

func TestInfoDifferentFromHint(t *testing.T) {
	assert.NotEqual(t, Info("message"), Hint("message"))
}

func TestAllFormattersKeepInput(t *testing.T) {
	formatters := map[string]func(string) string{
		"Addr":        Addr,
		"Val":         Val,
		"Meta":        Meta,
		"NetworkName": NetworkName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("morden"), "morden")
		})
	}
}

func TestTruncateAddr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"0x1234", "0x1234"},
		{"0x12345678", "0x12345678"},
		{"0x4183c2d1d5b7ee0e5e9a7b2b8f2c2c6b3b8f9d0a", "0x4183…9d0a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateAddr(tt.in))
	}
}

func TestBanner(t *testing.T) {
	assert.Contains(t, Banner(), "journal")
}

func TestReceiptStatus(t *testing.T) {
	assert.Contains(t, ReceiptStatus(1), "success")
	assert.Contains(t, ReceiptStatus(0), "reverted")
}

func TestTxState(t *testing.T) {
	for _, state := range []string{"submitting", "pending", "confirmed", "timed out", "failed"} {
		assert.Contains(t, TxState(state), state)
	}
	assert.NotEqual(t, TxState("confirmed"), TxState("failed"))
}
