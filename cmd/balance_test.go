package cmd

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func TestBalanceOfAddress(t *testing.T) {
	h := newHarness(t, "2")
	h.node.SetBalance(ether(2))

	out := h.mustRun("balance", "0x1111111111111111111111111111111111111111")
	assert.Contains(t, out, "2.000000000000000000 ETH")
	assert.Contains(t, out, "0x1111111111111111111111111111111111111111")
	assert.Zero(t, h.node.Calls("eth_accounts"))
}

func TestBalanceUsesFirstAccount(t *testing.T) {
	h := newHarness(t, "2")
	h.node.SetBalance(ether(3))

	out := h.mustRun("balance")
	assert.Contains(t, out, account)
	assert.Contains(t, out, "3.000000000000000000 ETH")
	assert.Contains(t, out, "development", "the default network is shown")
}

func TestBalanceWithoutAccounts(t *testing.T) {
	h := newHarness(t, "2")
	h.node.SetAccounts()

	_, err := h.run("balance")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "couldn't get any accounts")
}

func TestBalanceWithToken(t *testing.T) {
	h := newHarness(t, "2")
	h.serve("reviewtoken", map[string][]any{
		"balanceof": {big.NewInt(250)},
		"symbol":    {"REV"},
	})

	out := h.mustRun("balance", account, "--token")
	assert.Contains(t, out, "Review tokens")
	assert.Contains(t, out, "250 REV")
}

func TestBalanceInvalidAddress(t *testing.T) {
	h := newHarness(t, "2")
	_, err := h.run("balance", "0x1234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address")
}

func TestBalanceTransportError(t *testing.T) {
	h := newHarness(t, "2")
	boom := errors.New("connection refused")
	h.node.Fail("eth_getBalance", boom)

	_, err := h.run("balance", common.HexToAddress(account).Hex())
	assert.ErrorIs(t, err, boom)
}
