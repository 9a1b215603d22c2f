package dapp_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/journal/internal/contract"
	"github.com/Mohsinsiddi/journal/internal/contract/contracttest"
	"github.com/Mohsinsiddi/journal/internal/dapp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewTokenReads(t *testing.T) {
	node := contracttest.NewNode("2")
	c := newClass(t, node, "ReviewToken")
	inst, err := c.Connect(context.Background())
	require.NoError(t, err)
	tok := dapp.BindReviewToken(inst)

	holder := common.HexToAddress(account)
	serve(node, c.Config().Methods(), map[string][]any{
		"name":          {"Review Token"},
		"symbol":        {"RVW"},
		"decimals":      {uint8(2)},
		"totalsupply":   {big.NewInt(1_000_000)},
		"balanceof":     {big.NewInt(250)},
		"allowance":     {big.NewInt(5)},
		"frozenaccount": {true},
		"buyprice":      {big.NewInt(100)},
		"sellprice":     {big.NewInt(90)},
		"owner":         {holder},
	})
	ctx := context.Background()

	name, err := tok.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Review Token", name)

	sym, err := tok.Symbol(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RVW", sym)

	dec, err := tok.Decimals(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), dec)

	supply, err := tok.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000), supply)

	bal, err := tok.BalanceOf(ctx, holder)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(250), bal)

	allowance, err := tok.Allowance(ctx, holder, common.HexToAddress(mordenJournal))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), allowance)

	frozen, err := tok.Frozen(ctx, holder)
	require.NoError(t, err)
	assert.True(t, frozen)

	buy, sell, err := tok.Prices(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), buy)
	assert.Equal(t, big.NewInt(90), sell)

	owner, err := tok.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, holder, owner)
}

func TestReviewTokenTransferDecodesIndexedArgs(t *testing.T) {
	node := contracttest.NewNode("2")
	c := newClass(t, node, "reviewtoken", contract.WithLogDecoding(true))
	inst, err := c.Connect(context.Background())
	require.NoError(t, err)
	tok := dapp.BindReviewToken(inst)

	from := common.HexToAddress(account)
	to := common.HexToAddress(mordenJournal)
	ev := c.Config().ABI().Events[dapp.EventTransfer]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(12))
	require.NoError(t, err)
	node.SetLogs(contracttest.Log{
		Address: common.HexToAddress(mordenToken),
		Topics:  []common.Hash{ev.ID, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())},
		Data:    data,
	})

	res, err := tok.Transfer(context.Background(), to, big.NewInt(12), contract.TxOpts{From: account})
	require.NoError(t, err)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, dapp.EventTransfer, res.Logs[0].Event)
	assert.Equal(t, from, res.Logs[0].Args["from"])
	assert.Equal(t, to, res.Logs[0].Args["to"])
	assert.Equal(t, big.NewInt(12), res.Logs[0].Args["value"])
}

func TestReviewTokenBuySendsValue(t *testing.T) {
	node := contracttest.NewNode("2")
	c := newClass(t, node, "reviewtoken")
	inst, err := c.Connect(context.Background())
	require.NoError(t, err)
	tok := dapp.BindReviewToken(inst)

	_, err = tok.Buy(context.Background(), contract.TxOpts{From: account, Value: big.NewInt(1_000)})
	require.NoError(t, err)
	sent := node.Sent()
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Value)
	assert.Equal(t, big.NewInt(1_000), sent[0].Value.ToInt())
	assert.Equal(t, c.Config().Methods()["buy"].Selector(), []byte(sent[0].Data))

	for name, run := range map[string]func() error{
		"sell": func() error { _, err := tok.Sell(context.Background(), big.NewInt(1)); return err },
		"minttoken": func() error {
			_, err := tok.MintToken(context.Background(), common.HexToAddress(account), big.NewInt(1))
			return err
		},
		"freezeaccount": func() error {
			_, err := tok.FreezeAccount(context.Background(), common.HexToAddress(account), true)
			return err
		},
	} {
		require.NoError(t, run(), name)
	}
	assert.Len(t, node.Sent(), 4)
}
