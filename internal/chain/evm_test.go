package chain

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mohsinsiddi/journal/internal/providers"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type rpcCall struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Unknown methods return an RPC error. Every request is appended
// to *seen when seen is non-nil.
func rpcMock(t *testing.T, responses map[string]interface{}, seen *[]rpcCall) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req rpcCall
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if seen != nil {
			*seen = append(*seen, req)
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if result, ok := responses[req.Method]; ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		}
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server) *EVMClient {
	t.Helper()
	p, err := providers.Dial(context.Background(), srv.URL, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return NewEVMClient(p)
}

// ---------------------------------------------------------------------------
// NetworkID / Accounts / Balance
// ---------------------------------------------------------------------------

func TestNetworkIDString(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"net_version": "1"}, nil)
	defer srv.Close()

	id, err := newTestClient(t, srv).NetworkID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", id)
}

func TestNetworkIDNumber(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"net_version": 1337}, nil)
	defer srv.Close()

	id, err := newTestClient(t, srv).NetworkID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1337", id)
}

func TestNetworkIDRPCError(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{}, nil)
	defer srv.Close()

	_, err := newTestClient(t, srv).NetworkID(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
}

func TestAccounts(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_accounts": []string{"0x1111111111111111111111111111111111111111"},
	}, nil)
	defer srv.Close()

	accs, err := newTestClient(t, srv).Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0x1111111111111111111111111111111111111111"}, accs)
}

func TestGetBalance(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getBalance": "0xde0b6b3a7640000"}, nil)
	defer srv.Close()

	bal, err := newTestClient(t, srv).GetBalance(context.Background(), "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", bal.Wei.String())
	assert.Equal(t, "1.000000000000000000", bal.ETH)
}

// ---------------------------------------------------------------------------
// Calls and transactions
// ---------------------------------------------------------------------------

func TestCallContractSendsHexArgs(t *testing.T) {
	var seen []rpcCall
	srv := rpcMock(t, map[string]interface{}{"eth_call": "0x2a"}, &seen)
	defer srv.Close()

	out, err := newTestClient(t, srv).CallContract(context.Background(), CallMsg{
		From: "0x1111111111111111111111111111111111111111",
		To:   "0x2222222222222222222222222222222222222222",
		Data: []byte{0x12, 0x34},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2a}, out)

	require.Len(t, seen, 1)
	require.Len(t, seen[0].Params, 2)
	var arg map[string]string
	require.NoError(t, json.Unmarshal(seen[0].Params[0], &arg))
	assert.Equal(t, "0x1234", arg["data"])
	assert.Equal(t, "0x2222222222222222222222222222222222222222", arg["to"])
	assert.NotContains(t, arg, "gas")
	assert.JSONEq(t, `"latest"`, string(seen[0].Params[1]))
}

func TestSendTransactionEncodesNumbers(t *testing.T) {
	var seen []rpcCall
	hash := common.HexToHash("0xab").Hex()
	srv := rpcMock(t, map[string]interface{}{"eth_sendTransaction": hash}, &seen)
	defer srv.Close()

	nonce := uint64(7)
	got, err := newTestClient(t, srv).SendTransaction(context.Background(), CallMsg{
		From:     "0x1111111111111111111111111111111111111111",
		Gas:      90000,
		GasPrice: big.NewInt(20_000_000_000),
		Value:    big.NewInt(1),
		Nonce:    &nonce,
	})
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(hash), got)

	var arg map[string]string
	require.NoError(t, json.Unmarshal(seen[0].Params[0], &arg))
	assert.Equal(t, "0x15f90", arg["gas"])
	assert.Equal(t, "0x4a817c800", arg["gasPrice"])
	assert.Equal(t, "0x1", arg["value"])
	assert.Equal(t, "0x7", arg["nonce"])
	assert.NotContains(t, arg, "to", "contract creation has no recipient")
}

func TestEstimateGas(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_estimateGas": "0x5208"}, nil)
	defer srv.Close()

	gas, err := newTestClient(t, srv).EstimateGas(context.Background(), CallMsg{To: "0x2222222222222222222222222222222222222222"})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)
}

func TestGetCode(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getCode": "0x6060"}, nil)
	defer srv.Close()

	code, err := newTestClient(t, srv).GetCode(context.Background(), "0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x60}, code)
}

// ---------------------------------------------------------------------------
// Receipts
// ---------------------------------------------------------------------------

func TestGetTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil}, nil)
	defer srv.Close()

	receipt, err := newTestClient(t, srv).GetTransactionReceipt(context.Background(), common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Nil(t, receipt, "pending tx should return nil receipt")
}

func TestGetTransactionReceiptWithLogs(t *testing.T) {
	topic := "0x09b7f9d2" + "00000000000000000000000000000000000000000000000000000000"
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"transactionHash":   "0x0000000000000000000000000000000000000000000000000000000000000001",
			"status":            "0x1",
			"blockNumber":       "0x100",
			"gasUsed":           "0x5208",
			"contractAddress":   "0x3333333333333333333333333333333333333333",
			"cumulativeGasUsed": "0x5208",
			"logs": []map[string]interface{}{{
				"address":  "0x4444444444444444444444444444444444444444",
				"topics":   []string{topic},
				"data":     "0x01",
				"logIndex": "0x2",
			}},
		},
	}, nil)
	defer srv.Close()

	receipt, err := newTestClient(t, srv).GetTransactionReceipt(context.Background(), common.HexToHash("0x01"))
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, uint64(256), receipt.BlockNumber)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
	assert.Equal(t, "0x3333333333333333333333333333333333333333", receipt.ContractAddress)
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, common.HexToHash(topic), receipt.Logs[0].Topics[0])
	assert.Equal(t, []byte{0x01}, receipt.Logs[0].Data)
	assert.Equal(t, uint64(2), receipt.Logs[0].LogIndex)
	assert.Equal(t, receipt.TxHash, receipt.Logs[0].TxHash)
}

func TestGetTransactionReceiptNullContractAddress(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":          "0x0",
			"contractAddress": nil,
			"logs":            []interface{}{},
		},
	}, nil)
	defer srv.Close()

	receipt, err := newTestClient(t, srv).GetTransactionReceipt(context.Background(), common.HexToHash("0x05"))
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Empty(t, receipt.ContractAddress)
	assert.Equal(t, common.HexToHash("0x05").Hex(), receipt.TxHash)
	assert.Equal(t, uint64(0), receipt.Status)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestWeiToETH(t *testing.T) {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, "1.000000000000000000", WeiToETH(one))
	assert.Equal(t, "0.000000000000000000", WeiToETH(big.NewInt(0)))
}

func TestIsHexAddress(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0x41836291350f62b2e0f57c175d9fe5fb49997227", true},
		{"0x41836291350F62B2E0F57C175D9FE5FB49997227", true},
		{"41836291350f62b2e0f57c175d9fe5fb4999722700", false},
		{"0x41836291350f62b2e0f57c175d9fe5fb4999722", false},
		{"0x41836291350f62b2e0f57c175d9fe5fb4999722z", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHexAddress(tt.in))
		})
	}
}
