package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/journal/internal/providers"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// EVMClient exposes the node RPC methods the contract bindings need.
type EVMClient struct {
	provider *providers.Provider
}

// Balance holds a native balance result.
type Balance struct {
	Wei *big.Int
	ETH string
}

// CallMsg describes a call or transaction. Zero fields are omitted from the
// request so the node fills in its own defaults.
type CallMsg struct {
	From     string
	To       string // empty for contract creation
	Gas      uint64
	GasPrice *big.Int
	Value    *big.Int
	Data     []byte
	Nonce    *uint64
}

// Receipt is the on-chain receipt of a mined transaction.
type Receipt struct {
	TxHash          string
	Status          uint64 // 1 = success, 0 = reverted
	BlockNumber     uint64
	GasUsed         uint64
	ContractAddress string // non-empty when a contract was deployed
	Logs            []Log
}

// Log is one event log emitted by a transaction.
type Log struct {
	Address  string
	Topics   []common.Hash
	Data     []byte
	LogIndex uint64
	TxHash   string
}

// NewEVMClient creates a client that talks to the node through p.
func NewEVMClient(p *providers.Provider) *EVMClient {
	return &EVMClient{provider: p}
}

// Provider returns the transport the client sends through.
func (c *EVMClient) Provider() *providers.Provider {
	return c.provider
}

// NetworkID returns the id reported by net_version. Some nodes answer with a
// number instead of a string; both are accepted.
func (c *EVMClient) NetworkID(ctx context.Context) (string, error) {
	var raw json.RawMessage
	if err := c.provider.Send(ctx, &raw, "net_version"); err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.Wrapf(err, "parsing network id %s", string(raw))
	}
	return n.String(), nil
}

// Accounts returns the accounts managed by the node.
func (c *EVMClient) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.provider.Send(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetBalance returns the native balance of address at the latest block.
func (c *EVMClient) GetBalance(ctx context.Context, address string) (*Balance, error) {
	var wei hexutil.Big
	if err := c.provider.Send(ctx, &wei, "eth_getBalance", address, "latest"); err != nil {
		return nil, err
	}
	b := wei.ToInt()
	return &Balance{Wei: b, ETH: WeiToETH(b)}, nil
}

// CallContract executes msg against the latest state without creating a
// transaction and returns the raw return data.
func (c *EVMClient) CallContract(ctx context.Context, msg CallMsg) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.provider.Send(ctx, &out, "eth_call", toCallArg(msg), "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateGas asks the node how much gas msg would consume.
func (c *EVMClient) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	var gas hexutil.Uint64
	if err := c.provider.Send(ctx, &gas, "eth_estimateGas", toCallArg(msg)); err != nil {
		return 0, err
	}
	return uint64(gas), nil
}

// SendTransaction submits msg with eth_sendTransaction; the node signs it
// with the unlocked From account. Returns the transaction hash.
func (c *EVMClient) SendTransaction(ctx context.Context, msg CallMsg) (common.Hash, error) {
	var hash common.Hash
	if err := c.provider.Send(ctx, &hash, "eth_sendTransaction", toCallArg(msg)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var r *rawReceipt
	if err := c.provider.Send(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil // still pending
	}
	return r.toReceipt(hash), nil
}

// GetCode returns the bytecode at address. Empty means no contract.
func (c *EVMClient) GetCode(ctx context.Context, address string) ([]byte, error) {
	var code hexutil.Bytes
	if err := c.provider.Send(ctx, &code, "eth_getCode", address, "latest"); err != nil {
		return nil, err
	}
	return code, nil
}

// --- wire types ---

func toCallArg(msg CallMsg) map[string]interface{} {
	arg := map[string]interface{}{}
	if msg.From != "" {
		arg["from"] = msg.From
	}
	if msg.To != "" {
		arg["to"] = msg.To
	}
	if msg.Gas != 0 {
		arg["gas"] = hexutil.Uint64(msg.Gas)
	}
	if msg.GasPrice != nil {
		arg["gasPrice"] = (*hexutil.Big)(msg.GasPrice)
	}
	if msg.Value != nil {
		arg["value"] = (*hexutil.Big)(msg.Value)
	}
	if len(msg.Data) > 0 {
		arg["data"] = hexutil.Bytes(msg.Data)
	}
	if msg.Nonce != nil {
		arg["nonce"] = hexutil.Uint64(*msg.Nonce)
	}
	return arg
}

type rawReceipt struct {
	TxHash          *common.Hash    `json:"transactionHash"`
	Status          *hexutil.Uint64 `json:"status"`
	BlockNumber     *hexutil.Uint64 `json:"blockNumber"`
	GasUsed         *hexutil.Uint64 `json:"gasUsed"`
	ContractAddress *common.Address `json:"contractAddress"`
	Logs            []rawLog        `json:"logs"`
}

type rawLog struct {
	Address  common.Address  `json:"address"`
	Topics   []common.Hash   `json:"topics"`
	Data     hexutil.Bytes   `json:"data"`
	LogIndex *hexutil.Uint64 `json:"logIndex"`
	TxHash   *common.Hash    `json:"transactionHash"`
}

func (r *rawReceipt) toReceipt(hash common.Hash) *Receipt {
	receipt := &Receipt{TxHash: hash.Hex()}
	if r.TxHash != nil {
		receipt.TxHash = r.TxHash.Hex()
	}
	if r.Status != nil {
		receipt.Status = uint64(*r.Status)
	}
	if r.BlockNumber != nil {
		receipt.BlockNumber = uint64(*r.BlockNumber)
	}
	if r.GasUsed != nil {
		receipt.GasUsed = uint64(*r.GasUsed)
	}
	if r.ContractAddress != nil && *r.ContractAddress != (common.Address{}) {
		receipt.ContractAddress = r.ContractAddress.Hex()
	}
	for _, l := range r.Logs {
		entry := Log{
			Address: l.Address.Hex(),
			Topics:  l.Topics,
			Data:    l.Data,
			TxHash:  receipt.TxHash,
		}
		if l.LogIndex != nil {
			entry.LogIndex = uint64(*l.LogIndex)
		}
		if l.TxHash != nil {
			entry.TxHash = l.TxHash.Hex()
		}
		receipt.Logs = append(receipt.Logs, entry)
	}
	return receipt
}

// --- math helpers ---

var eth1 = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// WeiToETH converts a wei amount to an ETH decimal string.
func WeiToETH(wei *big.Int) string {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, eth1)
	return f.Text('f', 18)
}

// IsHexAddress reports whether s is a 0x-prefixed, 40 hex digit address.
func IsHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	for _, r := range s[2:] {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

func isHexDigit(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}
