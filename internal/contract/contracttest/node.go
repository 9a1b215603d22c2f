// Package contracttest provides an in-memory node for exercising contract
// bindings without a real chain.
package contracttest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Tx is a transaction or call received by the node.
type Tx struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Data     hexutil.Bytes   `json:"data"`
	Nonce    *hexutil.Uint64 `json:"nonce"`
}

// Log is a log the node attaches to every receipt.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// CallHandler answers eth_call.
type CallHandler func(tx Tx) ([]byte, error)

// Node is a fake JSON-RPC node. It satisfies providers.Conn.
type Node struct {
	mu sync.Mutex

	networkID     string
	accounts      []string
	balance       *big.Int
	gasEstimate   uint64
	code          []byte
	call          CallHandler
	pendingPolls  int
	neverMine     bool
	logs          []Log
	contractAddr  *common.Address
	noContract    bool
	errs          map[string]error
	calls         map[string]int
	sent          []Tx
	receiptPolls  map[common.Hash]int
	creationNonce map[common.Hash]uint64
}

// NewNode creates a node reporting networkID from net_version.
func NewNode(networkID string) *Node {
	return &Node{
		networkID:     networkID,
		accounts:      []string{"0x627306090abab3a6e1400e9345bc60c78a8bef57"},
		balance:       new(big.Int),
		gasEstimate:   21000,
		errs:          make(map[string]error),
		calls:         make(map[string]int),
		receiptPolls:  make(map[common.Hash]int),
		creationNonce: make(map[common.Hash]uint64),
	}
}

// SetNetworkID changes the id reported by net_version.
func (n *Node) SetNetworkID(id string) { n.locked(func() { n.networkID = id }) }

// SetAccounts sets the eth_accounts answer.
func (n *Node) SetAccounts(accounts ...string) { n.locked(func() { n.accounts = accounts }) }

// SetBalance sets the eth_getBalance answer for every address.
func (n *Node) SetBalance(wei *big.Int) { n.locked(func() { n.balance = wei }) }

// SetGasEstimate sets the eth_estimateGas answer.
func (n *Node) SetGasEstimate(gas uint64) { n.locked(func() { n.gasEstimate = gas }) }

// SetCode sets the eth_getCode answer.
func (n *Node) SetCode(code []byte) { n.locked(func() { n.code = code }) }

// HandleCall installs the eth_call handler.
func (n *Node) HandleCall(h CallHandler) { n.locked(func() { n.call = h }) }

// MineAfter makes receipts appear only after polls empty answers.
func (n *Node) MineAfter(polls int) { n.locked(func() { n.pendingPolls = polls }) }

// NeverMine makes every receipt poll answer null.
func (n *Node) NeverMine() { n.locked(func() { n.neverMine = true }) }

// SetLogs sets the logs attached to every receipt.
func (n *Node) SetLogs(logs ...Log) { n.locked(func() { n.logs = logs }) }

// SetContractAddress fixes the address reported for contract creations.
func (n *Node) SetContractAddress(addr string) {
	a := common.HexToAddress(addr)
	n.locked(func() { n.contractAddr = &a })
}

// OmitContractAddress makes creation receipts carry a null contract address.
func (n *Node) OmitContractAddress() { n.locked(func() { n.noContract = true }) }

// Fail makes method return err until cleared with a nil err.
func (n *Node) Fail(method string, err error) {
	n.locked(func() {
		if err == nil {
			delete(n.errs, method)
			return
		}
		n.errs[method] = err
	})
}

// Calls returns how many times method was requested.
func (n *Node) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// Sent returns the transactions received by eth_sendTransaction.
func (n *Node) Sent() []Tx {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Tx, len(n.sent))
	copy(out, n.sent)
	return out
}

func (n *Node) locked(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fn()
}

// CallContext answers one request. Results go through a JSON round trip so
// callers decode them exactly as they would from a real node.
func (n *Node) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := n.handle(method, args)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(raw, result)
}

func (n *Node) handle(method string, args []interface{}) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.calls[method]++
	if err := n.errs[method]; err != nil {
		return nil, err
	}

	switch method {
	case "net_version":
		return n.networkID, nil

	case "eth_accounts":
		return n.accounts, nil

	case "eth_getBalance":
		return (*hexutil.Big)(n.balance), nil

	case "eth_getCode":
		return hexutil.Bytes(n.code), nil

	case "eth_estimateGas":
		return hexutil.Uint64(n.gasEstimate), nil

	case "eth_gasPrice":
		return (*hexutil.Big)(big.NewInt(1_000_000_000)), nil

	case "eth_blockNumber":
		return hexutil.Uint64(len(n.sent)), nil

	case "eth_call":
		tx, err := decodeTx(args)
		if err != nil {
			return nil, err
		}
		if n.call == nil {
			return hexutil.Bytes{}, nil
		}
		out, err := n.call(tx)
		if err != nil {
			return nil, err
		}
		return hexutil.Bytes(out), nil

	case "eth_sendTransaction":
		tx, err := decodeTx(args)
		if err != nil {
			return nil, err
		}
		nonce := uint64(len(n.sent))
		n.sent = append(n.sent, tx)
		hash := crypto.Keccak256Hash([]byte(fmt.Sprintf("tx-%d", nonce)))
		if tx.To == "" {
			n.creationNonce[hash] = nonce
		}
		return hash, nil

	case "eth_getTransactionReceipt":
		if len(args) == 0 {
			return nil, fmt.Errorf("missing transaction hash")
		}
		hash, ok := args[0].(common.Hash)
		if !ok {
			return nil, fmt.Errorf("unexpected hash argument %T", args[0])
		}
		n.receiptPolls[hash]++
		if n.neverMine || n.receiptPolls[hash] <= n.pendingPolls {
			return nil, nil
		}
		return n.receipt(hash), nil
	}
	return nil, fmt.Errorf("the method %s does not exist/is not available", method)
}

func (n *Node) receipt(hash common.Hash) map[string]interface{} {
	logs := make([]map[string]interface{}, len(n.logs))
	for i, l := range n.logs {
		logs[i] = map[string]interface{}{
			"address":         l.Address,
			"topics":          l.Topics,
			"data":            hexutil.Bytes(l.Data),
			"logIndex":        hexutil.Uint64(i),
			"transactionHash": hash,
		}
	}
	r := map[string]interface{}{
		"transactionHash": hash,
		"status":          hexutil.Uint64(1),
		"blockNumber":     hexutil.Uint64(1),
		"gasUsed":         hexutil.Uint64(n.gasEstimate),
		"logs":            logs,
	}
	if nonce, ok := n.creationNonce[hash]; ok && !n.noContract {
		addr := crypto.CreateAddress(common.HexToAddress(n.sent[nonce].From), nonce)
		if n.contractAddr != nil {
			addr = *n.contractAddr
		}
		r["contractAddress"] = addr
	}
	return r
}

func decodeTx(args []interface{}) (Tx, error) {
	if len(args) == 0 {
		return Tx{}, fmt.Errorf("missing transaction argument")
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return Tx{}, err
	}
	var tx Tx
	if err := json.Unmarshal(raw, &tx); err != nil {
		return Tx{}, err
	}
	return tx, nil
}
