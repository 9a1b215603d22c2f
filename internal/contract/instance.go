package contract

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Instance is a binding to one deployed contract. Its address and network
// configuration never change; transport, defaults and confirmation settings
// are read from the class at each invocation.
type Instance struct {
	class   *Class
	config  *NetworkConfig
	address string
	txHash  string
}

// TxResult is the outcome of a confirmed write. Receipt and Logs are only
// set when the class decodes logs.
type TxResult struct {
	TxHash  string
	Receipt *chain.Receipt
	Logs    []DecodedLog
}

// TxOutcome is delivered by TransactAsync.
type TxOutcome struct {
	Result *TxResult
	Err    error
}

// Outcome is the result of Invoke: Values for a read, Tx for a write.
type Outcome struct {
	Kind   MethodKind
	Values []interface{}
	Tx     *TxResult
}

// Address returns the address exactly as it was given.
func (i *Instance) Address() string { return i.address }

// TransactionHash returns the creation transaction hash for instances
// returned by New, empty otherwise.
func (i *Instance) TransactionHash() string { return i.txHash }

// ContractName returns the name of the contract.
func (i *Instance) ContractName() string { return i.config.ContractName() }

// Config returns the network configuration the instance was created from.
func (i *Instance) Config() *NetworkConfig { return i.config }

// Methods returns the method table of the instance.
func (i *Instance) Methods() MethodTable { return i.config.Methods() }

// Invoke calls a read function or transacts a write function depending on
// how the ABI marks name.
func (i *Instance) Invoke(ctx context.Context, name string, args ...any) (*Outcome, error) {
	m, err := i.config.methods.Lookup(name)
	if err != nil {
		return nil, err
	}
	if m.Kind == Read {
		values, err := i.Call(ctx, name, args...)
		if err != nil {
			return nil, err
		}
		return &Outcome{Kind: Read, Values: values}, nil
	}
	res, err := i.Transact(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return &Outcome{Kind: Write, Tx: res}, nil
}

// Call runs name with eth_call and returns the decoded outputs. It works on
// write functions too, simulating them against the latest state. Transport
// errors are returned unchanged.
func (i *Instance) Call(ctx context.Context, name string, args ...any) ([]interface{}, error) {
	m, msg, s, err := i.prepare(name, args)
	if err != nil {
		return nil, err
	}
	out, err := s.backend.CallContract(ctx, msg)
	if err != nil {
		return nil, err
	}
	values, err := m.ABI.Outputs.Unpack(out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", name, err)
	}
	return values, nil
}

// EstimateGas asks the node how much gas name would use with args.
func (i *Instance) EstimateGas(ctx context.Context, name string, args ...any) (uint64, error) {
	_, msg, s, err := i.prepare(name, args)
	if err != nil {
		return 0, err
	}
	return s.backend.EstimateGas(ctx, msg)
}

// SendTransaction submits name as a transaction and returns its hash
// without waiting for a receipt.
func (i *Instance) SendTransaction(ctx context.Context, name string, args ...any) (string, error) {
	_, msg, s, err := i.prepare(name, args)
	if err != nil {
		return "", err
	}
	hash, err := s.backend.SendTransaction(ctx, msg)
	if err != nil {
		return "", err
	}
	return hash.Hex(), nil
}

// Request builds the message for name without sending it.
func (i *Instance) Request(name string, args ...any) (chain.CallMsg, error) {
	m, err := i.config.methods.Lookup(name)
	if err != nil {
		return chain.CallMsg{}, err
	}
	return i.request(m, args, i.class.snapshot().defaults)
}

// Transact submits a write and waits for its receipt. It fails with
// *TimeoutError when the receipt does not appear in time and with *TxError
// when a receipt poll fails. A rejected submission returns the transport
// error unchanged.
func (i *Instance) Transact(ctx context.Context, name string, args ...any) (*TxResult, error) {
	m, msg, s, err := i.prepare(name, args)
	if err != nil {
		return nil, err
	}
	if m.Kind != Write {
		return nil, fmt.Errorf("%w: %q", ErrNotWriteMethod, name)
	}

	hash, err := s.backend.SendTransaction(ctx, msg)
	if err != nil {
		return nil, err
	}
	i.class.logger.Debug().Str("method", name).Str("tx", hash.Hex()).Msg("transaction submitted")

	receipt, err := i.class.track(ctx, s, hash)
	if err != nil {
		return nil, err
	}
	if !s.decodeLogs {
		return &TxResult{TxHash: hash.Hex()}, nil
	}
	logs, err := i.decodeLogs(receipt.Logs)
	if err != nil {
		return nil, err
	}
	return &TxResult{TxHash: hash.Hex(), Receipt: receipt, Logs: logs}, nil
}

// TransactAsync runs Transact on its own goroutine. The channel receives
// exactly one outcome and is then closed.
func (i *Instance) TransactAsync(ctx context.Context, name string, args ...any) <-chan TxOutcome {
	ch := make(chan TxOutcome, 1)
	go func() {
		defer close(ch)
		res, err := i.Transact(ctx, name, args...)
		ch <- TxOutcome{Result: res, Err: err}
	}()
	return ch
}

func (i *Instance) prepare(name string, args []any) (Method, chain.CallMsg, settings, error) {
	m, err := i.config.methods.Lookup(name)
	if err != nil {
		return Method{}, chain.CallMsg{}, settings{}, err
	}
	s := i.class.snapshot()
	if s.backend == nil {
		return Method{}, chain.CallMsg{}, settings{}, fmt.Errorf("%s: %w", i.ContractName(), ErrNoProvider)
	}
	msg, err := i.request(m, args, s.defaults)
	if err != nil {
		return Method{}, chain.CallMsg{}, settings{}, err
	}
	return m, msg, s, nil
}

// request resolves options and packs the call data. The recipient is
// always the instance address.
func (i *Instance) request(m Method, args []any, defaults TxOpts) (chain.CallMsg, error) {
	params, opts, _, err := splitOptions(args)
	if err != nil {
		return chain.CallMsg{}, err
	}
	opts = defaults.Merge(opts)

	params = coerceArgs(m.ABI.Inputs, params)
	packed, err := m.ABI.Inputs.Pack(params...)
	if err != nil {
		return chain.CallMsg{}, fmt.Errorf("packing arguments for %s: %w", m.Name, err)
	}

	msg := callMsg(opts)
	msg.To = i.address
	msg.Data = append(append([]byte{}, m.ABI.ID...), packed...)
	return msg, nil
}

func coerceArgs(inputs abi.Arguments, params []any) []any {
	if len(params) != len(inputs) {
		return params
	}
	out := make([]any, len(params))
	for idx, p := range params {
		out[idx] = coerceArg(inputs[idx].Type.GetType(), p)
	}
	return out
}
