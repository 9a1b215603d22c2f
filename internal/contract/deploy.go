package contract

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// deployment resolves a contract creation exactly once. Notifications
// without an address, and any notification after the first with one, are
// ignored.
type deployment struct {
	once sync.Once
	inst *Instance
	make func(address string) *Instance
}

func (d *deployment) notify(address string) bool {
	if address == "" {
		return false
	}
	resolved := false
	d.once.Do(func() {
		d.inst = d.make(address)
		resolved = true
	})
	return resolved
}

// New deploys a new instance of the contract. Constructor arguments come
// first; an optional trailing TxOpts (or options map) overrides the class
// defaults. Data defaults to the linked binary.
func (c *Class) New(ctx context.Context, args ...any) (*Instance, error) {
	s := c.snapshot()
	if s.backend == nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), ErrNoProvider)
	}
	if err := c.CheckNetwork(ctx); err != nil {
		return nil, err
	}

	cfg := c.Config()
	if cfg.UnlinkedBinary() == "" || cfg.UnlinkedBinary() == "0x" {
		return nil, fmt.Errorf("%s: %w", c.Name(), ErrNoBinary)
	}
	binary := c.Binary()
	if libs := unlinkedLibraries(binary); len(libs) > 0 {
		return nil, &UnlinkedLibrariesError{Contract: c.Name(), Libraries: libs}
	}

	params, opts, _, err := splitOptions(args)
	if err != nil {
		return nil, err
	}
	opts = s.defaults.Merge(opts)

	data := opts.Data
	if len(data) == 0 {
		if data, err = decodeBinary(binary); err != nil {
			return nil, fmt.Errorf("%s: decoding binary: %w", c.Name(), err)
		}
	}
	ctor := cfg.ABI().Constructor
	params = coerceArgs(ctor.Inputs, params)
	packed, err := ctor.Inputs.Pack(params...)
	if err != nil {
		return nil, fmt.Errorf("%s: packing constructor arguments: %w", c.Name(), err)
	}

	msg := callMsg(opts)
	msg.To = ""
	msg.Data = append(append([]byte{}, data...), packed...)

	hash, err := s.backend.SendTransaction(ctx, msg)
	if err != nil {
		return nil, err
	}

	d := &deployment{make: func(address string) *Instance {
		return c.newInstance(cfg, address, hash.Hex())
	}}
	c.logger.Info().Str("tx", hash.Hex()).Msg("deployment submitted")
	receipt, err := c.track(ctx, s, hash)
	if err != nil {
		return nil, err
	}
	if !d.notify(receipt.ContractAddress) {
		return nil, fmt.Errorf("%s: %w (tx %s)", c.Name(), ErrNoContractAddress, hash.Hex())
	}
	c.logger.Info().Str("address", d.inst.Address()).Msg("contract deployed")
	return d.inst, nil
}

func callMsg(o TxOpts) chain.CallMsg {
	return chain.CallMsg{
		From:     o.From,
		To:       o.To,
		Gas:      o.Gas,
		GasPrice: o.GasPrice,
		Value:    o.Value,
		Data:     o.Data,
		Nonce:    o.Nonce,
	}
}

func decodeBinary(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}
