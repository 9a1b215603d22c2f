package contract

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/mitchellh/mapstructure"
)

// TxOpts are the per-call transaction overrides. Zero fields fall back to
// the class defaults.
type TxOpts struct {
	From     string   `mapstructure:"from"`
	To       string   `mapstructure:"to"`
	Gas      uint64   `mapstructure:"gas"`
	GasPrice *big.Int `mapstructure:"gasPrice"`
	Value    *big.Int `mapstructure:"value"`
	Data     []byte   `mapstructure:"data"`
	Nonce    *uint64  `mapstructure:"nonce"`
}

// Merge returns o with every non-zero field of over applied on top.
func (o TxOpts) Merge(over TxOpts) TxOpts {
	if over.From != "" {
		o.From = over.From
	}
	if over.To != "" {
		o.To = over.To
	}
	if over.Gas != 0 {
		o.Gas = over.Gas
	}
	if over.GasPrice != nil {
		o.GasPrice = over.GasPrice
	}
	if over.Value != nil {
		o.Value = over.Value
	}
	if len(over.Data) > 0 {
		o.Data = over.Data
	}
	if over.Nonce != nil {
		o.Nonce = over.Nonce
	}
	return o
}

var (
	bigIntType     = reflect.TypeOf(big.Int{})
	bigIntPtrType  = reflect.TypeOf(&big.Int{})
	byteSliceType  = reflect.TypeOf([]byte(nil))
	addressType    = reflect.TypeOf(common.Address{})
	bigNumberTypes = map[reflect.Type]bool{
		reflect.TypeOf(big.Int{}):      true,
		reflect.TypeOf(big.Float{}):    true,
		reflect.TypeOf(uint256.Int{}):  true,
		reflect.TypeOf(&big.Int{}):     true,
		reflect.TypeOf(&big.Float{}):   true,
		reflect.TypeOf(&uint256.Int{}): true,
	}
)

// isBigNumber reports whether v is an arbitrary precision number.
func isBigNumber(v any) bool {
	return v != nil && bigNumberTypes[reflect.TypeOf(v)]
}

// isObject reports whether v is a struct, a pointer to a struct, or a
// string-keyed map.
func isObject(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		if reflect.ValueOf(v).IsNil() {
			return false
		}
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return t.Key().Kind() == reflect.String
	}
	return false
}

// splitOptions pops a trailing options value from args. The last argument is
// options when it is an object and not a big number; the returned bool
// reports whether one was found.
func splitOptions(args []any) ([]any, TxOpts, bool, error) {
	if len(args) == 0 {
		return args, TxOpts{}, false, nil
	}
	last := args[len(args)-1]
	if !isObject(last) || isBigNumber(last) {
		return args, TxOpts{}, false, nil
	}
	opts, err := decodeOptions(last)
	if err != nil {
		return nil, TxOpts{}, false, err
	}
	return args[:len(args)-1], opts, true, nil
}

func decodeOptions(v any) (TxOpts, error) {
	switch o := v.(type) {
	case TxOpts:
		return o, nil
	case *TxOpts:
		return *o, nil
	}

	var opts TxOpts
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       optionsHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return TxOpts{}, &OptionsError{Err: err}
	}
	if err := dec.Decode(v); err != nil {
		return TxOpts{}, &OptionsError{Err: err}
	}
	return opts, nil
}

// optionsHook converts the loose values callers put in option maps (decimal
// or hex strings, plain integers, uint256 values) into the TxOpts field types.
func optionsHook(from, to reflect.Type, data any) (any, error) {
	switch to {
	case bigIntPtrType, bigIntType:
		return toBigInt(data)
	case byteSliceType:
		if s, ok := data.(string); ok {
			return hexutil.Decode(s)
		}
	}
	return data, nil
}

func toBigInt(data any) (any, error) {
	switch v := data.(type) {
	case *big.Int, big.Int:
		return v, nil
	case *uint256.Int:
		return v.ToBig(), nil
	case uint256.Int:
		return v.ToBig(), nil
	case string:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 0)
		if !ok {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		return n, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("invalid number %v: not an integer", v)
		}
		return big.NewInt(int64(v)), nil
	}
	return data, nil
}

// coerceArg converts convenience values into the Go type the ABI packer
// expects for t: uint256 values and plain integers become *big.Int for wide
// integer parameters, and hex strings become addresses.
func coerceArg(t reflect.Type, v any) any {
	switch n := v.(type) {
	case *uint256.Int:
		return n.ToBig()
	case uint256.Int:
		return n.ToBig()
	}
	if t == bigIntPtrType {
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return big.NewInt(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return new(big.Int).SetUint64(rv.Uint())
		}
	}
	if s, ok := v.(string); ok && t == addressType && chain.IsHexAddress(s) {
		return common.HexToAddress(s)
	}
	return v
}
