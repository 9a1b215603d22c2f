package dapp

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/journal/internal/contract"
)

// NewClass builds a contract class for a builtin (or an artifact in dir).
func NewClass(key, dir string, opts ...contract.Option) (*contract.Class, error) {
	a, err := Load(key, dir)
	if err != nil {
		return nil, err
	}
	return contract.NewClass(a, opts...)
}

// withOpts appends the first of opts as the trailing options argument.
func withOpts(params []any, opts []contract.TxOpts) []any {
	if len(opts) > 0 {
		params = append(params, opts[0])
	}
	return params
}

// callOne runs a read with a single output and asserts its Go type.
func callOne[T any](ctx context.Context, inst *contract.Instance, name string, args ...any) (T, error) {
	var zero T
	values, err := inst.Call(ctx, name, args...)
	if err != nil {
		return zero, err
	}
	if len(values) != 1 {
		return zero, fmt.Errorf("%s: expected 1 output, got %d", name, len(values))
	}
	return as[T](name, values[0])
}

func as[T any](name string, v any) (T, error) {
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: unexpected output type %T", name, v)
	}
	return out, nil
}
