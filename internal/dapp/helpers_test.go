package dapp_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Mohsinsiddi/journal/internal/contract"
	"github.com/Mohsinsiddi/journal/internal/contract/contracttest"
	"github.com/Mohsinsiddi/journal/internal/dapp"
	"github.com/Mohsinsiddi/journal/internal/providers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	mordenJournal  = "0x41836291350f62b2e0f57c175d9fe5fb49997227"
	defaultJournal = "0xdd43c5619bcd038f3b0f26d7d5ffb66ebdb6167f"
	mordenToken    = "0xd308bfac765a278bbc3653aa2b76c2e3943da66c"
	account        = "0x627306090abab3a6e1400e9345bc60c78a8bef57"
)

// newClass builds a builtin class talking to node.
func newClass(t *testing.T, node *contracttest.Node, key string, opts ...contract.Option) *contract.Class {
	t.Helper()
	base := []contract.Option{
		contract.WithProvider(providers.New(node, zerolog.Nop())),
		contract.WithPollInterval(time.Millisecond),
	}
	c, err := dapp.NewClass(key, "", append(base, opts...)...)
	require.NoError(t, err)
	return c
}

// serve answers eth_call by method name with the given output values.
func serve(node *contracttest.Node, methods contract.MethodTable, outputs map[string][]any) {
	node.HandleCall(func(tx contracttest.Tx) ([]byte, error) {
		if len(tx.Data) < 4 {
			return nil, errors.New("call without selector")
		}
		for name, m := range methods {
			if !bytes.Equal(m.Selector(), tx.Data[:4]) {
				continue
			}
			out, ok := outputs[name]
			if !ok {
				return nil, fmt.Errorf("unexpected call to %s", name)
			}
			return m.ABI.Outputs.Pack(out...)
		}
		return nil, errors.New("unknown selector")
	})
}
