package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/journal/internal/contract/contracttest"
	"github.com/Mohsinsiddi/journal/internal/dapp"
	"github.com/Mohsinsiddi/journal/internal/providers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	mordenJournal  = "0x41836291350f62b2e0f57c175d9fe5fb49997227"
	defaultJournal = "0xdd43c5619bcd038f3b0f26d7d5ffb66ebdb6167f"
	account        = "0x627306090abab3a6e1400e9345bc60c78a8bef57"
)

// harness runs the CLI against an in-memory node with a fresh config dir.
type harness struct {
	t     *testing.T
	node  *contracttest.Node
	dir   string
	stdin string
	dials int
}

func newHarness(t *testing.T, networkID string) *harness {
	t.Helper()
	h := &harness{t: t, node: contracttest.NewNode(networkID), dir: t.TempDir()}
	orig := dial
	dial = func(ctx context.Context, url string, logger zerolog.Logger) (*providers.Provider, error) {
		h.dials++
		return providers.New(h.node, logger), nil
	}
	t.Cleanup(func() { dial = orig })
	return h
}

// run executes args and returns stdout.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(h.stdin))
	root.SetArgs(append([]string{"--config", h.dir}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// mustRun executes args and fails the test on error.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

// serve answers eth_call for the builtin key by method name.
func (h *harness) serve(key string, outputs map[string][]any) {
	h.t.Helper()
	class, err := dapp.NewClass(key, "")
	require.NoError(h.t, err)
	methods := class.Config().Methods()
	h.node.HandleCall(func(tx contracttest.Tx) ([]byte, error) {
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

// selector returns the selector of a builtin function.
func selector(t *testing.T, key, name string) []byte {
	t.Helper()
	class, err := dapp.NewClass(key, "")
	require.NoError(t, err)
	m, err := class.Config().Methods().Lookup(name)
	require.NoError(t, err)
	return m.Selector()
}
