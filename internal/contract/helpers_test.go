package contract

import (
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/journal/internal/contract/contracttest"
	"github.com/Mohsinsiddi/journal/internal/providers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ---------------------------------------------------------------------------
// fixtures
// ---------------------------------------------------------------------------

const ledgerABI = `[
  {"constant": true, "inputs": [], "name": "count", "outputs": [{"name": "", "type": "uint256"}], "type": "function"},
  {"constant": true, "inputs": [{"name": "id", "type": "uint256"}], "name": "entries",
   "outputs": [{"name": "author", "type": "address"}, {"name": "text", "type": "string"}], "type": "function"},
  {"constant": false, "inputs": [{"name": "amount", "type": "uint256"}], "name": "add", "outputs": [{"name": "", "type": "uint256"}], "type": "function"},
  {"constant": false, "inputs": [{"name": "text", "type": "string"}, {"name": "flag", "type": "bool"}], "name": "submit", "outputs": [], "type": "function"},
  {"inputs": [{"name": "goal", "type": "uint256"}], "type": "constructor"},
  {"anonymous": false, "inputs": [{"indexed": false, "name": "amount", "type": "uint256"}, {"indexed": false, "name": "who", "type": "address"}], "name": "Added", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "name": "who", "type": "address"}, {"indexed": false, "name": "amount", "type": "uint256"}], "name": "Removed", "type": "event"}
]`

const pingABI = `[
  {"anonymous": false, "inputs": [{"indexed": false, "name": "value", "type": "uint256"}], "name": "Ping", "type": "event"}
]`

const (
	defaultAddr = "0xdd43c5619bcd038f3b0f26d7d5ffb66ebdb6167f"
	mordenAddr  = "0x41836291350f62b2e0f57c175d9fe5fb49997227"
	liveAddr    = "0x10b0e97c8ed3ef872bafb6119638fbb56893969f"
	mainAddr    = "0xd308bfac765a278bbc3653aa2b76c2e3943da66c"
	sender      = "0x627306090abab3a6e1400e9345bc60c78a8bef57"
	testBinary  = "0x6060604052"
)

var testAddresses = map[string]string{
	"default": defaultAddr,
	"2":       mordenAddr,
	"live":    liveAddr,
	"1":       mainAddr,
}

// testArtifact builds a Ledger artifact with a bundle for each id.
func testArtifact(t *testing.T, ids ...string) *Artifact {
	t.Helper()
	entries, err := parseABI([]byte(ledgerABI))
	require.NoError(t, err)
	a := &Artifact{ContractName: "Ledger", Networks: map[string]*NetworkBundle{}}
	for _, id := range ids {
		a.Networks[id] = &NetworkBundle{
			ABI:            entries,
			UnlinkedBinary: testBinary,
			Address:        testAddresses[id],
			UpdatedAt:      1476962446813,
		}
	}
	return a
}

func pingArtifact(t *testing.T) *Artifact {
	t.Helper()
	a, err := ParseArtifact([]byte(pingABI))
	require.NoError(t, err)
	a.ContractName = "LibPing"
	return a
}

// newTestClass wires a class to node with a fast poll interval.
func newTestClass(t *testing.T, node *contracttest.Node, a *Artifact, opts ...Option) *Class {
	t.Helper()
	base := []Option{
		WithProvider(providers.New(node, zerolog.Nop())),
		WithPollInterval(time.Millisecond),
	}
	c, err := NewClass(a, append(base, opts...)...)
	require.NoError(t, err)
	return c
}

// placeholder returns a 40 character library placeholder for name.
func placeholder(name string) string {
	return "__" + name + strings.Repeat("_", 38-len(name))
}
