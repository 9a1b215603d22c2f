package cmd

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/Mohsinsiddi/journal/internal/config"
	"github.com/Mohsinsiddi/journal/internal/contract"
	"github.com/Mohsinsiddi/journal/internal/dapp"
	"github.com/Mohsinsiddi/journal/internal/providers"
	"github.com/Mohsinsiddi/journal/internal/ui"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// session is an open connection to the node of the selected network.
type session struct {
	app      *app
	provider *providers.Provider
	client   *chain.EVMClient
}

func (a *app) connect(ctx context.Context) (*session, error) {
	dctx, cancel := context.WithTimeout(ctx, config.RPCDialTimeout)
	defer cancel()
	p, err := dial(dctx, a.net.RPCURL(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s (%s): %w", a.net.Name, a.net.RPCURL(), err)
	}
	return &session{app: a, provider: p, client: chain.NewEVMClient(p)}, nil
}

func (s *session) Close() { s.provider.Close() }

// txDefaults are the network's transaction settings as class defaults.
func (a *app) txDefaults() (contract.TxOpts, error) {
	o := contract.TxOpts{From: a.net.From, Gas: a.net.Gas}
	if a.net.GasPrice != "" {
		price, ok := math.ParseBig256(a.net.GasPrice)
		if !ok {
			return o, fmt.Errorf("invalid gas_price %q for network %s", a.net.GasPrice, a.net.Name)
		}
		o.GasPrice = price
	}
	return o, nil
}

// class builds the class for a builtin contract (or an artifact in the
// artifacts directory) talking to the session's node.
func (s *session) class(key string) (*contract.Class, error) {
	defaults, err := s.app.txDefaults()
	if err != nil {
		return nil, err
	}
	cfg := s.app.cfg
	return dapp.NewClass(key, cfg.ArtifactsPath(),
		contract.WithProvider(s.provider),
		contract.WithDefaults(defaults),
		contract.WithTimeout(cfg.TxTimeout()),
		contract.WithPollInterval(cfg.PollInterval()),
		contract.WithLogDecoding(cfg.DecodeLogs),
		contract.WithLogger(s.app.logger),
	)
}

// offlineClass builds a class for inspection only.
func (a *app) offlineClass(key string) (*contract.Class, error) {
	return dapp.NewClass(key, a.cfg.ArtifactsPath(), contract.WithLogger(a.logger))
}

// pending shows a spinner on interactive terminals while fn runs.
func pending(cmd *cobra.Command, msg string, fn func() error) error {
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return fn()
	}
	spin := ui.NewSpinnerTo(f, msg)
	spin.Start()
	defer spin.Stop()
	return fn()
}

// printTx renders a confirmed write.
func printTx(w io.Writer, title string, res *contract.TxResult) {
	pairs := [][2]string{{"Transaction", ui.Addr(res.TxHash)}}
	if r := res.Receipt; r != nil {
		pairs = append(pairs,
			[2]string{"Status", ui.ReceiptStatus(r.Status)},
			[2]string{"Block", fmt.Sprintf("%d", r.BlockNumber)},
			[2]string{"Gas used", fmt.Sprintf("%d", r.GasUsed)},
		)
		if r.ContractAddress != "" {
			pairs = append(pairs, [2]string{"Contract", ui.Addr(r.ContractAddress)})
		}
	}
	fmt.Fprintln(w, ui.KeyValueBlock(title, pairs))
	if len(res.Logs) > 0 {
		t := ui.NewTable("#", "Event", "Arguments")
		for _, l := range res.Logs {
			t.AddRow(fmt.Sprintf("%d", l.LogIndex), l.Event, formatArgs(l.Args))
		}
		fmt.Fprint(w, t.Render())
	}
}

// formatArgs renders decoded event arguments sorted by name.
func formatArgs(args map[string]interface{}) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + contract.FormatValue(args[k])
	}
	return strings.Join(parts, " ")
}

// parseBig reads a decimal or 0x-prefixed integer flag.
func parseBig(name, s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	n, ok := math.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}
