package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/Mohsinsiddi/journal/internal/config"
	"github.com/Mohsinsiddi/journal/internal/contract"
	"github.com/Mohsinsiddi/journal/internal/dapp"
	"github.com/Mohsinsiddi/journal/internal/ui"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newContractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Inspect, call, send to and deploy contracts",
		Long: `Work with the bundled contracts (journal, reviewtoken) or any artifact
placed in the artifacts directory (default ~/.journal/artifacts).

Read functions run as eth_call. Write functions are sent with
eth_sendTransaction and tracked until they are mined or time out.`,
	}
	cmd.AddCommand(
		newContractListCmd(a),
		newContractInfoCmd(a),
		newContractNetworksCmd(a),
		newContractCallCmd(a),
		newContractSendCmd(a),
		newContractDeployCmd(a),
	)
	return cmd
}

func newContractListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := ui.NewTable("ID", "Name", "Source", "Description")
			seen := make(map[string]bool)
			dir := a.cfg.ArtifactsPath()
			for _, b := range dapp.AllBuiltins() {
				seen[strings.ToLower(b.Name)] = true
				source := "builtin"
				if _, err := os.Stat(dapp.ArtifactPath(dir, b.Name)); err == nil {
					source = "builtin, deployed locally"
				}
				t.AddRow(b.ID, b.Name, source, b.Description)
			}
			for _, name := range localArtifacts(dir) {
				if seen[strings.ToLower(name)] {
					continue
				}
				t.AddRow(name, name, "artifacts dir", "")
			}
			fmt.Fprint(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

// localArtifacts lists the artifact names in dir.
func localArtifacts(dir string) []string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sort.Strings(names)
	return names
}

func newContractInfoCmd(a *app) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "info <contract>",
		Short: "Show the functions and events of a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, err := a.offlineClass(args[0])
			if err != nil {
				return err
			}
			if interactive {
				entry, err := browse(class)
				if err != nil || entry == nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), entry.Sig)
				return nil
			}

			cfg := class.Config()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.KeyValueBlock(class.Name(), [][2]string{
				{"Networks", strings.Join(class.Networks(), ", ")},
				{"Address", orDash(cfg.Address())},
				{"Binary", fmt.Sprintf("%d bytes", binaryLen(cfg.UnlinkedBinary()))},
			}))

			t := ui.NewTable("Kind", "Selector", "Signature", "Returns")
			for _, name := range cfg.Methods().Names() {
				m := cfg.Methods()[name]
				t.AddRow(m.Kind.String(), "0x"+hex.EncodeToString(m.Selector()), m.Signature(), strings.Join(outputTypes(m), ", "))
			}
			fmt.Fprint(out, t.Render())

			events := cfg.Events()
			if len(events) > 0 {
				fmt.Fprintln(out)
				et := ui.NewTable("Event", "Topic")
				for _, topic := range sortedTopics(events) {
					et.AddRow(events[topic].Sig, topic.Hex())
				}
				fmt.Fprint(out, et.Render())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the functions interactively")
	return cmd
}

func newContractNetworksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networks <contract>",
		Short: "Show the deployments recorded in a contract's artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, err := a.offlineClass(args[0])
			if err != nil {
				return err
			}
			art := class.Artifact()
			t := ui.NewTable("Network", "Config name", "Address", "Links", "Updated")
			for _, id := range class.Networks() {
				b := art.Networks[id]
				updated := "-"
				if b.UpdatedAt > 0 {
					updated = time.UnixMilli(b.UpdatedAt).UTC().Format(time.RFC3339)
				}
				t.AddRow(id, strings.Join(a.cfg.NetworkByID(id), ", "), orDash(b.Address), fmt.Sprintf("%d", len(b.Links)), updated)
			}
			fmt.Fprint(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

// txFlags are the per-call transaction overrides shared by call, send and
// deploy.
type txFlags struct {
	from     string
	gas      uint64
	gasPrice string
	value    string
}

func (f *txFlags) register(cmd *cobra.Command, withValue bool) {
	cmd.Flags().StringVar(&f.from, "from", "", "sending account (default: network from, then the node's choice)")
	cmd.Flags().Uint64Var(&f.gas, "gas", 0, "gas limit")
	cmd.Flags().StringVar(&f.gasPrice, "gas-price", "", "gas price in wei")
	if withValue {
		cmd.Flags().StringVar(&f.value, "value", "", "wei to send with the transaction")
	}
}

func (f *txFlags) opts() (contract.TxOpts, error) {
	o := contract.TxOpts{From: f.from, Gas: f.gas}
	if f.from != "" && !chain.IsHexAddress(f.from) {
		return o, fmt.Errorf("invalid --from address %q", f.from)
	}
	var err error
	if o.GasPrice, err = parseBig("--gas-price", f.gasPrice); err != nil {
		return o, err
	}
	if o.Value, err = parseBig("--value", f.value); err != nil {
		return o, err
	}
	return o, nil
}

// target resolves the instance addressed by a call or send.
func target(ctx context.Context, class *contract.Class, at string) (*contract.Instance, error) {
	if at != "" {
		if err := class.CheckNetwork(ctx); err != nil {
			return nil, err
		}
		return class.At(at)
	}
	return class.Connect(ctx)
}

// pickMethod returns the function named in args, or asks for one on a
// terminal.
func pickMethod(class *contract.Class, args []string) (string, []string, error) {
	if len(args) > 0 {
		return args[0], args[1:], nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", nil, errors.New("missing function name")
	}
	entry, err := browse(class)
	if err != nil {
		return "", nil, err
	}
	if entry == nil {
		return "", nil, errors.New("no function selected")
	}
	return entry.Name, nil, nil
}

func newContractCallCmd(a *app) *cobra.Command {
	var (
		flags txFlags
		at    string
	)

	cmd := &cobra.Command{
		Use:   "call <contract> [function] [args...]",
		Short: "Call a contract function without sending a transaction",
		Long: `Run a function with eth_call and print the decoded results. Write
functions are simulated against the latest state.

Arrays are passed as JSON, e.g. '["0x...","0x..."]'.

Examples:
  journal contract call journal numberOfArticles
  journal contract call journal articles 0
  journal contract call reviewtoken balanceof 0x627306090abab3a6e1400e9345bc60c78a8bef57`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.opts()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			class, err := s.class(args[0])
			if err != nil {
				return err
			}
			name, raw, err := pickMethod(class, args[1:])
			if err != nil {
				return err
			}
			inst, err := target(ctx, class, at)
			if err != nil {
				return err
			}
			m, err := inst.Methods().Lookup(name)
			if err != nil {
				return err
			}
			params, err := contract.ParseArgs(m.ABI.Inputs, raw)
			if err != nil {
				return err
			}

			cctx, cancel := context.WithTimeout(ctx, config.RPCCallTimeout)
			defer cancel()
			values, err := inst.Call(cctx, name, append(params, opts)...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(values) == 0 {
				fmt.Fprintln(out, ui.Meta("(no return values)"))
				return nil
			}
			pairs := make([][2]string, len(values))
			for i, v := range values {
				label := m.ABI.Outputs[i].Name
				if label == "" {
					label = m.ABI.Outputs[i].Type.String()
				}
				pairs[i] = [2]string{label, contract.FormatValue(v)}
			}
			fmt.Fprintln(out, ui.KeyValueBlock(m.Signature(), pairs))
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().StringVar(&at, "at", "", "contract address (default: the artifact's deployment)")
	return cmd
}

func newContractSendCmd(a *app) *cobra.Command {
	var (
		flags  txFlags
		at     string
		yes    bool
		noWait bool
	)

	cmd := &cobra.Command{
		Use:   "send <contract> [function] [args...]",
		Short: "Send a transaction to a contract function",
		Long: `Send a transaction from an unlocked node account and wait until it is
mined. With decode_logs enabled the receipt and decoded events are shown.

Examples:
  journal contract send journal applyToBeAReviewer
  journal contract send journal submitReview 3 true --from 0x...
  journal contract send reviewtoken buy --value 1000000000000000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.opts()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			class, err := s.class(args[0])
			if err != nil {
				return err
			}
			name, raw, err := pickMethod(class, args[1:])
			if err != nil {
				return err
			}
			inst, err := target(ctx, class, at)
			if err != nil {
				return err
			}
			m, err := inst.Methods().Lookup(name)
			if err != nil {
				return err
			}
			if m.Kind != contract.Write {
				return fmt.Errorf("%s is a read function, use `journal contract call`", name)
			}
			params, err := contract.ParseArgs(m.ABI.Inputs, raw)
			if err != nil {
				return err
			}
			if !a.confirmLive(cmd, yes, fmt.Sprintf("Send %s on %s?", m.Signature(), a.net.Name)) {
				return errors.New("aborted")
			}

			out := cmd.OutOrStdout()
			if noWait {
				hash, err := inst.SendTransaction(ctx, name, append(params, opts)...)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Success("Transaction submitted"))
				fmt.Fprintln(out, ui.KeyValueBlock(m.Signature(), [][2]string{
					{"Transaction", ui.Addr(hash)},
					{"State", ui.TxState(contract.TxPending.String())},
				}))
				return nil
			}

			var res *contract.TxResult
			err = pending(cmd, fmt.Sprintf("Sending %s... (please wait)", name), func() error {
				var err error
				res, err = inst.Transact(ctx, name, append(params, opts)...)
				return err
			})
			if err != nil {
				return describeTxError(err)
			}
			fmt.Fprintln(out, ui.Success("Transaction mined"))
			printTx(out, m.Signature(), res)
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVar(&at, "at", "", "contract address (default: the artifact's deployment)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation on the live network")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "return after submission without waiting for the receipt")
	return cmd
}

func newContractDeployCmd(a *app) *cobra.Command {
	var (
		flags  txFlags
		links  map[string]string
		yes    bool
		noSave bool
	)

	cmd := &cobra.Command{
		Use:   "deploy <contract> [constructor args...]",
		Short: "Deploy a contract and record its address",
		Long: `Deploy a new instance of a contract from an unlocked node account and
wait for the creation receipt. The address is recorded for the node's
network id in <artifacts_dir>/<Name>.json, which later commands prefer over
the bundled artifact.

Library placeholders in the bytecode are filled with --link.

Examples:
  journal contract deploy reviewtoken 1000000 "Review Token" 0 REV 0x627306090abab3a6e1400e9345bc60c78a8bef57
  journal contract deploy journal --link ReviewToken=0x...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.opts()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			class, err := s.class(args[0])
			if err != nil {
				return err
			}
			if err := class.LinkAll(links); err != nil {
				return err
			}

			reported, err := s.client.NetworkID(ctx)
			if err != nil {
				return err
			}
			recordID := reported
			if err := class.CheckNetwork(ctx); err != nil {
				var mismatch *contract.NetworkMismatchError
				if !errors.As(err, &mismatch) {
					return err
				}
				// First deployment on this network: start from the default bundle.
				if err := class.SetNetwork(contract.DefaultNetwork); err != nil {
					return err
				}
			} else {
				recordID = class.Config().NetworkID()
			}

			params, err := contract.ParseArgs(class.Config().ABI().Constructor.Inputs, args[1:])
			if err != nil {
				return err
			}
			if !a.confirmLive(cmd, yes, fmt.Sprintf("Deploy %s on %s?", class.Name(), a.net.Name)) {
				return errors.New("aborted")
			}

			var inst *contract.Instance
			err = pending(cmd, fmt.Sprintf("Deploying %s... (please wait)", class.Name()), func() error {
				var err error
				inst, err = class.New(ctx, append(params, opts)...)
				return err
			})
			if err != nil {
				return describeTxError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s deployed", class.Name())))
			pairs := [][2]string{
				{"Address", ui.Addr(inst.Address())},
				{"Transaction", ui.Addr(inst.TransactionHash())},
				{"Network", fmt.Sprintf("%s (id %s)", a.net.Name, reported)},
			}

			if !noSave {
				path, err := a.recordDeployment(class, recordID, inst.Address())
				if err != nil {
					return err
				}
				pairs = append(pairs, [2]string{"Recorded in", path})
			}
			fmt.Fprintln(out, ui.KeyValueBlock("Deployment", pairs))
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringToStringVar(&links, "link", nil, "library address, Name=0x... (repeatable)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation on the live network")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the address in the artifacts directory")
	return cmd
}

// recordDeployment writes address into the artifact copy in the artifacts
// directory, together with the links used.
func (a *app) recordDeployment(class *contract.Class, networkID, address string) (string, error) {
	art := class.Artifact()
	if err := art.RecordDeployment(networkID, address, time.Now()); err != nil {
		return "", err
	}
	if links := class.Links(); len(links) > 0 {
		bundle := art.Networks[networkID]
		if bundle.Links == nil {
			bundle.Links = make(map[string]string, len(links))
		}
		for name, addr := range links {
			bundle.Links[name] = addr
		}
	}
	path := dapp.ArtifactPath(a.cfg.ArtifactsPath(), class.Name())
	if err := art.Save(path); err != nil {
		return "", fmt.Errorf("recording deployment: %w", err)
	}
	a.logger.Info().Str("path", path).Str("network", networkID).Msg("deployment recorded")
	return path, nil
}

// confirmLive asks before a state change on the main network.
func (a *app) confirmLive(cmd *cobra.Command, yes bool, prompt string) bool {
	if yes || a.net.NetworkID != "1" {
		return true
	}
	return ui.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt)
}

// describeTxError adds what the user can do next to confirmation failures.
func describeTxError(err error) error {
	var timeout *contract.TimeoutError
	if errors.As(err, &timeout) {
		return fmt.Errorf("%w; it may still be mined, raise tx_timeout_ms or check the hash later", err)
	}
	return err
}

func browse(class *contract.Class) (*ui.BrowserEntry, error) {
	cfg := class.Config()
	var entries []ui.BrowserEntry
	for _, name := range cfg.Methods().Names() {
		m := cfg.Methods()[name]
		entries = append(entries, ui.BrowserEntry{
			Name:     name,
			Selector: "0x" + hex.EncodeToString(m.Selector()),
			Sig:      m.Signature(),
			IsWrite:  m.Kind == contract.Write,
			Outputs:  outputTypes(m),
		})
	}
	events := cfg.Events()
	for _, topic := range sortedTopics(events) {
		ev := events[topic]
		entries = append(entries, ui.BrowserEntry{Name: ev.Name, Sig: ev.Sig, IsEvent: true})
	}
	return ui.RunBrowser(ui.NewBrowser(class.Name(), cfg.Address(), cfg.NetworkID(), entries))
}

func outputTypes(m contract.Method) []string {
	types := make([]string, len(m.ABI.Outputs))
	for i, o := range m.ABI.Outputs {
		types[i] = o.Type.String()
	}
	return types
}

func sortedTopics(events map[common.Hash]abi.Event) []common.Hash {
	topics := make([]common.Hash, 0, len(events))
	for topic := range events {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		return events[topics[i]].Sig < events[topics[j]].Sig
	})
	return topics
}

func binaryLen(s string) int {
	s = strings.TrimPrefix(s, "0x")
	return len(s) / 2
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
