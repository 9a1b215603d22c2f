package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/journal/internal/config"
	"github.com/Mohsinsiddi/journal/internal/contract"
	"github.com/Mohsinsiddi/journal/internal/dapp"
	"github.com/Mohsinsiddi/journal/internal/ui"
	"github.com/spf13/cobra"
)

func newNetworkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Manage networks",
	}
	cmd.AddCommand(
		newNetworkListCmd(a),
		newNetworkUseCmd(a),
		newNetworkDetectCmd(a),
	)
	return cmd
}

func newNetworkListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := ui.NewTable("", "Name", "Network ID", "RPC", "From")
			for _, name := range a.cfg.NetworkNames() {
				n, err := a.cfg.Network(name)
				if err != nil {
					return err
				}
				marker := ""
				if name == a.cfg.DefaultNetwork {
					marker = "*"
				}
				t.AddRow(marker, name, n.NetworkID, n.RPCURL(), orDash(n.From))
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, t.Render())
			fmt.Fprintln(out, ui.Meta(fmt.Sprintf("* default network, config in %s", a.cfg.Dir())))
			return nil
		},
	}
}

func newNetworkUseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the default network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.cfg.Network(args[0])
			if err != nil {
				return err
			}
			a.cfg.DefaultNetwork = n.Name
			if err := a.cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default network set to %s (%s)", ui.NetworkName(n.Name), n.RPCURL())))
			return nil
		},
	}
}

func newNetworkDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Ask the node for its network id and resolve each contract",
		Long: `Query net_version on the selected network's node and show which artifact
bundle each bundled contract resolves to. The main network id 1 falls back
to the "live" and then the "default" bundle.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCCallTimeout)
			defer cancel()
			s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.client.NetworkID(ctx)
			if err != nil {
				return err
			}
			node := [][2]string{
				{"RPC", a.net.RPCURL()},
				{"Network ID", id},
				{"Configured as", orDash(strings.Join(a.cfg.NetworkByID(id), ", "))},
			}
			if n, err := s.client.BlockNumber(ctx); err == nil {
				node = append(node, [2]string{"Latest block", fmt.Sprintf("%d", n)})
			} else {
				a.logger.Debug().Err(err).Msg("eth_blockNumber failed")
			}
			if gas, err := s.client.GetGasInfo(ctx); err == nil {
				gwei, eip1559 := gas.GasPriceDisplay()
				label := "Gas price"
				if eip1559 {
					label = "Base fee"
				}
				node = append(node, [2]string{label, fmt.Sprintf("%.2f gwei", gwei)})
			} else {
				a.logger.Debug().Err(err).Msg("gas price lookup failed")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.KeyValueBlock("Node", node))

			t := ui.NewTable("Contract", "Bundle", "Address")
			for _, b := range dapp.AllBuiltins() {
				art, err := dapp.Load(b.ID, a.cfg.ArtifactsPath())
				if err != nil {
					return err
				}
				nc, err := contract.ResolveNetwork(art, id)
				var mismatch *contract.NetworkMismatchError
				switch {
				case errors.As(err, &mismatch):
					t.AddRow(art.ContractName, "-", "not deployed on this network")
				case err != nil:
					return err
				default:
					t.AddRow(art.ContractName, nc.NetworkID(), orDash(nc.Address()))
				}
			}
			fmt.Fprint(out, t.Render())
			return nil
		},
	}
}
