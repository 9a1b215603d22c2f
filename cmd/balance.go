package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/Mohsinsiddi/journal/internal/dapp"
	"github.com/Mohsinsiddi/journal/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

func newBalanceCmd(a *app) *cobra.Command {
	var withToken bool

	cmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the ether balance of an account",
		Long: `Show the ether balance of an account.

Without an address the node's first account is used, after checking that
the Journal is deployed on the node's network.

Examples:
  journal balance
  journal balance 0x627306090abab3a6e1400e9345bc60c78a8bef57
  journal balance --token --network morden`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			var address string
			if len(args) == 1 {
				address = args[0]
				if !chain.IsHexAddress(address) {
					return fmt.Errorf("invalid address %q", address)
				}
			} else {
				class, err := s.class("journal")
				if err != nil {
					return err
				}
				page, err := dapp.OpenPage(ctx, s.client, class, a.logger)
				if err != nil {
					return err
				}
				address = page.Account()
			}

			bal, err := s.client.GetBalance(ctx, address)
			if err != nil {
				return err
			}
			pairs := [][2]string{
				{"Account", ui.Addr(address)},
				{"Network", ui.NetworkName(a.net.Name)},
				{"Balance", bal.ETH + " ETH"},
			}
			if withToken {
				tok, err := tokenBalance(ctx, s, address)
				if err != nil {
					return err
				}
				pairs = append(pairs, [2]string{"Review tokens", tok})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Account balance", pairs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&withToken, "token", false, "also show the ReviewToken balance")
	return cmd
}

func tokenBalance(ctx context.Context, s *session, address string) (string, error) {
	class, err := s.class("reviewtoken")
	if err != nil {
		return "", err
	}
	inst, err := class.Connect(ctx)
	if err != nil {
		return "", err
	}
	token := dapp.BindReviewToken(inst)
	amount, err := token.BalanceOf(ctx, common.HexToAddress(address))
	if err != nil {
		return "", err
	}
	symbol, err := token.Symbol(ctx)
	if err != nil {
		return "", err
	}
	return amount.String() + " " + symbol, nil
}
