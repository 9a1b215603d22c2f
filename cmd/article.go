package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/Mohsinsiddi/journal/internal/contract"
	"github.com/Mohsinsiddi/journal/internal/dapp"
	"github.com/Mohsinsiddi/journal/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newArticleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article",
		Short: "Submit and read Journal articles",
	}
	cmd.AddCommand(
		newArticleSubmitCmd(a),
		newArticleCountCmd(a),
		newArticleShowCmd(a),
	)
	return cmd
}

func newArticleSubmitCmd(a *app) *cobra.Command {
	var (
		in      ui.ArticleInput
		account string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an article and wait for it to be mined",
		Long: `Submit an article from the node's first account (or --from) and wait
for the transaction to be mined, then show the new article count.

Without --description and --text an interactive form asks for them.

Examples:
  journal article submit
  journal article submit --description "On peer review" --text "..." --double-blind`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Description == "" || in.Text == "" {
				if !isatty.IsTerminal(os.Stdin.Fd()) {
					return errors.New("--description and --text are required when stdin is not a terminal")
				}
				var err error
				if in, err = ui.RunArticleForm(in); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			class, err := s.class("journal")
			if err != nil {
				return err
			}
			page, err := dapp.OpenPage(ctx, s.client, class, a.logger)
			if err != nil {
				return err
			}
			if account != "" {
				if !chain.IsHexAddress(account) {
					return fmt.Errorf("invalid --from address %q", account)
				}
				page.UseAccount(account)
			}

			var (
				count  *big.Int
				result *contract.TxResult
			)
			err = pending(cmd, "Submitting article... (please wait)", func() error {
				var err error
				result, count, err = page.SubmitArticle(ctx, in.Description, in.Text, in.DoubleBlind)
				return err
			})
			if err != nil {
				if result == nil {
					return fmt.Errorf("problem submitting article: %w", err)
				}
				// Mined, but the count could not be refreshed.
				a.logger.Warn().Err(err).Msg("reading article count")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Success("Article submitted"))
			printTx(out, "Submission", result)
			if count != nil {
				fmt.Fprintln(out, ui.Info(fmt.Sprintf("Number of articles: %s", count)))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "short description")
	cmd.Flags().StringVarP(&in.Text, "text", "t", "", "full text")
	cmd.Flags().BoolVar(&in.DoubleBlind, "double-blind", false, "request double-blind review")
	cmd.Flags().StringVar(&account, "from", "", "submitting account (default: the node's first account)")
	return cmd
}

func newArticleCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the number of submitted articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			class, err := s.class("journal")
			if err != nil {
				return err
			}
			journal, err := dapp.ConnectJournal(ctx, class)
			if err != nil {
				return err
			}
			n, err := journal.NumberOfArticles(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("Number of articles: %s", n)))
			return nil
		},
	}
}

func newArticleShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := new(big.Int).SetString(args[0], 10)
			if !ok || id.Sign() < 0 {
				return fmt.Errorf("invalid article id %q", args[0])
			}

			ctx := cmd.Context()
			s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			class, err := s.class("journal")
			if err != nil {
				return err
			}
			journal, err := dapp.ConnectJournal(ctx, class)
			if err != nil {
				return err
			}
			art, err := journal.Article(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(fmt.Sprintf("Article %s", art.ID), [][2]string{
				{"Author", ui.Addr(art.Author.Hex())},
				{"Abstract", art.Abstract},
				{"Contents", ui.TruncateText(art.Contents, 60)},
				{"Double blind", fmt.Sprintf("%t", art.DoubleBlind)},
				{"Published", fmt.Sprintf("%t", art.Published)},
				{"Reviews", art.NumberOfReviews.String()},
			}))
			return nil
		},
	}
}
