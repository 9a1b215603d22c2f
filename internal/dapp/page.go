package dapp

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/Mohsinsiddi/journal/internal/contract"
	"github.com/rs/zerolog"
)

// ErrNoAccounts is returned when the node manages no accounts.
var ErrNoAccounts = errors.New("couldn't get any accounts, make sure your Ethereum client is configured correctly")

// Page is the Journal front end: an account, the deployed Journal and the
// three actions the page offers (balance, submit, article count).
type Page struct {
	client  *chain.EVMClient
	journal *Journal
	account string
	logger  zerolog.Logger
}

// OpenPage picks the node's first account and binds the Journal deployed on
// the node's network. The class must have a provider.
func OpenPage(ctx context.Context, client *chain.EVMClient, class *contract.Class, logger zerolog.Logger) (*Page, error) {
	accounts, err := client.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	journal, err := ConnectJournal(ctx, class)
	if err != nil {
		return nil, err
	}
	p := &Page{
		client:  client,
		journal: journal,
		account: accounts[0],
		logger:  logger.With().Str("component", "page").Logger(),
	}
	p.logger.Debug().Str("account", p.account).Str("journal", journal.Address()).Msg("page ready")
	return p, nil
}

// Account returns the account the page acts as.
func (p *Page) Account() string { return p.account }

// UseAccount switches the acting account.
func (p *Page) UseAccount(address string) { p.account = address }

// Journal returns the bound contract.
func (p *Page) Journal() *Journal { return p.journal }

// Balance returns the ether balance of the account.
func (p *Page) Balance(ctx context.Context) (*chain.Balance, error) {
	return p.client.GetBalance(ctx, p.account)
}

// SubmitArticle submits an article from the account and returns the new
// article count once the transaction is mined.
func (p *Page) SubmitArticle(ctx context.Context, description, text string, doubleBlind bool) (*contract.TxResult, *big.Int, error) {
	res, err := p.journal.SubmitArticle(ctx, description, text, doubleBlind, contract.TxOpts{From: p.account})
	if err != nil {
		return nil, nil, err
	}
	p.logger.Info().Str("tx", res.TxHash).Msg("article submitted")
	count, err := p.NumberOfArticles(ctx)
	if err != nil {
		return res, nil, err
	}
	return res, count, nil
}

// NumberOfArticles returns the article count.
func (p *Page) NumberOfArticles(ctx context.Context) (*big.Int, error) {
	return p.journal.NumberOfArticles(ctx)
}
