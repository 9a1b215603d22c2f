package dapp

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/journal/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

func init() {
	RegisterBuiltin(Builtin{
		ID:          "journal",
		Name:        "Journal",
		Description: "Peer-reviewed article journal with reviewer reputation",
		File:        "Journal.json",
	})
}

// Journal events.
const (
	EventArticleAdded     = "ArticleAdded"
	EventArticleReviewed  = "ArticleReviewed"
	EventArticlePublished = "ArticlePublished"
	EventReviewerAdded    = "ReviewerAdded"
	EventChangeOfRules    = "ChangeOfRules"
)

// Article is one record of the articles array.
type Article struct {
	ID              *big.Int
	Author          common.Address
	Abstract        string
	Contents        string
	DoubleBlind     bool
	Published       bool
	NumberOfReviews *big.Int
}

// Reviewer is one record of the reviewers array.
type Reviewer struct {
	Address    common.Address
	Reputation *big.Int
}

// Journal is a typed binding to a deployed Journal contract.
type Journal struct {
	inst *contract.Instance
}

// BindJournal wraps an instance of the Journal class.
func BindJournal(inst *contract.Instance) *Journal {
	return &Journal{inst: inst}
}

// ConnectJournal resolves the node's network and binds the deployed Journal.
func ConnectJournal(ctx context.Context, c *contract.Class) (*Journal, error) {
	inst, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return BindJournal(inst), nil
}

// Instance returns the underlying generic binding.
func (j *Journal) Instance() *contract.Instance { return j.inst }

// Address returns the contract address.
func (j *Journal) Address() string { return j.inst.Address() }

// NumberOfArticles returns how many articles were submitted.
func (j *Journal) NumberOfArticles(ctx context.Context) (*big.Int, error) {
	return callOne[*big.Int](ctx, j.inst, "numberOfArticles")
}

// NumberOfReviewers returns how many reviewers registered.
func (j *Journal) NumberOfReviewers(ctx context.Context) (*big.Int, error) {
	return callOne[*big.Int](ctx, j.inst, "numberOfReviewers")
}

// GoalPost returns the number of supporting reviews needed to publish.
func (j *Journal) GoalPost(ctx context.Context) (*big.Int, error) {
	return callOne[*big.Int](ctx, j.inst, "_goalPost")
}

func (j *Journal) Owner(ctx context.Context) (common.Address, error) {
	return callOne[common.Address](ctx, j.inst, "owner")
}

// ReviewTokenAddress returns the token used to reward reviewers.
func (j *Journal) ReviewTokenAddress(ctx context.Context) (common.Address, error) {
	return callOne[common.Address](ctx, j.inst, "reviewTokenAddress")
}

// Article returns the article with the given id.
func (j *Journal) Article(ctx context.Context, id *big.Int) (*Article, error) {
	values, err := j.inst.Call(ctx, "articles", id)
	if err != nil {
		return nil, err
	}
	if len(values) != 6 {
		return nil, fmt.Errorf("articles: expected 6 outputs, got %d", len(values))
	}
	a := &Article{ID: id}
	if a.Author, err = as[common.Address]("articles", values[0]); err != nil {
		return nil, err
	}
	if a.Abstract, err = as[string]("articles", values[1]); err != nil {
		return nil, err
	}
	if a.Contents, err = as[string]("articles", values[2]); err != nil {
		return nil, err
	}
	if a.DoubleBlind, err = as[bool]("articles", values[3]); err != nil {
		return nil, err
	}
	if a.Published, err = as[bool]("articles", values[4]); err != nil {
		return nil, err
	}
	if a.NumberOfReviews, err = as[*big.Int]("articles", values[5]); err != nil {
		return nil, err
	}
	return a, nil
}

// Reviewer returns the reviewer at index.
func (j *Journal) Reviewer(ctx context.Context, index *big.Int) (*Reviewer, error) {
	values, err := j.inst.Call(ctx, "reviewers", index)
	if err != nil {
		return nil, err
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("reviewers: expected 2 outputs, got %d", len(values))
	}
	r := &Reviewer{}
	if r.Address, err = as[common.Address]("reviewers", values[0]); err != nil {
		return nil, err
	}
	if r.Reputation, err = as[*big.Int]("reviewers", values[1]); err != nil {
		return nil, err
	}
	return r, nil
}

// SubmitArticle submits a new article and waits for it to be mined.
func (j *Journal) SubmitArticle(ctx context.Context, abstract, contents string, doubleBlind bool, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return j.inst.Transact(ctx, "submitArticle", withOpts([]any{abstract, contents, doubleBlind}, opts)...)
}

// SimpleSubmit adds a placeholder article keyed by n.
func (j *Journal) SimpleSubmit(ctx context.Context, n *big.Int, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return j.inst.Transact(ctx, "simpleSubmit", withOpts([]any{n}, opts)...)
}

// ApplyToBeAReviewer registers the sender as a reviewer.
func (j *Journal) ApplyToBeAReviewer(ctx context.Context, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return j.inst.Transact(ctx, "applyToBeAReviewer", withOpts(nil, opts)...)
}

// SubmitReview records a review of articleID.
func (j *Journal) SubmitReview(ctx context.Context, articleID *big.Int, inSupport bool, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return j.inst.Transact(ctx, "submitReview", withOpts([]any{articleID, inSupport}, opts)...)
}

// AttemptPublishOfArticle publishes articleID if it has enough support.
func (j *Journal) AttemptPublishOfArticle(ctx context.Context, articleID *big.Int, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return j.inst.Transact(ctx, "attemptPublishOfArticle", withOpts([]any{articleID}, opts)...)
}

// ChangeReviewRules sets a new goal post. Owner only.
func (j *Journal) ChangeReviewRules(ctx context.Context, goalPost *big.Int, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return j.inst.Transact(ctx, "changeReviewRules", withOpts([]any{goalPost}, opts)...)
}

func (j *Journal) TransferOwnership(ctx context.Context, newOwner common.Address, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return j.inst.Transact(ctx, "transferOwnership", withOpts([]any{newOwner}, opts)...)
}
