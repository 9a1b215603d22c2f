package dapp

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/journal/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

func init() {
	RegisterBuiltin(Builtin{
		ID:          "reviewtoken",
		Name:        "ReviewToken",
		Description: "Mintable token rewarding Journal reviewers",
		File:        "ReviewToken.json",
	})
}

// ReviewToken events. The contract declares them in lower case.
const (
	EventTransfer    = "transfer"
	EventFrozenFunds = "frozenfunds"
)

// ReviewToken is a typed binding to a deployed ReviewToken contract.
type ReviewToken struct {
	inst *contract.Instance
}

// BindReviewToken wraps an instance of the ReviewToken class.
func BindReviewToken(inst *contract.Instance) *ReviewToken {
	return &ReviewToken{inst: inst}
}

// Instance returns the underlying generic binding.
func (t *ReviewToken) Instance() *contract.Instance { return t.inst }

func (t *ReviewToken) Name(ctx context.Context) (string, error) {
	return callOne[string](ctx, t.inst, "name")
}

func (t *ReviewToken) Symbol(ctx context.Context) (string, error) {
	return callOne[string](ctx, t.inst, "symbol")
}

func (t *ReviewToken) Decimals(ctx context.Context) (uint8, error) {
	return callOne[uint8](ctx, t.inst, "decimals")
}

func (t *ReviewToken) TotalSupply(ctx context.Context) (*big.Int, error) {
	return callOne[*big.Int](ctx, t.inst, "totalsupply")
}

// BalanceOf returns the token balance of holder.
func (t *ReviewToken) BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	return callOne[*big.Int](ctx, t.inst, "balanceof", holder)
}

// Allowance returns how much spender may still move on behalf of owner.
func (t *ReviewToken) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return callOne[*big.Int](ctx, t.inst, "allowance", owner, spender)
}

// Frozen reports whether account is frozen.
func (t *ReviewToken) Frozen(ctx context.Context, account common.Address) (bool, error) {
	return callOne[bool](ctx, t.inst, "frozenaccount", account)
}

// Prices returns the buy and sell price in wei per token.
func (t *ReviewToken) Prices(ctx context.Context) (buy, sell *big.Int, err error) {
	if buy, err = callOne[*big.Int](ctx, t.inst, "buyprice"); err != nil {
		return nil, nil, err
	}
	if sell, err = callOne[*big.Int](ctx, t.inst, "sellprice"); err != nil {
		return nil, nil, err
	}
	return buy, sell, nil
}

func (t *ReviewToken) Owner(ctx context.Context) (common.Address, error) {
	return callOne[common.Address](ctx, t.inst, "owner")
}

// Transfer moves value tokens from the sender to to.
func (t *ReviewToken) Transfer(ctx context.Context, to common.Address, value *big.Int, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return t.inst.Transact(ctx, "transferold", withOpts([]any{to, value}, opts)...)
}

// MintToken creates amount new tokens for target. Minter only.
func (t *ReviewToken) MintToken(ctx context.Context, target common.Address, amount *big.Int, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return t.inst.Transact(ctx, "minttoken", withOpts([]any{target, amount}, opts)...)
}

// FreezeAccount freezes or thaws target. Owner only.
func (t *ReviewToken) FreezeAccount(ctx context.Context, target common.Address, freeze bool, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return t.inst.Transact(ctx, "freezeaccount", withOpts([]any{target, freeze}, opts)...)
}

// Buy buys tokens for the ether sent in the options' Value.
func (t *ReviewToken) Buy(ctx context.Context, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return t.inst.Transact(ctx, "buy", withOpts(nil, opts)...)
}

// Sell sells amount tokens back to the contract.
func (t *ReviewToken) Sell(ctx context.Context, amount *big.Int, opts ...contract.TxOpts) (*contract.TxResult, error) {
	return t.inst.Transact(ctx, "sell", withOpts([]any{amount}, opts)...)
}
