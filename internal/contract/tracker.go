package contract

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/ethereum/go-ethereum/common"
)

// TxState is the state of a write invocation.
type TxState int

const (
	TxSubmitting TxState = iota
	TxPending
	TxConfirmed
	TxTimedOut
	TxFailed
)

func (s TxState) String() string {
	switch s {
	case TxSubmitting:
		return "submitting"
	case TxPending:
		return "pending"
	case TxConfirmed:
		return "confirmed"
	case TxTimedOut:
		return "timed out"
	case TxFailed:
		return "failed"
	}
	return "unknown"
}

// PendingTx is an in-flight transaction waiting for its receipt.
type PendingTx struct {
	Hash        common.Hash
	SubmittedAt time.Time
	Timeout     time.Duration // 0 means no deadline
}

// Deadline returns the time after which the transaction times out, and
// false when there is none.
func (p PendingTx) Deadline() (time.Time, bool) {
	if p.Timeout <= 0 {
		return time.Time{}, false
	}
	return p.SubmittedAt.Add(p.Timeout), true
}

// expired reports whether more than Timeout has elapsed at now.
func (p PendingTx) expired(now time.Time) bool {
	return p.Timeout > 0 && now.Sub(p.SubmittedAt) > p.Timeout
}

// track polls for the receipt of hash until it appears, the timeout elapses,
// a poll fails or ctx is done. The first poll runs immediately and polls
// never overlap.
func (c *Class) track(ctx context.Context, s settings, hash common.Hash) (*chain.Receipt, error) {
	p := PendingTx{Hash: hash, SubmittedAt: time.Now(), Timeout: s.timeout}
	log := c.logger.With().Str("tx", hash.Hex()).Logger()
	log.Debug().Dur("timeout", s.timeout).Dur("interval", s.interval).Msg("waiting for receipt")

	for attempt := 1; ; attempt++ {
		receipt, err := s.backend.GetTransactionReceipt(ctx, hash)
		if err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("receipt poll failed")
			return nil, &TxError{TxHash: hash.Hex(), State: TxFailed, Err: err}
		}
		if receipt != nil {
			log.Debug().Int("attempt", attempt).Uint64("block", receipt.BlockNumber).Msg("transaction confirmed")
			return receipt, nil
		}
		now := time.Now()
		if p.expired(now) {
			log.Debug().Int("attempt", attempt).Msg("transaction timed out")
			return nil, &TimeoutError{TxHash: hash.Hex(), Elapsed: now.Sub(p.SubmittedAt), Timeout: p.Timeout}
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &TxError{TxHash: hash.Hex(), State: TxPending, Err: ctx.Err()}
		case <-timer.C:
		}
	}
}
