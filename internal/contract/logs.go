package contract

import (
	"fmt"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DecodedLog is a receipt log matched to a known event.
type DecodedLog struct {
	Event    string
	Address  string
	TxHash   string
	LogIndex uint64
	Topic    common.Hash
	Args     map[string]interface{}
}

// decodeLogs decodes every log whose first topic is a known event, keeping
// receipt order. Logs with unknown topics are dropped.
func (i *Instance) decodeLogs(logs []chain.Log) ([]DecodedLog, error) {
	out := make([]DecodedLog, 0, len(logs))
	for _, l := range logs {
		if len(l.Topics) == 0 {
			continue
		}
		ev, ok := i.event(l.Topics[0])
		if !ok {
			continue
		}
		args, err := unpackLog(ev, l)
		if err != nil {
			return nil, fmt.Errorf("decoding %s log %d: %w", ev.Name, l.LogIndex, err)
		}
		out = append(out, DecodedLog{
			Event:    ev.RawName,
			Address:  l.Address,
			TxHash:   l.TxHash,
			LogIndex: l.LogIndex,
			Topic:    l.Topics[0],
			Args:     args,
		})
	}
	return out, nil
}

// event looks topic up in the instance's own index first, then in the events
// merged into the class from linked instances.
func (i *Instance) event(topic common.Hash) (abi.Event, bool) {
	if ev, ok := i.config.Event(topic); ok {
		return ev, true
	}
	return i.class.extraEvent(topic)
}

func unpackLog(ev abi.Event, l chain.Log) (map[string]interface{}, error) {
	args := make(map[string]interface{})
	if err := ev.Inputs.UnpackIntoMap(args, l.Data); err != nil {
		return nil, err
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(args, indexed, l.Topics[1:]); err != nil {
			return nil, err
		}
	}
	return args, nil
}
